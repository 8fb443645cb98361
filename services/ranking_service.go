package services

import (
	"context"
	"log/slog"

	"github.com/Dosada05/interclasses-scoreboard/metrics"
	"github.com/Dosada05/interclasses-scoreboard/models"
	"github.com/Dosada05/interclasses-scoreboard/repositories"
	"github.com/google/uuid"
)

// FoodRankingPoints are awarded strictly by position; equal kilograms share
// nothing.
var FoodRankingPoints = []int{10, 7, 5, 4, 3, 2}

type RankingService interface {
	ComputeFoodRanking(ctx context.Context) ([]models.FoodRankingEntry, error)
}

type rankingService struct {
	tx        repositories.Transactor
	scoreRepo repositories.ScoreRepository
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func NewRankingService(tx repositories.Transactor, scoreRepo repositories.ScoreRepository, m *metrics.Metrics, logger *slog.Logger) RankingService {
	return &rankingService{tx: tx, scoreRepo: scoreRepo, metrics: m, logger: logger}
}

// RankFood assigns positional points to rows already ordered by kilograms.
func RankFood(rows []*models.AggregateScore) []models.FoodRankingEntry {
	n := len(rows)
	if n > len(FoodRankingPoints) {
		n = len(FoodRankingPoints)
	}
	entries := make([]models.FoodRankingEntry, 0, n)
	for i := 0; i < n; i++ {
		e := models.FoodRankingEntry{
			Position: i + 1,
			TurmaID:  rows[i].TurmaID,
			Kg:       rows[i].FoodKg,
			Points:   FoodRankingPoints[i],
		}
		if rows[i].Turma != nil {
			e.TurmaName = rows[i].Turma.Name
		}
		entries = append(entries, e)
	}
	return entries
}

// ComputeFoodRanking recomputes the food bucket of every turma from scratch:
// the top six get their positional points and everyone else is zeroed in one
// statement. Running it twice gives the same result.
func (s *rankingService) ComputeFoodRanking(ctx context.Context) ([]models.FoodRankingEntry, error) {
	var entries []models.FoodRankingEntry
	err := s.tx.InTx(ctx, func(exec repositories.SQLExecutor) error {
		rows, err := s.scoreRepo.ListByFoodKg(ctx, exec)
		if err != nil {
			return err
		}
		entries = RankFood(rows)

		keep := make([]uuid.UUID, 0, len(entries))
		for _, e := range entries {
			if err := s.scoreRepo.SetBucket(ctx, exec, e.TurmaID, models.BucketFoodPoints, float64(e.Points)); err != nil {
				return mapScoreError(err)
			}
			keep = append(keep, e.TurmaID)
		}
		return s.scoreRepo.ZeroBucketExcept(ctx, exec, models.BucketFoodPoints, keep)
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "food ranking failed", slog.Any("error", err))
		return nil, err
	}

	s.metrics.RankingComputed()
	s.logger.InfoContext(ctx, "food ranking computed", slog.Int("awarded", len(entries)))
	return entries, nil
}
