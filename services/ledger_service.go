package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/interclasses-scoreboard/metrics"
	"github.com/Dosada05/interclasses-scoreboard/models"
	"github.com/Dosada05/interclasses-scoreboard/repositories"
	"github.com/google/uuid"
)

const (
	WinPoints         = 3
	DrawPoints        = 1
	ForfeitPenaltyPts = 5

	applySign   = 1.0
	reverseSign = -1.0
)

// BucketDelta is one signed change to a single aggregate bucket.
type BucketDelta struct {
	TurmaID uuid.UUID
	Bucket  models.ScoreBucket
	Delta   float64
}

// MatchDeltas returns the sport-point changes a non-forfeit match causes,
// multiplied by sign (+1 to apply, -1 to reverse). A persisted winner wins
// over the one derived from scores. Forfeits and matches without both
// scores yield nothing.
func MatchDeltas(m *models.Match, sign float64) []BucketDelta {
	if m.Forfeit || !m.HasScores() {
		return nil
	}
	if m.IsDraw() && m.WinnerID == nil {
		return []BucketDelta{
			{TurmaID: m.TurmaAID, Bucket: models.BucketSportPoints, Delta: sign * DrawPoints},
			{TurmaID: m.TurmaBID, Bucket: models.BucketSportPoints, Delta: sign * DrawPoints},
		}
	}
	winner := m.WinnerID
	if winner == nil {
		winner = m.DecideWinner()
	}
	if winner == nil {
		return nil
	}
	return []BucketDelta{{TurmaID: *winner, Bucket: models.BucketSportPoints, Delta: sign * WinPoints}}
}

// LedgerService adjusts aggregate buckets. Every method takes the caller's
// executor so the adjustment joins the surrounding transaction.
type LedgerService interface {
	ApplyMatchResult(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error
	ReverseMatchResult(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error
	ApplyPenalty(ctx context.Context, exec repositories.SQLExecutor, turmaID uuid.UUID, penaltyType models.PenaltyType, value float64) error
}

type ledgerService struct {
	scoreRepo repositories.ScoreRepository
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func NewLedgerService(scoreRepo repositories.ScoreRepository, m *metrics.Metrics, logger *slog.Logger) LedgerService {
	return &ledgerService{scoreRepo: scoreRepo, metrics: m, logger: logger}
}

func (s *ledgerService) ApplyMatchResult(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
	if match.Forfeit {
		if match.ForfeitedID == nil {
			return ErrForfeitSideRequired
		}
		if err := s.scoreRepo.ApplyForfeit(ctx, exec, *match.ForfeitedID, match.ID); err != nil {
			return mapScoreError(err)
		}
		s.metrics.LedgerAdjusted(string(models.BucketForfeitPenalty), ForfeitPenaltyPts)
		s.logger.InfoContext(ctx, "forfeit penalty applied",
			slog.String("match_id", match.ID.String()),
			slog.String("turma_id", match.ForfeitedID.String()))
		return nil
	}
	return s.adjust(ctx, exec, MatchDeltas(match, applySign))
}

func (s *ledgerService) ReverseMatchResult(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
	if match.Forfeit {
		if match.ForfeitedID == nil {
			return nil
		}
		return s.adjust(ctx, exec, []BucketDelta{{
			TurmaID: *match.ForfeitedID,
			Bucket:  models.BucketForfeitPenalty,
			Delta:   reverseSign * ForfeitPenaltyPts,
		}})
	}
	return s.adjust(ctx, exec, MatchDeltas(match, reverseSign))
}

func (s *ledgerService) ApplyPenalty(ctx context.Context, exec repositories.SQLExecutor, turmaID uuid.UUID, penaltyType models.PenaltyType, value float64) error {
	bucket, ok := penaltyType.Bucket()
	if !ok {
		return fieldError("tipo_penalidade", "is not a known penalty type")
	}
	return s.adjust(ctx, exec, []BucketDelta{{TurmaID: turmaID, Bucket: bucket, Delta: value}})
}

func (s *ledgerService) adjust(ctx context.Context, exec repositories.SQLExecutor, deltas []BucketDelta) error {
	for _, d := range deltas {
		if err := s.scoreRepo.AdjustBucket(ctx, exec, d.TurmaID, d.Bucket, d.Delta); err != nil {
			return mapScoreError(err)
		}
		s.metrics.LedgerAdjusted(string(d.Bucket), d.Delta)
		s.logger.DebugContext(ctx, "bucket adjusted",
			slog.String("turma_id", d.TurmaID.String()),
			slog.String("bucket", string(d.Bucket)),
			slog.Float64("delta", d.Delta))
	}
	return nil
}

func mapScoreError(err error) error {
	if errors.Is(err, repositories.ErrScoreNotFound) {
		return fmt.Errorf("%w: no aggregate score row", ErrTurmaNotFound)
	}
	return err
}
