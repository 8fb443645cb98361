package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Dosada05/interclasses-scoreboard/models"
	"github.com/Dosada05/interclasses-scoreboard/repositories"
	"golang.org/x/sync/errgroup"
)

const recentMatchesOnScoreboard = 10

type ScoreboardService interface {
	GetScoreboard(ctx context.Context) (*models.DashboardStats, error)
	Ranking(ctx context.Context) ([]*models.AggregateScore, error)
}

type scoreboardService struct {
	scoreRepo   repositories.ScoreRepository
	matchRepo   repositories.MatchRepository
	turmaRepo   repositories.TurmaRepository
	bracketRepo repositories.BracketRepository
	now         func() time.Time
}

func NewScoreboardService(
	scoreRepo repositories.ScoreRepository,
	matchRepo repositories.MatchRepository,
	turmaRepo repositories.TurmaRepository,
	bracketRepo repositories.BracketRepository,
) ScoreboardService {
	return &scoreboardService{
		scoreRepo:   scoreRepo,
		matchRepo:   matchRepo,
		turmaRepo:   turmaRepo,
		bracketRepo: bracketRepo,
		now:         time.Now,
	}
}

func (s *scoreboardService) Ranking(ctx context.Context) ([]*models.AggregateScore, error) {
	ranking, err := s.scoreRepo.ListRanking(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load ranking: %w", err)
	}
	return ranking, nil
}

// GetScoreboard loads the snapshot sections concurrently.
func (s *scoreboardService) GetScoreboard(ctx context.Context) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{}
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		stats.Ranking, err = s.Ranking(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		stats.RecentMatches, err = s.matchRepo.List(gCtx, recentMatchesOnScoreboard)
		return err
	})
	g.Go(func() error {
		var err error
		stats.TurmasTotal, err = s.turmaRepo.Count(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		stats.MatchesTotal, err = s.matchRepo.Count(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		stats.ActiveBrackets, err = s.bracketRepo.CountByStatus(gCtx, models.BracketStatusActive)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to build scoreboard: %w", err)
	}
	stats.GeneratedAt = s.now().UTC()
	return stats, nil
}
