package services

import (
	"context"
	"log/slog"

	"github.com/Dosada05/interclasses-scoreboard/repositories"
)

type SeasonService interface {
	// Reset wipes athletes, matches and the penalty log and zeroes every
	// aggregate bucket. Turmas and brackets are kept.
	Reset(ctx context.Context) error
}

type seasonService struct {
	tx          repositories.Transactor
	athleteRepo repositories.AthleteRepository
	matchRepo   repositories.MatchRepository
	penaltyRepo repositories.PenaltyRepository
	scoreRepo   repositories.ScoreRepository
	logger      *slog.Logger
}

func NewSeasonService(
	tx repositories.Transactor,
	athleteRepo repositories.AthleteRepository,
	matchRepo repositories.MatchRepository,
	penaltyRepo repositories.PenaltyRepository,
	scoreRepo repositories.ScoreRepository,
	logger *slog.Logger,
) SeasonService {
	return &seasonService{
		tx:          tx,
		athleteRepo: athleteRepo,
		matchRepo:   matchRepo,
		penaltyRepo: penaltyRepo,
		scoreRepo:   scoreRepo,
		logger:      logger,
	}
}

func (s *seasonService) Reset(ctx context.Context) error {
	err := s.tx.InTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.athleteRepo.DeleteAll(ctx, exec); err != nil {
			return err
		}
		if err := s.matchRepo.DeleteAll(ctx, exec); err != nil {
			return err
		}
		if err := s.penaltyRepo.DeleteAll(ctx, exec); err != nil {
			return err
		}
		return s.scoreRepo.ResetAll(ctx, exec)
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "season reset failed", slog.Any("error", err))
		return err
	}
	s.logger.WarnContext(ctx, "season reset completed")
	return nil
}
