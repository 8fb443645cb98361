package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/interclasses-scoreboard/metrics"
	"github.com/Dosada05/interclasses-scoreboard/models"
	"github.com/Dosada05/interclasses-scoreboard/repositories"
	"github.com/google/uuid"
)

const DefaultMatchListLimit = 50

type CreateMatchInput struct {
	Sport       string             `json:"modalidade" validate:"required,max=100"`
	Gender      models.Gender      `json:"genero_modalidade" validate:"required,oneof=Masculino Feminino Outro"`
	Phase       string             `json:"fase" validate:"required,max=50"`
	ScheduledAt *time.Time         `json:"data_hora"`
	TurmaAID    uuid.UUID          `json:"turma_a_id" validate:"required"`
	TurmaBID    uuid.UUID          `json:"turma_b_id" validate:"required"`
	ScoreA      *int               `json:"placar_a" validate:"omitempty,min=0,max=999"`
	ScoreB      *int               `json:"placar_b" validate:"omitempty,min=0,max=999"`
	Forfeit     bool               `json:"wo_aplicado"`
	ForfeitedID *uuid.UUID         `json:"turma_wo_id" validate:"required_if=Forfeit true"`
	Notes       *string            `json:"detalhes_sumula" validate:"omitempty,max=1000"`
	Status      models.MatchStatus `json:"status" validate:"omitempty,oneof=agendada em_andamento finalizada cancelada"`
}

// UpdateMatchInput replaces the outcome fields of a match. Sport, phase and
// the two turmas are fixed once the match exists.
type UpdateMatchInput struct {
	ScheduledAt *time.Time         `json:"data_hora"`
	ScoreA      *int               `json:"placar_a" validate:"omitempty,min=0,max=999"`
	ScoreB      *int               `json:"placar_b" validate:"omitempty,min=0,max=999"`
	Forfeit     bool               `json:"wo_aplicado"`
	ForfeitedID *uuid.UUID         `json:"turma_wo_id" validate:"required_if=Forfeit true"`
	Notes       *string            `json:"detalhes_sumula" validate:"omitempty,max=1000"`
	Status      models.MatchStatus `json:"status" validate:"omitempty,oneof=agendada em_andamento finalizada cancelada"`
}

type MatchService interface {
	RegisterMatch(ctx context.Context, input CreateMatchInput) (*models.Match, error)
	EditMatch(ctx context.Context, id uuid.UUID, input UpdateMatchInput) (*models.Match, error)
	DeleteMatch(ctx context.Context, id uuid.UUID) error
	ListMatches(ctx context.Context, limit int) ([]*models.Match, error)
}

type matchService struct {
	tx        repositories.Transactor
	matchRepo repositories.MatchRepository
	ledger    LedgerService
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func NewMatchService(
	tx repositories.Transactor,
	matchRepo repositories.MatchRepository,
	ledger LedgerService,
	m *metrics.Metrics,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		tx:        tx,
		matchRepo: matchRepo,
		ledger:    ledger,
		metrics:   m,
		logger:    logger,
	}
}

func (s *matchService) RegisterMatch(ctx context.Context, input CreateMatchInput) (*models.Match, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	if input.TurmaAID == input.TurmaBID {
		return nil, ErrSameTurma
	}

	match := &models.Match{
		Sport:       input.Sport,
		Gender:      input.Gender,
		Phase:       input.Phase,
		ScheduledAt: input.ScheduledAt,
		TurmaAID:    input.TurmaAID,
		TurmaBID:    input.TurmaBID,
		ScoreA:      input.ScoreA,
		ScoreB:      input.ScoreB,
		Forfeit:     input.Forfeit,
		ForfeitedID: input.ForfeitedID,
		Notes:       input.Notes,
		Status:      input.Status,
	}
	if err := normalizeOutcome(match); err != nil {
		return nil, err
	}

	err := s.tx.InTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.matchRepo.Create(ctx, exec, match); err != nil {
			return mapMatchRepoError(err)
		}
		return s.ledger.ApplyMatchResult(ctx, exec, match)
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "register match failed", slog.Any("error", err))
		return nil, err
	}

	s.metrics.MatchOperation("create")
	s.logger.InfoContext(ctx, "match registered", slog.String("match_id", match.ID.String()))
	return match, nil
}

// EditMatch reverses the persisted outcome, stores the new one and applies
// it, all in one transaction with the match row locked.
func (s *matchService) EditMatch(ctx context.Context, id uuid.UUID, input UpdateMatchInput) (*models.Match, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	var updated *models.Match
	err := s.tx.InTx(ctx, func(exec repositories.SQLExecutor) error {
		old, err := s.matchRepo.GetByID(ctx, exec, id)
		if err != nil {
			return mapMatchRepoError(err)
		}
		if err := s.ledger.ReverseMatchResult(ctx, exec, old); err != nil {
			return fmt.Errorf("reverse previous result: %w", err)
		}

		next := *old
		next.ScheduledAt = input.ScheduledAt
		next.ScoreA = input.ScoreA
		next.ScoreB = input.ScoreB
		next.Forfeit = input.Forfeit
		next.ForfeitedID = input.ForfeitedID
		next.Notes = input.Notes
		next.Status = input.Status
		if err := normalizeOutcome(&next); err != nil {
			return err
		}

		if err := s.matchRepo.Update(ctx, exec, &next); err != nil {
			return mapMatchRepoError(err)
		}
		if err := s.ledger.ApplyMatchResult(ctx, exec, &next); err != nil {
			return fmt.Errorf("apply new result: %w", err)
		}
		updated = &next
		return nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "edit match failed", slog.String("match_id", id.String()), slog.Any("error", err))
		return nil, err
	}

	s.metrics.MatchOperation("edit")
	s.logger.InfoContext(ctx, "match edited", slog.String("match_id", id.String()))
	return updated, nil
}

func (s *matchService) DeleteMatch(ctx context.Context, id uuid.UUID) error {
	err := s.tx.InTx(ctx, func(exec repositories.SQLExecutor) error {
		old, err := s.matchRepo.GetByID(ctx, exec, id)
		if err != nil {
			return mapMatchRepoError(err)
		}
		if err := s.ledger.ReverseMatchResult(ctx, exec, old); err != nil {
			return fmt.Errorf("reverse result: %w", err)
		}
		return mapMatchRepoError(s.matchRepo.Delete(ctx, exec, id))
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "delete match failed", slog.String("match_id", id.String()), slog.Any("error", err))
		return err
	}

	s.metrics.MatchOperation("delete")
	s.logger.InfoContext(ctx, "match deleted", slog.String("match_id", id.String()))
	return nil
}

func (s *matchService) ListMatches(ctx context.Context, limit int) ([]*models.Match, error) {
	if limit <= 0 {
		limit = DefaultMatchListLimit
	}
	matches, err := s.matchRepo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	return matches, nil
}

// normalizeOutcome checks the forfeit side, recomputes the winner and picks
// a default status.
func normalizeOutcome(m *models.Match) error {
	if m.Forfeit {
		if m.ForfeitedID == nil || (*m.ForfeitedID != m.TurmaAID && *m.ForfeitedID != m.TurmaBID) {
			return ErrForfeitSideRequired
		}
	} else {
		m.ForfeitedID = nil
	}
	m.WinnerID = m.DecideWinner()
	if m.Status == "" {
		m.Status = models.MatchStatusScheduled
		if m.Forfeit || m.HasScores() {
			m.Status = models.MatchStatusFinalized
		}
	}
	return nil
}

func mapMatchRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrMatchNotFound):
		return ErrMatchNotFound
	case errors.Is(err, repositories.ErrMatchTurmaInvalid):
		return ErrTurmaNotFound
	}
	return err
}
