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

const DefaultPenaltyListLimit = 20

type ApplyPenaltyInput struct {
	TurmaID uuid.UUID          `json:"turma_id" validate:"required"`
	Type    models.PenaltyType `json:"tipo_penalidade" validate:"required,oneof=wo_esportivo disciplinar nao_plantao nao_calouro"`
	Points  *int               `json:"valor_pontos" validate:"omitempty,min=0,max=1000"`
	Fine    *float64           `json:"valor_multa" validate:"omitempty,min=0,max=100000"`
	Article string             `json:"artigo_regulamento" validate:"required,min=1,max=50"`
	Reason  string             `json:"motivo" validate:"required,min=10,max=500"`
	// AppliedBy is taken from the caller's token, never from the body.
	AppliedBy *string `json:"-"`
}

type PenaltyService interface {
	ApplyPenalty(ctx context.Context, input ApplyPenaltyInput) (*models.PenaltyLog, error)
	ListRecent(ctx context.Context, limit int) ([]*models.PenaltyLog, error)
}

type penaltyService struct {
	tx          repositories.Transactor
	penaltyRepo repositories.PenaltyRepository
	ledger      LedgerService
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

func NewPenaltyService(
	tx repositories.Transactor,
	penaltyRepo repositories.PenaltyRepository,
	ledger LedgerService,
	m *metrics.Metrics,
	logger *slog.Logger,
) PenaltyService {
	return &penaltyService{
		tx:          tx,
		penaltyRepo: penaltyRepo,
		ledger:      ledger,
		metrics:     m,
		logger:      logger,
	}
}

// ApplyPenalty adds the value to the type's bucket and appends the log entry
// in the same transaction.
func (s *penaltyService) ApplyPenalty(ctx context.Context, input ApplyPenaltyInput) (*models.PenaltyLog, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	var value float64
	entry := &models.PenaltyLog{
		TurmaID:   input.TurmaID,
		Type:      input.Type,
		Article:   input.Article,
		Reason:    input.Reason,
		AppliedBy: input.AppliedBy,
	}
	if input.Type.IsMonetary() {
		if input.Fine == nil || input.Points != nil {
			return nil, ErrPenaltyValueMismatch
		}
		value = *input.Fine
		entry.Fine = input.Fine
	} else {
		if input.Points == nil || input.Fine != nil {
			return nil, ErrPenaltyValueMismatch
		}
		value = float64(*input.Points)
		entry.Points = input.Points
	}

	err := s.tx.InTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.ledger.ApplyPenalty(ctx, exec, input.TurmaID, input.Type, value); err != nil {
			return err
		}
		if err := s.penaltyRepo.Create(ctx, exec, entry); err != nil {
			if errors.Is(err, repositories.ErrPenaltyTurmaInvalid) {
				return ErrTurmaNotFound
			}
			return fmt.Errorf("failed to log penalty: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "apply penalty failed",
			slog.String("turma_id", input.TurmaID.String()),
			slog.String("type", string(input.Type)),
			slog.Any("error", err))
		return nil, err
	}

	s.metrics.PenaltyApplied(string(input.Type))
	s.logger.InfoContext(ctx, "penalty applied",
		slog.String("turma_id", input.TurmaID.String()),
		slog.String("type", string(input.Type)),
		slog.Float64("value", value))
	return entry, nil
}

func (s *penaltyService) ListRecent(ctx context.Context, limit int) ([]*models.PenaltyLog, error) {
	if limit <= 0 {
		limit = DefaultPenaltyListLimit
	}
	logs, err := s.penaltyRepo.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list penalties: %w", err)
	}
	return logs, nil
}
