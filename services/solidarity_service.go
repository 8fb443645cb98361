package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Dosada05/interclasses-scoreboard/models"
	"github.com/Dosada05/interclasses-scoreboard/repositories"
	"github.com/google/uuid"
)

const (
	BloodDonorThresholdPercent = 10.0
	BloodDonationPoints        = 5.0
	MinimumBaskets             = 3
)

type FoodBloodInput struct {
	FoodKg             *float64 `json:"kg_alimentos" validate:"omitempty,min=0,max=100000"`
	BloodDonorsPercent *float64 `json:"percentual_doadores_sangue" validate:"omitempty,min=0,max=100"`
}

type BasketsInput struct {
	Baskets *int `json:"cestas_basicas_entregues" validate:"required,min=0,max=1000"`
}

// SolidarityEntry is an aggregate row annotated for the solidarity listing.
type SolidarityEntry struct {
	*models.AggregateScore
	MissingBaskets bool `json:"cestas_faltantes"`
}

type SolidarityService interface {
	RecordFoodAndBlood(ctx context.Context, turmaID uuid.UUID, input FoodBloodInput) (*models.AggregateScore, error)
	RecordBaskets(ctx context.Context, turmaID uuid.UUID, input BasketsInput) (*models.AggregateScore, error)
	// List returns every turma, or with onlyRecorded just those with food
	// or blood donors on record.
	List(ctx context.Context, onlyRecorded bool) ([]SolidarityEntry, error)
	ClearSolidarity(ctx context.Context, turmaID uuid.UUID) error
}

type solidarityService struct {
	scoreRepo repositories.ScoreRepository
	logger    *slog.Logger
}

func NewSolidarityService(scoreRepo repositories.ScoreRepository, logger *slog.Logger) SolidarityService {
	return &solidarityService{scoreRepo: scoreRepo, logger: logger}
}

// BloodPoints is all-or-nothing at the donor threshold.
func BloodPoints(donorsPercent float64) float64 {
	if donorsPercent >= BloodDonorThresholdPercent {
		return BloodDonationPoints
	}
	return 0
}

func (s *solidarityService) RecordFoodAndBlood(ctx context.Context, turmaID uuid.UUID, input FoodBloodInput) (*models.AggregateScore, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	if input.FoodKg == nil && input.BloodDonorsPercent == nil {
		return nil, fieldError("kg_alimentos", "kg_alimentos or percentual_doadores_sangue is required")
	}

	upd := repositories.SolidarityUpdate{
		FoodKg:             input.FoodKg,
		BloodDonorsPercent: input.BloodDonorsPercent,
	}
	if input.BloodDonorsPercent != nil {
		pts := BloodPoints(*input.BloodDonorsPercent)
		upd.BloodPoints = &pts
	}
	if err := s.scoreRepo.UpdateSolidarity(ctx, nil, turmaID, upd); err != nil {
		return nil, mapScoreError(err)
	}
	s.logger.InfoContext(ctx, "solidarity data recorded", slog.String("turma_id", turmaID.String()))
	return s.get(ctx, turmaID)
}

func (s *solidarityService) RecordBaskets(ctx context.Context, turmaID uuid.UUID, input BasketsInput) (*models.AggregateScore, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	if err := s.scoreRepo.UpdateSolidarity(ctx, nil, turmaID, repositories.SolidarityUpdate{BasketsDelivered: input.Baskets}); err != nil {
		return nil, mapScoreError(err)
	}
	if *input.Baskets < MinimumBaskets {
		s.logger.WarnContext(ctx, "turma below the basket minimum",
			slog.String("turma_id", turmaID.String()),
			slog.Int("baskets", *input.Baskets))
	}
	return s.get(ctx, turmaID)
}

func (s *solidarityService) List(ctx context.Context, onlyRecorded bool) ([]SolidarityEntry, error) {
	rows, err := s.scoreRepo.ListByFoodKg(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list solidarity data: %w", err)
	}
	entries := make([]SolidarityEntry, 0, len(rows))
	for _, r := range rows {
		if onlyRecorded && r.FoodKg <= 0 && r.BloodDonorsPercent <= 0 {
			continue
		}
		entries = append(entries, SolidarityEntry{AggregateScore: r, MissingBaskets: r.BasketsDelivered < MinimumBaskets})
	}
	return entries, nil
}

// ClearSolidarity wipes one turma's food and blood record. Baskets are kept.
func (s *solidarityService) ClearSolidarity(ctx context.Context, turmaID uuid.UUID) error {
	if err := s.scoreRepo.ClearSolidarity(ctx, nil, turmaID); err != nil {
		return mapScoreError(err)
	}
	s.logger.InfoContext(ctx, "solidarity data cleared", slog.String("turma_id", turmaID.String()))
	return nil
}

func (s *solidarityService) get(ctx context.Context, turmaID uuid.UUID) (*models.AggregateScore, error) {
	score, err := s.scoreRepo.GetByTurma(ctx, nil, turmaID)
	if err != nil {
		return nil, mapScoreError(err)
	}
	return score, nil
}
