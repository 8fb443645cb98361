package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/interclasses-scoreboard/models"
	"github.com/Dosada05/interclasses-scoreboard/repositories"
	"github.com/google/uuid"
)

type CreateAthleteInput struct {
	FullName      string        `json:"nome_completo" validate:"required,min=3,max=100,personname"`
	Gender        models.Gender `json:"genero" validate:"required,oneof=Masculino Feminino Outro"`
	TurmaID       uuid.UUID     `json:"turma_id" validate:"required"`
	Sports        []string      `json:"modalidades_inscritas" validate:"required,min=1,dive,required,max=100"`
	SportPriority *string       `json:"prioridade_esporte" validate:"omitempty,max=100"`
}

type AthleteService interface {
	CreateAthlete(ctx context.Context, input CreateAthleteInput) (*models.Athlete, error)
	ListAthletes(ctx context.Context, turmaID *uuid.UUID) ([]*models.Athlete, error)
	DeleteAthlete(ctx context.Context, id uuid.UUID) error
}

type athleteService struct {
	athleteRepo repositories.AthleteRepository
	logger      *slog.Logger
}

func NewAthleteService(athleteRepo repositories.AthleteRepository, logger *slog.Logger) AthleteService {
	return &athleteService{athleteRepo: athleteRepo, logger: logger}
}

func (s *athleteService) CreateAthlete(ctx context.Context, input CreateAthleteInput) (*models.Athlete, error) {
	input.FullName = strings.TrimSpace(input.FullName)
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	athlete := &models.Athlete{
		FullName:      input.FullName,
		Gender:        input.Gender,
		TurmaID:       input.TurmaID,
		Sports:        input.Sports,
		SportPriority: input.SportPriority,
	}
	if err := s.athleteRepo.Create(ctx, athlete); err != nil {
		if errors.Is(err, repositories.ErrAthleteTurmaInvalid) {
			return nil, ErrTurmaNotFound
		}
		return nil, err
	}
	s.logger.InfoContext(ctx, "athlete registered", slog.String("athlete_id", athlete.ID.String()))
	return athlete, nil
}

func (s *athleteService) ListAthletes(ctx context.Context, turmaID *uuid.UUID) ([]*models.Athlete, error) {
	list, err := s.athleteRepo.List(ctx, turmaID)
	if err != nil {
		return nil, fmt.Errorf("failed to list athletes: %w", err)
	}
	return list, nil
}

func (s *athleteService) DeleteAthlete(ctx context.Context, id uuid.UUID) error {
	if err := s.athleteRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrAthleteNotFound) {
			return ErrAthleteNotFound
		}
		return err
	}
	return nil
}
