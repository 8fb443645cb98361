package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/interclasses-scoreboard/brackets"
	"github.com/Dosada05/interclasses-scoreboard/metrics"
	"github.com/Dosada05/interclasses-scoreboard/models"
	"github.com/Dosada05/interclasses-scoreboard/repositories"
	"github.com/google/uuid"
)

type CreateBracketInput struct {
	Sport     string               `json:"modalidade" validate:"required,max=100"`
	Gender    models.Gender        `json:"genero_modalidade" validate:"required,oneof=Masculino Feminino Outro"`
	Format    models.BracketFormat `json:"formato" validate:"required,oneof=eliminatoria_simples grupos_mata_mata pontos_corridos"`
	TeamCount int                  `json:"numero_times" validate:"required"`
}

// SeedBracketInput lists turma ids in slot order; null entries are empty slots.
type SeedBracketInput struct {
	Slots   []*uuid.UUID `json:"slots" validate:"required"`
	Shuffle bool         `json:"sortear"`
}

type RecordMatchupResultInput struct {
	ScoreA *int `json:"placar_a" validate:"required,min=0,max=999"`
	ScoreB *int `json:"placar_b" validate:"required,min=0,max=999"`
}

type BracketService interface {
	CreateBracket(ctx context.Context, input CreateBracketInput) (*models.Bracket, error)
	SeedTeams(ctx context.Context, bracketID uuid.UUID, input SeedBracketInput) (*models.Bracket, error)
	RecordMatchupResult(ctx context.Context, bracketID uuid.UUID, matchupID string, input RecordMatchupResultInput) (*models.Bracket, error)
	GetBracket(ctx context.Context, bracketID uuid.UUID) (*models.Bracket, error)
	ListBrackets(ctx context.Context) ([]*models.Bracket, error)
	DeleteBracket(ctx context.Context, bracketID uuid.UUID) error
	MatchupsByPhase(ctx context.Context, bracketID uuid.UUID) ([]brackets.PhaseMatchups, error)
}

type bracketService struct {
	tx          repositories.Transactor
	bracketRepo repositories.BracketRepository
	turmaRepo   repositories.TurmaRepository
	matchRepo   repositories.MatchRepository
	ledger      LedgerService
	generator   brackets.BracketGenerator
	metrics     *metrics.Metrics
	logger      *slog.Logger
	now         func() time.Time
}

func NewBracketService(
	tx repositories.Transactor,
	bracketRepo repositories.BracketRepository,
	turmaRepo repositories.TurmaRepository,
	matchRepo repositories.MatchRepository,
	ledger LedgerService,
	generator brackets.BracketGenerator,
	m *metrics.Metrics,
	logger *slog.Logger,
) BracketService {
	return &bracketService{
		tx:          tx,
		bracketRepo: bracketRepo,
		turmaRepo:   turmaRepo,
		matchRepo:   matchRepo,
		ledger:      ledger,
		generator:   generator,
		metrics:     m,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *bracketService) CreateBracket(ctx context.Context, input CreateBracketInput) (*models.Bracket, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	phases, err := brackets.PhasesForTeamCount(input.TeamCount)
	if err != nil {
		return nil, err
	}

	bracket := &models.Bracket{
		Sport:     input.Sport,
		Gender:    input.Gender,
		Format:    input.Format,
		TeamCount: input.TeamCount,
		Status:    models.BracketStatusDraft,
		Structure: models.BracketStructure{
			Phases:   phases,
			Teams:    []models.BracketTeam{},
			Matchups: []*models.Matchup{},
		},
	}
	if err := s.bracketRepo.Create(ctx, bracket); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "bracket created",
		slog.String("bracket_id", bracket.ID.String()),
		slog.String("sport", bracket.Sport),
		slog.Int("team_count", bracket.TeamCount))
	return bracket, nil
}

// SeedTeams replaces the bracket's teams and matchups. Reseeding is allowed
// until the first result is recorded.
func (s *bracketService) SeedTeams(ctx context.Context, bracketID uuid.UUID, input SeedBracketInput) (*models.Bracket, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	var bracket *models.Bracket
	err := s.tx.InTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		bracket, err = s.bracketRepo.GetByID(ctx, exec, bracketID)
		if err != nil {
			return mapBracketRepoError(err)
		}
		for _, m := range bracket.Structure.Matchups {
			if m.WinnerID != nil {
				return ErrBracketLocked
			}
		}

		slots := make([]*models.BracketTeam, len(input.Slots))
		filled := 0
		for i, id := range input.Slots {
			if id == nil {
				continue
			}
			turma, err := s.turmaRepo.GetByID(ctx, exec, *id)
			if err != nil {
				if errors.Is(err, repositories.ErrTurmaNotFound) {
					return fmt.Errorf("%w: %s", ErrTurmaNotFound, id)
				}
				return err
			}
			slots[i] = &models.BracketTeam{ID: turma.ID, Name: turma.Name}
			filled++
		}
		if filled > bracket.TeamCount {
			return fmt.Errorf("%w: %d slots for %d teams", brackets.ErrTooManyTeams, filled, bracket.TeamCount)
		}

		phases := bracket.Structure.Phases
		if len(phases) == 0 {
			if phases, err = brackets.PhasesForTeamCount(bracket.TeamCount); err != nil {
				return err
			}
		}
		structure, err := s.generator.GenerateBracket(ctx, brackets.GenerateBracketParams{
			Phases:  phases,
			Slots:   slots,
			Shuffle: input.Shuffle,
		})
		if err != nil {
			return err
		}

		bracket.Structure = *structure
		bracket.Status = brackets.DeriveStatus(structure)
		return s.bracketRepo.UpdateStructure(ctx, exec, bracket)
	})
	if err != nil {
		s.logger.WarnContext(ctx, "seed bracket failed", slog.String("bracket_id", bracketID.String()), slog.Any("error", err))
		return nil, err
	}

	s.logger.InfoContext(ctx, "bracket seeded",
		slog.String("bracket_id", bracketID.String()),
		slog.Int("matchups", len(bracket.Structure.Matchups)),
		slog.Bool("shuffled", input.Shuffle))
	return bracket, nil
}

// RecordMatchupResult locks the bracket, records the result, propagates the
// winner, stores a finalized match mirroring the matchup and credits the
// winner, all in one transaction.
func (s *bracketService) RecordMatchupResult(ctx context.Context, bracketID uuid.UUID, matchupID string, input RecordMatchupResultInput) (*models.Bracket, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	var bracket *models.Bracket
	err := s.tx.InTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		bracket, err = s.bracketRepo.GetByID(ctx, exec, bracketID)
		if err != nil {
			return mapBracketRepoError(err)
		}
		if len(bracket.Structure.Matchups) == 0 {
			return ErrBracketNotSeeded
		}

		outcome, err := brackets.RecordResult(&bracket.Structure, matchupID, *input.ScoreA, *input.ScoreB)
		if err != nil {
			return err
		}
		bracket.Status = brackets.DeriveStatus(&bracket.Structure)
		if err := s.bracketRepo.UpdateStructure(ctx, exec, bracket); err != nil {
			return mapBracketRepoError(err)
		}

		played := s.now()
		winnerID := outcome.Winner.ID
		match := &models.Match{
			Sport:       bracket.Sport,
			Gender:      bracket.Gender,
			Phase:       outcome.Matchup.Phase,
			ScheduledAt: &played,
			TurmaAID:    outcome.Matchup.TeamA.ID,
			TurmaBID:    outcome.Matchup.TeamB.ID,
			ScoreA:      outcome.Matchup.ScoreA,
			ScoreB:      outcome.Matchup.ScoreB,
			WinnerID:    &winnerID,
			Status:      models.MatchStatusFinalized,
		}
		if err := s.matchRepo.Create(ctx, exec, match); err != nil {
			return mapMatchRepoError(err)
		}
		return s.ledger.ApplyMatchResult(ctx, exec, match)
	})
	if err != nil {
		s.logger.WarnContext(ctx, "record matchup result failed",
			slog.String("bracket_id", bracketID.String()),
			slog.String("matchup_id", matchupID),
			slog.Any("error", err))
		return nil, err
	}

	s.metrics.BracketResultRecorded()
	s.logger.InfoContext(ctx, "matchup result recorded",
		slog.String("bracket_id", bracketID.String()),
		slog.String("matchup_id", matchupID),
		slog.String("status", string(bracket.Status)))
	return bracket, nil
}

func (s *bracketService) GetBracket(ctx context.Context, bracketID uuid.UUID) (*models.Bracket, error) {
	b, err := s.bracketRepo.GetByID(ctx, nil, bracketID)
	if err != nil {
		return nil, mapBracketRepoError(err)
	}
	return b, nil
}

func (s *bracketService) ListBrackets(ctx context.Context) ([]*models.Bracket, error) {
	list, err := s.bracketRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list brackets: %w", err)
	}
	return list, nil
}

func (s *bracketService) DeleteBracket(ctx context.Context, bracketID uuid.UUID) error {
	if err := s.bracketRepo.Delete(ctx, bracketID); err != nil {
		return mapBracketRepoError(err)
	}
	s.logger.InfoContext(ctx, "bracket deleted", slog.String("bracket_id", bracketID.String()))
	return nil
}

func (s *bracketService) MatchupsByPhase(ctx context.Context, bracketID uuid.UUID) ([]brackets.PhaseMatchups, error) {
	b, err := s.GetBracket(ctx, bracketID)
	if err != nil {
		return nil, err
	}
	return brackets.MatchupsByPhase(&b.Structure), nil
}

func mapBracketRepoError(err error) error {
	if errors.Is(err, repositories.ErrBracketNotFound) {
		return ErrBracketNotFound
	}
	return err
}
