package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Dosada05/interclasses-scoreboard/models"
	"github.com/Dosada05/interclasses-scoreboard/repositories"
	"gopkg.in/yaml.v3"
)

// Roster is the season file read by SeedRoster.
type Roster struct {
	Turmas []RosterTurma `yaml:"turmas"`
}

type RosterTurma struct {
	Name       string `yaml:"nome" validate:"required,max=100"`
	Graduation int    `yaml:"graduacao" validate:"min=0"`
	Boarding   bool   `yaml:"internato"`
	Freshman   bool   `yaml:"calouro"`
	SixthYear  bool   `yaml:"sexto_ano"`
}

type TurmaService interface {
	ListTurmas(ctx context.Context) ([]*models.Turma, error)
	// SeedRoster upserts every turma of the roster by name and makes sure
	// each has its aggregate score row.
	SeedRoster(ctx context.Context, r io.Reader) ([]*models.Turma, error)
}

type turmaService struct {
	tx        repositories.Transactor
	turmaRepo repositories.TurmaRepository
	scoreRepo repositories.ScoreRepository
	logger    *slog.Logger
}

func NewTurmaService(tx repositories.Transactor, turmaRepo repositories.TurmaRepository, scoreRepo repositories.ScoreRepository, logger *slog.Logger) TurmaService {
	return &turmaService{tx: tx, turmaRepo: turmaRepo, scoreRepo: scoreRepo, logger: logger}
}

func (s *turmaService) ListTurmas(ctx context.Context) ([]*models.Turma, error) {
	list, err := s.turmaRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list turmas: %w", err)
	}
	return list, nil
}

// ParseRoster decodes and validates a YAML roster.
func ParseRoster(r io.Reader) (*Roster, error) {
	var roster Roster
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&roster); err != nil {
		if err == io.EOF {
			return nil, ErrEmptyRoster
		}
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	if len(roster.Turmas) == 0 {
		return nil, ErrEmptyRoster
	}
	seen := make(map[string]struct{}, len(roster.Turmas))
	for i := range roster.Turmas {
		t := &roster.Turmas[i]
		t.Name = strings.TrimSpace(t.Name)
		if err := validateStruct(t); err != nil {
			return nil, fmt.Errorf("turma #%d: %w", i+1, err)
		}
		if _, dup := seen[t.Name]; dup {
			return nil, fieldError("nome", fmt.Sprintf("%q is listed twice", t.Name))
		}
		seen[t.Name] = struct{}{}
	}
	return &roster, nil
}

func (s *turmaService) SeedRoster(ctx context.Context, r io.Reader) ([]*models.Turma, error) {
	roster, err := ParseRoster(r)
	if err != nil {
		return nil, err
	}

	turmas := make([]*models.Turma, 0, len(roster.Turmas))
	err = s.tx.InTx(ctx, func(exec repositories.SQLExecutor) error {
		for _, rt := range roster.Turmas {
			t := &models.Turma{
				Name:       rt.Name,
				Graduation: rt.Graduation,
				Boarding:   rt.Boarding,
				Freshman:   rt.Freshman,
				SixthYear:  rt.SixthYear,
			}
			if err := s.turmaRepo.Create(ctx, exec, t); err != nil {
				return err
			}
			if err := s.scoreRepo.Create(ctx, exec, t.ID); err != nil {
				return err
			}
			turmas = append(turmas, t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "roster seeded", slog.Int("turmas", len(turmas)))
	return turmas, nil
}
