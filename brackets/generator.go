package brackets

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/interclasses-scoreboard/models"
)

const (
	PhaseQuarterfinals = "Quartas"
	PhaseSemifinal     = "Semifinal"
	PhaseFinal         = "Final"
)

var (
	ErrUnsupportedTeamCount = errors.New("team count must be 4, 8 or 16")
	ErrNotEnoughTeams       = errors.New("at least 2 teams are required to seed a bracket")
	ErrTooManyTeams         = errors.New("more teams than the bracket declares")
	ErrDuplicateTeam        = errors.New("a turma can occupy only one slot")
)

type GenerateBracketParams struct {
	Phases []string
	// Slots is the ordered seeding; nil entries are empty slots.
	Slots   []*models.BracketTeam
	Shuffle bool
}

type BracketGenerator interface {
	GenerateBracket(ctx context.Context, params GenerateBracketParams) (*models.BracketStructure, error)

	GetName() string
}

// PhasesForTeamCount returns the ordered phase names for a declared team count.
func PhasesForTeamCount(teamCount int) ([]string, error) {
	switch teamCount {
	case 4:
		return []string{PhaseFinal}, nil
	case 8:
		return []string{PhaseSemifinal, PhaseFinal}, nil
	case 16:
		return []string{PhaseQuarterfinals, PhaseSemifinal, PhaseFinal}, nil
	}
	return nil, fmt.Errorf("%w: got %d", ErrUnsupportedTeamCount, teamCount)
}

// compactSlots drops empty slots and rejects a turma seeded twice.
func compactSlots(slots []*models.BracketTeam) ([]models.BracketTeam, error) {
	teams := make([]models.BracketTeam, 0, len(slots))
	seen := make(map[string]struct{}, len(slots))
	for _, s := range slots {
		if s == nil {
			continue
		}
		key := s.ID.String()
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTeam, key)
		}
		seen[key] = struct{}{}
		teams = append(teams, *s)
	}
	return teams, nil
}
