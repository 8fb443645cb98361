package brackets

import (
	"context"
	"errors"
	"math/rand/v2"

	"github.com/Dosada05/interclasses-scoreboard/models"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

type SingleEliminationGenerator struct {
	rng   *rand.Rand
	newID func() (string, error)
}

// NewSingleEliminationGenerator uses rng for shuffled seedings; a nil rng
// falls back to the global source.
func NewSingleEliminationGenerator(rng *rand.Rand) BracketGenerator {
	return &SingleEliminationGenerator{
		rng:   rng,
		newID: func() (string, error) { return gonanoid.New(12) },
	}
}

func (g *SingleEliminationGenerator) GetName() string {
	return "SingleElimination"
}

// GenerateBracket pairs adjacent slots into first-phase matchups (0v1, 2v3,
// ...) and materializes the empty matchups of every later phase. Matchup i
// of a phase feeds matchup i/2 of the next one, slot A for even i and slot B
// for odd i. A trailing slot without an opponent gets no matchup.
func (g *SingleEliminationGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) (*models.BracketStructure, error) {
	if len(params.Phases) == 0 {
		return nil, errors.New("bracket has no phases")
	}

	teams, err := compactSlots(params.Slots)
	if err != nil {
		return nil, err
	}
	if len(teams) < 2 {
		return nil, ErrNotEnoughTeams
	}

	if params.Shuffle {
		shuffle := rand.Shuffle
		if g.rng != nil {
			shuffle = g.rng.Shuffle
		}
		shuffle(len(teams), func(i, j int) { teams[i], teams[j] = teams[j], teams[i] })
	}

	structure := &models.BracketStructure{
		Phases:   append([]string(nil), params.Phases...),
		Teams:    teams,
		Matchups: make([]*models.Matchup, 0, len(teams)),
	}

	var previous []*models.Matchup
	for phaseIdx, phase := range params.Phases {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var current []*models.Matchup
		if phaseIdx == 0 {
			for i := 0; i+1 < len(teams); i += 2 {
				a, b := teams[i], teams[i+1]
				m, err := g.newMatchup(phase, len(current))
				if err != nil {
					return nil, err
				}
				m.TeamA, m.TeamB = &a, &b
				current = append(current, m)
			}
		} else {
			count := (len(previous) + 1) / 2
			for i := 0; i < count; i++ {
				m, err := g.newMatchup(phase, i)
				if err != nil {
					return nil, err
				}
				current = append(current, m)
			}
			for i, src := range previous {
				next := current[i/2]
				slot := models.SlotA
				if i%2 == 1 {
					slot = models.SlotB
				}
				nextID := next.ID
				src.NextMatchupID = &nextID
				src.NextSlot = &slot
			}
		}

		structure.Matchups = append(structure.Matchups, current...)
		previous = current
	}

	return structure, nil
}

func (g *SingleEliminationGenerator) newMatchup(phase string, position int) (*models.Matchup, error) {
	id, err := g.newID()
	if err != nil {
		return nil, err
	}
	return &models.Matchup{
		ID:       id,
		Phase:    phase,
		Position: position,
	}, nil
}
