package brackets

import (
	"errors"
	"fmt"

	"github.com/Dosada05/interclasses-scoreboard/models"
)

var (
	ErrMatchupNotFound         = errors.New("matchup not found in bracket")
	ErrMatchupNotReady         = errors.New("matchup does not have both teams yet")
	ErrMatchupAlreadyFinalized = errors.New("matchup already has a winner")
	ErrMatchupTie              = errors.New("bracket matchups cannot end in a tie")
	ErrInvalidScore            = errors.New("scores must be non-negative")
	ErrNextMatchupLocked       = errors.New("next matchup slot is already taken")
)

// ResultOutcome describes what RecordResult changed.
type ResultOutcome struct {
	Matchup    *models.Matchup
	Winner     models.BracketTeam
	Loser      models.BracketTeam
	AdvancedTo *models.Matchup // nil when the matchup belongs to the last phase
}

// PhaseMatchups groups matchups of one phase, in phase order.
type PhaseMatchups struct {
	Phase    string            `json:"fase"`
	Matchups []*models.Matchup `json:"confrontos"`
}

func FindMatchup(s *models.BracketStructure, matchupID string) (*models.Matchup, error) {
	for _, m := range s.Matchups {
		if m.ID == matchupID {
			return m, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrMatchupNotFound, matchupID)
}

// RecordResult stores the scores and winner of a matchup and moves the
// winner forward. The structure is modified in place.
func RecordResult(s *models.BracketStructure, matchupID string, scoreA, scoreB int) (*ResultOutcome, error) {
	if scoreA < 0 || scoreB < 0 {
		return nil, ErrInvalidScore
	}
	if scoreA == scoreB {
		return nil, ErrMatchupTie
	}

	m, err := FindMatchup(s, matchupID)
	if err != nil {
		return nil, err
	}
	switch m.Status() {
	case models.MatchupFinalized:
		return nil, ErrMatchupAlreadyFinalized
	case models.MatchupAwaiting:
		return nil, ErrMatchupNotReady
	}

	winner, loser := *m.TeamA, *m.TeamB
	if scoreB > scoreA {
		winner, loser = loser, winner
	}

	next, slot, err := nextSlot(s, m)
	if err != nil {
		return nil, err
	}

	m.ScoreA = &scoreA
	m.ScoreB = &scoreB
	winnerID := winner.ID
	m.WinnerID = &winnerID

	if next != nil {
		w := winner
		if slot == models.SlotA {
			next.TeamA = &w
		} else {
			next.TeamB = &w
		}
	}

	return &ResultOutcome{Matchup: m, Winner: winner, Loser: loser, AdvancedTo: next}, nil
}

// nextSlot resolves where the winner of m goes. Structures seeded with
// explicit links use them, so the slot is fixed by position and not by the
// order results arrive in: the winner of matchup 1 lands in slot B even while
// slot A is still empty. Older structures without links fall back to the
// first empty slot of the next phase, A before B.
func nextSlot(s *models.BracketStructure, m *models.Matchup) (*models.Matchup, models.Slot, error) {
	phaseIdx := phaseIndex(s.Phases, m.Phase)
	if phaseIdx < 0 || phaseIdx == len(s.Phases)-1 {
		return nil, "", nil
	}

	if m.NextMatchupID != nil && m.NextSlot != nil {
		next, err := FindMatchup(s, *m.NextMatchupID)
		if err != nil {
			return nil, "", err
		}
		taken := next.TeamA
		if *m.NextSlot == models.SlotB {
			taken = next.TeamB
		}
		if taken != nil {
			return nil, "", fmt.Errorf("%w: %s", ErrNextMatchupLocked, next.ID)
		}
		return next, *m.NextSlot, nil
	}

	nextPhase := s.Phases[phaseIdx+1]
	for _, c := range s.Matchups {
		if c.Phase != nextPhase {
			continue
		}
		if c.TeamA == nil {
			return c, models.SlotA, nil
		}
		if c.TeamB == nil {
			return c, models.SlotB, nil
		}
	}
	return nil, "", nil
}

// MatchupsByPhase groups matchups by phase, following the phase order.
func MatchupsByPhase(s *models.BracketStructure) []PhaseMatchups {
	grouped := make([]PhaseMatchups, 0, len(s.Phases))
	for _, phase := range s.Phases {
		pm := PhaseMatchups{Phase: phase, Matchups: []*models.Matchup{}}
		for _, m := range s.Matchups {
			if m.Phase == phase {
				pm.Matchups = append(pm.Matchups, m)
			}
		}
		grouped = append(grouped, pm)
	}
	return grouped
}

// DeriveStatus computes the bracket state from its matchups: draft with no
// matchups, finished once every matchup of the last phase has a winner,
// active otherwise.
func DeriveStatus(s *models.BracketStructure) models.BracketStatus {
	if len(s.Matchups) == 0 || len(s.Phases) == 0 {
		return models.BracketStatusDraft
	}
	last := s.Phases[len(s.Phases)-1]
	finals := 0
	for _, m := range s.Matchups {
		if m.Phase != last {
			continue
		}
		finals++
		if m.WinnerID == nil {
			return models.BracketStatusActive
		}
	}
	if finals == 0 {
		return models.BracketStatusActive
	}
	return models.BracketStatusFinished
}

func phaseIndex(phases []string, phase string) int {
	for i, p := range phases {
		if p == phase {
			return i
		}
	}
	return -1
}
