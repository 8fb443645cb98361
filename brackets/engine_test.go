package brackets

import (
	"context"
	"testing"

	"github.com/Dosada05/interclasses-scoreboard/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded(t *testing.T, teamCount, teamsSeeded int) (*models.BracketStructure, []*models.BracketTeam) {
	t.Helper()
	phases, err := PhasesForTeamCount(teamCount)
	require.NoError(t, err)
	slots := teams(teamsSeeded)
	s, err := sequentialGenerator(nil).GenerateBracket(context.Background(), GenerateBracketParams{Phases: phases, Slots: slots})
	require.NoError(t, err)
	return s, slots
}

func TestRecordResultPropagatesToLinkedSlot(t *testing.T) {
	s, slots := seeded(t, 8, 4)

	out, err := RecordResult(s, "m2", 1, 3)
	require.NoError(t, err)
	assert.Equal(t, slots[3].ID, out.Winner.ID)
	assert.Equal(t, slots[2].ID, out.Loser.ID)
	require.NotNil(t, out.AdvancedTo)
	assert.Equal(t, "m3", out.AdvancedTo.ID)

	final, err := FindMatchup(s, "m3")
	require.NoError(t, err)
	assert.Nil(t, final.TeamA, "slot A belongs to the winner of m1")
	require.NotNil(t, final.TeamB)
	assert.Equal(t, slots[3].ID, final.TeamB.ID)
	assert.Equal(t, models.MatchupAwaiting, final.Status())

	_, err = RecordResult(s, "m1", 5, 0)
	require.NoError(t, err)
	assert.Equal(t, slots[0].ID, final.TeamA.ID)
	assert.Equal(t, models.MatchupReady, final.Status())
}

func TestRecordResultSlotFollowsPositionNotArrival(t *testing.T) {
	s, _ := seeded(t, 16, 8)
	grouped := MatchupsByPhase(s)
	require.Len(t, grouped, 3)
	quarters, semis := grouped[0].Matchups, grouped[1].Matchups
	require.Len(t, quarters, 4)
	require.Len(t, semis, 2)

	out, err := RecordResult(s, quarters[1].ID, 3, 1)
	require.NoError(t, err)
	require.NotNil(t, out.AdvancedTo)
	assert.Equal(t, semis[0].ID, out.AdvancedTo.ID)
	assert.Nil(t, semis[0].TeamA, "slot A stays reserved for the winner of the first quarter")
	require.NotNil(t, semis[0].TeamB)
	assert.Equal(t, out.Winner.ID, semis[0].TeamB.ID)

	first, err := RecordResult(s, quarters[0].ID, 0, 2)
	require.NoError(t, err)
	require.NotNil(t, semis[0].TeamA)
	assert.Equal(t, first.Winner.ID, semis[0].TeamA.ID)
	assert.Equal(t, models.MatchupReady, semis[0].Status())
}

func TestRecordResultLastPhaseDoesNotPropagate(t *testing.T) {
	s, slots := seeded(t, 4, 4)

	out, err := RecordResult(s, "m1", 2, 1)
	require.NoError(t, err)
	assert.Nil(t, out.AdvancedTo)
	assert.Equal(t, slots[0].ID, *out.Matchup.WinnerID)
	assert.Equal(t, 2, *out.Matchup.ScoreA)
	assert.Equal(t, 1, *out.Matchup.ScoreB)
	assert.Equal(t, models.MatchupFinalized, out.Matchup.Status())
}

func TestRecordResultRejections(t *testing.T) {
	s, _ := seeded(t, 8, 4)
	before := cloneStructure(t, s)

	_, err := RecordResult(s, "m1", 2, 2)
	assert.ErrorIs(t, err, ErrMatchupTie)
	_, err = RecordResult(s, "m1", -1, 2)
	assert.ErrorIs(t, err, ErrInvalidScore)
	_, err = RecordResult(s, "m9", 1, 0)
	assert.ErrorIs(t, err, ErrMatchupNotFound)
	_, err = RecordResult(s, "m3", 1, 0)
	assert.ErrorIs(t, err, ErrMatchupNotReady)

	if diff := cmp.Diff(before, s); diff != "" {
		t.Errorf("rejected results changed the structure (-before +after):\n%s", diff)
	}

	_, err = RecordResult(s, "m1", 1, 0)
	require.NoError(t, err)
	_, err = RecordResult(s, "m1", 0, 1)
	assert.ErrorIs(t, err, ErrMatchupAlreadyFinalized)
}

func TestRecordResultNextSlotTaken(t *testing.T) {
	s, slots := seeded(t, 8, 4)
	final, err := FindMatchup(s, "m3")
	require.NoError(t, err)
	final.TeamA = slots[1]

	_, err = RecordResult(s, "m1", 1, 0)
	assert.ErrorIs(t, err, ErrNextMatchupLocked)
	m1, _ := FindMatchup(s, "m1")
	assert.Nil(t, m1.WinnerID)
}

func TestRecordResultUnlinkedStructure(t *testing.T) {
	s, slots := seeded(t, 8, 4)
	for _, m := range s.Matchups {
		m.NextMatchupID, m.NextSlot = nil, nil
	}

	_, err := RecordResult(s, "m2", 0, 1)
	require.NoError(t, err)
	final, _ := FindMatchup(s, "m3")
	require.NotNil(t, final.TeamA)
	assert.Equal(t, slots[3].ID, final.TeamA.ID, "without links the first empty slot is used")
}

func TestDeriveStatus(t *testing.T) {
	assert.Equal(t, models.BracketStatusDraft, DeriveStatus(&models.BracketStructure{Phases: []string{PhaseFinal}}))

	s, _ := seeded(t, 8, 4)
	assert.Equal(t, models.BracketStatusActive, DeriveStatus(s))

	for _, id := range []string{"m1", "m2"} {
		_, err := RecordResult(s, id, 3, 1)
		require.NoError(t, err)
	}
	assert.Equal(t, models.BracketStatusActive, DeriveStatus(s))

	_, err := RecordResult(s, "m3", 0, 2)
	require.NoError(t, err)
	assert.Equal(t, models.BracketStatusFinished, DeriveStatus(s))
}

func TestDeriveStatusFourTeamsNeedsBothFinals(t *testing.T) {
	s, _ := seeded(t, 4, 4)
	_, err := RecordResult(s, "m1", 1, 0)
	require.NoError(t, err)
	assert.Equal(t, models.BracketStatusActive, DeriveStatus(s))

	_, err = RecordResult(s, "m2", 1, 0)
	require.NoError(t, err)
	assert.Equal(t, models.BracketStatusFinished, DeriveStatus(s))
}

func TestMatchupsByPhaseKeepsPhaseOrder(t *testing.T) {
	s, _ := seeded(t, 16, 8)
	grouped := MatchupsByPhase(s)

	var got []string
	for _, g := range grouped {
		got = append(got, g.Phase)
	}
	assert.Equal(t, []string{PhaseQuarterfinals, PhaseSemifinal, PhaseFinal}, got)

	empty := MatchupsByPhase(&models.BracketStructure{Phases: []string{PhaseFinal}})
	require.Len(t, empty, 1)
	assert.NotNil(t, empty[0].Matchups)
	assert.Empty(t, empty[0].Matchups)
}

func cloneStructure(t *testing.T, s *models.BracketStructure) *models.BracketStructure {
	t.Helper()
	cp := &models.BracketStructure{
		Phases: append([]string(nil), s.Phases...),
		Teams:  append([]models.BracketTeam(nil), s.Teams...),
	}
	for _, m := range s.Matchups {
		c := *m
		cp.Matchups = append(cp.Matchups, &c)
	}
	return cp
}
