package services

import (
	"context"
	"testing"

	"github.com/Dosada05/interclasses-scoreboard/brackets"
	"github.com/Dosada05/interclasses-scoreboard/models"
	"github.com/Dosada05/interclasses-scoreboard/repositories"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBracketFixture(n int) (*league, BracketService) {
	l := newLeague(n)
	svc := NewBracketService(l.tx, l.brackets, l.turmas, l.matches, l.ledger(),
		brackets.NewSingleEliminationGenerator(nil), nil, discardLogger)
	return l, svc
}

func createBracket(t *testing.T, svc BracketService, teams int) *models.Bracket {
	t.Helper()
	b, err := svc.CreateBracket(context.Background(), CreateBracketInput{
		Sport:     "Basquete",
		Gender:    models.GenderFemale,
		Format:    models.FormatSingleElimination,
		TeamCount: teams,
	})
	require.NoError(t, err)
	return b
}

func slotsOf(ids ...uuid.UUID) []*uuid.UUID {
	out := make([]*uuid.UUID, len(ids))
	for i := range ids {
		out[i] = uuidPtr(ids[i])
	}
	return out
}

func TestCreateBracket(t *testing.T) {
	_, svc := newBracketFixture(0)

	b := createBracket(t, svc, 8)
	assert.Equal(t, models.BracketStatusDraft, b.Status)
	assert.Equal(t, []string{brackets.PhaseSemifinal, brackets.PhaseFinal}, b.Structure.Phases)
	assert.Empty(t, b.Structure.Matchups)

	_, err := svc.CreateBracket(context.Background(), CreateBracketInput{
		Sport: "Basquete", Gender: models.GenderFemale, Format: models.FormatSingleElimination, TeamCount: 6,
	})
	assert.ErrorIs(t, err, brackets.ErrUnsupportedTeamCount)
}

func TestSeedTeams(t *testing.T) {
	ctx := context.Background()
	l, svc := newBracketFixture(4)
	b := createBracket(t, svc, 8)

	seeded, err := svc.SeedTeams(ctx, b.ID, SeedBracketInput{Slots: slotsOf(l.ids...)})
	require.NoError(t, err)
	assert.Equal(t, models.BracketStatusActive, seeded.Status)

	phases, err := svc.MatchupsByPhase(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, phases, 2)
	require.Len(t, phases[0].Matchups, 2)
	require.Len(t, phases[1].Matchups, 1)
	assert.Equal(t, l.ids[0], phases[0].Matchups[0].TeamA.ID)
	assert.Equal(t, l.ids[1], phases[0].Matchups[0].TeamB.ID)
	assert.Equal(t, l.ids[2], phases[0].Matchups[1].TeamA.ID)
	assert.Equal(t, l.ids[3], phases[0].Matchups[1].TeamB.ID)
	assert.Equal(t, models.MatchupAwaiting, phases[1].Matchups[0].Status())
}

func TestSeedTeamsErrors(t *testing.T) {
	ctx := context.Background()
	l, svc := newBracketFixture(5)

	t.Run("too many teams", func(t *testing.T) {
		b := createBracket(t, svc, 4)
		_, err := svc.SeedTeams(ctx, b.ID, SeedBracketInput{Slots: slotsOf(l.ids...)})
		assert.ErrorIs(t, err, brackets.ErrTooManyTeams)
	})

	t.Run("single team", func(t *testing.T) {
		b := createBracket(t, svc, 4)
		_, err := svc.SeedTeams(ctx, b.ID, SeedBracketInput{Slots: []*uuid.UUID{uuidPtr(l.ids[0]), nil}})
		assert.ErrorIs(t, err, brackets.ErrNotEnoughTeams)
	})

	t.Run("unknown turma", func(t *testing.T) {
		b := createBracket(t, svc, 4)
		_, err := svc.SeedTeams(ctx, b.ID, SeedBracketInput{Slots: slotsOf(l.ids[0], uuid.New())})
		assert.ErrorIs(t, err, ErrTurmaNotFound)
	})

	t.Run("unknown bracket", func(t *testing.T) {
		_, err := svc.SeedTeams(ctx, uuid.New(), SeedBracketInput{Slots: slotsOf(l.ids[0], l.ids[1])})
		assert.ErrorIs(t, err, ErrBracketNotFound)
	})

	t.Run("duplicate turma", func(t *testing.T) {
		b := createBracket(t, svc, 4)
		_, err := svc.SeedTeams(ctx, b.ID, SeedBracketInput{Slots: slotsOf(l.ids[0], l.ids[0])})
		assert.ErrorIs(t, err, brackets.ErrDuplicateTeam)
	})
}

func TestRecordMatchupResultPropagatesAndCredits(t *testing.T) {
	ctx := context.Background()
	l, svc := newBracketFixture(4)
	b := createBracket(t, svc, 8)
	_, err := svc.SeedTeams(ctx, b.ID, SeedBracketInput{Slots: slotsOf(l.ids...)})
	require.NoError(t, err)

	phases, err := svc.MatchupsByPhase(ctx, b.ID)
	require.NoError(t, err)
	semi1, semi2 := phases[0].Matchups[0], phases[0].Matchups[1]
	final := phases[1].Matchups[0]

	updated, err := svc.RecordMatchupResult(ctx, b.ID, semi1.ID, RecordMatchupResultInput{ScoreA: intPtr(40), ScoreB: intPtr(52)})
	require.NoError(t, err)
	assert.Equal(t, models.BracketStatusActive, updated.Status)

	f, err := brackets.FindMatchup(&updated.Structure, final.ID)
	require.NoError(t, err)
	require.NotNil(t, f.TeamA)
	assert.Equal(t, l.ids[1], f.TeamA.ID)
	assert.Nil(t, f.TeamB)

	assert.Equal(t, 3.0, l.sport(1))
	assert.Zero(t, l.sport(0))
	count, _ := l.matches.Count(ctx)
	assert.Equal(t, 1, count)
	recent, _ := l.matches.List(ctx, 1)
	require.Len(t, recent, 1)
	assert.Equal(t, models.MatchStatusFinalized, recent[0].Status)
	assert.Equal(t, brackets.PhaseSemifinal, recent[0].Phase)
	assert.Equal(t, "Basquete", recent[0].Sport)

	_, err = svc.RecordMatchupResult(ctx, b.ID, semi2.ID, RecordMatchupResultInput{ScoreA: intPtr(60), ScoreB: intPtr(20)})
	require.NoError(t, err)
	done, err := svc.RecordMatchupResult(ctx, b.ID, final.ID, RecordMatchupResultInput{ScoreA: intPtr(70), ScoreB: intPtr(71)})
	require.NoError(t, err)

	assert.Equal(t, models.BracketStatusFinished, done.Status)
	assert.Equal(t, 3.0, l.sport(1))
	assert.Equal(t, 6.0, l.sport(2))
}

func TestRecordMatchupResultRejections(t *testing.T) {
	ctx := context.Background()
	l, svc := newBracketFixture(4)
	b := createBracket(t, svc, 8)

	_, err := svc.RecordMatchupResult(ctx, b.ID, "x", RecordMatchupResultInput{ScoreA: intPtr(1), ScoreB: intPtr(0)})
	assert.ErrorIs(t, err, ErrBracketNotSeeded)

	_, err = svc.SeedTeams(ctx, b.ID, SeedBracketInput{Slots: slotsOf(l.ids...)})
	require.NoError(t, err)
	phases, err := svc.MatchupsByPhase(ctx, b.ID)
	require.NoError(t, err)
	semi := phases[0].Matchups[0]
	final := phases[1].Matchups[0]

	_, err = svc.RecordMatchupResult(ctx, b.ID, semi.ID, RecordMatchupResultInput{ScoreA: intPtr(2), ScoreB: intPtr(2)})
	assert.ErrorIs(t, err, brackets.ErrMatchupTie)

	_, err = svc.RecordMatchupResult(ctx, b.ID, semi.ID, RecordMatchupResultInput{ScoreA: intPtr(2)})
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = svc.RecordMatchupResult(ctx, b.ID, final.ID, RecordMatchupResultInput{ScoreA: intPtr(2), ScoreB: intPtr(1)})
	assert.ErrorIs(t, err, brackets.ErrMatchupNotReady)

	_, err = svc.RecordMatchupResult(ctx, b.ID, "missing", RecordMatchupResultInput{ScoreA: intPtr(2), ScoreB: intPtr(1)})
	assert.ErrorIs(t, err, brackets.ErrMatchupNotFound)

	count, _ := l.matches.Count(ctx)
	assert.Zero(t, count, "rejected results leave no match behind")

	_, err = svc.RecordMatchupResult(ctx, b.ID, semi.ID, RecordMatchupResultInput{ScoreA: intPtr(3), ScoreB: intPtr(1)})
	require.NoError(t, err)
	_, err = svc.RecordMatchupResult(ctx, b.ID, semi.ID, RecordMatchupResultInput{ScoreA: intPtr(1), ScoreB: intPtr(3)})
	assert.ErrorIs(t, err, brackets.ErrMatchupAlreadyFinalized)

	_, err = svc.SeedTeams(ctx, b.ID, SeedBracketInput{Slots: slotsOf(l.ids...)})
	assert.ErrorIs(t, err, ErrBracketLocked)
}

func TestRecordMatchupResultRollsBackOnMatchFailure(t *testing.T) {
	ctx := context.Background()
	l, svc := newBracketFixture(2)
	b := createBracket(t, svc, 4)
	_, err := svc.SeedTeams(ctx, b.ID, SeedBracketInput{Slots: slotsOf(l.ids...)})
	require.NoError(t, err)
	phases, err := svc.MatchupsByPhase(ctx, b.ID)
	require.NoError(t, err)

	l.matches.CreateErr = repositories.ErrMatchTurmaInvalid
	_, err = svc.RecordMatchupResult(ctx, b.ID, phases[0].Matchups[0].ID, RecordMatchupResultInput{ScoreA: intPtr(1), ScoreB: intPtr(0)})
	assert.ErrorIs(t, err, ErrTurmaNotFound)
	assert.Zero(t, l.sport(0))
}

func TestDeleteBracket(t *testing.T) {
	ctx := context.Background()
	_, svc := newBracketFixture(0)
	b := createBracket(t, svc, 16)

	list, err := svc.ListBrackets(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.DeleteBracket(ctx, b.ID))
	_, err = svc.GetBracket(ctx, b.ID)
	assert.ErrorIs(t, err, ErrBracketNotFound)
	assert.ErrorIs(t, svc.DeleteBracket(ctx, b.ID), ErrBracketNotFound)
}
