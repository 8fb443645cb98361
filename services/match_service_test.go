package services

import (
	"context"
	"errors"
	"testing"

	"github.com/Dosada05/interclasses-scoreboard/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMatchFixture(n int) (*league, MatchService) {
	l := newLeague(n)
	return l, NewMatchService(l.tx, l.matches, l.ledger(), nil, discardLogger)
}

func matchInput(a, b uuid.UUID, scoreA, scoreB *int) CreateMatchInput {
	return CreateMatchInput{
		Sport:    "Futsal",
		Gender:   models.GenderMale,
		Phase:    "Grupos",
		TurmaAID: a,
		TurmaBID: b,
		ScoreA:   scoreA,
		ScoreB:   scoreB,
	}
}

func TestRegisterMatch(t *testing.T) {
	ctx := context.Background()

	t.Run("decisive result", func(t *testing.T) {
		l, svc := newMatchFixture(2)
		m, err := svc.RegisterMatch(ctx, matchInput(l.ids[0], l.ids[1], intPtr(2), intPtr(1)))
		require.NoError(t, err)

		require.NotNil(t, m.WinnerID)
		assert.Equal(t, l.ids[0], *m.WinnerID)
		assert.Equal(t, models.MatchStatusFinalized, m.Status)
		assert.Equal(t, 3.0, l.sport(0))
		assert.Zero(t, l.sport(1))
		assert.Equal(t, 1, l.tx.calls)
	})

	t.Run("draw", func(t *testing.T) {
		l, svc := newMatchFixture(2)
		m, err := svc.RegisterMatch(ctx, matchInput(l.ids[0], l.ids[1], intPtr(1), intPtr(1)))
		require.NoError(t, err)

		assert.Nil(t, m.WinnerID)
		assert.Equal(t, 1.0, l.sport(0))
		assert.Equal(t, 1.0, l.sport(1))
	})

	t.Run("scheduled without scores", func(t *testing.T) {
		l, svc := newMatchFixture(2)
		m, err := svc.RegisterMatch(ctx, matchInput(l.ids[0], l.ids[1], nil, nil))
		require.NoError(t, err)

		assert.Equal(t, models.MatchStatusScheduled, m.Status)
		assert.Zero(t, l.sport(0))
		assert.Zero(t, l.sport(1))
	})

	t.Run("forfeit", func(t *testing.T) {
		l, svc := newMatchFixture(2)
		in := matchInput(l.ids[0], l.ids[1], nil, nil)
		in.Forfeit = true
		in.ForfeitedID = uuidPtr(l.ids[0])

		m, err := svc.RegisterMatch(ctx, in)
		require.NoError(t, err)

		require.NotNil(t, m.WinnerID)
		assert.Equal(t, l.ids[1], *m.WinnerID)
		assert.Equal(t, 5.0, l.scores.bucket(l.ids[0], models.BucketForfeitPenalty))
		require.Len(t, l.scores.forfeits, 1)
		assert.Equal(t, m.ID, l.scores.forfeits[0].MatchID)
	})

	t.Run("forfeit side outside the match", func(t *testing.T) {
		l, svc := newMatchFixture(3)
		in := matchInput(l.ids[0], l.ids[1], nil, nil)
		in.Forfeit = true
		in.ForfeitedID = uuidPtr(l.ids[2])

		_, err := svc.RegisterMatch(ctx, in)
		assert.ErrorIs(t, err, ErrForfeitSideRequired)
		assert.Zero(t, l.tx.calls)
	})

	t.Run("same turma on both sides", func(t *testing.T) {
		l, svc := newMatchFixture(1)
		_, err := svc.RegisterMatch(ctx, matchInput(l.ids[0], l.ids[0], intPtr(1), intPtr(0)))
		assert.ErrorIs(t, err, ErrSameTurma)
	})

	t.Run("validation reports fields", func(t *testing.T) {
		l, svc := newMatchFixture(2)
		in := matchInput(l.ids[0], l.ids[1], intPtr(-1), intPtr(0))
		in.Sport = ""

		_, err := svc.RegisterMatch(ctx, in)
		require.ErrorIs(t, err, ErrValidationFailed)
		var ve *ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Contains(t, ve.Fields, "modalidade")
		assert.Contains(t, ve.Fields, "placar_a")
		assert.Zero(t, l.tx.calls)
	})

	t.Run("ledger failure surfaces", func(t *testing.T) {
		l, svc := newMatchFixture(2)
		l.scores.AdjustErr = errors.New("connection reset")

		_, err := svc.RegisterMatch(ctx, matchInput(l.ids[0], l.ids[1], intPtr(1), intPtr(0)))
		assert.EqualError(t, err, "connection reset")
	})
}

func TestEditMatchReversesBeforeApplying(t *testing.T) {
	ctx := context.Background()
	l, svc := newMatchFixture(2)
	x, y := l.ids[0], l.ids[1]

	m, err := svc.RegisterMatch(ctx, matchInput(x, y, intPtr(3), intPtr(0)))
	require.NoError(t, err)
	require.Equal(t, 3.0, l.sport(0))

	edited, err := svc.EditMatch(ctx, m.ID, UpdateMatchInput{ScoreA: intPtr(1), ScoreB: intPtr(2)})
	require.NoError(t, err)
	require.NotNil(t, edited.WinnerID)
	assert.Equal(t, y, *edited.WinnerID)
	assert.Zero(t, l.sport(0))
	assert.Equal(t, 3.0, l.sport(1))

	_, err = svc.EditMatch(ctx, m.ID, UpdateMatchInput{ScoreA: intPtr(2), ScoreB: intPtr(2)})
	require.NoError(t, err)
	assert.Equal(t, 1.0, l.sport(0))
	assert.Equal(t, 1.0, l.sport(1))

	stored, err := l.matches.GetByID(ctx, nil, m.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.WinnerID)
	assert.Equal(t, "Futsal", stored.Sport, "identity fields are kept")
}

func TestEditMatchIntoForfeit(t *testing.T) {
	ctx := context.Background()
	l, svc := newMatchFixture(2)

	m, err := svc.RegisterMatch(ctx, matchInput(l.ids[0], l.ids[1], intPtr(2), intPtr(0)))
	require.NoError(t, err)

	_, err = svc.EditMatch(ctx, m.ID, UpdateMatchInput{Forfeit: true, ForfeitedID: uuidPtr(l.ids[0])})
	require.NoError(t, err)

	assert.Zero(t, l.sport(0))
	assert.Zero(t, l.sport(1))
	assert.Equal(t, 5.0, l.scores.bucket(l.ids[0], models.BucketForfeitPenalty))

	_, err = svc.EditMatch(ctx, m.ID, UpdateMatchInput{ScoreA: intPtr(0), ScoreB: intPtr(1)})
	require.NoError(t, err)
	assert.Zero(t, l.scores.bucket(l.ids[0], models.BucketForfeitPenalty))
	assert.Equal(t, 3.0, l.sport(1))
}

func TestEditMatchNotFound(t *testing.T) {
	_, svc := newMatchFixture(0)
	_, err := svc.EditMatch(context.Background(), uuid.New(), UpdateMatchInput{})
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestDeleteMatch(t *testing.T) {
	ctx := context.Background()
	l, svc := newMatchFixture(2)

	m, err := svc.RegisterMatch(ctx, matchInput(l.ids[0], l.ids[1], intPtr(0), intPtr(4)))
	require.NoError(t, err)
	require.Equal(t, 3.0, l.sport(1))

	require.NoError(t, svc.DeleteMatch(ctx, m.ID))
	assert.Zero(t, l.sport(1))

	_, err = l.matches.GetByID(ctx, nil, m.ID)
	assert.Error(t, err)

	assert.ErrorIs(t, svc.DeleteMatch(ctx, m.ID), ErrMatchNotFound)
}

func TestListMatchesDefaultLimit(t *testing.T) {
	ctx := context.Background()
	l, svc := newMatchFixture(2)

	for i := 0; i < 3; i++ {
		_, err := svc.RegisterMatch(ctx, matchInput(l.ids[0], l.ids[1], intPtr(i), intPtr(0)))
		require.NoError(t, err)
	}

	list, err := svc.ListMatches(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, list, 3)
	assert.Equal(t, DefaultMatchListLimit, l.matches.lastLimit)

	list, err = svc.ListMatches(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
