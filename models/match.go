package models

import (
	"time"

	"github.com/google/uuid"
)

type MatchStatus string

const (
	MatchStatusScheduled  MatchStatus = "agendada"
	MatchStatusInProgress MatchStatus = "em_andamento"
	MatchStatusFinalized  MatchStatus = "finalizada"
	MatchStatusCanceled   MatchStatus = "cancelada"
)

func (s MatchStatus) IsValid() bool {
	switch s {
	case MatchStatusScheduled, MatchStatusInProgress, MatchStatusFinalized, MatchStatusCanceled:
		return true
	}
	return false
}

// Match is a single game between two turmas. WinnerID == nil with both
// scores set means a draw.
type Match struct {
	ID          uuid.UUID   `json:"id" db:"id"`
	Sport       string      `json:"modalidade" db:"modalidade"`
	Gender      Gender      `json:"genero_modalidade" db:"genero_modalidade"`
	Phase       string      `json:"fase" db:"fase"`
	ScheduledAt *time.Time  `json:"data_hora,omitempty" db:"data_hora"`
	TurmaAID    uuid.UUID   `json:"turma_a_id" db:"turma_a_id"`
	TurmaBID    uuid.UUID   `json:"turma_b_id" db:"turma_b_id"`
	ScoreA      *int        `json:"placar_a" db:"placar_a"`
	ScoreB      *int        `json:"placar_b" db:"placar_b"`
	WinnerID    *uuid.UUID  `json:"vencedor_id" db:"vencedor_id"`
	Forfeit     bool        `json:"wo_aplicado" db:"wo_aplicado"`
	ForfeitedID *uuid.UUID  `json:"turma_wo_id,omitempty" db:"turma_wo_id"`
	Notes       *string     `json:"detalhes_sumula,omitempty" db:"detalhes_sumula"`
	Status      MatchStatus `json:"status" db:"status"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
}

// HasScores reports whether both sides have a recorded score.
func (m *Match) HasScores() bool {
	return m.ScoreA != nil && m.ScoreB != nil
}

// IsDraw is true only for non-forfeit matches with equal, non-null scores.
func (m *Match) IsDraw() bool {
	return !m.Forfeit && m.HasScores() && *m.ScoreA == *m.ScoreB
}

// DecideWinner derives the winner from the scores, or from the forfeited
// side when the match was a walkover.
func (m *Match) DecideWinner() *uuid.UUID {
	if m.Forfeit {
		if m.ForfeitedID == nil {
			return nil
		}
		w := m.TurmaAID
		if *m.ForfeitedID == m.TurmaAID {
			w = m.TurmaBID
		}
		return &w
	}
	if !m.HasScores() || *m.ScoreA == *m.ScoreB {
		return nil
	}
	w := m.TurmaBID
	if *m.ScoreA > *m.ScoreB {
		w = m.TurmaAID
	}
	return &w
}
