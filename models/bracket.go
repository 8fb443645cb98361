package models

import (
	"time"

	"github.com/google/uuid"
)

type BracketStatus string

const (
	BracketStatusDraft    BracketStatus = "draft"
	BracketStatusActive   BracketStatus = "active"
	BracketStatusFinished BracketStatus = "finished"
)

type BracketFormat string

const (
	FormatSingleElimination BracketFormat = "eliminatoria_simples"
	FormatGroupsKnockout    BracketFormat = "grupos_mata_mata"
	FormatRoundRobin        BracketFormat = "pontos_corridos"
)

func (f BracketFormat) IsValid() bool {
	switch f {
	case FormatSingleElimination, FormatGroupsKnockout, FormatRoundRobin:
		return true
	}
	return false
}

// Slot picks one side of a matchup.
type Slot string

const (
	SlotA Slot = "a"
	SlotB Slot = "b"
)

type MatchupStatus string

const (
	MatchupAwaiting  MatchupStatus = "aguardando"
	MatchupReady     MatchupStatus = "pronto"
	MatchupFinalized MatchupStatus = "finalizado"
)

// BracketTeam is the denormalized turma reference stored in the structure.
type BracketTeam struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"nome_turma"`
}

// Matchup is one pairing inside a bracket phase. NextMatchupID/NextSlot are
// fixed at seeding time and say where the winner goes.
type Matchup struct {
	ID            string       `json:"id"`
	Phase         string       `json:"fase"`
	Position      int          `json:"posicao"`
	TeamA         *BracketTeam `json:"turma_a"`
	TeamB         *BracketTeam `json:"turma_b"`
	ScoreA        *int         `json:"placar_a"`
	ScoreB        *int         `json:"placar_b"`
	WinnerID      *uuid.UUID   `json:"vencedor"`
	NextMatchupID *string      `json:"proximo_confronto,omitempty"`
	NextSlot      *Slot        `json:"proximo_slot,omitempty"`
}

// Status is awaiting while a slot is empty, ready once both are filled and
// finalized when a winner is set.
func (m *Matchup) Status() MatchupStatus {
	switch {
	case m.WinnerID != nil:
		return MatchupFinalized
	case m.TeamA != nil && m.TeamB != nil:
		return MatchupReady
	default:
		return MatchupAwaiting
	}
}

// BracketStructure is persisted as JSON in chaves_torneio.estrutura_chave.
type BracketStructure struct {
	Phases   []string      `json:"fases"`
	Teams    []BracketTeam `json:"turmas"`
	Matchups []*Matchup    `json:"confrontos"`
}

type Bracket struct {
	ID        uuid.UUID        `json:"id" db:"id"`
	Sport     string           `json:"modalidade" db:"modalidade"`
	Gender    Gender           `json:"genero_modalidade" db:"genero_modalidade"`
	Format    BracketFormat    `json:"formato" db:"formato"`
	TeamCount int              `json:"numero_times" db:"numero_times"`
	Status    BracketStatus    `json:"status" db:"status"`
	Structure BracketStructure `json:"estrutura_chave" db:"estrutura_chave"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt time.Time        `json:"updated_at" db:"updated_at"`
}
