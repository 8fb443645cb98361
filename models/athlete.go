package models

import (
	"time"

	"github.com/google/uuid"
)

type Gender string

const (
	GenderMale   Gender = "Masculino"
	GenderFemale Gender = "Feminino"
	GenderOther  Gender = "Outro"
)

func (g Gender) IsValid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

type Athlete struct {
	ID            uuid.UUID `json:"id" db:"id"`
	FullName      string    `json:"nome_completo" db:"nome_completo"`
	Gender        Gender    `json:"genero" db:"genero"`
	TurmaID       uuid.UUID `json:"turma_id" db:"turma_id"`
	Sports        []string  `json:"modalidades_inscritas" db:"modalidades_inscritas"`
	SportPriority *string   `json:"prioridade_esporte,omitempty" db:"prioridade_esporte"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}
