package models

import (
	"time"

	"github.com/google/uuid"
)

// Turma is a competing class, the unit of scoring.
type Turma struct {
	ID         uuid.UUID `json:"id" db:"id"`
	Name       string    `json:"nome_turma" db:"nome_turma"`
	Graduation int       `json:"graduacao" db:"graduacao"`
	Boarding   bool      `json:"internato" db:"internato"`
	Freshman   bool      `json:"calouro" db:"calouro"`
	SixthYear  bool      `json:"sexto_ano" db:"sexto_ano"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
