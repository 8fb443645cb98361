package models

import (
	"time"

	"github.com/google/uuid"
)

type PenaltyType string

const (
	PenaltyForfeit      PenaltyType = "wo_esportivo"
	PenaltyDisciplinary PenaltyType = "disciplinar"
	PenaltyGuardDuty    PenaltyType = "nao_plantao"
	PenaltyFreshman     PenaltyType = "nao_calouro"
)

// Bucket maps a penalty type to the aggregate column it accumulates into.
func (t PenaltyType) Bucket() (ScoreBucket, bool) {
	switch t {
	case PenaltyForfeit:
		return BucketForfeitPenalty, true
	case PenaltyDisciplinary:
		return BucketDisciplinaryPenalty, true
	case PenaltyGuardDuty:
		return BucketGuardDutyPenalty, true
	case PenaltyFreshman:
		return BucketFreshmanFine, true
	}
	return "", false
}

// IsMonetary is true for the penalty recorded as a fine instead of points.
func (t PenaltyType) IsMonetary() bool {
	return t == PenaltyFreshman
}

// PenaltyLog is append-only. Exactly one of Points / Fine is set.
type PenaltyLog struct {
	ID        uuid.UUID   `json:"id" db:"id"`
	TurmaID   uuid.UUID   `json:"turma_id" db:"turma_id"`
	Type      PenaltyType `json:"tipo_penalidade" db:"tipo_penalidade"`
	Points    *int        `json:"valor_pontos,omitempty" db:"valor_pontos"`
	Fine      *float64    `json:"valor_multa,omitempty" db:"valor_multa"`
	Article   string      `json:"artigo_regulamento" db:"artigo_regulamento"`
	Reason    string      `json:"motivo" db:"motivo"`
	AppliedBy *string     `json:"aplicado_por,omitempty" db:"aplicado_por"`
	AppliedAt time.Time   `json:"data_aplicacao" db:"data_aplicacao"`
}
