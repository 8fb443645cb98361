package models

import (
	"time"

	"github.com/google/uuid"
)

// ScoreBucket names one independently tracked column of pontuacao_geral.
type ScoreBucket string

const (
	BucketSportPoints ScoreBucket = "pontos_esportivos"
	BucketFoodPoints  ScoreBucket = "pontos_alimentos"
	BucketBloodPoints ScoreBucket = "pontos_sangue"

	BucketForfeitPenalty      ScoreBucket = "pen_wo_esportivo"
	BucketDisciplinaryPenalty ScoreBucket = "pen_disciplinar"
	BucketGuardDutyPenalty    ScoreBucket = "pen_nao_plantao"
	BucketFreshmanFine        ScoreBucket = "pen_nao_calouro"
)

// PointBuckets and PenaltyBuckets are the terms of total_pontos.
var (
	PointBuckets   = []ScoreBucket{BucketSportPoints, BucketFoodPoints, BucketBloodPoints}
	PenaltyBuckets = []ScoreBucket{BucketForfeitPenalty, BucketDisciplinaryPenalty, BucketGuardDutyPenalty, BucketFreshmanFine}
)

func (b ScoreBucket) IsValid() bool {
	for _, known := range append(PointBuckets, PenaltyBuckets...) {
		if b == known {
			return true
		}
	}
	return false
}

// AggregateScore is the per-turma row of pontuacao_geral. Total is a stored
// generated column and is read-only from Go.
type AggregateScore struct {
	TurmaID uuid.UUID `json:"turma_id" db:"turma_id"`

	SportPoints float64 `json:"pontos_esportivos" db:"pontos_esportivos"`
	FoodPoints  float64 `json:"pontos_alimentos" db:"pontos_alimentos"`
	BloodPoints float64 `json:"pontos_sangue" db:"pontos_sangue"`

	ForfeitPenalty      float64 `json:"pen_wo_esportivo" db:"pen_wo_esportivo"`
	DisciplinaryPenalty float64 `json:"pen_disciplinar" db:"pen_disciplinar"`
	GuardDutyPenalty    float64 `json:"pen_nao_plantao" db:"pen_nao_plantao"`
	FreshmanFine        float64 `json:"pen_nao_calouro" db:"pen_nao_calouro"`

	FoodKg             float64 `json:"kg_alimentos" db:"kg_alimentos"`
	BasketsDelivered   int     `json:"cestas_basicas_entregues" db:"cestas_basicas_entregues"`
	BloodDonorsPercent float64 `json:"percentual_doadores_sangue" db:"percentual_doadores_sangue"`
	MissingBasketsFine float64 `json:"multa_cestas_faltantes" db:"multa_cestas_faltantes"`

	Total     float64   `json:"total_pontos" db:"total_pontos"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	Turma *Turma `json:"turma,omitempty" db:"-"`
}

// Bucket returns the value held in the named bucket.
func (s *AggregateScore) Bucket(b ScoreBucket) float64 {
	switch b {
	case BucketSportPoints:
		return s.SportPoints
	case BucketFoodPoints:
		return s.FoodPoints
	case BucketBloodPoints:
		return s.BloodPoints
	case BucketForfeitPenalty:
		return s.ForfeitPenalty
	case BucketDisciplinaryPenalty:
		return s.DisciplinaryPenalty
	case BucketGuardDutyPenalty:
		return s.GuardDutyPenalty
	case BucketFreshmanFine:
		return s.FreshmanFine
	}
	return 0
}

// SetBucket overwrites the named bucket and refreshes Total.
func (s *AggregateScore) SetBucket(b ScoreBucket, v float64) {
	switch b {
	case BucketSportPoints:
		s.SportPoints = v
	case BucketFoodPoints:
		s.FoodPoints = v
	case BucketBloodPoints:
		s.BloodPoints = v
	case BucketForfeitPenalty:
		s.ForfeitPenalty = v
	case BucketDisciplinaryPenalty:
		s.DisciplinaryPenalty = v
	case BucketGuardDutyPenalty:
		s.GuardDutyPenalty = v
	case BucketFreshmanFine:
		s.FreshmanFine = v
	}
	s.Total = s.ComputeTotal()
}

// ComputeTotal mirrors the generated total_pontos column.
func (s *AggregateScore) ComputeTotal() float64 {
	var total float64
	for _, b := range PointBuckets {
		total += s.Bucket(b)
	}
	for _, b := range PenaltyBuckets {
		total -= s.Bucket(b)
	}
	return total
}
