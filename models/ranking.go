package models

import "github.com/google/uuid"

// FoodRankingEntry is one awarded position of the food-drive ranking.
type FoodRankingEntry struct {
	Position  int       `json:"posicao"`
	TurmaID   uuid.UUID `json:"turma_id"`
	TurmaName string    `json:"turma,omitempty"`
	Kg        float64   `json:"kg"`
	Points    int       `json:"pontos"`
}
