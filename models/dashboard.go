package models

import "time"

// DashboardStats is the public scoreboard snapshot.
type DashboardStats struct {
	Ranking        []*AggregateScore `json:"ranking"`
	RecentMatches  []*Match          `json:"ultimos_jogos"`
	TurmasTotal    int               `json:"turmas_total"`
	MatchesTotal   int               `json:"partidas_total"`
	ActiveBrackets int               `json:"chaves_ativas"`
	GeneratedAt    time.Time         `json:"generated_at"`
}
