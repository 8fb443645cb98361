package handlers

import (
	"net/http"

	"github.com/Dosada05/interclasses-scoreboard/services"
)

type ScoreboardHandler struct {
	scoreboardService services.ScoreboardService
}

func NewScoreboardHandler(ss services.ScoreboardService) *ScoreboardHandler {
	return &ScoreboardHandler{scoreboardService: ss}
}

// GetScoreboard godoc
// @Summary Public scoreboard: ranking, latest matches and counters
// @Tags scoreboard
// @Produce json
// @Success 200 {object} models.DashboardStats
// @Router /scoreboard [get]
func (h *ScoreboardHandler) GetScoreboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.scoreboardService.GetScoreboard(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, stats, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
