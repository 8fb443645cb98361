package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/interclasses-scoreboard/middleware"
	"github.com/Dosada05/interclasses-scoreboard/services"
)

type AdminHandler struct {
	seasonService services.SeasonService
	exportService services.ExportService
	logger        *slog.Logger
}

func NewAdminHandler(ss services.SeasonService, es services.ExportService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{seasonService: ss, exportService: es, logger: logger}
}

// ResetSeason godoc
// @Summary Wipe athletes, matches and penalties and zero every score
// @Tags admin
// @Success 204
// @Security BearerAuth
// @Router /admin/season/reset [post]
func (h *AdminHandler) ResetSeason(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActorFromContext(r.Context())
	h.logger.WarnContext(r.Context(), "season reset requested", slog.String("actor", actor))

	if err := h.seasonService.Reset(r.Context()); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) ExportScoreboard(w http.ResponseWriter, r *http.Request) {
	res, err := h.exportService.ExportScoreboard(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"export": res}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
