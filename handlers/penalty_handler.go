package handlers

import (
	"net/http"

	"github.com/Dosada05/interclasses-scoreboard/middleware"
	"github.com/Dosada05/interclasses-scoreboard/services"
)

type PenaltyHandler struct {
	penaltyService services.PenaltyService
}

func NewPenaltyHandler(ps services.PenaltyService) *PenaltyHandler {
	return &PenaltyHandler{penaltyService: ps}
}

func (h *PenaltyHandler) ApplyPenalty(w http.ResponseWriter, r *http.Request) {
	var input services.ApplyPenaltyInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if actor, err := middleware.GetActorFromContext(r.Context()); err == nil {
		input.AppliedBy = &actor
	}

	entry, err := h.penaltyService.ApplyPenalty(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"penalty": entry}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PenaltyHandler) ListPenalties(w http.ResponseWriter, r *http.Request) {
	limit, err := getLimitFromQuery(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	logs, err := h.penaltyService.ListRecent(r.Context(), limit)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"penalties": logs}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
