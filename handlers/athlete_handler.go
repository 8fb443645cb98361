package handlers

import (
	"fmt"
	"net/http"

	"github.com/Dosada05/interclasses-scoreboard/services"
	"github.com/google/uuid"
)

type AthleteHandler struct {
	athleteService services.AthleteService
}

func NewAthleteHandler(as services.AthleteService) *AthleteHandler {
	return &AthleteHandler{athleteService: as}
}

func (h *AthleteHandler) CreateAthlete(w http.ResponseWriter, r *http.Request) {
	var input services.CreateAthleteInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	athlete, err := h.athleteService.CreateAthlete(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"athlete": athlete}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AthleteHandler) ListAthletes(w http.ResponseWriter, r *http.Request) {
	var turmaID *uuid.UUID
	if raw := r.URL.Query().Get("turma_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			badRequestResponse(w, r, fmt.Errorf("invalid turma_id: %q", raw))
			return
		}
		turmaID = &id
	}

	athletes, err := h.athleteService.ListAthletes(r.Context(), turmaID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"athletes": athletes}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AthleteHandler) DeleteAthlete(w http.ResponseWriter, r *http.Request) {
	athleteID, err := getUUIDFromURL(r, "athleteID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.athleteService.DeleteAthlete(r.Context(), athleteID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
