package handlers

import (
	"net/http"

	"github.com/Dosada05/interclasses-scoreboard/services"
)

type TurmaHandler struct {
	turmaService services.TurmaService
}

func NewTurmaHandler(ts services.TurmaService) *TurmaHandler {
	return &TurmaHandler{turmaService: ts}
}

func (h *TurmaHandler) ListTurmas(w http.ResponseWriter, r *http.Request) {
	turmas, err := h.turmaService.ListTurmas(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"turmas": turmas}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SeedRoster accepts a YAML roster body (same format as the seed-turmas
// command).
func (h *TurmaHandler) SeedRoster(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, 1_048_576)
	turmas, err := h.turmaService.SeedRoster(r.Context(), body)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"turmas": turmas}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
