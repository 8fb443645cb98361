package handlers

import (
	"net/http"

	"github.com/Dosada05/interclasses-scoreboard/services"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(ms services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: ms}
}

// RegisterMatch godoc
// @Summary Register a match and apply its result to the ledger
// @Tags matches
// @Accept json
// @Produce json
// @Param input body services.CreateMatchInput true "Match"
// @Success 201 {object} map[string]interface{} "Registered match"
// @Failure 400 {object} map[string]string "Malformed body"
// @Failure 404 {object} map[string]string "Unknown turma"
// @Failure 422 {object} map[string]interface{} "Validation failed"
// @Security BearerAuth
// @Router /matches [post]
func (h *MatchHandler) RegisterMatch(w http.ResponseWriter, r *http.Request) {
	var input services.CreateMatchInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.RegisterMatch(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// EditMatch godoc
// @Summary Edit a match, reversing its previous result first
// @Tags matches
// @Accept json
// @Produce json
// @Param matchID path string true "Match ID"
// @Param input body services.UpdateMatchInput true "New outcome"
// @Success 200 {object} map[string]interface{} "Updated match"
// @Failure 404 {object} map[string]string "Match not found"
// @Failure 422 {object} map[string]interface{} "Validation failed"
// @Security BearerAuth
// @Router /matches/{matchID} [put]
func (h *MatchHandler) EditMatch(w http.ResponseWriter, r *http.Request) {
	matchID, err := getUUIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input services.UpdateMatchInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.EditMatch(r.Context(), matchID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) DeleteMatch(w http.ResponseWriter, r *http.Request) {
	matchID, err := getUUIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.matchService.DeleteMatch(r.Context(), matchID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *MatchHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	limit, err := getLimitFromQuery(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.matchService.ListMatches(r.Context(), limit)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
