package handlers

import (
	"net/http"

	"github.com/Dosada05/interclasses-scoreboard/services"
	"github.com/go-chi/chi/v5"
)

type BracketHandler struct {
	bracketService services.BracketService
}

func NewBracketHandler(bs services.BracketService) *BracketHandler {
	return &BracketHandler{bracketService: bs}
}

// CreateBracket godoc
// @Summary Create an empty single-elimination bracket
// @Tags brackets
// @Accept json
// @Produce json
// @Param input body services.CreateBracketInput true "Bracket"
// @Success 201 {object} map[string]interface{} "Bracket in draft"
// @Failure 422 {object} map[string]interface{} "Unsupported team count or invalid input"
// @Security BearerAuth
// @Router /brackets [post]
func (h *BracketHandler) CreateBracket(w http.ResponseWriter, r *http.Request) {
	var input services.CreateBracketInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	bracket, err := h.bracketService.CreateBracket(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"bracket": bracket}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SeedTeams godoc
// @Summary Seed turmas into a bracket, manually or by random draw
// @Tags brackets
// @Accept json
// @Produce json
// @Param bracketID path string true "Bracket ID"
// @Param input body services.SeedBracketInput true "Ordered slots"
// @Success 200 {object} map[string]interface{} "Seeded bracket"
// @Failure 404 {object} map[string]string "Bracket or turma not found"
// @Failure 409 {object} map[string]string "Bracket already has results"
// @Failure 422 {object} map[string]string "Not enough, too many or duplicated teams"
// @Security BearerAuth
// @Router /brackets/{bracketID}/seed [post]
func (h *BracketHandler) SeedTeams(w http.ResponseWriter, r *http.Request) {
	bracketID, err := getUUIDFromURL(r, "bracketID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input services.SeedBracketInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	bracket, err := h.bracketService.SeedTeams(r.Context(), bracketID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": bracket}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RecordMatchupResult godoc
// @Summary Record a matchup result and advance the winner
// @Tags brackets
// @Accept json
// @Produce json
// @Param bracketID path string true "Bracket ID"
// @Param matchupID path string true "Matchup ID"
// @Param input body services.RecordMatchupResultInput true "Scores"
// @Success 200 {object} map[string]interface{} "Updated bracket"
// @Failure 404 {object} map[string]string "Bracket or matchup not found"
// @Failure 409 {object} map[string]string "Matchup already finalized"
// @Failure 422 {object} map[string]string "Tie, missing scores or matchup not ready"
// @Security BearerAuth
// @Router /brackets/{bracketID}/matchups/{matchupID}/result [post]
func (h *BracketHandler) RecordMatchupResult(w http.ResponseWriter, r *http.Request) {
	bracketID, err := getUUIDFromURL(r, "bracketID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	matchupID := chi.URLParam(r, "matchupID")

	var input services.RecordMatchupResultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	bracket, err := h.bracketService.RecordMatchupResult(r.Context(), bracketID, matchupID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": bracket}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *BracketHandler) GetBracket(w http.ResponseWriter, r *http.Request) {
	bracketID, err := getUUIDFromURL(r, "bracketID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	bracket, err := h.bracketService.GetBracket(r.Context(), bracketID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": bracket}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *BracketHandler) GetMatchupsByPhase(w http.ResponseWriter, r *http.Request) {
	bracketID, err := getUUIDFromURL(r, "bracketID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	phases, err := h.bracketService.MatchupsByPhase(r.Context(), bracketID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"phases": phases}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *BracketHandler) ListBrackets(w http.ResponseWriter, r *http.Request) {
	list, err := h.bracketService.ListBrackets(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"brackets": list}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *BracketHandler) DeleteBracket(w http.ResponseWriter, r *http.Request) {
	bracketID, err := getUUIDFromURL(r, "bracketID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.bracketService.DeleteBracket(r.Context(), bracketID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
