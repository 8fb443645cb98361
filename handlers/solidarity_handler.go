package handlers

import (
	"net/http"

	"github.com/Dosada05/interclasses-scoreboard/services"
)

type SolidarityHandler struct {
	solidarityService services.SolidarityService
	rankingService    services.RankingService
}

func NewSolidarityHandler(ss services.SolidarityService, rs services.RankingService) *SolidarityHandler {
	return &SolidarityHandler{solidarityService: ss, rankingService: rs}
}

func (h *SolidarityHandler) RecordFoodAndBlood(w http.ResponseWriter, r *http.Request) {
	turmaID, err := getUUIDFromURL(r, "turmaID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input services.FoodBloodInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	score, err := h.solidarityService.RecordFoodAndBlood(r.Context(), turmaID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"score": score}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SolidarityHandler) RecordBaskets(w http.ResponseWriter, r *http.Request) {
	turmaID, err := getUUIDFromURL(r, "turmaID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input services.BasketsInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	score, err := h.solidarityService.RecordBaskets(r.Context(), turmaID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"score": score}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListSolidarity lists turmas with food or blood donors on record; ?all=true
// includes every turma.
func (h *SolidarityHandler) ListSolidarity(w http.ResponseWriter, r *http.Request) {
	all, err := getBoolFromQuery(r, "all")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	entries, err := h.solidarityService.List(r.Context(), !all)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"solidarity": entries}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SolidarityHandler) ClearSolidarity(w http.ResponseWriter, r *http.Request) {
	turmaID, err := getUUIDFromURL(r, "turmaID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.solidarityService.ClearSolidarity(r.Context(), turmaID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ComputeFoodRanking godoc
// @Summary Recompute the food-drive ranking and award 10/7/5/4/3/2 points
// @Tags solidarity
// @Produce json
// @Success 200 {object} map[string]interface{} "Top six"
// @Security BearerAuth
// @Router /food-ranking/compute [post]
func (h *SolidarityHandler) ComputeFoodRanking(w http.ResponseWriter, r *http.Request) {
	entries, err := h.rankingService.ComputeFoodRanking(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"ranking": entries}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
