package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/sproutsell/agricredit/internal/analysis"
	"github.com/sproutsell/agricredit/internal/contracts"
	"github.com/sproutsell/agricredit/internal/scoring"
	"github.com/sproutsell/agricredit/pkg/logger"
)

// CreditPipeline is the scoring surface the handler needs.
type CreditPipeline interface {
	Score(ctx context.Context, userID string, raw scoring.RawAssessment) (*contracts.CreditAnalysis, error)
	Get(ctx context.Context, userID string) (*contracts.CreditAnalysis, error)
}

// CreditHandler handles credit analysis endpoints.
type CreditHandler struct {
	pipeline CreditPipeline
	logger   *logger.Logger
}

// NewCreditHandler creates a new credit handler
func NewCreditHandler(pipeline CreditPipeline, log *logger.Logger) *CreditHandler {
	return &CreditHandler{
		pipeline: pipeline,
		logger:   log,
	}
}

// Analyze runs the scoring pipeline for a user.
// POST /api/credit-analysis/{userId}
func (h *CreditHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	if userID == "" {
		respondError(w, http.StatusBadRequest, "User ID is required")
		return
	}

	// Partial, empty, and malformed-numeric bodies are all acceptable;
	// the normalizer fills the gaps.
	var raw scoring.RawAssessment
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		h.logger.WithError(err).Debug("Assessment body not decodable, scoring with defaults")
	}

	result, err := h.pipeline.Score(r.Context(), userID, raw)
	if err != nil {
		h.logger.WithError(err).WithField("user_id", userID).Error("Credit analysis failed")
		respondError(w, http.StatusInternalServerError, "Error analyzing farmer credit")
		return
	}

	respondSuccess(w, http.StatusOK, result, "Credit analysis completed")
}

// Get returns the current analysis for a user.
// GET /api/credit-analysis/{userId}
func (h *CreditHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	if userID == "" {
		respondError(w, http.StatusBadRequest, "User ID is required")
		return
	}

	result, err := h.pipeline.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, analysis.ErrNotFound) {
			respondError(w, http.StatusNotFound, "No credit analysis found for user")
			return
		}
		h.logger.WithError(err).WithField("user_id", userID).Error("Failed to load credit analysis")
		respondError(w, http.StatusInternalServerError, "Error fetching credit analysis")
		return
	}

	respondSuccess(w, http.StatusOK, result, "")
}
