package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/sproutsell/agricredit/internal/analysis"
	"github.com/sproutsell/agricredit/internal/contracts"
	"github.com/sproutsell/agricredit/internal/loans"
	"github.com/sproutsell/agricredit/pkg/logger"
)

// LoansService is the loan surface the handler needs.
type LoansService interface {
	Eligibility(ctx context.Context, userID string, requestedAmount float64, purpose string) (*loans.EligibilityResult, error)
	Apply(ctx context.Context, input loans.ApplyInput) (*loans.Application, contracts.EligibilityDecision, error)
	Dashboard(ctx context.Context, userID string) (*loans.DashboardData, error)
}

// LoansHandler handles loan endpoints.
type LoansHandler struct {
	service LoansService
	logger  *logger.Logger
}

// NewLoansHandler creates a new loans handler
func NewLoansHandler(service LoansService, log *logger.Logger) *LoansHandler {
	return &LoansHandler{
		service: service,
		logger:  log,
	}
}

// Eligibility checks loan eligibility for a user.
// GET /api/financial/loan-eligibility/{userId}?loanAmount=&purpose=
func (h *LoansHandler) Eligibility(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	// An absent or unparseable amount is evaluated as 0, matching the
	// tolerant front-end contract.
	amount, _ := strconv.ParseFloat(r.URL.Query().Get("loanAmount"), 64)
	purpose := r.URL.Query().Get("purpose")

	result, err := h.service.Eligibility(r.Context(), userID, amount, purpose)
	if err != nil {
		switch {
		case errors.Is(err, analysis.ErrNotFound):
			respondError(w, http.StatusNotFound, "User not found")
		case errors.Is(err, loans.ErrInvalidRequest):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.WithError(err).WithField("user_id", userID).Error("Loan eligibility check failed")
			respondError(w, http.StatusInternalServerError, "Error checking loan eligibility")
		}
		return
	}

	respondSuccess(w, http.StatusOK, result, "")
}

// Apply submits a loan application.
// POST /api/financial/loan-application
func (h *LoansHandler) Apply(w http.ResponseWriter, r *http.Request) {
	var input loans.ApplyInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	app, decision, err := h.service.Apply(r.Context(), input)
	if err != nil {
		var notEligible *loans.NotEligibleError
		switch {
		case errors.As(err, &notEligible):
			respondJSON(w, http.StatusBadRequest, envelope{
				Success: false,
				Message: "Loan application not eligible",
				Data:    notEligible.Decision,
			})
		case errors.Is(err, loans.ErrInvalidRequest):
			respondError(w, http.StatusBadRequest, "User ID, loan amount, and purpose are required")
		case errors.Is(err, analysis.ErrNotFound):
			respondError(w, http.StatusNotFound, "User not found")
		default:
			h.logger.WithError(err).Error("Loan application failed")
			respondError(w, http.StatusInternalServerError, "Error submitting loan application")
		}
		return
	}

	respondSuccess(w, http.StatusCreated, map[string]interface{}{
		"application": app,
		"eligibility": decision,
	}, "Loan application submitted successfully")
}

// Dashboard returns the financial overview for a user.
// GET /api/financial/dashboard/{userId}
func (h *LoansHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	data, err := h.service.Dashboard(r.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, loans.ErrInvalidRequest):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.WithError(err).WithField("user_id", userID).Error("Dashboard assembly failed")
			respondError(w, http.StatusInternalServerError, "Error fetching financial dashboard")
		}
		return
	}

	respondSuccess(w, http.StatusOK, data, "")
}
