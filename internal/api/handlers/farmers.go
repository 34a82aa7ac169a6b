package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/sproutsell/agricredit/internal/farmers"
	"github.com/sproutsell/agricredit/pkg/logger"
)

// FarmersService is the account surface the handler needs.
type FarmersService interface {
	Register(ctx context.Context, input farmers.RegisterInput) (*farmers.Farmer, error)
	Get(ctx context.Context, id string) (*farmers.Farmer, error)
}

// FarmersHandler handles farmer account endpoints.
type FarmersHandler struct {
	service FarmersService
	logger  *logger.Logger
}

// NewFarmersHandler creates a new farmers handler
func NewFarmersHandler(service FarmersService, log *logger.Logger) *FarmersHandler {
	return &FarmersHandler{
		service: service,
		logger:  log,
	}
}

// Register creates a farmer account.
// POST /api/farmers
func (h *FarmersHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input farmers.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	farmer, err := h.service.Register(r.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, farmers.ErrInvalidInput):
			respondError(w, http.StatusBadRequest, "Missing required fields: name, email")
		case errors.Is(err, farmers.ErrEmailTaken):
			respondError(w, http.StatusBadRequest, "User with this email already exists")
		default:
			h.logger.WithError(err).Error("Farmer registration failed")
			respondError(w, http.StatusInternalServerError, "Error creating user")
		}
		return
	}

	respondSuccess(w, http.StatusCreated, farmer, "User created successfully")
}

// Get returns a farmer by id.
// GET /api/farmers/{id}
func (h *FarmersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	farmer, err := h.service.Get(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, farmers.ErrNotFound):
			respondError(w, http.StatusNotFound, "User not found")
		case errors.Is(err, farmers.ErrInvalidInput):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.WithError(err).WithField("farmer_id", id).Error("Failed to fetch farmer")
			respondError(w, http.StatusInternalServerError, "Error fetching user")
		}
		return
	}

	respondSuccess(w, http.StatusOK, farmer, "")
}
