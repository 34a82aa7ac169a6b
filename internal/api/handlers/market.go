package handlers

import (
	"context"
	"net/http"

	"github.com/sproutsell/agricredit/internal/external/amis"
	"github.com/sproutsell/agricredit/pkg/logger"
)

// MarketService supplies current commodity prices.
type MarketService interface {
	Prices(ctx context.Context) ([]amis.MarketPrice, error)
}

// MarketHandler handles market price endpoints.
type MarketHandler struct {
	service MarketService
	logger  *logger.Logger
}

// NewMarketHandler creates a new market handler
func NewMarketHandler(service MarketService, log *logger.Logger) *MarketHandler {
	return &MarketHandler{
		service: service,
		logger:  log,
	}
}

// Prices returns current commodity market prices.
// GET /api/market/prices
func (h *MarketHandler) Prices(w http.ResponseWriter, r *http.Request) {
	prices, err := h.service.Prices(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to fetch market prices")
		respondError(w, http.StatusBadGateway, "Error fetching market prices")
		return
	}

	respondSuccess(w, http.StatusOK, prices, "")
}
