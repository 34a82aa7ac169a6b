package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sproutsell/agricredit/internal/api/handlers"
	"github.com/sproutsell/agricredit/pkg/logger"
)

// Handlers bundles the endpoint handlers the router mounts.
type Handlers struct {
	Credit  *handlers.CreditHandler
	Loans   *handlers.LoansHandler
	Farmers *handlers.FarmersHandler
	Market  *handlers.MarketHandler
	Hub     http.Handler // websocket hub; nil disables /ws
}

// NewRouter creates and configures the HTTP router.
func NewRouter(h Handlers, metricsEnabled bool, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", healthCheckHandler).Methods("GET")
	if metricsEnabled {
		r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	}
	if h.Hub != nil {
		r.Handle("/ws", h.Hub).Methods("GET")
	}

	api := r.PathPrefix("/api").Subrouter()

	// Credit analysis
	api.HandleFunc("/credit-analysis/{userId}", h.Credit.Analyze).Methods("POST")
	api.HandleFunc("/credit-analysis/{userId}", h.Credit.Get).Methods("GET")

	// Loans
	api.HandleFunc("/financial/loan-eligibility/{userId}", h.Loans.Eligibility).Methods("GET")
	api.HandleFunc("/financial/loan-application", h.Loans.Apply).Methods("POST")
	api.HandleFunc("/financial/dashboard/{userId}", h.Loans.Dashboard).Methods("GET")

	// Farmers
	api.HandleFunc("/farmers", h.Farmers.Register).Methods("POST")
	api.HandleFunc("/farmers/{id}", h.Farmers.Get).Methods("GET")

	// Market prices
	api.HandleFunc("/market/prices", h.Market.Prices).Methods("GET")

	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "agricredit-api",
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
