package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sproutsell/agricredit/internal/analysis"
	"github.com/sproutsell/agricredit/internal/api"
	"github.com/sproutsell/agricredit/internal/api/handlers"
	"github.com/sproutsell/agricredit/internal/external/amis"
	"github.com/sproutsell/agricredit/internal/farmers"
	"github.com/sproutsell/agricredit/internal/loans"
	"github.com/sproutsell/agricredit/internal/notify"
	"github.com/sproutsell/agricredit/internal/realtime"
	"github.com/sproutsell/agricredit/internal/scoring"
	"github.com/sproutsell/agricredit/pkg/config"
	"github.com/sproutsell/agricredit/pkg/database"
	"github.com/sproutsell/agricredit/pkg/httputil"
	"github.com/sproutsell/agricredit/pkg/logger"
	"github.com/sproutsell/agricredit/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Starts the REST API server.

This command:
- Serves credit analysis and loan endpoints
- Serves the farmer registry and market price feed
- Publishes analysis updates over WebSocket

Endpoints:
  GET  /health                                  - Health check
  POST /api/credit-analysis/{userId}            - Score a farmer profile
  GET  /api/credit-analysis/{userId}            - Fetch a stored analysis
  GET  /api/financial/loan-eligibility/{userId} - Loan eligibility check
  POST /api/financial/loan-application          - Submit a loan application
  GET  /api/financial/dashboard/{userId}        - Financial dashboard
  POST /api/farmers                             - Register a farmer
  GET  /api/farmers/{id}                        - Fetch a farmer
  GET  /api/market/prices                       - Market price feed

Example:
  go run ./cmd/agricredit api
  go run ./cmd/agricredit api --port 8084`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== AgriCredit API Server ===")

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Override port if flag is set
	if apiPort != "" {
		cfg.Port = apiPort
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	// 3. Connect to database
	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	log.Info("Connected to database")

	// 4. Connect to Redis (optional)
	redisClient, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()

	cache := redis.NewCache(redisClient, "agricredit")

	var store analysis.Store
	if redisClient.Enabled() {
		store = analysis.NewRedisStore(cache, redis.TTLDaily)
		log.Info("Connected to Redis")
	} else {
		store = analysis.NewMemoryStore()
		log.Info("Redis disabled, using in-memory analysis cache")
	}

	// 5. Create HTTP clients
	httpClient := httputil.New(log)
	narrativeClient := httputil.NewWithTimeout(log, cfg.Narrative.Timeout).DisableRetry()

	// 6. Create scorers
	heuristic := scoring.NewHeuristicScorer(scoring.DefaultHeuristicConfig(), log)
	narrative := scoring.NewNarrativeScorer(cfg.Narrative, narrativeClient, log)
	var primary scoring.Scorer
	if narrative.Configured() {
		primary = narrative
	} else {
		log.Warn("Narrative scorer not configured, using heuristic scoring only")
	}
	scorer := scoring.NewFallbackScorer(primary, heuristic, log)

	// 7. Create repositories
	analysisRepo := analysis.NewRepository(db.Pool)
	loansRepo := loans.NewRepository(db.Pool)
	farmersRepo := farmers.NewRepository(db.Pool)

	// 8. Create WebSocket hub
	hub := realtime.NewHub(log)

	// 9. Create services
	analysisService := analysis.NewService(scorer, store, analysisRepo, hub, log)
	smsClient := notify.NewSMSClient(cfg.SMS, httpClient, log)
	loansService := loans.NewService(analysisService, loansRepo, smsClient, farmersRepo, log)
	farmersService := farmers.NewService(farmersRepo, analysisService, log)
	marketService := amis.NewService(amis.NewClient(cfg.Market, httpClient, log), cache, log)

	// 10. Create handlers
	h := api.Handlers{
		Credit:  handlers.NewCreditHandler(analysisService, log),
		Loans:   handlers.NewLoansHandler(loansService, log),
		Farmers: handlers.NewFarmersHandler(farmersService, log),
		Market:  handlers.NewMarketHandler(marketService, log),
		Hub:     hub,
	}

	// 11. Create router
	router := api.NewRouter(h, cfg.MetricsEnabled, log)

	// 12. Create server
	server := api.New(cfg, log, router)

	// 13. Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
