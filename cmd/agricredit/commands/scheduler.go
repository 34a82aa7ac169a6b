package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sproutsell/agricredit/internal/analysis"
	"github.com/sproutsell/agricredit/internal/realtime"
	"github.com/sproutsell/agricredit/internal/scheduler"
	"github.com/sproutsell/agricredit/internal/scheduler/jobs"
	"github.com/sproutsell/agricredit/internal/scoring"
	"github.com/sproutsell/agricredit/pkg/config"
	"github.com/sproutsell/agricredit/pkg/database"
	"github.com/sproutsell/agricredit/pkg/httputil"
	"github.com/sproutsell/agricredit/pkg/logger"
	"github.com/sproutsell/agricredit/pkg/redis"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Manage the background scheduler",
	Long: `Starts the scheduler daemon or manages its jobs.

This command:
- Starts the scheduler daemon
- Lists registered jobs
- Runs a job immediately
- Shows job execution history

Subcommands:
  start   - Start the scheduler
  list    - List registered jobs
  run     - Run a job immediately
  status  - Show job execution history

Example:
  go run ./cmd/agricredit scheduler start
  go run ./cmd/agricredit scheduler list
  go run ./cmd/agricredit scheduler run analysis_refresh`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler",
		Long: `Starts the scheduler and schedules all registered jobs.

Registered jobs:
- analysis_refresh: daily at 02:00 (re-scores stale credit analyses)

Stop the scheduler with Ctrl+C.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "List registered jobs",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "Run a job immediately",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}

	schedulerStatusCmd = &cobra.Command{
		Use:   "status [job_name]",
		Short: "Show job execution history",
		Args:  cobra.ExactArgs(1),
		RunE:  showStatus,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
	schedulerCmd.AddCommand(schedulerStatusCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== AgriCredit Scheduler ===")

	sched, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	sched.Start()

	fmt.Println("\n✅ Scheduler started successfully")
	fmt.Println("\nRegistered jobs:")
	for _, jobName := range sched.Jobs() {
		fmt.Printf("  - %s\n", jobName)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	sched, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	fmt.Println("Registered jobs:")
	for _, jobName := range sched.Jobs() {
		fmt.Printf("  - %s\n", jobName)
	}

	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	fmt.Printf("Running job: %s\n", jobName)

	sched, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	if err := sched.RunJob(jobName); err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	fmt.Println("Job started (running in background)")
	return nil
}

func showStatus(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	sched, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	history, err := sched.History(jobName)
	if err != nil {
		return fmt.Errorf("job history: %w", err)
	}

	fmt.Printf("📊 %s\n", jobName)
	fmt.Printf("   Total Runs: %d\n", len(history.Results))
	fmt.Printf("   Success Rate: %.1f%%\n", history.SuccessRate()*100)

	for _, result := range history.Results {
		status := "OK"
		if !result.Success {
			status = "FAILED: " + result.Error
		}
		fmt.Printf("   %s  %-8s %s\n",
			result.StartTime.Format("2006-01-02 15:04:05"),
			result.Duration.Round(time.Millisecond),
			status)
	}

	return nil
}

func initScheduler() (*scheduler.Scheduler, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Connect to database
	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// 4. Connect to Redis (optional)
	redisClient, err := redis.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	var store analysis.Store
	if redisClient.Enabled() {
		store = analysis.NewRedisStore(redis.NewCache(redisClient, "agricredit"), redis.TTLDaily)
	} else {
		store = analysis.NewMemoryStore()
	}

	// 5. Create scorers
	narrativeClient := httputil.NewWithTimeout(log, cfg.Narrative.Timeout).DisableRetry()
	heuristic := scoring.NewHeuristicScorer(scoring.DefaultHeuristicConfig(), log)
	narrative := scoring.NewNarrativeScorer(cfg.Narrative, narrativeClient, log)
	var primary scoring.Scorer
	if narrative.Configured() {
		primary = narrative
	}
	scorer := scoring.NewFallbackScorer(primary, heuristic, log)

	// 6. Create analysis service
	analysisRepo := analysis.NewRepository(db.Pool)
	hub := realtime.NewHub(log)
	analysisService := analysis.NewService(scorer, store, analysisRepo, hub, log)

	// 7. Create scheduler and register jobs
	sched := scheduler.New(log)

	if err := sched.AddJob(jobs.NewRefreshJob(analysisRepo, analysisService, cfg.Scheduler, log)); err != nil {
		return nil, fmt.Errorf("register refresh job: %w", err)
	}

	return sched, nil
}
