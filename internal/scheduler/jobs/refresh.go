package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/sproutsell/agricredit/internal/contracts"
	"github.com/sproutsell/agricredit/pkg/config"
	"github.com/sproutsell/agricredit/pkg/logger"
)

// Batch size per run; a nightly sweep catches up over successive nights
// if the backlog ever exceeds this.
const refreshBatchSize = 200

// StaleLister finds profiles whose analysis has aged out.
type StaleLister interface {
	ListStale(ctx context.Context, maxAge time.Duration, limit int) ([]string, error)
}

// Refresher recomputes a user's analysis from the persisted assessment.
type Refresher interface {
	Refresh(ctx context.Context, userID string) (*contracts.CreditAnalysis, error)
}

// RefreshJob recomputes stale credit analyses so scores track profile
// age without waiting for the farmer's next request.
type RefreshJob struct {
	lister    StaleLister
	refresher Refresher
	cfg       config.SchedulerConfig
	logger    *logger.Logger
}

// NewRefreshJob creates a new analysis refresh job.
func NewRefreshJob(lister StaleLister, refresher Refresher, cfg config.SchedulerConfig, log *logger.Logger) *RefreshJob {
	return &RefreshJob{
		lister:    lister,
		refresher: refresher,
		cfg:       cfg,
		logger:    log,
	}
}

// Name returns the job name
func (j *RefreshJob) Name() string {
	return "analysis_refresh"
}

// Schedule returns the cron schedule.
func (j *RefreshJob) Schedule() string {
	return j.cfg.RefreshSchedule
}

// Run recomputes every stale analysis in the batch. Individual failures
// are logged and skipped; the job only fails when the stale listing
// itself does.
func (j *RefreshJob) Run(ctx context.Context) error {
	userIDs, err := j.lister.ListStale(ctx, j.cfg.MaxAnalysisAge, refreshBatchSize)
	if err != nil {
		return fmt.Errorf("list stale profiles: %w", err)
	}

	if len(userIDs) == 0 {
		j.logger.Debug("No stale analyses to refresh")
		return nil
	}

	var refreshed, failed int
	for _, userID := range userIDs {
		if _, err := j.refresher.Refresh(ctx, userID); err != nil {
			failed++
			j.logger.WithError(err).WithField("user_id", userID).Warn("Failed to refresh analysis")
			continue
		}
		refreshed++
	}

	j.logger.WithFields(map[string]interface{}{
		"refreshed": refreshed,
		"failed":    failed,
	}).Info("Stale analysis refresh completed")

	return nil
}
