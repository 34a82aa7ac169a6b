package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sproutsell/agricredit/internal/contracts"
	"github.com/sproutsell/agricredit/internal/metrics"
	"github.com/sproutsell/agricredit/internal/scoring"
	"github.com/sproutsell/agricredit/pkg/logger"
)

// ProfileRepository is the persistence surface the service needs.
// *Repository satisfies it; tests substitute fakes.
type ProfileRepository interface {
	SaveAssessment(ctx context.Context, userID string, input contracts.FarmerAssessmentInput) error
	SaveAnalysis(ctx context.Context, userID string, analysis *contracts.CreditAnalysis) error
	GetAssessment(ctx context.Context, userID string) (contracts.FarmerAssessmentInput, error)
	GetAnalysis(ctx context.Context, userID string) (*contracts.CreditAnalysis, error)
}

// Notifier receives completed analyses for realtime delivery.
type Notifier interface {
	AnalysisUpdated(userID string, analysis *contracts.CreditAnalysis)
}

// Service runs the scoring pipeline: normalize, score, clamp, cache,
// persist, notify. Persistence and notification are best-effort; a
// computed analysis is always returned to the caller.
type Service struct {
	scorer   scoring.Scorer
	store    Store
	repo     ProfileRepository
	notifier Notifier
	logger   *logger.Logger
}

// NewService creates the scoring pipeline service. repo and notifier may
// be nil; the corresponding steps are skipped.
func NewService(scorer scoring.Scorer, store Store, repo ProfileRepository, notifier Notifier, log *logger.Logger) *Service {
	return &Service{
		scorer:   scorer,
		store:    store,
		repo:     repo,
		notifier: notifier,
		logger:   log,
	}
}

// Score computes a fresh analysis from a raw assessment payload and
// replaces whatever was cached or persisted for the user.
func (s *Service) Score(ctx context.Context, userID string, raw scoring.RawAssessment) (*contracts.CreditAnalysis, error) {
	input := scoring.Normalize(raw)

	if s.repo != nil {
		if err := s.repo.SaveAssessment(ctx, userID, input); err != nil {
			s.logger.WithError(err).WithField("user_id", userID).Warn("Failed to persist assessment")
		}
	}

	return s.scoreInput(ctx, userID, input)
}

// Get returns the cached analysis, falling back to the persisted one and
// warming the cache on a hit. When only the assessment survived (a failed
// analysis write-through), the analysis is recomputed from it. Returns
// ErrNotFound when the user has never been scored.
func (s *Service) Get(ctx context.Context, userID string) (*contracts.CreditAnalysis, error) {
	analysis, err := s.store.Get(ctx, userID)
	if err == nil {
		return analysis, nil
	}
	if !errors.Is(err, ErrNotCached) {
		s.logger.WithError(err).WithField("user_id", userID).Warn("Analysis cache read failed")
	}

	if s.repo == nil {
		return nil, ErrNotFound
	}

	analysis, err = s.repo.GetAnalysis(ctx, userID)
	if err == nil {
		if err := s.store.Set(ctx, userID, analysis); err != nil {
			s.logger.WithError(err).WithField("user_id", userID).Warn("Failed to warm analysis cache")
		}
		return analysis, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("load persisted analysis: %w", err)
	}

	// No persisted analysis, but the assessment may still be on file:
	// rebuild the input and rescore.
	input, err := s.repo.GetAssessment(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load persisted assessment: %w", err)
	}

	s.logger.WithField("user_id", userID).Info("Recomputing analysis from persisted assessment")

	return s.scoreInput(ctx, userID, input)
}

// Refresh recomputes the analysis from the persisted assessment. Used by
// the scheduler for stale profiles.
func (s *Service) Refresh(ctx context.Context, userID string) (*contracts.CreditAnalysis, error) {
	if s.repo == nil {
		return nil, ErrNotFound
	}

	input, err := s.repo.GetAssessment(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.scoreInput(ctx, userID, input)
}

func (s *Service) scoreInput(ctx context.Context, userID string, input contracts.FarmerAssessmentInput) (*contracts.CreditAnalysis, error) {
	start := time.Now()

	analysis, err := s.scorer.Analyze(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("score assessment: %w", err)
	}
	analysis.ClampRecommendation()

	metrics.ScoringDuration.Observe(time.Since(start).Seconds())

	if err := s.store.Set(ctx, userID, analysis); err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Warn("Failed to cache analysis")
	}

	if s.repo != nil {
		if err := s.repo.SaveAnalysis(ctx, userID, analysis); err != nil {
			s.logger.WithError(err).WithField("user_id", userID).Warn("Failed to persist analysis")
		}
	}

	if s.notifier != nil {
		s.notifier.AnalysisUpdated(userID, analysis)
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id":   userID,
		"score":     analysis.CreditScore,
		"risk":      analysis.RiskLevel,
		"heuristic": analysis.IsMockData,
		"duration":  time.Since(start),
	}).Info("Credit analysis completed")

	return analysis, nil
}
