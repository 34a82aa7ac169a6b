package scoring

import (
	"context"

	"github.com/sproutsell/agricredit/internal/contracts"
	"github.com/sproutsell/agricredit/internal/metrics"
	"github.com/sproutsell/agricredit/pkg/logger"
)

// Scorer produces a credit analysis from a normalized assessment.
// The heuristic and narrative models are two implementations of this
// capability; callers compose them and never care which one ran.
type Scorer interface {
	Analyze(ctx context.Context, input contracts.FarmerAssessmentInput) (*contracts.CreditAnalysis, error)
}

// FallbackScorer tries the primary scorer and falls back on any error.
// The pipeline always wraps the heuristic scorer in one of these, with a
// nil primary when the narrative model is not configured; scoring then
// goes straight to the fallback.
type FallbackScorer struct {
	primary  Scorer
	fallback Scorer
	logger   *logger.Logger
}

// NewFallbackScorer composes a primary and a guaranteed fallback.
func NewFallbackScorer(primary, fallback Scorer, log *logger.Logger) *FallbackScorer {
	return &FallbackScorer{
		primary:  primary,
		fallback: fallback,
		logger:   log,
	}
}

// Analyze returns the primary result when available, otherwise the
// fallback's. Primary errors are logged and counted, never propagated.
func (s *FallbackScorer) Analyze(ctx context.Context, input contracts.FarmerAssessmentInput) (*contracts.CreditAnalysis, error) {
	if s.primary != nil {
		analysis, err := s.primary.Analyze(ctx, input)
		if err == nil {
			metrics.ScoringRequests.WithLabelValues("narrative").Inc()
			return analysis, nil
		}

		metrics.NarrativeFallbacks.Inc()
		s.logger.WithError(err).Warn("Primary scorer failed, falling back to heuristic model")
	}

	metrics.ScoringRequests.WithLabelValues("heuristic").Inc()
	return s.fallback.Analyze(ctx, input)
}
