package scoring

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/sproutsell/agricredit/internal/contracts"
	"github.com/sproutsell/agricredit/pkg/config"
	"github.com/sproutsell/agricredit/pkg/httputil"
	"github.com/sproutsell/agricredit/pkg/logger"
)

// ErrUnavailable signals that the narrative model could not produce an
// analysis and the caller should score heuristically instead. Every
// failure mode of this adapter wraps it; no transport or parse error
// crosses this boundary in any other form.
var ErrUnavailable = errors.New("narrative model unavailable")

// NarrativeScorer delegates scoring to an external text-generation
// service and parses the free-form response into a CreditAnalysis.
type NarrativeScorer struct {
	cfg     config.NarrativeConfig
	http    *httputil.Client
	limiter *rate.Limiter
	logger  *logger.Logger
}

// NewNarrativeScorer creates a narrative scorer. The HTTP client should
// carry the configured request timeout and no retry: a slow model call is
// a failure, not something to wait out.
func NewNarrativeScorer(cfg config.NarrativeConfig, http *httputil.Client, log *logger.Logger) *NarrativeScorer {
	return &NarrativeScorer{
		cfg:     cfg,
		http:    http,
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSec), 1),
		logger:  log,
	}
}

// Configured reports whether credentials are present.
func (s *NarrativeScorer) Configured() bool {
	return s.cfg.APIKey != ""
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Analyze submits the assessment prompt and parses the response.
// Returns an error wrapping ErrUnavailable on any failure.
func (s *NarrativeScorer) Analyze(ctx context.Context, input contracts.FarmerAssessmentInput) (*contracts.CreditAnalysis, error) {
	if !s.Configured() {
		return nil, fmt.Errorf("%w: no API key configured", ErrUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limit wait: %v", ErrUnavailable, err)
	}

	req := chatRequest{
		Model: s.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: BuildPrompt(input)},
		},
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	}

	resp, err := s.http.PostJSON(ctx, s.endpoint(), req, map[string]string{
		"Authorization": "Bearer " + s.cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var parsed chatResponse
	if err := httputil.ReadJSON(resp, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return nil, fmt.Errorf("%w: empty completion", ErrUnavailable)
	}

	analysis := parseAnalysis(parsed.Choices[0].Message.Content, input, time.Now())

	s.logger.WithFields(map[string]interface{}{
		"score": analysis.CreditScore,
		"risk":  analysis.RiskLevel,
		"model": s.cfg.Model,
	}).Debug("Narrative credit analysis parsed")

	return analysis, nil
}

func (s *NarrativeScorer) endpoint() string {
	return strings.TrimRight(s.cfg.BaseURL, "/") + "/chat/completions"
}
