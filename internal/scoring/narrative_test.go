package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sproutsell/agricredit/internal/contracts"
	"github.com/sproutsell/agricredit/pkg/config"
	"github.com/sproutsell/agricredit/pkg/httputil"
	"github.com/sproutsell/agricredit/pkg/logger"
)

func narrativeConfig(baseURL string) config.NarrativeConfig {
	return config.NarrativeConfig{
		APIKey:      "test-key",
		BaseURL:     baseURL,
		Model:       "gpt-3.5-turbo",
		Timeout:     2 * time.Second,
		RatePerSec:  100,
		MaxTokens:   1000,
		Temperature: 0.3,
	}
}

func completionBody(content string) []byte {
	body, _ := json.Marshal(map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"content": content}},
		},
	})
	return body
}

func TestNarrativeScorerSuccess(t *testing.T) {
	var gotAuth string
	var gotReq chatRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Header().Set("Content-Type", "application/json")
		w.Write(completionBody(sampleCompletion))
	}))
	defer server.Close()

	log := logger.NewNop()
	scorer := NewNarrativeScorer(narrativeConfig(server.URL), httputil.NewWithTimeout(log, 2*time.Second).DisableRetry(), log)

	analysis, err := scorer.Analyze(context.Background(), heuristicInput(10, 5, 100000))
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "gpt-3.5-turbo", gotReq.Model)
	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	assert.Contains(t, gotReq.Messages[1].Content, "FARM INFORMATION:")

	assert.Equal(t, 78, analysis.CreditScore)
	assert.False(t, analysis.IsMockData)
}

func TestNarrativeScorerNoKey(t *testing.T) {
	cfg := narrativeConfig("http://localhost:1")
	cfg.APIKey = ""
	log := logger.NewNop()
	scorer := NewNarrativeScorer(cfg, httputil.New(log), log)

	assert.False(t, scorer.Configured())
	_, err := scorer.Analyze(context.Background(), heuristicInput(1, 0, 0))
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestNarrativeScorerServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	log := logger.NewNop()
	scorer := NewNarrativeScorer(narrativeConfig(server.URL), httputil.New(log).DisableRetry(), log)

	_, err := scorer.Analyze(context.Background(), heuristicInput(1, 0, 0))
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestNarrativeScorerEmptyCompletion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	log := logger.NewNop()
	scorer := NewNarrativeScorer(narrativeConfig(server.URL), httputil.New(log).DisableRetry(), log)

	_, err := scorer.Analyze(context.Background(), heuristicInput(1, 0, 0))
	assert.ErrorIs(t, err, ErrUnavailable)
}

type failingScorer struct{}

func (failingScorer) Analyze(context.Context, contracts.FarmerAssessmentInput) (*contracts.CreditAnalysis, error) {
	return nil, errors.New("boom")
}

func TestFallbackScorerUsesPrimary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(completionBody(sampleCompletion))
	}))
	defer server.Close()

	log := logger.NewNop()
	primary := NewNarrativeScorer(narrativeConfig(server.URL), httputil.NewWithTimeout(log, 2*time.Second).DisableRetry(), log)
	scorer := NewFallbackScorer(primary, NewHeuristicScorer(DefaultHeuristicConfig(), log), log)

	analysis, err := scorer.Analyze(context.Background(), heuristicInput(10, 5, 100000))
	require.NoError(t, err)
	assert.False(t, analysis.IsMockData)
	assert.Equal(t, 78, analysis.CreditScore)
}

func TestFallbackScorerFallsBackOnPrimaryFailure(t *testing.T) {
	log := logger.NewNop()
	scorer := NewFallbackScorer(failingScorer{}, NewHeuristicScorer(DefaultHeuristicConfig(), log), log)

	analysis, err := scorer.Analyze(context.Background(), heuristicInput(10, 5, 100000))
	require.NoError(t, err)

	// Fallback result is the deterministic model's.
	assert.True(t, analysis.IsMockData)
	assert.Equal(t, 95, analysis.CreditScore)
}

func TestFallbackScorerNilPrimary(t *testing.T) {
	log := logger.NewNop()
	scorer := NewFallbackScorer(nil, NewHeuristicScorer(DefaultHeuristicConfig(), log), log)

	analysis, err := scorer.Analyze(context.Background(), heuristicInput(1, 0, 0))
	require.NoError(t, err)
	assert.True(t, analysis.IsMockData)
}
