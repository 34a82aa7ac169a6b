package analysis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sproutsell/agricredit/internal/contracts"
	"github.com/sproutsell/agricredit/pkg/redis"
)

func sampleAnalysis() *contracts.CreditAnalysis {
	return &contracts.CreditAnalysis{
		CreditScore:           94,
		LoanEligibility:       contracts.EligibilityEligible,
		RecommendedLoanAmount: 5600,
		MaxLoanAmount:         8000,
		RiskLevel:             contracts.RiskLow,
		Strengths:             []string{"Agricultural experience"},
		Weaknesses:            []string{"Dependent on seasonal factors"},
		Recommendations:       []string{"Maintain consistent production records"},
		FinancialReadiness:    10,
		InterestRate:          6.5,
		AnalysisDate:          time.Now().UTC().Truncate(time.Second),
		IsMockData:            true,
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Get(ctx, "farmer-1")
	assert.ErrorIs(t, err, ErrNotCached)

	analysis := sampleAnalysis()
	require.NoError(t, store.Set(ctx, "farmer-1", analysis))

	got, err := store.Get(ctx, "farmer-1")
	require.NoError(t, err)
	assert.Equal(t, analysis, got)

	// Mutating the returned value must not touch the stored one,
	// list fields included.
	got.CreditScore = 1
	got.Strengths[0] = "tampered"
	again, err := store.Get(ctx, "farmer-1")
	require.NoError(t, err)
	assert.Equal(t, 94, again.CreditScore)
	assert.Equal(t, []string{"Agricultural experience"}, again.Strengths)

	require.NoError(t, store.Delete(ctx, "farmer-1"))
	_, err = store.Get(ctx, "farmer-1")
	assert.ErrorIs(t, err, ErrNotCached)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := redis.NewFromAddr(mr.Addr())
	require.NoError(t, err)
	defer client.Close()

	ctx := context.Background()
	store := NewRedisStore(redis.NewCache(client, "agricredit"), time.Hour)

	_, err = store.Get(ctx, "farmer-1")
	assert.ErrorIs(t, err, ErrNotCached)

	analysis := sampleAnalysis()
	require.NoError(t, store.Set(ctx, "farmer-1", analysis))

	got, err := store.Get(ctx, "farmer-1")
	require.NoError(t, err)
	assert.Equal(t, analysis.CreditScore, got.CreditScore)
	assert.Equal(t, analysis.RiskLevel, got.RiskLevel)
	assert.True(t, analysis.AnalysisDate.Equal(got.AnalysisDate))

	// TTL applied on the underlying key
	mr.FastForward(2 * time.Hour)
	_, err = store.Get(ctx, "farmer-1")
	assert.ErrorIs(t, err, ErrNotCached)
}

func TestRedisStoreDelete(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := redis.NewFromAddr(mr.Addr())
	require.NoError(t, err)
	defer client.Close()

	ctx := context.Background()
	store := NewRedisStore(redis.NewCache(client, "agricredit"), 0)

	require.NoError(t, store.Set(ctx, "farmer-2", sampleAnalysis()))
	require.NoError(t, store.Delete(ctx, "farmer-2"))

	_, err = store.Get(ctx, "farmer-2")
	assert.ErrorIs(t, err, ErrNotCached)
}
