package loans

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sproutsell/agricredit/internal/contracts"
)

func analysisWith(score int, eligibility contracts.Eligibility, risk contracts.RiskLevel, recommended, max float64) *contracts.CreditAnalysis {
	return &contracts.CreditAnalysis{
		CreditScore:           score,
		LoanEligibility:       eligibility,
		RecommendedLoanAmount: recommended,
		MaxLoanAmount:         max,
		RiskLevel:             risk,
		InterestRate:          8.5,
	}
}

func TestGateLowCreditScoreAlwaysRejected(t *testing.T) {
	analysis := analysisWith(45, contracts.EligibilityEligible, contracts.RiskLow, 1000, 5000)

	for _, amount := range []float64{0, 100, 5000, 1000000} {
		decision := EvaluateEligibility(analysis, amount, "agriculture inputs")
		assert.False(t, decision.Eligible)
		assert.Equal(t, "Credit score too low", decision.Reason)
		assert.Empty(t, decision.Conditions)
	}
}

func TestGateNotEligibleAssessment(t *testing.T) {
	analysis := analysisWith(70, contracts.EligibilityNotEligible, contracts.RiskLow, 1000, 5000)

	decision := EvaluateEligibility(analysis, 500, "")
	assert.False(t, decision.Eligible)
	assert.Equal(t, "Not eligible based on financial assessment", decision.Reason)
}

func TestGateAmountExceedsMax(t *testing.T) {
	analysis := analysisWith(85, contracts.EligibilityEligible, contracts.RiskLow, 3500, 5000)

	decision := EvaluateEligibility(analysis, 7500, "agriculture")
	assert.False(t, decision.Eligible)
	assert.Equal(t, "Requested amount exceeds maximum eligible amount of $5000", decision.Reason)
	assert.Equal(t, []string{"Consider reducing amount to $3500"}, decision.Conditions)
}

func TestGateExceedsMaxFiresBeforeHighRisk(t *testing.T) {
	// Over-max is a rejection even for high risk; the conditional accept
	// never gets a look.
	analysis := analysisWith(60, contracts.EligibilityEligible, contracts.RiskHigh, 1000, 5000)

	decision := EvaluateEligibility(analysis, 6000, "")
	assert.False(t, decision.Eligible)
	assert.Contains(t, decision.Reason, "exceeds maximum eligible amount")
}

func TestGateHighRiskConditionalAccept(t *testing.T) {
	analysis := analysisWith(60, contracts.EligibilityEligible, contracts.RiskHigh, 1000, 5000)

	decision := EvaluateEligibility(analysis, 3000, "")
	assert.True(t, decision.Eligible)
	assert.Equal(t, "High risk assessment for requested amount", decision.Reason)
	assert.Equal(t, []string{
		"Additional collateral may be required",
		"Higher interest rate applies",
	}, decision.Conditions)
}

func TestGateHighRiskWithinRecommendation(t *testing.T) {
	analysis := analysisWith(60, contracts.EligibilityEligible, contracts.RiskHigh, 4000, 5000)

	decision := EvaluateEligibility(analysis, 3000, "agriculture expansion")
	assert.True(t, decision.Eligible)
	assert.Equal(t, "Eligible for loan", decision.Reason)
	assert.Empty(t, decision.Conditions)
}

func TestGateMediumRiskReportingCondition(t *testing.T) {
	analysis := analysisWith(75, contracts.EligibilityEligible, contracts.RiskMedium, 3500, 5000)

	decision := EvaluateEligibility(analysis, 2000, "agriculture inputs")
	assert.True(t, decision.Eligible)
	assert.Equal(t, []string{"Regular progress reporting required"}, decision.Conditions)
}

func TestGatePurposeCondition(t *testing.T) {
	analysis := analysisWith(90, contracts.EligibilityEligible, contracts.RiskLow, 3500, 5000)

	decision := EvaluateEligibility(analysis, 2000, "school fees")
	assert.True(t, decision.Eligible)
	assert.Equal(t, []string{"Funds must be used for agricultural purposes"}, decision.Conditions)

	// Empty purpose attaches no condition.
	decision = EvaluateEligibility(analysis, 2000, "")
	assert.Empty(t, decision.Conditions)

	// A purpose naming agriculture attaches no condition.
	decision = EvaluateEligibility(analysis, 2000, "agriculture equipment")
	assert.Empty(t, decision.Conditions)
}
