package loans

import (
	"fmt"
	"strings"

	"github.com/sproutsell/agricredit/internal/contracts"
)

// Minimum credit score for any loan consideration.
const minCreditScore = 50

// EvaluateEligibility is the loan eligibility gate. Pure function; rules
// apply in order and the first rejection wins. Rule 4 is a conditional
// accept: a high-risk profile asking above its recommendation still
// passes, with extra conditions attached.
func EvaluateEligibility(analysis *contracts.CreditAnalysis, requestedAmount float64, purpose string) contracts.EligibilityDecision {
	decision := contracts.EligibilityDecision{
		Conditions: []string{},
	}

	if analysis.CreditScore < minCreditScore {
		decision.Reason = "Credit score too low"
		return decision
	}

	if analysis.LoanEligibility == contracts.EligibilityNotEligible {
		decision.Reason = "Not eligible based on financial assessment"
		return decision
	}

	if requestedAmount > analysis.MaxLoanAmount {
		decision.Reason = fmt.Sprintf("Requested amount exceeds maximum eligible amount of $%g", analysis.MaxLoanAmount)
		decision.Conditions = append(decision.Conditions,
			fmt.Sprintf("Consider reducing amount to $%g", analysis.RecommendedLoanAmount))
		return decision
	}

	if analysis.RiskLevel == contracts.RiskHigh && requestedAmount > analysis.RecommendedLoanAmount {
		decision.Eligible = true
		decision.Reason = "High risk assessment for requested amount"
		decision.Conditions = append(decision.Conditions,
			"Additional collateral may be required",
			"Higher interest rate applies")
		return decision
	}

	decision.Eligible = true
	decision.Reason = "Eligible for loan"

	if analysis.RiskLevel == contracts.RiskMedium {
		decision.Conditions = append(decision.Conditions, "Regular progress reporting required")
	}

	if purpose != "" && !strings.Contains(purpose, "agriculture") {
		decision.Conditions = append(decision.Conditions, "Funds must be used for agricultural purposes")
	}

	return decision
}
