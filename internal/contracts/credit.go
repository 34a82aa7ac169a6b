package contracts

import "time"

// Eligibility represents the scored loan eligibility classification.
type Eligibility string

const (
	EligibilityEligible          Eligibility = "eligible"
	EligibilityNotEligible       Eligibility = "not_eligible"
	EligibilityPartiallyEligible Eligibility = "partially_eligible"
	EligibilityRequiresReview    Eligibility = "requires_review"
)

// RiskLevel represents the credit risk tier.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// CreditAnalysis is the structured output of the scoring pipeline.
// Immutable once produced; recomputation replaces the whole value.
type CreditAnalysis struct {
	CreditScore           int         `json:"creditScore"` // 0-100
	LoanEligibility       Eligibility `json:"loanEligibility"`
	RecommendedLoanAmount float64     `json:"recommendedLoanAmount"`
	MaxLoanAmount         float64     `json:"maxLoanAmount"`
	RiskLevel             RiskLevel   `json:"riskLevel"`
	Strengths             []string    `json:"strengths"`
	Weaknesses            []string    `json:"weaknesses"`
	Recommendations       []string    `json:"recommendations"`
	FinancialReadiness    int         `json:"financialReadiness"` // 0-10
	InterestRate          float64     `json:"interestRate"`       // percent
	AnalysisDate          time.Time   `json:"analysisDate"`
	IsMockData            bool        `json:"isMockData"` // true when produced by the heuristic model
}

// ClampRecommendation enforces recommendedLoanAmount <= maxLoanAmount.
// The narrative path can return an inflated recommendation independent of
// the derived maximum, so the pipeline clamps before caching or persisting.
func (a *CreditAnalysis) ClampRecommendation() {
	if a.RecommendedLoanAmount > a.MaxLoanAmount {
		a.RecommendedLoanAmount = a.MaxLoanAmount
	}
	if a.RecommendedLoanAmount < 0 {
		a.RecommendedLoanAmount = 0
	}
	if a.MaxLoanAmount < 0 {
		a.MaxLoanAmount = 0
	}
}

// EligibilityDecision is the loan gate's answer for a specific request.
// Derived per request, never persisted.
type EligibilityDecision struct {
	Eligible   bool     `json:"eligible"`
	Reason     string   `json:"reason"`
	Conditions []string `json:"conditions"`
}
