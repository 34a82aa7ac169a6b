package scoring

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sproutsell/agricredit/internal/contracts"
)

// Parse defaults for fields the model response did not state clearly.
const (
	defaultScore     = 50
	defaultReadiness = 5
	defaultRate      = 8.5
)

// Derivation constants for the maximum loan on the narrative path.
const (
	narrativeLoanPerHectare   = 1000.0
	narrativeRevenueLoanShare = 0.5
)

var (
	intPattern    = regexp.MustCompile(`(\d+)`)
	amountPattern = regexp.MustCompile(`\$?(\d+,?\d*)`)
	ratePattern   = regexp.MustCompile(`(\d+\.?\d*)%`)
)

// parseAnalysis extracts a structured CreditAnalysis from free-form model
// text via line scanning. Best-effort: unmatched fields receive documented
// defaults, never an error. The caller decides whether the surrounding
// response was valid at all.
func parseAnalysis(text string, input contracts.FarmerAssessmentInput, now time.Time) *contracts.CreditAnalysis {
	lines := strings.Split(text, "\n")

	score := clampInt(extractInt(lines, "Credit Score", defaultScore), 0, 100)
	readiness := clampInt(extractInt(lines, "Financial Readiness", defaultReadiness), 0, 10)
	recommended := extractAmount(lines)

	return &contracts.CreditAnalysis{
		CreditScore:           score,
		LoanEligibility:       extractEligibility(lines),
		RecommendedLoanAmount: recommended,
		MaxLoanAmount:         deriveMaxLoan(recommended, input),
		RiskLevel:             extractRiskLevel(lines),
		Strengths:             extractList(lines, "Strengths"),
		Weaknesses:            extractList(lines, "Weaknesses"),
		Recommendations:       extractList(lines, "Recommendations"),
		FinancialReadiness:    readiness,
		InterestRate:          extractInterestRate(lines),
		AnalysisDate:          now,
		IsMockData:            false,
	}
}

// extractInt returns the first integer on the first line containing the
// keyword, or the default.
func extractInt(lines []string, keyword string, defaultValue int) int {
	for _, line := range lines {
		if !strings.Contains(line, keyword) {
			continue
		}
		if m := intPattern.FindStringSubmatch(line); m != nil {
			if v, err := strconv.Atoi(m[1]); err == nil {
				return v
			}
		}
		return defaultValue
	}
	return defaultValue
}

func extractEligibility(lines []string) contracts.Eligibility {
	for _, line := range lines {
		if !strings.Contains(line, "Loan Eligibility") {
			continue
		}
		switch {
		case strings.Contains(line, "Yes"):
			return contracts.EligibilityEligible
		case strings.Contains(line, "No"):
			return contracts.EligibilityNotEligible
		case strings.Contains(line, "Partial"):
			return contracts.EligibilityPartiallyEligible
		}
	}
	return contracts.EligibilityRequiresReview
}

func extractAmount(lines []string) float64 {
	for _, line := range lines {
		if !strings.Contains(line, "Recommended Loan Amount") && !strings.Contains(line, "Loan Amount") {
			continue
		}
		if m := amountPattern.FindStringSubmatch(line); m != nil {
			if v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64); err == nil {
				return v
			}
		}
		return 0
	}
	return 0
}

// deriveMaxLoan bounds the maximum by farm fundamentals even when the
// model names a larger figure outright.
func deriveMaxLoan(parsedAmount float64, input contracts.FarmerAssessmentInput) float64 {
	calculated := math.Min(
		input.FarmData.FarmSizeHectares*narrativeLoanPerHectare,
		input.FinancialData.AnnualRevenue*narrativeRevenueLoanShare,
	)

	if parsedAmount > 0 {
		return math.Max(parsedAmount, calculated)
	}
	return calculated
}

func extractRiskLevel(lines []string) contracts.RiskLevel {
	for _, line := range lines {
		lower := strings.ToLower(line)
		if !strings.Contains(lower, "risk") {
			continue
		}
		switch {
		case strings.Contains(lower, "high"):
			return contracts.RiskHigh
		case strings.Contains(lower, "medium"):
			return contracts.RiskMedium
		case strings.Contains(lower, "low"):
			return contracts.RiskLow
		}
	}
	return contracts.RiskMedium
}

func extractInterestRate(lines []string) float64 {
	for _, line := range lines {
		if !strings.Contains(line, "Interest Rate") {
			continue
		}
		if m := ratePattern.FindStringSubmatch(line); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				return v
			}
		}
		return defaultRate
	}
	return defaultRate
}

// extractList collects bulleted lines following the section header until
// the first blank line. Substitutes a placeholder when nothing matched so
// downstream consumers never see an empty list.
func extractList(lines []string, keyword string) []string {
	var items []string
	inSection := false

	for _, line := range lines {
		if strings.Contains(line, keyword) {
			inSection = true
			continue
		}

		if !inSection {
			continue
		}

		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "-") || strings.HasPrefix(trimmed, "•") {
			items = append(items, strings.TrimSpace(strings.TrimLeft(trimmed, "-•")))
		} else if trimmed == "" {
			break
		}
	}

	if len(items) == 0 {
		return []string{"No " + strings.ToLower(keyword) + " identified"}
	}
	return items
}
