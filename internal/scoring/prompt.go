package scoring

import (
	"fmt"
	"strings"

	"github.com/sproutsell/agricredit/internal/contracts"
)

const systemPrompt = "You are an agricultural finance expert. Analyze farmer data and provide credit scoring, loan eligibility, and financial recommendations."

// BuildPrompt renders the normalized assessment as the structured prompt
// submitted to the narrative model. Section layout and the ten requested
// fields are load-bearing: the parser scans for these exact labels.
func BuildPrompt(input contracts.FarmerAssessmentInput) string {
	var b strings.Builder

	b.WriteString("Analyze this farmer's creditworthiness and provide a detailed assessment:\n\n")

	b.WriteString("FARM INFORMATION:\n")
	fmt.Fprintf(&b, "- Farm Size: %s hectares\n", numberOr(input.FarmData.FarmSizeHectares, "Not specified"))
	fmt.Fprintf(&b, "- Farm Type: %s\n", stringOr(input.FarmData.FarmType, "Not specified"))
	fmt.Fprintf(&b, "- Years Farming: %d\n", input.FarmData.YearsExperience)
	fmt.Fprintf(&b, "- Main Crops: %s\n", cropsOr(input.FarmData.MainCrops, "Not specified"))
	fmt.Fprintf(&b, "- Location: %s, %s\n", input.LocationData.Region, input.LocationData.Country)

	b.WriteString("\nFINANCIAL INFORMATION:\n")
	fmt.Fprintf(&b, "- Annual Revenue: %s\n", numberOr(input.FinancialData.AnnualRevenue, "Unknown"))
	fmt.Fprintf(&b, "- Assets Value: %s\n", numberOr(input.FinancialData.AssetsValue, "Unknown"))
	fmt.Fprintf(&b, "- Existing Debt: %s\n", numberOr(input.FinancialData.ExistingDebt, "None"))
	fmt.Fprintf(&b, "- Financial Readiness: %d/10\n", input.FinancialData.FinancialReadiness)

	b.WriteString("\nPRODUCTION DATA:\n")
	fmt.Fprintf(&b, "- Yield History: %s\n", stringOr(input.ProductionData.YieldHistory, "No data"))
	fmt.Fprintf(&b, "- Quality Scores: %s\n", stringOr(input.ProductionData.QualityScores, "No data"))
	fmt.Fprintf(&b, "- Market Prices: %s\n", stringOr(input.ProductionData.MarketPrices, "No data"))

	b.WriteString("\nHISTORICAL DATA:\n")
	fmt.Fprintf(&b, "- Payment History: %s\n", stringOr(input.HistoricalData.PaymentHistory, "No data"))
	fmt.Fprintf(&b, "- Loan History: %s\n", stringOr(input.HistoricalData.LoanHistory, "No data"))
	fmt.Fprintf(&b, "- Customer Reviews: %s\n", stringOr(input.HistoricalData.CustomerReviews, "No data"))

	if m := input.Mpesa; m != nil {
		b.WriteString("\nMOBILE MONEY DATA:\n")
		fmt.Fprintf(&b, "- Total Inflows: %.2f\n", m.TotalInflows)
		fmt.Fprintf(&b, "- Total Outflows: %.2f\n", m.TotalOutflows)
		fmt.Fprintf(&b, "- Inflow Count: %d\n", m.InflowCount)
	}

	b.WriteString(`
Please provide:
1. Credit Score (0-100)
2. Loan Eligibility (Yes/No/Partial)
3. Recommended Loan Amount
4. Risk Assessment
5. Key Strengths
6. Key Weaknesses
7. Improvement Recommendations
8. Financial Readiness Score
9. Maximum Recommended Loan Amount
10. Interest Rate Recommendation
`)

	return b.String()
}

func stringOr(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

func numberOr(v float64, fallback string) string {
	if v == 0 {
		return fallback
	}
	return fmt.Sprintf("%g", v)
}

func cropsOr(crops []string, fallback string) string {
	if len(crops) == 0 {
		return fallback
	}
	return strings.Join(crops, ", ")
}
