package scoring

import (
	"strconv"
	"strings"

	"github.com/sproutsell/agricredit/internal/contracts"
)

// Number is a tolerant JSON number. Payloads from the mobile and USSD
// front-ends carry numerics as numbers, quoted strings, or garbage;
// anything unparseable decodes to 0 instead of failing the request.
type Number float64

// UnmarshalJSON never returns an error.
func (n *Number) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(strings.Trim(string(data), `"`))
	if s == "" || s == "null" {
		*n = 0
		return nil
	}

	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		*n = 0
		return nil
	}

	*n = Number(v)
	return nil
}

// RawAssessment is a partially-populated assessment payload as received
// from callers. All sections are optional.
type RawAssessment struct {
	FarmData       *RawFarmData       `json:"farmData"`
	FinancialData  *RawFinancialData  `json:"financialData"`
	LocationData   *RawLocationData   `json:"locationData"`
	ProductionData *RawProductionData `json:"productionData"`
	HistoricalData *RawHistoricalData `json:"historicalData"`
	Mpesa          *RawMpesaData      `json:"mpesaData"`
}

// RawFarmData accepts both the legacy farmSize field and the canonical
// farmSizeHectares name.
type RawFarmData struct {
	FarmSize         Number   `json:"farmSize"`
	FarmSizeHectares Number   `json:"farmSizeHectares"`
	FarmType         string   `json:"farmType"`
	YearsExperience  Number   `json:"yearsExperience"`
	MainCrops        []string `json:"mainCrops"`
}

type RawFinancialData struct {
	AnnualRevenue      Number `json:"annualRevenue"`
	AssetsValue        Number `json:"assetsValue"`
	ExistingDebt       Number `json:"existingDebt"`
	FinancialReadiness Number `json:"financialReadiness"`
}

type RawLocationData struct {
	Region  string `json:"region"`
	Country string `json:"country"`
}

type RawProductionData struct {
	YieldHistory  string `json:"yieldHistory"`
	QualityScores string `json:"qualityScores"`
	MarketPrices  string `json:"marketPrices"`
}

type RawHistoricalData struct {
	PaymentHistory  string `json:"paymentHistory"`
	LoanHistory     string `json:"loanHistory"`
	CustomerReviews string `json:"customerReviews"`
}

type RawMpesaData struct {
	TotalInflows  Number `json:"totalInflows"`
	TotalOutflows Number `json:"totalOutflows"`
	InflowCount   Number `json:"inflowCount"`
}

// Normalize coerces a raw assessment into the canonical, fully-populated
// scoring input. It never fails: absent or malformed numerics become 0,
// negatives are clamped to 0, and enum/string fields fall back to their
// documented sentinels. Side-effect-free.
func Normalize(raw RawAssessment) contracts.FarmerAssessmentInput {
	input := contracts.FarmerAssessmentInput{
		FarmData: contracts.FarmData{
			FarmType:  contracts.DefaultFarmType,
			MainCrops: []string{},
		},
		LocationData: contracts.LocationData{
			Region:  contracts.UnknownValue,
			Country: contracts.UnknownValue,
		},
	}

	if raw.FarmData != nil {
		size := float64(raw.FarmData.FarmSizeHectares)
		if size == 0 {
			size = float64(raw.FarmData.FarmSize)
		}
		input.FarmData.FarmSizeHectares = nonNegative(size)
		input.FarmData.YearsExperience = int(nonNegative(float64(raw.FarmData.YearsExperience)))
		if t := strings.TrimSpace(raw.FarmData.FarmType); t != "" {
			input.FarmData.FarmType = t
		}
		if len(raw.FarmData.MainCrops) > 0 {
			input.FarmData.MainCrops = raw.FarmData.MainCrops
		}
	}

	if raw.FinancialData != nil {
		input.FinancialData.AnnualRevenue = nonNegative(float64(raw.FinancialData.AnnualRevenue))
		input.FinancialData.AssetsValue = nonNegative(float64(raw.FinancialData.AssetsValue))
		input.FinancialData.ExistingDebt = nonNegative(float64(raw.FinancialData.ExistingDebt))
		input.FinancialData.FinancialReadiness = clampInt(int(raw.FinancialData.FinancialReadiness), 0, 10)
	}

	if raw.LocationData != nil {
		if r := strings.TrimSpace(raw.LocationData.Region); r != "" {
			input.LocationData.Region = r
		}
		if c := strings.TrimSpace(raw.LocationData.Country); c != "" {
			input.LocationData.Country = c
		}
	}

	if raw.ProductionData != nil {
		input.ProductionData = contracts.ProductionData{
			YieldHistory:  raw.ProductionData.YieldHistory,
			QualityScores: raw.ProductionData.QualityScores,
			MarketPrices:  raw.ProductionData.MarketPrices,
		}
	}

	if raw.HistoricalData != nil {
		input.HistoricalData = contracts.HistoricalData{
			PaymentHistory:  raw.HistoricalData.PaymentHistory,
			LoanHistory:     raw.HistoricalData.LoanHistory,
			CustomerReviews: raw.HistoricalData.CustomerReviews,
		}
	}

	if raw.Mpesa != nil {
		input.Mpesa = &contracts.MpesaData{
			TotalInflows:  nonNegative(float64(raw.Mpesa.TotalInflows)),
			TotalOutflows: nonNegative(float64(raw.Mpesa.TotalOutflows)),
			InflowCount:   int(nonNegative(float64(raw.Mpesa.InflowCount))),
		}
	}

	return input
}

// AssessmentToRaw converts a canonical input back into a raw payload.
// Used when recomputing an analysis from a persisted profile.
func AssessmentToRaw(input contracts.FarmerAssessmentInput) RawAssessment {
	raw := RawAssessment{
		FarmData: &RawFarmData{
			FarmSizeHectares: Number(input.FarmData.FarmSizeHectares),
			FarmType:         input.FarmData.FarmType,
			YearsExperience:  Number(input.FarmData.YearsExperience),
			MainCrops:        input.FarmData.MainCrops,
		},
		FinancialData: &RawFinancialData{
			AnnualRevenue:      Number(input.FinancialData.AnnualRevenue),
			AssetsValue:        Number(input.FinancialData.AssetsValue),
			ExistingDebt:       Number(input.FinancialData.ExistingDebt),
			FinancialReadiness: Number(input.FinancialData.FinancialReadiness),
		},
		LocationData: &RawLocationData{
			Region:  input.LocationData.Region,
			Country: input.LocationData.Country,
		},
		ProductionData: &RawProductionData{
			YieldHistory:  input.ProductionData.YieldHistory,
			QualityScores: input.ProductionData.QualityScores,
			MarketPrices:  input.ProductionData.MarketPrices,
		},
		HistoricalData: &RawHistoricalData{
			PaymentHistory:  input.HistoricalData.PaymentHistory,
			LoanHistory:     input.HistoricalData.LoanHistory,
			CustomerReviews: input.HistoricalData.CustomerReviews,
		},
	}

	if input.Mpesa != nil {
		raw.Mpesa = &RawMpesaData{
			TotalInflows:  Number(input.Mpesa.TotalInflows),
			TotalOutflows: Number(input.Mpesa.TotalOutflows),
			InflowCount:   Number(input.Mpesa.InflowCount),
		}
	}

	return raw
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
