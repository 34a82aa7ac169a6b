package contracts

// Default sentinel values substituted by the normalizer for absent fields.
const (
	DefaultFarmType = "traditional"
	UnknownValue    = "unknown"
)

// FarmData describes the physical farming operation.
type FarmData struct {
	FarmSizeHectares float64  `json:"farmSizeHectares"`
	FarmType         string   `json:"farmType"`
	YearsExperience  int      `json:"yearsExperience"`
	MainCrops        []string `json:"mainCrops"`
}

// FinancialData describes the farmer's financial position.
type FinancialData struct {
	AnnualRevenue      float64 `json:"annualRevenue"`
	AssetsValue        float64 `json:"assetsValue"`
	ExistingDebt       float64 `json:"existingDebt"`
	FinancialReadiness int     `json:"financialReadiness"` // 0-10
}

// LocationData describes where the farm operates.
type LocationData struct {
	Region  string `json:"region"`
	Country string `json:"country"`
}

// ProductionData carries production history as opaque pass-through text.
// The scorer does not derive semantics from these fields; they only feed
// the narrative prompt.
type ProductionData struct {
	YieldHistory  string `json:"yieldHistory"`
	QualityScores string `json:"qualityScores"`
	MarketPrices  string `json:"marketPrices"`
}

// HistoricalData carries credit history as opaque pass-through text.
type HistoricalData struct {
	PaymentHistory  string `json:"paymentHistory"`
	LoanHistory     string `json:"loanHistory"`
	CustomerReviews string `json:"customerReviews"`
}

// MpesaData is an optional mobile-money activity summary.
type MpesaData struct {
	TotalInflows  float64 `json:"totalInflows"`
	TotalOutflows float64 `json:"totalOutflows"`
	InflowCount   int     `json:"inflowCount"`
}

// NetFlow returns inflows minus outflows.
func (m *MpesaData) NetFlow() float64 {
	return m.TotalInflows - m.TotalOutflows
}

// FarmerAssessmentInput is the canonical, fully-populated scoring input.
// Produced only by the normalizer; every numeric field is non-negative and
// every enum/string field carries a sentinel when the source was silent.
type FarmerAssessmentInput struct {
	FarmData       FarmData       `json:"farmData"`
	FinancialData  FinancialData  `json:"financialData"`
	LocationData   LocationData   `json:"locationData"`
	ProductionData ProductionData `json:"productionData"`
	HistoricalData HistoricalData `json:"historicalData"`
	Mpesa          *MpesaData     `json:"mpesaData,omitempty"`
}
