package scoring

import (
	"context"
	"math"
	"time"

	"github.com/sproutsell/agricredit/internal/contracts"
	"github.com/sproutsell/agricredit/pkg/logger"
)

// HeuristicConfig holds the tunable constants of the deterministic
// scoring model. Defaults reproduce the production calibration.
type HeuristicConfig struct {
	BaseScore        int     // starting score before adjustments
	ExperienceWeight int     // points per year of farming experience
	RevenueBonus     int     // bonus when any revenue exists
	ScoreCap         int     // hard ceiling on the credit score
	ReadinessUnit    float64 // revenue that maps to full financial readiness
	LoanPerHectare   float64 // max loan contribution per hectare
	RevenueLoanShare float64 // max loan as a share of annual revenue
	RecommendFactor  float64 // recommended loan as a share of the max
	LowRiskFloor     int     // score must be strictly above this for low risk
	MediumRiskFloor  int     // score must be strictly above this for medium risk
	LowRate          float64
	MediumRate       float64
	HighRate         float64
	MpesaMaxBonus    int // bounded score adjustment from mobile-money signals
}

// DefaultHeuristicConfig returns the production calibration.
func DefaultHeuristicConfig() HeuristicConfig {
	return HeuristicConfig{
		BaseScore:        80,
		ExperienceWeight: 2,
		RevenueBonus:     10,
		ScoreCap:         95,
		ReadinessUnit:    10000,
		LoanPerHectare:   800,
		RevenueLoanShare: 0.6,
		RecommendFactor:  0.7,
		LowRiskFloor:     80,
		MediumRiskFloor:  60,
		LowRate:          6.5,
		MediumRate:       8.5,
		HighRate:         12.0,
		MpesaMaxBonus:    5,
	}
}

// HeuristicScorer is the deterministic, always-available credit scorer.
// Pure computation, no I/O; safe for concurrent use.
type HeuristicScorer struct {
	cfg    HeuristicConfig
	logger *logger.Logger
}

// NewHeuristicScorer creates a new heuristic scorer
func NewHeuristicScorer(cfg HeuristicConfig, log *logger.Logger) *HeuristicScorer {
	return &HeuristicScorer{
		cfg:    cfg,
		logger: log,
	}
}

// Analyze produces a credit analysis from the normalized input.
// Never returns an error.
func (s *HeuristicScorer) Analyze(ctx context.Context, input contracts.FarmerAssessmentInput) (*contracts.CreditAnalysis, error) {
	cfg := s.cfg
	revenue := input.FinancialData.AnnualRevenue
	farmSize := input.FarmData.FarmSizeHectares

	score := cfg.BaseScore + cfg.ExperienceWeight*input.FarmData.YearsExperience
	if revenue > 0 {
		score += cfg.RevenueBonus
	}
	if input.Mpesa != nil {
		score += transactionBonus(input.Mpesa, cfg.MpesaMaxBonus)
	}
	if score > cfg.ScoreCap {
		score = cfg.ScoreCap
	}

	readiness := int(math.Floor(revenue / cfg.ReadinessUnit * 10))
	if readiness > 10 {
		readiness = 10
	}

	maxLoan := math.Min(farmSize*cfg.LoanPerHectare, revenue*cfg.RevenueLoanShare)
	recommended := maxLoan * cfg.RecommendFactor

	analysis := &contracts.CreditAnalysis{
		CreditScore:           score,
		LoanEligibility:       s.eligibility(score),
		RecommendedLoanAmount: recommended,
		MaxLoanAmount:         maxLoan,
		RiskLevel:             s.riskLevel(score),
		Strengths:             s.strengths(input),
		Weaknesses:            s.weaknesses(input),
		Recommendations:       s.recommendations(),
		FinancialReadiness:    readiness,
		InterestRate:          s.interestRate(score),
		AnalysisDate:          time.Now(),
		IsMockData:            true,
	}

	if s.logger != nil {
		s.logger.WithFields(map[string]interface{}{
			"score":      score,
			"risk":       analysis.RiskLevel,
			"max_loan":   maxLoan,
			"readiness":  readiness,
			"has_mpesa":  input.Mpesa != nil,
			"experience": input.FarmData.YearsExperience,
		}).Debug("Heuristic credit analysis computed")
	}

	return analysis, nil
}

func (s *HeuristicScorer) eligibility(score int) contracts.Eligibility {
	if score > s.cfg.MediumRiskFloor {
		return contracts.EligibilityEligible
	}
	return contracts.EligibilityRequiresReview
}

// riskLevel tiers on strict inequalities: a score of exactly 80 is medium.
func (s *HeuristicScorer) riskLevel(score int) contracts.RiskLevel {
	switch {
	case score > s.cfg.LowRiskFloor:
		return contracts.RiskLow
	case score > s.cfg.MediumRiskFloor:
		return contracts.RiskMedium
	default:
		return contracts.RiskHigh
	}
}

func (s *HeuristicScorer) interestRate(score int) float64 {
	switch {
	case score > s.cfg.LowRiskFloor:
		return s.cfg.LowRate
	case score > s.cfg.MediumRiskFloor:
		return s.cfg.MediumRate
	default:
		return s.cfg.HighRate
	}
}

func (s *HeuristicScorer) strengths(input contracts.FarmerAssessmentInput) []string {
	strengths := []string{
		"Agricultural experience",
		"Stable farming operation",
	}
	if input.FinancialData.AnnualRevenue > 0 {
		strengths = append(strengths, "Existing revenue stream")
	} else {
		strengths = append(strengths, "Potential for growth")
	}

	if m := input.Mpesa; m != nil {
		if m.TotalInflows > 0 {
			strengths = append(strengths, "Mobile money inflow indicates business activity")
		}
		if m.NetFlow() > 0 {
			strengths = append(strengths, "Positive cash flow trend")
		}
	}

	return strengths
}

func (s *HeuristicScorer) weaknesses(input contracts.FarmerAssessmentInput) []string {
	var weaknesses []string
	if input.FinancialData.AnnualRevenue == 0 {
		weaknesses = append(weaknesses, "No established revenue")
	} else {
		weaknesses = append(weaknesses, "Limited financial history")
	}
	weaknesses = append(weaknesses, "Dependent on seasonal factors")

	if m := input.Mpesa; m != nil {
		if m.TotalInflows == 0 {
			weaknesses = append(weaknesses, "No mobile money inflow data")
		}
		if m.NetFlow() <= 0 {
			weaknesses = append(weaknesses, "Non-positive net cash flow")
		}
	}

	return weaknesses
}

func (s *HeuristicScorer) recommendations() []string {
	return []string{
		"Maintain consistent production records",
		"Diversify crop selection",
		"Build relationship with local markets",
	}
}
