package loans

import (
	"context"
	"errors"
	"fmt"

	"github.com/sproutsell/agricredit/internal/analysis"
	"github.com/sproutsell/agricredit/internal/contracts"
	"github.com/sproutsell/agricredit/internal/metrics"
	"github.com/sproutsell/agricredit/pkg/logger"
)

// ErrInvalidRequest signals caller-level validation failure.
var ErrInvalidRequest = errors.New("invalid loan request")

// NotEligibleError carries the gate's decision when an application is
// rejected, so the caller can surface reason and conditions.
type NotEligibleError struct {
	Decision contracts.EligibilityDecision
}

func (e *NotEligibleError) Error() string {
	return "loan application not eligible: " + e.Decision.Reason
}

// AnalysisProvider supplies the current credit analysis for a user.
// The analysis pipeline service satisfies it.
type AnalysisProvider interface {
	Get(ctx context.Context, userID string) (*contracts.CreditAnalysis, error)
}

// ApplicationRepository persists applications. *Repository satisfies it.
type ApplicationRepository interface {
	Create(ctx context.Context, app *Application) error
	ListByUser(ctx context.Context, userID string) ([]Application, error)
}

// Messenger delivers confirmation messages. May be nil.
type Messenger interface {
	Send(ctx context.Context, to []string, message string) error
}

// PhoneDirectory resolves a user's phone number for notifications.
type PhoneDirectory interface {
	Phone(ctx context.Context, userID string) (string, error)
}

// Service runs loan eligibility checks and application intake.
type Service struct {
	analyses  AnalysisProvider
	apps      ApplicationRepository
	messenger Messenger
	directory PhoneDirectory
	logger    *logger.Logger
}

// NewService creates the loans service. messenger and directory may be
// nil; confirmations are then skipped.
func NewService(analyses AnalysisProvider, apps ApplicationRepository, messenger Messenger, directory PhoneDirectory, log *logger.Logger) *Service {
	return &Service{
		analyses:  analyses,
		apps:      apps,
		messenger: messenger,
		directory: directory,
		logger:    log,
	}
}

// EligibilityResult pairs the gate decision with the supporting analysis
// figures the caller displays alongside it.
type EligibilityResult struct {
	Eligible          bool                      `json:"eligible"`
	Reason            string                    `json:"reason"`
	Conditions        []string                  `json:"conditions"`
	CreditAnalysis    *contracts.CreditAnalysis `json:"creditAnalysis"`
	RecommendedAmount float64                   `json:"recommendedAmount"`
	MaxAmount         float64                   `json:"maxAmount"`
	InterestRate      float64                   `json:"interestRate"`
}

// Eligibility loads the user's analysis and runs the gate for the
// requested amount and purpose.
func (s *Service) Eligibility(ctx context.Context, userID string, requestedAmount float64, purpose string) (*EligibilityResult, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidRequest)
	}

	creditAnalysis, err := s.analyses.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	decision := EvaluateEligibility(creditAnalysis, requestedAmount, purpose)
	s.countDecision(decision)

	return &EligibilityResult{
		Eligible:          decision.Eligible,
		Reason:            decision.Reason,
		Conditions:        decision.Conditions,
		CreditAnalysis:    creditAnalysis,
		RecommendedAmount: creditAnalysis.RecommendedLoanAmount,
		MaxAmount:         creditAnalysis.MaxLoanAmount,
		InterestRate:      creditAnalysis.InterestRate,
	}, nil
}

// ApplyInput is a loan application submission.
type ApplyInput struct {
	UserID         string  `json:"userId"`
	LoanAmount     float64 `json:"loanAmount"`
	Purpose        string  `json:"purpose"`
	DurationMonths int     `json:"duration"`
	Collateral     string  `json:"collateral"`
}

// Apply validates the submission, runs the gate, and records the
// application when eligible. Returns *NotEligibleError on rejection.
func (s *Service) Apply(ctx context.Context, input ApplyInput) (*Application, contracts.EligibilityDecision, error) {
	var decision contracts.EligibilityDecision

	if input.UserID == "" || input.LoanAmount <= 0 || input.Purpose == "" {
		return nil, decision, fmt.Errorf("%w: user id, loan amount, and purpose are required", ErrInvalidRequest)
	}

	creditAnalysis, err := s.analyses.Get(ctx, input.UserID)
	if err != nil {
		return nil, decision, err
	}

	decision = EvaluateEligibility(creditAnalysis, input.LoanAmount, input.Purpose)
	s.countDecision(decision)

	if !decision.Eligible {
		return nil, decision, &NotEligibleError{Decision: decision}
	}

	duration := input.DurationMonths
	if duration <= 0 {
		duration = 12
	}

	app := &Application{
		UserID:         input.UserID,
		LoanAmount:     input.LoanAmount,
		Purpose:        input.Purpose,
		DurationMonths: duration,
		Collateral:     input.Collateral,
		Status:         StatusUnderReview,
		CreditScore:    creditAnalysis.CreditScore,
		InterestRate:   creditAnalysis.InterestRate,
	}

	if err := s.apps.Create(ctx, app); err != nil {
		return nil, decision, fmt.Errorf("record application: %w", err)
	}

	s.sendConfirmation(ctx, app)

	s.logger.WithFields(map[string]interface{}{
		"user_id":     app.UserID,
		"application": app.ID,
		"amount":      app.LoanAmount,
		"score":       app.CreditScore,
	}).Info("Loan application recorded")

	return app, decision, nil
}

// DashboardData summarizes a farmer's financial standing.
type DashboardData struct {
	CreditAnalysis *contracts.CreditAnalysis `json:"creditAnalysis"`
	Applications   []Application             `json:"loanApplications"`
	ActiveLoans    int                       `json:"activeLoans"`
}

// Dashboard assembles the financial overview for a user. A missing
// analysis is not an error; the section is simply absent.
func (s *Service) Dashboard(ctx context.Context, userID string) (*DashboardData, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidRequest)
	}

	data := &DashboardData{}

	creditAnalysis, err := s.analyses.Get(ctx, userID)
	if err != nil && !errors.Is(err, analysis.ErrNotFound) {
		return nil, err
	}
	data.CreditAnalysis = creditAnalysis

	apps, err := s.apps.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	data.Applications = apps

	for _, app := range apps {
		if app.Status == StatusApproved {
			data.ActiveLoans++
		}
	}

	return data, nil
}

func (s *Service) countDecision(decision contracts.EligibilityDecision) {
	outcome := "ineligible"
	if decision.Eligible {
		outcome = "eligible"
	}
	metrics.GateDecisions.WithLabelValues(outcome).Inc()
}

// sendConfirmation is best-effort: failures are logged, never returned.
func (s *Service) sendConfirmation(ctx context.Context, app *Application) {
	if s.messenger == nil || s.directory == nil {
		return
	}

	phone, err := s.directory.Phone(ctx, app.UserID)
	if err != nil || phone == "" {
		return
	}

	message := fmt.Sprintf("Your loan application for $%.2f has been received and is under review. Reference: %s", app.LoanAmount, app.ID)
	if err := s.messenger.Send(ctx, []string{phone}, message); err != nil {
		s.logger.WithError(err).WithField("user_id", app.UserID).Warn("Failed to send application confirmation SMS")
	}
}
