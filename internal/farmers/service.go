package farmers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sproutsell/agricredit/internal/contracts"
	"github.com/sproutsell/agricredit/internal/scoring"
	"github.com/sproutsell/agricredit/pkg/logger"
)

const RoleFarmer = "farmer"

var (
	// ErrInvalidInput signals caller-level validation failure.
	ErrInvalidInput = errors.New("invalid registration input")
	// ErrEmailTaken signals a duplicate registration.
	ErrEmailTaken = errors.New("email already registered")
)

// FarmerRepository is the persistence surface the service needs.
type FarmerRepository interface {
	Create(ctx context.Context, farmer *Farmer) error
	GetByID(ctx context.Context, id string) (*Farmer, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

// ScoringPipeline runs a credit analysis for a newly registered farmer.
type ScoringPipeline interface {
	Score(ctx context.Context, userID string, raw scoring.RawAssessment) (*contracts.CreditAnalysis, error)
}

// Service handles farmer registration and lookup.
type Service struct {
	repo     FarmerRepository
	pipeline ScoringPipeline
	logger   *logger.Logger
}

// NewService creates the farmers service. pipeline may be nil; new
// farmers then start without an analysis.
func NewService(repo FarmerRepository, pipeline ScoringPipeline, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		pipeline: pipeline,
		logger:   log,
	}
}

// RegisterInput is a registration submission. The assessment sections are
// optional; when present on a farmer account they seed the first credit
// analysis.
type RegisterInput struct {
	Name       string                `json:"name"`
	Email      string                `json:"email"`
	Phone      string                `json:"phone"`
	Role       string                `json:"role"`
	Region     string                `json:"region"`
	Country    string                `json:"country"`
	Assessment scoring.RawAssessment `json:"assessment"`
}

// Register creates the account and, for farmers that supplied farm data,
// runs the scoring pipeline so the profile carries an analysis from day
// one. Scoring failure does not fail registration.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*Farmer, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))

	if input.Name == "" || input.Email == "" {
		return nil, fmt.Errorf("%w: name and email are required", ErrInvalidInput)
	}

	taken, err := s.repo.EmailExists(ctx, input.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return nil, ErrEmailTaken
	}

	role := input.Role
	if role == "" {
		role = RoleFarmer
	}

	farmer := &Farmer{
		Name:    input.Name,
		Email:   input.Email,
		Phone:   strings.TrimSpace(input.Phone),
		Role:    role,
		Region:  input.Region,
		Country: input.Country,
	}

	if err := s.repo.Create(ctx, farmer); err != nil {
		return nil, err
	}

	if s.pipeline != nil && role == RoleFarmer && hasAssessment(input.Assessment) {
		if _, err := s.pipeline.Score(ctx, farmer.ID, input.Assessment); err != nil {
			s.logger.WithError(err).WithField("user_id", farmer.ID).Warn("Initial credit analysis failed at registration")
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id": farmer.ID,
		"role":    farmer.Role,
	}).Info("Farmer registered")

	return farmer, nil
}

// Get retrieves a farmer by id.
func (s *Service) Get(ctx context.Context, id string) (*Farmer, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", ErrInvalidInput)
	}
	return s.repo.GetByID(ctx, id)
}

func hasAssessment(raw scoring.RawAssessment) bool {
	return raw.FarmData != nil || raw.FinancialData != nil || raw.Mpesa != nil
}
