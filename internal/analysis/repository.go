package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sproutsell/agricredit/internal/contracts"
)

// ErrNotFound signals that no persisted row exists for the user.
var ErrNotFound = errors.New("profile not found")

// Repository persists assessments and computed analyses. The cache is the
// read path; this is the durable record and the input for recomputation.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository instance
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// SaveAssessment upserts the raw assessment input for a user.
func (r *Repository) SaveAssessment(ctx context.Context, userID string, input contracts.FarmerAssessmentInput) error {
	assessmentJSON, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("marshal assessment: %w", err)
	}

	query := `
		INSERT INTO credit.farmer_profiles (
			user_id,
			assessment,
			updated_at
		) VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			assessment = EXCLUDED.assessment,
			updated_at = NOW()
	`

	if _, err := r.db.Exec(ctx, query, userID, assessmentJSON); err != nil {
		return fmt.Errorf("upsert assessment: %w", err)
	}

	return nil
}

// SaveAnalysis upserts the computed analysis for a user.
func (r *Repository) SaveAnalysis(ctx context.Context, userID string, analysis *contracts.CreditAnalysis) error {
	analysisJSON, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}

	query := `
		INSERT INTO credit.farmer_profiles (
			user_id,
			analysis,
			credit_score,
			analysis_date,
			updated_at
		) VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			analysis = EXCLUDED.analysis,
			credit_score = EXCLUDED.credit_score,
			analysis_date = EXCLUDED.analysis_date,
			updated_at = NOW()
	`

	if _, err := r.db.Exec(ctx, query, userID, analysisJSON, analysis.CreditScore, analysis.AnalysisDate); err != nil {
		return fmt.Errorf("upsert analysis: %w", err)
	}

	return nil
}

// GetAssessment retrieves the persisted assessment input for a user.
func (r *Repository) GetAssessment(ctx context.Context, userID string) (contracts.FarmerAssessmentInput, error) {
	var input contracts.FarmerAssessmentInput

	query := `
		SELECT assessment
		FROM credit.farmer_profiles
		WHERE user_id = $1 AND assessment IS NOT NULL
	`

	var assessmentJSON []byte
	err := r.db.QueryRow(ctx, query, userID).Scan(&assessmentJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return input, ErrNotFound
	}
	if err != nil {
		return input, fmt.Errorf("query assessment: %w", err)
	}

	if err := json.Unmarshal(assessmentJSON, &input); err != nil {
		return input, fmt.Errorf("unmarshal assessment: %w", err)
	}

	return input, nil
}

// GetAnalysis retrieves the persisted analysis for a user.
func (r *Repository) GetAnalysis(ctx context.Context, userID string) (*contracts.CreditAnalysis, error) {
	query := `
		SELECT analysis
		FROM credit.farmer_profiles
		WHERE user_id = $1 AND analysis IS NOT NULL
	`

	var analysisJSON []byte
	err := r.db.QueryRow(ctx, query, userID).Scan(&analysisJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query analysis: %w", err)
	}

	var analysis contracts.CreditAnalysis
	if err := json.Unmarshal(analysisJSON, &analysis); err != nil {
		return nil, fmt.Errorf("unmarshal analysis: %w", err)
	}

	return &analysis, nil
}

// ListStale returns user IDs whose analysis is older than maxAge and that
// still have an assessment on file to recompute from.
func (r *Repository) ListStale(ctx context.Context, maxAge time.Duration, limit int) ([]string, error) {
	query := `
		SELECT user_id
		FROM credit.farmer_profiles
		WHERE assessment IS NOT NULL
		  AND (analysis_date IS NULL OR analysis_date < $1)
		ORDER BY analysis_date ASC NULLS FIRST
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, time.Now().Add(-maxAge), limit)
	if err != nil {
		return nil, fmt.Errorf("query stale profiles: %w", err)
	}
	defer rows.Close()

	var userIDs []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		userIDs = append(userIDs, userID)
	}

	return userIDs, rows.Err()
}
