package loans

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ApplicationStatus tracks a loan application through review.
type ApplicationStatus string

const (
	StatusUnderReview ApplicationStatus = "under_review"
	StatusApproved    ApplicationStatus = "approved"
	StatusRejected    ApplicationStatus = "rejected"
)

// Application is a submitted loan application. CreditScore and
// InterestRate snapshot the analysis at submission time; later
// recomputation does not rewrite history.
type Application struct {
	ID             string            `json:"id"`
	UserID         string            `json:"userId"`
	LoanAmount     float64           `json:"loanAmount"`
	Purpose        string            `json:"purpose"`
	DurationMonths int               `json:"durationMonths"`
	Collateral     string            `json:"collateral"`
	Status         ApplicationStatus `json:"status"`
	CreditScore    int               `json:"creditScore"`
	InterestRate   float64           `json:"interestRate"`
	CreatedAt      time.Time         `json:"createdAt"`
}

// Repository persists loan applications.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository instance
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create inserts a new application, assigning its id and timestamp.
func (r *Repository) Create(ctx context.Context, app *Application) error {
	app.ID = uuid.NewString()
	app.CreatedAt = time.Now()

	query := `
		INSERT INTO credit.loan_applications (
			id,
			user_id,
			loan_amount,
			purpose,
			duration_months,
			collateral,
			status,
			credit_score,
			interest_rate,
			created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Exec(ctx, query,
		app.ID,
		app.UserID,
		app.LoanAmount,
		app.Purpose,
		app.DurationMonths,
		app.Collateral,
		app.Status,
		app.CreditScore,
		app.InterestRate,
		app.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert loan application: %w", err)
	}

	return nil
}

// ListByUser returns a user's applications, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]Application, error) {
	query := `
		SELECT
			id,
			user_id,
			loan_amount,
			purpose,
			duration_months,
			collateral,
			status,
			credit_score,
			interest_rate,
			created_at
		FROM credit.loan_applications
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query loan applications: %w", err)
	}
	defer rows.Close()

	apps := []Application{}
	for rows.Next() {
		var app Application
		if err := rows.Scan(
			&app.ID,
			&app.UserID,
			&app.LoanAmount,
			&app.Purpose,
			&app.DurationMonths,
			&app.Collateral,
			&app.Status,
			&app.CreditScore,
			&app.InterestRate,
			&app.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan loan application: %w", err)
		}
		apps = append(apps, app)
	}

	return apps, rows.Err()
}
