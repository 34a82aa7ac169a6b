package farmers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound signals that no farmer row exists for the id.
var ErrNotFound = errors.New("farmer not found")

// Farmer is an account row. Contact and location only; credit data lives
// in the analysis profile keyed by the same id.
type Farmer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role"`
	Region    string    `json:"region,omitempty"`
	Country   string    `json:"country,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Repository persists farmer accounts.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository instance
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create inserts a new farmer, assigning its id and timestamp.
func (r *Repository) Create(ctx context.Context, farmer *Farmer) error {
	farmer.ID = uuid.NewString()
	farmer.CreatedAt = time.Now()

	query := `
		INSERT INTO credit.farmers (
			id,
			name,
			email,
			phone,
			role,
			region,
			country,
			created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(ctx, query,
		farmer.ID,
		farmer.Name,
		farmer.Email,
		farmer.Phone,
		farmer.Role,
		farmer.Region,
		farmer.Country,
		farmer.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert farmer: %w", err)
	}

	return nil
}

// GetByID retrieves a farmer by id.
func (r *Repository) GetByID(ctx context.Context, id string) (*Farmer, error) {
	query := `
		SELECT id, name, email, phone, role, region, country, created_at
		FROM credit.farmers
		WHERE id = $1
	`

	var farmer Farmer
	err := r.db.QueryRow(ctx, query, id).Scan(
		&farmer.ID,
		&farmer.Name,
		&farmer.Email,
		&farmer.Phone,
		&farmer.Role,
		&farmer.Region,
		&farmer.Country,
		&farmer.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query farmer: %w", err)
	}

	return &farmer, nil
}

// EmailExists reports whether an account already uses the email.
func (r *Repository) EmailExists(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM credit.farmers WHERE email = $1)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("query email: %w", err)
	}

	return exists, nil
}

// Phone returns the farmer's phone number, empty when none is on file.
func (r *Repository) Phone(ctx context.Context, id string) (string, error) {
	query := `SELECT phone FROM credit.farmers WHERE id = $1`

	var phone string
	err := r.db.QueryRow(ctx, query, id).Scan(&phone)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query phone: %w", err)
	}

	return phone, nil
}
