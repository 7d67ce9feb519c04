package partner

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const partnerColumns = `
	id, user_id, company_name, contact_email,
	is_active, billing_setup_complete,
	stripe_customer_id, payment_method_id, currency,
	total_spent_all_time, last_billed_at, created_at, updated_at`

// Repository handles partner database operations
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new partner repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new partner account
func (r *Repository) Create(ctx context.Context, p *Partner) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO partners (
			id, user_id, company_name, contact_email,
			is_active, billing_setup_complete, currency,
			total_spent_all_time, created_at, updated_at
		) VALUES ($1, $2, $3, $4, TRUE, FALSE, $5, 0, $6, $7)
	`, p.ID, p.UserID, p.CompanyName, p.ContactEmail, p.Currency, p.CreatedAt, p.UpdatedAt)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrPartnerExists
	}
	return err
}

// GetByID returns a partner by ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Partner, error) {
	var p Partner
	err := r.db.GetContext(ctx, &p, `SELECT `+partnerColumns+` FROM partners WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPartnerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByUserID returns the partner account owned by a user
func (r *Repository) GetByUserID(ctx context.Context, userID uuid.UUID) (*Partner, error) {
	var p Partner
	err := r.db.GetContext(ctx, &p, `SELECT `+partnerColumns+` FROM partners WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPartnerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// PartnerIDByUserID resolves a user to their partner account id
func (r *Repository) PartnerIDByUserID(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.db.GetContext(ctx, &id, `SELECT id FROM partners WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, ErrPartnerNotFound
	}
	return id, err
}

// ListBillable returns active partners with completed billing setup,
// the population the settlement engine walks each cycle
func (r *Repository) ListBillable(ctx context.Context) ([]Partner, error) {
	var partners []Partner
	err := r.db.SelectContext(ctx, &partners, `
		SELECT `+partnerColumns+`
		FROM partners
		WHERE is_active = TRUE AND billing_setup_complete = TRUE
		ORDER BY created_at
	`)
	return partners, err
}

// SetBilling stores the processor handles and marks setup complete
func (r *Repository) SetBilling(ctx context.Context, id uuid.UUID, customerID, paymentMethodID string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE partners SET
			stripe_customer_id = $2,
			payment_method_id = $3,
			billing_setup_complete = TRUE,
			updated_at = now()
		WHERE id = $1
	`, id, customerID, paymentMethodID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrPartnerNotFound
	}
	return nil
}

// UpdateAfterCharge records a successful settlement on the partner row
func (r *Repository) UpdateAfterCharge(ctx context.Context, id uuid.UUID, amount int64, billedAt time.Time) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE partners SET
			total_spent_all_time = total_spent_all_time + $2,
			last_billed_at = $3,
			updated_at = now()
		WHERE id = $1
	`, id, amount, billedAt)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrPartnerNotFound
	}
	return nil
}

// SetActive flips the partner's active flag
func (r *Repository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE partners SET is_active = $2, updated_at = now() WHERE id = $1
	`, id, active)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrPartnerNotFound
	}
	return nil
}
