package order

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const orderColumns = `
	id, buyer_id, artwork_id, amount_cents, currency, status,
	payment_intent_id, created_at, updated_at`

// Repository handles order database operations
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new order repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new order
func (r *Repository) Create(ctx context.Context, o *Order) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO orders (id, buyer_id, artwork_id, amount_cents, currency, status,
			payment_intent_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, o.ID, o.BuyerID, o.ArtworkID, o.AmountCents, o.Currency, o.Status,
		o.PaymentIntentID, o.CreatedAt, o.UpdatedAt)
	return err
}

// GetByID returns an order by ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	var o Order
	err := r.db.GetContext(ctx, &o, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// ListByBuyer returns a buyer's orders, newest first
func (r *Repository) ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]Order, error) {
	var orders []Order
	err := r.db.SelectContext(ctx, &orders, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE buyer_id = $1
		ORDER BY created_at DESC
	`, buyerID)
	return orders, err
}

// SetStatus transitions an order, optionally recording the payment
// intent id
func (r *Repository) SetStatus(ctx context.Context, id uuid.UUID, status Status, paymentIntentID string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE orders SET
			status = $2,
			payment_intent_id = CASE WHEN $3 <> '' THEN $3 ELSE payment_intent_id END,
			updated_at = now()
		WHERE id = $1
	`, id, status, paymentIntentID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrOrderNotFound
	}
	return nil
}
