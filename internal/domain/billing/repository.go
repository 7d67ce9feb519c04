package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const recordColumns = `
	id, partner_id, amount, currency, status, payment_reference_id,
	billing_period_start, billing_period_end, campaign_breakdown,
	failure_reason, created_at`

// Repository handles the settlement ledger
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new billing ledger repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Insert appends a ledger record. Records are append-only; settlement
// state lives on partners and campaigns, the ledger is the audit trail.
func (r *Repository) Insert(ctx context.Context, rec *Record) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO billing_records (
			id, partner_id, amount, currency, status, payment_reference_id,
			billing_period_start, billing_period_end, campaign_breakdown,
			failure_reason, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		rec.ID, rec.PartnerID, rec.Amount, rec.Currency, rec.Status,
		rec.PaymentReferenceID, rec.BillingPeriodStart, rec.BillingPeriodEnd,
		rec.CampaignBreakdown, rec.FailureReason, rec.CreatedAt,
	)
	return err
}

// ListByPartner returns a partner's settlement history, newest first
func (r *Repository) ListByPartner(ctx context.Context, partnerID uuid.UUID, limit int) ([]Record, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var records []Record
	err := r.db.SelectContext(ctx, &records, `
		SELECT `+recordColumns+`
		FROM billing_records
		WHERE partner_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, partnerID, limit)
	return records, err
}
