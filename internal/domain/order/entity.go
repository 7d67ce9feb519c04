package order

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Status is an order's lifecycle state. Checkout holds the funds with a
// manual-capture authorization; capture happens at fulfillment.
type Status string

const (
	StatusPending    Status = "pending"
	StatusAuthorized Status = "authorized"
	StatusPaid       Status = "paid"
	StatusCancelled  Status = "cancelled"
)

// Order is a buyer's purchase of one artwork. Amounts are integer cents.
type Order struct {
	ID        uuid.UUID `db:"id"`
	BuyerID   uuid.UUID `db:"buyer_id"`
	ArtworkID uuid.UUID `db:"artwork_id"`

	AmountCents     int64          `db:"amount_cents"`
	Currency        string         `db:"currency"`
	Status          Status         `db:"status"`
	PaymentIntentID sql.NullString `db:"payment_intent_id"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
