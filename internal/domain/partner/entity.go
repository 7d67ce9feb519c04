package partner

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Partner is an advertiser account attached to a user. Payment details
// stay with the processor; only opaque handles are stored here.
type Partner struct {
	ID     uuid.UUID `db:"id"`
	UserID uuid.UUID `db:"user_id"`

	CompanyName  string `db:"company_name"`
	ContactEmail string `db:"contact_email"`

	IsActive             bool           `db:"is_active"`
	BillingSetupComplete bool           `db:"billing_setup_complete"`
	StripeCustomerID     sql.NullString `db:"stripe_customer_id"`
	PaymentMethodID      sql.NullString `db:"payment_method_id"`
	Currency             string         `db:"currency"`

	TotalSpentAllTime int64        `db:"total_spent_all_time"`
	LastBilledAt      sql.NullTime `db:"last_billed_at"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// CanBeBilled reports whether the settlement engine should consider
// this partner at all
func (p *Partner) CanBeBilled() bool {
	return p.IsActive && p.BillingSetupComplete
}

// HasPaymentMethod reports whether a charge can actually be attempted
func (p *Partner) HasPaymentMethod() bool {
	return p.StripeCustomerID.Valid && p.StripeCustomerID.String != "" &&
		p.PaymentMethodID.Valid && p.PaymentMethodID.String != ""
}
