package billing

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Record status values. A skipped partner produces no record at all.
const (
	StatusPaid   = "paid"
	StatusFailed = "failed"
)

// CampaignCharge is one line of a settlement breakdown, snapshotted at
// charge time so the ledger stays meaningful after campaigns change.
type CampaignCharge struct {
	CampaignID  uuid.UUID `json:"campaign_id"`
	Name        string    `json:"name"`
	Spent       int64     `json:"spent"`
	Impressions int64     `json:"impressions"`
	Clicks      int64     `json:"clicks"`
}

// Breakdown is the JSONB campaign snapshot column
type Breakdown []CampaignCharge

// Value implements driver.Valuer
func (b Breakdown) Value() (driver.Value, error) {
	if b == nil {
		return "[]", nil
	}
	return json.Marshal(b)
}

// Scan implements sql.Scanner
func (b *Breakdown) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, b)
	case string:
		return json.Unmarshal([]byte(v), b)
	case nil:
		*b = nil
		return nil
	}
	return errors.New("billing: unsupported breakdown source")
}

// Record is one settlement ledger entry. Amounts are integer cents.
type Record struct {
	ID                 uuid.UUID      `db:"id"`
	PartnerID          uuid.UUID      `db:"partner_id"`
	Amount             int64          `db:"amount"`
	Currency           string         `db:"currency"`
	Status             string         `db:"status"`
	PaymentReferenceID sql.NullString `db:"payment_reference_id"`
	BillingPeriodStart time.Time      `db:"billing_period_start"`
	BillingPeriodEnd   time.Time      `db:"billing_period_end"`
	CampaignBreakdown  Breakdown      `db:"campaign_breakdown"`
	FailureReason      sql.NullString `db:"failure_reason"`
	CreatedAt          time.Time      `db:"created_at"`
}
