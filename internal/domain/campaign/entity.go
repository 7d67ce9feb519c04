package campaign

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// BillingModel determines which event type a campaign pays for
type BillingModel string

const (
	BillingModelCPC BillingModel = "cpc"
	BillingModelCPM BillingModel = "cpm"
)

// EventType is a billable (or countable) ad event
type EventType string

const (
	EventClick      EventType = "click"
	EventImpression EventType = "impression"
)

// Campaign represents a partner's ad campaign. Monetary amounts are
// integer cents.
type Campaign struct {
	ID        uuid.UUID `db:"id"`
	PartnerID uuid.UUID `db:"partner_id"`

	Name      string         `db:"name"`
	TargetURL string         `db:"target_url"`
	ImageURL  sql.NullString `db:"image_url"`
	Placement string         `db:"placement"`

	BillingModel      BillingModel `db:"billing_model"`
	CostPerClick      int64        `db:"cost_per_click"`
	CostPerImpression int64        `db:"cost_per_impression"`

	Budget         sql.NullInt64 `db:"budget"`
	UncappedBudget bool          `db:"uncapped_budget"`
	DailyBudget    sql.NullInt64 `db:"daily_budget"`

	Spent          int64     `db:"spent"`
	DailySpent     int64     `db:"daily_spent"`
	LastSpentReset time.Time `db:"last_spent_reset"`

	IsActive    bool  `db:"is_active"`
	Clicks      int64 `db:"clicks"`
	Impressions int64 `db:"impressions"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// ImpressionRecord is the per-day dedup log entry for an ad view.
// At most one exists per (campaign, tracking identity, calendar day).
type ImpressionRecord struct {
	ID             int64     `db:"id"`
	CampaignID     uuid.UUID `db:"campaign_id"`
	TrackingID     string    `db:"tracking_id"`
	IsAnonymous    bool      `db:"is_anonymous"`
	Placement      string    `db:"placement"`
	ImpressionDate string    `db:"impression_date"`
	CreatedAt      time.Time `db:"created_at"`
}

// ClickRecord logs a click event. Clicks have no dedup layer; every
// genuine caller invocation is recorded.
type ClickRecord struct {
	ID          int64     `db:"id"`
	CampaignID  uuid.UUID `db:"campaign_id"`
	TrackingID  string    `db:"tracking_id"`
	IsAnonymous bool      `db:"is_anonymous"`
	Placement   string    `db:"placement"`
	CreatedAt   time.Time `db:"created_at"`
}
