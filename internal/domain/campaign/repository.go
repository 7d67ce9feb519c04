package campaign

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const campaignColumns = `
	id, partner_id, name, target_url, image_url, placement,
	billing_model, cost_per_click, cost_per_impression,
	budget, uncapped_budget, daily_budget,
	spent, daily_spent, last_spent_reset,
	is_active, clicks, impressions, created_at, updated_at`

// Repository handles campaign database operations
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new campaign repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new campaign
func (r *Repository) Create(ctx context.Context, c *Campaign) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO campaigns (
			id, partner_id, name, target_url, image_url, placement,
			billing_model, cost_per_click, cost_per_impression,
			budget, uncapped_budget, daily_budget,
			spent, daily_spent, last_spent_reset, is_active,
			clicks, impressions, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			0, 0, $13, TRUE, 0, 0, $14, $15
		)
	`,
		c.ID, c.PartnerID, c.Name, c.TargetURL, c.ImageURL, c.Placement,
		c.BillingModel, c.CostPerClick, c.CostPerImpression,
		c.Budget, c.UncappedBudget, c.DailyBudget,
		c.LastSpentReset, c.CreatedAt, c.UpdatedAt,
	)
	return err
}

// GetByID returns a campaign by ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Campaign, error) {
	var c Campaign
	err := r.db.GetContext(ctx, &c, `SELECT `+campaignColumns+` FROM campaigns WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCampaignNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetByPartnerID returns all campaigns owned by a partner
func (r *Repository) GetByPartnerID(ctx context.Context, partnerID uuid.UUID) ([]Campaign, error) {
	var campaigns []Campaign
	err := r.db.SelectContext(ctx, &campaigns, `
		SELECT `+campaignColumns+`
		FROM campaigns
		WHERE partner_id = $1
		ORDER BY created_at DESC
	`, partnerID)
	return campaigns, err
}

// Update persists the editable campaign fields
func (r *Repository) Update(ctx context.Context, c *Campaign) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE campaigns SET
			name = $2, target_url = $3, image_url = $4, placement = $5,
			cost_per_click = $6, cost_per_impression = $7,
			budget = $8, uncapped_budget = $9, daily_budget = $10,
			updated_at = now()
		WHERE id = $1
	`,
		c.ID, c.Name, c.TargetURL, c.ImageURL, c.Placement,
		c.CostPerClick, c.CostPerImpression,
		c.Budget, c.UncappedBudget, c.DailyBudget,
	)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrCampaignNotFound
	}
	return nil
}

// SetActive flips the campaign's active flag. Deactivation by the spend
// accumulator is one-way; this is the external reactivation path.
func (r *Repository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE campaigns SET is_active = $2, updated_at = now() WHERE id = $1
	`, id, active)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrCampaignNotFound
	}
	return nil
}

// EventParams describes one click or impression to record
type EventParams struct {
	CampaignID  uuid.UUID
	Event       EventType
	TrackingID  string
	IsAnonymous bool
	Placement   string
	Now         time.Time
}

// EventResult reports what recording an event did
type EventResult struct {
	Duplicate bool // duplicate-day impression, fully suppressed
	TargetURL string
	Update    SpendUpdate
}

// RecordEvent applies one click or impression to a campaign inside a
// single transaction. The campaign row is locked for the read-modify-write
// so concurrent events cannot clobber each other's spend, and the clamp
// decision always sees a fresh value. A duplicate-day impression touches
// nothing at all, the raw impression counter included.
func (r *Repository) RecordEvent(ctx context.Context, params EventParams) (*EventResult, error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	impressionDate := params.Now.UTC().Format("2006-01-02")

	if params.Event == EventImpression {
		result, err := tx.ExecContext(ctx, `
			INSERT INTO ad_impressions (campaign_id, tracking_id, is_anonymous, placement, impression_date)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (campaign_id, tracking_id, impression_date) DO NOTHING
		`, params.CampaignID, params.TrackingID, params.IsAnonymous, params.Placement, impressionDate)
		if err != nil {
			return nil, err
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return &EventResult{Duplicate: true}, nil
		}
	}

	var c Campaign
	err = tx.GetContext(ctx, &c, `SELECT `+campaignColumns+` FROM campaigns WHERE id = $1 FOR UPDATE`, params.CampaignID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCampaignNotFound
	}
	if err != nil {
		return nil, err
	}

	update := applySpend(&c, params.Event, params.Now)

	clickInc, impressionInc := 0, 0
	if params.Event == EventClick {
		clickInc = 1
	} else {
		impressionInc = 1
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE campaigns SET
			spent = $2,
			daily_spent = $3,
			last_spent_reset = CASE WHEN $4 THEN $5 ELSE last_spent_reset END,
			is_active = CASE WHEN $6 THEN FALSE ELSE is_active END,
			clicks = clicks + $7,
			impressions = impressions + $8,
			updated_at = now()
		WHERE id = $1
	`,
		c.ID, update.Spent, update.DailySpent,
		update.DayRolledOver, params.Now,
		update.Deactivate, clickInc, impressionInc,
	); err != nil {
		return nil, err
	}

	if params.Event == EventClick {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO ad_clicks (campaign_id, tracking_id, is_anonymous, placement)
			VALUES ($1, $2, $3, $4)
		`, params.CampaignID, params.TrackingID, params.IsAnonymous, params.Placement); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &EventResult{TargetURL: c.TargetURL, Update: update}, nil
}

// GetBillableByPartner returns all of the partner's campaigns so the
// ledger snapshot covers zero-spend ones too. A tracking event landing
// between this read and the post-charge reset is absorbed into the next
// cycle.
func (r *Repository) GetBillableByPartner(ctx context.Context, partnerID uuid.UUID) ([]Campaign, error) {
	var campaigns []Campaign
	err := r.db.SelectContext(ctx, &campaigns, `
		SELECT `+campaignColumns+`
		FROM campaigns
		WHERE partner_id = $1
		ORDER BY created_at
	`, partnerID)
	return campaigns, err
}

// ResetSpend zeroes the spend counters after a successful settlement
// charge. Raw click and impression counters are lifetime stats and are
// not touched.
func (r *Repository) ResetSpend(ctx context.Context, ids []uuid.UUID, now time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`
		UPDATE campaigns SET
			spent = 0,
			daily_spent = 0,
			last_spent_reset = ?,
			updated_at = now()
		WHERE id IN (?)
	`, now, ids)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	return err
}

// ListActive returns active campaigns for a placement, used by the ad
// render endpoint
func (r *Repository) ListActive(ctx context.Context, placement string, limit int) ([]Campaign, error) {
	if limit <= 0 {
		limit = 10
	}
	var campaigns []Campaign
	err := r.db.SelectContext(ctx, &campaigns, `
		SELECT `+campaignColumns+`
		FROM campaigns
		WHERE is_active = TRUE AND placement = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, placement, limit)
	return campaigns, err
}
