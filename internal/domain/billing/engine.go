package billing

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gouache/gouache-api/internal/domain/campaign"
	"github.com/gouache/gouache-api/internal/domain/partner"
	"github.com/gouache/gouache-api/internal/pkg/stripe"
)

// Skip reasons reported in run outcomes. A skipped partner keeps their
// accumulated spend; it rolls into the next cycle.
const (
	SkipNotBillable     = "billing not set up"
	SkipNoPaymentMethod = "no payment method"
	SkipNoCharges       = "no charges"
	SkipBelowMinimum    = "below minimum"
)

// Outcome statuses
const (
	OutcomeCharged = "charged"
	OutcomeFailed  = "failed"
	OutcomeSkipped = "skipped"
)

// PartnerStore is the partner persistence surface the engine needs
type PartnerStore interface {
	ListBillable(ctx context.Context) ([]partner.Partner, error)
	GetByID(ctx context.Context, id uuid.UUID) (*partner.Partner, error)
	UpdateAfterCharge(ctx context.Context, id uuid.UUID, amount int64, billedAt time.Time) error
}

// CampaignStore is the campaign persistence surface the engine needs
type CampaignStore interface {
	GetBillableByPartner(ctx context.Context, partnerID uuid.UUID) ([]campaign.Campaign, error)
	ResetSpend(ctx context.Context, ids []uuid.UUID, now time.Time) error
}

// LedgerStore appends settlement records
type LedgerStore interface {
	Insert(ctx context.Context, rec *Record) error
}

// Charger attempts an off-session charge against a stored payment method
type Charger interface {
	ChargePaymentMethod(ctx context.Context, req stripe.ChargeRequest) (*stripe.PaymentIntent, error)
}

// Notifier queues partner-facing emails; best-effort, may be nil
type Notifier interface {
	Enqueue(to, toName, subject, templateName string, data interface{})
}

// RunOptions narrows or overrides a settlement cycle. PartnerID limits
// the run to one partner; ForceCharge bypasses the zero-total and
// minimum-amount skips.
type RunOptions struct {
	PartnerID   *uuid.UUID
	ForceCharge bool
}

// PartnerOutcome is the per-partner result of one cycle
type PartnerOutcome struct {
	PartnerID   uuid.UUID `json:"partner_id"`
	CompanyName string    `json:"company_name"`
	Status      string    `json:"status"`
	Reason      string    `json:"reason,omitempty"`
	AmountCents int64     `json:"amount_cents"`
	Reference   string    `json:"reference,omitempty"`
}

// RunResult summarizes one settlement cycle
type RunResult struct {
	Period   Period           `json:"period"`
	Partners []PartnerOutcome `json:"partners"`
	Charged  int              `json:"charged"`
	Failed   int              `json:"failed"`
	Skipped  int              `json:"skipped"`
}

// Engine runs periodic settlement: it walks billable partners, charges
// each one's accumulated campaign spend, and records the outcome in the
// ledger. Partners are isolated; one failure never aborts the cycle.
type Engine struct {
	partners  PartnerStore
	campaigns CampaignStore
	ledger    LedgerStore
	charger   Charger
	notifier  Notifier

	minimumCents int64
}

// NewEngine creates the settlement engine. notifier may be nil.
func NewEngine(partners PartnerStore, campaigns CampaignStore, ledger LedgerStore, charger Charger, notifier Notifier, minimumCents int64) *Engine {
	return &Engine{
		partners:     partners,
		campaigns:    campaigns,
		ledger:       ledger,
		charger:      charger,
		notifier:     notifier,
		minimumCents: minimumCents,
	}
}

// RunCycle executes one settlement cycle. It is the single entry point
// for all triggers: the cron endpoint, the admin endpoint, the CLI and
// the in-process scheduler.
func (e *Engine) RunCycle(ctx context.Context, now time.Time, opts RunOptions) (*RunResult, error) {
	period := PeriodFor(now)

	var partners []partner.Partner
	if opts.PartnerID != nil {
		p, err := e.partners.GetByID(ctx, *opts.PartnerID)
		if err != nil {
			return nil, err
		}
		partners = []partner.Partner{*p}
	} else {
		list, err := e.partners.ListBillable(ctx)
		if err != nil {
			return nil, err
		}
		partners = list
	}

	result := &RunResult{Period: period}
	for i := range partners {
		outcome := e.settlePartner(ctx, &partners[i], period, now, opts.ForceCharge)
		result.Partners = append(result.Partners, outcome)
		switch outcome.Status {
		case OutcomeCharged:
			result.Charged++
		case OutcomeFailed:
			result.Failed++
		case OutcomeSkipped:
			result.Skipped++
		}
	}

	log.Info().
		Time("period_start", period.Start).
		Time("period_end", period.End).
		Int("partners", len(partners)).
		Int("charged", result.Charged).
		Int("failed", result.Failed).
		Int("skipped", result.Skipped).
		Msg("Billing cycle completed")

	return result, nil
}

func (e *Engine) settlePartner(ctx context.Context, p *partner.Partner, period Period, now time.Time, force bool) PartnerOutcome {
	outcome := PartnerOutcome{PartnerID: p.ID, CompanyName: p.CompanyName}

	// Only reachable on a targeted run; ListBillable already filters.
	if !p.CanBeBilled() {
		outcome.Status = OutcomeSkipped
		outcome.Reason = SkipNotBillable
		return outcome
	}

	if !p.HasPaymentMethod() {
		outcome.Status = OutcomeSkipped
		outcome.Reason = SkipNoPaymentMethod
		return outcome
	}

	campaigns, err := e.campaigns.GetBillableByPartner(ctx, p.ID)
	if err != nil {
		log.Error().Err(err).Str("partner_id", p.ID.String()).Msg("Failed to load billable campaigns")
		outcome.Status = OutcomeFailed
		outcome.Reason = err.Error()
		return outcome
	}

	var total int64
	breakdown := make(Breakdown, 0, len(campaigns))
	ids := make([]uuid.UUID, 0, len(campaigns))
	for i := range campaigns {
		c := &campaigns[i]
		total += c.Spent
		breakdown = append(breakdown, CampaignCharge{
			CampaignID:  c.ID,
			Name:        c.Name,
			Spent:       c.Spent,
			Impressions: c.Impressions,
			Clicks:      c.Clicks,
		})
		ids = append(ids, c.ID)
	}
	outcome.AmountCents = total

	if total == 0 && !force {
		outcome.Status = OutcomeSkipped
		outcome.Reason = SkipNoCharges
		return outcome
	}
	if total < e.minimumCents && !force {
		outcome.Status = OutcomeSkipped
		outcome.Reason = SkipBelowMinimum
		return outcome
	}

	intent, chargeErr := e.charger.ChargePaymentMethod(ctx, stripe.ChargeRequest{
		CustomerID:      p.StripeCustomerID.String,
		PaymentMethodID: p.PaymentMethodID.String,
		AmountCents:     total,
		Currency:        p.Currency,
		Description:     fmt.Sprintf("Gouache ad spend %s", period.Start.Format("January 2006")),
		Metadata: map[string]string{
			"partner_id":   p.ID.String(),
			"period_start": period.Start.Format("2006-01-02"),
			"period_end":   period.End.Format("2006-01-02"),
		},
	})

	rec := &Record{
		ID:                 uuid.New(),
		PartnerID:          p.ID,
		Amount:             total,
		Currency:           p.Currency,
		BillingPeriodStart: period.Start,
		BillingPeriodEnd:   period.End,
		CampaignBreakdown:  breakdown,
		CreatedAt:          now,
	}

	if chargeErr != nil {
		rec.Status = StatusFailed
		rec.FailureReason = sql.NullString{String: chargeErr.Error(), Valid: true}
		if err := e.ledger.Insert(ctx, rec); err != nil {
			log.Error().Err(err).Str("partner_id", p.ID.String()).Msg("Failed to write failed ledger record")
		}

		log.Warn().Err(chargeErr).
			Str("partner_id", p.ID.String()).
			Int64("amount", total).
			Msg("Settlement charge declined")

		// Spend stays in place; the next cycle retries implicitly.
		e.notifyChargeFailed(p, total, chargeErr)
		outcome.Status = OutcomeFailed
		outcome.Reason = chargeErr.Error()
		return outcome
	}

	rec.Status = StatusPaid
	rec.PaymentReferenceID = sql.NullString{String: intent.ID, Valid: true}
	if err := e.ledger.Insert(ctx, rec); err != nil {
		log.Error().Err(err).Str("partner_id", p.ID.String()).Msg("Failed to write paid ledger record")
	}
	if err := e.campaigns.ResetSpend(ctx, ids, now); err != nil {
		log.Error().Err(err).Str("partner_id", p.ID.String()).Msg("Failed to reset campaign spend after charge")
	}
	if err := e.partners.UpdateAfterCharge(ctx, p.ID, total, now); err != nil {
		log.Error().Err(err).Str("partner_id", p.ID.String()).Msg("Failed to update partner after charge")
	}

	log.Info().
		Str("partner_id", p.ID.String()).
		Int64("amount", total).
		Str("reference", intent.ID).
		Msg("Settlement charge succeeded")

	e.notifyReceipt(p, rec)
	outcome.Status = OutcomeCharged
	outcome.Reference = intent.ID
	return outcome
}

func formatCents(cents int64, currency string) string {
	return fmt.Sprintf("%.2f %s", float64(cents)/100, strings.ToUpper(currency))
}

func (e *Engine) notifyReceipt(p *partner.Partner, rec *Record) {
	if e.notifier == nil {
		return
	}

	type line struct {
		Name           string
		SpentFormatted string
	}
	lines := make([]line, 0, len(rec.CampaignBreakdown))
	for _, c := range rec.CampaignBreakdown {
		lines = append(lines, line{Name: c.Name, SpentFormatted: formatCents(c.Spent, rec.Currency)})
	}

	e.notifier.Enqueue(p.ContactEmail, p.CompanyName, "Your Gouache advertising receipt", "billing_receipt", map[string]interface{}{
		"PartnerName":      p.CompanyName,
		"AmountFormatted":  formatCents(rec.Amount, rec.Currency),
		"PeriodStart":      rec.BillingPeriodStart.Format("Jan 2, 2006"),
		"PeriodEnd":        rec.BillingPeriodEnd.Format("Jan 2, 2006"),
		"Campaigns":        lines,
		"PaymentReference": rec.PaymentReferenceID.String,
	})
}

func (e *Engine) notifyChargeFailed(p *partner.Partner, amount int64, cause error) {
	if e.notifier == nil {
		return
	}
	e.notifier.Enqueue(p.ContactEmail, p.CompanyName, "Gouache payment failed", "charge_failed", map[string]interface{}{
		"PartnerName":     p.CompanyName,
		"AmountFormatted": formatCents(amount, p.Currency),
		"Reason":          cause.Error(),
	})
}
