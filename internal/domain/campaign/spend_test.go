package campaign

import (
	"database/sql"
	"testing"
	"time"
)

func cpcCampaign() *Campaign {
	return &Campaign{
		BillingModel:   BillingModelCPC,
		CostPerClick:   10,
		IsActive:       true,
		LastSpentReset: time.Now().UTC(),
	}
}

func TestApplySpendClampToBudget(t *testing.T) {
	c := cpcCampaign()
	c.Spent = 95
	c.Budget = sql.NullInt64{Int64: 100, Valid: true}

	u := applySpend(c, EventClick, time.Now().UTC())

	if u.ChargeAmount != 10 {
		t.Fatalf("expected charge 10, got %d", u.ChargeAmount)
	}
	if u.Spent != 100 {
		t.Fatalf("expected spent clamped to 100, got %d", u.Spent)
	}
	if !u.Deactivate {
		t.Fatal("expected campaign deactivation at budget ceiling")
	}
}

func TestApplySpendUnderBudget(t *testing.T) {
	c := cpcCampaign()
	c.Spent = 40
	c.DailySpent = 15
	c.Budget = sql.NullInt64{Int64: 100, Valid: true}

	u := applySpend(c, EventClick, time.Now().UTC())

	if u.Spent != 50 || u.DailySpent != 25 {
		t.Fatalf("expected 50/25, got %d/%d", u.Spent, u.DailySpent)
	}
	if u.Deactivate {
		t.Fatal("should not deactivate under budget")
	}
}

func TestApplySpendUncappedBudgetIgnoresCeiling(t *testing.T) {
	c := cpcCampaign()
	c.Spent = 95
	c.Budget = sql.NullInt64{Int64: 100, Valid: true}
	c.UncappedBudget = true

	u := applySpend(c, EventClick, time.Now().UTC())

	if u.Spent != 105 {
		t.Fatalf("uncapped budget must not clamp, got %d", u.Spent)
	}
	if u.Deactivate {
		t.Fatal("uncapped budget must not deactivate")
	}
}

func TestApplySpendDailyBudgetClamp(t *testing.T) {
	c := cpcCampaign()
	c.Spent = 10
	c.DailySpent = 295
	c.DailyBudget = sql.NullInt64{Int64: 300, Valid: true}

	u := applySpend(c, EventClick, time.Now().UTC())

	if u.DailySpent != 300 {
		t.Fatalf("expected daily spent clamped to 300, got %d", u.DailySpent)
	}
	// Lifetime counter did not exceed its own ceiling and still updates.
	if u.Spent != 20 {
		t.Fatalf("expected lifetime spent 20, got %d", u.Spent)
	}
	if !u.Deactivate {
		t.Fatal("expected deactivation at daily ceiling")
	}
}

func TestApplySpendBothCeilingsSameEvent(t *testing.T) {
	c := cpcCampaign()
	c.Spent = 95
	c.DailySpent = 95
	c.Budget = sql.NullInt64{Int64: 100, Valid: true}
	c.DailyBudget = sql.NullInt64{Int64: 100, Valid: true}

	u := applySpend(c, EventClick, time.Now().UTC())

	if u.Spent != 100 || u.DailySpent != 100 {
		t.Fatalf("both clamps must apply independently, got %d/%d", u.Spent, u.DailySpent)
	}
	if !u.Deactivate {
		t.Fatal("expected deactivation")
	}
}

func TestApplySpendDayRollover(t *testing.T) {
	now := time.Date(2025, 6, 12, 9, 0, 0, 0, time.UTC)

	c := cpcCampaign()
	c.CostPerClick = 50
	c.DailySpent = 290
	c.DailyBudget = sql.NullInt64{Int64: 300, Valid: true}
	c.LastSpentReset = now.AddDate(0, 0, -1)

	u := applySpend(c, EventClick, now)

	if u.DailySpent != 50 {
		t.Fatalf("expected daily baseline reset to 0 before adding, got %d", u.DailySpent)
	}
	if !u.DayRolledOver {
		t.Fatal("expected day rollover to be flagged")
	}
	if u.Deactivate {
		t.Fatal("50 < 300 should not deactivate")
	}
}

func TestApplySpendNonBillableEvent(t *testing.T) {
	c := cpcCampaign()
	c.Spent = 40
	c.DailySpent = 10

	// A cpc campaign never pays for impressions.
	u := applySpend(c, EventImpression, time.Now().UTC())

	if u.ChargeAmount != 0 {
		t.Fatalf("expected zero charge, got %d", u.ChargeAmount)
	}
	if u.Spent != 40 || u.DailySpent != 10 {
		t.Fatalf("spend must not move on a non-billable event, got %d/%d", u.Spent, u.DailySpent)
	}

	// And a cpm campaign never pays for clicks.
	cpm := &Campaign{BillingModel: BillingModelCPM, CostPerImpression: 3, LastSpentReset: time.Now().UTC()}
	if u := applySpend(cpm, EventClick, time.Now().UTC()); u.ChargeAmount != 0 {
		t.Fatalf("cpm campaign charged for a click: %d", u.ChargeAmount)
	}
}

func TestApplySpendInvariantUnderSequences(t *testing.T) {
	now := time.Now().UTC()
	c := cpcCampaign()
	c.CostPerClick = 7
	c.Budget = sql.NullInt64{Int64: 100, Valid: true}
	c.DailyBudget = sql.NullInt64{Int64: 40, Valid: true}

	for i := 0; i < 50; i++ {
		u := applySpend(c, EventClick, now)
		c.Spent = u.Spent
		c.DailySpent = u.DailySpent
		if u.Deactivate {
			c.IsActive = false
		}

		if c.Spent > c.Budget.Int64 {
			t.Fatalf("spent %d exceeded budget %d at step %d", c.Spent, c.Budget.Int64, i)
		}
		if c.DailySpent > c.DailyBudget.Int64 {
			t.Fatalf("daily spent %d exceeded daily budget %d at step %d", c.DailySpent, c.DailyBudget.Int64, i)
		}
	}
}

func TestIsNewDay(t *testing.T) {
	base := time.Date(2025, 3, 10, 23, 50, 0, 0, time.UTC)

	cases := []struct {
		name      string
		lastReset time.Time
		now       time.Time
		want      bool
	}{
		{"same moment", base, base, false},
		{"same day later hour", base.Add(-5 * time.Hour), base, false},
		{"ten minutes across midnight", base, base.Add(20 * time.Minute), true},
		{"previous day", base.AddDate(0, 0, -1), base, true},
		{"previous month same day-of-month", base.AddDate(0, -1, 0), base, true},
		{"previous year same date", base.AddDate(-1, 0, 0), base, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isNewDay(tc.lastReset, tc.now); got != tc.want {
				t.Fatalf("isNewDay(%v, %v) = %v, want %v", tc.lastReset, tc.now, got, tc.want)
			}
		})
	}
}
