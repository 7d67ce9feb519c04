package campaign

import "time"

// SpendUpdate is the outcome of applying one event to a campaign's spend
// state. Spent/DailySpent are the values to persist; raw counters are
// incremented separately and unconditionally.
type SpendUpdate struct {
	ChargeAmount  int64
	Spent         int64
	DailySpent    int64
	DayRolledOver bool // last_spent_reset must be moved to now
	Deactivate    bool // a budget ceiling was reached
}

// chargeFor returns the cost of an event under the campaign's billing
// model; events the model does not pay for cost 0.
func chargeFor(c *Campaign, event EventType) int64 {
	switch event {
	case EventClick:
		if c.BillingModel == BillingModelCPC {
			return c.CostPerClick
		}
	case EventImpression:
		if c.BillingModel == BillingModelCPM {
			return c.CostPerImpression
		}
	}
	return 0
}

// isNewDay reports whether now falls on a later calendar day (UTC) than
// lastReset. Day rollover is detected lazily on the next event; there is
// no midnight timer.
func isNewDay(lastReset, now time.Time) bool {
	ly, lm, ld := lastReset.UTC().Date()
	ny, nm, nd := now.UTC().Date()
	return ly != ny || lm != nm || ld != nd
}

// applySpend computes the spend transition for one event against the
// campaign's current state. A non-billable event leaves spend untouched.
// When a ceiling is reached, only the counter that exceeded its own
// ceiling is clamped to it; the other still updates normally. Both clamps
// can apply on the same event. Deactivation is one-way: nothing here ever
// re-activates a campaign.
func applySpend(c *Campaign, event EventType, now time.Time) SpendUpdate {
	charge := chargeFor(c, event)

	update := SpendUpdate{
		ChargeAmount: charge,
		Spent:        c.Spent,
		DailySpent:   c.DailySpent,
	}
	if charge == 0 {
		return update
	}

	dailyBase := c.DailySpent
	if isNewDay(c.LastSpentReset, now) {
		dailyBase = 0
		update.DayRolledOver = true
	}

	newSpent := c.Spent + charge
	newDaily := dailyBase + charge

	exceedsBudget := !c.UncappedBudget && c.Budget.Valid && newSpent >= c.Budget.Int64
	exceedsDaily := c.DailyBudget.Valid && newDaily >= c.DailyBudget.Int64

	if !exceedsBudget && !exceedsDaily {
		update.Spent = newSpent
		update.DailySpent = newDaily
		return update
	}

	update.Deactivate = true
	if exceedsBudget {
		update.Spent = c.Budget.Int64
	} else {
		update.Spent = newSpent
	}
	if exceedsDaily {
		update.DailySpent = c.DailyBudget.Int64
	} else {
		update.DailySpent = newDaily
	}
	return update
}
