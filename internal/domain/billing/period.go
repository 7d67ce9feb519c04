package billing

import "time"

// Period is the half-open settlement window [Start, End)
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func firstOfMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// PeriodFor resolves the settlement window a run at `now` bills for:
// the calendar month preceding the current one, anchored to the 1st.
func PeriodFor(now time.Time) Period {
	end := firstOfMonth(now)
	return Period{Start: end.AddDate(0, -1, 0), End: end}
}
