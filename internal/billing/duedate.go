package billing

import "time"

// NextDueDate returns the next calendar due date for a tenant whose rent
// falls due on paymentDueDay each month, relative to ref. If ref's
// day-of-month is on or before paymentDueDay the due date lands in ref's
// month, otherwise in the following month. A due day past the end of the
// target month clamps to its last day, so day 31 yields Feb 28 (or 29).
//
// The result is a date at midnight UTC; ref's time of day is ignored. The
// function is pure so that webhook handlers, admin actions, and the sweep
// all agree on "what date is next" no matter how often they ask.
func NextDueDate(paymentDueDay int, ref time.Time) time.Time {
	year, month, day := ref.Date()

	if day > paymentDueDay {
		month++ // time.Date normalizes December overflow
	}

	dueDay := paymentDueDay
	if last := lastDayOfMonth(year, month); dueDay > last {
		dueDay = last
	}

	return time.Date(year, month, dueDay, 0, 0, 0, 0, time.UTC)
}

func lastDayOfMonth(year int, month time.Month) int {
	// Day zero of the following month
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
