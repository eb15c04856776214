// Package utils holds small helpers shared across handlers and
// repositories.  The clock helpers pin every persisted timestamp to a
// single civil timezone so that "today" in reports always means the
// restaurant's calendar day regardless of where the host runs.
package utils

import "time"

// BusinessTimeZone is the fixed civil timezone all timestamps are
// normalized to at write time.
const BusinessTimeZone = "Asia/Ho_Chi_Minh"

var businessLoc = loadBusinessLocation()

// loadBusinessLocation resolves the business timezone, falling back to
// a fixed +07:00 offset when the host has no tzdata.
func loadBusinessLocation() *time.Location {
	loc, err := time.LoadLocation(BusinessTimeZone)
	if err != nil {
		return time.FixedZone("+07", 7*60*60)
	}
	return loc
}

// NowISO returns the current time as an RFC3339 string in the business
// timezone.  All created_at/updated_at/completed_at columns are written
// through this single helper.
func NowISO() string {
	return time.Now().In(businessLoc).Format(time.RFC3339)
}

// FormatISO renders t as an RFC3339 string in the business timezone.
func FormatISO(t time.Time) string {
	return t.In(businessLoc).Format(time.RFC3339)
}

// Today returns the current business-timezone calendar date as
// YYYY-MM-DD.
func Today() string {
	return time.Now().In(businessLoc).Format("2006-01-02")
}

// ParseISO parses an RFC3339 timestamp or a bare YYYY-MM-DD date.  Bare
// dates are interpreted as midnight in the business timezone.
func ParseISO(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, businessLoc)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// DayRange returns the half-open [start, start+24h) range covering the
// business-timezone calendar day that contains t, formatted as RFC3339
// strings suitable for comparing against stored timestamps.
func DayRange(t time.Time) (string, string) {
	z := t.In(businessLoc)
	start := time.Date(z.Year(), z.Month(), z.Day(), 0, 0, 0, 0, businessLoc)
	return start.Format(time.RFC3339), start.Add(24 * time.Hour).Format(time.RFC3339)
}
