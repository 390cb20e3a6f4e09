package eligibility

import "time"

// Day identifies one platform calendar day as "YYYY-MM-DD". The platform day
// boundary is UTC, never client-local time, so timezone gaming cannot stretch
// a daily budget. Day is always passed in explicitly; nothing in this package
// reads the wall clock.
type Day string

const dayLayout = "2006-01-02"

// DayFromTime buckets an instant into its platform day.
func DayFromTime(t time.Time) Day {
	return Day(t.UTC().Format(dayLayout))
}

// Prev returns the immediately preceding day.
func (d Day) Prev() Day {
	t, err := time.Parse(dayLayout, string(d))
	if err != nil {
		return ""
	}
	return Day(t.AddDate(0, 0, -1).Format(dayLayout))
}

// Valid reports whether d parses as a platform day.
func (d Day) Valid() bool {
	_, err := time.Parse(dayLayout, string(d))
	return err == nil
}
