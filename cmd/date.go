package cmd

import (
	"fmt"
	"regexp"
	"time"
)

var (
	yearPattern  = regexp.MustCompile(`^\d{4}$`)
	monthPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)
)

// parseMonth accepts "2019" or "2019-05" and returns the first instant of
// that period, UTC.
func parseMonth(ds string) (time.Time, error) {
	switch {
	case yearPattern.MatchString(ds):
		return time.Parse("2006", ds)

	case monthPattern.MatchString(ds):
		return time.Parse("2006-01", ds)

	default:
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY or YYYY-MM", ds)
	}
}
