package utils

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD calendar date. Settlement and invoice ranges
// carry no time component.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, strings.TrimSpace(s))
}

// FormatDate renders a calendar date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// DateOnly truncates a timestamp to its calendar date (UTC).
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today is the current calendar date used by the derived-settlement
// predicate. All date math runs on the UTC calendar; per-hospital timezones
// are not modeled.
func Today() time.Time {
	return DateOnly(time.Now())
}

// VatRatePercent is the externally configured VAT rate applied when
// aggregating tax invoices. Defaults to 10.
func VatRatePercent() int {
	if v := os.Getenv("TAX_VAT_RATE_PERCENT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return 10
}
