package utils

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	got, err := ParseDate(" 2025-03-07 ")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if FormatDate(got) != "2025-03-07" {
		t.Fatalf("round trip = %s, want 2025-03-07", FormatDate(got))
	}
	for _, bad := range []string{"", "2025/03/07", "07-03-2025", "2025-13-01", "2025-03-07T00:00:00Z"} {
		if _, err := ParseDate(bad); err == nil {
			t.Fatalf("ParseDate(%q) accepted, want error", bad)
		}
	}
}

func TestDateOnly(t *testing.T) {
	ts := time.Date(2025, 6, 15, 23, 59, 59, 123, time.UTC)
	got := DateOnly(ts)
	want := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("DateOnly = %v, want %v", got, want)
	}
}

func TestVatRatePercent(t *testing.T) {
	t.Setenv("TAX_VAT_RATE_PERCENT", "")
	if got := VatRatePercent(); got != 10 {
		t.Fatalf("default rate = %d, want 10", got)
	}
	t.Setenv("TAX_VAT_RATE_PERCENT", "7")
	if got := VatRatePercent(); got != 7 {
		t.Fatalf("configured rate = %d, want 7", got)
	}
	t.Setenv("TAX_VAT_RATE_PERCENT", "not-a-number")
	if got := VatRatePercent(); got != 10 {
		t.Fatalf("garbage rate = %d, want fallback 10", got)
	}
}
