package services

import (
	"testing"
	"time"

	"meditour-backend/utils"
)

func d(s string) time.Time {
	t, err := utils.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestRangesOverlap(t *testing.T) {
	cases := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd string
		want                       bool
	}{
		{"identical ranges", "2025-01-01", "2025-01-31", "2025-01-01", "2025-01-31", true},
		{"contained range", "2025-01-01", "2025-03-31", "2025-02-01", "2025-02-28", true},
		{"partial overlap", "2025-01-01", "2025-01-31", "2025-01-15", "2025-02-15", true},
		{"shared single day", "2025-01-01", "2025-01-31", "2025-01-31", "2025-02-28", true},
		{"adjacent months", "2025-01-01", "2025-01-31", "2025-02-01", "2025-02-28", false},
		{"disjoint", "2025-01-01", "2025-01-31", "2025-03-01", "2025-03-31", false},
		{"single-day vs containing", "2025-01-15", "2025-01-15", "2025-01-01", "2025-01-31", true},
		{"single-day outside", "2025-02-15", "2025-02-15", "2025-01-01", "2025-01-31", false},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			got := RangesOverlap(d(tt.aStart), d(tt.aEnd), d(tt.bStart), d(tt.bEnd))
			if got != tt.want {
				t.Fatalf("RangesOverlap(%s..%s, %s..%s) = %v, want %v",
					tt.aStart, tt.aEnd, tt.bStart, tt.bEnd, got, tt.want)
			}
			// Overlap is symmetric.
			if RangesOverlap(d(tt.bStart), d(tt.bEnd), d(tt.aStart), d(tt.aEnd)) != got {
				t.Fatalf("RangesOverlap not symmetric for %s..%s vs %s..%s", tt.aStart, tt.aEnd, tt.bStart, tt.bEnd)
			}
		})
	}
}
