package services

import (
	"testing"
	"time"

	"meditour-backend/utils"
)

func TestSettledWindow(t *testing.T) {
	from, err := utils.ParseDate("2025-01-01")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	to, err := utils.ParseDate("2025-01-31")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	lo, hi := settledWindow(from, to)
	if !lo.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("window lo = %v", lo)
	}
	if !hi.Equal(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("window hi = %v", hi)
	}

	inside := time.Date(2025, 1, 31, 23, 15, 0, 0, time.UTC)
	if inside.Before(lo) || !inside.Before(hi) {
		t.Fatal("settlement late on the inclusive to-date must fall inside the window")
	}
	outside := time.Date(2025, 2, 1, 0, 0, 1, 0, time.UTC)
	if outside.Before(hi) {
		t.Fatal("settlement after the to-date must fall outside the window")
	}
}
