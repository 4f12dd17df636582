package services

import (
	"testing"
	"time"

	"meditour-backend/models"
)

func TestEffectiveStatus(t *testing.T) {
	today := time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC)
	cases := []struct {
		name     string
		status   string
		reserved time.Time
		want     string
	}{
		{"confirmed with past date", models.StatusConfirmed, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), models.StatusSettlement},
		{"confirmed on the day", models.StatusConfirmed, time.Date(2025, 6, 15, 23, 0, 0, 0, time.UTC), models.StatusSettlement},
		{"confirmed with future date", models.StatusConfirmed, time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC), models.StatusConfirmed},
		{"pending never promotes", models.StatusPending, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), models.StatusPending},
		{"pre-chat never promotes", models.StatusPreChat, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), models.StatusPreChat},
		{"explicit settlement passes through", models.StatusSettlement, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), models.StatusSettlement},
		{"settled passes through", models.StatusSettled, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), models.StatusSettled},
		{"cancelled passes through", models.StatusCancelled, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), models.StatusCancelled},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			r := &models.Reservation{Status: tt.status, ReservedDate: tt.reserved}
			if got := EffectiveStatus(r, today); got != tt.want {
				t.Fatalf("EffectiveStatus = %s, want %s", got, tt.want)
			}
			wantPending := tt.want == models.StatusSettlement
			if got := IsSettlementPending(r, today); got != wantPending {
				t.Fatalf("IsSettlementPending = %v, want %v", got, wantPending)
			}
		})
	}
}
