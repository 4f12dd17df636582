package services

import (
	"testing"

	"meditour-backend/models"
)

func TestFoldBalance(t *testing.T) {
	cases := []struct {
		name    string
		entries []models.SettlementLedgerEntry
		want    int64
	}{
		{"empty journal", nil, 0},
		{
			"charge credits",
			[]models.SettlementLedgerEntry{
				{Kind: models.EntryChargeCompleted, Amount: 1_000_000},
				{Kind: models.EntryChargeCompleted, Amount: 500_000},
			},
			1_500_000,
		},
		{
			"platform fee debits",
			[]models.SettlementLedgerEntry{
				{Kind: models.EntryChargeCompleted, Amount: 1_000_000},
				{Kind: models.EntryPlatformFee, Amount: -50_000},
			},
			950_000,
		},
		{
			"agency fee and charge journal rows do not move the balance",
			[]models.SettlementLedgerEntry{
				{Kind: models.EntryChargeCompleted, Amount: 1_000_000},
				{Kind: models.EntryAgencyFee, Amount: -100_000},
				{Kind: models.EntryChargeRequest, Amount: 300_000},
				{Kind: models.EntryChargeRejected, Amount: 300_000},
			},
			1_000_000,
		},
		{
			"reversal pair cancels out",
			[]models.SettlementLedgerEntry{
				{Kind: models.EntryChargeCompleted, Amount: 1_000_000},
				{Kind: models.EntryPlatformFee, Amount: -50_000},
				{Kind: models.EntryPlatformFee, Amount: 50_000},
				{Kind: models.EntryPlatformFee, Amount: -40_000},
			},
			960_000,
		},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			if got := FoldBalance(tt.entries); got != tt.want {
				t.Fatalf("FoldBalance = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBalanceAffecting(t *testing.T) {
	affecting := map[string]bool{
		models.EntryChargeCompleted: true,
		models.EntryPlatformFee:     true,
		models.EntryChargeRequest:   false,
		models.EntryChargeRejected:  false,
		models.EntryAgencyFee:       false,
	}
	for kind, want := range affecting {
		if got := balanceAffecting(kind); got != want {
			t.Fatalf("balanceAffecting(%s) = %v, want %v", kind, got, want)
		}
	}
}
