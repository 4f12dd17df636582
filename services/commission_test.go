package services

import (
	"testing"

	"meditour-backend/models"
)

func testHospital() *models.Hospital {
	return &models.Hospital{
		SettlementCalcType:     models.CalcTypePercentage,
		AgencyCommissionRate:   10,
		SettlementFlatAmount:   30_000,
		PlatformCommissionRate: 5,
		PlatformFlatAmount:     20_000,
	}
}

func TestResolveCommissionFlatAtOrBelowThreshold(t *testing.T) {
	h := testHospital()
	cases := []int64{1, 100_000, 499_999, 500_000}
	for _, amount := range cases {
		got := ResolveCommission(amount, h, nil)
		if got.AgencyFee != 30_000 {
			t.Fatalf("amount %d: agency fee = %d, want flat 30000", amount, got.AgencyFee)
		}
		if got.PlatformFee != 20_000 {
			t.Fatalf("amount %d: platform fee = %d, want flat 20000", amount, got.PlatformFee)
		}
		if got.Basis.CalcType != models.CalcTypePerReservation {
			t.Fatalf("amount %d: basis = %s, want PER_RESERVATION", amount, got.Basis.CalcType)
		}
	}
}

func TestResolveCommissionPercentageAboveThreshold(t *testing.T) {
	h := testHospital()
	cases := []struct {
		amount      int64
		agencyFee   int64
		platformFee int64
	}{
		{500_001, 50_000, 25_000}, // floor(500001*10/100)=50000, floor(500001*5/100)=25000
		{1_000_000, 100_000, 50_000},
		{999_999, 99_999, 49_999},
	}
	for _, tt := range cases {
		got := ResolveCommission(tt.amount, h, nil)
		if got.AgencyFee != tt.agencyFee || got.PlatformFee != tt.platformFee {
			t.Fatalf("amount %d: fees = (%d, %d), want (%d, %d)",
				tt.amount, got.AgencyFee, got.PlatformFee, tt.agencyFee, tt.platformFee)
		}
		if got.Basis.CalcType != models.CalcTypePercentage {
			t.Fatalf("amount %d: basis = %s, want PERCENTAGE", tt.amount, got.Basis.CalcType)
		}
	}
}

func TestResolveCommissionAgencyRateOverride(t *testing.T) {
	h := testHospital()
	override := 20
	got := ResolveCommission(1_000_000, h, &override)
	if got.AgencyFee != 200_000 {
		t.Fatalf("agency fee with override = %d, want 200000", got.AgencyFee)
	}
	if got.Basis.AgencyRate != 20 {
		t.Fatalf("snapshotted rate = %d, want override 20", got.Basis.AgencyRate)
	}
	// The override only touches the percentage branch.
	flat := ResolveCommission(400_000, h, &override)
	if flat.AgencyFee != 30_000 {
		t.Fatalf("agency fee below threshold = %d, want flat 30000", flat.AgencyFee)
	}
}

func TestResolveCommissionNeverNegative(t *testing.T) {
	h := testHospital()
	h.SettlementFlatAmount = -5_000
	h.PlatformFlatAmount = -1
	got := ResolveCommission(100_000, h, nil)
	if got.AgencyFee != 0 || got.PlatformFee != 0 {
		t.Fatalf("negative flats must clamp to zero, got (%d, %d)", got.AgencyFee, got.PlatformFee)
	}
}

func TestResolveCommissionDeterministic(t *testing.T) {
	h := testHospital()
	a := ResolveCommission(750_000, h, nil)
	b := ResolveCommission(750_000, h, nil)
	if a != b {
		t.Fatalf("resolver not deterministic: %+v vs %+v", a, b)
	}
	if a.Total != 750_000 {
		t.Fatalf("total = %d, want echo of payment amount", a.Total)
	}
}
