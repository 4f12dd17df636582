//go:build integration

package services

import (
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"meditour-backend/models"
	"meditour-backend/utils"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// These tests exercise the predicates that live in SQL (payout claim
// check-and-set, invoice conflict and revision assignment) against a real
// Postgres. Point TEST_DATABASE_DSN at a scratch database and run with
// -tags integration; every test rolls its transaction back.

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	err = db.AutoMigrate(
		&models.Hospital{},
		&models.Agency{},
		&models.AgencyCommissionOverride{},
		&models.Reservation{},
		&models.ReservationStatusHistory{},
		&models.SatisfactionRating{},
		&models.SettlementLedgerEntry{},
		&models.ChargeRequest{},
		&models.AgencyPayoutRequest{},
		&models.TaxSettlement{},
		&models.TaxSettlementItem{},
	)
	if err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func inRolledBackTx(t *testing.T, db *gorm.DB, fn func(tx *gorm.DB)) {
	t.Helper()
	tx := db.Begin()
	if tx.Error != nil {
		t.Fatalf("begin: %v", tx.Error)
	}
	defer tx.Rollback()
	fn(tx)
}

func createTenants(t *testing.T, tx *gorm.DB) (*models.Hospital, *models.Agency) {
	t.Helper()
	suffix := time.Now().UnixNano()
	h := models.Hospital{Name: fmt.Sprintf("clinic-%d", suffix), ChargeBalance: 1_000_000}
	if err := tx.Create(&h).Error; err != nil {
		t.Fatalf("create hospital: %v", err)
	}
	a := models.Agency{Name: fmt.Sprintf("agency-%d", suffix)}
	if err := tx.Create(&a).Error; err != nil {
		t.Fatalf("create agency: %v", err)
	}
	return &h, &a
}

func createSettled(t *testing.T, tx *gorm.DB, h *models.Hospital, a *models.Agency, settledOn string, agencyFee int64) *models.Reservation {
	t.Helper()
	when, err := utils.ParseDate(settledOn)
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	amount := agencyFee * 10
	r := models.Reservation{
		HospitalID:       h.ID,
		AgencyID:         &a.ID,
		Status:           models.StatusSettled,
		PatientName:      "patient",
		ProcedureName:    "procedure",
		ReservedDate:     when,
		PaymentAmount:    &amount,
		SettlementAmount: agencyFee,
		SettledAt:        &when,
	}
	if err := tx.Create(&r).Error; err != nil {
		t.Fatalf("create reservation: %v", err)
	}
	return &r
}

func TestPayoutClaimExclusivity(t *testing.T) {
	db := openTestDB(t)
	inRolledBackTx(t, db, func(tx *gorm.DB) {
		h, a := createTenants(t, tx)
		actor := ActorContext{UserID: "u1", Role: models.RoleAgency, TenantID: a.ID}
		from, _ := utils.ParseDate("2025-01-01")
		to, _ := utils.ParseDate("2025-01-31")

		r1 := createSettled(t, tx, h, a, "2025-01-10", 40_000)
		r2 := createSettled(t, tx, h, a, "2025-01-20", 60_000)
		r3 := createSettled(t, tx, h, a, "2025-02-05", 30_000)

		req, err := CreatePayoutRequest(tx, actor, a.ID, []uint{r1.ID, r2.ID}, from, to)
		if err != nil {
			t.Fatalf("first claim: %v", err)
		}
		if req.TotalAmount != 100_000 || req.SettlementCount != 2 {
			t.Fatalf("totals = (%d, %d), want (100000, 2)", req.TotalAmount, req.SettlementCount)
		}

		// A settlement may belong to at most one non-rejected request.
		var claimErr *PayoutClaimConflictError
		_, err = CreatePayoutRequest(tx, actor, a.ID, []uint{r1.ID}, from, to)
		if !errors.As(err, &claimErr) {
			t.Fatalf("double claim: got %v, want PayoutClaimConflictError", err)
		}

		// A settlement outside the stated period must not be claimable.
		_, err = CreatePayoutRequest(tx, actor, a.ID, []uint{r3.ID}, from, to)
		if !errors.As(err, &claimErr) {
			t.Fatalf("out-of-period claim: got %v, want PayoutClaimConflictError", err)
		}

		// Rejection releases the claims back to eligibility.
		admin := ActorContext{UserID: "admin", Role: models.RoleAdmin}
		if _, err := RejectPayoutRequest(tx, admin, req.ID, "wrong period"); err != nil {
			t.Fatalf("reject: %v", err)
		}
		if _, err := CreatePayoutRequest(tx, actor, a.ID, []uint{r1.ID, r2.ID}, from, to); err != nil {
			t.Fatalf("re-claim after rejection: %v", err)
		}
	})
}

func TestTaxIssuanceConflictAndRevisions(t *testing.T) {
	db := openTestDB(t)
	inRolledBackTx(t, db, func(tx *gorm.DB) {
		h, _ := createTenants(t, tx)
		admin := ActorContext{UserID: "admin", Role: models.RoleAdmin}
		jan := TaxIssueInput{
			TargetType: models.TaxTargetHospital, TargetID: h.ID,
			StartDate: "2024-01-01", EndDate: "2024-01-31",
		}

		first, err := IssueTaxSettlement(tx, admin, jan)
		if err != nil {
			t.Fatalf("first issuance: %v", err)
		}
		if first.Revision != 1 || !first.IsLatest || first.Status != models.TaxIssued {
			t.Fatalf("first = rev %d latest %v status %s", first.Revision, first.IsLatest, first.Status)
		}

		// Overlapping range must be rejected, naming the issued invoice.
		var conflict *InvoiceConflictError
		_, err = IssueTaxSettlement(tx, admin, TaxIssueInput{
			TargetType: models.TaxTargetHospital, TargetID: h.ID,
			StartDate: "2024-01-15", EndDate: "2024-02-15",
		})
		if !errors.As(err, &conflict) {
			t.Fatalf("overlap: got %v, want InvoiceConflictError", err)
		}
		if conflict.Conflicting.ID != first.ID {
			t.Fatalf("conflict names invoice %d, want %d", conflict.Conflicting.ID, first.ID)
		}

		// Adjacent range is fine.
		if _, err := IssueTaxSettlement(tx, admin, TaxIssueInput{
			TargetType: models.TaxTargetHospital, TargetID: h.ID,
			StartDate: "2024-02-01", EndDate: "2024-02-28",
		}); err != nil {
			t.Fatalf("adjacent issuance: %v", err)
		}

		// Void, then re-issue the same range: next revision, isLatest moves.
		if _, err := VoidTaxSettlement(tx, admin, first.ID, "recomputed"); err != nil {
			t.Fatalf("void: %v", err)
		}
		second, err := IssueTaxSettlement(tx, admin, jan)
		if err != nil {
			t.Fatalf("reissue: %v", err)
		}
		if second.Revision != 2 || !second.IsLatest {
			t.Fatalf("reissue = rev %d latest %v, want rev 2 latest", second.Revision, second.IsLatest)
		}

		history, err := TaxHistory(tx, admin, models.TaxTargetHospital, h.ID, "2024-01-01", "2024-01-31")
		if err != nil {
			t.Fatalf("history: %v", err)
		}
		if len(history) != 2 || history[0].ID != second.ID || history[1].ID != first.ID {
			t.Fatalf("history order wrong: %+v", history)
		}
		if history[1].IsLatest || history[1].Status != models.TaxVoided {
			t.Fatalf("voided revision kept latest/status: %+v", history[1])
		}
	})
}
