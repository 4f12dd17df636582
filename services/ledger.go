package services

import (
	"time"

	"meditour-backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// balanceAffecting reports whether an entry kind moves the hospital's charge
// balance. Agency fees are paid by the platform out of platform revenue and
// never touch the hospital balance; charge requests/rejections only record
// the top-up workflow.
func balanceAffecting(kind string) bool {
	return kind == models.EntryChargeCompleted || kind == models.EntryPlatformFee
}

// appendLedgerEntry writes one journal row and, for balance-affecting kinds,
// moves the hospital's cached balance in the same transaction. The caller
// must hold the hospital row FOR UPDATE.
func appendLedgerEntry(tx *gorm.DB, hospital *models.Hospital, entry *models.SettlementLedgerEntry) error {
	entry.HospitalID = hospital.ID
	if err := tx.Create(entry).Error; err != nil {
		return err
	}
	if !balanceAffecting(entry.Kind) {
		return nil
	}
	hospital.ChargeBalance += entry.Amount
	return tx.Model(&models.Hospital{}).
		Where("id = ?", hospital.ID).
		Update("charge_balance", hospital.ChargeBalance).Error
}

// feeEntryPair builds the matched AGENCY_FEE / PLATFORM_FEE rows for a
// settlement snapshot, with the descriptive context frozen from the
// reservation as it is right now.
func feeEntryPair(r *models.Reservation, agencyName string, fees CommissionResult) (agency, platform models.SettlementLedgerEntry) {
	reserved := r.ReservedDate
	base := models.SettlementLedgerEntry{
		HospitalID:    r.HospitalID,
		AgencyID:      r.AgencyID,
		ReservationID: &r.ID,
		AgencyName:    agencyName,
		PatientName:   r.PatientName,
		ProcedureName: r.ProcedureName,
		ReservedDate:  &reserved,
	}
	agency = base
	agency.Kind = models.EntryAgencyFee
	agency.Amount = -fees.AgencyFee
	platform = base
	platform.Kind = models.EntryPlatformFee
	platform.Amount = -fees.PlatformFee
	return agency, platform
}

// reverseFeeEntries appends reversal rows for the reservation's latest fee
// pair. The platform reversal credits the balance back through the same
// single write path.
func reverseFeeEntries(tx *gorm.DB, hospital *models.Hospital, r *models.Reservation) error {
	for _, kind := range []string{models.EntryAgencyFee, models.EntryPlatformFee} {
		var last models.SettlementLedgerEntry
		err := tx.Where("reservation_id = ? AND kind = ? AND reverses_entry_id IS NULL AND amount <= 0", r.ID, kind).
			Order("id DESC").First(&last).Error
		if err == gorm.ErrRecordNotFound {
			continue
		}
		if err != nil {
			return err
		}
		rev := last
		rev.ID = 0
		rev.Amount = -last.Amount
		rev.ReversesEntryID = &last.ID
		rev.CreatedAt = time.Time{}
		if err := appendLedgerEntry(tx, hospital, &rev); err != nil {
			return err
		}
	}
	return nil
}

// LedgerQuery filters the reconciliation read model.
type LedgerQuery struct {
	HospitalID uint
	From       *time.Time
	To         *time.Time
	AgencyName string
	Kinds      []string
	Limit      int
	Offset     int
}

// ListLedgerEntries returns a hospital's journal rows, newest first, with the
// descriptive fields exactly as frozen at write time.
func ListLedgerEntries(tx *gorm.DB, actor ActorContext, q LedgerQuery) ([]models.SettlementLedgerEntry, error) {
	if !actor.OwnsHospital(q.HospitalID) {
		return nil, &NotFoundError{Entity: "hospital", ID: q.HospitalID}
	}
	db := tx.Where("hospital_id = ?", q.HospitalID)
	if q.From != nil {
		db = db.Where("created_at >= ?", *q.From)
	}
	if q.To != nil {
		db = db.Where("created_at < ?", q.To.AddDate(0, 0, 1))
	}
	if q.AgencyName != "" {
		db = db.Where("agency_name ILIKE ?", "%"+q.AgencyName+"%")
	}
	if len(q.Kinds) > 0 {
		db = db.Where("kind IN ?", q.Kinds)
	}
	if q.Limit > 0 {
		db = db.Limit(q.Limit).Offset(q.Offset)
	}
	var entries []models.SettlementLedgerEntry
	if err := db.Order("id DESC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// FoldBalance computes a hospital balance from journal rows: the sum of the
// balance-affecting entries. The stored ChargeBalance must always equal this.
func FoldBalance(entries []models.SettlementLedgerEntry) int64 {
	var sum int64
	for _, e := range entries {
		if balanceAffecting(e.Kind) {
			sum += e.Amount
		}
	}
	return sum
}

// ReconcileBalance recomputes the ledger fold for a hospital and reports the
// stored cache alongside it. The two diverging means a write bypassed the
// single write path.
func ReconcileBalance(tx *gorm.DB, actor ActorContext, hospitalID uint) (stored, computed int64, err error) {
	if !actor.OwnsHospital(hospitalID) {
		return 0, 0, &NotFoundError{Entity: "hospital", ID: hospitalID}
	}
	var hospital models.Hospital
	if err := tx.First(&hospital, hospitalID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, 0, &NotFoundError{Entity: "hospital", ID: hospitalID}
		}
		return 0, 0, err
	}
	var total struct{ Sum int64 }
	err = tx.Model(&models.SettlementLedgerEntry{}).
		Select("COALESCE(SUM(amount), 0) AS sum").
		Where("hospital_id = ? AND kind IN ?", hospitalID,
			[]string{models.EntryChargeCompleted, models.EntryPlatformFee}).
		Scan(&total).Error
	if err != nil {
		return 0, 0, err
	}
	return hospital.ChargeBalance, total.Sum, nil
}

// lockHospital loads the hospital row FOR UPDATE inside the current
// transaction. All balance movements go through rows locked here.
func lockHospital(tx *gorm.DB, id uint) (*models.Hospital, error) {
	var hospital models.Hospital
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&hospital, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, &NotFoundError{Entity: "hospital", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &hospital, nil
}
