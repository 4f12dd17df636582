package services

import (
	"time"

	"meditour-backend/models"
	"meditour-backend/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TaxIssueInput identifies the aggregation target and range. The VAT rate is
// external configuration (TAX_VAT_RATE_PERCENT), not derived here.
type TaxIssueInput struct {
	TargetType string `json:"target_type" validate:"required,oneof=HOSPITAL AGENCY"`
	TargetID   uint   `json:"target_id" validate:"required"`
	StartDate  string `json:"start_date" validate:"required"` // YYYY-MM-DD
	EndDate    string `json:"end_date" validate:"required"`
	Memo       string `json:"memo"`
	Draft      bool   `json:"draft"`
}

// RangesOverlap reports whether two inclusive calendar-date ranges intersect.
func RangesOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !utils.DateOnly(aStart).After(utils.DateOnly(bEnd)) &&
		!utils.DateOnly(bStart).After(utils.DateOnly(aEnd))
}

// IssueTaxSettlement aggregates a target's settlements over a date range into
// a tax invoice. With Draft set, the row stays DRAFT (no conflict claim, no
// revision); otherwise it is issued in the same call: the overlap check
// against already-issued invoices and the insert happen atomically inside the
// request transaction, serialized on the target row.
func IssueTaxSettlement(tx *gorm.DB, actor ActorContext, in TaxIssueInput) (*models.TaxSettlement, error) {
	if !actor.IsAdmin() {
		return nil, &NotFoundError{Entity: "tax settlement", ID: 0}
	}
	start, err := utils.ParseDate(in.StartDate)
	if err != nil {
		return nil, &ValidationError{Field: "start_date", Message: "must be YYYY-MM-DD"}
	}
	end, err := utils.ParseDate(in.EndDate)
	if err != nil {
		return nil, &ValidationError{Field: "end_date", Message: "must be YYYY-MM-DD"}
	}
	if end.Before(start) {
		return nil, &ValidationError{Field: "end_date", Message: "must not precede start_date"}
	}
	if err := lockTaxTarget(tx, in.TargetType, in.TargetID); err != nil {
		return nil, err
	}

	row := models.TaxSettlement{
		TargetType: in.TargetType,
		TargetID:   in.TargetID,
		StartDate:  start,
		EndDate:    end,
		Memo:       in.Memo,
		Status:     models.TaxDraft,
	}
	if err := aggregateInto(tx, &row); err != nil {
		return nil, err
	}
	if in.Draft {
		if err := tx.Create(&row).Error; err != nil {
			return nil, err
		}
		return &row, nil
	}
	if err := issueLocked(tx, &row); err != nil {
		return nil, err
	}
	return &row, nil
}

// IssueDraft promotes an existing DRAFT to ISSUED. The aggregation is
// recomputed at issuance so the items reflect the settlements of that moment;
// item inclusion is fixed per revision from then on.
func IssueDraft(tx *gorm.DB, actor ActorContext, id uint) (*models.TaxSettlement, error) {
	if !actor.IsAdmin() {
		return nil, &NotFoundError{Entity: "tax settlement", ID: id}
	}
	row, err := lockTaxSettlement(tx, id)
	if err != nil {
		return nil, err
	}
	if row.Status != models.TaxDraft {
		return nil, &IllegalTransitionError{Action: "issue", From: row.Status, Role: actor.Role}
	}
	if err := lockTaxTarget(tx, row.TargetType, row.TargetID); err != nil {
		return nil, err
	}
	if err := tx.Where("tax_settlement_id = ?", row.ID).Delete(&models.TaxSettlementItem{}).Error; err != nil {
		return nil, err
	}
	row.Items = nil
	if err := aggregateInto(tx, row); err != nil {
		return nil, err
	}
	if err := issueLocked(tx, row); err != nil {
		return nil, err
	}
	return row, nil
}

// VoidTaxSettlement flips an issued invoice to VOIDED and clears its
// isLatest flag. Amounts and items are untouched; re-issuing the same range
// later starts the next revision of the lineage.
func VoidTaxSettlement(tx *gorm.DB, actor ActorContext, id uint, reason string) (*models.TaxSettlement, error) {
	if !actor.IsAdmin() {
		return nil, &NotFoundError{Entity: "tax settlement", ID: id}
	}
	row, err := lockTaxSettlement(tx, id)
	if err != nil {
		return nil, err
	}
	if row.Status != models.TaxIssued {
		return nil, &IllegalTransitionError{Action: "void", From: row.Status, Role: actor.Role}
	}
	now := time.Now()
	row.Status = models.TaxVoided
	row.IsLatest = false
	row.VoidReason = reason
	row.VoidedAt = &now
	err = tx.Model(row).Updates(map[string]any{
		"status": row.Status, "is_latest": false, "void_reason": reason, "voided_at": now,
	}).Error
	if err != nil {
		return nil, err
	}
	return row, nil
}

// TaxHistory returns every revision of a lineage (same target, identical
// range), newest revision first, with the items each revision froze.
func TaxHistory(tx *gorm.DB, actor ActorContext, targetType string, targetID uint, startDate, endDate string) ([]models.TaxSettlement, error) {
	if err := authorizeTaxRead(actor, targetType, targetID); err != nil {
		return nil, err
	}
	start, err := utils.ParseDate(startDate)
	if err != nil {
		return nil, &ValidationError{Field: "start_date", Message: "must be YYYY-MM-DD"}
	}
	end, err := utils.ParseDate(endDate)
	if err != nil {
		return nil, &ValidationError{Field: "end_date", Message: "must be YYYY-MM-DD"}
	}
	var rows []models.TaxSettlement
	err = tx.Preload("Items").
		Where("target_type = ? AND target_id = ? AND start_date = ? AND end_date = ?",
			targetType, targetID, start, end).
		Order("revision DESC").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListTaxSettlements returns the invoices visible to the actor (admins see
// all, tenants their own), newest first.
func ListTaxSettlements(tx *gorm.DB, actor ActorContext, status string) ([]models.TaxSettlement, error) {
	db := tx.Model(&models.TaxSettlement{})
	switch {
	case actor.IsAdmin():
	case actor.IsHospital():
		db = db.Where("target_type = ? AND target_id = ?", models.TaxTargetHospital, actor.TenantID)
	case actor.IsAgency():
		db = db.Where("target_type = ? AND target_id = ?", models.TaxTargetAgency, actor.TenantID)
	default:
		return nil, &NotFoundError{Entity: "tax settlement", ID: 0}
	}
	if status != "" {
		db = db.Where("status = ?", status)
	}
	var rows []models.TaxSettlement
	if err := db.Order("id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetTaxSettlement loads one invoice with its items.
func GetTaxSettlement(tx *gorm.DB, actor ActorContext, id uint) (*models.TaxSettlement, error) {
	var row models.TaxSettlement
	if err := tx.Preload("Items").First(&row, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, &NotFoundError{Entity: "tax settlement", ID: id}
		}
		return nil, err
	}
	if err := authorizeTaxRead(actor, row.TargetType, row.TargetID); err != nil {
		return nil, err
	}
	return &row, nil
}

// aggregateInto sums the target's settlements whose settledAt falls inside
// the row's range and freezes them as item rows. Hospitals are billed on
// platform fees, agencies on agency fees.
func aggregateInto(tx *gorm.DB, row *models.TaxSettlement) error {
	db := tx.Model(&models.Reservation{}).
		Where("status IN ? AND settled_at >= ? AND settled_at < ?",
			[]string{models.StatusSettlement, models.StatusSettled},
			utils.DateOnly(row.StartDate), utils.DateOnly(row.EndDate).AddDate(0, 0, 1))
	if row.TargetType == models.TaxTargetHospital {
		db = db.Where("hospital_id = ?", row.TargetID)
	} else {
		db = db.Where("agency_id = ?", row.TargetID)
	}
	var settlements []models.Reservation
	if err := db.Order("settled_at ASC").Find(&settlements).Error; err != nil {
		return err
	}

	var supply int64
	items := make([]models.TaxSettlementItem, 0, len(settlements))
	for _, s := range settlements {
		if row.TargetType == models.TaxTargetHospital {
			supply += s.PlatformFee
		} else {
			supply += s.SettlementAmount
		}
		items = append(items, models.TaxSettlementItem{
			ReservationID: s.ID,
			AgencyFee:     s.SettlementAmount,
			PlatformFee:   s.PlatformFee,
			PatientName:   s.PatientName,
			ProcedureName: s.ProcedureName,
			SettledAt:     *s.SettledAt,
		})
	}
	row.SupplyAmount = supply
	row.VatAmount = supply * int64(utils.VatRatePercent()) / 100
	row.TotalAmount = row.SupplyAmount + row.VatAmount
	row.Items = items
	return nil
}

// issueLocked performs the conflict check, revision assignment and insert/
// update for an issuance. Callers must already hold the target lock.
func issueLocked(tx *gorm.DB, row *models.TaxSettlement) error {
	var existing []models.TaxSettlement
	err := tx.Where("target_type = ? AND target_id = ?", row.TargetType, row.TargetID).
		Find(&existing).Error
	if err != nil {
		return err
	}

	maxRevision := 0
	for i := range existing {
		other := &existing[i]
		if other.ID == row.ID {
			continue
		}
		if other.Status == models.TaxIssued &&
			RangesOverlap(row.StartDate, row.EndDate, other.StartDate, other.EndDate) {
			utils.GetLogger().Info("tax issuance rejected: overlapping issued invoice",
				zap.Uint("conflicting_id", other.ID))
			return &InvoiceConflictError{Conflicting: other.Summary()}
		}
		if sameLineage(row, other) && other.Revision > maxRevision {
			maxRevision = other.Revision
		}
	}

	// Prior revisions of the lineage give up isLatest before the new one
	// takes it.
	err = tx.Model(&models.TaxSettlement{}).
		Where("target_type = ? AND target_id = ? AND start_date = ? AND end_date = ? AND is_latest",
			row.TargetType, row.TargetID, row.StartDate, row.EndDate).
		Update("is_latest", false).Error
	if err != nil {
		return err
	}

	now := time.Now()
	row.Revision = maxRevision + 1
	row.IsLatest = true
	row.Status = models.TaxIssued
	row.IssuedAt = &now
	if row.ID == 0 {
		return tx.Create(row).Error
	}
	if err := tx.Model(row).Updates(map[string]any{
		"revision": row.Revision, "is_latest": true, "status": row.Status, "issued_at": now,
		"supply_amount": row.SupplyAmount, "vat_amount": row.VatAmount, "total_amount": row.TotalAmount,
	}).Error; err != nil {
		return err
	}
	for i := range row.Items {
		row.Items[i].TaxSettlementID = row.ID
	}
	if len(row.Items) > 0 {
		return tx.Create(&row.Items).Error
	}
	return nil
}

func sameLineage(a, b *models.TaxSettlement) bool {
	return utils.DateOnly(a.StartDate).Equal(utils.DateOnly(b.StartDate)) &&
		utils.DateOnly(a.EndDate).Equal(utils.DateOnly(b.EndDate))
}

// lockTaxTarget takes the hospital/agency row FOR UPDATE as the
// serialization anchor for concurrent issuances against the same target.
func lockTaxTarget(tx *gorm.DB, targetType string, targetID uint) error {
	locking := clause.Locking{Strength: "UPDATE"}
	if targetType == models.TaxTargetHospital {
		var h models.Hospital
		if err := tx.Clauses(locking).First(&h, targetID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return &NotFoundError{Entity: "hospital", ID: targetID}
			}
			return err
		}
		return nil
	}
	var a models.Agency
	if err := tx.Clauses(locking).First(&a, targetID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return &NotFoundError{Entity: "agency", ID: targetID}
		}
		return err
	}
	return nil
}

func lockTaxSettlement(tx *gorm.DB, id uint) (*models.TaxSettlement, error) {
	var row models.TaxSettlement
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&row, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, &NotFoundError{Entity: "tax settlement", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func authorizeTaxRead(actor ActorContext, targetType string, targetID uint) error {
	switch {
	case actor.IsAdmin():
		return nil
	case actor.IsHospital() && targetType == models.TaxTargetHospital && actor.TenantID == targetID:
		return nil
	case actor.IsAgency() && targetType == models.TaxTargetAgency && actor.TenantID == targetID:
		return nil
	}
	return &NotFoundError{Entity: "tax settlement", ID: targetID}
}
