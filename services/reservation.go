package services

import (
	"encoding/json"
	"time"

	"meditour-backend/models"
	"meditour-backend/utils"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateReservationInput is the agency-side submission form. Pre-chat intake
// uses the same shape without an agency attached yet.
type CreateReservationInput struct {
	HospitalID       uint   `json:"hospital_id" validate:"required"`
	PatientName      string `json:"patient_name" validate:"required"`
	PatientAge       int    `json:"patient_age" validate:"required,gt=0"`
	Nationality      string `json:"nationality"`
	Language         string `json:"language"`
	ProcedureName    string `json:"procedure_name" validate:"required"`
	ReservedDate     string `json:"reserved_date" validate:"required"` // YYYY-MM-DD
	ReservedTime     string `json:"reserved_time"`
	Memo             string `json:"memo"`
	NeedsSedation    bool   `json:"needs_sedation"`
	NeedsInterpreter bool   `json:"needs_interpreter"`
	TaxRefund        bool   `json:"tax_refund"`
	Urgent           bool   `json:"urgent"`
}

// CreateReservation submits a new reservation. Agencies create it as PENDING
// for their own tenant; hospital-side intake creates an unclaimed PRE_CHAT
// thread for a later agency submit.
func CreateReservation(tx *gorm.DB, actor ActorContext, in CreateReservationInput) (*models.Reservation, error) {
	date, err := utils.ParseDate(in.ReservedDate)
	if err != nil {
		return nil, &ValidationError{Field: "reserved_date", Message: "must be YYYY-MM-DD"}
	}
	r := models.Reservation{
		HospitalID:       in.HospitalID,
		PatientName:      in.PatientName,
		PatientAge:       in.PatientAge,
		Nationality:      in.Nationality,
		Language:         in.Language,
		ProcedureName:    in.ProcedureName,
		ReservedDate:     date,
		ReservedTime:     in.ReservedTime,
		Memo:             in.Memo,
		NeedsSedation:    in.NeedsSedation,
		NeedsInterpreter: in.NeedsInterpreter,
		TaxRefund:        in.TaxRefund,
		Urgent:           in.Urgent,
	}
	switch {
	case actor.IsAgency():
		agencyID := actor.TenantID
		r.AgencyID = &agencyID
		r.Status = models.StatusPending
	case actor.IsHospital() && actor.TenantID == in.HospitalID:
		r.Status = models.StatusPreChat
	default:
		return nil, &NotFoundError{Entity: "hospital", ID: in.HospitalID}
	}
	if err := tx.Create(&r).Error; err != nil {
		return nil, err
	}
	if r.Status == models.StatusPending {
		if err := appendHistory(tx, &r, actor, "", nil); err != nil {
			return nil, err
		}
	}
	return &r, nil
}

// ClaimPreChat converts an unclaimed PRE_CHAT thread into a formal PENDING
// reservation owned by the acting agency.
func ClaimPreChat(tx *gorm.DB, actor ActorContext, id uint) (*models.Reservation, error) {
	r, err := lockReservation(tx, id)
	if err != nil {
		return nil, err
	}
	to, ok := ValidTransition(ActionSubmit, r.Status, actor.Role)
	if !ok {
		return nil, &IllegalTransitionError{Action: ActionSubmit, From: r.Status, Role: actor.Role}
	}
	if r.AgencyID != nil && *r.AgencyID != actor.TenantID {
		return nil, &NotFoundError{Entity: "reservation", ID: id}
	}
	agencyID := actor.TenantID
	r.AgencyID = &agencyID
	r.Status = to
	if err := tx.Model(r).Updates(map[string]any{"agency_id": agencyID, "status": to}).Error; err != nil {
		return nil, err
	}
	if err := appendHistory(tx, r, actor, "", nil); err != nil {
		return nil, err
	}
	return r, nil
}

// Confirm accepts a pending reservation (hospital side).
func Confirm(tx *gorm.DB, actor ActorContext, id uint) (*models.Reservation, error) {
	r, err := lockOwnedReservation(tx, actor, id)
	if err != nil {
		return nil, err
	}
	to, ok := ValidTransition(ActionConfirm, r.Status, actor.Role)
	if !ok {
		return nil, &IllegalTransitionError{Action: ActionConfirm, From: r.Status, Role: actor.Role}
	}
	r.Status = to
	if err := tx.Model(r).Update("status", to).Error; err != nil {
		return nil, err
	}
	if err := appendHistory(tx, r, actor, "", nil); err != nil {
		return nil, err
	}
	return r, nil
}

// Cancel moves a reservation to its terminal CANCELLED status. Reach depends
// on the actor role; the reason is optional and recorded on the history row.
func Cancel(tx *gorm.DB, actor ActorContext, id uint, reason string) (*models.Reservation, error) {
	r, err := lockOwnedReservation(tx, actor, id)
	if err != nil {
		return nil, err
	}
	to, ok := ValidTransition(ActionCancel, r.Status, actor.Role)
	if !ok {
		return nil, &IllegalTransitionError{Action: ActionCancel, From: r.Status, Role: actor.Role}
	}
	r.Status = to
	if err := tx.Model(r).Update("status", to).Error; err != nil {
		return nil, err
	}
	if err := appendHistory(tx, r, actor, reason, nil); err != nil {
		return nil, err
	}
	return r, nil
}

// EnterSettlement records the payment amount for a confirmed reservation,
// resolves the commission split, debits the platform fee from the hospital's
// charge balance, and snapshots the applied basis. Re-entering while still in
// SETTLEMENT reverses the previous fee pair before writing the new one.
func EnterSettlement(tx *gorm.DB, actor ActorContext, id uint, paymentAmount int64) (*models.Reservation, *CommissionResult, error) {
	r, err := lockOwnedReservation(tx, actor, id)
	if err != nil {
		return nil, nil, err
	}
	if _, ok := ValidTransition(ActionEnterSettlement, r.Status, actor.Role); !ok {
		return nil, nil, &IllegalTransitionError{Action: ActionEnterSettlement, From: r.Status, Role: actor.Role}
	}
	if paymentAmount <= 0 {
		return nil, nil, &ValidationError{Field: "payment_amount", Message: "must be positive"}
	}
	if r.AgencyID == nil {
		return nil, nil, &ValidationError{Field: "agency_id", Message: "reservation has no agency attached"}
	}

	hospital, err := lockHospital(tx, r.HospitalID)
	if err != nil {
		return nil, nil, err
	}
	var agency models.Agency
	if err := tx.First(&agency, *r.AgencyID).Error; err != nil {
		return nil, nil, err
	}
	override, err := agencyRateOverride(tx, r.HospitalID, *r.AgencyID)
	if err != nil {
		return nil, nil, err
	}

	fees := ResolveCommission(paymentAmount, hospital, override)

	// A re-entry frees the previous platform debit before the new one lands.
	reEntry := r.HasPaymentSnapshot()
	available := hospital.ChargeBalance
	if reEntry {
		available += r.PlatformFee
	}
	if available < fees.PlatformFee {
		utils.GetLogger().Info("settlement rejected: insufficient charge balance")
		return nil, nil, &InsufficientBalanceError{Required: fees.PlatformFee, Current: available}
	}

	var prevSnapshot map[string]any
	if reEntry {
		prevSnapshot = map[string]any{
			"payment_amount":    *r.PaymentAmount,
			"settlement_amount": r.SettlementAmount,
			"platform_fee":      r.PlatformFee,
			"applied_calc_type": r.AppliedCalcType,
		}
		if err := reverseFeeEntries(tx, hospital, r); err != nil {
			return nil, nil, err
		}
	}

	agencyEntry, platformEntry := feeEntryPair(r, agency.Name, fees)
	if err := appendLedgerEntry(tx, hospital, &agencyEntry); err != nil {
		return nil, nil, err
	}
	if err := appendLedgerEntry(tx, hospital, &platformEntry); err != nil {
		return nil, nil, err
	}

	now := time.Now()
	r.Status = models.StatusSettlement
	r.PaymentAmount = &paymentAmount
	r.SettlementAmount = fees.AgencyFee
	r.PlatformFee = fees.PlatformFee
	r.AppliedCalcType = fees.Basis.CalcType
	r.AppliedRate = fees.Basis.AgencyRate
	r.AppliedFlatAmount = fees.Basis.AgencyFlat
	r.SettledAt = &now
	if err := tx.Model(r).Updates(map[string]any{
		"status":              r.Status,
		"payment_amount":      paymentAmount,
		"settlement_amount":   r.SettlementAmount,
		"platform_fee":        r.PlatformFee,
		"applied_calc_type":   r.AppliedCalcType,
		"applied_rate":        r.AppliedRate,
		"applied_flat_amount": r.AppliedFlatAmount,
		"settled_at":          now,
	}).Error; err != nil {
		return nil, nil, err
	}

	detail := map[string]any{
		"payment_amount": paymentAmount,
		"agency_fee":     fees.AgencyFee,
		"platform_fee":   fees.PlatformFee,
		"basis":          fees.Basis,
	}
	if prevSnapshot != nil {
		detail["previous"] = prevSnapshot
	}
	if err := appendHistory(tx, r, actor, "", detail); err != nil {
		return nil, nil, err
	}
	return r, &fees, nil
}

// Complete confirms the settlement (agency side) and records the mandatory
// satisfaction rating. The rating row survives later administrative reopens.
func Complete(tx *gorm.DB, actor ActorContext, id uint, score int, comment string) (*models.Reservation, error) {
	r, err := lockOwnedReservation(tx, actor, id)
	if err != nil {
		return nil, err
	}
	to, ok := ValidTransition(ActionComplete, r.Status, actor.Role)
	if !ok {
		return nil, &IllegalTransitionError{Action: ActionComplete, From: r.Status, Role: actor.Role}
	}
	if !r.HasPaymentSnapshot() {
		return nil, &ValidationError{Field: "payment_amount", Message: "settlement amount not entered yet"}
	}
	if score < 1 || score > 5 {
		return nil, &ValidationError{Field: "score", Message: "must be between 1 and 5"}
	}

	rating := models.SatisfactionRating{
		ReservationID: r.ID,
		AgencyID:      *r.AgencyID,
		HospitalID:    r.HospitalID,
		Score:         score,
		Comment:       comment,
	}
	err = tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "reservation_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"score", "comment"}),
	}).Create(&rating).Error
	if err != nil {
		return nil, err
	}

	r.Status = to
	if err := tx.Model(r).Update("status", to).Error; err != nil {
		return nil, err
	}
	if err := appendHistory(tx, r, actor, "", map[string]any{"score": score}); err != nil {
		return nil, err
	}
	return r, nil
}

// Reopen reverts a settled reservation to SETTLEMENT for correction
// (admin override). The payment snapshot and ledger entries stay in place;
// the hospital may re-enter the amount, which reverses and replaces them.
func Reopen(tx *gorm.DB, actor ActorContext, id uint, reason string) (*models.Reservation, error) {
	r, err := lockReservation(tx, id)
	if err != nil {
		return nil, err
	}
	to, ok := ValidTransition(ActionReopen, r.Status, actor.Role)
	if !ok {
		return nil, &IllegalTransitionError{Action: ActionReopen, From: r.Status, Role: actor.Role}
	}
	r.Status = to
	if err := tx.Model(r).Update("status", to).Error; err != nil {
		return nil, err
	}
	if err := appendHistory(tx, r, actor, reason, nil); err != nil {
		return nil, err
	}
	return r, nil
}

// EffectiveStatus is the single shared predicate for the derived settlement
// state: a CONFIRMED reservation whose date has passed is treated as
// SETTLEMENT by every read path, without being persisted.
func EffectiveStatus(r *models.Reservation, today time.Time) string {
	if r.Status == models.StatusConfirmed && !utils.DateOnly(r.ReservedDate).After(utils.DateOnly(today)) {
		return models.StatusSettlement
	}
	return r.Status
}

// IsSettlementPending reports whether the reservation shows up in the
// "settlement pending" views (explicit or implicit SETTLEMENT, not yet
// confirmed by the agency).
func IsSettlementPending(r *models.Reservation, today time.Time) bool {
	return EffectiveStatus(r, today) == models.StatusSettlement
}

// GetReservation loads one reservation within the actor's tenant scope.
func GetReservation(tx *gorm.DB, actor ActorContext, id uint) (*models.Reservation, error) {
	var r models.Reservation
	if err := scopeReservations(tx, actor).First(&r, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, &NotFoundError{Entity: "reservation", ID: id}
		}
		return nil, err
	}
	return &r, nil
}

// ReservationFilter narrows list reads.
type ReservationFilter struct {
	Status            string
	SettlementPending bool
	Limit             int
	Offset            int
}

// ListReservations returns the actor's reservations, newest first. The
// SettlementPending filter uses the shared derived-status predicate, so both
// the explicit and the implicit (date passed) case match.
func ListReservations(tx *gorm.DB, actor ActorContext, f ReservationFilter) ([]models.Reservation, error) {
	db := scopeReservations(tx, actor)
	if f.SettlementPending {
		db = db.Where("status = ? OR (status = ? AND reserved_date <= ?)",
			models.StatusSettlement, models.StatusConfirmed, utils.DateOnly(time.Now()))
	} else if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	}
	if f.Limit > 0 {
		db = db.Limit(f.Limit).Offset(f.Offset)
	}
	var list []models.Reservation
	if err := db.Order("id DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// ListHistory returns a reservation's transition history in creation order.
// Rows are immutable and never compacted.
func ListHistory(tx *gorm.DB, actor ActorContext, id uint) ([]models.ReservationStatusHistory, error) {
	if _, err := GetReservation(tx, actor, id); err != nil {
		return nil, err
	}
	var rows []models.ReservationStatusHistory
	if err := tx.Where("reservation_id = ?", id).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func appendHistory(tx *gorm.DB, r *models.Reservation, actor ActorContext, reason string, detail map[string]any) error {
	row := models.ReservationStatusHistory{
		ReservationID: r.ID,
		Status:        r.Status,
		Reason:        reason,
		ActorRole:     actor.Role,
	}
	if detail != nil {
		blob, err := json.Marshal(detail)
		if err != nil {
			return err
		}
		row.Detail = datatypes.JSON(blob)
	}
	return tx.Create(&row).Error
}

func lockReservation(tx *gorm.DB, id uint) (*models.Reservation, error) {
	var r models.Reservation
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&r, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, &NotFoundError{Entity: "reservation", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// lockOwnedReservation locks the row and enforces tenant ownership. Rows
// outside the actor's tenant read as not found, never as forbidden.
func lockOwnedReservation(tx *gorm.DB, actor ActorContext, id uint) (*models.Reservation, error) {
	r, err := lockReservation(tx, id)
	if err != nil {
		return nil, err
	}
	switch {
	case actor.IsAdmin():
	case actor.IsHospital():
		if r.HospitalID != actor.TenantID {
			return nil, &NotFoundError{Entity: "reservation", ID: id}
		}
	case actor.IsAgency():
		if r.AgencyID == nil || *r.AgencyID != actor.TenantID {
			return nil, &NotFoundError{Entity: "reservation", ID: id}
		}
	default:
		return nil, &NotFoundError{Entity: "reservation", ID: id}
	}
	return r, nil
}

func scopeReservations(tx *gorm.DB, actor ActorContext) *gorm.DB {
	db := tx.Model(&models.Reservation{})
	switch {
	case actor.IsHospital():
		return db.Where("hospital_id = ?", actor.TenantID)
	case actor.IsAgency():
		return db.Where("agency_id = ?", actor.TenantID)
	default:
		return db
	}
}

func agencyRateOverride(tx *gorm.DB, hospitalID, agencyID uint) (*int, error) {
	var ov models.AgencyCommissionOverride
	err := tx.Where("hospital_id = ? AND agency_id = ?", hospitalID, agencyID).First(&ov).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ov.Rate, nil
}
