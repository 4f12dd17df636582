package services

import (
	"time"

	"meditour-backend/models"
	"meditour-backend/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// eligiblePayoutScope is the single eligibility predicate for payout claims:
// own agency, settled, a positive agency fee, and not already claimed by a
// non-rejected request (rejection clears the claim column).
func eligiblePayoutScope(tx *gorm.DB, agencyID uint) *gorm.DB {
	return tx.Model(&models.Reservation{}).
		Where("agency_id = ? AND status = ? AND settlement_amount > 0 AND payout_request_id IS NULL",
			agencyID, models.StatusSettled)
}

// ListEligibleSettlements returns the agency's settlements that may be
// claimed in a new payout request, optionally narrowed to a settled-at range.
func ListEligibleSettlements(tx *gorm.DB, actor ActorContext, agencyID uint, from, to *time.Time) ([]models.Reservation, error) {
	if !actor.OwnsAgency(agencyID) {
		return nil, &NotFoundError{Entity: "agency", ID: agencyID}
	}
	db := eligiblePayoutScope(tx, agencyID)
	if from != nil {
		db = db.Where("settled_at >= ?", *from)
	}
	if to != nil {
		db = db.Where("settled_at < ?", to.AddDate(0, 0, 1))
	}
	var list []models.Reservation
	if err := db.Order("settled_at ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// CreatePayoutRequest claims the given settlements for the agency and opens a
// REQUESTED payout over them. The claim is a single check-and-set UPDATE with
// the full eligibility predicate in the WHERE clause; if any requested id is
// missing, foreign, or already claimed by a concurrent request, the affected
// row count comes up short and the whole request fails without partial
// effects.
func CreatePayoutRequest(tx *gorm.DB, actor ActorContext, agencyID uint, reservationIDs []uint, fromDate, toDate time.Time) (*models.AgencyPayoutRequest, error) {
	if !actor.OwnsAgency(agencyID) {
		return nil, &NotFoundError{Entity: "agency", ID: agencyID}
	}
	if len(reservationIDs) == 0 {
		return nil, &ValidationError{Field: "reservation_ids", Message: "at least one settlement required"}
	}

	req := models.AgencyPayoutRequest{
		AgencyID: agencyID,
		Status:   models.PayoutRequested,
		FromDate: fromDate,
		ToDate:   toDate,
	}
	if err := tx.Create(&req).Error; err != nil {
		return nil, err
	}

	// The claim must also stay inside the stated period, or the stored
	// from/to dates would misdescribe what the request contains.
	lo, hi := settledWindow(fromDate, toDate)
	claim := eligiblePayoutScope(tx, agencyID).
		Where("id IN ?", reservationIDs).
		Where("settled_at >= ? AND settled_at < ?", lo, hi).
		Update("payout_request_id", req.ID)
	if claim.Error != nil {
		return nil, claim.Error
	}
	if int(claim.RowsAffected) != len(reservationIDs) {
		return nil, &PayoutClaimConflictError{Requested: len(reservationIDs), Claimed: int(claim.RowsAffected)}
	}

	var total struct{ Sum int64 }
	err := tx.Model(&models.Reservation{}).
		Select("COALESCE(SUM(settlement_amount), 0) AS sum").
		Where("payout_request_id = ?", req.ID).
		Scan(&total).Error
	if err != nil {
		return nil, err
	}
	req.TotalAmount = total.Sum
	req.SettlementCount = len(reservationIDs)
	if err := tx.Model(&req).Updates(map[string]any{
		"total_amount":     req.TotalAmount,
		"settlement_count": req.SettlementCount,
	}).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// MarkPayoutPaid settles a payout request (admin side). Only REQUESTED may be
// paid; PAID is terminal and the claims stay attached.
func MarkPayoutPaid(tx *gorm.DB, actor ActorContext, id uint) (*models.AgencyPayoutRequest, error) {
	if !actor.IsAdmin() {
		return nil, &NotFoundError{Entity: "payout request", ID: id}
	}
	req, err := lockPayoutRequest(tx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != models.PayoutRequested {
		return nil, &IllegalTransitionError{Action: "mark_paid", From: req.Status, Role: actor.Role}
	}
	now := time.Now()
	req.Status = models.PayoutPaid
	req.DecidedBy = actor.UserID
	req.DecidedAt = &now
	err = tx.Model(req).Updates(map[string]any{
		"status": req.Status, "decided_by": req.DecidedBy, "decided_at": now,
	}).Error
	if err != nil {
		return nil, err
	}
	return req, nil
}

// RejectPayoutRequest rejects a REQUESTED payout and releases its settlements
// back to eligibility.
func RejectPayoutRequest(tx *gorm.DB, actor ActorContext, id uint, reason string) (*models.AgencyPayoutRequest, error) {
	if !actor.IsAdmin() {
		return nil, &NotFoundError{Entity: "payout request", ID: id}
	}
	req, err := lockPayoutRequest(tx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != models.PayoutRequested {
		return nil, &IllegalTransitionError{Action: "reject", From: req.Status, Role: actor.Role}
	}
	now := time.Now()
	req.Status = models.PayoutRejected
	req.RejectReason = reason
	req.DecidedBy = actor.UserID
	req.DecidedAt = &now
	err = tx.Model(req).Updates(map[string]any{
		"status": req.Status, "reject_reason": reason, "decided_by": req.DecidedBy, "decided_at": now,
	}).Error
	if err != nil {
		return nil, err
	}
	// Release the claims.
	err = tx.Model(&models.Reservation{}).
		Where("payout_request_id = ?", req.ID).
		Update("payout_request_id", nil).Error
	if err != nil {
		return nil, err
	}
	return req, nil
}

// ListPayoutRequests returns payout requests visible to the actor: an
// agency's own, or all of them for admins.
func ListPayoutRequests(tx *gorm.DB, actor ActorContext, status string) ([]models.AgencyPayoutRequest, error) {
	db := tx.Model(&models.AgencyPayoutRequest{})
	if actor.IsAgency() {
		db = db.Where("agency_id = ?", actor.TenantID)
	} else if !actor.IsAdmin() {
		return nil, &NotFoundError{Entity: "payout request", ID: 0}
	}
	if status != "" {
		db = db.Where("status = ?", status)
	}
	var list []models.AgencyPayoutRequest
	if err := db.Order("id DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// settledWindow widens an inclusive calendar-date range into the half-open
// timestamp interval the settled_at predicates compare against.
func settledWindow(from, to time.Time) (lo, hi time.Time) {
	return utils.DateOnly(from), utils.DateOnly(to).AddDate(0, 0, 1)
}

func lockPayoutRequest(tx *gorm.DB, id uint) (*models.AgencyPayoutRequest, error) {
	var req models.AgencyPayoutRequest
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&req, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, &NotFoundError{Entity: "payout request", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}
