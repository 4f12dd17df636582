package services

import (
	"time"

	"meditour-backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// The charge top-up workflow is decided by an external admin approval flow;
// this core records the outcomes it is told about and keeps the ledger and
// the cached balance moving in lockstep.

// CreateChargeRequest opens a prepaid top-up request for the hospital and
// journals it (no balance effect until approval).
func CreateChargeRequest(tx *gorm.DB, actor ActorContext, hospitalID uint, amount int64, memo string) (*models.ChargeRequest, error) {
	if !actor.OwnsHospital(hospitalID) {
		return nil, &NotFoundError{Entity: "hospital", ID: hospitalID}
	}
	if amount <= 0 {
		return nil, &ValidationError{Field: "amount", Message: "must be positive"}
	}
	hospital, err := lockHospital(tx, hospitalID)
	if err != nil {
		return nil, err
	}
	req := models.ChargeRequest{
		HospitalID: hospitalID,
		Amount:     amount,
		Status:     models.ChargeRequested,
		Memo:       memo,
	}
	if err := tx.Create(&req).Error; err != nil {
		return nil, err
	}
	entry := models.SettlementLedgerEntry{
		Kind:            models.EntryChargeRequest,
		Amount:          amount,
		ChargeRequestID: &req.ID,
	}
	if err := appendLedgerEntry(tx, hospital, &entry); err != nil {
		return nil, err
	}
	return &req, nil
}

// ApproveChargeRequest records the external approval: the request completes
// and the amount credits the hospital's balance through the ledger.
func ApproveChargeRequest(tx *gorm.DB, actor ActorContext, id uint) (*models.ChargeRequest, error) {
	if !actor.IsAdmin() {
		return nil, &NotFoundError{Entity: "charge request", ID: id}
	}
	req, err := lockChargeRequest(tx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != models.ChargeRequested {
		return nil, &IllegalTransitionError{Action: "approve_charge", From: req.Status, Role: actor.Role}
	}
	hospital, err := lockHospital(tx, req.HospitalID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	req.Status = models.ChargeCompleted
	req.DecidedBy = actor.UserID
	req.DecidedAt = &now
	err = tx.Model(req).Updates(map[string]any{
		"status": req.Status, "decided_by": req.DecidedBy, "decided_at": now,
	}).Error
	if err != nil {
		return nil, err
	}
	entry := models.SettlementLedgerEntry{
		Kind:            models.EntryChargeCompleted,
		Amount:          req.Amount,
		ChargeRequestID: &req.ID,
	}
	if err := appendLedgerEntry(tx, hospital, &entry); err != nil {
		return nil, err
	}
	return req, nil
}

// RejectChargeRequest records the external rejection (journal row only, no
// balance movement).
func RejectChargeRequest(tx *gorm.DB, actor ActorContext, id uint, memo string) (*models.ChargeRequest, error) {
	if !actor.IsAdmin() {
		return nil, &NotFoundError{Entity: "charge request", ID: id}
	}
	req, err := lockChargeRequest(tx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != models.ChargeRequested {
		return nil, &IllegalTransitionError{Action: "reject_charge", From: req.Status, Role: actor.Role}
	}
	hospital, err := lockHospital(tx, req.HospitalID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	req.Status = models.ChargeRejected
	req.DecidedBy = actor.UserID
	req.DecidedAt = &now
	err = tx.Model(req).Updates(map[string]any{
		"status": req.Status, "decided_by": req.DecidedBy, "decided_at": now, "memo": memo,
	}).Error
	if err != nil {
		return nil, err
	}
	entry := models.SettlementLedgerEntry{
		Kind:            models.EntryChargeRejected,
		Amount:          req.Amount,
		ChargeRequestID: &req.ID,
	}
	if err := appendLedgerEntry(tx, hospital, &entry); err != nil {
		return nil, err
	}
	return req, nil
}

// ListChargeRequests returns a hospital's top-up requests, newest first.
func ListChargeRequests(tx *gorm.DB, actor ActorContext, hospitalID uint, status string) ([]models.ChargeRequest, error) {
	if !actor.OwnsHospital(hospitalID) {
		return nil, &NotFoundError{Entity: "hospital", ID: hospitalID}
	}
	db := tx.Where("hospital_id = ?", hospitalID)
	if status != "" {
		db = db.Where("status = ?", status)
	}
	var list []models.ChargeRequest
	if err := db.Order("id DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func lockChargeRequest(tx *gorm.DB, id uint) (*models.ChargeRequest, error) {
	var req models.ChargeRequest
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&req, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, &NotFoundError{Entity: "charge request", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}
