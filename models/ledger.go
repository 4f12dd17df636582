package models

import "time"

// Ledger entry kinds. ChargeCompleted and PlatformFee are the only kinds that
// move the hospital's charge balance; AgencyFee rows track what the platform
// owes the agency and ChargeRequest/ChargeRejected record the top-up workflow
// without a balance effect.
const (
	EntryChargeRequest   = "CHARGE_REQUEST"
	EntryChargeCompleted = "CHARGE_COMPLETED"
	EntryChargeRejected  = "CHARGE_REJECTED"
	EntryAgencyFee       = "AGENCY_FEE"
	EntryPlatformFee     = "PLATFORM_FEE"
)

// SettlementLedgerEntry is one signed-amount event in a hospital's append-only
// journal. Rows are never updated or deleted; a fee snapshot being replaced is
// reversed by a new row pointing back via ReversesEntryID.
//
// The descriptive fields are frozen at write time so reconciliation exports
// stay stable even if the reservation's live fields change later.
type SettlementLedgerEntry struct {
	ID         uint  `json:"id" gorm:"primaryKey"`
	HospitalID uint  `json:"hospital_id" gorm:"not null;index:idx_ledger_hospital_created,priority:1"`
	AgencyID   *uint `json:"agency_id" gorm:"index"`

	Kind   string `json:"kind" gorm:"type:VARCHAR(20);not null"`
	Amount int64  `json:"amount" gorm:"type:bigint;not null"` // positive = credit, negative = debit

	ReservationID   *uint `json:"reservation_id" gorm:"index"`
	ChargeRequestID *uint `json:"charge_request_id" gorm:"index"`
	ReversesEntryID *uint `json:"reverses_entry_id"`

	// Snapshotted join context for reconciliation / CSV export.
	AgencyName    string     `json:"agency_name"`
	PatientName   string     `json:"patient_name"`
	ProcedureName string     `json:"procedure_name"`
	ReservedDate  *time.Time `json:"reserved_date" gorm:"type:date"`

	CreatedAt time.Time `json:"created_at" gorm:"index:idx_ledger_hospital_created,priority:2"`
}

// Charge request statuses (external admin approval workflow; this core only
// records the outcomes it is told about).
const (
	ChargeRequested = "REQUESTED"
	ChargeCompleted = "COMPLETED"
	ChargeRejected  = "REJECTED"
)

// ChargeRequest is a hospital's prepaid top-up moving through the external
// approve/reject workflow.
type ChargeRequest struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	HospitalID uint   `json:"hospital_id" gorm:"not null;index"`
	Amount     int64  `json:"amount" gorm:"type:bigint;not null"`
	Status     string `json:"status" gorm:"type:VARCHAR(20);not null;default:'REQUESTED'"`
	Memo       string `json:"memo"`

	DecidedBy string     `json:"decided_by"` // admin user id
	DecidedAt *time.Time `json:"decided_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
