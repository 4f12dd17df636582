package models

import "time"

// Payout request statuses. Paid is terminal; Rejected releases the claimed
// settlements back to eligibility.
const (
	PayoutRequested = "REQUESTED"
	PayoutPaid      = "PAID"
	PayoutRejected  = "REJECTED"
)

// AgencyPayoutRequest groups an agency's settled-but-unpaid agency fees into
// one claim. The member settlements point back via Reservation.PayoutRequestID
// while the request is not rejected (at most one non-rejected claim per
// settlement).
type AgencyPayoutRequest struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	AgencyID uint   `json:"agency_id" gorm:"not null;index"`
	Agency   Agency `json:"-" gorm:"foreignKey:AgencyID;references:ID"`

	Status   string    `json:"status" gorm:"type:VARCHAR(20);not null;default:'REQUESTED'"`
	FromDate time.Time `json:"from_date" gorm:"type:date"`
	ToDate   time.Time `json:"to_date" gorm:"type:date"`

	TotalAmount     int64 `json:"total_amount" gorm:"type:bigint;not null"`
	SettlementCount int   `json:"settlement_count" gorm:"not null"`

	RejectReason string     `json:"reject_reason"`
	DecidedBy    string     `json:"decided_by"` // admin user id
	DecidedAt    *time.Time `json:"decided_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
