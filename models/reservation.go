package models

import (
	"time"

	"gorm.io/datatypes"
)

// Reservation statuses. PreChat is an informal pre-submission thread; a
// reservation proper starts at Pending. Cancelled is terminal but rows are
// never deleted (audit + copy-reservation flows read them).
const (
	StatusPreChat    = "PRE_CHAT"
	StatusPending    = "PENDING"
	StatusConfirmed  = "CONFIRMED"
	StatusSettlement = "SETTLEMENT"
	StatusSettled    = "SETTLED"
	StatusCancelled  = "CANCELLED"
)

// Commission calculation types. Which one actually applies at settlement
// time is decided by the payment-amount threshold, not by this field alone.
const (
	CalcTypePercentage     = "PERCENTAGE"
	CalcTypePerReservation = "PER_RESERVATION"
)

// Reservation is the live state of a booking between a hospital and an
// agency. The payment snapshot fields are only populated once the hospital
// enters a payment amount (status Settlement/Settled) and are frozen from
// the commission resolution of that moment.
type Reservation struct {
	ID         uint     `json:"id" gorm:"primaryKey"`
	HospitalID uint     `json:"hospital_id" gorm:"not null;index"`
	Hospital   Hospital `json:"-" gorm:"foreignKey:HospitalID;references:ID"`
	AgencyID   *uint    `json:"agency_id" gorm:"index"` // nil until a pre-chat thread is claimed
	Agency     *Agency  `json:"-" gorm:"foreignKey:AgencyID;references:ID"`

	Status string `json:"status" gorm:"type:VARCHAR(20);not null;index"`

	// Patient / booking attributes
	PatientName      string    `json:"patient_name" gorm:"not null"`
	PatientAge       int       `json:"patient_age"`
	Nationality      string    `json:"nationality"`
	Language         string    `json:"language"`
	ProcedureName    string    `json:"procedure_name"`
	ReservedDate     time.Time `json:"reserved_date" gorm:"type:date"` // UTC calendar; hospital-local timezones are not modeled
	ReservedTime     string    `json:"reserved_time"` // "HH:MM", display only
	Memo             string    `json:"memo"`
	NeedsSedation    bool      `json:"needs_sedation"`
	NeedsInterpreter bool      `json:"needs_interpreter"`
	TaxRefund        bool      `json:"tax_refund"`
	Urgent           bool      `json:"urgent"`

	// Payment snapshot, set when the hospital enters a payment amount.
	// SettlementAmount is the agency fee, PlatformFee the platform fee;
	// the applied basis fields record which policy produced them.
	PaymentAmount     *int64     `json:"payment_amount" gorm:"type:bigint"`
	SettlementAmount  int64      `json:"settlement_amount" gorm:"type:bigint"`
	PlatformFee       int64      `json:"platform_fee" gorm:"type:bigint"`
	AppliedCalcType   string     `json:"applied_calc_type" gorm:"type:VARCHAR(20)"`
	AppliedRate       int        `json:"applied_rate"`
	AppliedFlatAmount int64      `json:"applied_flat_amount" gorm:"type:bigint"`
	SettledAt         *time.Time `json:"settled_at"`

	// Claim column for payout aggregation: set while the settlement is part
	// of a non-rejected payout request.
	PayoutRequestID *uint `json:"payout_request_id" gorm:"index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasPaymentSnapshot reports whether a payment amount was ever entered.
func (r *Reservation) HasPaymentSnapshot() bool {
	return r.PaymentAmount != nil && *r.PaymentAmount > 0
}

// ReservationStatusHistory is append-only: one immutable row per committed
// transition. Detail carries transition-specific context (cancel reason,
// rating payload, previous payment snapshot on re-entry) as JSONB.
type ReservationStatusHistory struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	ReservationID uint           `json:"reservation_id" gorm:"not null;index:idx_history_reservation_created,priority:1"`
	Status        string         `json:"status" gorm:"type:VARCHAR(20);not null"`
	Reason        string         `json:"reason"`
	ActorRole     string         `json:"actor_role" gorm:"type:VARCHAR(10);not null"`
	Detail        datatypes.JSON `json:"detail,omitempty" gorm:"type:jsonb"`
	CreatedAt     time.Time      `json:"created_at" gorm:"index:idx_history_reservation_created,priority:2"`
}

// SatisfactionRating is captured when the agency confirms a settlement.
// It lives independently of the reservation status and survives an
// administrative reopen.
type SatisfactionRating struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	ReservationID uint      `json:"reservation_id" gorm:"not null;uniqueIndex"`
	AgencyID      uint      `json:"agency_id" gorm:"not null;index"`
	HospitalID    uint      `json:"hospital_id" gorm:"not null;index"`
	Score         int       `json:"score" gorm:"not null"` // 1..5
	Comment       string    `json:"comment"`
	CreatedAt     time.Time `json:"created_at"`
}
