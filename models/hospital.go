package models

import "time"

// Hospital is a tenant row carrying the settlement configuration.
// Both the percentage rates and the flat amounts are always stored; the
// commission resolver picks the effective basis per settlement event.
type Hospital struct {
	ID      uint   `json:"id" gorm:"primaryKey"`
	Name    string `json:"name" gorm:"not null;unique"`
	Country string `json:"country"`
	City    string `json:"city"`

	SettlementCalcType   string `json:"settlement_calc_type" gorm:"type:VARCHAR(20);not null;default:'PERCENTAGE'"`
	AgencyCommissionRate int    `json:"agency_commission_rate"` // 0..100 percent
	SettlementFlatAmount int64  `json:"settlement_flat_amount" gorm:"type:bigint"`

	PlatformCommissionRate int   `json:"platform_commission_rate"` // 0..100 percent
	PlatformFlatAmount     int64 `json:"platform_flat_amount" gorm:"type:bigint"`

	// Prepaid balance platform fees are drawn from. Cached fold of the
	// balance-affecting ledger entries; updated only alongside ledger writes.
	ChargeBalance int64 `json:"charge_balance" gorm:"type:bigint;not null;default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Agency struct {
	ID      uint   `json:"id" gorm:"primaryKey"`
	Name    string `json:"name" gorm:"not null;unique"`
	Country string `json:"country"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AgencyCommissionOverride replaces the hospital's agency commission rate for
// one specific agency in the percentage branch of the resolver.
type AgencyCommissionOverride struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	HospitalID uint      `json:"hospital_id" gorm:"not null;uniqueIndex:idx_override_hospital_agency,priority:1"`
	AgencyID   uint      `json:"agency_id" gorm:"not null;uniqueIndex:idx_override_hospital_agency,priority:2"`
	Rate       int       `json:"rate" gorm:"not null"` // 0..100 percent
	CreatedAt  time.Time `json:"created_at"`
}
