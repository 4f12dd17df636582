package models

import "time"

// Tax invoice targets and statuses.
const (
	TaxTargetHospital = "HOSPITAL"
	TaxTargetAgency   = "AGENCY"

	TaxDraft  = "DRAFT"
	TaxIssued = "ISSUED"
	TaxVoided = "VOIDED"
)

// TaxSettlement aggregates the settlements of one target over a date range
// into a billable document. Revision numbering runs within a lineage
// (targetType, targetId, startDate, endDate): voiding never deletes the row,
// it clears IsLatest, and re-issuing the same range creates the next revision.
type TaxSettlement struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	TargetType string `json:"target_type" gorm:"type:VARCHAR(10);not null;index:idx_tax_target,priority:1"`
	TargetID   uint   `json:"target_id" gorm:"not null;index:idx_tax_target,priority:2"`

	StartDate time.Time `json:"start_date" gorm:"type:date;not null"`
	EndDate   time.Time `json:"end_date" gorm:"type:date;not null"`

	Revision int  `json:"revision" gorm:"not null;default:1"`
	IsLatest bool `json:"is_latest" gorm:"not null;default:false"`

	SupplyAmount int64 `json:"supply_amount" gorm:"type:bigint;not null"`
	VatAmount    int64 `json:"vat_amount" gorm:"type:bigint;not null"`
	TotalAmount  int64 `json:"total_amount" gorm:"type:bigint;not null"` // supply + vat

	Status string `json:"status" gorm:"type:VARCHAR(10);not null;default:'DRAFT'"`
	Memo   string `json:"memo"`

	VoidReason string     `json:"void_reason"`
	IssuedAt   *time.Time `json:"issued_at"`
	VoidedAt   *time.Time `json:"voided_at"`

	Items []TaxSettlementItem `json:"items" gorm:"foreignKey:TaxSettlementID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TaxSettlementItem freezes one underlying settlement as included in one
// revision. Items are written at aggregation time and never reassigned to a
// different revision.
type TaxSettlementItem struct {
	ID              uint `json:"id" gorm:"primaryKey"`
	TaxSettlementID uint `json:"tax_settlement_id" gorm:"not null;index"`
	ReservationID   uint `json:"reservation_id" gorm:"not null;index"`

	AgencyFee   int64 `json:"agency_fee" gorm:"type:bigint;not null"`
	PlatformFee int64 `json:"platform_fee" gorm:"type:bigint;not null"`

	PatientName   string    `json:"patient_name"`
	ProcedureName string    `json:"procedure_name"`
	SettledAt     time.Time `json:"settled_at"`

	CreatedAt time.Time `json:"created_at"`
}

// Summary is the conflict payload returned when an issuance overlaps an
// already-issued invoice.
func (t *TaxSettlement) Summary() TaxSettlementSummary {
	return TaxSettlementSummary{
		ID:         t.ID,
		TargetType: t.TargetType,
		TargetID:   t.TargetID,
		StartDate:  t.StartDate,
		EndDate:    t.EndDate,
		Revision:   t.Revision,
	}
}

type TaxSettlementSummary struct {
	ID         uint      `json:"id"`
	TargetType string    `json:"target_type"`
	TargetID   uint      `json:"target_id"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	Revision   int       `json:"revision"`
}
