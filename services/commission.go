package services

import "meditour-backend/models"

// CommissionThreshold is the payment amount (whole currency units) at and
// below which the flat policy applies regardless of the hospital's configured
// calculation type. Above it, the percentage policy applies.
const CommissionThreshold int64 = 500_000

// CommissionBasis is the policy actually applied at settlement time,
// resolved once and snapshotted immutably on the reservation.
type CommissionBasis struct {
	CalcType     string `json:"calc_type"` // PERCENTAGE | PER_RESERVATION
	AgencyRate   int    `json:"agency_rate,omitempty"`
	PlatformRate int    `json:"platform_rate,omitempty"`
	AgencyFlat   int64  `json:"agency_flat,omitempty"`
	PlatformFlat int64  `json:"platform_flat,omitempty"`
}

// CommissionResult is the fee split for one payment amount.
type CommissionResult struct {
	Total       int64           `json:"total"`
	AgencyFee   int64           `json:"agency_fee"`
	PlatformFee int64           `json:"platform_fee"`
	Basis       CommissionBasis `json:"basis"`
}

// ResolveCommission splits a payment amount into agency and platform fees.
// agencyRateOverride, when non-nil, replaces the hospital's agency commission
// rate in the percentage branch.
//
// Pure and deterministic: used both for the live preview shown to the
// hospital and for audit recomputation. The two fees are not checked against
// the total. The agency fee is paid by the platform, not deducted from the
// hospital payment; only the platform fee is validated against the charge
// balance by the caller.
func ResolveCommission(paymentAmount int64, h *models.Hospital, agencyRateOverride *int) CommissionResult {
	if paymentAmount <= CommissionThreshold {
		return CommissionResult{
			Total:       paymentAmount,
			AgencyFee:   clampFee(h.SettlementFlatAmount),
			PlatformFee: clampFee(h.PlatformFlatAmount),
			Basis: CommissionBasis{
				CalcType:     models.CalcTypePerReservation,
				AgencyFlat:   h.SettlementFlatAmount,
				PlatformFlat: h.PlatformFlatAmount,
			},
		}
	}

	agencyRate := h.AgencyCommissionRate
	if agencyRateOverride != nil {
		agencyRate = *agencyRateOverride
	}
	return CommissionResult{
		Total:       paymentAmount,
		AgencyFee:   clampFee(paymentAmount * int64(agencyRate) / 100),
		PlatformFee: clampFee(paymentAmount * int64(h.PlatformCommissionRate) / 100),
		Basis: CommissionBasis{
			CalcType:     models.CalcTypePercentage,
			AgencyRate:   agencyRate,
			PlatformRate: h.PlatformCommissionRate,
		},
	}
}

func clampFee(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
