package services

import (
	"fmt"

	"meditour-backend/models"
)

// Domain errors. All of these are recoverable, user-actionable outcomes and
// carry enough structure for the HTTP layer to build a useful response;
// anything else bubbling out of a service is treated as a fatal persistence
// failure by the central error handler.

// ValidationError reports a missing or invalid input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// NotFoundError covers both genuinely missing rows and rows the actor's
// tenant is not allowed to see.
type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// IllegalTransitionError rejects a status change the transition table does
// not allow for the actor's role and the current status.
type IllegalTransitionError struct {
	Action string
	From   string
	Role   string
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("action %s not allowed for %s from status %s", e.Action, e.Role, e.From)
}

// InsufficientBalanceError carries the required platform fee and the
// hospital's current charge balance so the caller can prompt a top-up.
type InsufficientBalanceError struct {
	Required int64 `json:"required"`
	Current  int64 `json:"current"`
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient charge balance: required %d, current %d", e.Required, e.Current)
}

// InvoiceConflictError carries the summary of the already-issued invoice
// whose date range overlaps the requested one.
type InvoiceConflictError struct {
	Conflicting models.TaxSettlementSummary `json:"conflicting"`
}

func (e *InvoiceConflictError) Error() string {
	return fmt.Sprintf("date range overlaps issued tax invoice %d (%s %d, rev %d)",
		e.Conflicting.ID, e.Conflicting.TargetType, e.Conflicting.TargetID, e.Conflicting.Revision)
}

// PayoutClaimConflictError rejects a payout request that includes settlements
// already claimed by another non-rejected request (or no longer eligible).
type PayoutClaimConflictError struct {
	Requested int
	Claimed   int
}

func (e *PayoutClaimConflictError) Error() string {
	return fmt.Sprintf("payout claim conflict: %d of %d settlements not eligible", e.Requested-e.Claimed, e.Requested)
}
