package services

import "meditour-backend/models"

// Transition actions on a reservation.
const (
	ActionSubmit          = "submit"           // agency claims a pre-chat thread
	ActionConfirm         = "confirm"          // hospital accepts
	ActionCancel          = "cancel"           // hospital or agency
	ActionEnterSettlement = "enter_settlement" // hospital enters payment amount
	ActionComplete        = "complete"         // agency confirms settlement
	ActionReopen          = "reopen"           // admin reverts SETTLED for correction
)

type transitionRule struct {
	from  []string
	roles []string
	to    string
}

var transitionTable = map[string]transitionRule{
	ActionSubmit: {
		from:  []string{models.StatusPreChat},
		roles: []string{models.RoleAgency},
		to:    models.StatusPending,
	},
	ActionConfirm: {
		from:  []string{models.StatusPending},
		roles: []string{models.RoleHospital},
		to:    models.StatusConfirmed,
	},
	ActionEnterSettlement: {
		from:  []string{models.StatusConfirmed, models.StatusSettlement},
		roles: []string{models.RoleHospital},
		to:    models.StatusSettlement,
	},
	ActionComplete: {
		from:  []string{models.StatusSettlement},
		roles: []string{models.RoleAgency},
		to:    models.StatusSettled,
	},
	ActionReopen: {
		from:  []string{models.StatusSettled},
		roles: []string{models.RoleAdmin},
		to:    models.StatusSettlement,
	},
}

// Cancellation reach differs by role, so it gets its own table.
var cancelFrom = map[string][]string{
	models.RoleHospital: {models.StatusPending, models.StatusConfirmed, models.StatusSettlement},
	models.RoleAgency:   {models.StatusPending},
	models.RoleAdmin:    {models.StatusPending, models.StatusConfirmed, models.StatusSettlement},
}

// ValidTransition reports whether the action is allowed for the role from the
// given status, and the resulting status when it is.
func ValidTransition(action, fromStatus, role string) (string, bool) {
	if action == ActionCancel {
		if contains(cancelFrom[role], fromStatus) {
			return models.StatusCancelled, true
		}
		return "", false
	}
	rule, ok := transitionTable[action]
	if !ok {
		return "", false
	}
	if !contains(rule.roles, role) || !contains(rule.from, fromStatus) {
		return "", false
	}
	return rule.to, true
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
