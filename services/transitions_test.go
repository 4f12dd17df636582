package services

import (
	"testing"

	"meditour-backend/models"
)

func TestValidTransition(t *testing.T) {
	cases := []struct {
		name   string
		action string
		from   string
		role   string
		wantTo string
		wantOK bool
	}{
		{"agency claims pre-chat", ActionSubmit, models.StatusPreChat, models.RoleAgency, models.StatusPending, true},
		{"hospital cannot claim pre-chat", ActionSubmit, models.StatusPreChat, models.RoleHospital, "", false},
		{"claim requires pre-chat", ActionSubmit, models.StatusPending, models.RoleAgency, "", false},

		{"hospital confirms", ActionConfirm, models.StatusPending, models.RoleHospital, models.StatusConfirmed, true},
		{"agency cannot confirm", ActionConfirm, models.StatusPending, models.RoleAgency, "", false},
		{"confirm requires pending", ActionConfirm, models.StatusConfirmed, models.RoleHospital, "", false},

		{"first settlement entry", ActionEnterSettlement, models.StatusConfirmed, models.RoleHospital, models.StatusSettlement, true},
		{"settlement re-entry", ActionEnterSettlement, models.StatusSettlement, models.RoleHospital, models.StatusSettlement, true},
		{"no settlement from pending", ActionEnterSettlement, models.StatusPending, models.RoleHospital, "", false},
		{"agency cannot enter settlement", ActionEnterSettlement, models.StatusConfirmed, models.RoleAgency, "", false},

		{"agency completes", ActionComplete, models.StatusSettlement, models.RoleAgency, models.StatusSettled, true},
		{"hospital cannot complete", ActionComplete, models.StatusSettlement, models.RoleHospital, "", false},
		{"no complete before settlement", ActionComplete, models.StatusConfirmed, models.RoleAgency, "", false},

		{"admin reopens settled", ActionReopen, models.StatusSettled, models.RoleAdmin, models.StatusSettlement, true},
		{"hospital cannot reopen", ActionReopen, models.StatusSettled, models.RoleHospital, "", false},

		{"hospital cancels pending", ActionCancel, models.StatusPending, models.RoleHospital, models.StatusCancelled, true},
		{"hospital cancels confirmed", ActionCancel, models.StatusConfirmed, models.RoleHospital, models.StatusCancelled, true},
		{"hospital cancels in settlement", ActionCancel, models.StatusSettlement, models.RoleHospital, models.StatusCancelled, true},
		{"agency cancels pending only", ActionCancel, models.StatusPending, models.RoleAgency, models.StatusCancelled, true},
		{"agency cannot cancel confirmed", ActionCancel, models.StatusConfirmed, models.RoleAgency, "", false},
		{"nobody cancels settled", ActionCancel, models.StatusSettled, models.RoleAdmin, "", false},
		{"nobody cancels cancelled", ActionCancel, models.StatusCancelled, models.RoleHospital, "", false},

		{"cancelled is terminal", ActionConfirm, models.StatusCancelled, models.RoleHospital, "", false},
		{"unknown action", "promote", models.StatusPending, models.RoleAdmin, "", false},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			to, ok := ValidTransition(tt.action, tt.from, tt.role)
			if ok != tt.wantOK {
				t.Fatalf("ValidTransition(%q, %q, %q) ok = %v, want %v", tt.action, tt.from, tt.role, ok, tt.wantOK)
			}
			if to != tt.wantTo {
				t.Fatalf("ValidTransition(%q, %q, %q) to = %q, want %q", tt.action, tt.from, tt.role, to, tt.wantTo)
			}
		})
	}
}
