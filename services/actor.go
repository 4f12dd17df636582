package services

import "meditour-backend/models"

// ActorContext identifies who performs a core operation. It is threaded
// explicitly through every mutating call instead of being read from ambient
// session state; TenantID is the hospital or agency id for those roles and
// zero for admins.
type ActorContext struct {
	UserID   string
	Role     string
	TenantID uint
}

func (a ActorContext) IsHospital() bool { return a.Role == models.RoleHospital }
func (a ActorContext) IsAgency() bool   { return a.Role == models.RoleAgency }
func (a ActorContext) IsAdmin() bool    { return a.Role == models.RoleAdmin }

// OwnsHospital reports whether the actor may act for the given hospital.
// Admins may act for any tenant.
func (a ActorContext) OwnsHospital(hospitalID uint) bool {
	return a.IsAdmin() || (a.IsHospital() && a.TenantID == hospitalID)
}

// OwnsAgency reports whether the actor may act for the given agency.
func (a ActorContext) OwnsAgency(agencyID uint) bool {
	return a.IsAdmin() || (a.IsAgency() && a.TenantID == agencyID)
}
