package models

import (
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Actor roles. Every mutating core operation is performed as one of these;
// hospital and agency users additionally carry their tenant id.
const (
	RoleHospital = "HOSPITAL"
	RoleAgency   = "AGENCY"
	RoleAdmin    = "ADMIN"
)

type User struct {
	Id        string `json:"id" gorm:"primaryKey"`
	FirstName string `json:"first_name" gorm:"not null"`
	LastName  string `json:"last_name" gorm:"not null"`
	Password  []byte `json:"-" gorm:"not null"`
	Email     string `json:"email" gorm:"unique;not null"`

	Role       string `json:"role" gorm:"type:VARCHAR(10);not null"`
	HospitalID *uint  `json:"hospital_id"`
	AgencyID   *uint  `json:"agency_id"`
}

func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	// UUID version 4
	user.Id = uuid.NewString()
	return
}

func (user *User) SetPassword(password string) {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte(password), 12)
	user.Password = hashedPassword
}

func (user *User) ComparePassword(password string) error {
	return bcrypt.CompareHashAndPassword(user.Password, []byte(password))
}

// TenantID returns the tenant the user acts for (0 for admins).
func (user *User) TenantID() uint {
	switch user.Role {
	case RoleHospital:
		if user.HospitalID != nil {
			return *user.HospitalID
		}
	case RoleAgency:
		if user.AgencyID != nil {
			return *user.AgencyID
		}
	}
	return 0
}
