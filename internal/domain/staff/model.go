package staff

import (
	"time"

	"github.com/google/uuid"
)

// Staff roles. These are the values carried in JWT role claims.
const (
	RoleAdmin        = "admin"
	RoleDoctor       = "doctor"
	RoleNurse        = "nurse"
	RoleReceptionist = "receptionist"
	RolePharmacist   = "pharmacist"
)

type Member struct {
	ID             uuid.UUID `db:"id" json:"id"`
	EmployeeCode   string    `db:"employee_code" json:"employee_code"`
	FirstName      string    `db:"first_name" json:"first_name"`
	LastName       string    `db:"last_name" json:"last_name"`
	Role           string    `db:"role" json:"role"`
	Department     *string   `db:"department" json:"department,omitempty"`
	Specialization *string   `db:"specialization" json:"specialization,omitempty"`
	Phone          string    `db:"phone" json:"phone"`
	Email          string    `db:"email" json:"email"`
	Active         bool      `db:"active" json:"active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

func ValidRole(r string) bool {
	switch r {
	case RoleAdmin, RoleDoctor, RoleNurse, RoleReceptionist, RolePharmacist:
		return true
	}
	return false
}
