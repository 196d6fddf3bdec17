package patient

import (
	"time"

	"github.com/google/uuid"
)

// Gender values.
const (
	GenderMale   = "MALE"
	GenderFemale = "FEMALE"
	GenderOther  = "OTHER"
)

type Patient struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	MRN        string     `db:"mrn" json:"mrn"`
	FirstName  string     `db:"first_name" json:"first_name"`
	LastName   string     `db:"last_name" json:"last_name"`
	Gender     string     `db:"gender" json:"gender"`
	DOB        *time.Time `db:"dob" json:"dob,omitempty"`
	Phone      string     `db:"phone" json:"phone"`
	Address    *string    `db:"address" json:"address,omitempty"`
	BloodGroup *string    `db:"blood_group" json:"blood_group,omitempty"`
	Allergies  *string    `db:"allergies" json:"allergies,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

func validGender(g string) bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}
