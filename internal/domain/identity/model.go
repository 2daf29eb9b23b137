package identity

import (
	"time"

	"github.com/google/uuid"
)

// Roles a credential can be registered under.
const (
	RoleDoctor   = "doctor"
	RolePatient  = "patient"
	RoleHospital = "hospital"
)

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleDoctor, RolePatient, RoleHospital:
		return true
	}
	return false
}

// User is an identity credential. RoleID is the externally visible,
// role-scoped id users log in with; the (RoleID, Role) pair is unique
// under case-insensitive comparison, enforced by a pre-check at
// registration time rather than a database constraint.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	RoleID       string    `db:"role_id" json:"roleId"`
	Role         string    `db:"role" json:"role"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Patient maps to the patients table. Linked to a User via RoleID.
type Patient struct {
	ID         uuid.UUID `db:"id" json:"id"`
	RoleID     string    `db:"role_id" json:"roleId"`
	FullName   string    `db:"full_name" json:"fullName"`
	Age        int       `db:"age" json:"age"`
	Gender     *string   `db:"gender" json:"gender,omitempty"`
	BloodGroup *string   `db:"blood_group" json:"bloodGroup,omitempty"`
	Phone      *string   `db:"phone" json:"phone,omitempty"`
	Email      *string   `db:"email" json:"email,omitempty"`
	Address    *string   `db:"address" json:"address,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// Hospital maps to the hospitals table.
type Hospital struct {
	ID        uuid.UUID `db:"id" json:"id"`
	RoleID    string    `db:"role_id" json:"roleId"`
	Name      string    `db:"name" json:"name"`
	Address   *string   `db:"address" json:"address,omitempty"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	Email     *string   `db:"email" json:"email,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Doctor maps to the doctors table. HospitalID is the role-scoped id of
// the hospital the doctor works at.
type Doctor struct {
	ID             uuid.UUID `db:"id" json:"id"`
	RoleID         string    `db:"role_id" json:"roleId"`
	HospitalID     string    `db:"hospital_id" json:"hospitalId"`
	FullName       string    `db:"full_name" json:"fullName"`
	Specialization *string   `db:"specialization" json:"specialization,omitempty"`
	Phone          *string   `db:"phone" json:"phone,omitempty"`
	Email          *string   `db:"email" json:"email,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}
