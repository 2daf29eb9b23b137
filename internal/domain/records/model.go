package records

import (
	"time"

	"github.com/google/uuid"
)

// Risk levels a clinical encounter can carry.
const (
	RiskLow      = "low"
	RiskMedium   = "medium"
	RiskHigh     = "high"
	RiskCritical = "critical"
)

// ValidRiskLevel reports whether level is one of the known risk levels.
func ValidRiskLevel(level string) bool {
	switch level {
	case RiskLow, RiskMedium, RiskHigh, RiskCritical:
		return true
	}
	return false
}

// HealthRecord is one clinical encounter. It is editable by hospital
// staff for one hour after creation and frozen afterwards. The stored
// IsEditable flag is never flipped when the window lapses; lock status
// is computed from (IsEditable, EditableUntil, now) at every mutation.
type HealthRecord struct {
	ID                uuid.UUID  `db:"id" json:"id"`
	PatientID         string     `db:"patient_id" json:"patientId"`
	HospitalID        string     `db:"hospital_id" json:"hospitalId"`
	DoctorID          string     `db:"doctor_id" json:"doctorId"`
	DateTime          time.Time  `db:"date_time" json:"dateTime"`
	Diagnosis         string     `db:"diagnosis" json:"diagnosis"`
	Description       *string    `db:"description" json:"description,omitempty"`
	Treatment         *string    `db:"treatment" json:"treatment,omitempty"`
	Prescription      *string    `db:"prescription" json:"prescription,omitempty"`
	RiskLevel         string     `db:"risk_level" json:"riskLevel"`
	EmergencyWarnings []string   `db:"emergency_warnings" json:"emergencyWarnings,omitempty"`
	IsEditable        bool       `db:"is_editable" json:"isEditable"`
	EditableUntil     *time.Time `db:"editable_until" json:"editableUntil,omitempty"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`
}

// DoctorNote is a free-text annotation on a record. Append-only; there
// is no edit or delete.
type DoctorNote struct {
	ID        uuid.UUID `db:"id" json:"id"`
	RecordID  uuid.UUID `db:"record_id" json:"recordId"`
	DoctorID  string    `db:"doctor_id" json:"doctorId"`
	Note      string    `db:"note" json:"note"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
