package labs

import (
	"time"

	"github.com/google/uuid"
)

// Severity grades for a single result entry, mildest first.
const (
	SeverityNormal   = "normal"
	SeverityMild     = "mild"
	SeverityModerate = "moderate"
	SeveritySevere   = "severe"
)

var severityRank = map[string]int{
	SeverityNormal:   0,
	SeverityMild:     1,
	SeverityModerate: 2,
	SeveritySevere:   3,
}

// ValidSeverity reports whether s is a known severity grade.
func ValidSeverity(s string) bool {
	_, ok := severityRank[s]
	return ok
}

// Range is a test's clinical reference interval.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Mid returns the interval midpoint, the clinical target the trend
// classifier measures distance against.
func (r Range) Mid() float64 {
	return (r.Min + r.Max) / 2
}

// ResultEntry is one measured value inside a lab panel. Stored inline
// with its panel as JSON.
type ResultEntry struct {
	TestName    string  `json:"testName"`
	Value       float64 `json:"value"`
	Unit        string  `json:"unit,omitempty"`
	NormalRange *Range  `json:"normalRange,omitempty"`
	IsAbnormal  bool    `json:"isAbnormal"`
	Severity    string  `json:"severity"`
}

// LabResult is one lab panel. OverallStatus is derived at write time
// from the worst-case entry severity. Panels are mutable via explicit
// update; there is no time lock.
type LabResult struct {
	ID            uuid.UUID     `db:"id" json:"id"`
	PatientID     string        `db:"patient_id" json:"patientId"`
	TestDate      time.Time     `db:"test_date" json:"testDate"`
	TestType      string        `db:"test_type" json:"testType"`
	OrderedBy     *string       `db:"ordered_by" json:"orderedBy,omitempty"`
	LabName       *string       `db:"lab_name" json:"labName,omitempty"`
	Results       []ResultEntry `db:"results" json:"results"`
	OverallStatus string        `db:"overall_status" json:"overallStatus"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
}

// DeriveOverallStatus returns the worst severity across entries, or
// normal for an empty panel.
func DeriveOverallStatus(entries []ResultEntry) string {
	worst := SeverityNormal
	for _, e := range entries {
		if severityRank[e.Severity] > severityRank[worst] {
			worst = e.Severity
		}
	}
	return worst
}
