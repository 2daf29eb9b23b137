package prediction

import (
	"time"

	"github.com/google/uuid"
)

// ConditionRisk is one predicted condition inside a snapshot.
type ConditionRisk struct {
	Condition       string   `json:"condition"`
	RiskScore       float64  `json:"riskScore"`
	RiskLevel       string   `json:"riskLevel"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// HealthPrediction is one AI-generated risk snapshot. Snapshots are
// immutable; history is append-only and "latest" means most recent by
// PredictionDate.
type HealthPrediction struct {
	ID                 uuid.UUID       `db:"id" json:"id"`
	PatientID          string          `db:"patient_id" json:"patientId"`
	PredictionDate     time.Time       `db:"prediction_date" json:"predictionDate"`
	Predictions        []ConditionRisk `db:"predictions" json:"predictions"`
	OverallHealthScore float64         `db:"overall_health_score" json:"overallHealthScore"`
	TrendDirection     string          `db:"trend_direction" json:"trendDirection"`
	CreatedAt          time.Time       `db:"created_at" json:"created_at"`
}

// RiskView is a dashboard projection of one high-priority risk.
type RiskView struct {
	Condition string  `json:"condition"`
	RiskScore float64 `json:"riskScore"`
	RiskLevel string  `json:"riskLevel"`
}

// Dashboard is the prioritized, capped view served to patients and
// doctors.
type Dashboard struct {
	CurrentRisks    []RiskView `json:"currentRisks"`
	HealthScore     float64    `json:"healthScore"`
	Trend           string     `json:"trend"`
	Recommendations []string   `json:"recommendations"`
}
