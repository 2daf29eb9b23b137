// Package scoring bridges to the external analytics engine that computes
// health predictions and record summaries. The engine is a separate
// process exchanging JSON over stdin/stdout.
package scoring

import "context"

// RecordInput is one health record handed to the engine, oldest first.
type RecordInput struct {
	Date        string `json:"date"`
	Disease     string `json:"disease"`
	Description string `json:"description,omitempty"`
	Risk        string `json:"risk"`
	Treatment   string `json:"treatment,omitempty"`
}

// PatientInput is the payload sent to the prediction engine.
type PatientInput struct {
	Age     int           `json:"age"`
	Records []RecordInput `json:"records"`
}

// RiskPrediction is a single condition risk returned by the engine.
type RiskPrediction struct {
	Condition       string   `json:"condition"`
	RiskScore       float64  `json:"riskScore"`
	RiskLevel       string   `json:"riskLevel"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// PredictionResult is the engine's full output for one patient.
type PredictionResult struct {
	Predictions        []RiskPrediction `json:"predictions"`
	OverallHealthScore float64          `json:"overallHealthScore"`
	TrendDirection     string           `json:"trendDirection"`
}

// Scorer computes a health prediction from a patient's record history.
type Scorer interface {
	Score(ctx context.Context, input PatientInput) (*PredictionResult, error)
}

// Summarizer produces a plain-language summary of a single record.
type Summarizer interface {
	Summarize(ctx context.Context, record RecordInput) (string, error)
}
