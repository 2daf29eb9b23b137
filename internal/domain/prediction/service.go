package prediction

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/clinicore/clinicore/internal/domain/identity"
	"github.com/clinicore/clinicore/internal/domain/records"
	"github.com/clinicore/clinicore/internal/platform/apperror"
	"github.com/clinicore/clinicore/internal/platform/scoring"
)

const (
	fallbackHealthScore    = 85
	fallbackTrend          = "stable"
	fallbackRecommendation = "No prediction has been generated yet. Keep up regular checkups and a balanced lifestyle."
	maxRecommendations     = 5
)

// PatientDirectory is the slice of the identity layer the aggregator
// needs: patient demographics for the scoring payload.
type PatientDirectory interface {
	GetByRoleID(ctx context.Context, roleID string) (*identity.Patient, error)
}

// RecordHistory supplies a patient's encounters oldest first.
type RecordHistory interface {
	ListByPatientAsc(ctx context.Context, patientID string) ([]*records.HealthRecord, error)
}

// Service reduces stored snapshots into the dashboard view and
// orchestrates generation through the external scoring engine.
type Service struct {
	predictions PredictionRepository
	patients    PatientDirectory
	history     RecordHistory
	scorer      scoring.Scorer
	now         func() time.Time
}

func NewService(predictions PredictionRepository, patients PatientDirectory, history RecordHistory, scorer scoring.Scorer) *Service {
	return &Service{
		predictions: predictions,
		patients:    patients,
		history:     history,
		scorer:      scorer,
		now:         time.Now,
	}
}

// Dashboard builds the prioritized view from the latest snapshot. With
// no snapshot on file it returns a fixed fallback payload rather than
// an error.
func (s *Service) Dashboard(ctx context.Context, patientID string) (*Dashboard, error) {
	latest, err := s.predictions.GetLatestByPatient(ctx, patientID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &Dashboard{
				CurrentRisks:    []RiskView{},
				HealthScore:     fallbackHealthScore,
				Trend:           fallbackTrend,
				Recommendations: []string{fallbackRecommendation},
			}, nil
		}
		return nil, apperror.Wrap(apperror.KindUnknown, "load latest prediction", err)
	}

	risks := []RiskView{}
	recommendations := []string{}
	for _, p := range latest.Predictions {
		if p.RiskLevel == records.RiskHigh || p.RiskLevel == records.RiskCritical {
			risks = append(risks, RiskView{
				Condition: p.Condition,
				RiskScore: p.RiskScore,
				RiskLevel: p.RiskLevel,
			})
		}
		recommendations = append(recommendations, p.Recommendations...)
	}
	// Capped after concatenation, in prediction order; no dedup and no
	// reordering by risk.
	if len(recommendations) > maxRecommendations {
		recommendations = recommendations[:maxRecommendations]
	}

	return &Dashboard{
		CurrentRisks:    risks,
		HealthScore:     latest.OverallHealthScore,
		Trend:           latest.TrendDirection,
		Recommendations: recommendations,
	}, nil
}

// Generate runs the scoring engine over the patient's chronological
// history and persists the result as a new immutable snapshot. Engine
// failures surface as GenerationFailed and nothing is persisted.
func (s *Service) Generate(ctx context.Context, patientID string) (*HealthPrediction, error) {
	patient, err := s.patients.GetByRoleID(ctx, patientID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("patient")
		}
		return nil, apperror.Wrap(apperror.KindUnknown, "load patient", err)
	}

	history, err := s.history.ListByPatientAsc(ctx, patientID)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindUnknown, "load record history", err)
	}

	input := scoring.PatientInput{
		Age:     patient.Age,
		Records: make([]scoring.RecordInput, 0, len(history)),
	}
	for _, rec := range history {
		in := scoring.RecordInput{
			Date:    rec.DateTime.Format(time.RFC3339),
			Disease: rec.Diagnosis,
			Risk:    rec.RiskLevel,
		}
		if rec.Description != nil {
			in.Description = *rec.Description
		}
		if rec.Treatment != nil {
			in.Treatment = *rec.Treatment
		}
		input.Records = append(input.Records, in)
	}

	result, err := s.scorer.Score(ctx, input)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindGenerationFailed, "scoring engine", err)
	}

	snapshot := &HealthPrediction{
		PatientID:          patientID,
		PredictionDate:     s.now(),
		Predictions:        make([]ConditionRisk, 0, len(result.Predictions)),
		OverallHealthScore: result.OverallHealthScore,
		TrendDirection:     result.TrendDirection,
	}
	for _, p := range result.Predictions {
		snapshot.Predictions = append(snapshot.Predictions, ConditionRisk{
			Condition:       p.Condition,
			RiskScore:       p.RiskScore,
			RiskLevel:       p.RiskLevel,
			Recommendations: p.Recommendations,
		})
	}

	if err := s.predictions.Create(ctx, snapshot); err != nil {
		return nil, apperror.Wrap(apperror.KindUnknown, "store prediction", err)
	}
	return snapshot, nil
}

// History returns a page of a patient's snapshots, newest first.
func (s *Service) History(ctx context.Context, patientID string, limit, offset int) ([]*HealthPrediction, int, error) {
	return s.predictions.ListByPatient(ctx, patientID, limit, offset)
}
