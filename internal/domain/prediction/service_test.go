package prediction

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/clinicore/clinicore/internal/domain/identity"
	"github.com/clinicore/clinicore/internal/domain/records"
	"github.com/clinicore/clinicore/internal/platform/apperror"
	"github.com/clinicore/clinicore/internal/platform/scoring"
)

type mockPredictionRepo struct {
	snapshots []*HealthPrediction
}

func (m *mockPredictionRepo) Create(_ context.Context, p *HealthPrediction) error {
	p.ID = uuid.New()
	cp := *p
	m.snapshots = append(m.snapshots, &cp)
	return nil
}

func (m *mockPredictionRepo) GetLatestByPatient(_ context.Context, patientID string) (*HealthPrediction, error) {
	var latest *HealthPrediction
	for _, p := range m.snapshots {
		if p.PatientID != patientID {
			continue
		}
		if latest == nil || p.PredictionDate.After(latest.PredictionDate) {
			latest = p
		}
	}
	if latest == nil {
		return nil, pgx.ErrNoRows
	}
	cp := *latest
	return &cp, nil
}

func (m *mockPredictionRepo) ListByPatient(_ context.Context, patientID string, limit, offset int) ([]*HealthPrediction, int, error) {
	var out []*HealthPrediction
	for _, p := range m.snapshots {
		if p.PatientID == patientID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PredictionDate.After(out[j].PredictionDate) })
	return out, len(out), nil
}

type mockPatientDirectory struct {
	patients map[string]*identity.Patient
}

func (m *mockPatientDirectory) GetByRoleID(_ context.Context, roleID string) (*identity.Patient, error) {
	p, ok := m.patients[roleID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return p, nil
}

type mockRecordHistory struct {
	records []*records.HealthRecord
}

func (m *mockRecordHistory) ListByPatientAsc(_ context.Context, patientID string) ([]*records.HealthRecord, error) {
	var out []*records.HealthRecord
	for _, r := range m.records {
		if r.PatientID == patientID {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeScorer struct {
	result    *scoring.PredictionResult
	err       error
	lastInput scoring.PatientInput
}

func (f *fakeScorer) Score(_ context.Context, input scoring.PatientInput) (*scoring.PredictionResult, error) {
	f.lastInput = input
	return f.result, f.err
}

func newTestService() (*Service, *mockPredictionRepo, *fakeScorer) {
	repo := &mockPredictionRepo{}
	patients := &mockPatientDirectory{patients: map[string]*identity.Patient{
		"PAT1": {RoleID: "PAT1", FullName: "Asha Rao", Age: 54},
	}}
	desc := "seasonal"
	history := &mockRecordHistory{records: []*records.HealthRecord{
		{PatientID: "PAT1", DateTime: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), Diagnosis: "flu", RiskLevel: records.RiskLow, Description: &desc},
		{PatientID: "PAT1", DateTime: time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC), Diagnosis: "hypertension", RiskLevel: records.RiskHigh},
	}}
	scorer := &fakeScorer{result: &scoring.PredictionResult{
		Predictions: []scoring.RiskPrediction{
			{Condition: "cardiac disease", RiskScore: 0.7, RiskLevel: records.RiskHigh, Recommendations: []string{"reduce sodium"}},
		},
		OverallHealthScore: 62,
		TrendDirection:     "declining",
	}}
	return NewService(repo, patients, history, scorer), repo, scorer
}

func TestDashboard_Fallback(t *testing.T) {
	svc, _, _ := newTestService()

	view, err := svc.Dashboard(context.Background(), "PAT1")
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}

	if len(view.CurrentRisks) != 0 {
		t.Errorf("currentRisks = %+v, want empty", view.CurrentRisks)
	}
	if view.HealthScore != 85 {
		t.Errorf("healthScore = %v, want 85", view.HealthScore)
	}
	if view.Trend != "stable" {
		t.Errorf("trend = %q, want stable", view.Trend)
	}
	if len(view.Recommendations) != 1 {
		t.Errorf("recommendations = %+v, want one advisory entry", view.Recommendations)
	}
}

func TestDashboard_FiltersAndCaps(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	repo.snapshots = append(repo.snapshots, &HealthPrediction{
		PatientID:      "PAT1",
		PredictionDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Predictions: []ConditionRisk{
			{Condition: "diabetes", RiskScore: 0.3, RiskLevel: records.RiskLow, Recommendations: []string{"r1", "r2"}},
			{Condition: "cardiac disease", RiskScore: 0.8, RiskLevel: records.RiskHigh, Recommendations: []string{"r3", "r4"}},
			{Condition: "stroke", RiskScore: 0.9, RiskLevel: records.RiskCritical, Recommendations: []string{"r5", "r6", "r7"}},
		},
		OverallHealthScore: 55,
		TrendDirection:     "declining",
	})

	view, err := svc.Dashboard(ctx, "PAT1")
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}

	if len(view.CurrentRisks) != 2 {
		t.Fatalf("currentRisks = %+v, want high and critical only", view.CurrentRisks)
	}
	if view.CurrentRisks[0].Condition != "cardiac disease" || view.CurrentRisks[1].Condition != "stroke" {
		t.Errorf("risks in wrong order: %+v", view.CurrentRisks)
	}

	// Concatenated in prediction order, truncated to five, including
	// entries from low-risk predictions.
	want := []string{"r1", "r2", "r3", "r4", "r5"}
	if len(view.Recommendations) != len(want) {
		t.Fatalf("recommendations = %+v", view.Recommendations)
	}
	for i, r := range want {
		if view.Recommendations[i] != r {
			t.Errorf("recommendations[%d] = %q, want %q", i, view.Recommendations[i], r)
		}
	}

	if view.HealthScore != 55 || view.Trend != "declining" {
		t.Errorf("score/trend = %v/%q, want passthrough 55/declining", view.HealthScore, view.Trend)
	}
}

func TestDashboard_UsesLatestSnapshot(t *testing.T) {
	svc, repo, _ := newTestService()

	repo.snapshots = append(repo.snapshots,
		&HealthPrediction{
			PatientID:          "PAT1",
			PredictionDate:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			OverallHealthScore: 90,
			TrendDirection:     "improving",
		},
		&HealthPrediction{
			PatientID:          "PAT1",
			PredictionDate:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			OverallHealthScore: 60,
			TrendDirection:     "declining",
		},
	)

	view, err := svc.Dashboard(context.Background(), "PAT1")
	if err != nil {
		t.Fatal(err)
	}
	if view.HealthScore != 60 {
		t.Errorf("healthScore = %v, want the newer snapshot's 60", view.HealthScore)
	}
}

func TestGenerate(t *testing.T) {
	svc, repo, scorer := newTestService()
	ctx := context.Background()

	snapshot, err := svc.Generate(ctx, "PAT1")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if scorer.lastInput.Age != 54 {
		t.Errorf("engine input age = %d, want 54", scorer.lastInput.Age)
	}
	if len(scorer.lastInput.Records) != 2 {
		t.Fatalf("engine input records = %d, want 2", len(scorer.lastInput.Records))
	}
	if scorer.lastInput.Records[0].Disease != "flu" {
		t.Errorf("history should be oldest first, got %+v", scorer.lastInput.Records[0])
	}

	if snapshot.OverallHealthScore != 62 || snapshot.TrendDirection != "declining" {
		t.Errorf("snapshot = %+v", snapshot)
	}
	if len(repo.snapshots) != 1 {
		t.Errorf("persisted snapshots = %d, want 1", len(repo.snapshots))
	}
}

func TestGenerate_EngineFailure(t *testing.T) {
	svc, repo, scorer := newTestService()
	scorer.result = nil
	scorer.err = fmt.Errorf("model load failed")

	_, err := svc.Generate(context.Background(), "PAT1")
	if !apperror.Is(err, apperror.KindGenerationFailed) {
		t.Errorf("expected GenerationFailed, got %v", err)
	}
	if len(repo.snapshots) != 0 {
		t.Error("nothing may be persisted on failure")
	}
}

func TestGenerate_UnknownPatient(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Generate(context.Background(), "GHOST")
	if !apperror.Is(err, apperror.KindNotFound) {
		t.Errorf("expected NotFound, got %v", err)
	}
}
