package labs

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/clinicore/clinicore/internal/platform/apperror"
)

type mockLabRepo struct {
	panels map[uuid.UUID]*LabResult
}

func newMockLabRepo() *mockLabRepo {
	return &mockLabRepo{panels: make(map[uuid.UUID]*LabResult)}
}

func (m *mockLabRepo) Create(_ context.Context, l *LabResult) error {
	l.ID = uuid.New()
	cp := *l
	m.panels[l.ID] = &cp
	return nil
}

func (m *mockLabRepo) GetByID(_ context.Context, id uuid.UUID) (*LabResult, error) {
	l, ok := m.panels[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *l
	return &cp, nil
}

func (m *mockLabRepo) Update(_ context.Context, l *LabResult) error {
	if _, ok := m.panels[l.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *l
	m.panels[l.ID] = &cp
	return nil
}

func (m *mockLabRepo) ListByPatient(_ context.Context, patientID string, limit, offset int) ([]*LabResult, int, error) {
	asc, err := m.ListByPatientAsc(context.Background(), patientID)
	if err != nil {
		return nil, 0, err
	}
	for i, j := 0, len(asc)-1; i < j; i, j = i+1, j-1 {
		asc[i], asc[j] = asc[j], asc[i]
	}
	return asc, len(asc), nil
}

func (m *mockLabRepo) ListByPatientAsc(_ context.Context, patientID string) ([]*LabResult, error) {
	var out []*LabResult
	for _, l := range m.panels {
		if l.PatientID == patientID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TestDate.Before(out[j].TestDate) })
	return out, nil
}

func TestCreateLabResult_DerivesStatus(t *testing.T) {
	svc := NewService(newMockLabRepo())
	ctx := context.Background()

	panel, err := svc.CreateLabResult(ctx, CreateLabResultInput{
		PatientID: "PAT1",
		TestType:  "blood",
		Results: []ResultEntry{
			{TestName: "glucose", Value: 150, NormalRange: &Range{Min: 80, Max: 120}, Severity: SeverityModerate},
			{TestName: "sodium", Value: 140, NormalRange: &Range{Min: 135, Max: 145}},
		},
	})
	if err != nil {
		t.Fatalf("CreateLabResult: %v", err)
	}

	if panel.OverallStatus != SeverityModerate {
		t.Errorf("overallStatus = %q, want moderate", panel.OverallStatus)
	}
	if !panel.Results[0].IsAbnormal {
		t.Error("out-of-range glucose should be flagged abnormal")
	}
	if panel.Results[1].IsAbnormal {
		t.Error("in-range sodium should not be flagged abnormal")
	}
	if panel.Results[1].Severity != SeverityNormal {
		t.Errorf("missing severity should default to normal, got %q", panel.Results[1].Severity)
	}
}

func TestCreateLabResult_Validation(t *testing.T) {
	svc := NewService(newMockLabRepo())
	ctx := context.Background()

	cases := []struct {
		name string
		in   CreateLabResultInput
	}{
		{"missing patient", CreateLabResultInput{TestType: "blood", Results: []ResultEntry{{TestName: "x"}}}},
		{"missing type", CreateLabResultInput{PatientID: "PAT1", Results: []ResultEntry{{TestName: "x"}}}},
		{"empty results", CreateLabResultInput{PatientID: "PAT1", TestType: "blood"}},
		{"nameless entry", CreateLabResultInput{PatientID: "PAT1", TestType: "blood", Results: []ResultEntry{{Value: 1}}}},
		{"bad severity", CreateLabResultInput{PatientID: "PAT1", TestType: "blood", Results: []ResultEntry{{TestName: "x", Severity: "huge"}}}},
		{"inverted range", CreateLabResultInput{PatientID: "PAT1", TestType: "blood", Results: []ResultEntry{{TestName: "x", NormalRange: &Range{Min: 10, Max: 5}}}}},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateLabResult(ctx, tt.in); !apperror.Is(err, apperror.KindValidationFailed) {
				t.Errorf("expected ValidationFailed, got %v", err)
			}
		})
	}
}

func TestUpdateLabResult_RederivesStatus(t *testing.T) {
	svc := NewService(newMockLabRepo())
	ctx := context.Background()

	panel, err := svc.CreateLabResult(ctx, CreateLabResultInput{
		PatientID: "PAT1",
		TestType:  "blood",
		Results:   []ResultEntry{{TestName: "glucose", Value: 100, Severity: SeveritySevere}},
	})
	if err != nil {
		t.Fatal(err)
	}

	updated, err := svc.UpdateLabResult(ctx, panel.ID, CreateLabResultInput{
		Results: []ResultEntry{{TestName: "glucose", Value: 100}},
	})
	if err != nil {
		t.Fatalf("UpdateLabResult: %v", err)
	}
	if updated.OverallStatus != SeverityNormal {
		t.Errorf("overallStatus = %q, want normal after update", updated.OverallStatus)
	}
}

func TestTrend_ThroughService(t *testing.T) {
	repo := newMockLabRepo()
	svc := NewService(repo)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, v := range []float64{130, 130, 130, 95, 95, 95} {
		d := base.AddDate(0, 0, i*7)
		if _, err := svc.CreateLabResult(ctx, CreateLabResultInput{
			PatientID: "PAT1",
			TestDate:  &d,
			TestType:  "blood",
			Results: []ResultEntry{{
				TestName:    "glucose",
				Value:       v,
				NormalRange: &Range{Min: 80, Max: 120},
			}},
		}); err != nil {
			t.Fatal(err)
		}
	}

	result, err := svc.Trend(ctx, "PAT1", "glucose")
	if err != nil {
		t.Fatalf("Trend: %v", err)
	}
	if result.Trend != TrendImproving {
		t.Errorf("trend = %q, want improving", result.Trend)
	}

	if _, err := svc.Trend(ctx, "PAT1", ""); !apperror.Is(err, apperror.KindValidationFailed) {
		t.Errorf("expected ValidationFailed for empty testName, got %v", err)
	}
}
