package labs

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/clinicore/clinicore/internal/platform/apperror"
)

// Service validates and stores lab panels and answers trend and summary
// queries over a patient's history.
type Service struct {
	results LabResultRepository
	now     func() time.Time
}

func NewService(results LabResultRepository) *Service {
	return &Service{results: results, now: time.Now}
}

// CreateLabResultInput carries the client-supplied fields for a panel.
type CreateLabResultInput struct {
	PatientID string        `json:"patientId"`
	TestDate  *time.Time    `json:"testDate,omitempty"`
	TestType  string        `json:"testType"`
	OrderedBy *string       `json:"orderedBy,omitempty"`
	LabName   *string       `json:"labName,omitempty"`
	Results   []ResultEntry `json:"results"`
}

func validateEntries(entries []ResultEntry) error {
	if len(entries) == 0 {
		return apperror.ValidationFailed("results must contain at least one entry")
	}
	for _, e := range entries {
		if e.TestName == "" {
			return apperror.ValidationFailed("every result entry needs a testName")
		}
		if e.Severity != "" && !ValidSeverity(e.Severity) {
			return apperror.Newf(apperror.KindValidationFailed, "unknown severity %q", e.Severity)
		}
		if e.NormalRange != nil && e.NormalRange.Min > e.NormalRange.Max {
			return apperror.ValidationFailed("normalRange min must not exceed max")
		}
	}
	return nil
}

// normalizeEntries fills derived fields: a missing severity defaults to
// normal, and IsAbnormal is recomputed from the reference range when
// one is present.
func normalizeEntries(entries []ResultEntry) []ResultEntry {
	out := make([]ResultEntry, len(entries))
	for i, e := range entries {
		if e.Severity == "" {
			e.Severity = SeverityNormal
		}
		if e.NormalRange != nil {
			e.IsAbnormal = e.Value < e.NormalRange.Min || e.Value > e.NormalRange.Max
		}
		out[i] = e
	}
	return out
}

// CreateLabResult stores a new panel. OverallStatus is derived from the
// worst entry severity at write time.
func (s *Service) CreateLabResult(ctx context.Context, in CreateLabResultInput) (*LabResult, error) {
	if in.PatientID == "" {
		return nil, apperror.ValidationFailed("patientId is required")
	}
	if in.TestType == "" {
		return nil, apperror.ValidationFailed("testType is required")
	}
	if err := validateEntries(in.Results); err != nil {
		return nil, err
	}

	testDate := s.now()
	if in.TestDate != nil {
		testDate = *in.TestDate
	}

	entries := normalizeEntries(in.Results)
	panel := &LabResult{
		PatientID:     in.PatientID,
		TestDate:      testDate,
		TestType:      in.TestType,
		OrderedBy:     in.OrderedBy,
		LabName:       in.LabName,
		Results:       entries,
		OverallStatus: DeriveOverallStatus(entries),
	}
	if err := s.results.Create(ctx, panel); err != nil {
		return nil, apperror.Wrap(apperror.KindUnknown, "create lab result", err)
	}
	return panel, nil
}

// GetLabResult returns one panel by id.
func (s *Service) GetLabResult(ctx context.Context, id uuid.UUID) (*LabResult, error) {
	panel, err := s.results.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("lab result")
		}
		return nil, apperror.Wrap(apperror.KindUnknown, "load lab result", err)
	}
	return panel, nil
}

// UpdateLabResult replaces a panel's entries and rederives its status.
// Lab panels carry no edit window.
func (s *Service) UpdateLabResult(ctx context.Context, id uuid.UUID, in CreateLabResultInput) (*LabResult, error) {
	panel, err := s.GetLabResult(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Results != nil {
		if err := validateEntries(in.Results); err != nil {
			return nil, err
		}
		panel.Results = normalizeEntries(in.Results)
		panel.OverallStatus = DeriveOverallStatus(panel.Results)
	}
	if in.TestDate != nil {
		panel.TestDate = *in.TestDate
	}
	if in.TestType != "" {
		panel.TestType = in.TestType
	}
	if in.OrderedBy != nil {
		panel.OrderedBy = in.OrderedBy
	}
	if in.LabName != nil {
		panel.LabName = in.LabName
	}

	if err := s.results.Update(ctx, panel); err != nil {
		return nil, apperror.Wrap(apperror.KindUnknown, "update lab result", err)
	}
	return panel, nil
}

// ListByPatient returns a page of a patient's panels, newest first.
func (s *Service) ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]*LabResult, int, error) {
	return s.results.ListByPatient(ctx, patientID, limit, offset)
}

// Trend classifies the direction of one test across a patient's history.
func (s *Service) Trend(ctx context.Context, patientID, testName string) (*TrendResult, error) {
	if testName == "" {
		return nil, apperror.ValidationFailed("testName is required")
	}

	panels, err := s.results.ListByPatientAsc(ctx, patientID)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindUnknown, "load lab history", err)
	}

	result := BuildTrend(panels, testName)
	return &result, nil
}

// Summarize computes descriptive statistics for one test across a
// patient's history.
func (s *Service) Summarize(ctx context.Context, patientID, testName string) (*Summary, error) {
	if testName == "" {
		return nil, apperror.ValidationFailed("testName is required")
	}

	panels, err := s.results.ListByPatientAsc(ctx, patientID)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindUnknown, "load lab history", err)
	}

	summary := BuildSummary(panels, testName)
	return &summary, nil
}
