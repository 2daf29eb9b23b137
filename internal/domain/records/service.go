package records

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/clinicore/clinicore/internal/platform/apperror"
	"github.com/clinicore/clinicore/internal/platform/scoring"
)

const editWindow = time.Hour

// Service owns the record lifecycle: creation stamps the edit window,
// every update re-evaluates the lock, notes are append-only, and
// summaries are delegated to the external summarizer.
type Service struct {
	records    RecordRepository
	notes      NoteRepository
	summarizer scoring.Summarizer
	now        func() time.Time
}

func NewService(records RecordRepository, notes NoteRepository, summarizer scoring.Summarizer) *Service {
	return &Service{
		records:    records,
		notes:      notes,
		summarizer: summarizer,
		now:        time.Now,
	}
}

// CreateRecordInput carries the client-supplied fields for a new record.
// Edit-window fields are ignored even if a client sends them.
type CreateRecordInput struct {
	PatientID         string     `json:"patientId"`
	HospitalID        string     `json:"hospitalId"`
	DoctorID          string     `json:"doctorId"`
	DateTime          *time.Time `json:"dateTime,omitempty"`
	Diagnosis         string     `json:"diagnosis"`
	Description       *string    `json:"description,omitempty"`
	Treatment         *string    `json:"treatment,omitempty"`
	Prescription      *string    `json:"prescription,omitempty"`
	RiskLevel         string     `json:"riskLevel"`
	EmergencyWarnings []string   `json:"emergencyWarnings,omitempty"`
}

// UpdateRecordInput is a partial patch; nil fields are left untouched.
type UpdateRecordInput struct {
	DateTime          *time.Time `json:"dateTime,omitempty"`
	Diagnosis         *string    `json:"diagnosis,omitempty"`
	Description       *string    `json:"description,omitempty"`
	Treatment         *string    `json:"treatment,omitempty"`
	Prescription      *string    `json:"prescription,omitempty"`
	RiskLevel         *string    `json:"riskLevel,omitempty"`
	EmergencyWarnings []string   `json:"emergencyWarnings,omitempty"`
}

// CreateRecord stores a new encounter. The edit window is set server
// side: IsEditable true and EditableUntil one hour from now.
func (s *Service) CreateRecord(ctx context.Context, in CreateRecordInput) (*HealthRecord, error) {
	if in.PatientID == "" {
		return nil, apperror.ValidationFailed("patientId is required")
	}
	if in.HospitalID == "" {
		return nil, apperror.ValidationFailed("hospitalId is required")
	}
	if in.Diagnosis == "" {
		return nil, apperror.ValidationFailed("diagnosis is required")
	}
	if !ValidRiskLevel(in.RiskLevel) {
		return nil, apperror.ValidationFailed("riskLevel must be one of low, medium, high, critical")
	}

	now := s.now()
	dateTime := now
	if in.DateTime != nil {
		dateTime = *in.DateTime
	}
	deadline := now.Add(editWindow)

	rec := &HealthRecord{
		PatientID:         in.PatientID,
		HospitalID:        in.HospitalID,
		DoctorID:          in.DoctorID,
		DateTime:          dateTime,
		Diagnosis:         in.Diagnosis,
		Description:       in.Description,
		Treatment:         in.Treatment,
		Prescription:      in.Prescription,
		RiskLevel:         in.RiskLevel,
		EmergencyWarnings: in.EmergencyWarnings,
		IsEditable:        true,
		EditableUntil:     &deadline,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.records.Create(ctx, rec); err != nil {
		return nil, apperror.Wrap(apperror.KindUnknown, "create record", err)
	}
	return rec, nil
}

// GetRecord returns one record by id.
func (s *Service) GetRecord(ctx context.Context, id uuid.UUID) (*HealthRecord, error) {
	rec, err := s.records.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("record")
		}
		return nil, apperror.Wrap(apperror.KindUnknown, "load record", err)
	}
	return rec, nil
}

// UpdateRecord applies a patch if the record is still inside its edit
// window. The check and the write are not atomic; two edits racing the
// deadline can both pass, last write wins.
func (s *Service) UpdateRecord(ctx context.Context, id uuid.UUID, in UpdateRecordInput) (*HealthRecord, error) {
	rec, err := s.GetRecord(ctx, id)
	if err != nil {
		return nil, err
	}

	if Locked(rec, s.now()) {
		return nil, apperror.New(apperror.KindRecordLocked, "record is outside its edit window")
	}

	if in.RiskLevel != nil && !ValidRiskLevel(*in.RiskLevel) {
		return nil, apperror.ValidationFailed("riskLevel must be one of low, medium, high, critical")
	}

	if in.DateTime != nil {
		rec.DateTime = *in.DateTime
	}
	if in.Diagnosis != nil {
		rec.Diagnosis = *in.Diagnosis
	}
	if in.Description != nil {
		rec.Description = in.Description
	}
	if in.Treatment != nil {
		rec.Treatment = in.Treatment
	}
	if in.Prescription != nil {
		rec.Prescription = in.Prescription
	}
	if in.RiskLevel != nil {
		rec.RiskLevel = *in.RiskLevel
	}
	if in.EmergencyWarnings != nil {
		rec.EmergencyWarnings = in.EmergencyWarnings
	}
	rec.UpdatedAt = s.now()

	if err := s.records.Update(ctx, rec); err != nil {
		return nil, apperror.Wrap(apperror.KindUnknown, "update record", err)
	}
	return rec, nil
}

// ListByPatient returns a page of a patient's records, newest first.
func (s *Service) ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]*HealthRecord, int, error) {
	return s.records.ListByPatient(ctx, patientID, limit, offset)
}

// History returns a patient's full record history, oldest first.
func (s *Service) History(ctx context.Context, patientID string) ([]*HealthRecord, error) {
	return s.records.ListByPatientAsc(ctx, patientID)
}

// AddNote attaches a doctor's annotation to a record. Notes are not
// subject to the edit window and can be added to locked records.
func (s *Service) AddNote(ctx context.Context, recordID uuid.UUID, doctorID, note string) (*DoctorNote, error) {
	if note == "" {
		return nil, apperror.ValidationFailed("note is required")
	}
	if _, err := s.GetRecord(ctx, recordID); err != nil {
		return nil, err
	}

	n := &DoctorNote{RecordID: recordID, DoctorID: doctorID, Note: note, CreatedAt: s.now()}
	if err := s.notes.Create(ctx, n); err != nil {
		return nil, apperror.Wrap(apperror.KindUnknown, "create note", err)
	}
	return n, nil
}

// ListNotes returns a record's annotations in the order they were added.
func (s *Service) ListNotes(ctx context.Context, recordID uuid.UUID) ([]*DoctorNote, error) {
	notes, err := s.notes.ListByRecord(ctx, recordID)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindUnknown, "list notes", err)
	}
	return notes, nil
}

// Summarize asks the external summarizer for a plain-language summary
// of one record. Collaborator failures surface as GenerationFailed.
func (s *Service) Summarize(ctx context.Context, recordID uuid.UUID) (string, error) {
	rec, err := s.GetRecord(ctx, recordID)
	if err != nil {
		return "", err
	}

	input := scoring.RecordInput{
		Date:    rec.DateTime.Format(time.RFC3339),
		Disease: rec.Diagnosis,
		Risk:    rec.RiskLevel,
	}
	if rec.Description != nil {
		input.Description = *rec.Description
	}
	if rec.Treatment != nil {
		input.Treatment = *rec.Treatment
	}

	summary, err := s.summarizer.Summarize(ctx, input)
	if err != nil {
		return "", apperror.Wrap(apperror.KindGenerationFailed, "summarize record", err)
	}
	return summary, nil
}
