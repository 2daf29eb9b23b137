package records

import (
	"context"

	"github.com/google/uuid"
)

type RecordRepository interface {
	Create(ctx context.Context, r *HealthRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*HealthRecord, error)
	Update(ctx context.Context, r *HealthRecord) error
	// ListByPatient returns records newest first.
	ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]*HealthRecord, int, error)
	// ListByPatientAsc returns the full history oldest first, for
	// consumers that feed chronological sequences downstream.
	ListByPatientAsc(ctx context.Context, patientID string) ([]*HealthRecord, error)
}

type NoteRepository interface {
	Create(ctx context.Context, n *DoctorNote) error
	ListByRecord(ctx context.Context, recordID uuid.UUID) ([]*DoctorNote, error)
}
