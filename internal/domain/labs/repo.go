package labs

import (
	"context"

	"github.com/google/uuid"
)

type LabResultRepository interface {
	Create(ctx context.Context, l *LabResult) error
	GetByID(ctx context.Context, id uuid.UUID) (*LabResult, error)
	Update(ctx context.Context, l *LabResult) error
	// ListByPatient returns panels newest first.
	ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]*LabResult, int, error)
	// ListByPatientAsc returns the full panel history oldest first,
	// the order the trend classifier consumes.
	ListByPatientAsc(ctx context.Context, patientID string) ([]*LabResult, error)
}
