package prediction

import "context"

// PredictionRepository stores risk snapshots. There is no update or
// delete; snapshots are immutable once written.
type PredictionRepository interface {
	Create(ctx context.Context, p *HealthPrediction) error
	// GetLatestByPatient returns the most recent snapshot by
	// prediction date, or pgx.ErrNoRows when none exists.
	GetLatestByPatient(ctx context.Context, patientID string) (*HealthPrediction, error)
	// ListByPatient returns snapshots newest first.
	ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]*HealthPrediction, int, error)
}
