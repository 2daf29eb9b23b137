package prediction

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type predictionRepoPG struct{ pool *pgxpool.Pool }

func NewPredictionRepoPG(pool *pgxpool.Pool) PredictionRepository {
	return &predictionRepoPG{pool: pool}
}

const predictionCols = `id, patient_id, prediction_date, predictions, overall_health_score,
	trend_direction, created_at`

func scanPrediction(row pgx.Row) (*HealthPrediction, error) {
	var p HealthPrediction
	err := row.Scan(&p.ID, &p.PatientID, &p.PredictionDate, &p.Predictions,
		&p.OverallHealthScore, &p.TrendDirection, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *predictionRepoPG) Create(ctx context.Context, p *HealthPrediction) error {
	p.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO health_predictions (id, patient_id, prediction_date, predictions,
			overall_health_score, trend_direction)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		p.ID, p.PatientID, p.PredictionDate, p.Predictions,
		p.OverallHealthScore, p.TrendDirection)
	return err
}

func (r *predictionRepoPG) GetLatestByPatient(ctx context.Context, patientID string) (*HealthPrediction, error) {
	return scanPrediction(r.pool.QueryRow(ctx, `
		SELECT `+predictionCols+` FROM health_predictions
		WHERE LOWER(patient_id) = LOWER($1)
		ORDER BY prediction_date DESC LIMIT 1`,
		patientID))
}

func (r *predictionRepoPG) ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]*HealthPrediction, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM health_predictions WHERE LOWER(patient_id) = LOWER($1)`,
		patientID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+predictionCols+` FROM health_predictions
		WHERE LOWER(patient_id) = LOWER($1)
		ORDER BY prediction_date DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var preds []*HealthPrediction
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, 0, err
		}
		preds = append(preds, p)
	}
	return preds, total, rows.Err()
}
