package labs

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type labResultRepoPG struct{ pool *pgxpool.Pool }

func NewLabResultRepoPG(pool *pgxpool.Pool) LabResultRepository {
	return &labResultRepoPG{pool: pool}
}

const labCols = `id, patient_id, test_date, test_type, ordered_by, lab_name, results,
	overall_status, created_at, updated_at`

func scanLabResult(row pgx.Row) (*LabResult, error) {
	var l LabResult
	err := row.Scan(&l.ID, &l.PatientID, &l.TestDate, &l.TestType, &l.OrderedBy, &l.LabName,
		&l.Results, &l.OverallStatus, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *labResultRepoPG) Create(ctx context.Context, l *LabResult) error {
	l.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO lab_results (id, patient_id, test_date, test_type, ordered_by, lab_name,
			results, overall_status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		l.ID, l.PatientID, l.TestDate, l.TestType, l.OrderedBy, l.LabName,
		l.Results, l.OverallStatus)
	return err
}

func (r *labResultRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*LabResult, error) {
	return scanLabResult(r.pool.QueryRow(ctx, `
		SELECT `+labCols+` FROM lab_results WHERE id = $1`, id))
}

func (r *labResultRepoPG) Update(ctx context.Context, l *LabResult) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE lab_results SET test_date=$2, test_type=$3, ordered_by=$4, lab_name=$5,
			results=$6, overall_status=$7, updated_at=NOW()
		WHERE id = $1`,
		l.ID, l.TestDate, l.TestType, l.OrderedBy, l.LabName, l.Results, l.OverallStatus)
	return err
}

func (r *labResultRepoPG) ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]*LabResult, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM lab_results WHERE LOWER(patient_id) = LOWER($1)`,
		patientID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+labCols+` FROM lab_results
		WHERE LOWER(patient_id) = LOWER($1)
		ORDER BY test_date DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var panels []*LabResult
	for rows.Next() {
		l, err := scanLabResult(rows)
		if err != nil {
			return nil, 0, err
		}
		panels = append(panels, l)
	}
	return panels, total, rows.Err()
}

func (r *labResultRepoPG) ListByPatientAsc(ctx context.Context, patientID string) ([]*LabResult, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+labCols+` FROM lab_results
		WHERE LOWER(patient_id) = LOWER($1)
		ORDER BY test_date ASC`,
		patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var panels []*LabResult
	for rows.Next() {
		l, err := scanLabResult(rows)
		if err != nil {
			return nil, err
		}
		panels = append(panels, l)
	}
	return panels, rows.Err()
}
