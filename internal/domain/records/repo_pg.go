package records

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type recordRepoPG struct{ pool *pgxpool.Pool }

func NewRecordRepoPG(pool *pgxpool.Pool) RecordRepository {
	return &recordRepoPG{pool: pool}
}

const recordCols = `id, patient_id, hospital_id, doctor_id, date_time, diagnosis, description,
	treatment, prescription, risk_level, emergency_warnings, is_editable, editable_until,
	created_at, updated_at`

func scanRecord(row pgx.Row) (*HealthRecord, error) {
	var r HealthRecord
	err := row.Scan(&r.ID, &r.PatientID, &r.HospitalID, &r.DoctorID, &r.DateTime, &r.Diagnosis,
		&r.Description, &r.Treatment, &r.Prescription, &r.RiskLevel, &r.EmergencyWarnings,
		&r.IsEditable, &r.EditableUntil, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *recordRepoPG) Create(ctx context.Context, rec *HealthRecord) error {
	rec.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO health_records (id, patient_id, hospital_id, doctor_id, date_time, diagnosis,
			description, treatment, prescription, risk_level, emergency_warnings,
			is_editable, editable_until)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		rec.ID, rec.PatientID, rec.HospitalID, rec.DoctorID, rec.DateTime, rec.Diagnosis,
		rec.Description, rec.Treatment, rec.Prescription, rec.RiskLevel, rec.EmergencyWarnings,
		rec.IsEditable, rec.EditableUntil)
	return err
}

func (r *recordRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*HealthRecord, error) {
	return scanRecord(r.pool.QueryRow(ctx, `
		SELECT `+recordCols+` FROM health_records WHERE id = $1`, id))
}

func (r *recordRepoPG) Update(ctx context.Context, rec *HealthRecord) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE health_records SET date_time=$2, diagnosis=$3, description=$4, treatment=$5,
			prescription=$6, risk_level=$7, emergency_warnings=$8, updated_at=$9
		WHERE id = $1`,
		rec.ID, rec.DateTime, rec.Diagnosis, rec.Description, rec.Treatment,
		rec.Prescription, rec.RiskLevel, rec.EmergencyWarnings, rec.UpdatedAt)
	return err
}

func (r *recordRepoPG) ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]*HealthRecord, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM health_records WHERE LOWER(patient_id) = LOWER($1)`,
		patientID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+recordCols+` FROM health_records
		WHERE LOWER(patient_id) = LOWER($1)
		ORDER BY date_time DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var recs []*HealthRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		recs = append(recs, rec)
	}
	return recs, total, rows.Err()
}

func (r *recordRepoPG) ListByPatientAsc(ctx context.Context, patientID string) ([]*HealthRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+recordCols+` FROM health_records
		WHERE LOWER(patient_id) = LOWER($1)
		ORDER BY date_time ASC`,
		patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*HealthRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

type noteRepoPG struct{ pool *pgxpool.Pool }

func NewNoteRepoPG(pool *pgxpool.Pool) NoteRepository {
	return &noteRepoPG{pool: pool}
}

func (r *noteRepoPG) Create(ctx context.Context, n *DoctorNote) error {
	n.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO doctor_notes (id, record_id, doctor_id, note)
		VALUES ($1,$2,$3,$4)`,
		n.ID, n.RecordID, n.DoctorID, n.Note)
	return err
}

func (r *noteRepoPG) ListByRecord(ctx context.Context, recordID uuid.UUID) ([]*DoctorNote, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, record_id, doctor_id, note, created_at
		FROM doctor_notes WHERE record_id = $1 ORDER BY created_at ASC`,
		recordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []*DoctorNote
	for rows.Next() {
		var n DoctorNote
		if err := rows.Scan(&n.ID, &n.RecordID, &n.DoctorID, &n.Note, &n.CreatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, &n)
	}
	return notes, rows.Err()
}
