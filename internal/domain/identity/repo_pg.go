package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// =========== User Repository ===========

type userRepoPG struct{ pool *pgxpool.Pool }

func NewUserRepoPG(pool *pgxpool.Pool) UserRepository {
	return &userRepoPG{pool: pool}
}

const userCols = `id, role_id, role, password_hash, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.RoleID, &u.Role, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepoPG) Create(ctx context.Context, u *User) error {
	u.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, role_id, role, password_hash)
		VALUES ($1,$2,$3,$4)`,
		u.ID, u.RoleID, u.Role, u.PasswordHash)
	return err
}

func (r *userRepoPG) GetByRoleID(ctx context.Context, roleID, role string) (*User, error) {
	return scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userCols+` FROM users
		WHERE LOWER(role_id) = LOWER($1) AND role = $2`,
		roleID, role))
}

func (r *userRepoPG) UpdatePassword(ctx context.Context, roleID, role, passwordHash string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET password_hash = $3, updated_at = NOW()
		WHERE LOWER(role_id) = LOWER($1) AND role = $2`,
		roleID, role, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// =========== Patient Repository ===========

type patientRepoPG struct{ pool *pgxpool.Pool }

func NewPatientRepoPG(pool *pgxpool.Pool) PatientRepository {
	return &patientRepoPG{pool: pool}
}

const patientCols = `id, role_id, full_name, age, gender, blood_group, phone, email, address, created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.RoleID, &p.FullName, &p.Age, &p.Gender, &p.BloodGroup,
		&p.Phone, &p.Email, &p.Address, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *patientRepoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO patients (id, role_id, full_name, age, gender, blood_group, phone, email, address)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		p.ID, p.RoleID, p.FullName, p.Age, p.Gender, p.BloodGroup, p.Phone, p.Email, p.Address)
	return err
}

func (r *patientRepoPG) GetByRoleID(ctx context.Context, roleID string) (*Patient, error) {
	return scanPatient(r.pool.QueryRow(ctx, `
		SELECT `+patientCols+` FROM patients WHERE LOWER(role_id) = LOWER($1)`, roleID))
}

func (r *patientRepoPG) Update(ctx context.Context, p *Patient) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE patients SET full_name=$2, age=$3, gender=$4, blood_group=$5,
			phone=$6, email=$7, address=$8, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.FullName, p.Age, p.Gender, p.BloodGroup, p.Phone, p.Email, p.Address)
	return err
}

func (r *patientRepoPG) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM patients`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+patientCols+` FROM patients ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var patients []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		patients = append(patients, p)
	}
	return patients, total, rows.Err()
}

// =========== Hospital Repository ===========

type hospitalRepoPG struct{ pool *pgxpool.Pool }

func NewHospitalRepoPG(pool *pgxpool.Pool) HospitalRepository {
	return &hospitalRepoPG{pool: pool}
}

const hospitalCols = `id, role_id, name, address, phone, email, created_at, updated_at`

func scanHospital(row pgx.Row) (*Hospital, error) {
	var h Hospital
	err := row.Scan(&h.ID, &h.RoleID, &h.Name, &h.Address, &h.Phone, &h.Email, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *hospitalRepoPG) Create(ctx context.Context, h *Hospital) error {
	h.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO hospitals (id, role_id, name, address, phone, email)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		h.ID, h.RoleID, h.Name, h.Address, h.Phone, h.Email)
	return err
}

func (r *hospitalRepoPG) GetByRoleID(ctx context.Context, roleID string) (*Hospital, error) {
	return scanHospital(r.pool.QueryRow(ctx, `
		SELECT `+hospitalCols+` FROM hospitals WHERE LOWER(role_id) = LOWER($1)`, roleID))
}

func (r *hospitalRepoPG) Update(ctx context.Context, h *Hospital) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE hospitals SET name=$2, address=$3, phone=$4, email=$5, updated_at=NOW()
		WHERE id = $1`,
		h.ID, h.Name, h.Address, h.Phone, h.Email)
	return err
}

func (r *hospitalRepoPG) List(ctx context.Context, limit, offset int) ([]*Hospital, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM hospitals`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+hospitalCols+` FROM hospitals ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var hospitals []*Hospital
	for rows.Next() {
		h, err := scanHospital(rows)
		if err != nil {
			return nil, 0, err
		}
		hospitals = append(hospitals, h)
	}
	return hospitals, total, rows.Err()
}

// =========== Doctor Repository ===========

type doctorRepoPG struct{ pool *pgxpool.Pool }

func NewDoctorRepoPG(pool *pgxpool.Pool) DoctorRepository {
	return &doctorRepoPG{pool: pool}
}

const doctorCols = `id, role_id, hospital_id, full_name, specialization, phone, email, created_at, updated_at`

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(&d.ID, &d.RoleID, &d.HospitalID, &d.FullName, &d.Specialization,
		&d.Phone, &d.Email, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *doctorRepoPG) Create(ctx context.Context, d *Doctor) error {
	d.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO doctors (id, role_id, hospital_id, full_name, specialization, phone, email)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		d.ID, d.RoleID, d.HospitalID, d.FullName, d.Specialization, d.Phone, d.Email)
	return err
}

func (r *doctorRepoPG) GetByRoleID(ctx context.Context, roleID string) (*Doctor, error) {
	return scanDoctor(r.pool.QueryRow(ctx, `
		SELECT `+doctorCols+` FROM doctors WHERE LOWER(role_id) = LOWER($1)`, roleID))
}

func (r *doctorRepoPG) Update(ctx context.Context, d *Doctor) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE doctors SET hospital_id=$2, full_name=$3, specialization=$4,
			phone=$5, email=$6, updated_at=NOW()
		WHERE id = $1`,
		d.ID, d.HospitalID, d.FullName, d.Specialization, d.Phone, d.Email)
	return err
}

func (r *doctorRepoPG) ListByHospital(ctx context.Context, hospitalID string, limit, offset int) ([]*Doctor, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM doctors WHERE LOWER(hospital_id) = LOWER($1)`, hospitalID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+doctorCols+` FROM doctors
		WHERE LOWER(hospital_id) = LOWER($1)
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		hospitalID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var doctors []*Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, 0, err
		}
		doctors = append(doctors, d)
	}
	return doctors, total, rows.Err()
}
