package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/clinicore/clinicore/internal/platform/apperror"
	"github.com/clinicore/clinicore/internal/platform/auth"
)

// Service owns registration, login, and profile management for all three
// roles. Duplicate registration is caught by a case-insensitive pre-check
// rather than a unique index, so a race between two concurrent
// registrations with the same id can still create duplicates.
type Service struct {
	users     UserRepository
	patients  PatientRepository
	hospitals HospitalRepository
	doctors   DoctorRepository
}

func NewService(users UserRepository, patients PatientRepository, hospitals HospitalRepository, doctors DoctorRepository) *Service {
	return &Service{
		users:     users,
		patients:  patients,
		hospitals: hospitals,
		doctors:   doctors,
	}
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// RegisterPatientInput carries everything needed to create a patient
// credential plus profile.
type RegisterPatientInput struct {
	RoleID   string `json:"roleId"`
	Password string `json:"password"`
	Patient  Patient
}

// RegisterHospitalInput mirrors RegisterPatientInput for hospitals.
type RegisterHospitalInput struct {
	RoleID   string `json:"roleId"`
	Password string `json:"password"`
	Hospital Hospital
}

// RegisterDoctorInput mirrors RegisterPatientInput for doctors.
type RegisterDoctorInput struct {
	RoleID   string `json:"roleId"`
	Password string `json:"password"`
	Doctor   Doctor
}

func (s *Service) register(ctx context.Context, roleID, role, password string) (*User, error) {
	roleID = strings.TrimSpace(roleID)
	if roleID == "" {
		return nil, apperror.ValidationFailed("roleId is required")
	}
	if len(password) < 6 {
		return nil, apperror.ValidationFailed("password must be at least 6 characters")
	}

	existing, err := s.users.GetByRoleID(ctx, roleID, role)
	if err != nil && !isNoRows(err) {
		return nil, apperror.Wrap(apperror.KindUnknown, "look up existing user", err)
	}
	if existing != nil {
		return nil, apperror.New(apperror.KindConflict, "an account with this id already exists")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindUnknown, "hash password", err)
	}

	u := &User{RoleID: roleID, Role: role, PasswordHash: hash}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, apperror.Wrap(apperror.KindUnknown, "create user", err)
	}
	return u, nil
}

// RegisterPatient creates a patient credential and profile.
func (s *Service) RegisterPatient(ctx context.Context, in RegisterPatientInput) (*Patient, error) {
	if in.Patient.FullName == "" {
		return nil, apperror.ValidationFailed("fullName is required")
	}
	if in.Patient.Age < 0 || in.Patient.Age > 150 {
		return nil, apperror.ValidationFailed("age must be between 0 and 150")
	}

	u, err := s.register(ctx, in.RoleID, RolePatient, in.Password)
	if err != nil {
		return nil, err
	}

	p := in.Patient
	p.RoleID = u.RoleID
	if err := s.patients.Create(ctx, &p); err != nil {
		return nil, apperror.Wrap(apperror.KindUnknown, "create patient profile", err)
	}
	return &p, nil
}

// RegisterHospital creates a hospital credential and profile.
func (s *Service) RegisterHospital(ctx context.Context, in RegisterHospitalInput) (*Hospital, error) {
	if in.Hospital.Name == "" {
		return nil, apperror.ValidationFailed("name is required")
	}

	u, err := s.register(ctx, in.RoleID, RoleHospital, in.Password)
	if err != nil {
		return nil, err
	}

	h := in.Hospital
	h.RoleID = u.RoleID
	if err := s.hospitals.Create(ctx, &h); err != nil {
		return nil, apperror.Wrap(apperror.KindUnknown, "create hospital profile", err)
	}
	return &h, nil
}

// RegisterDoctor creates a doctor credential and profile. The hospital
// the doctor is scoped to must already exist.
func (s *Service) RegisterDoctor(ctx context.Context, in RegisterDoctorInput) (*Doctor, error) {
	if in.Doctor.FullName == "" {
		return nil, apperror.ValidationFailed("fullName is required")
	}
	if in.Doctor.HospitalID == "" {
		return nil, apperror.ValidationFailed("hospitalId is required")
	}

	if _, err := s.hospitals.GetByRoleID(ctx, in.Doctor.HospitalID); err != nil {
		if isNoRows(err) {
			return nil, apperror.NotFound("hospital")
		}
		return nil, apperror.Wrap(apperror.KindUnknown, "look up hospital", err)
	}

	u, err := s.register(ctx, in.RoleID, RoleDoctor, in.Password)
	if err != nil {
		return nil, err
	}

	d := in.Doctor
	d.RoleID = u.RoleID
	if err := s.doctors.Create(ctx, &d); err != nil {
		return nil, apperror.Wrap(apperror.KindUnknown, "create doctor profile", err)
	}
	return &d, nil
}

// Authenticate checks a credential. Both a missing user and a wrong
// password surface as the same InvalidCredential failure so login
// attempts cannot probe which ids exist.
func (s *Service) Authenticate(ctx context.Context, roleID, role, password string) (*User, error) {
	if !ValidRole(role) {
		return nil, apperror.Newf(apperror.KindValidationFailed, "unknown role %q", role)
	}

	u, err := s.users.GetByRoleID(ctx, roleID, role)
	if err != nil {
		if isNoRows(err) {
			return nil, apperror.New(apperror.KindInvalidCredential, "invalid id or password")
		}
		return nil, apperror.Wrap(apperror.KindUnknown, "look up user", err)
	}

	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, apperror.New(apperror.KindInvalidCredential, "invalid id or password")
	}
	return u, nil
}

// GetPatient returns a patient profile by role-scoped id.
func (s *Service) GetPatient(ctx context.Context, roleID string) (*Patient, error) {
	p, err := s.patients.GetByRoleID(ctx, roleID)
	if err != nil {
		if isNoRows(err) {
			return nil, apperror.NotFound("patient")
		}
		return nil, apperror.Wrap(apperror.KindUnknown, "look up patient", err)
	}
	return p, nil
}

// UpdatePatient applies profile changes to an existing patient.
func (s *Service) UpdatePatient(ctx context.Context, roleID string, patch Patient) (*Patient, error) {
	existing, err := s.GetPatient(ctx, roleID)
	if err != nil {
		return nil, err
	}

	if patch.FullName != "" {
		existing.FullName = patch.FullName
	}
	if patch.Age > 0 {
		existing.Age = patch.Age
	}
	if patch.Gender != nil {
		existing.Gender = patch.Gender
	}
	if patch.BloodGroup != nil {
		existing.BloodGroup = patch.BloodGroup
	}
	if patch.Phone != nil {
		existing.Phone = patch.Phone
	}
	if patch.Email != nil {
		existing.Email = patch.Email
	}
	if patch.Address != nil {
		existing.Address = patch.Address
	}

	if err := s.patients.Update(ctx, existing); err != nil {
		return nil, apperror.Wrap(apperror.KindUnknown, "update patient", err)
	}
	return existing, nil
}

// GetHospital returns a hospital profile by role-scoped id.
func (s *Service) GetHospital(ctx context.Context, roleID string) (*Hospital, error) {
	h, err := s.hospitals.GetByRoleID(ctx, roleID)
	if err != nil {
		if isNoRows(err) {
			return nil, apperror.NotFound("hospital")
		}
		return nil, apperror.Wrap(apperror.KindUnknown, "look up hospital", err)
	}
	return h, nil
}

// GetDoctor returns a doctor profile by role-scoped id.
func (s *Service) GetDoctor(ctx context.Context, roleID string) (*Doctor, error) {
	d, err := s.doctors.GetByRoleID(ctx, roleID)
	if err != nil {
		if isNoRows(err) {
			return nil, apperror.NotFound("doctor")
		}
		return nil, apperror.Wrap(apperror.KindUnknown, "look up doctor", err)
	}
	return d, nil
}

// ListPatients returns a page of patient profiles.
func (s *Service) ListPatients(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.patients.List(ctx, limit, offset)
}

// ListHospitals returns a page of hospital profiles.
func (s *Service) ListHospitals(ctx context.Context, limit, offset int) ([]*Hospital, int, error) {
	return s.hospitals.List(ctx, limit, offset)
}

// ListDoctorsByHospital returns a page of doctors for one hospital.
func (s *Service) ListDoctorsByHospital(ctx context.Context, hospitalID string, limit, offset int) ([]*Doctor, int, error) {
	return s.doctors.ListByHospital(ctx, hospitalID, limit, offset)
}
