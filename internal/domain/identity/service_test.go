package identity

import (
	"context"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/clinicore/clinicore/internal/platform/apperror"
	"github.com/clinicore/clinicore/internal/platform/auth"
)

type mockUserRepo struct {
	users map[string]*User // keyed by lower(roleID)+":"+role
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*User)}
}

func userKey(roleID, role string) string {
	return strings.ToLower(roleID) + ":" + role
}

func (m *mockUserRepo) Create(_ context.Context, u *User) error {
	m.users[userKey(u.RoleID, u.Role)] = u
	return nil
}

func (m *mockUserRepo) GetByRoleID(_ context.Context, roleID, role string) (*User, error) {
	u, ok := m.users[userKey(roleID, role)]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return u, nil
}

func (m *mockUserRepo) UpdatePassword(_ context.Context, roleID, role, hash string) error {
	u, ok := m.users[userKey(roleID, role)]
	if !ok {
		return pgx.ErrNoRows
	}
	u.PasswordHash = hash
	return nil
}

type mockPatientRepo struct {
	patients map[string]*Patient
}

func newMockPatientRepo() *mockPatientRepo {
	return &mockPatientRepo{patients: make(map[string]*Patient)}
}

func (m *mockPatientRepo) Create(_ context.Context, p *Patient) error {
	m.patients[strings.ToLower(p.RoleID)] = p
	return nil
}

func (m *mockPatientRepo) GetByRoleID(_ context.Context, roleID string) (*Patient, error) {
	p, ok := m.patients[strings.ToLower(roleID)]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return p, nil
}

func (m *mockPatientRepo) Update(_ context.Context, p *Patient) error {
	m.patients[strings.ToLower(p.RoleID)] = p
	return nil
}

func (m *mockPatientRepo) List(_ context.Context, limit, offset int) ([]*Patient, int, error) {
	var out []*Patient
	for _, p := range m.patients {
		out = append(out, p)
	}
	return out, len(out), nil
}

type mockHospitalRepo struct {
	hospitals map[string]*Hospital
}

func newMockHospitalRepo() *mockHospitalRepo {
	return &mockHospitalRepo{hospitals: make(map[string]*Hospital)}
}

func (m *mockHospitalRepo) Create(_ context.Context, h *Hospital) error {
	m.hospitals[strings.ToLower(h.RoleID)] = h
	return nil
}

func (m *mockHospitalRepo) GetByRoleID(_ context.Context, roleID string) (*Hospital, error) {
	h, ok := m.hospitals[strings.ToLower(roleID)]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return h, nil
}

func (m *mockHospitalRepo) Update(_ context.Context, h *Hospital) error {
	m.hospitals[strings.ToLower(h.RoleID)] = h
	return nil
}

func (m *mockHospitalRepo) List(_ context.Context, limit, offset int) ([]*Hospital, int, error) {
	var out []*Hospital
	for _, h := range m.hospitals {
		out = append(out, h)
	}
	return out, len(out), nil
}

type mockDoctorRepo struct {
	doctors map[string]*Doctor
}

func newMockDoctorRepo() *mockDoctorRepo {
	return &mockDoctorRepo{doctors: make(map[string]*Doctor)}
}

func (m *mockDoctorRepo) Create(_ context.Context, d *Doctor) error {
	m.doctors[strings.ToLower(d.RoleID)] = d
	return nil
}

func (m *mockDoctorRepo) GetByRoleID(_ context.Context, roleID string) (*Doctor, error) {
	d, ok := m.doctors[strings.ToLower(roleID)]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return d, nil
}

func (m *mockDoctorRepo) Update(_ context.Context, d *Doctor) error {
	m.doctors[strings.ToLower(d.RoleID)] = d
	return nil
}

func (m *mockDoctorRepo) ListByHospital(_ context.Context, hospitalID string, limit, offset int) ([]*Doctor, int, error) {
	var out []*Doctor
	for _, d := range m.doctors {
		if strings.EqualFold(d.HospitalID, hospitalID) {
			out = append(out, d)
		}
	}
	return out, len(out), nil
}

func newTestService() *Service {
	return NewService(newMockUserRepo(), newMockPatientRepo(), newMockHospitalRepo(), newMockDoctorRepo())
}

func TestRegisterPatient(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	p, err := svc.RegisterPatient(ctx, RegisterPatientInput{
		RoleID:   "PAT001",
		Password: "secret1",
		Patient:  Patient{FullName: "Asha Rao", Age: 34},
	})
	if err != nil {
		t.Fatalf("RegisterPatient: %v", err)
	}
	if p.RoleID != "PAT001" {
		t.Errorf("roleId = %q", p.RoleID)
	}

	got, err := svc.GetPatient(ctx, "pat001")
	if err != nil {
		t.Fatalf("GetPatient with different case: %v", err)
	}
	if got.FullName != "Asha Rao" {
		t.Errorf("fullName = %q", got.FullName)
	}
}

func TestRegisterPatient_DuplicateConflict(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	in := RegisterPatientInput{
		RoleID:   "PAT001",
		Password: "secret1",
		Patient:  Patient{FullName: "Asha Rao", Age: 34},
	}
	if _, err := svc.RegisterPatient(ctx, in); err != nil {
		t.Fatalf("first registration: %v", err)
	}

	// Same id in a different case must still collide.
	in.RoleID = "pat001"
	_, err := svc.RegisterPatient(ctx, in)
	if !apperror.Is(err, apperror.KindConflict) {
		t.Errorf("expected Conflict, got %v", err)
	}
}

func TestRegisterPatient_Validation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	cases := []RegisterPatientInput{
		{RoleID: "", Password: "secret1", Patient: Patient{FullName: "X", Age: 1}},
		{RoleID: "PAT1", Password: "short", Patient: Patient{FullName: "X", Age: 1}},
		{RoleID: "PAT1", Password: "secret1", Patient: Patient{FullName: "", Age: 1}},
		{RoleID: "PAT1", Password: "secret1", Patient: Patient{FullName: "X", Age: 200}},
	}
	for i, in := range cases {
		if _, err := svc.RegisterPatient(ctx, in); !apperror.Is(err, apperror.KindValidationFailed) {
			t.Errorf("case %d: expected ValidationFailed, got %v", i, err)
		}
	}
}

func TestRegisterDoctor_RequiresHospital(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.RegisterDoctor(ctx, RegisterDoctorInput{
		RoleID:   "DOC1",
		Password: "secret1",
		Doctor:   Doctor{FullName: "Dr. Mehta", HospitalID: "HOSP404"},
	})
	if !apperror.Is(err, apperror.KindNotFound) {
		t.Errorf("expected NotFound for missing hospital, got %v", err)
	}

	if _, err := svc.RegisterHospital(ctx, RegisterHospitalInput{
		RoleID:   "HOSP1",
		Password: "secret1",
		Hospital: Hospital{Name: "City General"},
	}); err != nil {
		t.Fatalf("RegisterHospital: %v", err)
	}

	if _, err := svc.RegisterDoctor(ctx, RegisterDoctorInput{
		RoleID:   "DOC1",
		Password: "secret1",
		Doctor:   Doctor{FullName: "Dr. Mehta", HospitalID: "hosp1"},
	}); err != nil {
		t.Errorf("RegisterDoctor against existing hospital: %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	hash, err := auth.HashPassword("secret1")
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.users.Create(ctx, &User{RoleID: "PAT1", Role: RolePatient, PasswordHash: hash}); err != nil {
		t.Fatal(err)
	}

	t.Run("correct password, case-insensitive id", func(t *testing.T) {
		u, err := svc.Authenticate(ctx, "pat1", RolePatient, "secret1")
		if err != nil {
			t.Fatalf("Authenticate: %v", err)
		}
		if u.RoleID != "PAT1" {
			t.Errorf("roleId = %q", u.RoleID)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "PAT1", RolePatient, "nope")
		if !apperror.Is(err, apperror.KindInvalidCredential) {
			t.Errorf("expected InvalidCredential, got %v", err)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "GHOST", RolePatient, "secret1")
		if !apperror.Is(err, apperror.KindInvalidCredential) {
			t.Errorf("expected InvalidCredential, got %v", err)
		}
	})

	t.Run("unknown role", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "PAT1", "admin", "secret1")
		if !apperror.Is(err, apperror.KindValidationFailed) {
			t.Errorf("expected ValidationFailed, got %v", err)
		}
	})
}

func TestUpdatePatient_PartialPatch(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.RegisterPatient(ctx, RegisterPatientInput{
		RoleID:   "PAT1",
		Password: "secret1",
		Patient:  Patient{FullName: "Asha Rao", Age: 34},
	}); err != nil {
		t.Fatal(err)
	}

	phone := "555-0101"
	updated, err := svc.UpdatePatient(ctx, "PAT1", Patient{Phone: &phone})
	if err != nil {
		t.Fatalf("UpdatePatient: %v", err)
	}
	if updated.FullName != "Asha Rao" {
		t.Errorf("patch should not clear fullName, got %q", updated.FullName)
	}
	if updated.Phone == nil || *updated.Phone != phone {
		t.Errorf("phone not applied: %v", updated.Phone)
	}
}
