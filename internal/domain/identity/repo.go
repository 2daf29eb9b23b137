package identity

import "context"

// UserRepository stores identity credentials. Lookups match RoleID
// case-insensitively; writes keep the id exactly as registered.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByRoleID(ctx context.Context, roleID, role string) (*User, error)
	UpdatePassword(ctx context.Context, roleID, role, passwordHash string) error
}

type PatientRepository interface {
	Create(ctx context.Context, p *Patient) error
	GetByRoleID(ctx context.Context, roleID string) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)
}

type HospitalRepository interface {
	Create(ctx context.Context, h *Hospital) error
	GetByRoleID(ctx context.Context, roleID string) (*Hospital, error)
	Update(ctx context.Context, h *Hospital) error
	List(ctx context.Context, limit, offset int) ([]*Hospital, int, error)
}

type DoctorRepository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByRoleID(ctx context.Context, roleID string) (*Doctor, error)
	Update(ctx context.Context, d *Doctor) error
	ListByHospital(ctx context.Context, hospitalID string, limit, offset int) ([]*Doctor, int, error)
}
