package recovery

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/clinicore/clinicore/internal/domain/identity"
	"github.com/clinicore/clinicore/internal/platform/apperror"
	"github.com/clinicore/clinicore/internal/platform/auth"
)

const (
	codeTTL = 10 * time.Minute
	codeMin = 100000
	codeMax = 999999
)

// Service drives the three-step reset flow: request a code, verify it,
// complete with a new password. Verification never locks out wrong
// guesses; only expiry purges a pending entry early.
type Service struct {
	users identity.UserRepository
	store Store
	now   func() time.Time
}

func NewService(users identity.UserRepository, store Store) *Service {
	return &Service{
		users: users,
		store: store,
		now:   time.Now,
	}
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%06d", codeMin+n.Int64()), nil
}

// RequestReset creates a pending code for the user, replacing any
// earlier pending code for the same (role, roleId) key.
func (s *Service) RequestReset(ctx context.Context, roleID, role string) (string, error) {
	if !identity.ValidRole(role) {
		return "", apperror.ValidationFailed("unknown role")
	}

	if _, err := s.users.GetByRoleID(ctx, roleID, role); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperror.NotFound("user")
		}
		return "", apperror.Wrap(apperror.KindUnknown, "look up user", err)
	}

	code, err := generateCode()
	if err != nil {
		return "", apperror.Wrap(apperror.KindUnknown, "generate reset code", err)
	}

	entry := Entry{Code: code, ExpiresAt: s.now().Add(codeTTL)}
	if err := s.store.Save(ctx, Key(roleID, role), entry); err != nil {
		return "", apperror.Wrap(apperror.KindUnknown, "store reset code", err)
	}
	return code, nil
}

// VerifyReset checks a submitted code. An expired entry is purged on
// this read; a mismatched code leaves the entry in place.
func (s *Service) VerifyReset(ctx context.Context, roleID, role, code string) (bool, error) {
	key := Key(roleID, role)
	entry, err := s.store.Get(ctx, key)
	if err != nil {
		return false, apperror.Wrap(apperror.KindUnknown, "load reset code", err)
	}
	if entry == nil {
		return false, nil
	}

	if s.now().After(entry.ExpiresAt) {
		if err := s.store.Delete(ctx, key); err != nil {
			return false, apperror.Wrap(apperror.KindUnknown, "purge expired code", err)
		}
		return false, nil
	}

	return entry.Code == code, nil
}

// CompleteReset persists the new password and drops the pending entry
// unconditionally. Callers are expected to call VerifyReset first and
// only proceed on true.
func (s *Service) CompleteReset(ctx context.Context, roleID, role, newPassword string) error {
	if len(newPassword) < 6 {
		return apperror.ValidationFailed("password must be at least 6 characters")
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return apperror.Wrap(apperror.KindUnknown, "hash password", err)
	}

	if err := s.users.UpdatePassword(ctx, roleID, role, hash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperror.NotFound("user")
		}
		return apperror.Wrap(apperror.KindUnknown, "update password", err)
	}

	if err := s.store.Delete(ctx, Key(roleID, role)); err != nil {
		return apperror.Wrap(apperror.KindUnknown, "drop reset code", err)
	}
	return nil
}
