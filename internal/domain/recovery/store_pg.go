package recovery

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore keeps pending codes in the reset_otps table. Used when no
// Redis instance is configured but codes must survive a restart.
type PGStore struct {
	pool *pgxpool.Pool
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

func (s *PGStore) Save(ctx context.Context, key string, e Entry) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO reset_otps (otp_key, code, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (otp_key) DO UPDATE SET code = $2, expires_at = $3`,
		key, e.Code, e.ExpiresAt)
	return err
}

func (s *PGStore) Get(ctx context.Context, key string) (*Entry, error) {
	var e Entry
	err := s.pool.QueryRow(ctx, `
		SELECT code, expires_at FROM reset_otps WHERE otp_key = $1`,
		key).Scan(&e.Code, &e.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *PGStore) Delete(ctx context.Context, key string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM reset_otps WHERE otp_key = $1`, key)
	return err
}

// Cleanup removes entries whose deadline passed before now.
func (s *PGStore) Cleanup(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM reset_otps WHERE expires_at < $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
