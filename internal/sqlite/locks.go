package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/mchasew/newsroom/internal/newsroom"
)

var _ newsroom.LockService = (*Repo)(nil)

// AcquireLock takes the named advisory lease for ttl.
//
// A single upsert does the whole dance: insert a fresh row, or steal the row
// if its lease has already expired. Rows affected tells us whether we got it.
// There is no separate check-then-update, so no race window between two
// instances seeing the same expired lease.
func (r Repo) AcquireLock(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	const q = `INSERT INTO worker_locks (name, expires_at) VALUES (?, ?)
	ON CONFLICT(name) DO UPDATE SET expires_at = excluded.expires_at
	WHERE worker_locks.expires_at < ?;`

	now := time.Now().UnixMilli()
	res, err := r.db.ExecContext(ctx, q, name, now+ttl.Milliseconds(), now)
	if err != nil {
		return false, fmt.Errorf("error acquiring lock: %s", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error reading rows affected: %s", err)
	}

	return affected == 1, nil
}

func (r Repo) ReleaseLock(ctx context.Context, name string) error {
	const q = `DELETE FROM worker_locks WHERE name = ?;`

	if _, err := r.db.ExecContext(ctx, q, name); err != nil {
		return fmt.Errorf("error releasing lock: %s", err)
	}

	return nil
}
