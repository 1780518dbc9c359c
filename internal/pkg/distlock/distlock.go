// Package distlock serializes operations across processes using PostgreSQL
// advisory locks. The migration runner uses it so two deploys cannot apply
// schema changes or run the event backfill concurrently.
package distlock

import (
	"context"
	"database/sql"
	"fmt"
	"hash/fnv"
)

// Lock is a session-scoped advisory lock keyed by a string. The lock is
// released explicitly or when the holding connection drops, so a crashed
// migrator never wedges the next run.
type Lock struct {
	conn   *sql.Conn
	lockID int64
}

// New derives a deterministic advisory lock ID from key. Acquire pins a
// dedicated connection; advisory locks are per-session, so the lock must
// live on one connection for its whole lifetime.
func New(key string) *Lock {
	h := fnv.New64a()
	h.Write([]byte(key))
	return &Lock{lockID: int64(h.Sum64())}
}

// Acquire takes the lock without blocking. Returns false when another
// session already holds it.
func (l *Lock) Acquire(ctx context.Context, db *sql.DB) (bool, error) {
	conn, err := db.Conn(ctx)
	if err != nil {
		return false, fmt.Errorf("pin connection: %w", err)
	}

	var acquired bool
	if err := conn.QueryRowContext(ctx, `SELECT pg_try_advisory_lock($1)`, l.lockID).Scan(&acquired); err != nil {
		conn.Close()
		return false, fmt.Errorf("acquire advisory lock: %w", err)
	}
	if !acquired {
		conn.Close()
		return false, nil
	}
	l.conn = conn
	return true, nil
}

// Release unlocks and returns the pinned connection to the pool. Safe to
// call when the lock was never acquired.
func (l *Lock) Release(ctx context.Context) error {
	if l.conn == nil {
		return nil
	}
	defer func() {
		l.conn.Close()
		l.conn = nil
	}()
	var released bool
	if err := l.conn.QueryRowContext(ctx, `SELECT pg_advisory_unlock($1)`, l.lockID).Scan(&released); err != nil {
		return fmt.Errorf("release advisory lock: %w", err)
	}
	if !released {
		return fmt.Errorf("advisory lock %d was not held by this session", l.lockID)
	}
	return nil
}
