package lock

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// MySQL uses GET_LOCK/RELEASE_LOCK. MySQL named locks belong to a session,
// so the lock pins one pooled connection until it is released.
type MySQL struct {
	db      *sql.DB
	timeout time.Duration
}

// NewMySQL returns a Locker waiting at most timeout for GET_LOCK.
func NewMySQL(db *sql.DB, timeout time.Duration) *MySQL {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &MySQL{db: db, timeout: timeout}
}

func (m *MySQL) Acquire(ctx context.Context, name string) (func(), error) {
	conn, err := m.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", name, err)
	}

	// GET_LOCK returns 1 on success, 0 on timeout and NULL on error.
	var got sql.NullInt64
	if err := conn.QueryRowContext(ctx, "SELECT GET_LOCK(?, ?)", name, int(m.timeout/time.Second)).Scan(&got); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("lock %s: %w", name, err)
	}
	if !got.Valid || got.Int64 != 1 {
		_ = conn.Close()
		return nil, fmt.Errorf("lock %s: %w", name, ErrNotAcquired)
	}

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, _ = conn.ExecContext(ctx, "SELECT RELEASE_LOCK(?)", name)
		_ = conn.Close()
	}, nil
}
