package lock

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/wayfind-ar/internal/database"
)

// Backends accepted by Select.
const (
	BackendAuto  = "auto"
	BackendMySQL = "mysql"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Select returns the Locker for backend. "auto" uses GET_LOCK on MySQL and
// no lock on SQLite. "redis" is for MySQL deployments where named locks are
// not shared between nodes, such as multi-primary clusters. When Redis was
// not reachable at boot, "redis" degrades to the "auto" choice with a
// warning; the unique building name still rejects a second seed.
func Select(backend string, dialect database.Dialect, db *sql.DB, rdb *redis.Client, timeout time.Duration, log *zap.Logger) (Locker, error) {
	if log == nil {
		log = zap.NewNop()
	}
	switch backend {
	case BackendAuto, "":
		if dialect == database.DialectMySQL {
			return NewMySQL(db, timeout), nil
		}
		return Noop{}, nil
	case BackendMySQL:
		if dialect != database.DialectMySQL {
			return nil, fmt.Errorf("lock backend mysql needs the mysql driver, got %s", dialect)
		}
		return NewMySQL(db, timeout), nil
	case BackendRedis:
		if rdb == nil {
			log.Warn("redis unavailable, seed lock falls back to the database",
				zap.String("dialect", string(dialect)))
			return Select(BackendAuto, dialect, db, nil, timeout, log)
		}
		return NewRedis(rdb, timeout), nil
	case BackendNone:
		return Noop{}, nil
	}
	return nil, fmt.Errorf("unknown lock backend %q", backend)
}
