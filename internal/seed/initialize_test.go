package seed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/iliyamo/wayfind-ar/internal/database"
	"github.com/iliyamo/wayfind-ar/internal/lock"
	"github.com/iliyamo/wayfind-ar/internal/model"
	"github.com/iliyamo/wayfind-ar/internal/queue"
	"github.com/iliyamo/wayfind-ar/internal/testutil"
)

type recordingPublisher struct {
	keys   []string
	events []any
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, key string, ev any) error {
	p.keys = append(p.keys, key)
	p.events = append(p.events, ev)
	return p.err
}

func TestInitializeFreshStore(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	pub := &recordingPublisher{}

	rep, err := Initialize(context.Background(), Deps{
		DB:          testutil.NewTestDB(t),
		Dialect:     database.DialectSQLite,
		Logger:      zap.New(core),
		Publisher:   pub,
		SeedEnabled: true,
	})
	require.NoError(t, err)
	require.NoError(t, rep.Err)
	assert.True(t, rep.Migrated)
	require.NotNil(t, rep.Seed)
	assert.Equal(t, 4, rep.Seed.Inserted)
	assert.Equal(t, 4, rep.Buildings)
	assert.Zero(t, rep.Users)

	for _, msg := range []string{
		"database migrated",
		"adding sample AR buildings",
		"sample buildings added successfully",
		"total buildings in database",
		"total users in database",
	} {
		assert.Equal(t, 1, logs.FilterMessage(msg).Len(), msg)
	}
	total := logs.FilterMessage("total buildings in database").All()[0]
	assert.Equal(t, int64(4), total.ContextMap()["count"])

	require.Equal(t, []string{queue.RoutingSeedCompleted}, pub.keys)
	ev := pub.events[0].(queue.SeedCompletedEvent)
	assert.Equal(t, "inserted", ev.Outcome)
	assert.Equal(t, 4, ev.After)
}

func TestInitializeTwiceKeepsFourRows(t *testing.T) {
	db := testutil.NewTestDB(t)
	d := Deps{DB: db, Dialect: database.DialectSQLite, SeedEnabled: true}

	_, err := Initialize(context.Background(), d)
	require.NoError(t, err)
	rep, err := Initialize(context.Background(), d)
	require.NoError(t, err)

	require.NotNil(t, rep.Seed)
	assert.Equal(t, OutcomeSkipped, rep.Seed.Outcome)
	assert.Equal(t, 4, rep.Buildings)
}

func TestInitializeSeedDisabled(t *testing.T) {
	rep, err := Initialize(context.Background(), Deps{
		DB:      testutil.NewTestDB(t),
		Dialect: database.DialectSQLite,
	})
	require.NoError(t, err)
	assert.True(t, rep.Migrated)
	assert.Nil(t, rep.Seed)
	assert.Zero(t, rep.Buildings)
}

func TestInitializeUnreachableStoreIsLogged(t *testing.T) {
	db, err := database.OpenMySQL("app", "secret", "127.0.0.1", "1", "wayfindar")
	require.NoError(t, err)
	defer db.Close()

	core, logs := observer.New(zapcore.InfoLevel)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rep, err := Initialize(ctx, Deps{
		DB:          db,
		Dialect:     database.DialectMySQL,
		Logger:      zap.New(core),
		SeedEnabled: true,
	})
	require.NoError(t, err)
	require.Error(t, rep.Err)
	assert.False(t, rep.Migrated)
	assert.Nil(t, rep.Seed)

	entries := logs.FilterMessage("an error occurred while initializing the database").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "migrate", entries[0].ContextMap()["op"])
}

func TestInitializeMigrationFailureSkipsSeeding(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).
		WillReturnError(errors.New("dial tcp 10.0.0.5:3306: connect: connection refused"))

	pub := &recordingPublisher{}
	rep, err := Initialize(context.Background(), Deps{
		DB:          db,
		Dialect:     database.DialectMySQL,
		Publisher:   pub,
		SeedEnabled: true,
	})
	require.NoError(t, err)
	var migErr *database.MigrationError
	assert.ErrorAs(t, rep.Err, &migErr)
	assert.Nil(t, rep.Seed)
	assert.Empty(t, pub.keys)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInitializeSeedFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	rep, err := Initialize(context.Background(), Deps{
		DB:          testutil.NewTestDB(t),
		Dialect:     database.DialectSQLite,
		Locker:      failingLocker{err: lock.ErrNotAcquired, name: LockName},
		Logger:      zap.New(core),
		SeedEnabled: true,
	})
	require.NoError(t, err)
	assert.True(t, rep.Migrated)
	assert.ErrorIs(t, rep.Err, lock.ErrNotAcquired)

	entries := logs.FilterMessage("an error occurred while initializing the database").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "acquire seed lock", entries[0].ContextMap()["op"])
}

func TestInitializeMigratesUnderLock(t *testing.T) {
	locker := &countingLocker{}

	rep, err := Initialize(context.Background(), Deps{
		DB:          testutil.NewTestDB(t),
		Dialect:     database.DialectSQLite,
		Locker:      locker,
		SeedEnabled: true,
	})
	require.NoError(t, err)
	require.NoError(t, rep.Err)
	assert.Equal(t, []string{MigrateLockName, LockName}, locker.names)
	assert.Equal(t, 2, locker.released)
}

func TestInitializeMigrationLockFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	db := testutil.NewTestDB(t)

	rep, err := Initialize(context.Background(), Deps{
		DB:          db,
		Dialect:     database.DialectSQLite,
		Locker:      failingLocker{err: lock.ErrNotAcquired},
		Logger:      zap.New(core),
		SeedEnabled: true,
	})
	require.NoError(t, err)
	assert.False(t, rep.Migrated)
	assert.Nil(t, rep.Seed)
	assert.ErrorIs(t, rep.Err, lock.ErrNotAcquired)

	entries := logs.FilterMessage("an error occurred while initializing the database").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "acquire migration lock", entries[0].ContextMap()["op"])

	v, err := database.Version(context.Background(), db)
	assert.Error(t, err, "schema_migrations must not exist")
	assert.Zero(t, v)
}

func TestInitializePropagatesProgrammingErrors(t *testing.T) {
	db := testutil.NewTestDB(t)
	d := Deps{DB: db, Dialect: database.DialectSQLite, Logger: zap.NewNop(), SeedEnabled: true}
	s := New(db, nil, nil)
	s.records = func() []model.Building { return []model.Building{{Description: "no name"}} }

	_, err := run(context.Background(), d, s)
	require.ErrorIs(t, err, model.ErrNameRequired)
}

func TestInitializePublishFailureIsNotFatal(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	rep, err := Initialize(context.Background(), Deps{
		DB:          testutil.NewTestDB(t),
		Dialect:     database.DialectSQLite,
		Logger:      zap.New(core),
		Publisher:   &recordingPublisher{err: errors.New("broker down")},
		SeedEnabled: true,
	})
	require.NoError(t, err)
	assert.NoError(t, rep.Err)
	assert.Equal(t, 4, rep.Buildings)
	assert.Equal(t, 1, logs.FilterMessage("seed.completed event not published").Len())
}
