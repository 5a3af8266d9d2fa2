package seed

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/wayfind-ar/internal/database"
	"github.com/iliyamo/wayfind-ar/internal/lock"
	"github.com/iliyamo/wayfind-ar/internal/queue"
	"github.com/iliyamo/wayfind-ar/internal/repository"
)

// Publisher sends broker events. It is satisfied by *service.Publisher.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
}

// Deps are the collaborators of Initialize. Locker, Logger and Publisher
// are optional.
type Deps struct {
	DB          *sql.DB
	Dialect     database.Dialect
	Locker      lock.Locker
	Logger      *zap.Logger
	Publisher   Publisher
	SeedEnabled bool
}

// Report summarises one startup initialization.
type Report struct {
	Migrated  bool
	Seed      *Result
	Buildings int
	Users     int
	// Err is the store failure that was logged and absorbed, if any.
	Err      error
	Duration time.Duration
}

// Initialize migrates the schema, seeds the default buildings when enabled
// and logs the row totals. Store failures are logged and recorded in
// Report.Err but never returned, so the server keeps starting against an
// unavailable database. Any other error is returned and should abort
// startup. There are no retries within one run.
func Initialize(ctx context.Context, d Deps) (Report, error) {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	return run(ctx, d, New(d.DB, d.Locker, d.Logger))
}

func run(ctx context.Context, d Deps, s *Seeder) (Report, error) {
	log := d.Logger
	start := time.Now()
	var rep Report

	err := initialize(ctx, d, s, &rep)
	rep.Duration = time.Since(start)
	if err == nil {
		return rep, nil
	}
	if !IsStoreError(err) {
		return rep, err
	}
	log.Error("an error occurred while initializing the database",
		zap.String("op", operation(err)),
		zap.Error(err),
		zap.Duration("elapsed", rep.Duration))
	rep.Err = err
	return rep, nil
}

func initialize(ctx context.Context, d Deps, s *Seeder, rep *Report) error {
	log := d.Logger

	if err := migrate(ctx, d, s); err != nil {
		return err
	}
	rep.Migrated = true
	log.Info("database migrated", zap.String("dialect", string(d.Dialect)))

	if d.SeedEnabled {
		res, err := s.EnsureSeeded(ctx)
		if err != nil {
			return err
		}
		rep.Seed = &res
		publishSeedCompleted(ctx, d, res)
	}

	buildings, err := repository.NewBuildingRepo(d.DB).Count(ctx)
	if err != nil {
		return &Error{Op: "count buildings", Err: err}
	}
	rep.Buildings = buildings
	log.Info("total buildings in database", zap.Int("count", buildings))

	users, err := repository.NewUserRepo(d.DB).Count(ctx)
	if err != nil {
		return &Error{Op: "count users", Err: err}
	}
	rep.Users = users
	log.Info("total users in database", zap.Int("count", users))
	return nil
}

// migrate holds its own lock rather than the seed lock: MySQL named locks
// are per connection, and EnsureSeeded takes the seed lock on another one.
func migrate(ctx context.Context, d Deps, s *Seeder) error {
	release, err := s.locker.Acquire(ctx, MigrateLockName)
	if err != nil {
		return &Error{Op: "acquire migration lock", Err: err}
	}
	defer release()
	return database.Migrate(ctx, d.DB, d.Dialect)
}

func publishSeedCompleted(ctx context.Context, d Deps, res Result) {
	if d.Publisher == nil {
		return
	}
	host, _ := os.Hostname()
	ev := queue.SeedCompletedEvent{
		Table:       "ar_buildings",
		Outcome:     res.Outcome.String(),
		Before:      res.Before,
		After:       res.After,
		Inserted:    res.Inserted,
		Instance:    host,
		CompletedAt: time.Now().UTC(),
	}
	if err := d.Publisher.Publish(ctx, queue.RoutingSeedCompleted, ev); err != nil {
		d.Logger.Warn("seed.completed event not published", zap.Error(err))
	}
}

func operation(err error) string {
	var seedErr *Error
	var migErr *database.MigrationError
	switch {
	case errors.As(err, &seedErr):
		return seedErr.Op
	case errors.As(err, &migErr):
		return "migrate"
	}
	return "initialize"
}
