// Package seed inserts the default AR buildings into a fresh database and
// runs the startup initialization sequence around it.
package seed

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/wayfind-ar/internal/database"
	"github.com/iliyamo/wayfind-ar/internal/lock"
	"github.com/iliyamo/wayfind-ar/internal/model"
	"github.com/iliyamo/wayfind-ar/internal/repository"
)

// Lock names serialising startup work across server instances.
const (
	LockName        = "wayfindar:seed:ar_buildings"
	MigrateLockName = "wayfindar:migrate"
)

// State of the reference table as seen by the seeder.
type State int

const (
	NotSeeded State = iota // table empty
	Seeded                 // at least one row, whatever it is
)

func (s State) String() string {
	if s == Seeded {
		return "seeded"
	}
	return "not_seeded"
}

// Outcome of one EnsureSeeded call.
type Outcome int

const (
	// OutcomeSkipped: the table already had rows; nothing was written.
	OutcomeSkipped Outcome = iota
	// OutcomeInserted: the table was empty and the data set was inserted.
	OutcomeInserted
	// OutcomeAlreadySeeded: another instance inserted the data set between
	// our count and our insert; our batch was rolled back.
	OutcomeAlreadySeeded
)

func (o Outcome) String() string {
	switch o {
	case OutcomeInserted:
		return "inserted"
	case OutcomeAlreadySeeded:
		return "already_seeded"
	default:
		return "skipped"
	}
}

// Result reports row counts around one EnsureSeeded call.
type Result struct {
	Before   int
	After    int
	Inserted int
	Outcome  Outcome
}

// Seeder conditionally inserts the default buildings.
type Seeder struct {
	db      *sql.DB
	repo    *repository.BuildingRepo
	locker  lock.Locker
	log     *zap.Logger
	now     func() time.Time
	records func() []model.Building
}

// New returns a Seeder. A nil locker means no cross-instance lock; the
// unique index on ar_buildings.name still prevents double seeding.
func New(db *sql.DB, locker lock.Locker, log *zap.Logger) *Seeder {
	if locker == nil {
		locker = lock.Noop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Seeder{
		db:      db,
		repo:    repository.NewBuildingRepo(db),
		locker:  locker,
		log:     log,
		now:     func() time.Time { return time.Now().UTC().Truncate(time.Second) },
		records: DataSet,
	}
}

// State reports whether the reference table has any rows.
func (s *Seeder) State(ctx context.Context) (State, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return NotSeeded, &Error{Op: "count buildings", Err: err}
	}
	if n > 0 {
		return Seeded, nil
	}
	return NotSeeded, nil
}

// EnsureSeeded inserts the data set in one transaction if, and only if,
// ar_buildings is empty. Store failures are returned as *Error; a failing
// validation of the data set itself is returned unwrapped.
func (s *Seeder) EnsureSeeded(ctx context.Context) (Result, error) {
	release, err := s.locker.Acquire(ctx, LockName)
	if err != nil {
		return Result{}, &Error{Op: "acquire seed lock", Err: err}
	}
	defer release()

	res, err := s.seedTx(ctx)
	if err != nil {
		return res, err
	}

	// counted after the transaction is closed: the sqlite pool has one connection
	after, err := s.repo.Count(ctx)
	if err != nil {
		return res, &Error{Op: "count buildings", Err: err}
	}
	res.After = after

	s.log.Debug("seed finished",
		zap.String("outcome", res.Outcome.String()),
		zap.Int("before", res.Before),
		zap.Int("after", res.After),
		zap.Int("inserted", res.Inserted))
	return res, nil
}

func (s *Seeder) seedTx(ctx context.Context) (Result, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Result{}, &Error{Op: "begin seed transaction", Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	before, err := s.repo.CountTx(ctx, tx)
	if err != nil {
		return Result{}, &Error{Op: "count buildings", Err: err}
	}
	res := Result{Before: before, Outcome: OutcomeSkipped}
	if before > 0 {
		return res, nil
	}

	records := s.records()
	s.log.Info("adding sample AR buildings", zap.Int("count", len(records)))
	if err := s.repo.InsertBatchTx(ctx, tx, records, s.now()); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			s.log.Info("sample buildings were inserted by another instance", zap.Error(err))
			res.Outcome = OutcomeAlreadySeeded
			return res, nil
		case errors.Is(err, model.ErrNameRequired):
			return res, err
		}
		return res, &Error{Op: "insert sample buildings", Err: err}
	}
	if err := tx.Commit(); err != nil {
		if database.IsDuplicateKey(err) {
			res.Outcome = OutcomeAlreadySeeded
			return res, nil
		}
		return res, &Error{Op: "commit seed transaction", Err: err}
	}

	res.Inserted = len(records)
	res.Outcome = OutcomeInserted
	s.log.Info("sample buildings added successfully", zap.Int("inserted", res.Inserted))
	return res, nil
}
