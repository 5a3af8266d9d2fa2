package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/wayfind-ar/internal/database"
	"github.com/iliyamo/wayfind-ar/internal/model"
)

const buildingColumns = `id, name, description, position, model_type, category, floor_level, is_active, created_at, updated_at`

const insertBuilding = `INSERT INTO ar_buildings
	(name, description, position, model_type, category, floor_level, is_active, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

// BuildingRepo encapsulates all queries against ar_buildings. Positions are
// converted between model.Position and the "x,y,z" column here and nowhere
// else.
type BuildingRepo struct {
	db *sql.DB
}

// NewBuildingRepo constructs a BuildingRepo with the provided DB handle.
func NewBuildingRepo(db *sql.DB) *BuildingRepo {
	return &BuildingRepo{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBuilding(s rowScanner) (*model.Building, error) {
	var (
		b   model.Building
		pos string
	)
	if err := s.Scan(&b.ID, &b.Name, &b.Description, &pos, &b.ModelType, &b.Category,
		&b.FloorLevel, &b.IsActive, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	p, err := model.ParsePosition(pos)
	if err != nil {
		return nil, fmt.Errorf("building %d: %w", b.ID, err)
	}
	b.Position = p
	return &b, nil
}

// Count returns the number of rows in ar_buildings.
func (r *BuildingRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ar_buildings`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// CountTx is Count inside the caller's transaction.
func (r *BuildingRepo) CountTx(ctx context.Context, tx *sql.Tx) (int, error) {
	var n int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM ar_buildings`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// InsertBatchTx inserts every building with one prepared statement inside
// the caller's transaction. created_at and updated_at are set to now. The
// caller commits or rolls back; a natural key violation is returned as
// ErrDuplicate wrapping the driver error.
func (r *BuildingRepo) InsertBatchTx(ctx context.Context, tx *sql.Tx, buildings []model.Building, now time.Time) error {
	stmt, err := tx.PrepareContext(ctx, insertBuilding)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, b := range buildings {
		if err := b.Validate(); err != nil {
			return fmt.Errorf("building %q: %w", b.Name, err)
		}
		if _, err := stmt.ExecContext(ctx, b.Name, b.Description, b.Position.String(), b.ModelType,
			b.Category, b.FloorLevel, b.IsActive, now, now); err != nil {
			if database.IsDuplicateKey(err) {
				return fmt.Errorf("insert %q: %w: %w", b.Name, ErrDuplicate, err)
			}
			return fmt.Errorf("insert %q: %w", b.Name, err)
		}
	}
	return nil
}

// ListActive returns active buildings ordered by name, optionally filtered
// by category.
func (r *BuildingRepo) ListActive(ctx context.Context, category string) ([]*model.Building, error) {
	q := `SELECT ` + buildingColumns + ` FROM ar_buildings WHERE is_active = ?`
	args := []any{true}
	if category != "" {
		q += ` AND category = ?`
		args = append(args, category)
	}
	q += ` ORDER BY name`
	return r.list(ctx, q, args...)
}

// ListAll returns every building, active or not, ordered by name.
func (r *BuildingRepo) ListAll(ctx context.Context) ([]*model.Building, error) {
	return r.list(ctx, `SELECT `+buildingColumns+` FROM ar_buildings ORDER BY name`)
}

func (r *BuildingRepo) list(ctx context.Context, q string, args ...any) ([]*model.Building, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Building{}
	for rows.Next() {
		b, err := scanBuilding(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListCategories returns the distinct categories of active buildings.
func (r *BuildingRepo) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT category FROM ar_buildings WHERE is_active = ? AND category <> '' ORDER BY category`, true)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetByID fetches a building by id. It returns ErrBuildingNotFound if no
// row is found.
func (r *BuildingRepo) GetByID(ctx context.Context, id uint64) (*model.Building, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+buildingColumns+` FROM ar_buildings WHERE id = ?`, id)
	b, err := scanBuilding(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBuildingNotFound
		}
		return nil, err
	}
	return b, nil
}

// Create inserts a building and populates its ID and timestamps.
func (r *BuildingRepo) Create(ctx context.Context, b *model.Building) error {
	if err := b.Validate(); err != nil {
		return err
	}
	now := time.Now().UTC().Truncate(time.Second)
	res, err := r.db.ExecContext(ctx, insertBuilding, b.Name, b.Description, b.Position.String(),
		b.ModelType, b.Category, b.FloorLevel, b.IsActive, now, now)
	if err != nil {
		if database.IsDuplicateKey(err) {
			return ErrDuplicate
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	b.CreatedAt, b.UpdatedAt = now, now
	return nil
}

// Update overwrites every mutable column of the building with b.ID.
func (r *BuildingRepo) Update(ctx context.Context, b *model.Building) error {
	if err := b.Validate(); err != nil {
		return err
	}
	now := time.Now().UTC().Truncate(time.Second)
	res, err := r.db.ExecContext(ctx,
		`UPDATE ar_buildings
		 SET name = ?, description = ?, position = ?, model_type = ?, category = ?,
		     floor_level = ?, is_active = ?, updated_at = ?
		 WHERE id = ?`,
		b.Name, b.Description, b.Position.String(), b.ModelType, b.Category,
		b.FloorLevel, b.IsActive, now, b.ID)
	if err != nil {
		if database.IsDuplicateKey(err) {
			return ErrDuplicate
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrBuildingNotFound
	}
	b.UpdatedAt = now
	return nil
}

// Delete removes a building by id.
func (r *BuildingRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM ar_buildings WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrBuildingNotFound
	}
	return nil
}
