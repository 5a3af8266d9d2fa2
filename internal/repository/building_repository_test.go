package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/wayfind-ar/internal/model"
	"github.com/iliyamo/wayfind-ar/internal/repository"
	"github.com/iliyamo/wayfind-ar/internal/testutil"
)

func newBuilding(name, category string, active bool) *model.Building {
	return &model.Building{
		Name:       name,
		Position:   model.Position{X: 1, Y: 0, Z: -2.5},
		ModelType:  "main",
		Category:   category,
		FloorLevel: "Ground Floor",
		IsActive:   active,
	}
}

func TestBuildingRepoCreateAndGet(t *testing.T) {
	repo := repository.NewBuildingRepo(testutil.NewMigratedDB(t))
	ctx := context.Background()

	b := newBuilding("Library", "Academic", true)
	b.Description = "Study resources center"
	require.NoError(t, repo.Create(ctx, b))
	require.NotZero(t, b.ID)

	got, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Library", got.Name)
	assert.Equal(t, "Study resources center", got.Description)
	assert.Equal(t, model.Position{X: 1, Y: 0, Z: -2.5}, got.Position)
	assert.True(t, got.IsActive)
	assert.False(t, got.CreatedAt.IsZero())

	_, err = repo.GetByID(ctx, b.ID+100)
	assert.ErrorIs(t, err, repository.ErrBuildingNotFound)
}

func TestBuildingRepoCreateRejectsDuplicateName(t *testing.T) {
	repo := repository.NewBuildingRepo(testutil.NewMigratedDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newBuilding("Library", "Academic", true)))
	err := repo.Create(ctx, newBuilding("Library", "Services", true))
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	err = repo.Create(ctx, newBuilding(" ", "Services", true))
	assert.ErrorIs(t, err, model.ErrNameRequired)
}

func TestBuildingRepoListing(t *testing.T) {
	repo := repository.NewBuildingRepo(testutil.NewMigratedDB(t))
	ctx := context.Background()

	for _, b := range []*model.Building{
		newBuilding("Science Center", "Academic", true),
		newBuilding("Library", "Academic", true),
		newBuilding("Main Cafeteria", "Services", true),
		newBuilding("Old Gym", "Sports", false),
	} {
		require.NoError(t, repo.Create(ctx, b))
	}

	active, err := repo.ListActive(ctx, "")
	require.NoError(t, err)
	require.Len(t, active, 3)
	assert.Equal(t, "Library", active[0].Name)

	academic, err := repo.ListActive(ctx, "Academic")
	require.NoError(t, err)
	assert.Len(t, academic, 2)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	cats, err := repo.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Academic", "Services"}, cats)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestBuildingRepoUpdateAndDelete(t *testing.T) {
	repo := repository.NewBuildingRepo(testutil.NewMigratedDB(t))
	ctx := context.Background()

	b := newBuilding("Library", "Academic", true)
	require.NoError(t, repo.Create(ctx, b))

	b.FloorLevel = "Level 2"
	b.Position = model.Position{X: 3, Y: 1, Z: 0}
	require.NoError(t, repo.Update(ctx, b))

	got, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Level 2", got.FloorLevel)
	assert.Equal(t, model.Position{X: 3, Y: 1, Z: 0}, got.Position)

	missing := newBuilding("Nowhere", "", true)
	missing.ID = b.ID + 1
	assert.ErrorIs(t, repo.Update(ctx, missing), repository.ErrBuildingNotFound)

	require.NoError(t, repo.Delete(ctx, b.ID))
	assert.ErrorIs(t, repo.Delete(ctx, b.ID), repository.ErrBuildingNotFound)
}

func TestBuildingRepoInsertBatchTx(t *testing.T) {
	db := testutil.NewMigratedDB(t)
	repo := repository.NewBuildingRepo(db)
	ctx := context.Background()

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	batch := []model.Building{*newBuilding("A", "x", true), *newBuilding("A", "y", true)}
	err = repo.InsertBatchTx(ctx, tx, batch, time.Now().UTC())
	assert.ErrorIs(t, err, repository.ErrDuplicate)
	require.NoError(t, tx.Rollback())

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "rolled back batch must leave no rows")
}
