package repository

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"photostudio/internal/backend"
	"photostudio/internal/model"
)

// These tests need a disposable Postgres database; they are skipped otherwise.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("PHOTOSTUDIO_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("PHOTOSTUDIO_TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, Migrate(ctx, pool, zap.NewNop()))
	_, err = pool.Exec(ctx, `TRUNCATE projects, packages, site_settings, users`)
	require.NoError(t, err)
	return pool
}

func TestProjectRepository_Contract(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := NewProjectRepository(pool, zap.NewNop())

	first, err := repo.Insert(ctx, model.Project{Title: "Portraits", Category: model.CategoryPortrait, OrderIndex: 3})
	require.NoError(t, err)
	_, err = repo.Insert(ctx, model.Project{
		Title:      "Beach Wedding",
		Category:   model.CategoryWedding,
		Date:       "2026-02-14",
		ImagesData: []string{"a.jpg", "b.jpg"},
	})
	require.NoError(t, err)

	list, err := repo.Select(ctx, backend.Asc("order_index"))
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Beach Wedding", list[0].Title)
	assert.Equal(t, "2026-02-14", list[0].Date)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, list[0].ImagesData)

	first.Featured = true
	updated, err := repo.Update(ctx, first.ID, first)
	require.NoError(t, err)
	assert.True(t, updated.Featured)

	require.NoError(t, repo.Delete(ctx, first.ID))
	assert.True(t, errors.Is(repo.Delete(ctx, first.ID), backend.ErrNotFound))

	_, err = repo.Select(ctx, backend.Asc("1; --"))
	assert.True(t, errors.Is(err, backend.ErrInvalidOrder))
}

func TestPackageRepository_Contract(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := NewPackageRepository(pool, zap.NewNop())

	p, err := repo.Insert(ctx, model.Package{Name: "Basic", Price: "$499", Features: []string{"", "Album", " "}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Album"}, p.Features)

	p.Popular = true
	_, err = repo.Update(ctx, p.ID, p)
	require.NoError(t, err)

	list, err := repo.Select(ctx, backend.Asc("price"))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Popular)
}

func TestSettingsRepository_Contract(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := NewSettingsRepository(pool)

	s, err := repo.MaybeSingle(ctx)
	require.NoError(t, err)
	assert.Nil(t, s)

	inserted, err := repo.Insert(ctx, model.SiteSettings{SiteName: "Studio"})
	require.NoError(t, err)

	inserted.Tagline = "Light"
	_, err = repo.Update(ctx, inserted.ID, inserted)
	require.NoError(t, err)

	s, err = repo.MaybeSingle(ctx)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "Light", s.Tagline)
}

func TestSettingsRepository_SecondInsertKeepsSingleRow(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := NewSettingsRepository(pool)

	first, err := repo.Insert(ctx, model.SiteSettings{SiteName: "A"})
	require.NoError(t, err)
	second, err := repo.Insert(ctx, model.SiteSettings{SiteName: "B"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	second.Tagline = "saved"
	_, err = repo.Update(ctx, second.ID, second)
	require.NoError(t, err)

	s, err := repo.MaybeSingle(ctx)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "B", s.SiteName)
	assert.Equal(t, "saved", s.Tagline)

	var rows int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM site_settings`).Scan(&rows))
	assert.Equal(t, 1, rows)
}
