package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photostudio/internal/backend"
	"photostudio/internal/model"
)

func fixedClock() func() time.Time {
	t := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time { return t }
}

func TestProjectTable_SelectOrdersByColumnThenCreation(t *testing.T) {
	ctx := context.Background()
	tbl := NewProjectTable(fixedClock())

	for _, p := range []model.Project{
		{Title: "C", OrderIndex: 2},
		{Title: "A", OrderIndex: 0},
		{Title: "B", OrderIndex: 2},
	} {
		_, err := tbl.Insert(ctx, p)
		require.NoError(t, err)
	}

	got, err := tbl.Select(ctx, backend.Asc("order_index"))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"A", "C", "B"}, []string{got[0].Title, got[1].Title, got[2].Title})

	newest, err := tbl.Select(ctx, backend.Desc("created_at"))
	require.NoError(t, err)
	assert.Equal(t, "B", newest[0].Title)
}

func TestProjectTable_InsertAssignsIdentityAndDefaults(t *testing.T) {
	ctx := context.Background()
	tbl := NewProjectTable(nil)

	p, err := tbl.Insert(ctx, model.Project{Title: "Beach Wedding"})
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.False(t, p.CreatedAt.IsZero())
	assert.Equal(t, model.CategoryWedding, p.Category)
	assert.NotNil(t, p.ImagesData)
}

func TestProjectTable_UpdateAndDeleteMissing(t *testing.T) {
	ctx := context.Background()
	tbl := NewProjectTable(nil)

	_, err := tbl.Update(ctx, "missing", model.Project{Title: "x"})
	assert.True(t, errors.Is(err, backend.ErrNotFound))
	assert.True(t, errors.Is(tbl.Delete(ctx, "missing"), backend.ErrNotFound))

	p, err := tbl.Insert(ctx, model.Project{Title: "x"})
	require.NoError(t, err)

	p.Title = "y"
	updated, err := tbl.Update(ctx, p.ID, p)
	require.NoError(t, err)
	assert.Equal(t, "y", updated.Title)
	assert.Equal(t, p.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(p.UpdatedAt))

	require.NoError(t, tbl.Delete(ctx, p.ID))
	assert.Equal(t, 0, tbl.Len())
}

func TestTable_RejectsUnknownOrderColumn(t *testing.T) {
	_, err := NewPackageTable(nil).Select(context.Background(), backend.Asc("popular"))
	assert.True(t, errors.Is(err, backend.ErrInvalidOrder))
}

func TestPackageTable_InsertCleansFeatures(t *testing.T) {
	p, err := NewPackageTable(nil).Insert(context.Background(), model.Package{
		Name:     "Basic",
		Price:    "$499",
		Features: []string{"", "Album", "  "},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Album"}, p.Features)
}

func TestFaults_FailNextAppliesOnce(t *testing.T) {
	ctx := context.Background()
	tbl := NewPackageTable(nil)
	boom := errors.New("boom")

	tbl.FailNext(boom)
	_, err := tbl.Select(ctx, backend.Asc("price"))
	assert.Equal(t, boom, err)

	_, err = tbl.Select(ctx, backend.Asc("price"))
	assert.NoError(t, err)
}

func TestSettingsTable_MaybeSingle(t *testing.T) {
	ctx := context.Background()
	tbl := NewSettingsTable(nil)

	s, err := tbl.MaybeSingle(ctx)
	require.NoError(t, err)
	assert.Nil(t, s)

	inserted, err := tbl.Insert(ctx, model.SiteSettings{SiteName: "Studio"})
	require.NoError(t, err)

	s, err = tbl.MaybeSingle(ctx)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, inserted.ID, s.ID)
	assert.Equal(t, "Studio", s.SiteName)
}

func TestSettingsTable_SecondInsertKeepsSingleRow(t *testing.T) {
	ctx := context.Background()
	tbl := NewSettingsTable(nil)

	first, err := tbl.Insert(ctx, model.SiteSettings{SiteName: "A"})
	require.NoError(t, err)
	second, err := tbl.Insert(ctx, model.SiteSettings{SiteName: "B"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	second.Tagline = "saved"
	_, err = tbl.Update(ctx, second.ID, second)
	require.NoError(t, err)

	s, err := tbl.MaybeSingle(ctx)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "saved", s.Tagline)
	assert.Equal(t, "B", s.SiteName)
}

func TestUserTable(t *testing.T) {
	ctx := context.Background()
	tbl := NewUserTable()

	u := &model.User{Email: "admin@example.com", PasswordHash: "h"}
	require.NoError(t, tbl.Create(ctx, u))
	assert.True(t, errors.Is(tbl.Create(ctx, &model.User{Email: "admin@example.com"}), backend.ErrConflict))

	found, err := tbl.FindByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)

	_, err = tbl.FindByID(ctx, "nope")
	assert.True(t, errors.Is(err, backend.ErrNotFound))
}
