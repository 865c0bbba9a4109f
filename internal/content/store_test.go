package content

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"photostudio/internal/backend"
	"photostudio/internal/model"
	"photostudio/internal/repository/memory"
	"photostudio/pkg/circuitbreaker"
)

var errDown = errors.New("down")

type fixture struct {
	store    *Store
	projects *memory.ProjectTable
	packages *memory.PackageTable
	settings *memory.SettingsTable
	cache    Cache
}

func newFixture(t *testing.T, cache Cache) fixture {
	t.Helper()
	f := fixture{
		projects: memory.NewProjectTable(nil),
		packages: memory.NewPackageTable(nil),
		settings: memory.NewSettingsTable(nil),
		cache:    cache,
	}
	f.store = NewStore(f.projects, f.packages, f.settings, cache,
		circuitbreaker.NewCircuitBreaker(circuitbreaker.DefaultConfig()), time.Minute, zap.NewNop())
	return f
}

func TestProjectsNewestFirstAndCached(t *testing.T) {
	f := newFixture(t, NewMemoryCache(nil))
	ctx := context.Background()

	for _, title := range []string{"first", "second", "third"} {
		_, err := f.projects.Insert(ctx, model.Project{Title: title, Category: model.CategoryEvent})
		require.NoError(t, err)
	}

	got := f.store.Projects(ctx)
	require.Len(t, got, 3)
	assert.Equal(t, "third", got[0].Title)
	assert.Equal(t, "first", got[2].Title)

	// served from cache until invalidated
	_, err := f.projects.Insert(ctx, model.Project{Title: "fourth", Category: model.CategoryEvent})
	require.NoError(t, err)
	assert.Len(t, f.store.Projects(ctx), 3)

	f.store.Invalidate(ctx, KindProjects)
	got = f.store.Projects(ctx)
	require.Len(t, got, 4)
	assert.Equal(t, "fourth", got[0].Title)
}

func TestPackagesOrderedByPriceText(t *testing.T) {
	f := newFixture(t, NewMemoryCache(nil))
	ctx := context.Background()

	for _, p := range []model.Package{
		{Name: "Gold", Price: "LKR 90,000", OrderIndex: 0},
		{Name: "Basic", Price: "LKR 25,000", OrderIndex: 2},
		{Name: "Silver", Price: "LKR 50,000", OrderIndex: 1},
	} {
		_, err := f.packages.Insert(ctx, p)
		require.NoError(t, err)
	}

	var names []string
	for _, p := range f.store.Packages(ctx) {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"Basic", "Silver", "Gold"}, names)
}

func TestSettingsZeroOrOne(t *testing.T) {
	f := newFixture(t, NewMemoryCache(nil))
	ctx := context.Background()

	s, exists := f.store.Settings(ctx)
	assert.False(t, exists)
	assert.Equal(t, model.DefaultSettings(), s)

	_, err := f.settings.Insert(ctx, model.SiteSettings{SiteName: "Studio Lumen", About: "Hello"})
	require.NoError(t, err)

	// the empty result was cached
	_, exists = f.store.Settings(ctx)
	assert.False(t, exists)

	f.store.Invalidate(ctx, KindSettings)
	s, exists = f.store.Settings(ctx)
	assert.True(t, exists)
	assert.Equal(t, "Studio Lumen", s.SiteName)
}

func TestFetchFailureIsSilentAndNotCached(t *testing.T) {
	f := newFixture(t, NewMemoryCache(nil))
	ctx := context.Background()
	_, err := f.packages.Insert(ctx, model.Package{Name: "Basic", Price: "1"})
	require.NoError(t, err)

	f.packages.FailNext(errDown)
	assert.Empty(t, f.store.Packages(ctx))
	assert.Len(t, f.store.Packages(ctx), 1)

	f.settings.FailNext(errDown)
	s, exists := f.store.Settings(ctx)
	assert.False(t, exists)
	assert.Equal(t, model.DefaultSettings(), s)
}

type brokenCache struct{ calls int }

func (b *brokenCache) Get(context.Context, string) ([]byte, bool, error) {
	b.calls++
	return nil, false, errDown
}
func (b *brokenCache) Set(context.Context, string, []byte, time.Duration) error {
	b.calls++
	return errDown
}
func (b *brokenCache) Delete(context.Context, ...string) error {
	b.calls++
	return errDown
}

func TestBrokenCacheFallsThroughToTables(t *testing.T) {
	cache := &brokenCache{}
	f := newFixture(t, cache)
	ctx := context.Background()
	_, err := f.projects.Insert(ctx, model.Project{Title: "p", Category: model.CategoryPortrait})
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		assert.Len(t, f.store.Projects(ctx), 1)
	}
	// the breaker opened after the configured failures and stopped calling the cache
	assert.Equal(t, circuitbreaker.DefaultConfig().FailureThreshold, cache.calls)
}

type recordingPublisher struct {
	keys   []string
	events []Event
}

func (p *recordingPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	p.keys = append(p.keys, routingKey)
	p.events = append(p.events, payload.(Event))
	return nil
}

func TestInvalidateNotifiesAndPublishes(t *testing.T) {
	f := newFixture(t, NewMemoryCache(nil))
	pub := &recordingPublisher{}
	f.store.SetPublisher(pub)

	var changes []Change
	unsubscribe := f.store.Subscribe(func(c Change) { changes = append(changes, c) })

	f.store.Invalidate(context.Background(), KindPackages, KindSettings)
	assert.Equal(t, []Change{{Kind: KindPackages}, {Kind: KindSettings}}, changes)
	assert.Equal(t, []string{"content.packages", "content.settings"}, pub.keys)

	unsubscribe()
	f.store.Invalidate(context.Background(), KindProjects)
	assert.Len(t, changes, 2)
}

func TestHandleEventFromOtherInstance(t *testing.T) {
	f := newFixture(t, NewMemoryCache(nil))
	ctx := context.Background()
	pub := &recordingPublisher{}
	f.store.SetPublisher(pub)

	var changes []Change
	f.store.Subscribe(func(c Change) { changes = append(changes, c) })

	assert.Empty(t, f.store.Projects(ctx))
	_, err := f.projects.Insert(ctx, model.Project{Title: "remote", Category: model.CategoryWedding})
	require.NoError(t, err)

	// our own echo is ignored
	f.store.Invalidate(ctx, KindSettings)
	own, err := json.Marshal(pub.events[0])
	require.NoError(t, err)
	require.NoError(t, f.store.HandleEvent(ctx, "content.settings", own))
	assert.Len(t, changes, 1)

	remote, err := json.Marshal(Event{Kind: KindProjects, Origin: "other"})
	require.NoError(t, err)
	require.NoError(t, f.store.HandleEvent(ctx, "content.projects", remote))
	assert.Equal(t, Change{Kind: KindProjects, Remote: true}, changes[1])
	assert.Len(t, f.store.Projects(ctx), 1)

	assert.Error(t, f.store.HandleEvent(ctx, "content.projects", json.RawMessage("{")))
	require.NoError(t, f.store.HandleEvent(ctx, "content.bogus", json.RawMessage(`{"origin":"other"}`)))
	assert.Len(t, changes, 2)
}

// stallingPackages reads its rows, then holds the first Select until released.
type stallingPackages struct {
	*memory.PackageTable
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (p *stallingPackages) Select(ctx context.Context, order backend.Order) ([]model.Package, error) {
	rows, err := p.PackageTable.Select(ctx, order)
	p.once.Do(func() {
		close(p.entered)
		<-p.release
	})
	return rows, err
}

func TestInvalidateDuringReadDoesNotCacheStaleRows(t *testing.T) {
	ctx := context.Background()
	packages := &stallingPackages{
		PackageTable: memory.NewPackageTable(nil),
		entered:      make(chan struct{}),
		release:      make(chan struct{}),
	}
	saved, err := packages.Insert(ctx, model.Package{Name: "Gold", Price: "LKR 90,000"})
	require.NoError(t, err)

	store := NewStore(memory.NewProjectTable(nil), packages, memory.NewSettingsTable(nil), NewMemoryCache(nil),
		circuitbreaker.NewCircuitBreaker(circuitbreaker.DefaultConfig()), time.Minute, zap.NewNop())

	done := make(chan []model.Package)
	go func() { done <- store.Packages(ctx) }()
	<-packages.entered

	saved.Popular = true
	_, err = packages.Update(ctx, saved.ID, saved)
	require.NoError(t, err)
	store.Invalidate(ctx, KindPackages)

	close(packages.release)
	inFlight := <-done
	require.Len(t, inFlight, 1)
	assert.False(t, inFlight[0].Popular)

	got := store.Packages(ctx)
	require.Len(t, got, 1)
	assert.True(t, got[0].Popular)
}

func TestMemoryCacheTTL(t *testing.T) {
	now := time.Unix(100, 0)
	c := NewMemoryCache(func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Second))
	v, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", string(v))

	now = now.Add(time.Second)
	_, ok, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}
