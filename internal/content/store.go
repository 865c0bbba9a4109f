// Package content is the shared read side of the public site: one cached, subscribable
// holder for projects, packages and settings, invalidated whenever the admin writes.
package content

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"photostudio/internal/backend"
	"photostudio/internal/model"
	"photostudio/pkg/circuitbreaker"
	"photostudio/pkg/metrics"
	pkgotel "photostudio/pkg/otel"
)

type Kind string

const (
	KindProjects Kind = "projects"
	KindPackages Kind = "packages"
	KindSettings Kind = "settings"
)

var AllKinds = []Kind{KindProjects, KindPackages, KindSettings}

// Public read orders: newest projects first, packages by their price label. The admin
// lists use order_index instead.
var (
	ProjectsOrder = backend.Desc("created_at")
	PackagesOrder = backend.Asc("price")
)

const keyPrefix = "photostudio:content:"

func cacheKey(k Kind) string { return keyPrefix + string(k) }

// Change tells subscribers which kind of content went stale.
type Change struct {
	Kind   Kind
	Remote bool
}

// Event is the message exchanged between instances.
type Event struct {
	Kind   Kind      `json:"kind"`
	Origin string    `json:"origin"`
	At     time.Time `json:"at"`
}

// RoutingKey is content.<kind>.
func RoutingKey(k Kind) string { return "content." + string(k) }

// Publisher fans invalidations out to other instances.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

type Store struct {
	projects backend.ProjectTable
	packages backend.PackageTable
	settings backend.SettingsTable

	cache   Cache
	breaker *circuitbreaker.CircuitBreaker
	ttl     time.Duration
	logger  *zap.Logger

	instanceID string
	publisher  Publisher

	// genMu orders cache fills against drops: a fill is written only when no drop of its
	// kind happened since the read started.
	genMu sync.Mutex
	gens  map[Kind]uint64

	mu     sync.RWMutex
	nextID int
	subs   map[int]func(Change)
}

func NewStore(
	projects backend.ProjectTable,
	packages backend.PackageTable,
	settings backend.SettingsTable,
	cache Cache,
	breaker *circuitbreaker.CircuitBreaker,
	ttl time.Duration,
	logger *zap.Logger,
) *Store {
	return &Store{
		projects:   projects,
		packages:   packages,
		settings:   settings,
		cache:      cache,
		breaker:    breaker,
		ttl:        ttl,
		logger:     logger,
		instanceID: uuid.NewString(),
		subs:       map[int]func(Change){},
		gens:       map[Kind]uint64{},
	}
}

// SetPublisher enables fan-out of invalidations to other instances.
func (s *Store) SetPublisher(p Publisher) {
	s.publisher = p
}

// Projects returns the public project list, newest first. Failures yield an empty list.
func (s *Store) Projects(ctx context.Context) []model.Project {
	rows, err := load(ctx, s, KindProjects, func(ctx context.Context) ([]model.Project, error) {
		return s.projects.Select(ctx, ProjectsOrder)
	})
	if err != nil || rows == nil {
		return []model.Project{}
	}
	return rows
}

// Packages returns the public pricing list ordered by price label.
func (s *Store) Packages(ctx context.Context) []model.Package {
	rows, err := load(ctx, s, KindPackages, func(ctx context.Context) ([]model.Package, error) {
		return s.packages.Select(ctx, PackagesOrder)
	})
	if err != nil || rows == nil {
		return []model.Package{}
	}
	return rows
}

type settingsValue struct {
	Settings *model.SiteSettings `json:"settings"`
}

// Settings returns the settings row and true, or the defaults and false.
func (s *Store) Settings(ctx context.Context) (model.SiteSettings, bool) {
	v, err := load(ctx, s, KindSettings, func(ctx context.Context) (settingsValue, error) {
		row, err := s.settings.MaybeSingle(ctx)
		return settingsValue{Settings: row}, err
	})
	if err != nil || v.Settings == nil {
		return model.DefaultSettings(), false
	}
	return *v.Settings, true
}

func load[T any](ctx context.Context, s *Store, kind Kind, fetch func(context.Context) (T, error)) (T, error) {
	ctx, span := pkgotel.StartSpan(ctx, "content.load."+string(kind))
	defer span.End()

	key := cacheKey(kind)
	gen := s.generation(kind)

	var (
		data []byte
		hit  bool
	)
	err := s.breaker.Execute(func() error {
		var err error
		data, hit, err = s.cache.Get(ctx, key)
		return err
	})
	switch {
	case err != nil:
		metrics.RecordCacheLookup(string(kind), "error")
		s.logger.Warn("Content cache unavailable, reading through",
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
	case hit:
		var v T
		if err := json.Unmarshal(data, &v); err == nil {
			metrics.RecordCacheLookup(string(kind), "hit")
			return v, nil
		}
		metrics.RecordCacheLookup(string(kind), "error")
	default:
		metrics.RecordCacheLookup(string(kind), "miss")
	}

	v, err := fetch(ctx)
	if err != nil {
		s.logger.Error("Failed to fetch public content",
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
		return v, err
	}

	if encoded, err := json.Marshal(v); err == nil {
		s.fill(ctx, kind, gen, encoded)
	}
	return v, nil
}

func (s *Store) generation(k Kind) uint64 {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	return s.gens[k]
}

// fill caches a value read at generation gen unless the kind was dropped meanwhile.
func (s *Store) fill(ctx context.Context, k Kind, gen uint64, encoded []byte) {
	s.genMu.Lock()
	defer s.genMu.Unlock()

	if s.gens[k] != gen {
		metrics.RecordCacheLookup(string(k), "stale_fill")
		return
	}
	if err := s.breaker.Execute(func() error {
		return s.cache.Set(ctx, cacheKey(k), encoded, s.ttl)
	}); err != nil {
		s.logger.Debug("Failed to fill content cache", zap.String("kind", string(k)), zap.Error(err))
	}
}

// Invalidate drops the cached kinds, notifies local subscribers and publishes the change.
func (s *Store) Invalidate(ctx context.Context, kinds ...Kind) {
	for _, k := range kinds {
		s.drop(ctx, k)
		metrics.RecordInvalidation(string(k), "local")
		s.notify(Change{Kind: k})

		if s.publisher == nil {
			continue
		}
		ev := Event{Kind: k, Origin: s.instanceID, At: time.Now().UTC()}
		if err := s.publisher.Publish(ctx, RoutingKey(k), ev); err != nil {
			s.logger.Error("Failed to publish content invalidation",
				zap.String("kind", string(k)),
				zap.Error(err),
			)
		}
	}
}

// HandleEvent applies an invalidation received from another instance. Events this instance
// published itself are ignored.
func (s *Store) HandleEvent(ctx context.Context, routingKey string, data json.RawMessage) error {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return err
	}
	if ev.Kind == "" {
		ev.Kind = Kind(strings.TrimPrefix(routingKey, "content."))
	}
	if ev.Origin == s.instanceID {
		return nil
	}
	if !validKind(ev.Kind) {
		s.logger.Warn("Ignoring unknown content event", zap.String("routing_key", routingKey))
		return nil
	}

	s.drop(ctx, ev.Kind)
	metrics.RecordInvalidation(string(ev.Kind), "remote")
	s.notify(Change{Kind: ev.Kind, Remote: true})
	return nil
}

func validKind(k Kind) bool {
	for _, known := range AllKinds {
		if k == known {
			return true
		}
	}
	return false
}

func (s *Store) drop(ctx context.Context, k Kind) {
	s.genMu.Lock()
	defer s.genMu.Unlock()

	s.gens[k]++
	if err := s.breaker.Execute(func() error {
		return s.cache.Delete(ctx, cacheKey(k))
	}); err != nil {
		s.logger.Error("Failed to drop content cache", zap.String("kind", string(k)), zap.Error(err))
	}
}

// Subscribe registers fn for content changes. fn runs on the invalidating goroutine and
// must not block.
func (s *Store) Subscribe(fn func(Change)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify(c Change) {
	s.mu.RLock()
	fns := make([]func(Change), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(c)
	}
}
