package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"photostudio/internal/backend"
	"photostudio/internal/model"
)

type SettingsTable struct {
	Faults

	mu    sync.RWMutex
	rows  []model.SiteSettings
	clock *clock
}

func NewSettingsTable(now func() time.Time) *SettingsTable {
	if now == nil {
		now = time.Now
	}
	return &SettingsTable{clock: &clock{now: now}}
}

func (t *SettingsTable) MaybeSingle(ctx context.Context) (*model.SiteSettings, error) {
	if err := t.take(); err != nil {
		return nil, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	if len(t.rows) == 0 {
		return nil, nil
	}
	s := t.rows[0]
	return &s, nil
}

func (t *SettingsTable) Insert(ctx context.Context, s model.SiteSettings) (model.SiteSettings, error) {
	if err := t.take(); err != nil {
		return model.SiteSettings{}, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	// one row at most: a second insert overwrites the first and keeps its id
	s.UpdatedAt = t.clock.tick()
	if len(t.rows) > 0 {
		s.ID = t.rows[0].ID
		t.rows[0] = s
		return s, nil
	}
	s.ID = uuid.NewString()
	t.rows = append(t.rows, s)
	return s, nil
}

func (t *SettingsTable) Update(ctx context.Context, id string, s model.SiteSettings) (model.SiteSettings, error) {
	if err := t.take(); err != nil {
		return model.SiteSettings{}, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.rows {
		if t.rows[i].ID == id {
			s.ID = id
			s.UpdatedAt = t.clock.tick()
			t.rows[i] = s
			return s, nil
		}
	}
	return model.SiteSettings{}, backend.ErrNotFound
}

type UserTable struct {
	mu    sync.RWMutex
	users map[string]model.User
}

func NewUserTable() *UserTable {
	return &UserTable{users: map[string]model.User{}}
}

func (t *UserTable) Create(ctx context.Context, u *model.User) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, existing := range t.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return backend.ErrConflict
		}
	}
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now().UTC()
	t.users[u.ID] = *u
	return nil
}

func (t *UserTable) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, u := range t.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, backend.ErrNotFound
}

func (t *UserTable) FindByID(ctx context.Context, id string) (*model.User, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	u, ok := t.users[id]
	if !ok {
		return nil, backend.ErrNotFound
	}
	return &u, nil
}
