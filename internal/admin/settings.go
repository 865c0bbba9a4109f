package admin

import (
	"context"

	"go.uber.org/zap"

	"photostudio/internal/backend"
	"photostudio/internal/model"
)

// SettingsManager edits the singleton settings row.
type SettingsManager struct {
	table      backend.SettingsTable
	logger     *zap.Logger
	afterWrite func(ctx context.Context)
}

func NewSettingsManager(table backend.SettingsTable, logger *zap.Logger) *SettingsManager {
	return &SettingsManager{table: table, logger: logger}
}

func (m *SettingsManager) OnWrite(fn func(ctx context.Context)) {
	m.afterWrite = fn
}

// Fetch returns the stored row and true, or the defaults and false when no row exists or
// the read fails.
func (m *SettingsManager) Fetch(ctx context.Context) (model.SiteSettings, bool) {
	s, exists, _ := m.Load(ctx)
	return s, exists
}

// Load is Fetch for callers that build on the current row and must not mistake a failed
// read for an empty table.
func (m *SettingsManager) Load(ctx context.Context) (model.SiteSettings, bool, error) {
	s, err := m.table.MaybeSingle(ctx)
	if err != nil {
		m.logger.Error("Failed to fetch settings", zap.Error(err))
		return model.DefaultSettings(), false, &UserError{Message: "Failed to load settings", Err: err}
	}
	if s == nil {
		return model.DefaultSettings(), false, nil
	}
	return *s, true, nil
}

// Save updates the existing row, or inserts the first one.
func (m *SettingsManager) Save(ctx context.Context, s model.SiteSettings) (model.SiteSettings, error) {
	id := s.ID
	if id == "" {
		existing, err := m.table.MaybeSingle(ctx)
		if err != nil {
			return m.fail(err)
		}
		if existing != nil {
			id = existing.ID
		}
	}

	var (
		saved model.SiteSettings
		err   error
	)
	if id != "" {
		saved, err = m.table.Update(ctx, id, s)
	} else {
		saved, err = m.table.Insert(ctx, s)
	}
	if err != nil {
		return m.fail(err)
	}

	if m.afterWrite != nil {
		m.afterWrite(ctx)
	}
	return saved, nil
}

func (m *SettingsManager) fail(err error) (model.SiteSettings, error) {
	m.logger.Error("Failed to save settings", zap.Error(err))
	return model.SiteSettings{}, &UserError{Message: "Failed to save settings", Err: err}
}
