// Package admin holds the content management flows behind the admin dashboard: resource
// managers and forms, the settings singleton and image uploads.
package admin

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"photostudio/internal/backend"
)

// Manager owns list, delete and form orchestration for one resource. The list is never
// patched locally; every mutation is followed by a full re-fetch.
type Manager[T any] struct {
	table      backend.Table[T]
	res        Resource[T]
	logger     *zap.Logger
	afterWrite func(ctx context.Context)
}

func NewManager[T any](table backend.Table[T], res Resource[T], logger *zap.Logger) *Manager[T] {
	return &Manager[T]{
		table:  table,
		res:    res,
		logger: logger,
	}
}

// OnWrite registers a hook run after every successful insert, update or delete.
func (m *Manager[T]) OnWrite(fn func(ctx context.Context)) {
	m.afterWrite = fn
}

func (m *Manager[T]) Noun() string {
	return m.res.Noun
}

// DeletePrompt is the question a delete confirmation answers.
func (m *Manager[T]) DeletePrompt() string {
	return fmt.Sprintf("Are you sure you want to delete this %s?", m.res.Noun)
}

// Find looks id up in the admin list.
func (m *Manager[T]) Find(ctx context.Context, id string) (T, bool) {
	for _, row := range m.FetchAll(ctx) {
		if m.res.ID(row) == id {
			return row, true
		}
	}
	var zero T
	return zero, false
}

// FetchAll returns the admin list. Failures are logged and yield an empty list.
func (m *Manager[T]) FetchAll(ctx context.Context) []T {
	rows, err := m.table.Select(ctx, m.res.Order)
	if err != nil {
		m.logger.Error("Failed to fetch list",
			zap.String("resource", m.res.Noun),
			zap.String("order", m.res.Order.String()),
			zap.Error(err),
		)
		return []T{}
	}
	return rows
}

// Delete removes id after confirm accepts, then re-fetches the list. A declined or missing
// confirmation returns ErrNotConfirmed without touching the backend.
func (m *Manager[T]) Delete(ctx context.Context, id string, confirm Confirmer) ([]T, error) {
	if confirm == nil || !confirm.Confirm(ctx, m.DeletePrompt()) {
		return nil, ErrNotConfirmed
	}

	if err := m.table.Delete(ctx, id); err != nil {
		m.logger.Error("Failed to delete",
			zap.String("resource", m.res.Noun),
			zap.String("id", id),
			zap.Error(err),
		)
		return nil, &UserError{Message: "Failed to delete " + m.res.Noun, Err: err}
	}

	m.logger.Info("Deleted", zap.String("resource", m.res.Noun), zap.String("id", id))
	m.wrote(ctx)
	return m.FetchAll(ctx), nil
}

// Edit opens a form seeded from entity.
func (m *Manager[T]) Edit(entity T) *Form[T] {
	return newForm(m, entity)
}

// CreateNew opens a form seeded with the resource defaults.
func (m *Manager[T]) CreateNew() *Form[T] {
	return newForm(m, m.res.New())
}

func (m *Manager[T]) wrote(ctx context.Context) {
	if m.afterWrite != nil {
		m.afterWrite(ctx)
	}
}

// closeForm is the form close callback.
func (m *Manager[T]) closeForm(ctx context.Context) []T {
	m.wrote(ctx)
	return m.FetchAll(ctx)
}
