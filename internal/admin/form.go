package admin

import (
	"context"
	"errors"
	"sync/atomic"

	"go.uber.org/zap"

	"photostudio/internal/model"
)

// Form mirrors one entity being created or edited.
type Form[T any] struct {
	Value T
	// Err is the inline message of the last failed submit.
	Err string

	manager    *Manager[T]
	submitting atomic.Bool
}

func newForm[T any](m *Manager[T], value T) *Form[T] {
	return &Form[T]{manager: m, Value: value}
}

func (f *Form[T]) Submitting() bool {
	return f.submitting.Load()
}

// IsNew reports whether submit will insert.
func (f *Form[T]) IsNew() bool {
	return f.manager.res.ID(f.Value) == ""
}

// Submit persists the form value: update scoped to the id when the value carries one,
// insert otherwise. On success the form closes and the re-fetched list is returned.
func (f *Form[T]) Submit(ctx context.Context) ([]T, error) {
	if !f.submitting.CompareAndSwap(false, true) {
		return nil, &UserError{Message: "Save already in progress"}
	}
	defer f.submitting.Store(false)

	res := f.manager.res
	value := f.Value
	if res.Prepare != nil {
		res.Prepare(&value)
	}

	if res.Validate != nil {
		if err := res.Validate(value); err != nil {
			var verr *model.ValidationError
			if errors.As(err, &verr) {
				f.Err = verr.Message
			} else {
				f.Err = err.Error()
			}
			return nil, err
		}
	}

	var (
		saved T
		err   error
	)
	if id := res.ID(value); id != "" {
		saved, err = f.manager.table.Update(ctx, id, value)
	} else {
		saved, err = f.manager.table.Insert(ctx, value)
	}
	if err != nil {
		f.manager.logger.Error("Failed to save",
			zap.String("resource", res.Noun),
			zap.String("id", res.ID(value)),
			zap.Error(err),
		)
		f.Err = "Failed to save " + res.Noun
		return nil, &UserError{Message: f.Err, Err: err}
	}

	f.Err = ""
	f.Value = saved
	return f.manager.closeForm(ctx), nil
}
