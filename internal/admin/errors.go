package admin

import (
	"context"
	"errors"
)

var ErrNotConfirmed = errors.New("confirmation required")

// UserError is a failure flattened to the message shown to the admin. The backend cause is
// kept for logs and for errors.Is/As.
type UserError struct {
	Message string
	Err     error
}

func (e *UserError) Error() string {
	return e.Message
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// Confirmer is the interactive confirmation step in front of destructive actions.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool {
	return f(ctx, prompt)
}

// Answer is a Confirmer whose answer is already known, e.g. from a request parameter.
type Answer bool

func (a Answer) Confirm(context.Context, string) bool {
	return bool(a)
}
