package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"

	"photostudio/internal/backend"
)

// notFound maps pgx.ErrNoRows onto backend.ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return backend.ErrNotFound
	}
	return err
}

func orderClause(o backend.Order, allowed []string) (string, error) {
	if err := backend.CheckOrder(o, allowed); err != nil {
		return "", err
	}
	dir := "DESC"
	if o.Ascending {
		dir = "ASC"
	}
	// created_at breaks ties so equal sort orders list deterministically.
	return " ORDER BY " + o.Column + " " + dir + ", created_at ASC", nil
}
