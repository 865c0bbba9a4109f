// Package backend declares the narrow contract the site consumes from its data backend:
// row CRUD per table, the zero-or-one settings row, and object storage with public URLs.
// Postgres lives in internal/repository, in-memory tables in internal/repository/memory,
// object stores in internal/storage.
package backend

import (
	"context"
	"errors"
	"fmt"
	"io"

	"photostudio/internal/model"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrInvalidOrder = errors.New("invalid order column")
	ErrConflict     = errors.New("object already exists")
)

// Order sorts a Select by one named column.
type Order struct {
	Column    string
	Ascending bool
}

func Asc(column string) Order  { return Order{Column: column, Ascending: true} }
func Desc(column string) Order { return Order{Column: column, Ascending: false} }

func (o Order) String() string {
	if o.Ascending {
		return o.Column + " asc"
	}
	return o.Column + " desc"
}

var (
	ProjectColumns = []string{"order_index", "created_at", "date", "title"}
	PackageColumns = []string{"order_index", "price", "created_at", "name"}
)

// CheckOrder rejects columns outside the table's whitelist.
func CheckOrder(o Order, allowed []string) error {
	for _, c := range allowed {
		if c == o.Column {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrInvalidOrder, o.Column)
}

// Table is row CRUD over one resource.
type Table[T any] interface {
	Select(ctx context.Context, order Order) ([]T, error)
	Insert(ctx context.Context, row T) (T, error)
	Update(ctx context.Context, id string, row T) (T, error)
	Delete(ctx context.Context, id string) error
}

type ProjectTable = Table[model.Project]

type PackageTable = Table[model.Package]

// SettingsTable holds the singleton settings row.
type SettingsTable interface {
	// MaybeSingle returns (nil, nil) when the table is empty.
	MaybeSingle(ctx context.Context) (*model.SiteSettings, error)
	Insert(ctx context.Context, s model.SiteSettings) (model.SiteSettings, error)
	Update(ctx context.Context, id string, s model.SiteSettings) (model.SiteSettings, error)
}

// UserTable backs password sign-in.
type UserTable interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	Create(ctx context.Context, u *model.User) error
}

// ObjectStore is bucket-scoped object storage.
type ObjectStore interface {
	Upload(ctx context.Context, path string, r io.Reader, contentType string) error
	PublicURL(path string) string
}
