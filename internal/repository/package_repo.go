package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"photostudio/internal/backend"
	"photostudio/internal/model"
	"photostudio/pkg/metrics"
)

const packageColumns = `
        id::text, name, description, price, features, popular, order_index, created_at, updated_at`

type PackageRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewPackageRepository(db *pgxpool.Pool, logger *zap.Logger) *PackageRepository {
	return &PackageRepository{
		db:     db,
		logger: logger,
	}
}

func scanPackage(row pgx.Row) (model.Package, error) {
	var p model.Package
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.Features,
		&p.Popular,
		&p.OrderIndex,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if p.Features == nil {
		p.Features = []string{}
	}
	return p, err
}

func (r *PackageRepository) Select(ctx context.Context, order backend.Order) ([]model.Package, error) {
	defer metrics.ObserveDBQuery("select", "packages", time.Now())

	clause, err := orderClause(order, backend.PackageColumns)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, `SELECT `+packageColumns+` FROM packages`+clause)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	packages := []model.Package{}
	for rows.Next() {
		p, err := scanPackage(rows)
		if err != nil {
			return nil, err
		}
		packages = append(packages, p)
	}
	return packages, rows.Err()
}

func (r *PackageRepository) Insert(ctx context.Context, p model.Package) (model.Package, error) {
	defer metrics.ObserveDBQuery("insert", "packages", time.Now())
	p.Normalize()

	query := `
        INSERT INTO packages (id, name, description, price, features, popular, order_index)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING ` + packageColumns

	out, err := scanPackage(r.db.QueryRow(ctx, query,
		uuid.NewString(),
		p.Name,
		p.Description,
		p.Price,
		p.Features,
		p.Popular,
		p.OrderIndex,
	))
	if err != nil {
		r.logger.Error("Failed to insert package", zap.String("name", p.Name), zap.Error(err))
		return model.Package{}, err
	}

	r.logger.Info("Package inserted", zap.String("id", out.ID))
	return out, nil
}

func (r *PackageRepository) Update(ctx context.Context, id string, p model.Package) (model.Package, error) {
	defer metrics.ObserveDBQuery("update", "packages", time.Now())
	p.Normalize()

	query := `
        UPDATE packages
        SET name = $2, description = $3, price = $4, features = $5,
            popular = $6, order_index = $7, updated_at = NOW()
        WHERE id::text = $1
        RETURNING ` + packageColumns

	out, err := scanPackage(r.db.QueryRow(ctx, query,
		id,
		p.Name,
		p.Description,
		p.Price,
		p.Features,
		p.Popular,
		p.OrderIndex,
	))
	if err != nil {
		return model.Package{}, notFound(err)
	}
	return out, nil
}

func (r *PackageRepository) Delete(ctx context.Context, id string) error {
	defer metrics.ObserveDBQuery("delete", "packages", time.Now())

	tag, err := r.db.Exec(ctx, `DELETE FROM packages WHERE id::text = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return backend.ErrNotFound
	}
	return nil
}
