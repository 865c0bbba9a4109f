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

const projectColumns = `
        id::text, title, description, image_url, category,
        COALESCE(to_char(date, 'YYYY-MM-DD'), ''), featured, order_index,
        fb_link, images_data, created_at, updated_at`

type ProjectRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewProjectRepository(db *pgxpool.Pool, logger *zap.Logger) *ProjectRepository {
	return &ProjectRepository{
		db:     db,
		logger: logger,
	}
}

func scanProject(row pgx.Row) (model.Project, error) {
	var p model.Project
	var category string
	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Description,
		&p.ImageURL,
		&category,
		&p.Date,
		&p.Featured,
		&p.OrderIndex,
		&p.FBLink,
		&p.ImagesData,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	p.Category = model.Category(category)
	p.Normalize()
	return p, err
}

// Select lists every project in the requested order.
func (r *ProjectRepository) Select(ctx context.Context, order backend.Order) ([]model.Project, error) {
	defer metrics.ObserveDBQuery("select", "projects", time.Now())

	clause, err := orderClause(order, backend.ProjectColumns)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, `SELECT `+projectColumns+` FROM projects`+clause)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := []model.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (r *ProjectRepository) Insert(ctx context.Context, p model.Project) (model.Project, error) {
	defer metrics.ObserveDBQuery("insert", "projects", time.Now())
	p.Normalize()

	query := `
        INSERT INTO projects (id, title, description, image_url, category, date,
                              featured, order_index, fb_link, images_data)
        VALUES ($1, $2, $3, $4, $5, NULLIF($6, '')::date, $7, $8, $9, $10)
        RETURNING ` + projectColumns

	out, err := scanProject(r.db.QueryRow(ctx, query,
		uuid.NewString(),
		p.Title,
		p.Description,
		p.ImageURL,
		string(p.Category),
		p.Date,
		p.Featured,
		p.OrderIndex,
		p.FBLink,
		p.ImagesData,
	))
	if err != nil {
		r.logger.Error("Failed to insert project", zap.String("title", p.Title), zap.Error(err))
		return model.Project{}, err
	}

	r.logger.Info("Project inserted", zap.String("id", out.ID))
	return out, nil
}

func (r *ProjectRepository) Update(ctx context.Context, id string, p model.Project) (model.Project, error) {
	defer metrics.ObserveDBQuery("update", "projects", time.Now())
	p.Normalize()

	query := `
        UPDATE projects
        SET title = $2, description = $3, image_url = $4, category = $5,
            date = NULLIF($6, '')::date, featured = $7, order_index = $8,
            fb_link = $9, images_data = $10, updated_at = NOW()
        WHERE id::text = $1
        RETURNING ` + projectColumns

	out, err := scanProject(r.db.QueryRow(ctx, query,
		id,
		p.Title,
		p.Description,
		p.ImageURL,
		string(p.Category),
		p.Date,
		p.Featured,
		p.OrderIndex,
		p.FBLink,
		p.ImagesData,
	))
	if err != nil {
		return model.Project{}, notFound(err)
	}
	return out, nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	defer metrics.ObserveDBQuery("delete", "projects", time.Now())

	tag, err := r.db.Exec(ctx, `DELETE FROM projects WHERE id::text = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return backend.ErrNotFound
	}
	return nil
}
