package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"photostudio/internal/model"
	"photostudio/pkg/metrics"
)

const settingsColumns = `
        id::text, site_name, tagline, about, contact_email, instagram, facebook,
        hero_image, profile_image, about_image, updated_at`

type SettingsRepository struct {
	db *pgxpool.Pool
}

func NewSettingsRepository(db *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{db: db}
}

func scanSettings(row pgx.Row) (model.SiteSettings, error) {
	var s model.SiteSettings
	err := row.Scan(
		&s.ID,
		&s.SiteName,
		&s.Tagline,
		&s.About,
		&s.ContactEmail,
		&s.Instagram,
		&s.Facebook,
		&s.HeroImage,
		&s.ProfileImage,
		&s.AboutImage,
		&s.UpdatedAt,
	)
	return s, err
}

// MaybeSingle returns the settings row, or nil when the table is empty. The schema allows
// at most one row.
func (r *SettingsRepository) MaybeSingle(ctx context.Context) (*model.SiteSettings, error) {
	defer metrics.ObserveDBQuery("select", "site_settings", time.Now())

	s, err := scanSettings(r.db.QueryRow(ctx,
		`SELECT `+settingsColumns+` FROM site_settings ORDER BY created_at ASC, id ASC LIMIT 1`))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Insert creates the settings row. When a row already exists it is overwritten and keeps
// its id, so concurrent first saves converge on one row.
func (r *SettingsRepository) Insert(ctx context.Context, s model.SiteSettings) (model.SiteSettings, error) {
	defer metrics.ObserveDBQuery("insert", "site_settings", time.Now())

	query := `
        INSERT INTO site_settings (id, site_name, tagline, about, contact_email, instagram,
                                   facebook, hero_image, profile_image, about_image)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        ON CONFLICT (singleton) DO UPDATE
        SET site_name = EXCLUDED.site_name, tagline = EXCLUDED.tagline, about = EXCLUDED.about,
            contact_email = EXCLUDED.contact_email, instagram = EXCLUDED.instagram,
            facebook = EXCLUDED.facebook, hero_image = EXCLUDED.hero_image,
            profile_image = EXCLUDED.profile_image, about_image = EXCLUDED.about_image,
            updated_at = NOW()
        RETURNING ` + settingsColumns

	return scanSettings(r.db.QueryRow(ctx, query,
		uuid.NewString(),
		s.SiteName,
		s.Tagline,
		s.About,
		s.ContactEmail,
		s.Instagram,
		s.Facebook,
		s.HeroImage,
		s.ProfileImage,
		s.AboutImage,
	))
}

func (r *SettingsRepository) Update(ctx context.Context, id string, s model.SiteSettings) (model.SiteSettings, error) {
	defer metrics.ObserveDBQuery("update", "site_settings", time.Now())

	query := `
        UPDATE site_settings
        SET site_name = $2, tagline = $3, about = $4, contact_email = $5, instagram = $6,
            facebook = $7, hero_image = $8, profile_image = $9, about_image = $10,
            updated_at = NOW()
        WHERE id::text = $1
        RETURNING ` + settingsColumns

	out, err := scanSettings(r.db.QueryRow(ctx, query,
		id,
		s.SiteName,
		s.Tagline,
		s.About,
		s.ContactEmail,
		s.Instagram,
		s.Facebook,
		s.HeroImage,
		s.ProfileImage,
		s.AboutImage,
	))
	if err != nil {
		return model.SiteSettings{}, notFound(err)
	}
	return out, nil
}
