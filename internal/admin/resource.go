package admin

import (
	"time"

	"photostudio/internal/backend"
	"photostudio/internal/model"
)

// Resource describes one managed entity type.
type Resource[T any] struct {
	// Noun is used in messages, e.g. "Failed to save project".
	Noun string
	// Order is the admin list order.
	Order backend.Order
	New   func() T
	ID    func(T) string
	// Prepare runs on a copy of the form value right before it is persisted.
	Prepare  func(*T)
	Validate func(T) error
}

// ProjectResource lists projects by order_index and defaults new projects to today.
func ProjectResource(now func() time.Time) Resource[model.Project] {
	if now == nil {
		now = time.Now
	}
	return Resource[model.Project]{
		Noun:  "project",
		Order: backend.Asc("order_index"),
		New:   func() model.Project { return model.NewProject(now()) },
		ID:    model.Project.GetID,
		Prepare: func(p *model.Project) {
			p.Normalize()
			if p.ImageURL == "" && len(p.ImagesData) > 0 {
				p.ImageURL = p.ImagesData[0]
			}
		},
		Validate: model.Project.Validate,
	}
}

// PackageResource lists packages by order_index and drops blank features before saving.
func PackageResource() Resource[model.Package] {
	return Resource[model.Package]{
		Noun:     "package",
		Order:    backend.Asc("order_index"),
		New:      model.NewPackage,
		ID:       model.Package.GetID,
		Prepare:  func(p *model.Package) { p.Features = model.CleanFeatures(p.Features) },
		Validate: model.Package.Validate,
	}
}
