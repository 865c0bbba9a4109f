package memory

import (
	"strings"
	"time"

	"photostudio/internal/model"
)

type ProjectTable struct {
	*table[model.Project]
}

func NewProjectTable(now func() time.Time) *ProjectTable {
	acc := accessor[model.Project]{
		id: func(p model.Project) string { return p.ID },
		stamp: func(p *model.Project, id string, created, updated time.Time) {
			p.ID, p.CreatedAt, p.UpdatedAt = id, created, updated
		},
		created: func(p model.Project) time.Time { return p.CreatedAt },
		columns: map[string]func(a, b model.Project) int{
			"order_index": by(func(p model.Project) int { return p.OrderIndex }),
			"created_at":  func(a, b model.Project) int { return a.CreatedAt.Compare(b.CreatedAt) },
			"date":        by(func(p model.Project) string { return p.Date }),
			"title":       by(func(p model.Project) string { return p.Title }),
		},
		prepare: func(p *model.Project) {
			p.Normalize()
			p.ImagesData = append([]string{}, p.ImagesData...)
		},
	}
	return &ProjectTable{newTable(acc, now)}
}

type PackageTable struct {
	*table[model.Package]
}

func NewPackageTable(now func() time.Time) *PackageTable {
	acc := accessor[model.Package]{
		id: func(p model.Package) string { return p.ID },
		stamp: func(p *model.Package, id string, created, updated time.Time) {
			p.ID, p.CreatedAt, p.UpdatedAt = id, created, updated
		},
		created: func(p model.Package) time.Time { return p.CreatedAt },
		columns: map[string]func(a, b model.Package) int{
			"order_index": by(func(p model.Package) int { return p.OrderIndex }),
			"price":       by(func(p model.Package) string { return p.Price }),
			"created_at":  func(a, b model.Package) int { return a.CreatedAt.Compare(b.CreatedAt) },
			"name":        by(func(p model.Package) string { return strings.ToLower(p.Name) }),
		},
		prepare: func(p *model.Package) {
			p.Normalize()
		},
	}
	return &PackageTable{newTable(acc, now)}
}
