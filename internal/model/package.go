package model

import (
	"strings"
	"time"
)

type Package struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       string    `json:"price"`
	Features    []string  `json:"features"`
	Popular     bool      `json:"popular"`
	OrderIndex  int       `json:"order_index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewPackage returns the defaults of the "Add New Package" form: one empty feature row.
func NewPackage() Package {
	return Package{Features: []string{""}}
}

func (p Package) GetID() string { return p.ID }

// CleanFeatures drops feature entries that are empty after trimming.
// Surviving entries keep their order and their original text.
func CleanFeatures(in []string) []string {
	out := make([]string, 0, len(in))
	for _, f := range in {
		if strings.TrimSpace(f) == "" {
			continue
		}
		out = append(out, f)
	}
	return out
}

func (p *Package) Normalize() {
	p.Features = CleanFeatures(p.Features)
}

func (p Package) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	if strings.TrimSpace(p.Price) == "" {
		return &ValidationError{Field: "price", Message: "price is required"}
	}
	if p.OrderIndex < 0 {
		return &ValidationError{Field: "order_index", Message: "order must not be negative"}
	}
	return nil
}
