package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Category is the kind of shoot a project belongs to.
type Category string

const (
	CategoryWedding    Category = "wedding"
	CategoryPortrait   Category = "portrait"
	CategoryEvent      Category = "event"
	CategoryCommercial Category = "commercial"
)

// Categories lists the categories in the order the admin form offers them.
var Categories = []Category{CategoryWedding, CategoryPortrait, CategoryEvent, CategoryCommercial}

var ErrInvalidCategory = errors.New("invalid category")

// ParseCategory validates a raw category value.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
}

// DateLayout is the layout of Project.Date.
const DateLayout = "2006-01-02"

type Project struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	Category    Category  `json:"category"`
	Date        string    `json:"date"`
	Featured    bool      `json:"featured"`
	OrderIndex  int       `json:"order_index"`
	FBLink      string    `json:"fb_link"`
	ImagesData  []string  `json:"images_data"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewProject returns the defaults of the "Add New Project" form.
func NewProject(now time.Time) Project {
	return Project{
		Category:   CategoryWedding,
		Date:       now.UTC().Format(DateLayout),
		ImagesData: []string{},
	}
}

func (p Project) GetID() string { return p.ID }

// Gallery returns the images shown in the project slideshow.
func (p Project) Gallery() []string {
	if len(p.ImagesData) > 0 {
		return p.ImagesData
	}
	if p.ImageURL == "" {
		return nil
	}
	return []string{p.ImageURL}
}

// Normalize fills the optional fields with their explicit defaults.
func (p *Project) Normalize() {
	if p.ImagesData == nil {
		p.ImagesData = []string{}
	}
	if p.Category == "" {
		p.Category = CategoryWedding
	}
	p.FBLink = strings.TrimSpace(p.FBLink)
}

func (p Project) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	if _, err := ParseCategory(string(p.Category)); err != nil {
		return &ValidationError{Field: "category", Message: err.Error()}
	}
	if p.OrderIndex < 0 {
		return &ValidationError{Field: "order_index", Message: "order must not be negative"}
	}
	if p.Date != "" {
		if _, err := time.Parse(DateLayout, p.Date); err != nil {
			return &ValidationError{Field: "date", Message: "date must be YYYY-MM-DD"}
		}
	}
	return nil
}
