package web

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photostudio/internal/model"
)

func firstSlide(model.Project, int) int { return 0 }

func TestHomePageRendersContent(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)

	projects := []model.Project{
		{ID: "p1", Title: "Beach Wedding", Category: model.CategoryWedding, ImagesData: []string{"http://x/1.jpg", "http://x/2.jpg"}},
		{ID: "p2", Title: "No Images", Category: model.CategoryEvent},
	}
	packages := []model.Package{
		{ID: "k1", Name: "Gold", Price: "LKR 90,000", Popular: true, Features: []string{"Album"}},
		{ID: "k2", Name: "Basic", Price: "LKR 25,000"},
	}
	page := NewHomePage(model.SiteSettings{}, projects, packages, "+94 77 123 4567", firstSlide,
		time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, "Hirusha", page.TitleFirst)
	assert.Equal(t, model.DefaultHeroImage, page.HeroImage)
	assert.Equal(t, "http://x/1.jpg", page.Projects[0].Image)
	assert.Contains(t, page.Projects[0].NextHref, "slide=p1&dir=next&at=0")
	assert.Empty(t, page.Projects[1].Image)
	assert.True(t, strings.HasPrefix(page.Packages[0].BookingURL, "https://wa.me/94771234567?text="))

	var buf bytes.Buffer
	require.NoError(t, tmpl.ExecuteTemplate(&buf, "home", page))
	html := buf.String()
	assert.Contains(t, html, "HIRUSHA")
	assert.Contains(t, html, "Beach Wedding")
	assert.Equal(t, 1, strings.Count(html, "Most Popular"))
	assert.Contains(t, html, "&copy; 2025")
	assert.Contains(t, html, `href="/admin"`)
}

func TestSplashPage(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)

	page := NewSplashPage(model.SiteSettings{SiteName: "Studio Lumen"}, 1500*time.Millisecond, "/")
	var buf bytes.Buffer
	require.NoError(t, tmpl.ExecuteTemplate(&buf, "splash", page))
	assert.Contains(t, buf.String(), `<meta http-equiv="refresh" content="2;url=/">`)
	assert.Contains(t, buf.String(), "Studio Lumen")
}

func TestAdminTemplates(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, tmpl.ExecuteTemplate(&buf, "admin_login", LoginPage{SiteName: "S", Error: "invalid email or password"}))
	assert.Contains(t, buf.String(), "invalid email or password")

	buf.Reset()
	require.NoError(t, tmpl.ExecuteTemplate(&buf, "admin_dashboard", DashboardPage{
		SiteName: "S",
		User:     model.User{Email: "a@b.c"},
		Projects: []model.Project{{ID: "p", Title: "T", ImageURL: "http://x"}},
	}))
	assert.Contains(t, buf.String(), "Projects (1)")
	assert.Contains(t, buf.String(), "(defaults)")
}
