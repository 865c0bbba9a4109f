package model

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanFeatures_DropsBlankEntries(t *testing.T) {
	in := []string{"", "  4 hours coverage", "\t", "Online gallery ", "   ", ""}
	got := CleanFeatures(in)
	assert.Equal(t, []string{"  4 hours coverage", "Online gallery "}, got)

	for _, f := range got {
		assert.NotEmpty(t, f)
	}
}

func TestCleanFeatures_AllBlankYieldsEmptyNotNil(t *testing.T) {
	got := CleanFeatures([]string{"", " "})
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestParseCategory(t *testing.T) {
	for _, c := range Categories {
		got, err := ParseCategory(string(c))
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}

	_, err := ParseCategory("landscape")
	assert.True(t, errors.Is(err, ErrInvalidCategory))
}

func TestProject_Gallery(t *testing.T) {
	p := Project{ImageURL: "a.jpg"}
	assert.Equal(t, []string{"a.jpg"}, p.Gallery())

	p.ImagesData = []string{"b.jpg", "c.jpg"}
	assert.Equal(t, []string{"b.jpg", "c.jpg"}, p.Gallery())

	assert.Nil(t, Project{}.Gallery())
}

func TestProject_Validate(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	p := NewProject(now)
	assert.Equal(t, "2026-03-01", p.Date)
	assert.Equal(t, CategoryWedding, p.Category)

	var verr *ValidationError
	require.True(t, errors.As(p.Validate(), &verr))
	assert.Equal(t, "title", verr.Field)

	p.Title = "Beach Wedding"
	assert.NoError(t, p.Validate())

	p.OrderIndex = -1
	require.True(t, errors.As(p.Validate(), &verr))
	assert.Equal(t, "order_index", verr.Field)
}

func TestPackage_NewPackageHasOneEmptyFeatureRow(t *testing.T) {
	p := NewPackage()
	assert.Equal(t, []string{""}, p.Features)

	p.Normalize()
	assert.Empty(t, p.Features)
}

func TestSiteSettings_Defaults(t *testing.T) {
	var s SiteSettings
	d := s.WithDefaults()
	assert.Equal(t, DefaultSiteName, d.SiteName)
	assert.Equal(t, DefaultTagline, d.Tagline)
	assert.Equal(t, DefaultAbout, d.About)
	assert.Equal(t, DefaultHeroImage, d.HeroPhoto())
	assert.Equal(t, DefaultAboutPic, d.AboutPhoto())

	first, second := d.SplitSiteName()
	assert.Equal(t, "Hirusha", first)
	assert.Equal(t, "Sanjana", second)
}

func TestSiteSettings_AboutPhotoPrecedence(t *testing.T) {
	s := SiteSettings{HeroImage: "hero.jpg"}
	assert.Equal(t, "hero.jpg", s.AboutPhoto())

	s.SetImage(ImageAbout, "about.jpg")
	assert.Equal(t, "about.jpg", s.AboutPhoto())

	s.SetImage(ImageProfile, "me.jpg")
	assert.Equal(t, "me.jpg", s.ProfileImage)
}
