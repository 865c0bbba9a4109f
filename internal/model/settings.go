package model

import (
	"strings"
	"time"
)

const (
	DefaultSiteName  = "Hirusha Sanjana"
	DefaultTagline   = "Capturing moments, creating memories"
	DefaultAbout     = "I'm a passionate photographer dedicated to capturing life's most precious moments. With years of experience and a keen eye for detail, I transform ordinary scenes into extraordinary memories."
	DefaultHeroImage = "https://images.pexels.com/photos/1264210/pexels-photo-1264210.jpeg?auto=compress&cs=tinysrgb&w=1920"
	DefaultAboutPic  = "https://images.unsplash.com/photo-1554048612-b6a482bc67e5?q=80&w=2070"
)

// SiteSettings is the singleton site configuration row.
type SiteSettings struct {
	ID           string    `json:"id"`
	SiteName     string    `json:"site_name"`
	Tagline      string    `json:"tagline"`
	About        string    `json:"about"`
	ContactEmail string    `json:"contact_email"`
	Instagram    string    `json:"instagram"`
	Facebook     string    `json:"facebook"`
	HeroImage    string    `json:"hero_image"`
	ProfileImage string    `json:"profile_image"`
	AboutImage   string    `json:"about_image"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DefaultSettings is what the public site shows when no settings row exists.
func DefaultSettings() SiteSettings {
	return SiteSettings{
		SiteName: DefaultSiteName,
		Tagline:  DefaultTagline,
		About:    DefaultAbout,
	}
}

// WithDefaults fills blank display fields for rendering.
func (s SiteSettings) WithDefaults() SiteSettings {
	d := DefaultSettings()
	if strings.TrimSpace(s.SiteName) == "" {
		s.SiteName = d.SiteName
	}
	if strings.TrimSpace(s.Tagline) == "" {
		s.Tagline = d.Tagline
	}
	if strings.TrimSpace(s.About) == "" {
		s.About = d.About
	}
	return s
}

// HeroPhoto is the hero background, falling back to the stock image.
func (s SiteSettings) HeroPhoto() string {
	if s.HeroImage != "" {
		return s.HeroImage
	}
	return DefaultHeroImage
}

// AboutPhoto prefers the dedicated about image, then the hero image.
func (s SiteSettings) AboutPhoto() string {
	switch {
	case s.AboutImage != "":
		return s.AboutImage
	case s.HeroImage != "":
		return s.HeroImage
	default:
		return DefaultAboutPic
	}
}

// SplitSiteName returns the two hero title lines.
func (s SiteSettings) SplitSiteName() (string, string) {
	words := strings.Fields(s.SiteName)
	first, second := "HIRUSHA", "SANJANA"
	if len(words) > 0 {
		first = words[0]
	}
	if len(words) > 1 {
		second = words[1]
	}
	return first, second
}

// ImageField names a settings image slot that accepts uploads.
type ImageField string

const (
	ImageHero    ImageField = "hero"
	ImageProfile ImageField = "profile"
	ImageAbout   ImageField = "about"
)

func ParseImageField(s string) (ImageField, bool) {
	switch ImageField(s) {
	case ImageHero, ImageProfile, ImageAbout:
		return ImageField(s), true
	}
	return "", false
}

// SetImage stores url in the slot named by f.
func (s *SiteSettings) SetImage(f ImageField, url string) {
	switch f {
	case ImageHero:
		s.HeroImage = url
	case ImageProfile:
		s.ProfileImage = url
	case ImageAbout:
		s.AboutImage = url
	}
}
