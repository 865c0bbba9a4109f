// Package web renders the server-side pages: splash, the public one-page site and the
// admin login and dashboard.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"math"
	"strings"
	"time"

	"photostudio/internal/booking"
	"photostudio/internal/model"
)

//go:embed templates/*.html
var templatesFS embed.FS

var funcs = template.FuncMap{
	"upper": strings.ToUpper,
	"inc":   func(i int) int { return i + 1 },
	"join":  strings.Join,
}

// Templates parses the embedded page templates.
func Templates() (*template.Template, error) {
	return template.New("pages").Funcs(funcs).ParseFS(templatesFS, "templates/*.html")
}

type SplashPage struct {
	SiteName string
	Refresh  template.HTML
}

// NewSplashPage redirects to target once delay has elapsed.
func NewSplashPage(s model.SiteSettings, delay time.Duration, target string) SplashPage {
	secs := int(math.Ceil(delay.Seconds()))
	return SplashPage{
		SiteName: s.WithDefaults().SiteName,
		Refresh: template.HTML(fmt.Sprintf(`<meta http-equiv="refresh" content="%d;url=%s">`,
			secs, template.HTMLEscapeString(target))),
	}
}

type ProjectView struct {
	model.Project
	Slides   []string
	Current  int
	Image    string
	NextHref string
	PrevHref string
}

type PackageView struct {
	model.Package
	BookingURL string
}

type HomePage struct {
	Settings    model.SiteSettings
	TitleFirst  string
	TitleSecond string
	HeroImage   string
	AboutImage  string
	Projects    []ProjectView
	Packages    []PackageView
	Year        int
	Stream      string
	SignedIn    bool
}

// SlidePosition returns the slide to show for a project.
type SlidePosition func(p model.Project, n int) int

func NewHomePage(s model.SiteSettings, projects []model.Project, packages []model.Package, whatsapp string, slide SlidePosition, now time.Time) HomePage {
	s = s.WithDefaults()
	first, second := s.SplitSiteName()
	page := HomePage{
		Settings:    s,
		TitleFirst:  first,
		TitleSecond: second,
		HeroImage:   s.HeroPhoto(),
		AboutImage:  s.AboutPhoto(),
		Year:        now.Year(),
		Stream:      "/api/about/stream",
		Projects:    make([]ProjectView, 0, len(projects)),
		Packages:    make([]PackageView, 0, len(packages)),
	}

	for _, p := range projects {
		slides := p.Gallery()
		v := ProjectView{Project: p, Slides: slides}
		if len(slides) > 0 {
			v.Current = slide(p, len(slides))
			v.Image = slides[v.Current]
			v.NextHref = slideHref(p.ID, "next", v.Current)
			v.PrevHref = slideHref(p.ID, "prev", v.Current)
		}
		page.Projects = append(page.Projects, v)
	}

	for _, p := range packages {
		v := PackageView{Package: p}
		if whatsapp != "" {
			v.BookingURL = booking.WhatsAppURL(whatsapp, p.Name, p.Price)
		}
		page.Packages = append(page.Packages, v)
	}
	return page
}

func slideHref(id, dir string, at int) string {
	return fmt.Sprintf("/?slide=%s&dir=%s&at=%d#portfolio", id, dir, at)
}

type LoginPage struct {
	SiteName string
	Email    string
	Error    string
}

type DashboardPage struct {
	SiteName       string
	User           model.User
	Projects       []model.Project
	Packages       []model.Package
	Settings       model.SiteSettings
	SettingsExists bool
}

// FormPage renders the create/edit form of one resource.
type FormPage[T any] struct {
	SiteName string
	// Label is the capitalised noun, e.g. "Project".
	Label  string
	Action string
	IsNew  bool
	Value  T
	Error  string
}

// ProjectFormPage adds the category choices to the project form.
type ProjectFormPage struct {
	FormPage[model.Project]
	Categories []model.Category
}

type SettingsFormPage struct {
	SiteName string
	Settings model.SiteSettings
	Exists   bool
	Error    string
}

// ConfirmPage asks before a destructive action.
type ConfirmPage struct {
	SiteName string
	Prompt   string
	Action   string
	Error    string
}
