package httpserver

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"photostudio/internal/admin"
	"photostudio/internal/auth"
	"photostudio/internal/authctx"
	"photostudio/internal/content"
	"photostudio/internal/gallery"
	"photostudio/internal/model"
	"photostudio/internal/shell"
	"photostudio/internal/web"
)

// seenCookie marks a browser that already sat through the splash screen.
const seenCookie = "ps_seen"

type SiteOptions struct {
	SplashMin      time.Duration
	WhatsAppNumber string
	SecureCookies  bool
	Now            func() time.Time
}

// SiteHandler renders the HTML shell: splash, public site and admin pages.
type SiteHandler struct {
	store    *content.Store
	projects *admin.Manager[model.Project]
	packages *admin.Manager[model.Package]
	settings *admin.SettingsManager
	auth     *AuthHandler
	opts     SiteOptions
	logger   *zap.Logger
}

func NewSiteHandler(
	store *content.Store,
	projects *admin.Manager[model.Project],
	packages *admin.Manager[model.Package],
	settings *admin.SettingsManager,
	authHandler *AuthHandler,
	opts SiteOptions,
	logger *zap.Logger,
) *SiteHandler {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &SiteHandler{
		store:    store,
		projects: projects,
		packages: packages,
		settings: settings,
		auth:     authHandler,
		opts:     opts,
		logger:   logger,
	}
}

// machine replays the shell up to the request: the gate has run, so auth is resolved.
func (h *SiteHandler) machine(c *gin.Context, now time.Time) *shell.Machine {
	m := shell.New(now, h.opts.SplashMin)
	if !authctx.FromContext(c.Request.Context()).Loading {
		m.ResolveAuth()
	}
	return m
}

func (h *SiteHandler) Home(c *gin.Context) {
	ctx := c.Request.Context()
	now := h.opts.Now()
	settings, _ := h.store.Settings(ctx)

	_, err := c.Cookie(seenCookie)
	firstVisit := err != nil
	m := h.machine(c, now)
	if shell.ModeForRequest(firstVisit, false) == shell.Splash && m.Tick(now) == shell.Splash {
		c.SetCookie(seenCookie, "1", 0, "/", "", h.opts.SecureCookies, true)
		c.HTML(http.StatusOK, "splash", web.NewSplashPage(settings, m.SplashRemaining(now), "/"))
		return
	}

	page := web.NewHomePage(settings, h.store.Projects(ctx), h.store.Packages(ctx),
		h.opts.WhatsAppNumber, h.slidePosition(c), now)
	page.SignedIn = authctx.FromContext(ctx).SignedIn()
	c.HTML(http.StatusOK, "home", page)
}

// slidePosition applies ?slide=<id>&dir=next|prev&at=<i> to the matching project.
func (h *SiteHandler) slidePosition(c *gin.Context) web.SlidePosition {
	target := c.Query("slide")
	dir := c.Query("dir")
	at, _ := strconv.Atoi(c.Query("at"))
	cycler := gallery.NewCycler()

	return func(p model.Project, n int) int {
		if target == "" || p.ID != target {
			return cycler.Index(p.ID)
		}
		cycler.Set(p.ID, at, n)
		switch dir {
		case "next":
			return cycler.Next(p.ID, n)
		case "prev":
			return cycler.Prev(p.ID, n)
		}
		return cycler.Index(p.ID)
	}
}

// openAdmin runs the hidden gesture from the public site. The splash never delays it.
func (h *SiteHandler) openAdmin(c *gin.Context) *shell.Machine {
	now := h.opts.Now()
	m := shell.New(now, 0)
	if !authctx.FromContext(c.Request.Context()).Loading {
		m.ResolveAuth()
	}
	m.Tick(now)
	if err := m.OpenAdmin(); err != nil {
		h.logger.Error("Shell refused admin transition", zap.Error(err))
	}
	return m
}

func (h *SiteHandler) Admin(c *gin.Context) {
	if h.openAdmin(c).Mode() != shell.Admin {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	ctx := c.Request.Context()
	state := authctx.FromContext(ctx)
	settings, exists := h.settings.Fetch(ctx)
	siteName := settings.WithDefaults().SiteName

	if shell.AdminViewFor(state.User) == shell.Login {
		c.HTML(http.StatusOK, "admin_login", web.LoginPage{SiteName: siteName})
		return
	}

	c.HTML(http.StatusOK, "admin_dashboard", web.DashboardPage{
		SiteName:       siteName,
		User:           *state.User,
		Projects:       h.projects.FetchAll(ctx),
		Packages:       h.packages.FetchAll(ctx),
		Settings:       settings,
		SettingsExists: exists,
	})
}

// Login is the admin login form: success stays in admin mode and shows the dashboard.
func (h *SiteHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.HTML(http.StatusBadRequest, "admin_login", web.LoginPage{Error: "Email and password are required"})
		return
	}

	if _, err := h.auth.signIn(c, req); err != nil {
		msg := "Failed to sign in"
		status := http.StatusInternalServerError
		if errors.Is(err, auth.ErrInvalidCredentials) {
			msg, status = err.Error(), http.StatusUnauthorized
		}
		settings, _ := h.settings.Fetch(c.Request.Context())
		c.HTML(status, "admin_login", web.LoginPage{
			SiteName: settings.WithDefaults().SiteName,
			Email:    req.Email,
			Error:    msg,
		})
		return
	}
	c.Redirect(http.StatusSeeOther, "/admin")
}

func (h *SiteHandler) Logout(c *gin.Context) {
	_ = h.auth.signOut(c)
	c.Redirect(http.StatusSeeOther, "/admin")
}

// Exit leaves admin mode without signing out.
func (h *SiteHandler) Exit(c *gin.Context) {
	m := h.openAdmin(c)
	if err := m.ExitAdmin(); err != nil {
		h.logger.Error("Shell refused exit transition", zap.Error(err))
	}
	c.SetCookie(seenCookie, "1", 0, "/", "", h.opts.SecureCookies, true)
	c.Redirect(http.StatusSeeOther, "/")
}
