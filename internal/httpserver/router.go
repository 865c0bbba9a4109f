package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"photostudio/internal/admin"
	"photostudio/internal/auth"
	"photostudio/internal/authctx"
	"photostudio/internal/content"
	"photostudio/internal/model"
	"photostudio/internal/web"
	pkgotel "photostudio/pkg/otel"
)

// Pinger reports backend readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Auth     *auth.Service
	Store    *content.Store
	Projects *admin.Manager[model.Project]
	Packages *admin.Manager[model.Package]
	Settings *admin.SettingsManager
	Uploader *admin.Uploader

	JWTTTL             time.Duration
	Site               SiteOptions
	TypewriterInterval time.Duration

	// StorageRoute and StorageDir serve uploaded objects when they live on local disk.
	StorageRoute string
	StorageDir   string

	// DB is nil with the memory driver.
	DB     Pinger
	Ready  func() error
	Logger *zap.Logger
}

// NewRouter wires handlers and connects admin writes to content invalidation.
func NewRouter(d Deps) (*gin.Engine, error) {
	tmpl, err := web.Templates()
	if err != nil {
		return nil, err
	}

	d.Projects.OnWrite(invalidateOn(d.Store, content.KindProjects))
	d.Packages.OnWrite(invalidateOn(d.Store, content.KindPackages))
	d.Settings.OnWrite(invalidateOn(d.Store, content.KindSettings))

	authHandler := NewAuthHandler(d.Auth, d.JWTTTL, d.Site.SecureCookies, d.Logger)
	publicHandler := NewPublicHandler(d.Store, d.TypewriterInterval, d.Logger)
	siteHandler := NewSiteHandler(d.Store, d.Projects, d.Packages, d.Settings, authHandler, d.Site, d.Logger)
	projectHandler := NewResourceHandler(d.Projects, "projects", func(p *model.Project, id string) { p.ID = id }, d.Logger)
	packageHandler := NewResourceHandler(d.Packages, "packages", func(p *model.Package, id string) { p.ID = id }, d.Logger)
	settingsHandler := NewSettingsHandler(d.Settings, d.Logger)
	uploadHandler := NewUploadHandler(d.Uploader, d.Settings, d.Logger)
	projectPages := NewProjectPages(d.Projects, d.Settings, d.Uploader, d.Logger)
	packagePages := NewPackagePages(d.Packages, d.Settings, d.Logger)
	settingsPages := NewSettingsPages(d.Settings, d.Uploader, d.Logger)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(TraceMiddleware())
	r.Use(pkgotel.GinMiddleware())
	r.Use(RequestLogger(d.Logger))
	r.SetHTMLTemplate(tmpl)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 1*time.Second)
		defer cancel()

		if d.DB != nil {
			if err := d.DB.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db_not_ready", "error": err.Error()})
				return
			}
		}
		if d.Ready != nil {
			if err := d.Ready(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if d.StorageRoute != "" && d.StorageDir != "" {
		r.Static(d.StorageRoute, d.StorageDir)
	}

	site := r.Group("/")
	site.Use(authctx.Gate(d.Auth, d.Logger))
	{
		site.GET("/", siteHandler.Home)
		site.GET("/admin", siteHandler.Admin)
		site.GET("/admin/exit", siteHandler.Exit)
		site.POST("/admin/login", siteHandler.Login)
		site.POST("/admin/logout", siteHandler.Logout)

		pages := site.Group("/admin")
		pages.Use(authctx.RedirectAnonymous("/admin"))
		{
			pages.GET("/projects/new", projectPages.New)
			pages.POST("/projects", projectPages.Save)
			pages.GET("/projects/:id/edit", projectPages.Edit)
			pages.POST("/projects/:id", projectPages.Save)
			pages.GET("/projects/:id/delete", projectPages.ConfirmDelete)
			pages.POST("/projects/:id/delete", projectPages.Delete)

			pages.GET("/packages/new", packagePages.New)
			pages.POST("/packages", packagePages.Save)
			pages.GET("/packages/:id/edit", packagePages.Edit)
			pages.POST("/packages/:id", packagePages.Save)
			pages.GET("/packages/:id/delete", packagePages.ConfirmDelete)
			pages.POST("/packages/:id/delete", packagePages.Delete)

			pages.GET("/settings", settingsPages.Edit)
			pages.POST("/settings", settingsPages.Save)
		}

		api := site.Group("/api")
		api.GET("/projects", publicHandler.Projects)
		api.GET("/packages", publicHandler.Packages)
		api.GET("/settings", publicHandler.Settings)
		api.GET("/about/stream", publicHandler.AboutStream)

		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/logout", authHandler.Logout)
		api.GET("/auth/session", authHandler.Session)

		adm := api.Group("/admin")
		adm.Use(authctx.RequireUser())
		{
			adm.GET("/projects", projectHandler.List)
			adm.POST("/projects", projectHandler.Create)
			adm.PUT("/projects/:id", projectHandler.Update)
			adm.DELETE("/projects/:id", projectHandler.Delete)
			adm.POST("/projects/images", uploadHandler.ProjectImages)

			adm.GET("/packages", packageHandler.List)
			adm.POST("/packages", packageHandler.Create)
			adm.PUT("/packages/:id", packageHandler.Update)
			adm.DELETE("/packages/:id", packageHandler.Delete)

			adm.GET("/settings", settingsHandler.Get)
			adm.PUT("/settings", settingsHandler.Save)
			adm.POST("/settings/images/:field", uploadHandler.SettingsImage)
		}
	}

	return r, nil
}
