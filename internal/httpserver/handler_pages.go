package httpserver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"photostudio/internal/admin"
	"photostudio/internal/model"
	"photostudio/internal/web"
)

// ResourcePages serves the dashboard forms of one resource: new, edit, save and the
// delete confirmation.
type ResourcePages[T any] struct {
	manager  *admin.Manager[T]
	settings *admin.SettingsManager
	plural   string
	label    string
	// bind copies the posted fields onto the form value. A returned error is shown inline
	// and nothing is saved.
	bind   func(c *gin.Context, value *T) error
	render func(c *gin.Context, status int, page web.FormPage[T])
	logger *zap.Logger
}

func (h *ResourcePages[T]) siteName(c *gin.Context) string {
	s, _ := h.settings.Fetch(c.Request.Context())
	return s.WithDefaults().SiteName
}

func (h *ResourcePages[T]) show(c *gin.Context, status int, form *admin.Form[T], action string) {
	h.render(c, status, web.FormPage[T]{
		SiteName: h.siteName(c),
		Label:    h.label,
		Action:   action,
		IsNew:    form.IsNew(),
		Value:    form.Value,
		Error:    form.Err,
	})
}

func (h *ResourcePages[T]) New(c *gin.Context) {
	h.show(c, http.StatusOK, h.manager.CreateNew(), "/admin/"+h.plural)
}

func (h *ResourcePages[T]) Edit(c *gin.Context) {
	id := c.Param("id")
	value, ok := h.manager.Find(c.Request.Context(), id)
	if !ok {
		c.String(http.StatusNotFound, h.manager.Noun()+" not found")
		return
	}
	h.show(c, http.StatusOK, h.manager.Edit(value), "/admin/"+h.plural+"/"+id)
}

// Save inserts on /admin/<plural> and updates on /admin/<plural>/:id.
func (h *ResourcePages[T]) Save(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	action := "/admin/" + h.plural

	form := h.manager.CreateNew()
	if id != "" {
		value, ok := h.manager.Find(ctx, id)
		if !ok {
			c.String(http.StatusNotFound, h.manager.Noun()+" not found")
			return
		}
		form = h.manager.Edit(value)
		action += "/" + id
	}

	if err := h.bind(c, &form.Value); err != nil {
		form.Err = displayMessage(err)
		h.show(c, bindStatus(err), form, action)
		return
	}
	if _, err := form.Submit(ctx); err != nil {
		h.show(c, errorStatus(err), form, action)
		return
	}
	c.Redirect(http.StatusSeeOther, "/admin#"+h.plural)
}

func (h *ResourcePages[T]) ConfirmDelete(c *gin.Context) {
	c.HTML(http.StatusOK, "admin_confirm", web.ConfirmPage{
		SiteName: h.siteName(c),
		Prompt:   h.manager.DeletePrompt(),
		Action:   "/admin/" + h.plural + "/" + c.Param("id") + "/delete",
	})
}

// Delete removes the entity only when the confirmation form answered yes.
func (h *ResourcePages[T]) Delete(c *gin.Context) {
	confirm := admin.Answer(c.PostForm("confirm") == "true")
	_, err := h.manager.Delete(c.Request.Context(), c.Param("id"), confirm)
	if err != nil && !errors.Is(err, admin.ErrNotConfirmed) {
		c.HTML(errorStatus(err), "admin_confirm", web.ConfirmPage{
			SiteName: h.siteName(c),
			Prompt:   h.manager.DeletePrompt(),
			Action:   c.Request.URL.Path,
			Error:    displayMessage(err),
		})
		return
	}
	c.Redirect(http.StatusSeeOther, "/admin#"+h.plural)
}

func NewProjectPages(manager *admin.Manager[model.Project], settings *admin.SettingsManager, uploader *admin.Uploader, logger *zap.Logger) *ResourcePages[model.Project] {
	return &ResourcePages[model.Project]{
		manager:  manager,
		settings: settings,
		plural:   "projects",
		label:    "Project",
		bind: func(c *gin.Context, p *model.Project) error {
			return bindProject(c, uploader, p)
		},
		render: func(c *gin.Context, status int, page web.FormPage[model.Project]) {
			c.HTML(status, "admin_project_form", web.ProjectFormPage{FormPage: page, Categories: model.Categories})
		},
		logger: logger,
	}
}

func NewPackagePages(manager *admin.Manager[model.Package], settings *admin.SettingsManager, logger *zap.Logger) *ResourcePages[model.Package] {
	return &ResourcePages[model.Package]{
		manager:  manager,
		settings: settings,
		plural:   "packages",
		label:    "Package",
		bind:     bindPackage,
		render: func(c *gin.Context, status int, page web.FormPage[model.Package]) {
			c.HTML(status, "admin_package_form", page)
		},
		logger: logger,
	}
}

// bindProject reads the project form and uploads any selected files onto its images.
// On a failed upload the images stored so far are kept in the form.
func bindProject(c *gin.Context, uploader *admin.Uploader, p *model.Project) error {
	order, err := formInt(c, "order_index")
	if err != nil {
		return err
	}
	p.Title = c.PostForm("title")
	p.Description = c.PostForm("description")
	p.Category = model.Category(c.PostForm("category"))
	p.Date = c.PostForm("date")
	p.Featured = c.PostForm("featured") == "true"
	p.OrderIndex = order
	p.FBLink = c.PostForm("fb_link")
	p.ImageURL = c.PostForm("image_url")
	p.ImagesData = formLines(c.PostForm("images_data"), true)

	mf, err := c.MultipartForm()
	if err != nil || len(mf.File["files"]) == 0 {
		return nil
	}
	files := make([]admin.File, 0, len(mf.File["files"]))
	for _, fh := range mf.File["files"] {
		files = append(files, fileFromHeader(fh))
	}
	out, err := uploader.UploadBatch(c.Request.Context(), admin.ProjectsPrefix, files,
		admin.ImageState{Images: p.ImagesData, Primary: p.ImageURL})
	p.ImagesData, p.ImageURL = out.Images, out.Primary
	return err
}

func bindPackage(c *gin.Context, p *model.Package) error {
	order, err := formInt(c, "order_index")
	if err != nil {
		return err
	}
	p.Name = c.PostForm("name")
	p.Description = c.PostForm("description")
	p.Price = c.PostForm("price")
	p.Popular = c.PostForm("popular") == "true"
	p.OrderIndex = order
	p.Features = formLines(c.PostForm("features"), false)
	return nil
}

func formInt(c *gin.Context, field string) (int, error) {
	raw := strings.TrimSpace(c.PostForm(field))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &model.ValidationError{Field: field, Message: "Order must be a whole number"}
	}
	return n, nil
}

// formLines splits a textarea into lines. Blank lines are kept unless dropBlank is set,
// so the resource's own cleanup decides what survives.
func formLines(raw string, dropBlank bool) []string {
	out := []string{}
	if raw == "" {
		return out
	}
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimRight(line, "\r")
		if dropBlank && strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

// displayMessage is the inline text for a failed form: the validation or display message,
// never a raw backend error.
func displayMessage(err error) string {
	var (
		verr *model.ValidationError
		uerr *admin.UserError
	)
	switch {
	case errors.As(err, &verr):
		return verr.Message
	case errors.As(err, &uerr):
		return uerr.Message
	default:
		return "Something went wrong"
	}
}

// bindStatus is 422 for rejected input and 502 when storing an upload failed.
func bindStatus(err error) int {
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		return http.StatusUnprocessableEntity
	}
	return uploadStatus(err)
}

// SettingsPages serves the settings form. Image slots accept an upload that replaces the
// URL before the row is saved.
type SettingsPages struct {
	settings *admin.SettingsManager
	uploader *admin.Uploader
	logger   *zap.Logger
}

func NewSettingsPages(settings *admin.SettingsManager, uploader *admin.Uploader, logger *zap.Logger) *SettingsPages {
	return &SettingsPages{settings: settings, uploader: uploader, logger: logger}
}

func (h *SettingsPages) render(c *gin.Context, status int, s model.SiteSettings, exists bool, msg string) {
	c.HTML(status, "admin_settings_form", web.SettingsFormPage{
		SiteName: s.WithDefaults().SiteName,
		Settings: s,
		Exists:   exists,
		Error:    msg,
	})
}

func (h *SettingsPages) Edit(c *gin.Context) {
	s, exists, err := h.settings.Load(c.Request.Context())
	if err != nil {
		h.render(c, errorStatus(err), s, false, displayMessage(err))
		return
	}
	h.render(c, http.StatusOK, s, exists, "")
}

func (h *SettingsPages) Save(c *gin.Context) {
	ctx := c.Request.Context()
	s := model.SiteSettings{
		ID:           c.PostForm("id"),
		SiteName:     c.PostForm("site_name"),
		Tagline:      c.PostForm("tagline"),
		About:        c.PostForm("about"),
		ContactEmail: c.PostForm("contact_email"),
		Instagram:    c.PostForm("instagram"),
		Facebook:     c.PostForm("facebook"),
		HeroImage:    c.PostForm("hero_image"),
		ProfileImage: c.PostForm("profile_image"),
		AboutImage:   c.PostForm("about_image"),
	}
	exists := s.ID != ""

	for _, field := range []model.ImageField{model.ImageHero, model.ImageProfile, model.ImageAbout} {
		fh, err := c.FormFile(string(field) + "_file")
		if err != nil {
			continue
		}
		updated, err := h.uploader.UploadSettingsImage(ctx, field, fileFromHeader(fh), s)
		if err != nil {
			h.render(c, uploadStatus(err), s, exists, displayMessage(err))
			return
		}
		s = updated
	}

	if _, err := h.settings.Save(ctx, s); err != nil {
		h.render(c, errorStatus(err), s, exists, displayMessage(err))
		return
	}
	c.Redirect(http.StatusSeeOther, "/admin#settings")
}
