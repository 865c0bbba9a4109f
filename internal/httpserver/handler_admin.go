package httpserver

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"photostudio/internal/admin"
	"photostudio/internal/content"
	"photostudio/internal/model"
)

// ResourceHandler serves the admin JSON API of one resource.
type ResourceHandler[T any] struct {
	manager *admin.Manager[T]
	plural  string
	setID   func(*T, string)
	logger  *zap.Logger
}

func NewResourceHandler[T any](manager *admin.Manager[T], plural string, setID func(*T, string), logger *zap.Logger) *ResourceHandler[T] {
	return &ResourceHandler[T]{manager: manager, plural: plural, setID: setID, logger: logger}
}

func (h *ResourceHandler[T]) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{h.plural: h.manager.FetchAll(c.Request.Context())})
}

// Create inserts the body over the form defaults. An id in the body is ignored.
func (h *ResourceHandler[T]) Create(c *gin.Context) {
	form := h.manager.CreateNew()
	if err := c.ShouldBindJSON(&form.Value); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	h.setID(&form.Value, "")
	h.submit(c, form, http.StatusCreated)
}

// Update replaces the entity with the path id.
func (h *ResourceHandler[T]) Update(c *gin.Context) {
	var value T
	if err := c.ShouldBindJSON(&value); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	h.setID(&value, c.Param("id"))
	h.submit(c, h.manager.Edit(value), http.StatusOK)
}

func (h *ResourceHandler[T]) submit(c *gin.Context, form *admin.Form[T], status int) {
	list, err := form.Submit(c.Request.Context())
	if err != nil {
		writeError(c, err, h.manager.Noun()+" not found")
		return
	}
	c.JSON(status, gin.H{
		h.manager.Noun(): form.Value,
		h.plural:         list,
	})
}

// Delete requires ?confirm=true.
func (h *ResourceHandler[T]) Delete(c *gin.Context) {
	confirm := admin.Answer(c.Query("confirm") == "true")
	list, err := h.manager.Delete(c.Request.Context(), c.Param("id"), confirm)
	if err != nil {
		writeError(c, err, h.manager.Noun()+" not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{h.plural: list})
}

// UploadHandler serves the image upload sub-flows.
type UploadHandler struct {
	uploader *admin.Uploader
	settings *admin.SettingsManager
	logger   *zap.Logger
}

func NewUploadHandler(uploader *admin.Uploader, settings *admin.SettingsManager, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{uploader: uploader, settings: settings, logger: logger}
}

// uploadStatus is 422 for a rejected selection and 502 when storage failed.
func uploadStatus(err error) int {
	var uerr *admin.UserError
	if errors.As(err, &uerr) && uerr.Err == nil {
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadGateway
}

func fileFromHeader(fh *multipart.FileHeader) admin.File {
	return admin.File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// ProjectImages uploads files[] in order and returns the resulting image state. On a
// failure the images uploaded before it are still returned.
func (h *UploadHandler) ProjectImages(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return
	}

	state := admin.ImageState{
		Images:  form.Value["images_data"],
		Primary: c.PostForm("image_url"),
	}
	if state.Images == nil {
		state.Images = []string{}
	}

	files := make([]admin.File, 0, len(form.File["files"]))
	for _, fh := range form.File["files"] {
		files = append(files, fileFromHeader(fh))
	}

	out, err := h.uploader.UploadBatch(c.Request.Context(), admin.ProjectsPrefix, files, state)
	if err != nil {
		c.JSON(uploadStatus(err), gin.H{
			"images_data": out.Images,
			"image_url":   out.Primary,
			"error":       err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"images_data": out.Images,
		"image_url":   out.Primary,
	})
}

// SettingsImage uploads one file into a settings image slot. The returned settings are
// not saved; the caller saves them with the rest of the form.
func (h *UploadHandler) SettingsImage(c *gin.Context) {
	field, ok := model.ParseImageField(c.Param("field"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown image field"})
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	current, _, err := h.settings.Load(c.Request.Context())
	if err != nil {
		writeError(c, err, "settings not found")
		return
	}
	updated, err := h.uploader.UploadSettingsImage(c.Request.Context(), field, fileFromHeader(fh), current)
	if err != nil {
		c.JSON(uploadStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": updated})
}

type SettingsHandler struct {
	manager *admin.SettingsManager
	logger  *zap.Logger
}

func NewSettingsHandler(manager *admin.SettingsManager, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{manager: manager, logger: logger}
}

func (h *SettingsHandler) Get(c *gin.Context) {
	s, exists := h.manager.Fetch(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"settings": s, "exists": exists})
}

func (h *SettingsHandler) Save(c *gin.Context) {
	var s model.SiteSettings
	if err := c.ShouldBindJSON(&s); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	saved, err := h.manager.Save(c.Request.Context(), s)
	if err != nil {
		writeError(c, err, "settings not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": saved})
}

// invalidateOn drops the cached public content of kind after every admin write.
func invalidateOn(store *content.Store, kind content.Kind) func(ctx context.Context) {
	return func(ctx context.Context) {
		store.Invalidate(ctx, kind)
	}
}
