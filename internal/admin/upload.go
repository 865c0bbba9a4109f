package admin

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"photostudio/internal/backend"
	"photostudio/internal/model"
	"photostudio/pkg/metrics"
)

const (
	ProjectsPrefix = "projects"
	SettingsPrefix = "settings"
)

// File is one selected file. Open is called once, right before its upload.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// ImageState is the image list and primary image of the entity being edited.
type ImageState struct {
	Images  []string `json:"images_data"`
	Primary string   `json:"image_url"`
}

type Uploader struct {
	store        backend.ObjectStore
	maxBatch     int
	maxFileBytes int64
	logger       *zap.Logger
}

// NewUploader bounds batches to maxBatch files of at most maxFileBytes each; zero disables
// a bound.
func NewUploader(store backend.ObjectStore, maxBatch int, maxFileBytes int64, logger *zap.Logger) *Uploader {
	return &Uploader{
		store:        store,
		maxBatch:     maxBatch,
		maxFileBytes: maxFileBytes,
		logger:       logger,
	}
}

// ObjectName is a random name keeping the lower-cased extension of original.
func ObjectName(prefix, original string) string {
	name := uuid.NewString() + strings.ToLower(path.Ext(path.Base(original)))
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

// UploadBatch uploads files one at a time and appends each public URL to state. The first
// upload becomes the primary image only when none is set. The first failure stops the
// batch; images uploaded before it stay in the returned state.
func (u *Uploader) UploadBatch(ctx context.Context, prefix string, files []File, state ImageState) (ImageState, error) {
	out := ImageState{
		Images:  append([]string{}, state.Images...),
		Primary: state.Primary,
	}
	if err := u.checkLimits(files...); err != nil {
		return out, err
	}

	for i, f := range files {
		objectPath := ObjectName(prefix, f.Name)
		if err := u.upload(ctx, objectPath, f); err != nil {
			metrics.RecordUpload(prefix, "error")
			u.logger.Error("Upload failed",
				zap.String("file", f.Name),
				zap.Int("uploaded", i),
				zap.Int("total", len(files)),
				zap.Error(err),
			)
			return out, &UserError{Message: "Upload failed: " + err.Error(), Err: err}
		}
		metrics.RecordUpload(prefix, "ok")

		url := u.store.PublicURL(objectPath)
		out.Images = append(out.Images, url)
		if out.Primary == "" {
			out.Primary = url
		}
	}
	return out, nil
}

// UploadSettingsImage stores one file as settings/<field>-<random>.<ext> and points the
// matching settings field at it.
func (u *Uploader) UploadSettingsImage(ctx context.Context, field model.ImageField, f File, s model.SiteSettings) (model.SiteSettings, error) {
	if err := u.checkLimits(f); err != nil {
		return s, err
	}

	objectPath := ObjectName(SettingsPrefix, f.Name)
	objectPath = SettingsPrefix + "/" + string(field) + "-" + strings.TrimPrefix(objectPath, SettingsPrefix+"/")

	if err := u.upload(ctx, objectPath, f); err != nil {
		metrics.RecordUpload(SettingsPrefix, "error")
		u.logger.Error("Settings image upload failed",
			zap.String("field", string(field)),
			zap.String("file", f.Name),
			zap.Error(err),
		)
		return s, &UserError{Message: "Upload failed: " + err.Error(), Err: err}
	}
	metrics.RecordUpload(SettingsPrefix, "ok")

	s.SetImage(field, u.store.PublicURL(objectPath))
	return s, nil
}

// checkLimits rejects a selection before anything is uploaded. The returned UserError has
// no cause: nothing failed in storage.
func (u *Uploader) checkLimits(files ...File) error {
	if u.maxBatch > 0 && len(files) > u.maxBatch {
		return &UserError{Message: fmt.Sprintf("Upload failed: at most %d files per upload", u.maxBatch)}
	}
	if u.maxFileBytes <= 0 {
		return nil
	}
	for _, f := range files {
		if f.Size > u.maxFileBytes {
			return &UserError{Message: fmt.Sprintf("Upload failed: %s is larger than %d bytes", f.Name, u.maxFileBytes)}
		}
	}
	return nil
}

func (u *Uploader) upload(ctx context.Context, objectPath string, f File) error {
	if f.Open == nil {
		return fmt.Errorf("%s has no content", f.Name)
	}
	r, err := f.Open()
	if err != nil {
		return err
	}
	defer r.Close()

	var body io.Reader = r
	if u.maxFileBytes > 0 {
		body = io.LimitReader(r, u.maxFileBytes)
	}
	return u.store.Upload(ctx, objectPath, body, f.ContentType)
}
