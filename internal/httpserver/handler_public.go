package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"photostudio/internal/content"
	"photostudio/internal/reveal"
)

// PublicHandler serves the read-only JSON API and the about text stream.
type PublicHandler struct {
	store    *content.Store
	interval time.Duration
	logger   *zap.Logger
}

func NewPublicHandler(store *content.Store, typewriterInterval time.Duration, logger *zap.Logger) *PublicHandler {
	return &PublicHandler{store: store, interval: typewriterInterval, logger: logger}
}

func (h *PublicHandler) Projects(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"projects": h.store.Projects(c.Request.Context())})
}

func (h *PublicHandler) Packages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"packages": h.store.Packages(c.Request.Context())})
}

func (h *PublicHandler) Settings(c *gin.Context) {
	s, exists := h.store.Settings(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"settings": s.WithDefaults(), "exists": exists})
}

// AboutStream sends the typewriter reveal of the about text as server-sent events and
// starts over whenever the settings change.
func (h *PublicHandler) AboutStream(c *gin.Context) {
	ctx := c.Request.Context()

	changed := make(chan struct{}, 1)
	unsubscribe := h.store.Subscribe(func(ch content.Change) {
		if ch.Kind != content.KindSettings {
			return
		}
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	texts := make(chan string)
	go h.feedAbout(ctx, changed, texts)
	frames := reveal.Typewriter(ctx, texts, h.interval)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)

	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-frames:
			if !ok {
				return
			}
			c.SSEvent("about", frame)
			c.Writer.Flush()
		}
	}
}

func (h *PublicHandler) feedAbout(ctx context.Context, changed <-chan struct{}, texts chan<- string) {
	defer close(texts)
	for {
		s, _ := h.store.Settings(ctx)
		select {
		case texts <- s.WithDefaults().About:
		case <-ctx.Done():
			return
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return
		}
	}
}
