package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"photostudio/internal/admin"
	"photostudio/internal/backend"
	"photostudio/internal/model"
)

// errorStatus is the response status writeError uses for err.
func errorStatus(err error) int {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, admin.ErrNotConfirmed):
		return http.StatusConflict
	case errors.Is(err, backend.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps admin and backend failures to a status and a display message. Raw
// backend errors never reach the response body.
func writeError(c *gin.Context, err error, notFound string) {
	var (
		verr *model.ValidationError
		uerr *admin.UserError
	)
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": verr.Message, "field": verr.Field})
	case errors.Is(err, admin.ErrNotConfirmed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, backend.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound})
	case errors.As(err, &uerr):
		c.JSON(http.StatusInternalServerError, gin.H{"error": uerr.Message})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
