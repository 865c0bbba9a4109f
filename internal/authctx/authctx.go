// Package authctx is the authentication gate: it resolves the request's session once and
// makes the resulting state available to handlers and templates.
package authctx

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"photostudio/internal/auth"
	"photostudio/internal/model"
	"photostudio/internal/util"
)

const CookieName = "ps_session"

// State is what the gate knows about the current request. Loading is true until the gate
// has resolved the session.
type State struct {
	User    *model.User
	Loading bool
	Token   string
}

func (s State) SignedIn() bool {
	return !s.Loading && s.User != nil
}

type ctxKey struct{}

func WithState(ctx context.Context, s State) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the gate state, or a Loading state when the gate has not run.
func FromContext(ctx context.Context) State {
	if s, ok := ctx.Value(ctxKey{}).(State); ok {
		return s
	}
	return State{Loading: true}
}

// SessionResolver is the part of auth.Service the gate needs.
type SessionResolver interface {
	GetSession(ctx context.Context, token string) (*auth.Session, error)
}

// TokenFromRequest prefers the session cookie and falls back to a bearer token.
func TokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	return util.ExtractToken(r)
}

// Gate resolves the session for every request. A lookup failure leaves the request
// anonymous.
func Gate(sessions SessionResolver, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := TokenFromRequest(c.Request)
		state := State{Token: token}

		if token != "" {
			sess, err := sessions.GetSession(c.Request.Context(), token)
			if err != nil {
				logger.Error("Failed to resolve session",
					zap.String("path", c.Request.URL.Path),
					zap.Error(err),
				)
			} else if sess != nil {
				u := sess.User
				state.User = &u
			}
		}

		c.Request = c.Request.WithContext(WithState(c.Request.Context(), state))
		c.Next()
	}
}

// RequireUser aborts with 401 unless the gate found a signed-in user.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !FromContext(c.Request.Context()).SignedIn() {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RedirectAnonymous sends page requests without a signed-in user to the login view.
func RedirectAnonymous(to string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !FromContext(c.Request.Context()).SignedIn() {
			c.Redirect(http.StatusSeeOther, to)
			c.Abort()
			return
		}
		c.Next()
	}
}

// SetCookie stores the session token; maxAge <= 0 clears it.
func SetCookie(c *gin.Context, token string, maxAge int, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, token, maxAge, "/", "", secure, true)
}
