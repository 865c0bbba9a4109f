package httpserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"photostudio/internal/auth"
	"photostudio/internal/authctx"
)

type AuthHandler struct {
	svc           *auth.Service
	ttl           time.Duration
	secureCookies bool
	logger        *zap.Logger
}

func NewAuthHandler(svc *auth.Service, ttl time.Duration, secureCookies bool, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, ttl: ttl, secureCookies: secureCookies, logger: logger}
}

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	sess, err := h.signIn(c, req)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to sign in"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      sess.Token,
		"user":       sess.User,
		"expires_at": sess.ExpiresAt,
	})
}

func (h *AuthHandler) signIn(c *gin.Context, req loginRequest) (*auth.Session, error) {
	sess, err := h.svc.SignInWithPassword(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Warn("Sign in failed",
			zap.String("email", req.Email),
			zap.String("client_ip", c.ClientIP()),
			zap.Error(err),
		)
		return nil, err
	}

	h.logger.Info("Signed in", zap.String("user_id", sess.User.ID))
	authctx.SetCookie(c, sess.Token, int(h.ttl.Seconds()), h.secureCookies)
	return sess, nil
}

func (h *AuthHandler) signOut(c *gin.Context) error {
	state := authctx.FromContext(c.Request.Context())
	authctx.SetCookie(c, "", -1, h.secureCookies)
	if err := h.svc.SignOut(c.Request.Context(), state.Token); err != nil {
		h.logger.Error("Sign out failed", zap.Error(err))
		return err
	}
	return nil
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.signOut(c); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to sign out"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Session reports the gate state of the request.
func (h *AuthHandler) Session(c *gin.Context) {
	state := authctx.FromContext(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"user":    state.User,
		"loading": state.Loading,
	})
}
