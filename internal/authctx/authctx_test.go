package authctx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"photostudio/internal/auth"
	"photostudio/internal/model"
)

type fakeSessions struct {
	sessions map[string]*auth.Session
	err      error
}

func (f fakeSessions) GetSession(ctx context.Context, token string) (*auth.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.sessions[token], nil
}

func newEngine(sessions SessionResolver) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Gate(sessions, zap.NewNop()))
	r.GET("/state", func(c *gin.Context) {
		s := FromContext(c.Request.Context())
		email := ""
		if s.User != nil {
			email = s.User.Email
		}
		c.JSON(http.StatusOK, gin.H{"email": email, "loading": s.Loading})
	})
	r.GET("/private", RequireUser(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestFromContextWithoutGateIsLoading(t *testing.T) {
	s := FromContext(context.Background())
	assert.True(t, s.Loading)
	assert.False(t, s.SignedIn())
}

func TestGateResolvesCookieAndBearer(t *testing.T) {
	sessions := fakeSessions{sessions: map[string]*auth.Session{
		"good": {Token: "good", User: model.User{ID: "u1", Email: "a@b.c"}},
	}}
	r := newEngine(sessions)

	req := httptest.NewRequest(http.MethodGet, "/state", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "good"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.JSONEq(t, `{"email":"a@b.c","loading":false}`, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/state", nil)
	req.Header.Set("Authorization", "Bearer good")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.JSONEq(t, `{"email":"a@b.c","loading":false}`, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/state", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.JSONEq(t, `{"email":"","loading":false}`, w.Body.String())
}

func TestRequireUser(t *testing.T) {
	sessions := fakeSessions{sessions: map[string]*auth.Session{
		"good": {Token: "good", User: model.User{ID: "u1"}},
	}}
	r := newEngine(sessions)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/private", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer good")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestGateFailureLeavesRequestAnonymous(t *testing.T) {
	r := newEngine(fakeSessions{err: errors.New("redis down")})

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer good")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

type fakeNotifier struct{ fn func(auth.Event) }

func (f *fakeNotifier) OnAuthStateChange(fn func(auth.Event)) func() {
	f.fn = fn
	return func() { f.fn = nil }
}

func TestTrackerCountsDistinctUsers(t *testing.T) {
	n := &fakeNotifier{}
	tr := NewTracker()
	unsubscribe := tr.Attach(n)

	u1 := model.User{ID: "u1"}
	u2 := model.User{ID: "u2"}
	n.fn(auth.Event{Kind: auth.SignedIn, User: u1})
	n.fn(auth.Event{Kind: auth.SignedIn, User: u1})
	n.fn(auth.Event{Kind: auth.SignedIn, User: u2})
	assert.Equal(t, 2, tr.Active())

	n.fn(auth.Event{Kind: auth.SignedOut, User: u1})
	assert.Equal(t, 2, tr.Active())
	n.fn(auth.Event{Kind: auth.SignedOut, User: u1})
	n.fn(auth.Event{Kind: auth.SignedOut, User: u2})
	assert.Equal(t, 0, tr.Active())

	unsubscribe()
	assert.Nil(t, n.fn)
}

func TestTrackerDropsExpiredSessions(t *testing.T) {
	now := time.Unix(1_000, 0)
	n := &fakeNotifier{}
	tr := NewTracker()
	tr.SetClock(func() time.Time { return now })
	tr.Attach(n)

	u1 := model.User{ID: "u1"}
	u2 := model.User{ID: "u2"}
	n.fn(auth.Event{Kind: auth.SignedIn, User: u1, ExpiresAt: now.Add(time.Hour)})
	n.fn(auth.Event{Kind: auth.SignedIn, User: u1, ExpiresAt: now.Add(3 * time.Hour)})
	n.fn(auth.Event{Kind: auth.SignedIn, User: u2, ExpiresAt: now.Add(time.Hour)})
	assert.Equal(t, 2, tr.Active())

	// signing out removes the matching session, not the earliest one
	n.fn(auth.Event{Kind: auth.SignedOut, User: u1, ExpiresAt: now.Add(3 * time.Hour)})
	assert.Equal(t, 2, tr.Active())

	now = now.Add(time.Hour)
	assert.Equal(t, 0, tr.Active())
}
