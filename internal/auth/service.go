// Package auth is the session API: password sign-in, session lookup, sign-out and
// auth state change notifications.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"photostudio/internal/backend"
	"photostudio/internal/model"
	"photostudio/internal/util"
	"photostudio/pkg/metrics"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type EventKind string

const (
	SignedIn  EventKind = "signed_in"
	SignedOut EventKind = "signed_out"
)

type Event struct {
	Kind EventKind
	User model.User
	At   time.Time
	// ExpiresAt is when the session the event refers to expires.
	ExpiresAt time.Time
}

type Session struct {
	Token     string     `json:"token"`
	User      model.User `json:"user"`
	ExpiresAt time.Time  `json:"expires_at"`
	tokenID   string
}

type Service struct {
	users     backend.UserTable
	revoked   RevocationStore
	jwtSecret string
	ttl       time.Duration
	now       func() time.Time
	logger    *zap.Logger

	mu        sync.RWMutex
	nextSubID int
	subs      map[int]func(Event)
}

func NewService(users backend.UserTable, revoked RevocationStore, jwtSecret string, ttl time.Duration, logger *zap.Logger) *Service {
	return &Service{
		users:     users,
		revoked:   revoked,
		jwtSecret: jwtSecret,
		ttl:       ttl,
		now:       time.Now,
		logger:    logger,
		subs:      map[int]func(Event){},
	}
}

// SetClock replaces time.Now; used by tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// SignInWithPassword checks the credentials and mints a session token.
func (s *Service) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	email = strings.TrimSpace(email)
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, backend.ErrNotFound) {
			s.logger.Error("Failed to look up user", zap.String("email", email), zap.Error(err))
		}
		metrics.RecordAuthEvent("sign_in_failed")
		return nil, ErrInvalidCredentials
	}

	if !util.CheckPassword(password, u.PasswordHash) {
		metrics.RecordAuthEvent("sign_in_failed")
		return nil, ErrInvalidCredentials
	}

	token, claims, err := util.GenerateJWT(u.ID, s.jwtSecret, s.ttl, s.now())
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	metrics.RecordAuthEvent(string(SignedIn))
	s.emit(Event{Kind: SignedIn, User: *u, At: s.now(), ExpiresAt: claims.ExpiresAt.Time})

	return &Session{
		Token:     token,
		User:      *u,
		ExpiresAt: claims.ExpiresAt.Time,
		tokenID:   claims.ID,
	}, nil
}

// GetSession resolves a token to its session. Empty, expired, invalid and revoked tokens
// resolve to (nil, nil); only backend failures return an error.
func (s *Service) GetSession(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, nil
	}
	claims, err := util.ParseJWT(token, s.jwtSecret, s.now())
	if err != nil {
		return nil, nil
	}

	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, nil
	}

	u, err := s.users.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	return &Session{
		Token:     token,
		User:      *u,
		ExpiresAt: claims.ExpiresAt.Time,
		tokenID:   claims.ID,
	}, nil
}

// SignOut revokes the token until it would have expired. Invalid tokens are ignored.
func (s *Service) SignOut(ctx context.Context, token string) error {
	sess, err := s.GetSession(ctx, token)
	if err != nil {
		return err
	}
	if sess == nil {
		return nil
	}

	ttl := sess.ExpiresAt.Sub(s.now())
	if err := s.revoked.Revoke(ctx, sess.tokenID, ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}

	metrics.RecordAuthEvent(string(SignedOut))
	s.emit(Event{Kind: SignedOut, User: sess.User, At: s.now(), ExpiresAt: sess.ExpiresAt})
	return nil
}

// OnAuthStateChange registers fn for sign-in and sign-out events. Subscribers are called
// synchronously on the caller's goroutine.
func (s *Service) OnAuthStateChange(fn func(Event)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Service) emit(e Event) {
	s.mu.RLock()
	fns := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(e)
	}
}

// EnsureAdmin creates the admin account when it does not exist yet.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		s.logger.Warn("Admin account not configured, sign-in is impossible until one exists")
		return nil
	}

	_, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, backend.ErrNotFound) {
		return fmt.Errorf("look up admin: %w", err)
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return err
	}
	u := &model.User{Email: email, PasswordHash: hash}
	if err := s.users.Create(ctx, u); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	s.logger.Info("Admin account created", zap.String("email", email))
	return nil
}
