// Package adminclient is the client side of the admin login flow. A Session
// remembers the bearer token, asks the server who it belongs to, and tells
// callers whether a protected view may render.
package adminclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"go.uber.org/zap"
)

type Status int

const (
	StatusLoading Status = iota
	StatusAuthenticated
	StatusUnauthenticated
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusAuthenticated:
		return "authenticated"
	case StatusUnauthenticated:
		return "unauthenticated"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Identity is the admin the stored token belongs to.
type Identity struct {
	ID       int    `json:"id"`
	Email    string `json:"email"`
	IsActive bool   `json:"isActive"`
}

// State is a snapshot of the session. User is nil unless authenticated.
type State struct {
	Status Status
	User   *Identity
}

// RouteDecision tells a protected view what to do.
type RouteDecision int

const (
	ShowLoading RouteDecision = iota
	RedirectToLogin
	RenderContent
)

// LoginPath is where unauthenticated users are sent.
const LoginPath = "/admin/login"

// Session tracks one admin's authentication against a backend.
type Session struct {
	baseURL string
	http    *http.Client
	tokens  TokenStore
	logger  *zap.Logger

	initOnce sync.Once

	mu    sync.RWMutex
	state State
	token string
}

type Option func(*Session)

func WithHTTPClient(c *http.Client) Option {
	return func(s *Session) { s.http = c }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// NewSession returns a session in the loading state. Call Init before
// relying on State or Decide.
func NewSession(baseURL string, tokens TokenStore, opts ...Option) *Session {
	s := &Session{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    http.DefaultClient,
		tokens:  tokens,
		logger:  zap.NewNop(),
		state:   State{Status: StatusLoading},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init resolves the stored token into a terminal state. Only the first call
// does any work.
func (s *Session) Init(ctx context.Context) {
	s.initOnce.Do(func() {
		s.resolve(ctx)
	})
}

func (s *Session) resolve(ctx context.Context) {
	token, err := s.tokens.Load()
	if err != nil {
		s.logger.Warn("failed to load stored token", zap.Error(err))
	}
	if token == "" {
		s.setState(State{Status: StatusUnauthenticated}, "")
		return
	}

	user, err := s.whoami(ctx, token)
	if err != nil {
		s.logger.Info("stored token rejected", zap.Error(err))
		s.setState(State{Status: StatusUnauthenticated}, "")
		return
	}
	s.setState(State{Status: StatusAuthenticated, User: user}, token)
}

func (s *Session) whoami(ctx context.Context, token string) (*Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/auth/me", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("whoami returned %s", resp.Status)
	}
	var body struct {
		Success bool      `json:"success"`
		User    *Identity `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode whoami response: %w", err)
	}
	if !body.Success || body.User == nil {
		return nil, fmt.Errorf("whoami response has no user")
	}
	return body.User, nil
}

// Login posts the credentials once. On success the token is stored and the
// session becomes authenticated. On any failure the state is left as is.
func (s *Session) Login(ctx context.Context, email, password string) bool {
	payload, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/auth/login", bytes.NewReader(payload))
	if err != nil {
		s.logger.Error("failed to build login request", zap.Error(err))
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		s.logger.Error("login request failed", zap.Error(err))
		return false
	}
	defer resp.Body.Close()

	var body struct {
		Success bool     `json:"success"`
		Message string   `json:"message"`
		Token   string   `json:"token"`
		User    Identity `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		s.logger.Warn("undecodable login response", zap.Int("status", resp.StatusCode), zap.Error(err))
		return false
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 || !body.Success || body.Token == "" {
		s.logger.Info("login rejected", zap.Int("status", resp.StatusCode), zap.String("message", body.Message))
		return false
	}

	if err := s.tokens.Save(body.Token); err != nil {
		s.logger.Error("failed to store token", zap.Error(err))
		return false
	}
	// Login only returns id and email; a token is only issued to active admins.
	user := body.User
	user.IsActive = true
	s.setState(State{Status: StatusAuthenticated, User: &user}, body.Token)
	return true
}

// Logout forgets the token. It never fails.
func (s *Session) Logout() {
	if err := s.tokens.Clear(); err != nil {
		s.logger.Warn("failed to clear stored token", zap.Error(err))
	}
	s.setState(State{Status: StatusUnauthenticated}, "")
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.state
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st
}

func (s *Session) Decide() RouteDecision {
	switch s.State().Status {
	case StatusLoading:
		return ShowLoading
	case StatusAuthenticated:
		return RenderContent
	default:
		return RedirectToLogin
	}
}

// Do sends req with the session's bearer token attached.
func (s *Session) Do(req *http.Request) (*http.Response, error) {
	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.http.Do(req)
}

func (s *Session) setState(st State, token string) {
	s.mu.Lock()
	s.state = st
	s.token = token
	s.mu.Unlock()
}
