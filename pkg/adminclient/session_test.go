package adminclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"harrys-team/backend/internal/auth"
	"harrys-team/backend/internal/datastore"
)

type stubAdmins struct {
	admin *datastore.Admin
}

func (s *stubAdmins) GetActiveAdminByEmail(_ context.Context, email string) (*datastore.Admin, error) {
	if s.admin == nil || s.admin.Email != email {
		return nil, datastore.ErrNotFound
	}
	return s.admin, nil
}

func (s *stubAdmins) UpdateAdminLastLogin(context.Context, int) error { return nil }

func (s *stubAdmins) CreateAdmin(context.Context, string, string) (*datastore.Admin, error) {
	return nil, datastore.ErrDuplicate
}

type backend struct {
	*httptest.Server
	codec      *auth.TokenCodec
	loginCalls atomic.Int32
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	gin.SetMode(gin.TestMode)
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	store := &stubAdmins{admin: &datastore.Admin{ID: 7, Email: "admin@harrysteam.org", PasswordHash: string(hash), IsActive: true}}
	codec, err := auth.NewTokenCodec("client-test-secret")
	if err != nil {
		t.Fatalf("codec: %v", err)
	}

	b := &backend{codec: codec}
	h := auth.NewHandler(store, codec, zap.NewNop(), false)
	guard := auth.NewGuard(codec)

	r := gin.New()
	r.POST("/api/auth/login", func(c *gin.Context) {
		b.loginCalls.Add(1)
		c.Next()
	}, h.Login)
	r.GET("/api/auth/me", guard.RequireAuth(), h.Me)
	r.GET("/api/hero-images", guard.RequireAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": []string{}})
	})

	b.Server = httptest.NewServer(r)
	t.Cleanup(b.Close)
	return b
}

func TestInitWithoutTokenIsUnauthenticated(t *testing.T) {
	b := newBackend(t)
	s := NewSession(b.URL, &MemoryTokenStore{})

	if got := s.Decide(); got != ShowLoading {
		t.Fatalf("expected ShowLoading before Init, got %v", got)
	}
	s.Init(context.Background())
	if st := s.State(); st.Status != StatusUnauthenticated || st.User != nil {
		t.Fatalf("unexpected state %+v", st)
	}
	if got := s.Decide(); got != RedirectToLogin {
		t.Fatalf("expected RedirectToLogin, got %v", got)
	}
}

func TestInitVerifiesStoredTokenWithServer(t *testing.T) {
	b := newBackend(t)
	token, err := b.codec.Sign(auth.AdminUser{ID: 7, Email: "admin@harrysteam.org", IsActive: true})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	tokens := &MemoryTokenStore{}
	tokens.Save(token)

	s := NewSession(b.URL, tokens)
	s.Init(context.Background())
	st := s.State()
	if st.Status != StatusAuthenticated || st.User == nil || st.User.Email != "admin@harrysteam.org" || st.User.ID != 7 {
		t.Fatalf("unexpected state %+v", st)
	}
	if s.Decide() != RenderContent {
		t.Fatalf("expected RenderContent")
	}
}

func TestInitRejectsForgedToken(t *testing.T) {
	b := newBackend(t)
	tokens := &MemoryTokenStore{}
	tokens.Save("not.a.token")

	s := NewSession(b.URL, tokens)
	s.Init(context.Background())
	if st := s.State(); st.Status != StatusUnauthenticated {
		t.Fatalf("expected unauthenticated, got %v", st.Status)
	}
}

func TestInitRunsOnce(t *testing.T) {
	b := newBackend(t)
	tokens := &MemoryTokenStore{}
	s := NewSession(b.URL, tokens)
	s.Init(context.Background())

	token, _ := b.codec.Sign(auth.AdminUser{ID: 7, Email: "admin@harrysteam.org", IsActive: true})
	tokens.Save(token)
	s.Init(context.Background())
	if st := s.State(); st.Status != StatusUnauthenticated {
		t.Fatalf("second Init must not change state, got %v", st.Status)
	}
}

func TestLoginSuccessStoresTokenAndAuthorizesRequests(t *testing.T) {
	b := newBackend(t)
	tokens := NewFileTokenStore(filepath.Join(t.TempDir(), "session", "token"))
	s := NewSession(b.URL, tokens)
	s.Init(context.Background())

	if !s.Login(context.Background(), "admin@harrysteam.org", "hunter22") {
		t.Fatalf("expected login to succeed")
	}
	st := s.State()
	if st.Status != StatusAuthenticated || st.User.Email != "admin@harrysteam.org" || st.User.ID != 7 {
		t.Fatalf("unexpected state %+v", st)
	}
	stored, err := tokens.Load()
	if err != nil || stored == "" {
		t.Fatalf("token not persisted: %q %v", stored, err)
	}
	if !b.codec.Verify(stored).Valid {
		t.Fatalf("persisted token does not verify")
	}

	req, _ := http.NewRequest(http.MethodGet, b.URL+"/api/hero-images", nil)
	resp, err := s.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected authorized request, got %d", resp.StatusCode)
	}
}

func TestLoginFailureLeavesStateUnchanged(t *testing.T) {
	b := newBackend(t)
	tokens := &MemoryTokenStore{}
	s := NewSession(b.URL, tokens)
	s.Init(context.Background())

	if s.Login(context.Background(), "admin@harrysteam.org", "wrong") {
		t.Fatalf("expected login to fail")
	}
	if b.loginCalls.Load() != 1 {
		t.Fatalf("expected exactly one login request, got %d", b.loginCalls.Load())
	}
	if st := s.State(); st.Status != StatusUnauthenticated {
		t.Fatalf("state changed on failed login: %v", st.Status)
	}
	if tok, _ := tokens.Load(); tok != "" {
		t.Fatalf("failed login stored a token")
	}

	if s.Login(context.Background(), "", "") {
		t.Fatalf("expected empty credentials to fail")
	}
}

func TestLoginUnreachableServer(t *testing.T) {
	b := newBackend(t)
	url := b.URL
	b.Close()

	s := NewSession(url, &MemoryTokenStore{})
	s.Init(context.Background())
	if s.Login(context.Background(), "admin@harrysteam.org", "hunter22") {
		t.Fatalf("expected login to fail against a closed server")
	}
}

func TestLogout(t *testing.T) {
	b := newBackend(t)
	path := filepath.Join(t.TempDir(), "token")
	tokens := NewFileTokenStore(path)
	s := NewSession(b.URL, tokens)
	s.Init(context.Background())
	if !s.Login(context.Background(), "admin@harrysteam.org", "hunter22") {
		t.Fatalf("login failed")
	}

	s.Logout()
	if s.Decide() != RedirectToLogin {
		t.Fatalf("expected RedirectToLogin after logout")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("token file should be removed, stat err = %v", err)
	}
	// Logging out twice is harmless.
	s.Logout()

	req, _ := http.NewRequest(http.MethodGet, b.URL+"/api/hero-images", nil)
	resp, err := s.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", resp.StatusCode)
	}
}

func TestFileTokenStorePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	tokens := NewFileTokenStore(path)
	if tok, err := tokens.Load(); err != nil || tok != "" {
		t.Fatalf("missing file should load empty, got %q %v", tok, err)
	}
	if err := tokens.Save("abc"); err != nil {
		t.Fatalf("save: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected 0600, got %v", info.Mode().Perm())
	}
	if tok, _ := tokens.Load(); tok != "abc" {
		t.Fatalf("expected abc, got %q", tok)
	}
}
