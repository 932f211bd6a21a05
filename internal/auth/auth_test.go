package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestTokenCache_SaveAndLoad(t *testing.T) {
	tests := []struct {
		name  string
		token *oauth2.Token
	}{
		{
			name: "token with expiry",
			token: &oauth2.Token{
				AccessToken: "test-access-token",
				TokenType:   "Bearer",
				Expiry:      time.Now().Add(time.Hour).Round(0),
			},
		},
		{
			name: "token without expiry",
			token: &oauth2.Token{
				AccessToken: "access-only",
				TokenType:   "Bearer",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := NewTokenCache(filepath.Join(t.TempDir(), "token.json"))

			if err := cache.Save("app", tt.token); err != nil {
				t.Fatalf("Save() error = %v", err)
			}

			loaded, err := cache.Load("app")
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if loaded == nil {
				t.Fatal("Load() returned nil token")
			}
			if loaded.AccessToken != tt.token.AccessToken {
				t.Errorf("AccessToken = %q, want %q", loaded.AccessToken, tt.token.AccessToken)
			}
			if loaded.TokenType != tt.token.TokenType {
				t.Errorf("TokenType = %q, want %q", loaded.TokenType, tt.token.TokenType)
			}
			if !loaded.Expiry.Equal(tt.token.Expiry) {
				t.Errorf("Expiry = %v, want %v", loaded.Expiry, tt.token.Expiry)
			}
		})
	}
}

func TestTokenCache_LoadDiscards(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		clientID string
		expiry   time.Time
	}{
		{"other client", "someone-else", now.Add(time.Hour)},
		{"expired", "app", now.Add(-time.Hour)},
		{"expiring within leeway", "app", now.Add(30 * time.Second)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := NewTokenCache(filepath.Join(t.TempDir(), "token.json"))
			cache.now = func() time.Time { return now }

			if err := cache.Save(tt.clientID, &oauth2.Token{AccessToken: "tok", Expiry: tt.expiry}); err != nil {
				t.Fatalf("Save() error = %v", err)
			}

			token, err := cache.Load("app")
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if token != nil {
				t.Errorf("Load() = %+v, want nil", token)
			}
		})
	}
}

func TestTokenCache_LoadNonExistent(t *testing.T) {
	cache := NewTokenCache(filepath.Join(t.TempDir(), "nonexistent", "token.json"))

	token, err := cache.Load("app")
	if err != nil {
		t.Fatalf("Load() error = %v, want nil", err)
	}
	if token != nil {
		t.Errorf("Load() = %v, want nil for non-existent file", token)
	}
}

func TestTokenCache_LoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := NewTokenCache(path).Load("app"); err == nil {
		t.Error("Load() error = nil, want parse error")
	}
}

func TestTokenCache_SaveCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeply", "token.json")
	cache := NewTokenCache(path)

	if err := cache.Save("app", &oauth2.Token{AccessToken: "test-token"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("Save() did not create token file")
	}
}

func TestTokenCache_SaveNilToken(t *testing.T) {
	cache := NewTokenCache(filepath.Join(t.TempDir(), "token.json"))

	if err := cache.Save("app", nil); err == nil {
		t.Error("Save(nil) should return error")
	}
}

func TestTokenCache_Delete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	cache := NewTokenCache(path)

	if err := cache.Save("app", &oauth2.Token{AccessToken: "test-token"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := cache.Delete(); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Delete() did not remove token file")
	}

	// A second delete is a no-op.
	if err := cache.Delete(); err != nil {
		t.Errorf("Delete() error = %v, want nil for non-existent file", err)
	}
}

func TestTokenCache_FilePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	cache := NewTokenCache(path)

	if err := cache.Save("app", &oauth2.Token{AccessToken: "secret-token"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if mode := info.Mode().Perm(); mode&0077 != 0 {
		t.Errorf("File permissions = %o, want 0600 (no group/other access)", mode)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		secret string
	}{
		{"both missing", "", ""},
		{"id missing", "", "secret"},
		{"secret missing", "id", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.id, tt.secret)
			if err != ErrMissingCredentials {
				t.Errorf("New() error = %v, want ErrMissingCredentials", err)
			}
		})
	}
}

// newTokenServer issues a fresh access token per request and counts calls.
func newTokenServer(t *testing.T) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if err := r.ParseForm(); err != nil || r.Form.Get("grant_type") != "client_credentials" {
			http.Error(w, "bad grant", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":"token-%d","token_type":"Bearer","expires_in":3600}`, n)
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func TestClient_FetchesAndCachesToken(t *testing.T) {
	server, calls := newTokenServer(t)
	cache := NewTokenCache(filepath.Join(t.TempDir(), "token.json"))

	a, err := New("id", "secret", WithTokenURL(server.URL), WithTokenCache(cache))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	client, err := a.Client(context.Background())
	if err != nil {
		t.Fatalf("Client() error = %v", err)
	}
	if client == nil {
		t.Fatal("Client() returned nil client")
	}
	if got := atomic.LoadInt32(calls); got != 1 {
		t.Errorf("token requests = %d, want 1", got)
	}

	cached, err := cache.Load("id")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cached == nil || cached.AccessToken != "token-1" {
		t.Errorf("cached token = %+v, want token-1", cached)
	}
}

func TestTokenSource_UsesValidCachedToken(t *testing.T) {
	server, calls := newTokenServer(t)
	cache := NewTokenCache(filepath.Join(t.TempDir(), "token.json"))
	if err := cache.Save("id", &oauth2.Token{
		AccessToken: "cached",
		TokenType:   "Bearer",
		Expiry:      time.Now().Add(time.Hour),
	}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	a, _ := New("id", "secret", WithTokenURL(server.URL), WithTokenCache(cache))
	ts, err := a.TokenSource(context.Background())
	if err != nil {
		t.Fatalf("TokenSource() error = %v", err)
	}

	token, err := ts.Token()
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if token.AccessToken != "cached" {
		t.Errorf("AccessToken = %q, want cached", token.AccessToken)
	}
	if got := atomic.LoadInt32(calls); got != 0 {
		t.Errorf("token requests = %d, want 0", got)
	}
}

func TestTokenSource_RefreshesExpiredCachedToken(t *testing.T) {
	server, _ := newTokenServer(t)
	cache := NewTokenCache(filepath.Join(t.TempDir(), "token.json"))
	_ = cache.Save("id", &oauth2.Token{
		AccessToken: "stale",
		TokenType:   "Bearer",
		Expiry:      time.Now().Add(-time.Hour),
	})

	a, _ := New("id", "secret", WithTokenURL(server.URL), WithTokenCache(cache))
	ts, err := a.TokenSource(context.Background())
	if err != nil {
		t.Fatalf("TokenSource() error = %v", err)
	}

	token, err := ts.Token()
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if token.AccessToken != "token-1" {
		t.Errorf("AccessToken = %q, want token-1", token.AccessToken)
	}

	cached, _ := cache.Load("id")
	if cached == nil || cached.AccessToken != "token-1" {
		t.Errorf("cached AccessToken = %q, want token-1", cached.AccessToken)
	}
}

func TestClient_BadCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_client"}`))
	}))
	defer server.Close()

	a, _ := New("id", "wrong", WithTokenURL(server.URL))
	if _, err := a.Client(context.Background()); err == nil {
		t.Error("Client() error = nil, want invalid_client error")
	}
}

func TestLogout_WithoutCache(t *testing.T) {
	a, _ := New("id", "secret")
	if err := a.Logout(); err != nil {
		t.Errorf("Logout() error = %v, want nil", err)
	}
}
