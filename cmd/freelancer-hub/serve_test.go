package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fhhttp "github.com/custodia-labs/freelancer-hub/internal/adapters/driving/http"
	"github.com/custodia-labs/freelancer-hub/internal/config"
	"github.com/custodia-labs/freelancer-hub/internal/core/domain"
)

// fakeSupabase signs in a@example.com and records the bearer of table reads
type fakeSupabase struct {
	*httptest.Server

	mu      sync.Mutex
	bearers []string
}

func newFakeSupabase(t *testing.T) *fakeSupabase {
	t.Helper()
	f := &fakeSupabase{}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/auth/v1/token":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"access_token": "user-a-token",
				"token_type":   "bearer",
				"expires_in":   3600,
				"user":         map[string]any{"id": "a", "email": "a@example.com"},
			})
		case "/auth/v1/user":
			if r.Header.Get("Authorization") != "Bearer user-a-token" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"code":401,"msg":"invalid JWT"}`))
				return
			}
			_, _ = w.Write([]byte(`{"id":"a","email":"a@example.com"}`))
		case "/rest/v1/invoices":
			f.mu.Lock()
			f.bearers = append(f.bearers, r.Header.Get("Authorization"))
			f.mu.Unlock()
			_, _ = w.Write([]byte(`[]`))
		default:
			_, _ = w.Write([]byte(`{}`))
		}
	}))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeSupabase) tableBearers() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.bearers...)
}

func TestServe_CallersDoNotShareSessions(t *testing.T) {
	backend := newFakeSupabase(t)

	c := config.Default()
	c.Store.Backend = config.StoreMemory
	c.Provider.Kind = string(domain.ProviderKindSupabase)
	c.Provider.Supabase.URL = backend.URL
	c.Provider.Supabase.AnonKey = "opaque-anon-key"

	a, err := buildApp(context.Background(), c, slog.Default())
	require.NoError(t, err)
	defer a.Close()
	require.NoError(t, a.initialize(context.Background(), c))

	server := fhhttp.NewServer(fhhttp.DefaultConfig(), a.providers, a.auth, a.records, slog.Default())
	do := func(method, target string, body any, bearer string) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
		req := httptest.NewRequest(method, target, &buf)
		if bearer != "" {
			req.Header.Set("Authorization", "Bearer "+bearer)
		}
		rr := httptest.NewRecorder()
		server.Handler().ServeHTTP(rr, req)
		return rr
	}

	// An anonymous remote caller cannot repoint the server
	before, ok := a.providers.Current()
	require.True(t, ok)
	rr := do(http.MethodPut, "/api/v1/database/provider",
		domain.NewSupabaseCredentials("https://attacker.example", "abc123", ""), "")
	assert.Equal(t, http.StatusForbidden, rr.Code)
	after, _ := a.providers.Current()
	assert.Same(t, before, after)

	// Caller A signs in and reads with its own token
	rr = do(http.MethodPost, "/api/v1/auth/login", domain.SignInRequest{Email: "a@example.com", Password: "secret"}, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var login fhhttp.LoginResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&login))
	require.Equal(t, "user-a-token", login.AccessToken)
	assert.Nil(t, a.auth.CurrentUser(), "an API sign in is not process-wide")

	rr = do(http.MethodGet, "/api/v1/tables/invoices/records", nil, login.AccessToken)
	require.Equal(t, http.StatusOK, rr.Code)

	// Caller B presents nothing
	rr = do(http.MethodGet, "/api/v1/auth/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	rr = do(http.MethodGet, "/api/v1/tables/invoices/records", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = do(http.MethodGet, "/api/v1/auth/me", nil, login.AccessToken)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "a@example.com")

	assert.Equal(t, []string{"Bearer user-a-token"}, backend.tableBearers())
}
