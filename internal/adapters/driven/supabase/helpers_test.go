package supabase

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"github.com/custodia-labs/freelancer-hub/internal/core/domain"
)

// signKey builds a project key JWT with the given role
func signKey(t *testing.T, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, keyClaims{
		Role: role,
		Ref:  "testproject",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer: "supabase",
		},
	})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign key: %v", err)
	}
	return signed
}

// recorded is one request received by the fake project
type recorded struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// fakeProject is an httptest server standing in for a Supabase project
type fakeProject struct {
	*httptest.Server
	mu       sync.Mutex
	requests []recorded
}

// newFakeProject starts a server that records every request and delegates to handler
func newFakeProject(t *testing.T, handler func(w http.ResponseWriter, r *http.Request, body []byte)) *fakeProject {
	t.Helper()
	fp := &fakeProject{}
	fp.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		fp.mu.Lock()
		fp.requests = append(fp.requests, recorded{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
			Body:   body,
		})
		fp.mu.Unlock()
		handler(w, r, body)
	}))
	t.Cleanup(fp.Close)
	return fp
}

func (fp *fakeProject) last() recorded {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	return fp.requests[len(fp.requests)-1]
}

func (fp *fakeProject) all() []recorded {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	return append([]recorded(nil), fp.requests...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// newTestAdapter builds an adapter against fp with a JWT anon key and,
// when elevated is true, a service role key
func newTestAdapter(t *testing.T, fp *fakeProject, elevated bool) (*Adapter, string, string) {
	t.Helper()
	anon := signKey(t, RoleAnon)
	service := ""
	if elevated {
		service = signKey(t, RoleServiceRole)
	}
	a, err := New(domain.SupabaseCredentials{URL: fp.URL, AnonKey: anon, ServiceRoleKey: service})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a, anon, service
}
