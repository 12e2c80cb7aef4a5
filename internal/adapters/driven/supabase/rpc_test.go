package supabase

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/freelancer-hub/internal/core/domain"
	"github.com/custodia-labs/freelancer-hub/internal/core/ports/driven"
)

func TestAdapter_Call(t *testing.T) {
	fp := newFakeProject(t, func(w http.ResponseWriter, r *http.Request, body []byte) {
		writeJSON(w, http.StatusOK, map[string]any{"total": 42})
	})
	a, anon, _ := newTestAdapter(t, fp, false)

	raw, err := a.Call(context.Background(), "invoice_total", map[string]any{"client_id": "c-1"})
	require.NoError(t, err)

	var out struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, 42, out.Total)

	req := fp.last()
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/rest/v1/rpc/invoice_total", req.Path)
	assert.JSONEq(t, `{"client_id":"c-1"}`, string(req.Body))
	assert.Equal(t, anon, req.Header.Get("apikey"))
}

func TestAdapter_CallNilParams(t *testing.T) {
	fp := newFakeProject(t, func(w http.ResponseWriter, r *http.Request, _ []byte) {
		w.WriteHeader(http.StatusNoContent)
	})
	a, _, _ := newTestAdapter(t, fp, false)

	raw, err := a.Call(context.Background(), "refresh_stats", nil)
	require.NoError(t, err)
	assert.Empty(t, raw)
	assert.JSONEq(t, `{}`, string(fp.last().Body))
}

func TestAdapter_CallAs(t *testing.T) {
	fp := newFakeProject(t, func(w http.ResponseWriter, r *http.Request, _ []byte) {
		writeJSON(w, http.StatusOK, true)
	})
	a, _, service := newTestAdapter(t, fp, true)

	_, err := a.CallAs(context.Background(), domain.PrivilegeElevated, "purge_sessions", nil)
	require.NoError(t, err)
	assert.Equal(t, service, fp.last().Header.Get("apikey"))

	_, err = a.Call(context.Background(), " ", nil)
	assert.ErrorIs(t, err, domain.ErrMalformedQuery)
}

func TestAdapter_CallAs_ThroughContract(t *testing.T) {
	fp := newFakeProject(t, func(w http.ResponseWriter, r *http.Request, _ []byte) {
		writeJSON(w, http.StatusOK, true)
	})

	tests := []struct {
		name     string
		elevated bool
	}{
		{name: "service key present", elevated: true},
		{name: "downgraded without service key", elevated: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, anon, service := newTestAdapter(t, fp, tt.elevated)
			var db driven.DatabaseService = a

			// A caller token never replaces the service key
			ctx := domain.WithAccessToken(context.Background(), "caller-token")
			_, err := db.CallAs(ctx, domain.PrivilegeElevated, "purge_sessions", nil)
			require.NoError(t, err)

			req := fp.last()
			assert.Equal(t, "/rest/v1/rpc/purge_sessions", req.Path)
			if tt.elevated {
				assert.Equal(t, service, req.Header.Get("apikey"))
				assert.Equal(t, "Bearer "+service, req.Header.Get("Authorization"))
			} else {
				assert.Equal(t, anon, req.Header.Get("apikey"))
				assert.Equal(t, "Bearer caller-token", req.Header.Get("Authorization"))
			}
		})
	}
}
