package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/custodia-labs/freelancer-hub/internal/core/domain"
)

// Call invokes a Postgres function with the restricted credential
func (a *Adapter) Call(ctx context.Context, fn string, params any) (json.RawMessage, error) {
	return a.CallAs(ctx, domain.PrivilegeRestricted, fn, params)
}

// CallAs invokes a Postgres function with the requested privilege.
// Elevated calls without a service key are downgraded, as for TableAs.
func (a *Adapter) CallAs(ctx context.Context, privilege domain.Privilege, fn string, params any) (json.RawMessage, error) {
	if strings.TrimSpace(fn) == "" {
		return nil, fmt.Errorf("%w: function name is empty", domain.ErrMalformedQuery)
	}
	if params == nil {
		params = map[string]any{}
	}

	c, _ := a.clientFor(privilege, "rpc:"+fn)

	var out json.RawMessage
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   restPath + "/rpc/" + url.PathEscape(fn),
		body:   params,
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", fn, err)
	}
	return out, nil
}
