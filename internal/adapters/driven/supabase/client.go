package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/custodia-labs/freelancer-hub/internal/core/domain"
)

const (
	restPath     = "/rest/v1"
	authPath     = "/auth/v1"
	storagePath  = "/storage/v1"
	realtimePath = "/realtime/v1/websocket"
)

// client sends requests to one project authorized by one API key.
// The bearer token defaults to the key and may be replaced by a user token.
type client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	bearer  func(ctx context.Context) string
}

func newClient(baseURL, apiKey string, httpClient *http.Client) *client {
	return &client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    httpClient,
	}
}

// token returns the bearer token for a request made under ctx
func (c *client) token(ctx context.Context) string {
	if c.bearer != nil {
		if t := c.bearer(ctx); t != "" {
			return t
		}
	}
	return c.apiKey
}

// request describes one HTTP call relative to the project URL
type request struct {
	method      string
	path        string
	query       url.Values
	body        any // JSON-encoded unless it is an io.Reader
	contentType string
	headers     map[string]string
	token       string // overrides the client's bearer when set
}

// do sends r and decodes a JSON response into out (if non-nil).
// Non-2xx responses come back as *domain.BackendError.
func (c *client) do(ctx context.Context, r request, out any) error {
	endpoint := c.baseURL + r.path
	if len(r.query) > 0 {
		endpoint += "?" + r.query.Encode()
	}

	var body io.Reader
	contentType := r.contentType
	switch b := r.body.(type) {
	case nil:
	case io.Reader:
		body = b
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
		if contentType == "" {
			contentType = "application/json"
		}
	}

	req, err := http.NewRequestWithContext(ctx, r.method, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	token := r.token
	if token == "" {
		token = c.token(ctx)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseError(resp.StatusCode, respBody)
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if raw, ok := out.(*json.RawMessage); ok {
		*raw = append((*raw)[:0], respBody...)
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(respBody))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// errorBody covers the error shapes of PostgREST, GoTrue and Storage
type errorBody struct {
	Code             json.RawMessage `json:"code"`
	ErrorCode        string          `json:"error_code"`
	Error            string          `json:"error"`
	Message          string          `json:"message"`
	Msg              string          `json:"msg"`
	ErrorDescription string          `json:"error_description"`
	Hint             string          `json:"hint"`
	Details          json.RawMessage `json:"details"`
}

func parseError(status int, body []byte) *domain.BackendError {
	be := &domain.BackendError{Status: status}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		be.Message = strings.TrimSpace(string(body))
		if be.Message == "" {
			be.Message = http.StatusText(status)
		}
		return be
	}

	be.Code = firstNonEmpty(eb.ErrorCode, rawString(eb.Code), eb.Error)
	be.Message = firstNonEmpty(eb.Message, eb.Msg, eb.ErrorDescription, eb.Error, http.StatusText(status))
	be.Hint = eb.Hint
	be.Details = rawString(eb.Details)
	return be
}

// rawString returns a JSON string's value, or the literal for other JSON values.
// GoTrue sends numeric codes that merely repeat the HTTP status; those are dropped.
func rawString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	if _, err := strconv.Atoi(string(raw)); err == nil {
		return ""
	}
	return string(raw)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// escapePath escapes each segment of an object path, keeping the separators
func escapePath(p string) string {
	segments := strings.Split(strings.Trim(p, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
