package supabase

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/custodia-labs/freelancer-hub/internal/core/domain"
	"github.com/custodia-labs/freelancer-hub/internal/core/ports/driven"
)

// Verify interface compliance
var (
	_ driven.Storage       = (*storage)(nil)
	_ driven.StorageBucket = (*bucket)(nil)
)

type storage struct {
	client *client
}

func (s *storage) Bucket(name string) driven.StorageBucket {
	return &bucket{client: s.client, name: name}
}

type bucket struct {
	client *client
	name   string
}

// uploadResponse is the Storage API reply to an upload
type uploadResponse struct {
	Key string `json:"Key"`
	ID  string `json:"Id"`
}

// Upload stores content at path. Existing objects are not overwritten.
func (b *bucket) Upload(ctx context.Context, path string, content io.Reader, contentType string) (*driven.StoredObject, error) {
	if err := b.validate(path); err != nil {
		return nil, err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	var resp uploadResponse
	err := b.client.do(ctx, request{
		method:      http.MethodPost,
		path:        b.objectPath(path),
		body:        content,
		contentType: contentType,
		headers:     map[string]string{"x-upsert": "false"},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("upload %s/%s: %w", b.name, path, err)
	}

	key := resp.Key
	if key == "" {
		key = b.name + "/" + strings.Trim(path, "/")
	}
	return &driven.StoredObject{Key: key, Name: strings.Trim(path, "/"), ID: resp.ID}, nil
}

// PublicURL returns the public URL of path; no request is made
func (b *bucket) PublicURL(path string) string {
	return b.client.baseURL + storagePath + "/object/public/" + url.PathEscape(b.name) + "/" + escapePath(path)
}

// Remove deletes the objects at paths and returns the removed objects
func (b *bucket) Remove(ctx context.Context, paths ...string) ([]driven.StoredObject, error) {
	if strings.TrimSpace(b.name) == "" {
		return nil, fmt.Errorf("%w: bucket name is empty", domain.ErrInvalidInput)
	}
	if len(paths) == 0 {
		return nil, nil
	}

	var removed []struct {
		Name string `json:"name"`
		ID   string `json:"id"`
	}
	err := b.client.do(ctx, request{
		method: http.MethodDelete,
		path:   storagePath + "/object/" + url.PathEscape(b.name),
		body:   map[string][]string{"prefixes": paths},
	}, &removed)
	if err != nil {
		return nil, fmt.Errorf("remove from %s: %w", b.name, err)
	}

	out := make([]driven.StoredObject, len(removed))
	for i, r := range removed {
		out[i] = driven.StoredObject{Key: b.name + "/" + r.Name, Name: r.Name, ID: r.ID}
	}
	return out, nil
}

func (b *bucket) objectPath(path string) string {
	return storagePath + "/object/" + url.PathEscape(b.name) + "/" + escapePath(path)
}

func (b *bucket) validate(path string) error {
	if strings.TrimSpace(b.name) == "" {
		return fmt.Errorf("%w: bucket name is empty", domain.ErrInvalidInput)
	}
	if strings.Trim(path, "/ ") == "" {
		return fmt.Errorf("%w: object path is empty", domain.ErrInvalidInput)
	}
	return nil
}
