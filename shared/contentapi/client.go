package contentapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dfryer1193/inkfront/blog/domain"
)

var _ domain.ContentSource = (*Client)(nil)

// Observer is told about every finished call. Status is 0 when no response arrived.
type Observer func(resource, method string, status int, elapsed time.Duration)

// Client issues JSON requests against the content API.
// It never retries and keeps no cache: every call goes to the network.
type Client struct {
	http      *http.Client
	endpoints Endpoints
	observe   Observer
}

type Option func(*Client)

// WithHTTPClient replaces the default client, which has no timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

func WithObserver(o Observer) Option {
	return func(c *Client) {
		c.observe = o
	}
}

// WithTimeout bounds every call. Zero leaves calls bounded only by their context.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		http:      &http.Client{},
		endpoints: NewEndpoints(baseURL),
		observe:   func(string, string, int, time.Duration) {},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// do sends body (if any) as JSON and decodes a JSON response into out (if non-nil).
func (c *Client) do(ctx context.Context, resource string, req Request, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode %s request body: %w", resource, err)
		}
		reader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, reader)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", resource, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.observe(resource, req.Method, 0, time.Since(start))
		return fmt.Errorf("%w: %s %s: %w", ErrTransport, req.Method, req.URL, err)
	}
	defer resp.Body.Close()
	c.observe(resource, req.Method, resp.StatusCode, time.Since(start))

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading %s response: %w", ErrTransport, resource, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, respBody)
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrMalformed, resource, err)
	}

	return nil
}

func (c *Client) fetch(ctx context.Context, resource string, req Request, body any) (any, error) {
	var out any
	if err := c.do(ctx, resource, req, body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListPosts(ctx context.Context) (any, error) {
	return c.fetch(ctx, "posts", c.endpoints.Posts(), nil)
}

func (c *Client) GetPost(ctx context.Context, id string) (any, error) {
	return c.fetch(ctx, "posts", c.endpoints.Post(id), nil)
}

func (c *Client) CreatePost(ctx context.Context, payload any) (any, error) {
	return c.fetch(ctx, "posts", c.endpoints.CreatePost(), payload)
}

func (c *Client) UpdatePost(ctx context.Context, id string, payload any) (any, error) {
	return c.fetch(ctx, "posts", c.endpoints.UpdatePost(id), payload)
}

func (c *Client) DeletePost(ctx context.Context, id string) error {
	return c.do(ctx, "posts", c.endpoints.DeletePost(id), nil, nil)
}

func (c *Client) ListTrash(ctx context.Context) (any, error) {
	return c.fetch(ctx, "trash", c.endpoints.Trash(), nil)
}

func (c *Client) RestorePost(ctx context.Context, id string) error {
	return c.do(ctx, "trash", c.endpoints.RestorePost(id), nil, nil)
}

func (c *Client) PurgePost(ctx context.Context, id string) error {
	return c.do(ctx, "trash", c.endpoints.PurgePost(id), nil, nil)
}

func (c *Client) ListPhotos(ctx context.Context, category string) (any, error) {
	return c.fetch(ctx, "photos", c.endpoints.Photos(category), nil)
}

func (c *Client) GetPhoto(ctx context.Context, id string) (any, error) {
	return c.fetch(ctx, "photos", c.endpoints.Photo(id), nil)
}

func (c *Client) CreatePhoto(ctx context.Context, payload any) (any, error) {
	return c.fetch(ctx, "photos", c.endpoints.CreatePhoto(), payload)
}

func (c *Client) UpdatePhoto(ctx context.Context, id string, payload any) (any, error) {
	return c.fetch(ctx, "photos", c.endpoints.UpdatePhoto(id), payload)
}

func (c *Client) DeletePhoto(ctx context.Context, id string) error {
	return c.do(ctx, "photos", c.endpoints.DeletePhoto(id), nil, nil)
}

func (c *Client) ValidatePassphrase(ctx context.Context, passphrase string) (bool, error) {
	var out struct {
		IsValid bool `json:"isValid"`
	}
	body := map[string]string{"passphrase": passphrase}
	if err := c.do(ctx, "auth", c.endpoints.ValidatePassphrase(), body, &out); err != nil {
		return false, err
	}
	return out.IsValid, nil
}
