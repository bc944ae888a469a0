// Package backend is the HTTP client for the collection sync backend.
// It covers the auth check, the relations read, and the sync/reset
// trigger endpoints; progress streaming lives in internal/stream.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/marcus/colsync/internal/models"
)

// Sentinel errors for the failure classes callers branch on.
var (
	// ErrFetch marks a failed relations read. Callers must keep any
	// previously displayed data when they see this.
	ErrFetch = errors.New("fetch relations failed")
	// ErrTrigger marks a rejected or unreachable sync/reset start request.
	ErrTrigger = errors.New("trigger request failed")
)

// Client talks to the sync backend. All calls are scoped by shop.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New creates a backend client for the given base URL.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

type authResponse struct {
	Authorized bool `json:"authorized"`
}

// CheckAuth reports whether the shop has authorized the app.
func (c *Client) CheckAuth(ctx context.Context, shop string) (bool, error) {
	var resp authResponse
	if err := c.get(ctx, "/api/check-auth", shop, &resp); err != nil {
		return false, err
	}
	return resp.Authorized, nil
}

// FetchRelations reads the admin view: all parent/child relations plus the
// current plan. Failures wrap ErrFetch.
func (c *Client) FetchRelations(ctx context.Context, shop string) (*models.AdminView, error) {
	var view models.AdminView
	if err := c.get(ctx, "/api/relations", shop, &view); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	if view.Relations == nil {
		view.Relations = []models.Relation{}
	}
	return &view, nil
}

// TriggerSync asks the backend to start a collection sync. The response only
// confirms the request was accepted; completion is observed on the progress
// stream. Failures wrap ErrTrigger.
func (c *Client) TriggerSync(ctx context.Context, shop string) error {
	if err := c.get(ctx, "/sync-collections", shop, nil); err != nil {
		return fmt.Errorf("%w: %w", ErrTrigger, err)
	}
	return nil
}

// TriggerReset asks the backend to delete all parent/child relationships.
// Unlike sync, the response confirms completion. Failures wrap ErrTrigger.
func (c *Client) TriggerReset(ctx context.Context, shop string) error {
	if err := c.get(ctx, "/cleanup-collections", shop, nil); err != nil {
		return fmt.Errorf("%w: %w", ErrTrigger, err)
	}
	return nil
}

// InstallURL returns the install/authorization endpoint for the shop.
func (c *Client) InstallURL(shop string) string {
	return c.BaseURL + "/shopify?shop=" + url.QueryEscape(shop)
}

// get executes a shop-scoped GET and decodes the JSON body into result when
// result is non-nil.
func (c *Client) get(ctx context.Context, path, shop string, result any) error {
	params := url.Values{}
	params.Set("shop", shop)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		if len(body) > 0 {
			return fmt.Errorf("HTTP %d: %s", resp.StatusCode, body)
		}
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	if result != nil {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}

	return nil
}
