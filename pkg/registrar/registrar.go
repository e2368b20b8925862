// Package registrar provides a client for Ripple nickname registrar
// services, which record an optional human-readable name and an optional
// claimed domain against an address.
package registrar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/hashicorp/go-cleanhttp"
	"golang.org/x/sync/singleflight"
)

// KnownRegistrar is a known registrar base URL.
type KnownRegistrar = string

var (
	Ripple KnownRegistrar = "https://id.ripple.com"
)

// Account is the registrar's record for an address. Both fields are
// optional: an account may have a nickname, a claimed domain, neither,
// or both.
type Account struct {
	Username string `json:"username"`
	Domain   string `json:"domain"`
}

// Client queries a registrar for account records.
//
// Within a resolution marked by WithShared, concurrent lookups for the same
// address share a single HTTP request, so callers interested in different
// fields of the same record (the nickname and the claimed domain) do not
// double the load on the registrar. Nothing survives the shared in-flight
// call; results are never cached.
type Client struct {
	// BaseURL of the registrar. Defaults to Ripple.
	BaseURL string

	// HTTPClient to query with. Defaults to cleanhttp.DefaultClient().
	HTTPClient *http.Client

	group singleflight.Group
}

type contextKey struct{}

var (
	sharedKey   contextKey
	sharedToken uint64
)

// WithShared marks ctx as one resolution for lookup sharing: registrar
// lookups for the same address made under the returned context collapse
// into a single HTTP request. The share is scoped to that one context
// lineage, so independent resolutions never join each other's request and
// one caller's cancelled deadline cannot surface as another's error.
func WithShared(ctx context.Context) context.Context {
	return context.WithValue(ctx, sharedKey, atomic.AddUint64(&sharedToken, 1))
}

// Lookup returns the registrar's record for an address.
func (c *Client) Lookup(ctx context.Context, address string) (*Account, error) {
	token, ok := ctx.Value(sharedKey).(uint64)
	if !ok {
		return c.lookup(ctx, address)
	}

	v, err, _ := c.group.Do(strconv.FormatUint(token, 10)+":"+address, func() (interface{}, error) {
		return c.lookup(ctx, address)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Account), nil
}

func (c *Client) lookup(ctx context.Context, address string) (*Account, error) {
	baseURL := c.BaseURL
	if baseURL == "" {
		baseURL = Ripple
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = cleanhttp.DefaultClient()
	}

	url := strings.TrimSuffix(baseURL, "/") + "/v1/user/" + address

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("registrar: error creating HTTP request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("registrar: error performing HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("registrar: %q HTTP request returned status code: %d (%s)", url, resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	account := &Account{}

	if err := json.NewDecoder(resp.Body).Decode(account); err != nil {
		return nil, fmt.Errorf("registrar: error decoding response: %w", err)
	}

	return account, nil
}
