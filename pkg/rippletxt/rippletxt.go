// Package rippletxt fetches and parses ripple.txt identity files.
//
// A ripple.txt file is a line-oriented "key: value" text file published at a
// well-known path under a domain, listing metadata about the domain and the
// Ripple accounts it vouches for. The "accounts" entries form the set of
// addresses the domain claims to own, and an optional "x-name" entry names
// the account more specifically than the domain itself.
package rippletxt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hashicorp/go-cleanhttp"
)

// WellKnownPath is the path of the identity file under a domain.
const WellKnownPath = "/ripple.txt"

// ErrNotFound is returned by Fetch when no identity file exists at any of the
// candidate locations for a domain.
var ErrNotFound = errors.New("rippletxt: no ripple.txt found")

// Entry is a single "key: value" line of an identity file.
type Entry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Record is the parsed contents of a domain's identity file. Entries keep
// their file order so a record re-serializes losslessly.
type Record struct {
	Entries []Entry `json:"entries"`
}

// Parse reads a ripple.txt body into a Record. Blank lines, comments, and
// lines without a colon are skipped; arbitrary third-party files are often
// sloppy and a malformed line is never fatal.
func Parse(r io.Reader) (*Record, error) {
	record := &Record{}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}

		record.Entries = append(record.Entries, Entry{
			Key:   strings.TrimSpace(key),
			Value: strings.TrimSpace(value),
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("rippletxt: error reading body: %w", err)
	}

	return record, nil
}

// String re-serializes the record as "key: value" lines in file order.
func (r *Record) String() string {
	b := strings.Builder{}

	for _, entry := range r.Entries {
		b.WriteString(entry.Key)
		b.WriteString(": ")
		b.WriteString(entry.Value)
		b.WriteString("\n")
	}

	return b.String()
}

// Get returns the first value for key, or an empty string. Keys are matched
// case-insensitively.
func (r *Record) Get(key string) string {
	for _, entry := range r.Entries {
		if strings.EqualFold(entry.Key, key) {
			return entry.Value
		}
	}
	return ""
}

// Values returns every value for key, in file order.
func (r *Record) Values(key string) []string {
	var values []string
	for _, entry := range r.Entries {
		if strings.EqualFold(entry.Key, key) {
			values = append(values, entry.Value)
		}
	}
	return values
}

// XName returns the identity file's x-name entry, or an empty string.
func (r *Record) XName() string {
	return r.Get("x-name")
}

// Accounts returns the addresses the domain claims to own.
func (r *Record) Accounts() []string {
	return r.Values("accounts")
}

// Claims reports whether the identity file advertises the given address.
func (r *Record) Claims(address string) bool {
	for _, account := range r.Accounts() {
		if account == address {
			return true
		}
	}
	return false
}

// URLs returns the candidate locations of a domain's identity file, in the
// order they should be tried: HTTPS on the bare domain, HTTPS on the www
// subdomain, then plain HTTP as a last resort.
func URLs(domain string) []string {
	return []string{
		"https://" + domain + WellKnownPath,
		"https://www." + domain + WellKnownPath,
		"http://" + domain + WellKnownPath,
	}
}

// Client fetches identity files from domains.
type Client struct {
	// HTTPClient to fetch with. Defaults to cleanhttp.DefaultClient().
	HTTPClient *http.Client

	// URLs overrides the candidate URL precedence for a domain,
	// mostly useful for tests. Defaults to the package-level URLs.
	URLs func(domain string) []string
}

// Fetch retrieves and parses the identity file for domain, trying each
// candidate URL once, in order, and returning the first that parses. Failing
// to fetch is a normal outcome for arbitrary third-party domains; the error
// wraps ErrNotFound when every location returned 404.
func (c *Client) Fetch(ctx context.Context, domain string) (*Record, error) {
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = cleanhttp.DefaultClient()
	}

	urls := URLs(domain)
	if c.URLs != nil {
		urls = c.URLs(domain)
	}

	var lastErr error = ErrNotFound

	for _, url := range urls {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("rippletxt: error creating HTTP request: %w", err)
		}

		req.Header.Set("Accept", "text/plain")

		resp, err := httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("rippletxt: fetching %q: %w", domain, ctx.Err())
			}
			lastErr = err
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			if resp.StatusCode != http.StatusNotFound {
				lastErr = fmt.Errorf("%q HTTP request returned status code: %d (%s)", url, resp.StatusCode, http.StatusText(resp.StatusCode))
			}
			continue
		}

		record, err := Parse(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		// A body with no entries at all (empty, or say a parked page) is
		// not an identity file; try the next location.
		if len(record.Entries) == 0 {
			lastErr = fmt.Errorf("%q returned an empty or malformed body", url)
			continue
		}

		return record, nil
	}

	return nil, fmt.Errorf("rippletxt: fetching %q: %w", domain, lastErr)
}
