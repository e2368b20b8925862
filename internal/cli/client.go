package cli

import (
	"crypto/tls"
	"net/http"

	"github.com/hashicorp/go-cleanhttp"
)

// newHTTPClient returns the outbound HTTP client shared by the registrar and
// identity-file lookups. With insecure set, TLS certificate verification is
// skipped, for deployments stuck behind interception proxies.
func newHTTPClient(insecure bool) *http.Client {
	if !insecure {
		return cleanhttp.DefaultClient()
	}

	transport := cleanhttp.DefaultTransport()
	transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}

	return &http.Client{Transport: transport}
}
