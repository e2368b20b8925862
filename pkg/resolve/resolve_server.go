package resolve

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

var (
	// DefaultTimeout is the per-request resolution budget when the caller
	// does not supply one.
	DefaultTimeout = 2 * time.Second

	// MaxTimeout caps the per-request resolution budget a caller may ask
	// for.
	MaxTimeout = 10 * time.Second
)

// NewServerMux returns an HTTP server mux exposing the resolver:
//
//	GET /                         usage help
//	GET /{address}?timeout={s}    resolve, with an optional fractional-second budget
//
// Responses are plain text by default, or JSON when the client accepts
// application/json. An unknown address is 404, invalid input is 400.
func NewServerMux(resolver *Resolver) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		address := strings.Trim(r.URL.Path, "/")
		if address == "" {
			serverHandleHelp(w)
			return
		}

		serverHandleResolve(w, r, resolver, address)
	})

	return mux
}

func serverHandleHelp(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, "GET /<address>[?timeout=<seconds>]\n\nResolves a Ripple address to the best human-readable name available.\n")
}

func serverHandleResolve(w http.ResponseWriter, r *http.Request, resolver *Resolver, address string) {
	timeout := DefaultTimeout

	if raw := r.URL.Query().Get("timeout"); raw != "" {
		seconds, err := strconv.ParseFloat(raw, 64)
		if err != nil || seconds < 0 {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		timeout = time.Duration(seconds * float64(time.Second))
	}

	// An explicit zero would wait on every source unboundedly; clamp it to
	// the maximum instead, like any other over-budget request.
	if timeout == 0 || timeout > MaxTimeout {
		timeout = MaxTimeout
	}

	result, err := resolver.Resolve(r.Context(), address, timeout)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		w.Header().Set("Content-Type", "application/json")
		if !result.Found {
			w.WriteHeader(http.StatusNotFound)
		}
		json.NewEncoder(w).Encode(result)
		return
	}

	if !result.Found {
		http.Error(w, "no name found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, result.Name)
}
