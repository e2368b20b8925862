package registrar_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/picatz/rid/pkg/registrar"
)

const testAddress = "rvYAfWj5gh67oV6fW32ZzP3Aw4Eubs59B"

func TestLookup(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got, want := r.URL.Path, "/v1/user/"+testAddress; got != want {
			t.Errorf("got path %q, want %q", got, want)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"username": "bob", "domain": "example.com"}`))
	}))
	defer ts.Close()

	client := &registrar.Client{BaseURL: ts.URL}

	account, err := client.Lookup(context.Background(), testAddress)
	if err != nil {
		t.Fatal(err)
	}

	if got, want := account.Username, "bob"; got != want {
		t.Errorf("got username %q, want %q", got, want)
	}

	if got, want := account.Domain, "example.com"; got != want {
		t.Errorf("got domain %q, want %q", got, want)
	}
}

func TestLookupMissingFields(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	client := &registrar.Client{BaseURL: ts.URL}

	account, err := client.Lookup(context.Background(), testAddress)
	if err != nil {
		t.Fatal(err)
	}

	if account.Username != "" || account.Domain != "" {
		t.Errorf("got %+v, want empty account", account)
	}
}

func TestLookupError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	client := &registrar.Client{BaseURL: ts.URL}

	if _, err := client.Lookup(context.Background(), testAddress); err == nil {
		t.Error("got no error for a 404 response")
	}
}

func TestLookupShared(t *testing.T) {
	requests := int64(0)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&requests, 1)
		time.Sleep(50 * time.Millisecond)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"username": "bob"}`))
	}))
	defer ts.Close()

	client := &registrar.Client{BaseURL: ts.URL}

	// One resolution: both lookups carry the same shared mark.
	ctx := registrar.WithShared(context.Background())

	wg := sync.WaitGroup{}
	wg.Add(2)

	for i := 0; i < 2; i++ {
		go func() {
			defer wg.Done()

			account, err := client.Lookup(ctx, testAddress)
			if err != nil {
				t.Error(err)
				return
			}

			if got, want := account.Username, "bob"; got != want {
				t.Errorf("got username %q, want %q", got, want)
			}
		}()
	}

	wg.Wait()

	if got := atomic.LoadInt64(&requests); got != 1 {
		t.Errorf("got %d registrar requests for concurrent lookups, want 1", got)
	}
}

func TestLookupIndependentCallers(t *testing.T) {
	requests := int64(0)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&requests, 1)
		time.Sleep(300 * time.Millisecond)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"username": "bob"}`))
	}))
	defer ts.Close()

	client := &registrar.Client{BaseURL: ts.URL}

	// Two separate resolutions of the same address: one on a deadline that
	// expires mid-request, one with ample budget. They must not ride the
	// same HTTP request, and the expired deadline must not surface as the
	// patient caller's error.
	shortCtx, shortCancel := context.WithTimeout(registrar.WithShared(context.Background()), 50*time.Millisecond)
	defer shortCancel()

	longCtx, longCancel := context.WithTimeout(registrar.WithShared(context.Background()), 2*time.Second)
	defer longCancel()

	wg := sync.WaitGroup{}
	wg.Add(2)

	go func() {
		defer wg.Done()

		if _, err := client.Lookup(shortCtx, testAddress); err == nil {
			t.Error("got no error from a lookup whose deadline expired mid-request")
		}
	}()

	// Let the first flight start before the second caller arrives.
	time.Sleep(10 * time.Millisecond)

	go func() {
		defer wg.Done()

		account, err := client.Lookup(longCtx, testAddress)
		if err != nil {
			t.Errorf("lookup with ample budget failed: %v", err)
			return
		}

		if got, want := account.Username, "bob"; got != want {
			t.Errorf("got username %q, want %q", got, want)
		}
	}()

	wg.Wait()

	if got := atomic.LoadInt64(&requests); got != 2 {
		t.Errorf("got %d registrar requests for independent resolutions, want 2", got)
	}
}

func TestLookupUnsharedByDefault(t *testing.T) {
	requests := int64(0)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&requests, 1)
		time.Sleep(50 * time.Millisecond)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"username": "bob"}`))
	}))
	defer ts.Close()

	client := &registrar.Client{BaseURL: ts.URL}

	wg := sync.WaitGroup{}
	wg.Add(2)

	for i := 0; i < 2; i++ {
		go func() {
			defer wg.Done()

			if _, err := client.Lookup(context.Background(), testAddress); err != nil {
				t.Error(err)
			}
		}()
	}

	wg.Wait()

	if got := atomic.LoadInt64(&requests); got != 2 {
		t.Errorf("got %d registrar requests for unmarked lookups, want 2", got)
	}
}
