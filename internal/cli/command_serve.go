package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/picatz/rid/pkg/registrar"
	"github.com/picatz/rid/pkg/resolve"
	"github.com/picatz/rid/pkg/rippletxt"
	"github.com/spf13/cobra"
)

var CommandServe = &cobra.Command{
	Use:   "serve [flags]",
	Short: "Serve the name resolution HTTP API",
	Long: `Serve an HTTP API that resolves Ripple addresses to names.

GET /<address>?timeout=<seconds> resolves one address within the given
fractional-second budget (default 2, capped at 10) and responds with the name
in plain text, or JSON when the request accepts application/json. GET /
prints usage help.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := cmd.Flags().GetString("addr")
		if err != nil {
			return fmt.Errorf("invalid addr: %w", err)
		}

		registrarURL, err := cmd.Flags().GetString("registrar")
		if err != nil {
			return fmt.Errorf("invalid registrar: %w", err)
		}

		mappingPath, err := cmd.Flags().GetString("mapping")
		if err != nil {
			return fmt.Errorf("invalid mapping: %w", err)
		}

		defaultTimeout, err := cmd.Flags().GetDuration("default-timeout")
		if err != nil {
			return fmt.Errorf("invalid default-timeout: %w", err)
		}

		maxTimeout, err := cmd.Flags().GetDuration("max-timeout")
		if err != nil {
			return fmt.Errorf("invalid max-timeout: %w", err)
		}

		insecure, err := cmd.Flags().GetBool("insecure")
		if err != nil {
			return fmt.Errorf("invalid insecure: %w", err)
		}

		// The static table is loaded once here at startup; the resolver
		// treats it as read-only for the life of the process.
		table := resolve.WellKnown
		if mappingPath != "" {
			table, err = loadMapping(mappingPath)
			if err != nil {
				return fmt.Errorf("invalid mapping file: %w", err)
			}
		}

		resolve.DefaultTimeout = defaultTimeout
		resolve.MaxTimeout = maxTimeout

		httpClient := newHTTPClient(insecure)

		resolver := resolve.New(
			table,
			&registrar.Client{BaseURL: registrarURL, HTTPClient: httpClient},
			&rippletxt.Client{HTTPClient: httpClient},
		)

		srv := &http.Server{
			Addr:    addr,
			Handler: resolve.NewServerMux(resolver),
		}

		errc := make(chan error, 1)

		go func() {
			errc <- srv.ListenAndServe()
		}()

		log.Printf("serving on %s", addr)

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt)

		select {
		case err := <-errc:
			return fmt.Errorf("server error: %w", err)
		case <-quit:
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}

		return nil
	},
}

// loadMapping reads a JSON object of address-to-name pairs.
func loadMapping(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	table := map[string]string{}

	if err := json.NewDecoder(f).Decode(&table); err != nil {
		return nil, err
	}

	return table, nil
}

// envOr falls back when the named environment variable is unset or empty.
func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func init() {
	CommandServe.Flags().String("addr", envOr("RID_ADDR", ":8080"), "address to listen on")
	CommandServe.Flags().String("registrar", envOr("RID_REGISTRAR", registrar.Ripple), "nickname registrar base URL")
	CommandServe.Flags().String("mapping", "", "path to a JSON file of well-known address names, replacing the built-in table")
	CommandServe.Flags().Duration("default-timeout", resolve.DefaultTimeout, "resolution budget for requests without a timeout parameter")
	CommandServe.Flags().Duration("max-timeout", resolve.MaxTimeout, "largest resolution budget a request may ask for")
	CommandServe.Flags().Bool("insecure", false, "skip TLS certificate verification for outbound lookups")

	CommandRoot.AddCommand(CommandServe)
}
