package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/picatz/rid/pkg/registrar"
	"github.com/picatz/rid/pkg/resolve"
	"github.com/picatz/rid/pkg/rippletxt"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var CommandResolve = &cobra.Command{
	Use:   "resolve addresses... [flags]",
	Short: "Resolve Ripple addresses to names",
	Long: `Resolve Ripple addresses to the best human-readable name available.

Each address is checked against a built-in table of well-known addresses, the
nickname registrar, and the domain its account claims, verified against the
domain's ripple.txt identity file. Addresses are resolved in parallel, each
within the given timeout. Results are streamed to STDOUT as JSON newline
delimited objects, which can be piped to other commands (e.g. jq) or
redirected to a file.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registrarURL, err := cmd.Flags().GetString("registrar")
		if err != nil {
			return fmt.Errorf("invalid registrar: %w", err)
		}

		timeout, err := cmd.Flags().GetDuration("timeout")
		if err != nil {
			return fmt.Errorf("invalid timeout: %w", err)
		}

		verbose, err := cmd.Flags().GetBool("verbose")
		if err != nil {
			return fmt.Errorf("invalid verbose: %w", err)
		}

		insecure, err := cmd.Flags().GetBool("insecure")
		if err != nil {
			return fmt.Errorf("invalid insecure: %w", err)
		}

		httpClient := newHTTPClient(insecure)

		resolver := resolve.New(
			nil,
			&registrar.Client{BaseURL: registrarURL, HTTPClient: httpClient},
			&rippletxt.Client{HTTPClient: httpClient},
		)

		output := json.NewEncoder(cmd.OutOrStdout())

		eg, gtx := errgroup.WithContext(cmd.Context())

		for _, arg := range args {
			arg := arg
			eg.Go(func() error {
				candidates, err := resolver.Collect(gtx, arg, timeout)
				if err != nil {
					return fmt.Errorf("%s: %w", arg, err)
				}

				if verbose {
					for _, candidate := range candidates {
						if candidate.State == resolve.StateFailed {
							fmt.Fprintln(cmd.ErrOrStderr(), "error:", candidate.Source+":", candidate.Reason)
						}
					}
				}

				return output.Encode(resolve.Pick(arg, candidates))
			})
		}

		if err := eg.Wait(); err != nil {
			return fmt.Errorf("encountered error while resolving: %w", err)
		}

		return nil
	},
}

func init() {
	CommandResolve.Flags().String("registrar", registrar.Ripple, "nickname registrar base URL")
	CommandResolve.Flags().Duration("timeout", 2*time.Second, "timeout for each address, 0s for no timeout")
	CommandResolve.Flags().Bool("verbose", false, "show per-source failures on STDERR")
	CommandResolve.Flags().Bool("insecure", false, "skip TLS certificate verification for outbound lookups")

	CommandRoot.AddCommand(CommandResolve)
}
