package cli

import "github.com/spf13/cobra"

var CommandRoot = &cobra.Command{
	Use:   "rid",
	Short: `rid resolves Ripple addresses to human-readable names`,
}
