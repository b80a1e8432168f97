package cmd

import (
	"fmt"

	"github.com/rohmanhakim/store-insights/internal/build"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "store-insights %s (built %s)\n", build.FullVersion(), build.BuildTime)
	},
}
