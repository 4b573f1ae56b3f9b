package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "skincheck",
	Short: "Analyze cosmetic ingredient labels against your skin type",
	Long: `skincheck reads the recognized text of a cosmetic ingredient label, extracts the
ingredient names, matches them against the ingredient dataset and explains each one
for the configured skin-type profile.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the build version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "skincheck", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override LOG_LEVEL")
	rootCmd.AddCommand(versionCmd)
}
