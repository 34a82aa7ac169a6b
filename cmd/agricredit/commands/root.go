package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "agricredit",
	Short: "AgriCredit - farmer credit scoring and loan eligibility service",
	Long: `AgriCredit Unified CLI

Credit scoring backend for the SproutSell farmer marketplace.
Scores farmer profiles, gates loan applications, and serves the
financial API.

Usage:
  go run ./cmd/agricredit [command]

Examples:
  go run ./cmd/agricredit api
  go run ./cmd/agricredit scheduler start
  go run ./cmd/agricredit score --file assessment.json
  go run ./cmd/agricredit test-db`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "development", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
