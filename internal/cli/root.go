// Package cli implements the goclio command line.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "goclio",
	Short: "goclio - XRP Ledger API server",
	Long: `goclio is a read-only XRP Ledger API server. It answers RPC queries
such as amm_info against a local store of validated ledgers, over both
JSON-RPC and WebSocket transports.`,
}

// Execute runs the root command. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "conf", "", "configuration file path")
}
