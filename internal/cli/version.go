package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	serverhandlers "github.com/LeJamon/goclio/internal/rpc/handlers/server"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the goclio version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("goclio %s\n", serverhandlers.BuildVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
