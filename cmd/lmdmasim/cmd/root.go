// Package cmd provides the command-line interface of lmdmasim.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "lmdmasim",
	Short: "Run the LM and LMDMA drivers on a simulated NDS32 core.",
	Long: `lmdmasim runs the local memory and LMDMA drivers against a ` +
		`simulated core. Defaults can be set in a .env file or with ` +
		`LMDMASIM_* environment variables.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
