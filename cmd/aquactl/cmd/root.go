// Package cmd implements the commands for the aquactl executable.
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/aqua-stark/world-binding/common/cbor"
)

var rootCmd = &cobra.Command{
	Use:               "aquactl",
	Short:             "Aqua Stark world binding debug tool",
	SilenceUsage:      true,
	PersistentPreRunE: initCommon,
}

// RootCommand returns the root (top level) cobra.Command.
func RootCommand() *cobra.Command {
	return rootCmd
}

// Execute spawns the main entry point after handling the config file
// and command line arguments.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().AddFlagSet(RootFlags)
	rootCmd.PersistentFlags().AddFlagSet(cbor.Flags)

	// Register all of the sub-commands.
	for _, v := range []func(*cobra.Command){
		registerEntrypoints,
		registerQuery,
		registerPlayer,
	} {
		v(rootCmd)
	}
}
