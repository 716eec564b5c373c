package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aqua-stark/world-binding/binding/api"
)

var entrypointsCmd = &cobra.Command{
	Use:   "entrypoints",
	Short: "list the world entrypoints known to the binding layer",
	Args:  cobra.NoArgs,
	RunE:  doEntrypoints,
}

func doEntrypoints(cmd *cobra.Command, args []string) error {
	for _, m := range api.Methods() {
		params := make([]string, 0, len(m.Params()))
		for _, p := range m.Params() {
			params = append(params, fmt.Sprintf("%s: %s", p.Name, p.Shape.Kind()))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%-8s %s(%s)\n", m.Kind(), m.FullName(), strings.Join(params, ", "))
	}
	return nil
}

func registerEntrypoints(parentCmd *cobra.Command) {
	parentCmd.AddCommand(entrypointsCmd)
}
