package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aqua-stark/world-binding/binding/api"
	"github.com/aqua-stark/world-binding/codec"
)

var queryCmd = &cobra.Command{
	Use:   "query <target> <entrypoint> [args...]",
	Short: "issue a read-only world call and print the result felts",
	Args:  cobra.MinimumNArgs(2),
	RunE:  doQuery,
}

// buildQuery builds a view descriptor from command line arguments.
func buildQuery(target, entrypoint string, args []string) (*api.Descriptor, error) {
	m, ok := api.LookupMethod(target, entrypoint)
	if !ok {
		return nil, fmt.Errorf("unknown entrypoint %s::%s", target, entrypoint)
	}
	if m.Kind() != api.View {
		return nil, fmt.Errorf("%s is not read-only", m.FullName())
	}
	if len(args) != len(m.Params()) {
		return nil, fmt.Errorf("%s takes %d arguments, got %d", m.FullName(), len(m.Params()), len(args))
	}

	values := make([]codec.Value, 0, len(args))
	for i, p := range m.Params() {
		v, err := parseArgument(p.Shape, args[i])
		if err != nil {
			return nil, fmt.Errorf("argument '%s': %w", p.Name, err)
		}
		values = append(values, v)
	}
	return m.Build(values...)
}

// parseArgument encodes a command line argument. Only scalars, u256 and
// unit enum variants can be given on the command line.
func parseArgument(shape codec.Shape, s string) (codec.Value, error) {
	switch sh := shape.(type) {
	case *codec.EnumShape:
		return sh.Encode(s, nil)
	case codec.TupleShape:
		if len(sh.Elems) == 2 {
			return codec.EncodeU256(s)
		}
	}

	switch shape.Kind() {
	case codec.KindFelt:
		return codec.EncodeFelt(s)
	case codec.KindAddress:
		return codec.EncodeAddress(s)
	case codec.KindShortString:
		return codec.EncodeShortString(s)
	case codec.KindByteArray:
		return codec.EncodeByteArray(s), nil
	default:
		return nil, fmt.Errorf("%s arguments are not supported", shape.Kind())
	}
}

func doQuery(cmd *cobra.Command, args []string) error {
	desc, err := buildQuery(args[0], args[1], args[2:])
	if err != nil {
		return err
	}

	w, err := connect()
	if err != nil {
		return err
	}
	defer w.Close()

	rs, err := w.backend.Query(context.Background(), desc)
	if err != nil {
		logger.Error("query failed",
			"err", err,
			"entrypoint", desc.Entrypoint(),
		)
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), rs)
	return nil
}

func registerQuery(parentCmd *cobra.Command) {
	parentCmd.AddCommand(queryCmd)
}
