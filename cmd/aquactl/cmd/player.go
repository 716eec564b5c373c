package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/aqua-stark/world-binding/codec"
	"github.com/aqua-stark/world-binding/facade"
)

var (
	playerAquariumsCmd = &cobra.Command{
		Use:   "player-aquariums <address>",
		Short: "list the aquarium ids owned by a player",
		Args:  cobra.ExactArgs(1),
		RunE:  doPlayerAquariums,
	}

	waitFishCmd = &cobra.Command{
		Use:   "wait-fish <id>",
		Short: "wait until a fish is retrievable from the read model",
		Args:  cobra.ExactArgs(1),
		RunE:  doWaitFish,
	}
)

func doPlayerAquariums(cmd *cobra.Command, args []string) error {
	w, err := connect()
	if err != nil {
		return err
	}
	defer w.Close()

	rs, err := facade.NewPlayer(w.backend).GetPlayerAquariums(context.Background(), args[0])
	if err != nil {
		return err
	}
	values, err := rs.Decode(codec.ArrayShape{Elem: codec.FeltShape})
	if err != nil {
		return fmt.Errorf("malformed aquarium list %s: %w", rs, err)
	}
	for _, id := range values[0].(codec.Array).Items() {
		fmt.Fprintln(cmd.OutOrStdout(), id)
	}
	return nil
}

func doWaitFish(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseUint(args[0], 0, 64)
	if err != nil {
		return fmt.Errorf("malformed fish id: %w", err)
	}

	w, err := connect()
	if err != nil {
		return err
	}
	defer w.Close()

	outcome, err := w.workflows().WaitFishVisible(cmd.Context(), id)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s after %d attempts\n", outcome.State, outcome.Attempts)
	if outcome.Converged() {
		fmt.Fprintln(cmd.OutOrStdout(), outcome.Result)
	}
	return nil
}

func registerPlayer(parentCmd *cobra.Command) {
	parentCmd.AddCommand(playerAquariumsCmd)
	parentCmd.AddCommand(waitFishCmd)
}
