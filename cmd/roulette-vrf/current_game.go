package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/altuslabsxyz/roulette-vrf/internal/output"
	"github.com/altuslabsxyz/roulette-vrf/internal/starknet"
)

var currentGameRoulette string

type currentGameView struct {
	Roulette string `json:"roulette" yaml:"roulette"`
	Player   string `json:"player" yaml:"player"`
	GameID   uint64 `json:"game_id" yaml:"game_id"`
}

func newCurrentGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "current-game [player]",
		Short: "Show the player's current game id",
		Long:  `Reads get_current_game from the roulette contract. The player defaults to the configured account.`,
		Args:  cobra.MaximumNArgs(1),
		RunE:  runCurrentGame,
	}

	cmd.Flags().StringVar(&currentGameRoulette, "roulette", "",
		"Roulette contract address")

	return cmd
}

func runCurrentGame(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, sources, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("roulette") {
		cfg.Contracts.Roulette = currentGameRoulette
		sources.MarkFlag("contracts.roulette")
	}
	if cfg.RPC.Endpoint == "" {
		return fmt.Errorf("rpc.endpoint is required")
	}
	roulette, err := starknet.ParseFelt(cfg.Contracts.Roulette)
	if err != nil || roulette.IsZero() {
		return fmt.Errorf("contracts.roulette must be a non-zero address")
	}

	var player starknet.Felt
	if len(args) == 1 {
		if player, err = starknet.ParseFelt(args[0]); err != nil {
			return fmt.Errorf("invalid player address: %w", err)
		}
	} else if player, err = cfg.AccountAddress(); err != nil {
		return err
	}

	logger, err := newLogger(cmd.ErrOrStderr(), cfg)
	if err != nil {
		return err
	}
	node, err := dialNode(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", cfg.RPC.Endpoint, err)
	}
	defer node.Close()

	id, err := currentGame(ctx, node, roulette, player)
	if err != nil {
		return fmt.Errorf("failed to read current game: %w", err)
	}

	if format := outputFormat(); format != output.FormatText {
		return output.RenderValue(cmd.OutOrStdout(), format, currentGameView{
			Roulette: roulette.String(),
			Player:   player.String(),
			GameID:   id,
		})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Current game for %s: %d\n", player, id)
	return nil
}
