package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/altuslabsxyz/roulette-vrf/internal/config"
	"github.com/altuslabsxyz/roulette-vrf/internal/output"
	"github.com/altuslabsxyz/roulette-vrf/internal/starknet"
	"github.com/altuslabsxyz/roulette-vrf/internal/txflow"
)

var (
	waitPollInterval time.Duration
	waitTimeout      time.Duration
)

func newWaitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wait <tx-hash>",
		Short: "Wait for a submitted transaction to be accepted or rejected",
		Long: `Wait polls the node for the receipt of an already submitted transaction
until it is accepted on L2 or L1, rejected, or the timeout elapses.
Exit codes match the run command.`,
		Args: cobra.ExactArgs(1),
		RunE: runWait,
	}

	cmd.Flags().DurationVar(&waitPollInterval, "poll-interval", 0,
		"Time between receipt polls")
	cmd.Flags().DurationVar(&waitTimeout, "timeout", 0,
		"How long to wait for confirmation")

	return cmd
}

func runWait(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	printer := newPrinter(cmd)

	hash, err := starknet.ParseFelt(args[0])
	if err != nil {
		return fmt.Errorf("invalid transaction hash: %w", err)
	}
	if hash.IsZero() {
		return fmt.Errorf("invalid transaction hash: must not be zero")
	}

	cfg, sources, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyPollOverrides(cmd, cfg, sources, waitPollInterval, waitTimeout)
	if err := config.ValidateForWait(cfg); err != nil {
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

	poller := txflow.NewPoller(node)
	poller.SetLogger(logger)
	poller.SetClock(newClock())
	poller.SetBackoff(cfg.Backoff())

	timing := cfg.Timing()
	printer.Info("Waiting for %s (every %s, up to %s)", hash, timing.PollInterval, timing.Timeout)
	conf, err := poller.Confirm(ctx, hash, timing.PollInterval, timing.Timeout)
	if err != nil {
		return err
	}
	return output.RenderReceipt(cmd.OutOrStdout(), outputFormat(), &txflow.FinalReceipt{
		Hash:    conf.Hash,
		Status:  conf.Status,
		Receipt: conf.Receipt,
		Polls:   conf.Polls,
		Elapsed: conf.Elapsed,
	})
}
