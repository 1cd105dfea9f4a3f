package main

import (
	"context"

	"cosmossdk.io/log"

	"github.com/altuslabsxyz/roulette-vrf/internal/bet"
	"github.com/altuslabsxyz/roulette-vrf/internal/config"
	"github.com/altuslabsxyz/roulette-vrf/internal/interactive"
	"github.com/altuslabsxyz/roulette-vrf/internal/signer"
	"github.com/altuslabsxyz/roulette-vrf/internal/starknet"
	"github.com/altuslabsxyz/roulette-vrf/internal/txflow"
)

// nodeClient is the node surface the commands use.
type nodeClient interface {
	txflow.Node
	ChainID(ctx context.Context) (starknet.Felt, error)
	Call(ctx context.Context, call starknet.FunctionCall, block starknet.BlockTag) ([]starknet.Felt, error)
	Close()
}

// Constructors used by the commands. Tests replace them.
var (
	dialNode = func(ctx context.Context, cfg *config.Config, logger log.Logger) (nodeClient, error) {
		c, err := starknet.Dial(ctx, cfg.RPC.Endpoint, cfg.RPC.RequestTimeout)
		if err != nil {
			return nil, err
		}
		c.SetLogger(logger)
		return c, nil
	}

	newSigner = func(cfg *config.Config, chainID starknet.Felt, logger log.Logger) (txflow.Signer, error) {
		address, err := cfg.AccountAddress()
		if err != nil {
			return nil, err
		}
		s, err := signer.NewCommandSigner(address, chainID, cfg.Account.SignerCommand)
		if err != nil {
			return nil, err
		}
		s.SetTimeout(cfg.Account.SignerTimeout)
		s.SetLogger(logger)
		return s, nil
	}

	newPrompter = func() interactive.Prompter {
		return interactive.NewPromptuiPrompter()
	}

	isInteractive = interactive.IsInteractive

	newClock = func() txflow.Clock {
		return txflow.RealClock()
	}
)

// currentGame reads the player's current game id from the roulette contract.
func currentGame(ctx context.Context, node nodeClient, roulette, player starknet.Felt) (uint64, error) {
	out, err := node.Call(ctx, bet.CurrentGame(roulette, player), starknet.BlockLatest)
	if err != nil {
		return 0, err
	}
	if len(out) == 0 {
		return 0, errEmptyCallResult
	}
	id, ok := out[0].Uint64()
	if !ok {
		return 0, errGameIDOverflow
	}
	return id, nil
}
