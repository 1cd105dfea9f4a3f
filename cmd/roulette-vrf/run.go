package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/altuslabsxyz/roulette-vrf/internal/bet"
	"github.com/altuslabsxyz/roulette-vrf/internal/config"
	"github.com/altuslabsxyz/roulette-vrf/internal/interactive"
	"github.com/altuslabsxyz/roulette-vrf/internal/output"
	"github.com/altuslabsxyz/roulette-vrf/internal/starknet"
	"github.com/altuslabsxyz/roulette-vrf/internal/txflow"
)

// run command flags
var (
	runType          string
	runValue         uint64
	runAmount        string
	runGameID        uint64
	runUser          string
	runSplit         string
	runCorner        string
	runSalt          string
	runYes           bool
	runDryRun        bool
	runAccount       string
	runSignerCommand string
	runRoulette      string
	runVRFProvider   string
	runFeeMode       string
	runPollInterval  time.Duration
	runTimeout       time.Duration
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Place a bet backed by a VRF random value",
		Long: `Run composes the two-call multicall (VRF request_random, then roulette
play_game), estimates its fee, asks for confirmation, submits it and waits
until the ledger accepts or rejects it.

Exit codes:
  0  confirmed, or cancelled before submission
  2  fee estimation failed (nothing was sent)
  3  submission failed
  4  transaction rejected on chain
  5  confirmation timed out
  1  any other failure`,
		Example: `  # Straight bet on 17
  roulette-vrf run --type straight --value 17 --amount 10000000000000

  # Split bet on 1 and 2 without a confirmation prompt
  roulette-vrf run --type straight --split 1,2 --amount 10000000000000 --yes

  # Estimate only
  roulette-vrf run --type red-black --value 0 --amount 10000000000000 --dry-run`,
		Args: cobra.NoArgs,
		RunE: runRun,
	}

	defaults := config.DefaultConfig()

	cmd.Flags().StringVar(&runType, "type", "",
		"Bet type: straight, red-black, even-odd, column, dozen, high-low (prompted when omitted)")
	cmd.Flags().Uint64Var(&runValue, "value", 0,
		"Bet value (number, color, parity, column, dozen or half)")
	cmd.Flags().StringVar(&runAmount, "amount", "",
		"Bet amount in base units")
	cmd.Flags().Uint64Var(&runGameID, "game-id", 0,
		"Game id (default: the player's current game from the contract)")
	cmd.Flags().StringVar(&runUser, "user", "",
		"Player address (default: the account address)")
	cmd.Flags().StringVar(&runSplit, "split", "",
		"Split bet values, two comma-separated numbers")
	cmd.Flags().StringVar(&runCorner, "corner", "",
		"Corner bet values, four comma-separated numbers")
	cmd.Flags().StringVar(&runSalt, "salt", "",
		"Seed the VRF request with this salt instead of the account nonce")
	cmd.Flags().BoolVarP(&runYes, "yes", "y", false,
		"Submit without asking for confirmation")
	cmd.Flags().BoolVar(&runDryRun, "dry-run", false,
		"Estimate the fee and stop before submission")
	cmd.Flags().StringVar(&runAccount, "account", "",
		"Account address")
	cmd.Flags().StringVar(&runSignerCommand, "signer-command", "",
		"Command that signs transactions")
	cmd.Flags().StringVar(&runRoulette, "roulette", "",
		"Roulette contract address")
	cmd.Flags().StringVar(&runVRFProvider, "vrf-provider", "",
		fmt.Sprintf("VRF provider contract address (default: %s)", defaults.Contracts.VRFProvider))
	cmd.Flags().StringVar(&runFeeMode, "fee-mode", "",
		"Data availability mode for nonce and fee: L1, L2")
	cmd.Flags().DurationVar(&runPollInterval, "poll-interval", 0,
		fmt.Sprintf("Time between receipt polls (default: %s)", defaults.Poll.Interval))
	cmd.Flags().DurationVar(&runTimeout, "timeout", 0,
		fmt.Sprintf("How long to wait for confirmation (default: %s)", defaults.Poll.Timeout))

	return cmd
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	printer := newPrinter(cmd)

	cfg, sources, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyRunOverrides(cmd, cfg, sources)
	if err := config.Validate(cfg); err != nil {
		return err
	}
	engineCfg, err := cfg.EngineConfig()
	if err != nil {
		return err
	}
	account, err := cfg.AccountAddress()
	if err != nil {
		return err
	}

	// Resolve local input before touching the network.
	betType, err := resolveBetType(runType)
	if err != nil {
		return err
	}
	draft, err := buildBet(cmd, betType, account)
	if err != nil {
		return err
	}
	source, err := resolveSource(runSalt)
	if err != nil {
		return err
	}
	if !runYes && !runDryRun && !isInteractive() {
		return fmt.Errorf("refusing to submit without confirmation in a non-interactive session (use --yes)")
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

	chainID, err := node.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("failed to read chain id: %w", err)
	}
	accountSigner, err := newSigner(cfg, chainID, logger)
	if err != nil {
		return fmt.Errorf("failed to set up signer: %w", err)
	}

	if !cmd.Flags().Changed("game-id") {
		id, err := currentGame(ctx, node, engineCfg.Contracts.Roulette, draft.User)
		if err != nil {
			return fmt.Errorf("failed to read current game: %w", err)
		}
		draft.GameID = id
	}
	logger.Info("placing bet", "game_id", draft.GameID, "type", draft.Type.String(), "value", draft.Value, "amount", draft.Amount.String())

	engine := txflow.NewEngine(node, accountSigner, engineCfg)
	engine.SetLogger(logger)
	engine.SetClock(newClock())
	payload := txflow.BetPayload{Bets: []bet.Bet{draft}, Source: source}

	if runDryRun {
		_, est, err := engine.Estimate(ctx, payload)
		if err != nil {
			return err
		}
		if outputFormat() != output.FormatText {
			return output.RenderValue(cmd.OutOrStdout(), outputFormat(), est)
		}
		return output.RenderEstimate(cmd.OutOrStdout(), est)
	}

	hooks := txflow.Hooks{
		Submitted: func(hash starknet.Felt) {
			printer.Info("Submitted %s, waiting for confirmation", hash)
		},
	}
	if !runYes {
		hooks.BeforeSubmit = interactive.ConfirmSubmission(newPrompter(), cmd.ErrOrStderr())
	}
	engine.SetHooks(hooks)

	printer.Info("Game %d: %s bet of %s on %d", draft.GameID, draft.Type, draft.Amount, draft.Value)
	receipt, err := engine.RunBetTransaction(ctx, payload, cfg.Timing())
	if err != nil {
		return err
	}
	return output.RenderReceipt(cmd.OutOrStdout(), outputFormat(), receipt)
}

// applyRunOverrides applies run flags to config (highest priority).
func applyRunOverrides(cmd *cobra.Command, cfg *config.Config, sources config.Sources) {
	if cmd.Flags().Changed("account") {
		cfg.Account.Address = runAccount
		sources.MarkFlag("account.address")
	}
	if cmd.Flags().Changed("signer-command") {
		cfg.Account.SignerCommand = runSignerCommand
		sources.MarkFlag("account.signer_command")
	}
	if cmd.Flags().Changed("roulette") {
		cfg.Contracts.Roulette = runRoulette
		sources.MarkFlag("contracts.roulette")
	}
	if cmd.Flags().Changed("vrf-provider") {
		cfg.Contracts.VRFProvider = runVRFProvider
		sources.MarkFlag("contracts.vrf_provider")
	}
	if cmd.Flags().Changed("fee-mode") {
		cfg.Fee.Mode = runFeeMode
		sources.MarkFlag("fee.mode")
	}
	applyPollOverrides(cmd, cfg, sources, runPollInterval, runTimeout)
}

// applyPollOverrides applies the shared --poll-interval and --timeout flags.
func applyPollOverrides(cmd *cobra.Command, cfg *config.Config, sources config.Sources, interval, timeout time.Duration) {
	if cmd.Flags().Changed("poll-interval") {
		cfg.Poll.Interval = interval
		sources.MarkFlag("poll.interval")
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Poll.Timeout = timeout
		sources.MarkFlag("poll.timeout")
	}
}

// resolveBetType parses the --type flag, prompting when it is empty and a
// terminal is attached.
func resolveBetType(name string) (bet.Type, error) {
	if name != "" {
		return bet.ParseType(name)
	}
	if !isInteractive() {
		return 0, fmt.Errorf("--type is required in a non-interactive session")
	}
	return interactive.SelectBetType(newPrompter())
}

// buildBet assembles the bet from the run flags. GameID is filled in later
// when --game-id is not given.
func buildBet(cmd *cobra.Command, betType bet.Type, account starknet.Felt) (bet.Bet, error) {
	if runAmount == "" {
		return bet.Bet{}, fmt.Errorf("--amount is required")
	}
	amount, err := bet.ParseAmount(runAmount)
	if err != nil {
		return bet.Bet{}, err
	}

	b := bet.Bet{
		GameID: runGameID,
		User:   account,
		Type:   betType,
		Value:  runValue,
		Amount: amount,
	}
	if cmd.Flags().Changed("user") {
		if b.User, err = starknet.ParseFelt(runUser); err != nil {
			return bet.Bet{}, fmt.Errorf("invalid --user: %w", err)
		}
	}
	if runSplit != "" {
		values, err := parseValues(runSplit, 2)
		if err != nil {
			return bet.Bet{}, fmt.Errorf("invalid --split: %w", err)
		}
		b.SplitBet = true
		copy(b.SplitBetValue[:], values)
	}
	if runCorner != "" {
		values, err := parseValues(runCorner, 4)
		if err != nil {
			return bet.Bet{}, fmt.Errorf("invalid --corner: %w", err)
		}
		b.CornerBet = true
		copy(b.CornerBetValue[:], values)
	}
	return b, nil
}

// resolveSource returns nil for the default nonce source.
func resolveSource(salt string) (*bet.Source, error) {
	if salt == "" {
		return nil, nil
	}
	f, err := starknet.ParseFelt(salt)
	if err != nil {
		return nil, fmt.Errorf("invalid --salt: %w", err)
	}
	src := bet.SaltSource(f)
	return &src, nil
}

// parseValues parses exactly n comma-separated u64 values.
func parseValues(s string, n int) ([]uint64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("expected %d comma-separated values, got %d", n, len(parts))
	}
	out := make([]uint64, n)
	for i, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("value %q is not a non-negative integer", p)
		}
		out[i] = v
	}
	return out, nil
}
