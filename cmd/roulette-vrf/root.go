package main

import (
	"fmt"
	"io"

	"cosmossdk.io/log"
	"github.com/spf13/cobra"

	"github.com/altuslabsxyz/roulette-vrf/internal/config"
	"github.com/altuslabsxyz/roulette-vrf/internal/output"
	"github.com/altuslabsxyz/roulette-vrf/internal/version"
)

const appName = "roulette-vrf"

// Global flag variables
var (
	flagConfigPath string
	flagDataDir    string
	flagRPCURL     string
	flagLogLevel   string
	flagLogFormat  string
	flagOutput     string
	flagNoColor    bool
	flagVerbose    bool
)

// Command group IDs for organized help output.
const (
	GroupMain    = "main"
	GroupUtility = "utility"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   appName,
		Short: "Submit VRF-backed roulette bets on Starknet",
		Long: `roulette-vrf submits one Starknet multicall that requests a verifiable random
value from the VRF provider and plays a roulette game with it, then waits
until the ledger accepts or rejects the transaction.

Examples:
  # Bet on red with the account from config.toml
  roulette-vrf run --type red-black --value 0 --amount 10000000000000

  # Wait for a transaction submitted earlier
  roulette-vrf wait 0x6c9f...

  # Show the effective configuration and where each value came from
  roulette-vrf config show`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := output.ParseFormat(flagOutput)
			return err
		},
	}

	cmd.PersistentFlags().StringVar(&flagConfigPath, "config", "",
		"Path to config.toml file (default: ~/.roulette-vrf/config.toml)")
	cmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "",
		"Base directory for roulette-vrf files (default: ~/.roulette-vrf)")
	cmd.PersistentFlags().StringVar(&flagRPCURL, "rpc-url", "",
		"Starknet JSON-RPC endpoint")
	cmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "",
		"Log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "",
		"Log format: text, json")
	cmd.PersistentFlags().StringVarP(&flagOutput, "output", "o", "text",
		"Result format: text, json, yaml")
	cmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false,
		"Disable colored output")
	cmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false,
		"Enable verbose output")

	cmd.AddGroup(&cobra.Group{ID: GroupMain, Title: "Main Commands:"})
	cmd.AddGroup(&cobra.Group{ID: GroupUtility, Title: "Utility Commands:"})

	runCmd := newRunCmd()
	runCmd.GroupID = GroupMain
	waitCmd := newWaitCmd()
	waitCmd.GroupID = GroupMain
	currentGameCmd := newCurrentGameCmd()
	currentGameCmd.GroupID = GroupMain

	configCmd := newConfigCmd()
	configCmd.GroupID = GroupUtility
	versionCmd := version.NewCmd(appName)
	versionCmd.GroupID = GroupUtility

	cmd.AddCommand(runCmd, waitCmd, currentGameCmd, configCmd, versionCmd)
	return cmd
}

// loadConfig loads defaults < file < env and applies the global flags.
// Command-specific overrides are applied by the caller before validation.
func loadConfig(cmd *cobra.Command) (*config.Config, config.Sources, error) {
	loader := config.NewLoader(flagDataDir, flagConfigPath)
	cfg, sources, err := loader.LoadWithSources()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyGlobalOverrides(cmd, cfg, sources)
	return cfg, sources, nil
}

// applyGlobalOverrides applies persistent CLI flags to config (highest priority).
func applyGlobalOverrides(cmd *cobra.Command, cfg *config.Config, sources config.Sources) {
	if cmd.Flags().Changed("rpc-url") {
		cfg.RPC.Endpoint = flagRPCURL
		sources.MarkFlag("rpc.endpoint")
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = flagLogLevel
		sources.MarkFlag("log.level")
	}
	if cmd.Flags().Changed("log-format") {
		cfg.Log.Format = flagLogFormat
		sources.MarkFlag("log.format")
	}
}

// newLogger builds the structured engine logger. Verbose forces debug level.
func newLogger(w io.Writer, cfg *config.Config) (log.Logger, error) {
	level := cfg.Log.Level
	if flagVerbose {
		level = "debug"
	}
	return output.NewStructuredLogger(w, level, cfg.Log.Format, flagNoColor)
}

// newPrinter returns the operator-facing printer on the command's writers.
// Text messages are suppressed when a structured result format is selected.
func newPrinter(cmd *cobra.Command) *output.Logger {
	p := output.NewLoggerWithWriters(cmd.OutOrStdout(), cmd.ErrOrStderr())
	p.SetNoColor(flagNoColor || !output.IsTerminal(cmd.OutOrStdout()))
	p.SetVerbose(flagVerbose)
	p.SetJSONMode(outputFormat() != output.FormatText)
	return p
}

func outputFormat() output.Format {
	format, err := output.ParseFormat(flagOutput)
	if err != nil {
		return output.FormatText
	}
	return format
}
