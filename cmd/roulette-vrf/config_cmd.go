package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/altuslabsxyz/roulette-vrf/internal/config"
	"github.com/altuslabsxyz/roulette-vrf/internal/output"
)

var (
	configInitForce         bool
	configInitAccount       string
	configInitSignerCommand string
	configInitRoulette      string
)

type configShowView struct {
	ConfigFile string         `json:"config_file" yaml:"config_file"`
	Entries    []config.Entry `json:"entries" yaml:"entries"`
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the configuration file",
	}
	cmd.AddCommand(newConfigShowCmd(), newConfigInitCmd())
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display current effective configuration",
		Long: `Display the current effective configuration with sources.

Shows all configuration values and where they came from:
  - default: Built-in default value
  - config.toml: Value from config file
  - environment: Value from environment variable
  - flag: Value from command-line flag`,
		Args: cobra.NoArgs,
		RunE: runConfigShow,
	}
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, sources, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	path := config.NewLoader(flagDataDir, flagConfigPath).Path()
	entries := config.Entries(cfg, sources)

	if format := outputFormat(); format != output.FormatText {
		return output.RenderValue(cmd.OutOrStdout(), format, configShowView{ConfigFile: path, Entries: entries})
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tVALUE\tSOURCE")
	fmt.Fprintln(tw, "---\t-----\t------")
	for _, e := range entries {
		value := e.Value
		if value == "" {
			value = "(unset)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Key, value, e.Source)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\nConfig file: %s\n", path)

	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "\n%v\n", err)
	}
	return nil
}

func newConfigInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write config.toml from the current effective configuration",
		Long: `Write config.toml from defaults, environment variables and the given flags.

Examples:
  roulette-vrf config init --rpc-url https://starknet-sepolia.public.blastapi.io/rpc/v0_8 \
    --account 0x123... --roulette 0x456... --signer-command "starkli-signer --keystore key.json"`,
		Args: cobra.NoArgs,
		RunE: runConfigInit,
	}

	cmd.Flags().BoolVar(&configInitForce, "force", false,
		"Overwrite an existing config file")
	cmd.Flags().StringVar(&configInitAccount, "account", "",
		"Account address")
	cmd.Flags().StringVar(&configInitSignerCommand, "signer-command", "",
		"Command that signs transactions")
	cmd.Flags().StringVar(&configInitRoulette, "roulette", "",
		"Roulette contract address")

	return cmd
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	printer := newPrinter(cmd)

	cfg, sources, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("account") {
		cfg.Account.Address = configInitAccount
		sources.MarkFlag("account.address")
	}
	if cmd.Flags().Changed("signer-command") {
		cfg.Account.SignerCommand = configInitSignerCommand
		sources.MarkFlag("account.signer_command")
	}
	if cmd.Flags().Changed("roulette") {
		cfg.Contracts.Roulette = configInitRoulette
		sources.MarkFlag("contracts.roulette")
	}

	path, err := config.NewLoader(flagDataDir, flagConfigPath).Write(cfg, configInitForce)
	if err != nil {
		return err
	}
	printer.Success("Wrote %s", path)
	if err := config.Validate(cfg); err != nil {
		printer.Warn("The configuration is not complete yet:\n%v", err)
	}
	return nil
}
