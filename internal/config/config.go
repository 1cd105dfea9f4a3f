// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cosmossdk.io/math"

	"github.com/altuslabsxyz/roulette-vrf/internal/starknet"
	"github.com/altuslabsxyz/roulette-vrf/internal/txflow"
)

// DefaultVRFProvider is the Cartridge VRF provider on Starknet Sepolia.
const DefaultVRFProvider = "0x051fea4450da9d6aee758bdeba88b2f665bcbf549d2c61421aa724e9ac0ced8f"

// Config is the single source of truth for roulette-vrf configuration.
// Priority: defaults < config file < environment variables < CLI flags
type Config struct {
	RPC       RPCConfig       `toml:"rpc"`
	Account   AccountConfig   `toml:"account"`
	Contracts ContractsConfig `toml:"contracts"`
	Poll      PollConfig      `toml:"poll"`
	Fee       FeeConfig       `toml:"fee"`
	Log       LogConfig       `toml:"log"`
}

// RPCConfig holds node connection settings.
type RPCConfig struct {
	Endpoint       string        `toml:"endpoint"`
	RequestTimeout time.Duration `toml:"request_timeout"`
}

// AccountConfig holds the operator account settings.
type AccountConfig struct {
	Address       string        `toml:"address"`
	SignerCommand string        `toml:"signer_command"` // program that signs transactions, see internal/signer
	SignerTimeout time.Duration `toml:"signer_timeout"`
}

// ContractsConfig holds contract addresses.
type ContractsConfig struct {
	VRFProvider string `toml:"vrf_provider"`
	Roulette    string `toml:"roulette"`
}

// PollConfig holds confirmation polling settings.
type PollConfig struct {
	Interval          time.Duration `toml:"interval"`
	Timeout           time.Duration `toml:"timeout"`
	BackoffMultiplier float64       `toml:"backoff_multiplier"` // 1 = fixed interval
	BackoffMax        time.Duration `toml:"backoff_max"`
}

// FeeConfig holds fee estimation settings. Overheads are decimal strings.
type FeeConfig struct {
	Mode           string `toml:"mode"`
	AmountOverhead string `toml:"amount_overhead"`
	PriceOverhead  string `toml:"price_overhead"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// DefaultDataDir returns the default data directory path.
func DefaultDataDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".roulette-vrf")
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		RPC: RPCConfig{
			Endpoint:       "",
			RequestTimeout: starknet.DefaultRequestTimeout,
		},
		Account: AccountConfig{
			SignerTimeout: 30 * time.Second,
		},
		Contracts: ContractsConfig{
			VRFProvider: DefaultVRFProvider,
		},
		Poll: PollConfig{
			Interval:          txflow.DefaultPollInterval,
			Timeout:           txflow.DefaultTimeout,
			BackoffMultiplier: 1,
			BackoffMax:        30 * time.Second,
		},
		Fee: FeeConfig{
			Mode:           string(starknet.DAModeL1),
			AmountOverhead: "1.5",
			PriceOverhead:  "1.5",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// AccountAddress parses the operator account address.
func (c *Config) AccountAddress() (starknet.Felt, error) {
	return parseAddress("account.address", c.Account.Address)
}

// Timing returns the confirmation timing.
func (c *Config) Timing() txflow.Timing {
	return txflow.Timing{PollInterval: c.Poll.Interval, Timeout: c.Poll.Timeout}
}

// EngineConfig converts the validated configuration into engine settings.
func (c *Config) EngineConfig() (txflow.EngineConfig, error) {
	vrf, err := parseAddress("contracts.vrf_provider", c.Contracts.VRFProvider)
	if err != nil {
		return txflow.EngineConfig{}, err
	}
	roulette, err := parseAddress("contracts.roulette", c.Contracts.Roulette)
	if err != nil {
		return txflow.EngineConfig{}, err
	}
	mode, err := starknet.ParseDAMode(c.Fee.Mode)
	if err != nil {
		return txflow.EngineConfig{}, err
	}
	amount, err := parseOverhead("fee.amount_overhead", c.Fee.AmountOverhead)
	if err != nil {
		return txflow.EngineConfig{}, err
	}
	price, err := parseOverhead("fee.price_overhead", c.Fee.PriceOverhead)
	if err != nil {
		return txflow.EngineConfig{}, err
	}

	return txflow.EngineConfig{
		Contracts: txflow.Contracts{VRFProvider: vrf, Roulette: roulette},
		FeeMode:   mode,
		Overhead:  txflow.Overhead{Amount: amount, Price: price},
		Backoff:   c.Backoff(),
	}, nil
}

// Backoff returns the transient-error spacing, or nil for a fixed interval.
func (c *Config) Backoff() *txflow.BackoffConfig {
	if c.Poll.BackoffMultiplier <= 1 {
		return nil
	}
	return &txflow.BackoffConfig{
		Multiplier:  c.Poll.BackoffMultiplier,
		MaxInterval: c.Poll.BackoffMax,
	}
}

func parseAddress(field, value string) (starknet.Felt, error) {
	if value == "" {
		return starknet.Felt{}, fmt.Errorf("%s is required", field)
	}
	f, err := starknet.ParseFelt(value)
	if err != nil {
		return starknet.Felt{}, fmt.Errorf("%s: %w", field, err)
	}
	if f.IsZero() {
		return starknet.Felt{}, fmt.Errorf("%s must not be zero", field)
	}
	return f, nil
}

func parseOverhead(field, value string) (math.LegacyDec, error) {
	d, err := math.LegacyNewDecFromStr(value)
	if err != nil {
		return math.LegacyDec{}, fmt.Errorf("%s: invalid decimal %q", field, value)
	}
	if d.LT(math.LegacyOneDec()) {
		return math.LegacyDec{}, fmt.Errorf("%s must be at least 1, got %s", field, value)
	}
	return d, nil
}
