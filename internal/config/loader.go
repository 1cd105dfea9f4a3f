// internal/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// ConfigFileName is the default config file name.
const ConfigFileName = "config.toml"

// Environment variable names
const (
	EnvRPCEndpoint       = "ROULETTE_VRF_RPC_URL"
	EnvRequestTimeout    = "ROULETTE_VRF_REQUEST_TIMEOUT"
	EnvAccountAddress    = "ROULETTE_VRF_ACCOUNT_ADDRESS"
	EnvSignerCommand     = "ROULETTE_VRF_SIGNER_COMMAND"
	EnvSignerTimeout     = "ROULETTE_VRF_SIGNER_TIMEOUT"
	EnvVRFProvider       = "ROULETTE_VRF_PROVIDER_ADDRESS"
	EnvRoulette          = "ROULETTE_VRF_ROULETTE_ADDRESS"
	EnvPollInterval      = "ROULETTE_VRF_POLL_INTERVAL"
	EnvTimeout           = "ROULETTE_VRF_TIMEOUT"
	EnvBackoffMultiplier = "ROULETTE_VRF_BACKOFF_MULTIPLIER"
	EnvBackoffMax        = "ROULETTE_VRF_BACKOFF_MAX"
	EnvFeeMode           = "ROULETTE_VRF_FEE_MODE"
	EnvLogLevel          = "ROULETTE_VRF_LOG_LEVEL"
	EnvLogFormat         = "ROULETTE_VRF_LOG_FORMAT"
)

// Loader loads configuration from file, environment, and applies defaults.
type Loader struct {
	dataDir    string
	configPath string // explicit config path (empty = use default)
	getenv     func(string) string
	file       *FileConfig
}

// NewLoader creates a new config loader.
// dataDir is the base data directory (for finding config.toml).
// configPath is an explicit config file path (empty = use dataDir/config.toml).
func NewLoader(dataDir, configPath string) *Loader {
	if dataDir == "" {
		dataDir = DefaultDataDir()
	}
	return &Loader{
		dataDir:    dataDir,
		configPath: configPath,
		getenv:     os.Getenv,
	}
}

// Path returns the config file path the loader reads.
func (l *Loader) Path() string {
	if l.configPath != "" {
		return l.configPath
	}
	return filepath.Join(l.dataDir, ConfigFileName)
}

// Load loads configuration with priority: defaults < file < env.
// Returns fully populated Config ready for flag overrides and Validate.
func (l *Loader) Load() (*Config, error) {
	cfg, _, err := l.LoadWithSources()
	return cfg, err
}

// LoadWithSources is Load that also reports where each value came from.
func (l *Loader) LoadWithSources() (*Config, Sources, error) {
	cfg := DefaultConfig()

	fileCfg, err := l.loadFile()
	if err != nil {
		return nil, nil, err
	}
	l.file = fileCfg
	if fileCfg != nil {
		if err := mergeFileConfig(cfg, fileCfg); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", l.Path(), err)
		}
	}

	if err := l.applyEnvVars(cfg); err != nil {
		return nil, nil, err
	}
	return cfg, l.sources(), nil
}

// loadFile loads and parses the config file.
// Returns nil if no config file exists (not an error) unless the path was
// given explicitly.
func (l *Loader) loadFile() (*FileConfig, error) {
	configPath := l.Path()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) && l.configPath == "" {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fileCfg FileConfig
	if err := toml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("invalid TOML in %s: %w", configPath, err)
	}
	return &fileCfg, nil
}

// Write stores cfg at the loader's path, refusing to overwrite unless force.
func (l *Loader) Write(cfg *Config, force bool) (string, error) {
	path := l.Path()
	if !force {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
		}
	}
	data, err := toml.Marshal(ToFileConfig(cfg))
	if err != nil {
		return "", fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return path, nil
}

func parseDuration(field, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q", field, value)
	}
	return d, nil
}

// mergeFileConfig merges non-nil FileConfig values into Config.
func mergeFileConfig(cfg *Config, file *FileConfig) error {
	var err error

	// RPC
	if file.RPC.Endpoint != nil {
		cfg.RPC.Endpoint = *file.RPC.Endpoint
	}
	if file.RPC.RequestTimeout != nil {
		if cfg.RPC.RequestTimeout, err = parseDuration("rpc.request_timeout", *file.RPC.RequestTimeout); err != nil {
			return err
		}
	}

	// Account
	if file.Account.Address != nil {
		cfg.Account.Address = *file.Account.Address
	}
	if file.Account.SignerCommand != nil {
		cfg.Account.SignerCommand = *file.Account.SignerCommand
	}
	if file.Account.SignerTimeout != nil {
		if cfg.Account.SignerTimeout, err = parseDuration("account.signer_timeout", *file.Account.SignerTimeout); err != nil {
			return err
		}
	}

	// Contracts
	if file.Contracts.VRFProvider != nil {
		cfg.Contracts.VRFProvider = *file.Contracts.VRFProvider
	}
	if file.Contracts.Roulette != nil {
		cfg.Contracts.Roulette = *file.Contracts.Roulette
	}

	// Poll
	if file.Poll.Interval != nil {
		if cfg.Poll.Interval, err = parseDuration("poll.interval", *file.Poll.Interval); err != nil {
			return err
		}
	}
	if file.Poll.Timeout != nil {
		if cfg.Poll.Timeout, err = parseDuration("poll.timeout", *file.Poll.Timeout); err != nil {
			return err
		}
	}
	if file.Poll.BackoffMultiplier != nil {
		cfg.Poll.BackoffMultiplier = *file.Poll.BackoffMultiplier
	}
	if file.Poll.BackoffMax != nil {
		if cfg.Poll.BackoffMax, err = parseDuration("poll.backoff_max", *file.Poll.BackoffMax); err != nil {
			return err
		}
	}

	// Fee
	if file.Fee.Mode != nil {
		cfg.Fee.Mode = *file.Fee.Mode
	}
	if file.Fee.AmountOverhead != nil {
		cfg.Fee.AmountOverhead = *file.Fee.AmountOverhead
	}
	if file.Fee.PriceOverhead != nil {
		cfg.Fee.PriceOverhead = *file.Fee.PriceOverhead
	}

	// Log
	if file.Log.Level != nil {
		cfg.Log.Level = *file.Log.Level
	}
	if file.Log.Format != nil {
		cfg.Log.Format = *file.Log.Format
	}
	return nil
}

// applyEnvVars applies environment variable overrides to config.
func (l *Loader) applyEnvVars(cfg *Config) error {
	var err error

	if v := l.getenv(EnvRPCEndpoint); v != "" {
		cfg.RPC.Endpoint = v
	}
	if v := l.getenv(EnvRequestTimeout); v != "" {
		if cfg.RPC.RequestTimeout, err = parseDuration(EnvRequestTimeout, v); err != nil {
			return err
		}
	}
	if v := l.getenv(EnvAccountAddress); v != "" {
		cfg.Account.Address = v
	}
	if v := l.getenv(EnvSignerCommand); v != "" {
		cfg.Account.SignerCommand = v
	}
	if v := l.getenv(EnvSignerTimeout); v != "" {
		if cfg.Account.SignerTimeout, err = parseDuration(EnvSignerTimeout, v); err != nil {
			return err
		}
	}
	if v := l.getenv(EnvVRFProvider); v != "" {
		cfg.Contracts.VRFProvider = v
	}
	if v := l.getenv(EnvRoulette); v != "" {
		cfg.Contracts.Roulette = v
	}
	if v := l.getenv(EnvPollInterval); v != "" {
		if cfg.Poll.Interval, err = parseDuration(EnvPollInterval, v); err != nil {
			return err
		}
	}
	if v := l.getenv(EnvTimeout); v != "" {
		if cfg.Poll.Timeout, err = parseDuration(EnvTimeout, v); err != nil {
			return err
		}
	}
	if v := l.getenv(EnvBackoffMultiplier); v != "" {
		f, perr := strconv.ParseFloat(v, 64)
		if perr != nil {
			return fmt.Errorf("%s: invalid number %q", EnvBackoffMultiplier, v)
		}
		cfg.Poll.BackoffMultiplier = f
	}
	if v := l.getenv(EnvBackoffMax); v != "" {
		if cfg.Poll.BackoffMax, err = parseDuration(EnvBackoffMax, v); err != nil {
			return err
		}
	}
	if v := l.getenv(EnvFeeMode); v != "" {
		cfg.Fee.Mode = v
	}
	if v := l.getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := l.getenv(EnvLogFormat); v != "" {
		cfg.Log.Format = v
	}
	return nil
}
