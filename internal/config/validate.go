// internal/config/validate.go
package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/altuslabsxyz/roulette-vrf/internal/starknet"
)

// ValidLogLevels are the allowed log level values.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// ValidLogFormats are the allowed log format values.
var ValidLogFormats = []string{"text", "json"}

// Validate validates the configuration and returns an error listing every
// problem found.
func Validate(cfg *Config) error {
	var errs []string

	// RPC
	if cfg.RPC.Endpoint == "" {
		errs = append(errs, fmt.Sprintf("rpc.endpoint is required (set it in the config file, %s or --rpc-url)", EnvRPCEndpoint))
	} else if u, err := url.Parse(cfg.RPC.Endpoint); err != nil || u.Host == "" {
		errs = append(errs, fmt.Sprintf("rpc.endpoint %q is not a valid URL", cfg.RPC.Endpoint))
	} else if !contains([]string{"http", "https", "ws", "wss"}, u.Scheme) {
		errs = append(errs, fmt.Sprintf("rpc.endpoint scheme %q is not supported (must be http, https, ws or wss)", u.Scheme))
	}
	if cfg.RPC.RequestTimeout <= 0 {
		errs = append(errs, "rpc.request_timeout must be positive")
	}

	// Account
	if _, err := cfg.AccountAddress(); err != nil {
		errs = append(errs, err.Error())
	}
	if cfg.Account.SignerTimeout <= 0 {
		errs = append(errs, "account.signer_timeout must be positive")
	}

	// Contracts
	if _, err := parseAddress("contracts.vrf_provider", cfg.Contracts.VRFProvider); err != nil {
		errs = append(errs, err.Error())
	}
	if _, err := parseAddress("contracts.roulette", cfg.Contracts.Roulette); err != nil {
		errs = append(errs, err.Error())
	}

	// Poll
	if cfg.Poll.Interval <= 0 {
		errs = append(errs, "poll.interval must be positive")
	}
	if cfg.Poll.Timeout <= 0 {
		errs = append(errs, "poll.timeout must be positive")
	}
	if cfg.Poll.Interval > 0 && cfg.Poll.Timeout > 0 && cfg.Poll.Interval > cfg.Poll.Timeout {
		errs = append(errs, "poll.interval must not exceed poll.timeout")
	}
	if cfg.Poll.BackoffMultiplier < 1 {
		errs = append(errs, "poll.backoff_multiplier must be at least 1")
	}
	if cfg.Poll.BackoffMultiplier > 1 && cfg.Poll.BackoffMax < cfg.Poll.Interval {
		errs = append(errs, "poll.backoff_max must be at least poll.interval")
	}

	// Fee
	if _, err := starknet.ParseDAMode(cfg.Fee.Mode); err != nil {
		errs = append(errs, "fee.mode: "+err.Error())
	}
	if _, err := parseOverhead("fee.amount_overhead", cfg.Fee.AmountOverhead); err != nil {
		errs = append(errs, err.Error())
	}
	if _, err := parseOverhead("fee.price_overhead", cfg.Fee.PriceOverhead); err != nil {
		errs = append(errs, err.Error())
	}

	// Log
	if !contains(ValidLogLevels, cfg.Log.Level) {
		errs = append(errs, fmt.Sprintf("invalid log.level %q (must be one of: %s)",
			cfg.Log.Level, strings.Join(ValidLogLevels, ", ")))
	}
	if !contains(ValidLogFormats, cfg.Log.Format) {
		errs = append(errs, fmt.Sprintf("invalid log.format %q (must be one of: %s)",
			cfg.Log.Format, strings.Join(ValidLogFormats, ", ")))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// ValidateForWait checks only what confirming an existing transaction needs.
func ValidateForWait(cfg *Config) error {
	var errs []string
	if cfg.RPC.Endpoint == "" {
		errs = append(errs, "rpc.endpoint is required")
	}
	if cfg.Poll.Interval <= 0 {
		errs = append(errs, "poll.interval must be positive")
	}
	if cfg.Poll.Timeout <= 0 {
		errs = append(errs, "poll.timeout must be positive")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
