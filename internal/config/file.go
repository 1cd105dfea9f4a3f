// internal/config/file.go
package config

// FileConfig represents the raw config.toml file contents.
// All fields are pointers to distinguish "not set" from "set to zero/false".
type FileConfig struct {
	RPC       FileRPCConfig       `toml:"rpc"`
	Account   FileAccountConfig   `toml:"account"`
	Contracts FileContractsConfig `toml:"contracts"`
	Poll      FilePollConfig      `toml:"poll"`
	Fee       FileFeeConfig       `toml:"fee"`
	Log       FileLogConfig       `toml:"log"`
}

// FileRPCConfig is the TOML representation of RPCConfig.
// Durations are strings since TOML cannot decode directly to time.Duration.
type FileRPCConfig struct {
	Endpoint       *string `toml:"endpoint,omitempty"`
	RequestTimeout *string `toml:"request_timeout,omitempty"`
}

// FileAccountConfig is the TOML representation of AccountConfig.
type FileAccountConfig struct {
	Address       *string `toml:"address,omitempty"`
	SignerCommand *string `toml:"signer_command,omitempty"`
	SignerTimeout *string `toml:"signer_timeout,omitempty"`
}

// FileContractsConfig is the TOML representation of ContractsConfig.
type FileContractsConfig struct {
	VRFProvider *string `toml:"vrf_provider,omitempty"`
	Roulette    *string `toml:"roulette,omitempty"`
}

// FilePollConfig is the TOML representation of PollConfig.
type FilePollConfig struct {
	Interval          *string  `toml:"interval,omitempty"`
	Timeout           *string  `toml:"timeout,omitempty"`
	BackoffMultiplier *float64 `toml:"backoff_multiplier,omitempty"`
	BackoffMax        *string  `toml:"backoff_max,omitempty"`
}

// FileFeeConfig is the TOML representation of FeeConfig.
type FileFeeConfig struct {
	Mode           *string `toml:"mode,omitempty"`
	AmountOverhead *string `toml:"amount_overhead,omitempty"`
	PriceOverhead  *string `toml:"price_overhead,omitempty"`
}

// FileLogConfig is the TOML representation of LogConfig.
type FileLogConfig struct {
	Level  *string `toml:"level,omitempty"`
	Format *string `toml:"format,omitempty"`
}

// IsEmpty returns true if no configuration values are set.
func (f *FileConfig) IsEmpty() bool {
	return f.RPC.Endpoint == nil &&
		f.RPC.RequestTimeout == nil &&
		f.Account.Address == nil &&
		f.Account.SignerCommand == nil &&
		f.Account.SignerTimeout == nil &&
		f.Contracts.VRFProvider == nil &&
		f.Contracts.Roulette == nil &&
		f.Poll.Interval == nil &&
		f.Poll.Timeout == nil &&
		f.Poll.BackoffMultiplier == nil &&
		f.Poll.BackoffMax == nil &&
		f.Fee.Mode == nil &&
		f.Fee.AmountOverhead == nil &&
		f.Fee.PriceOverhead == nil &&
		f.Log.Level == nil &&
		f.Log.Format == nil
}

// ToFileConfig renders cfg in file form, every field set.
func ToFileConfig(cfg *Config) *FileConfig {
	str := func(s string) *string { return &s }
	dur := func(d interface{ String() string }) *string { return str(d.String()) }
	mult := cfg.Poll.BackoffMultiplier

	return &FileConfig{
		RPC: FileRPCConfig{
			Endpoint:       str(cfg.RPC.Endpoint),
			RequestTimeout: dur(cfg.RPC.RequestTimeout),
		},
		Account: FileAccountConfig{
			Address:       str(cfg.Account.Address),
			SignerCommand: str(cfg.Account.SignerCommand),
			SignerTimeout: dur(cfg.Account.SignerTimeout),
		},
		Contracts: FileContractsConfig{
			VRFProvider: str(cfg.Contracts.VRFProvider),
			Roulette:    str(cfg.Contracts.Roulette),
		},
		Poll: FilePollConfig{
			Interval:          dur(cfg.Poll.Interval),
			Timeout:           dur(cfg.Poll.Timeout),
			BackoffMultiplier: &mult,
			BackoffMax:        dur(cfg.Poll.BackoffMax),
		},
		Fee: FileFeeConfig{
			Mode:           str(cfg.Fee.Mode),
			AmountOverhead: str(cfg.Fee.AmountOverhead),
			PriceOverhead:  str(cfg.Fee.PriceOverhead),
		},
		Log: FileLogConfig{
			Level:  str(cfg.Log.Level),
			Format: str(cfg.Log.Format),
		},
	}
}
