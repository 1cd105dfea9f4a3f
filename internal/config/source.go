// internal/config/source.go
package config

import "strconv"

// ConfigSource represents the origin of a configuration value.
type ConfigSource string

const (
	SourceDefault     ConfigSource = "default"
	SourceConfigFile  ConfigSource = "config.toml"
	SourceEnvironment ConfigSource = "environment"
	SourceFlag        ConfigSource = "flag"
)

// String returns the string representation of the ConfigSource.
func (s ConfigSource) String() string {
	return string(s)
}

// sourceKey ties a config key to its file field, environment variable and
// effective value.
type sourceKey struct {
	key    string
	inFile func(*FileConfig) bool
	env    string
	value  func(*Config) string
}

var sourceKeys = []sourceKey{
	{"rpc.endpoint", func(f *FileConfig) bool { return f.RPC.Endpoint != nil }, EnvRPCEndpoint,
		func(c *Config) string { return c.RPC.Endpoint }},
	{"rpc.request_timeout", func(f *FileConfig) bool { return f.RPC.RequestTimeout != nil }, EnvRequestTimeout,
		func(c *Config) string { return c.RPC.RequestTimeout.String() }},
	{"account.address", func(f *FileConfig) bool { return f.Account.Address != nil }, EnvAccountAddress,
		func(c *Config) string { return c.Account.Address }},
	{"account.signer_command", func(f *FileConfig) bool { return f.Account.SignerCommand != nil }, EnvSignerCommand,
		func(c *Config) string { return c.Account.SignerCommand }},
	{"account.signer_timeout", func(f *FileConfig) bool { return f.Account.SignerTimeout != nil }, EnvSignerTimeout,
		func(c *Config) string { return c.Account.SignerTimeout.String() }},
	{"contracts.vrf_provider", func(f *FileConfig) bool { return f.Contracts.VRFProvider != nil }, EnvVRFProvider,
		func(c *Config) string { return c.Contracts.VRFProvider }},
	{"contracts.roulette", func(f *FileConfig) bool { return f.Contracts.Roulette != nil }, EnvRoulette,
		func(c *Config) string { return c.Contracts.Roulette }},
	{"poll.interval", func(f *FileConfig) bool { return f.Poll.Interval != nil }, EnvPollInterval,
		func(c *Config) string { return c.Poll.Interval.String() }},
	{"poll.timeout", func(f *FileConfig) bool { return f.Poll.Timeout != nil }, EnvTimeout,
		func(c *Config) string { return c.Poll.Timeout.String() }},
	{"poll.backoff_multiplier", func(f *FileConfig) bool { return f.Poll.BackoffMultiplier != nil }, EnvBackoffMultiplier,
		func(c *Config) string { return strconv.FormatFloat(c.Poll.BackoffMultiplier, 'g', -1, 64) }},
	{"poll.backoff_max", func(f *FileConfig) bool { return f.Poll.BackoffMax != nil }, EnvBackoffMax,
		func(c *Config) string { return c.Poll.BackoffMax.String() }},
	{"fee.mode", func(f *FileConfig) bool { return f.Fee.Mode != nil }, EnvFeeMode,
		func(c *Config) string { return c.Fee.Mode }},
	{"fee.amount_overhead", func(f *FileConfig) bool { return f.Fee.AmountOverhead != nil }, "",
		func(c *Config) string { return c.Fee.AmountOverhead }},
	{"fee.price_overhead", func(f *FileConfig) bool { return f.Fee.PriceOverhead != nil }, "",
		func(c *Config) string { return c.Fee.PriceOverhead }},
	{"log.level", func(f *FileConfig) bool { return f.Log.Level != nil }, EnvLogLevel,
		func(c *Config) string { return c.Log.Level }},
	{"log.format", func(f *FileConfig) bool { return f.Log.Format != nil }, EnvLogFormat,
		func(c *Config) string { return c.Log.Format }},
}

// Entry is one effective configuration value.
type Entry struct {
	Key    string       `json:"key" yaml:"key"`
	Value  string       `json:"value" yaml:"value"`
	Source ConfigSource `json:"source" yaml:"source"`
}

// Entries lists every effective value of cfg with its origin.
func Entries(cfg *Config, sources Sources) []Entry {
	out := make([]Entry, len(sourceKeys))
	for i, k := range sourceKeys {
		src, ok := sources[k.key]
		if !ok {
			src = SourceDefault
		}
		out[i] = Entry{Key: k.key, Value: k.value(cfg), Source: src}
	}
	return out
}

// Sources records where each effective config value came from.
type Sources map[string]ConfigSource

// MarkFlag records that key was overridden by a CLI flag.
func (s Sources) MarkFlag(key string) {
	s[key] = SourceFlag
}

// Keys returns the config keys in display order.
func Keys() []string {
	keys := make([]string, len(sourceKeys))
	for i, k := range sourceKeys {
		keys[i] = k.key
	}
	return keys
}

// sources derives value origins from the last loaded file and environment.
func (l *Loader) sources() Sources {
	out := make(Sources, len(sourceKeys))
	for _, k := range sourceKeys {
		src := SourceDefault
		if l.file != nil && k.inFile(l.file) {
			src = SourceConfigFile
		}
		if k.env != "" && l.getenv(k.env) != "" {
			src = SourceEnvironment
		}
		out[k.key] = src
	}
	return out
}
