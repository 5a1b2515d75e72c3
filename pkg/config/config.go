// Package config loads the Configuration contract (spec.md §6) through
// Viper, mirroring the teacher's pkg/config/config.go: a
// mapstructure-tagged struct, package-level defaults, and sentinel
// validation errors returned from a Validate method.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/join"
)

// Sentinel validation errors.
var (
	ErrInvalidT       = errors.New("config: t must be representable as a non-negative u32")
	ErrUnknownMethod  = errors.New("config: unknown method")
	ErrUnknownVariant = errors.New("config: unknown variant")
	ErrNegativeValue  = errors.New("config: value must be non-negative")
)

// Default configuration values.
const (
	defaultMethod  = "ours"
	defaultVariant = "sampling"
	defaultSeed    = 0
	defaultEnumCap = 0
	defaultBudget  = 0
	defaultWSmall  = 0

	envPrefix = "RECTJOIN"
)

// Config is the Viper-facing configuration document. Load converts it
// into a join.Config the runner contract accepts.
type Config struct {
	Method   string            `mapstructure:"method"`
	Variant  string            `mapstructure:"variant"`
	T        uint32            `mapstructure:"t"`
	Seed     uint64            `mapstructure:"seed"`
	EnumCap  uint64            `mapstructure:"enum_cap"`
	Budget   uint64            `mapstructure:"budget"`
	WSmall   uint64            `mapstructure:"w_small"`
	Extra    map[string]string `mapstructure:"extra"`
	Dataset  string            `mapstructure:"dataset"`
	Metrics  MetricsConfig     `mapstructure:"metrics"`
	LogLevel string            `mapstructure:"log_level"`
	LogJSON  bool              `mapstructure:"log_json"`
}

// MetricsConfig holds the metrics settings. The "run" subcommand reads
// Enabled to turn on the Prometheus meter; Addr is loaded but no
// subcommand reads it (serve takes its address from its own --addr flag).
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// Load reads configuration from configPath (if non-empty), then
// environment variables prefixed RECTJOIN_ (taking precedence over the
// file), then the defaults set below. It does not bind CLI flags
// itself — cmd/rectjoin does that on the returned *viper.Viper before
// calling Load, per Viper's normal precedence chain.
func Load(v *viper.Viper, configPath string) (*Config, error) {
	if v == nil {
		v = viper.New()
	}

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("rectjoin")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read config file: %w", err)
		}
	}

	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("method", defaultMethod)
	v.SetDefault("variant", defaultVariant)
	v.SetDefault("seed", defaultSeed)
	v.SetDefault("enum_cap", defaultEnumCap)
	v.SetDefault("budget", defaultBudget)
	v.SetDefault("w_small", defaultWSmall)
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.addr", ":9090")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)
}

// Validate checks the ConfigMismatch conditions join.Config.Validate
// also checks, plus the string-to-enum decoding this layer owns.
func (c *Config) Validate() error {
	switch join.Method(c.Method) {
	case join.MethodOurs, join.MethodRangeTree, join.MethodKDTree:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMethod, c.Method)
	}

	switch join.Variant(c.Variant) {
	case join.VariantSampling, join.VariantEnumSampling, join.VariantAdaptive:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownVariant, c.Variant)
	}

	return nil
}

// JoinConfig converts the loaded document into the join.Config the
// Runner contract consumes.
func (c *Config) JoinConfig() join.Config {
	return join.Config{
		Method:  join.Method(c.Method),
		Variant: join.Variant(c.Variant),
		T:       c.T,
		Seed:    c.Seed,
		EnumCap: c.EnumCap,
		Budget:  c.Budget,
		WSmall:  c.WSmall,
		Extra:   c.Extra,
	}
}
