// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"

	"github.com/rovshanmuradov/genesis-launchpad/internal/utils/logger"
)

// EnvPrefix namespaces environment overrides, e.g. GENESIS_API_LISTEN.
const EnvPrefix = "GENESIS"

type Config struct {
	Log     logger.Config `mapstructure:"log"`
	API     APIConfig     `mapstructure:"api"`
	Keeper  KeeperConfig  `mapstructure:"keeper"`
	Events  EventsConfig  `mapstructure:"events"`
	Storage StorageConfig `mapstructure:"storage"`
	Faucet  FaucetConfig  `mapstructure:"faucet"`
}

type APIConfig struct {
	Listen string `mapstructure:"listen"`
	Mode   string `mapstructure:"mode"`
}

type KeeperConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	PriceSchedule   string        `mapstructure:"price_schedule"`
	RateSchedule    string        `mapstructure:"rate_schedule"`
	MaxRetries      uint          `mapstructure:"max_retries"`
	OracleAuthority string        `mapstructure:"oracle_authority"`
	Pools           []ManagedPool `mapstructure:"pools"`
	Affiliates      []string      `mapstructure:"affiliates"`
}

// ManagedPool is a pool whose oracle price the keeper refreshes. Price is
// the reference price of A in B with 1e9 precision.
type ManagedPool struct {
	MintA string `mapstructure:"mint_a"`
	MintB string `mapstructure:"mint_b"`
	Price uint64 `mapstructure:"price"`
}

type EventsConfig struct {
	BufferSize int         `mapstructure:"buffer_size"`
	Kafka      KafkaConfig `mapstructure:"kafka"`
	AMQP       AMQPConfig  `mapstructure:"amqp"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

func (k KafkaConfig) Enabled() bool { return len(k.Brokers) > 0 }

type AMQPConfig struct {
	URL   string `mapstructure:"url"`
	Queue string `mapstructure:"queue"`
}

func (a AMQPConfig) Enabled() bool { return a.URL != "" }

type StorageConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn"`
}

type FaucetConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	MaxLamports uint64 `mapstructure:"max_lamports"`
}

const (
	DefaultListen        = ":8080"
	DefaultPriceSchedule = "@every 1m"
	DefaultRateSchedule  = "@daily"
	DefaultMaxRetries    = 5
	DefaultBufferSize    = 1000
	DefaultFaucetLimit   = 100_000_000_000
)

// Load reads .env (if present), then the config file at path (optional),
// then GENESIS_* environment overrides.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	loadListOverrides(v, &cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	log := logger.DefaultConfig()
	defaults := map[string]interface{}{
		"log.level":               log.Level,
		"log.file":                log.File,
		"log.max_size":            log.MaxSize,
		"log.max_age":             log.MaxAge,
		"log.max_backups":         log.MaxBackups,
		"log.compress":            log.Compress,
		"log.development":         false,
		"api.listen":              DefaultListen,
		"api.mode":                "release",
		"keeper.enabled":          false,
		"keeper.price_schedule":   DefaultPriceSchedule,
		"keeper.rate_schedule":    DefaultRateSchedule,
		"keeper.max_retries":      DefaultMaxRetries,
		"keeper.oracle_authority": "",
		"events.buffer_size":      DefaultBufferSize,
		"events.kafka.topic":      "genesis.events",
		"events.amqp.url":         "",
		"events.amqp.queue":       "genesis.events",
		"storage.enabled":         false,
		"storage.dsn":             "",
		"faucet.enabled":          false,
		"faucet.max_lamports":     DefaultFaucetLimit,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}

// Comma separated lists are not split by viper's env lookup.
func loadListOverrides(v *viper.Viper, cfg *Config) {
	if raw := v.GetString("events.kafka.brokers"); raw != "" {
		cfg.Events.Kafka.Brokers = splitList(raw)
	}
	if raw := v.GetString("keeper.affiliates"); raw != "" {
		cfg.Keeper.Affiliates = splitList(raw)
	}
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if clean := strings.TrimSpace(item); clean != "" {
			out = append(out, clean)
		}
	}
	return out
}

func (c *Config) Validate() error {
	if c.API.Listen == "" {
		return errors.New("api.listen is empty")
	}
	switch c.API.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("api.mode %q: want debug, release or test", c.API.Mode)
	}
	if err := c.Keeper.validate(); err != nil {
		return err
	}
	if err := c.Events.validate(); err != nil {
		return err
	}
	if c.Storage.Enabled && c.Storage.DSN == "" {
		return errors.New("storage.dsn is required when storage is enabled")
	}
	if c.Faucet.Enabled && c.Faucet.MaxLamports == 0 {
		return errors.New("faucet.max_lamports must be positive")
	}
	return nil
}

func (k *KeeperConfig) validate() error {
	for name, spec := range map[string]string{"price_schedule": k.PriceSchedule, "rate_schedule": k.RateSchedule} {
		if _, err := cron.ParseStandard(spec); err != nil {
			return fmt.Errorf("keeper.%s %q: %w", name, spec, err)
		}
	}
	if len(k.Pools) > 0 {
		if _, err := solana.PublicKeyFromBase58(k.OracleAuthority); err != nil {
			return fmt.Errorf("keeper.oracle_authority: %w", err)
		}
	}
	for i, p := range k.Pools {
		if _, err := solana.PublicKeyFromBase58(p.MintA); err != nil {
			return fmt.Errorf("keeper.pools[%d].mint_a: %w", i, err)
		}
		if _, err := solana.PublicKeyFromBase58(p.MintB); err != nil {
			return fmt.Errorf("keeper.pools[%d].mint_b: %w", i, err)
		}
		if p.Price == 0 {
			return fmt.Errorf("keeper.pools[%d].price must be positive", i)
		}
	}
	for i, a := range k.Affiliates {
		if _, err := solana.PublicKeyFromBase58(a); err != nil {
			return fmt.Errorf("keeper.affiliates[%d]: %w", i, err)
		}
	}
	return nil
}

func (e *EventsConfig) validate() error {
	if e.BufferSize < 0 {
		return errors.New("events.buffer_size must not be negative")
	}
	if e.Kafka.Enabled() && e.Kafka.Topic == "" {
		return errors.New("events.kafka.topic is required with brokers")
	}
	if e.AMQP.Enabled() {
		parsed, err := url.Parse(e.AMQP.URL)
		if err != nil || !strings.HasPrefix(parsed.Scheme, "amqp") {
			return errors.New("events.amqp.url must use amqp or amqps")
		}
		if e.AMQP.Queue == "" {
			return errors.New("events.amqp.queue is required with url")
		}
	}
	return nil
}
