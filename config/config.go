package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	configFileEnvName = "STOREFRONT_CONFIG_FILE"
	dotEnvFile        = ".env"
	envPrefix         = "STOREFRONT"

	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

var ErrInvalidConfig = errors.New("invalid config")

type API struct {
	BaseURL string        `mapstructure:"base_url"`
	APIPath string        `mapstructure:"api_path"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type Cache struct {
	Backend   string        `mapstructure:"backend"`
	TTL       time.Duration `mapstructure:"ttl"`
	RedisAddr string        `mapstructure:"redis_addr"`
}

type TLS struct {
	CA   string `mapstructure:"ca"`
	Cert string `mapstructure:"cert"`
	Key  string `mapstructure:"key"`
}

type Activity struct {
	Enabled            bool     `mapstructure:"enabled"`
	SeedBrokers        []string `mapstructure:"seed_brokers"`
	SchemaRegistryURLs []string `mapstructure:"schema_registry_urls"`
	Topic              string   `mapstructure:"topic"`
	SessionID          string   `mapstructure:"session_id"`
	TLS                TLS      `mapstructure:"tls"`
}

type MockServer struct {
	Addr    string        `mapstructure:"addr"`
	Timeout time.Duration `mapstructure:"timeout"`
	// RateLimit is requests per second; zero disables limiting.
	RateLimit float64 `mapstructure:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst"`
}

type Config struct {
	LogLevel   slog.Level `mapstructure:"log_level"`
	API        API        `mapstructure:"api"`
	Cache      Cache      `mapstructure:"cache"`
	Activity   Activity   `mapstructure:"activity"`
	MockServer MockServer `mapstructure:"mock_server"`
}

// Load reads the file named by STOREFRONT_CONFIG_FILE or --config and
// exits the process on failure. Variables from ./.env are applied first
// without overriding the environment.
func Load() Config {
	if err := LoadDotEnv(dotEnvFile); err != nil {
		die(err)
	}

	cfg, err := LoadFile(getConfigFilepath(os.Args[1:]))
	if err != nil {
		die(err)
	}
	return cfg
}

// LoadFile reads the YAML file at path over the defaults; an empty path
// uses defaults and environment only. STOREFRONT_* variables override
// file values, e.g. STOREFRONT_API_BASE_URL.
func LoadFile(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	err := v.UnmarshalExact(&cfg, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(),
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadDotEnv sets variables from the dotenv file at path; a missing file
// is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")

	v.SetDefault("api.base_url", "http://localhost:8080")
	v.SetDefault("api.api_path", "storefront")
	v.SetDefault("api.timeout", 0)

	v.SetDefault("cache.backend", CacheBackendMemory)
	v.SetDefault("cache.ttl", 0)
	v.SetDefault("cache.redis_addr", "localhost:6379")

	v.SetDefault("activity.enabled", false)
	v.SetDefault("activity.seed_brokers", []string{"localhost:9092"})
	v.SetDefault("activity.schema_registry_urls", []string{"http://localhost:8081"})
	v.SetDefault("activity.topic", "storefront-cart-activity")
	v.SetDefault("activity.session_id", "")
	v.SetDefault("activity.tls.ca", "")
	v.SetDefault("activity.tls.cert", "")
	v.SetDefault("activity.tls.key", "")

	v.SetDefault("mock_server.addr", ":8080")
	v.SetDefault("mock_server.timeout", 5*time.Second)
	v.SetDefault("mock_server.rate_limit", 0)
	v.SetDefault("mock_server.rate_burst", 10)
}

func (c Config) validate() error {
	switch c.Cache.Backend {
	case CacheBackendMemory, CacheBackendRedis:
	default:
		return fmt.Errorf(
			"%w: unknown cache backend %q", ErrInvalidConfig, c.Cache.Backend,
		)
	}

	if c.Activity.Enabled {
		if len(c.Activity.SeedBrokers) == 0 {
			return fmt.Errorf("%w: activity.seed_brokers is empty", ErrInvalidConfig)
		}
		if c.Activity.Topic == "" {
			return fmt.Errorf("%w: activity.topic is empty", ErrInvalidConfig)
		}
	}
	return nil
}

func getConfigFilepath(args []string) string {
	cmdLine := pflag.NewFlagSet("config", pflag.ContinueOnError)
	cmdLine.ParseErrorsWhitelist.UnknownFlags = true
	cmdLine.Usage = func() {}
	arg := cmdLine.String("config", "", "config file")
	_ = cmdLine.Parse(args)
	env, ok := os.LookupEnv(configFileEnvName)
	if ok {
		return env
	}
	return *arg
}

func die(err error) {
	fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
	os.Exit(2)
}

func (c Config) Print() {
	tamplate := `
	General:
	LogLevel=%q

	API:
	BaseURL=%q
	APIPath=%q
	Timeout=%q

	Cache:
	Backend=%q
	TTL=%q
	RedisAddr=%q

	Activity:
	Enabled=%t
	SeedBrokers=%q
	SchemaRegistryURLs=%q
	Topic=%q

	MockServer:
	Addr=%q
	RateLimit=%v

`
	fmt.Fprintln(os.Stderr, "Loaded config:")
	fmt.Fprintf(
		os.Stderr,
		strings.TrimLeft(tamplate, "\n"),
		c.LogLevel,
		c.API.BaseURL,
		c.API.APIPath,
		c.API.Timeout,
		c.Cache.Backend,
		c.Cache.TTL,
		c.Cache.RedisAddr,
		c.Activity.Enabled,
		c.Activity.SeedBrokers,
		c.Activity.SchemaRegistryURLs,
		c.Activity.Topic,
		c.MockServer.Addr,
		c.MockServer.RateLimit,
	)
}
