package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Version is set at build time with -ldflags "-X github.com/edgeflare/pgrest/pkg/config.Version=..."
var Version = "dev"

// Config holds application-wide configuration
type Config struct {
	Client    ClientConfig    `mapstructure:"client"`
	Transport TransportConfig `mapstructure:"transport"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	LogLevel  string          `mapstructure:"logLevel"`
}

type ClientConfig struct {
	URL     string            `mapstructure:"url"`
	Schema  string            `mapstructure:"schema"`
	Token   string            `mapstructure:"token"`
	Headers map[string]string `mapstructure:"headers"`
}

type TransportConfig struct {
	Timeout        time.Duration `mapstructure:"timeout"`
	RetryEnabled   bool          `mapstructure:"retryEnabled"`
	MaxRetries     int           `mapstructure:"maxRetries"`
	InitialBackoff time.Duration `mapstructure:"initialBackoff"`
	MaxBackoff     time.Duration `mapstructure:"maxBackoff"`
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr"` // empty disables the metrics server
	Path string `mapstructure:"path"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("client.url", "http://localhost:3000")
	v.SetDefault("client.schema", "")
	v.SetDefault("client.token", "")
	v.SetDefault("transport.timeout", 5*time.Second)
	v.SetDefault("transport.retryEnabled", true)
	v.SetDefault("transport.maxRetries", 3)
	v.SetDefault("transport.initialBackoff", 100*time.Millisecond)
	v.SetDefault("transport.maxBackoff", 10*time.Second)
	v.SetDefault("metrics.addr", "")
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("logLevel", "info")
}

// Load reads config from file or environment. Environment variables use the
// PGREST_ prefix with dots replaced by underscores, e.g. PGREST_CLIENT_URL.
func Load(cfgFile string) (*Config, error) {
	return LoadWith(viper.New(), cfgFile)
}

// LoadWith reads config into v, which may already carry bound flags.
func LoadWith(v *viper.Viper, cfgFile string) (*Config, error) {
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("pgrest")
		v.SetConfigType("yaml")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config"))
		}
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("PGREST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return &cfg, nil
}
