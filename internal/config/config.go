package config

import (
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const envPrefix = "MOONKV"

// Config represents the root configuration structure for the application
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	GC      GCConfig      `mapstructure:"gc"`
	Log     LogConfig     `mapstructure:"log"`
}

// ServerConfig holds the network settings
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"` // how long open connections may drain on exit
}

// StorageConfig defines the internal structure of the storage engine
type StorageConfig struct {
	Shards  uint `mapstructure:"shards"`  // power of two, at most 64
	Buckets uint `mapstructure:"buckets"` // scan buckets per shard, power of two
}

// LogConfig defines logging verbosity and output style
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
}

// Load reads the configuration from a file and overrides it with environment variables
func Load(path string) (*Config, error) {
	viper.Reset()
	setDefaults()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(path)
	viper.AddConfigPath(".")

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, errors.Wrap(err, "read config")
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.TextUnmarshallerHookFunc(),
	))); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects settings the engine cannot run with
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("server.port is empty")
	}
	if c.GC.Enabled {
		if c.GC.Interval <= 0 {
			return errors.Errorf("gc.interval must be positive, got %s", c.GC.Interval)
		}
		if c.GC.SamplesPerCheck <= 0 {
			return errors.Errorf("gc.samples_per_check must be positive, got %d", c.GC.SamplesPerCheck)
		}
		if c.GC.MatchThreshold < 0 || c.GC.MatchThreshold > 1 {
			return errors.Errorf("gc.match_threshold must be within [0, 1], got %v", c.GC.MatchThreshold)
		}
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return errors.Errorf("log.format must be json or console, got %q", c.Log.Format)
	}
	return nil
}

// WatchLogLevel re-reads log.level whenever the config file changes and applies it to level.
// Nothing happens if no config file was found
func WatchLogLevel(level zap.AtomicLevel, log *zap.Logger) {
	if viper.ConfigFileUsed() == "" {
		return
	}

	viper.OnConfigChange(func(e fsnotify.Event) {
		next := viper.GetString("log.level")
		if err := level.UnmarshalText([]byte(next)); err != nil {
			log.Warn("ignoring invalid log level", zap.String("file", e.Name), zap.String("level", next))
			return
		}
		log.Info("log level reloaded", zap.String("file", e.Name), zap.Stringer("level", level.Level()))
	})
	viper.WatchConfig()
}

// setDefaults populates viper with fallback values if they are not provided via file or ENV
func setDefaults() {
	// Server
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", "6380")
	viper.SetDefault("server.shutdown_timeout", "5s")

	// Storage
	viper.SetDefault("storage.shards", 32)
	viper.SetDefault("storage.buckets", 256)

	// GC
	gc := DefaultGCConfig()
	viper.SetDefault("gc.enabled", gc.Enabled)
	viper.SetDefault("gc.interval", gc.Interval.String())
	viper.SetDefault("gc.samples_per_check", gc.SamplesPerCheck)
	viper.SetDefault("gc.match_threshold", gc.MatchThreshold)
	viper.SetDefault("gc.max_rounds", gc.MaxRounds)

	// Logger
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "json")
}
