// Package config layers vibefeat settings from defaults, a YAML config file,
// VIBEFEAT_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/cwbudde/algo-vibration/feature"
)

// EnvPrefix prefixes every environment variable, e.g. VIBEFEAT_WORKERS or
// VIBEFEAT_FEATURES_NUM_CEP.
const EnvPrefix = "VIBEFEAT"

// DefaultWindowSize is the number of rows per labeled sample.
const DefaultWindowSize = 1024

// Config is the application configuration.
type Config struct {
	LogLevel   string         `mapstructure:"log_level"`
	LogFormat  string         `mapstructure:"log_format"`
	Workers    int            `mapstructure:"workers"`
	WindowSize int            `mapstructure:"window_size"`
	Cache      CacheConfig    `mapstructure:"cache"`
	Features   feature.Config `mapstructure:"features"`
}

// CacheConfig controls the persistent feature cache.
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Dir     string        `mapstructure:"dir"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// New returns a viper instance with defaults and environment binding.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// SetDefaults registers the default of every key.
func SetDefaults(v *viper.Viper) {
	f := feature.DefaultConfig()

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("workers", 0)
	v.SetDefault("window_size", DefaultWindowSize)

	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.dir", defaultCacheDir())
	v.SetDefault("cache.ttl", time.Duration(0))

	v.SetDefault("features.sample_rate", f.SampleRate)
	v.SetDefault("features.frame_length", f.FrameLength)
	v.SetDefault("features.frame_step", f.FrameStep)
	v.SetDefault("features.num_cep", f.NumCep)
	v.SetDefault("features.num_filters", f.NumFilters)
	v.SetDefault("features.nfft", f.NFFT)
	v.SetDefault("features.low_freq", f.LowFreq)
	v.SetDefault("features.high_freq", f.HighFreq)
	v.SetDefault("features.pre_emphasis", f.PreEmphasis)
	v.SetDefault("features.lifter", f.Lifter)
	v.SetDefault("features.append_energy", f.AppendEnergy)
	v.SetDefault("features.single_precision", f.SinglePrecision)
}

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "vibefeat")
	}
	return filepath.Join(dir, "vibefeat")
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"log-level":        "log_level",
	"log-format":       "log_format",
	"workers":          "workers",
	"window-size":      "window_size",
	"cache":            "cache.enabled",
	"cache-dir":        "cache.dir",
	"cache-ttl":        "cache.ttl",
	"sample-rate":      "features.sample_rate",
	"frame-length":     "features.frame_length",
	"frame-step":       "features.frame_step",
	"num-cep":          "features.num_cep",
	"num-filters":      "features.num_filters",
	"nfft":             "features.nfft",
	"low-freq":         "features.low_freq",
	"high-freq":        "features.high_freq",
	"pre-emphasis":     "features.pre_emphasis",
	"lifter":           "features.lifter",
	"append-energy":    "features.append_energy",
	"single-precision": "features.single_precision",
}

// BindFlags binds every known flag present in fs to its config key. Flags
// override the config file and environment only when set explicitly.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	var errs []error
	fs.VisitAll(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok {
			return
		}
		if err := v.BindPFlag(key, f); err != nil {
			errs = append(errs, fmt.Errorf("bind --%s: %w", f.Name, err))
		}
	})
	return errors.Join(errs...)
}

// Load reads the config file, if any, and decodes the layered settings. An
// empty file searches ./vibefeat.yaml, $HOME/.config/vibefeat/vibefeat.yaml
// and /etc/vibefeat/vibefeat.yaml; a missing searched file is not an error.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("vibefeat")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "vibefeat"))
		}
		v.AddConfigPath("/etc/vibefeat")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the application settings and the feature configuration.
func (c *Config) Validate() error {
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: log_level: %w", err)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("config: log_format must be text or json, got %q", c.LogFormat)
	}
	if c.Workers < 0 {
		return fmt.Errorf("config: workers must be >= 0, got %d", c.Workers)
	}
	if c.WindowSize <= 0 {
		return fmt.Errorf("config: window_size must be > 0, got %d", c.WindowSize)
	}
	if c.Cache.Enabled && c.Cache.Dir == "" {
		return errors.New("config: cache.dir is required when the cache is enabled")
	}
	if err := c.Features.Validate(); err != nil {
		return fmt.Errorf("config: features: %w", err)
	}
	return nil
}

// NewLogger returns a logger writing to w with the configured level and
// format.
func (c *Config) NewLogger(w io.Writer) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}

	log := logrus.New()
	log.SetOutput(w)
	log.SetLevel(level)
	if c.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}
	return log, nil
}
