package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	EnvPrefix = "STUDYFOCUS"
	FileName  = "studyfocus.yaml"
)

// Config holds every setting the binary reads at startup.
type Config struct {
	DataDir  string         `mapstructure:"data_dir" yaml:"data_dir" validate:"required"`
	Storage  StorageConfig  `mapstructure:"storage" yaml:"storage"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	Timer    TimerConfig    `mapstructure:"timer" yaml:"timer"`
	Focus    FocusConfig    `mapstructure:"focus" yaml:"focus"`
	Review   ReviewConfig   `mapstructure:"review" yaml:"review"`
	Finalize FinalizeConfig `mapstructure:"finalize" yaml:"finalize"`
	Metrics  MetricsConfig  `mapstructure:"metrics" yaml:"metrics"`
}

type StorageConfig struct {
	Driver string `mapstructure:"driver" yaml:"driver" validate:"required,oneof=sqlite postgres"`
	DSN    string `mapstructure:"dsn" yaml:"dsn"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"required,oneof=text json"`
}

// TimerConfig carries the defaults used when a session is started without explicit settings.
// Out-of-range values are clamped by the timer, not rejected here.
type TimerConfig struct {
	WorkMinutes       int           `mapstructure:"work_minutes" yaml:"work_minutes"`
	ShortBreakMinutes int           `mapstructure:"short_break_minutes" yaml:"short_break_minutes"`
	LongBreakMinutes  int           `mapstructure:"long_break_minutes" yaml:"long_break_minutes"`
	Cycles            int           `mapstructure:"cycles" yaml:"cycles"`
	LongBreakInterval int           `mapstructure:"long_break_interval" yaml:"long_break_interval"`
	AutoLoop          bool          `mapstructure:"auto_loop" yaml:"auto_loop"`
	TickInterval      time.Duration `mapstructure:"tick_interval" yaml:"tick_interval" validate:"gt=0"`
}

type FocusConfig struct {
	Enabled     bool     `mapstructure:"enabled" yaml:"enabled"`
	StrictMode  bool     `mapstructure:"strict_mode" yaml:"strict_mode"`
	SelfPackage string   `mapstructure:"self_package" yaml:"self_package" validate:"required"`
	Allowed     []string `mapstructure:"allowed" yaml:"allowed"`
}

type ReviewConfig struct {
	Enabled         bool  `mapstructure:"enabled" yaml:"enabled"`
	Premium         bool  `mapstructure:"premium" yaml:"premium"`
	Offsets         []int `mapstructure:"offsets" yaml:"offsets" validate:"required,min=1,dive,gt=0"`
	FreeOffsetCount int   `mapstructure:"free_offset_count" yaml:"free_offset_count" validate:"gte=0"`
}

type FinalizeConfig struct {
	QueueSize int `mapstructure:"queue_size" yaml:"queue_size" validate:"gt=0"`
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// Default returns the configuration used when no file or environment override is present.
func Default(dataDir string) Config {
	return Config{
		DataDir: dataDir,
		Storage: StorageConfig{Driver: "sqlite", DSN: filepath.Join(dataDir, "studyfocus.db")},
		Log:     LogConfig{Level: "info", Format: "text"},
		Timer: TimerConfig{
			WorkMinutes:       25,
			ShortBreakMinutes: 5,
			LongBreakMinutes:  15,
			Cycles:            4,
			LongBreakInterval: 4,
			TickInterval:      time.Second,
		},
		Focus: FocusConfig{
			Enabled:     true,
			SelfPackage: "app.studyfocus",
			Allowed:     []string{},
		},
		Review: ReviewConfig{
			Enabled:         true,
			Offsets:         []int{1, 3, 7, 14, 30, 60},
			FreeOffsetCount: 2,
		},
		Finalize: FinalizeConfig{QueueSize: 64},
	}
}

// Load reads <dataDir>/studyfocus.yaml (or configFile when given), then environment variables
// prefixed STUDYFOCUS_, then validates the result. A missing default file is not an error.
func Load(dataDir, configFile string) (Config, error) {
	if dataDir == "" {
		return Config{}, fmt.Errorf("data dir is required")
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v, Default(dataDir))
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := configFile != ""
	if !explicit {
		configFile = filepath.Join(dataDir, FileName)
	}
	v.SetConfigFile(configFile)
	if err := v.ReadInConfig(); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	cfg := Config{}
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Storage.DSN == "" && cfg.Storage.Driver == "sqlite" {
		cfg.Storage.DSN = filepath.Join(cfg.DataDir, "studyfocus.db")
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if cfg.Storage.DSN == "" {
		return fmt.Errorf("invalid config: storage.dsn is required for driver %s", cfg.Storage.Driver)
	}
	return nil
}

// WriteFile writes cfg as YAML. Existing files are left untouched unless overwrite is set.
func WriteFile(path string, cfg Config, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file %s already exists", path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	payload, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("data_dir", cfg.DataDir)
	v.SetDefault("storage.driver", cfg.Storage.Driver)
	v.SetDefault("storage.dsn", "")
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("timer.work_minutes", cfg.Timer.WorkMinutes)
	v.SetDefault("timer.short_break_minutes", cfg.Timer.ShortBreakMinutes)
	v.SetDefault("timer.long_break_minutes", cfg.Timer.LongBreakMinutes)
	v.SetDefault("timer.cycles", cfg.Timer.Cycles)
	v.SetDefault("timer.long_break_interval", cfg.Timer.LongBreakInterval)
	v.SetDefault("timer.auto_loop", cfg.Timer.AutoLoop)
	v.SetDefault("timer.tick_interval", cfg.Timer.TickInterval)
	v.SetDefault("focus.enabled", cfg.Focus.Enabled)
	v.SetDefault("focus.strict_mode", cfg.Focus.StrictMode)
	v.SetDefault("focus.self_package", cfg.Focus.SelfPackage)
	v.SetDefault("focus.allowed", cfg.Focus.Allowed)
	v.SetDefault("review.enabled", cfg.Review.Enabled)
	v.SetDefault("review.premium", cfg.Review.Premium)
	v.SetDefault("review.offsets", cfg.Review.Offsets)
	v.SetDefault("review.free_offset_count", cfg.Review.FreeOffsetCount)
	v.SetDefault("finalize.queue_size", cfg.Finalize.QueueSize)
	v.SetDefault("metrics.addr", cfg.Metrics.Addr)
}
