// Package config loads lcsall settings.
//
// Precedence, lowest first: built-in defaults, the YAML file, LCSALL_*
// environment variables (optionally seeded from a .env file), then
// command-line flags applied by the caller.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/lcsall/batch"
	"github.com/katalvlaran/lcsall/internal/logging"
	"github.com/katalvlaran/lcsall/server"
	"github.com/katalvlaran/lcsall/worker"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "LCSALL_"

// Config is the full process configuration.
type Config struct {
	// Limits are the default ceilings of bounded enumeration.
	Limits worker.Limits  `yaml:"limits"`
	Batch  BatchConfig    `yaml:"batch"`
	Worker WorkerConfig   `yaml:"worker"`
	Server server.Config  `yaml:"server"`
	Log    logging.Config `yaml:"log"`
}

// BatchConfig configures the batch format.
type BatchConfig struct {
	Limits      batch.Limits `yaml:"limits"`
	Parallelism int          `yaml:"parallelism"`
	RejectEmpty bool         `yaml:"reject_empty"`
}

// WorkerConfig configures the request worker.
type WorkerConfig struct {
	CacheSize     int `yaml:"cache_size"`
	MaxConcurrent int `yaml:"max_concurrent"`
	Buffer        int `yaml:"buffer"`
}

// Default returns the built-in configuration.
func Default() Config {
	wc := worker.DefaultConfig()

	return Config{
		Limits: worker.DefaultLimits(),
		Batch: BatchConfig{
			Limits:      batch.DefaultLimits(),
			Parallelism: 1,
		},
		Worker: WorkerConfig{
			CacheSize:     wc.CacheSize,
			MaxConcurrent: wc.MaxConcurrent,
			Buffer:        wc.Buffer,
		},
		Server: server.DefaultConfig(),
		Log:    logging.Config{Level: "info"},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and the environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// LoadDotEnv seeds the environment from the given files, or ./.env when
// none are given. Missing files are ignored; variables already set win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("config: load %s: %w", f, err)
		}
	}

	return nil
}

// applyEnv overrides cfg from LCSALL_* variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	ints := []struct {
		name string
		dst  *int
	}{
		{"MAX_RESULTS", &c.Limits.MaxResults},
		{"TIMEOUT_MS", &c.Limits.TimeoutMS},
		{"MAX_STATES", &c.Limits.MaxStates},
		{"MAX_FRONTIER", &c.Limits.MaxFrontier},
		{"PROGRESS_EVERY", &c.Limits.ProgressEvery},
		{"BATCH_MAX_DATASETS", &c.Batch.Limits.MaxDatasets},
		{"BATCH_MAX_LENGTH", &c.Batch.Limits.MaxLength},
		{"BATCH_PARALLELISM", &c.Batch.Parallelism},
		{"CACHE_SIZE", &c.Worker.CacheSize},
		{"MAX_CONCURRENT", &c.Worker.MaxConcurrent},
	}
	for _, e := range ints {
		v, ok := lookup(EnvPrefix + e.name)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: %s%s: %w", EnvPrefix, e.name, err)
		}
		*e.dst = n
	}

	bools := []struct {
		name string
		dst  *bool
	}{
		{"BATCH_REJECT_EMPTY", &c.Batch.RejectEmpty},
		{"LOG_JSON", &c.Log.JSON},
	}
	for _, e := range bools {
		v, ok := lookup(EnvPrefix + e.name)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: %s%s: %w", EnvPrefix, e.name, err)
		}
		*e.dst = b
	}

	if v, ok := lookup(EnvPrefix + "BATCH_SYMBOLS"); ok {
		c.Batch.Limits.Symbols = v
	}
	if v, ok := lookup(EnvPrefix + "ADDR"); ok && v != "" {
		c.Server.Addr = v
	}
	if v, ok := lookup(EnvPrefix + "SHUTDOWN_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: %sSHUTDOWN_TIMEOUT: %w", EnvPrefix, err)
		}
		c.Server.ShutdownTimeout = d
	}
	if v, ok := lookup(EnvPrefix + "LOG_LEVEL"); ok && v != "" {
		c.Log.Level = v
	}

	return nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	l := c.Limits
	switch {
	case l.MaxResults < 0, l.TimeoutMS < 0, l.MaxStates < 0, l.MaxFrontier < 0, l.ProgressEvery < 0:
		return fmt.Errorf("config: limits must not be negative (%+v)", l)
	case c.Batch.Limits.MaxDatasets < 1, c.Batch.Limits.MaxLength < 1:
		return fmt.Errorf("config: batch limits must be positive (%+v)", c.Batch.Limits)
	case c.Batch.Parallelism < 1:
		return fmt.Errorf("config: batch.parallelism must be >= 1 (%d)", c.Batch.Parallelism)
	case c.Worker.CacheSize < 1, c.Worker.MaxConcurrent < 1, c.Worker.Buffer < 0:
		return fmt.Errorf("config: invalid worker settings (%+v)", c.Worker)
	case c.Server.ShutdownTimeout < 0, c.Server.MaxBatchBytes < 1:
		return fmt.Errorf("config: invalid server settings (%+v)", c.Server)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	return nil
}

// BatchOptions returns the batch options c describes. bounded switches the
// batch to bounded enumeration under c.Limits.
func (c Config) BatchOptions(bounded bool) []batch.Option {
	opts := []batch.Option{
		batch.WithLimits(c.Batch.Limits),
		batch.WithParallelism(c.Batch.Parallelism),
	}
	if c.Batch.RejectEmpty {
		opts = append(opts, batch.WithRejectEmpty())
	}
	if bounded {
		opts = append(opts, batch.WithBounded(c.Limits.Options()...))
	}

	return opts
}

// WorkerConfig returns the worker configuration c describes.
func (c Config) WorkerConfig(logger *slog.Logger) worker.Config {
	return worker.Config{
		CacheSize:     c.Worker.CacheSize,
		MaxConcurrent: c.Worker.MaxConcurrent,
		Buffer:        c.Worker.Buffer,
		Limits:        c.Limits,
		Logger:        logger,
	}
}
