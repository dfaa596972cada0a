// Package config loads, validates and persists stowr's per-store
// configuration. Config is read with viper (the teacher repo's config
// loader) layered over defaults, and saved back out with plain
// encoding/json to keep the on-disk file a simple, diffable object rather
// than whatever format viper would round-trip it through.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/xiaolin/stowr/internal/compression"
	"github.com/xiaolin/stowr/internal/index"
	"github.com/xiaolin/stowr/internal/storeerr"
)

// Config is the full set of knobs a store carries in its
// .stowr/config.json file, plus the ambient logging and concurrency
// settings stowr's own CLI and batch operations consult.
type Config struct {
	StoragePath             string        `json:"storage_path" mapstructure:"storage_path"`
	IndexMode               index.Backend `json:"index_mode" mapstructure:"index_mode"`
	Multithread             int           `json:"multithread" mapstructure:"multithread"`
	CompressionAlgorithm    string        `json:"compression_algorithm" mapstructure:"compression_algorithm"`
	CompressionLevel        int           `json:"compression_level" mapstructure:"compression_level"`
	EnableDeduplication     bool          `json:"enable_deduplication" mapstructure:"enable_deduplication"`
	EnableDeltaCompression  bool          `json:"enable_delta_compression" mapstructure:"enable_delta_compression"`
	SimilarityThreshold     float64       `json:"similarity_threshold" mapstructure:"similarity_threshold"`
	DeltaAlgorithm          string        `json:"delta_algorithm" mapstructure:"delta_algorithm"`
	LoggingLevel            string        `json:"logging_level" mapstructure:"logging_level"`
	Concurrency             int           `json:"concurrency" mapstructure:"concurrency"`
}

const (
	DeltaAlgoSimple = "simple"
	DeltaAlgoXDelta = "xdelta"
	DeltaAlgoBsDiff = "bsdiff"
)

// Default returns the configuration a brand-new store is initialized with.
func Default(storagePath string) *Config {
	return &Config{
		StoragePath:            storagePath,
		IndexMode:              index.BackendAuto,
		Multithread:            1,
		CompressionAlgorithm:   compression.AlgoGzip,
		CompressionLevel:       6,
		EnableDeduplication:    true,
		EnableDeltaCompression: false,
		SimilarityThreshold:    0.7,
		DeltaAlgorithm:         DeltaAlgoSimple,
		LoggingLevel:           "info",
		Concurrency:            1,
	}
}

// Path returns the canonical config file location under storagePath.
func Path(storagePath string) string {
	return filepath.Join(storagePath, ".stowr", "config.json")
}

// Load reads the config file under storagePath via viper, falling back to
// Default values for anything unset. A missing file is not an error: it
// simply yields the default configuration. A key in the file that is not
// part of Config is rejected with ErrInvalidInput.
func Load(storagePath string) (*Config, error) {
	cfg := Default(storagePath)

	v := viper.New()
	v.SetConfigFile(Path(storagePath))
	v.SetConfigType("json")
	setViperDefaults(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return cfg, nil
		}
		return nil, fmt.Errorf("%w: reading config: %v", storeerr.ErrIoError, err)
	}

	if err := v.UnmarshalExact(cfg); err != nil {
		return nil, fmt.Errorf("%w: decoding config: %v", storeerr.ErrInvalidInput, err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setViperDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("storage_path", cfg.StoragePath)
	v.SetDefault("index_mode", string(cfg.IndexMode))
	v.SetDefault("multithread", cfg.Multithread)
	v.SetDefault("compression_algorithm", cfg.CompressionAlgorithm)
	v.SetDefault("compression_level", cfg.CompressionLevel)
	v.SetDefault("enable_deduplication", cfg.EnableDeduplication)
	v.SetDefault("enable_delta_compression", cfg.EnableDeltaCompression)
	v.SetDefault("similarity_threshold", cfg.SimilarityThreshold)
	v.SetDefault("delta_algorithm", cfg.DeltaAlgorithm)
	v.SetDefault("logging_level", cfg.LoggingLevel)
	v.SetDefault("concurrency", cfg.Concurrency)
}

// Save writes cfg to its canonical location as pretty-printed JSON.
func Save(cfg *Config) error {
	if err := Validate(cfg); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encoding config: %v", storeerr.ErrInvalidInput, err)
	}
	dir := filepath.Dir(Path(cfg.StoragePath))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", storeerr.ErrIoError, err)
	}
	if err := os.WriteFile(Path(cfg.StoragePath), data, 0o644); err != nil {
		return fmt.Errorf("%w: writing config: %v", storeerr.ErrIoError, err)
	}
	return nil
}

// Validate checks invariants Load and Save both enforce: compression level
// legal for its algorithm, similarity threshold in range, known delta
// algorithm tag.
func Validate(cfg *Config) error {
	if err := compression.ValidateLevel(cfg.CompressionAlgorithm, cfg.CompressionLevel); err != nil {
		return err
	}
	if cfg.SimilarityThreshold < 0 || cfg.SimilarityThreshold > 1 {
		return fmt.Errorf("%w: similarity_threshold must be in [0,1], got %v", storeerr.ErrInvalidInput, cfg.SimilarityThreshold)
	}
	switch cfg.DeltaAlgorithm {
	case DeltaAlgoSimple, DeltaAlgoXDelta, DeltaAlgoBsDiff:
	default:
		return fmt.Errorf("%w: unknown delta_algorithm %q", storeerr.ErrInvalidInput, cfg.DeltaAlgorithm)
	}
	if cfg.Concurrency < 1 {
		return fmt.Errorf("%w: concurrency must be >= 1, got %d", storeerr.ErrInvalidInput, cfg.Concurrency)
	}
	return nil
}

// Set applies a single key=value change by name, the backing of the CLI's
// `config set` verb. Changing compression_algorithm resets
// compression_level to that algorithm's default, mirroring the behavior a
// user changing codecs expects: their old level rarely makes sense on the
// new one.
func (c *Config) Set(key, value string) error {
	switch key {
	case "storage_path":
		c.StoragePath = value
	case "index_mode":
		c.IndexMode = index.Backend(value)
	case "multithread":
		n, err := parseInt(value)
		if err != nil {
			return err
		}
		c.Multithread = n
	case "compression_algorithm":
		if _, err := compression.DefaultLevel(value); err != nil {
			return err
		}
		defLevel, _ := compression.DefaultLevel(value)
		c.CompressionAlgorithm = value
		c.CompressionLevel = defLevel
	case "compression_level":
		n, err := parseInt(value)
		if err != nil {
			return err
		}
		if err := compression.ValidateLevel(c.CompressionAlgorithm, n); err != nil {
			return err
		}
		c.CompressionLevel = n
	case "enable_deduplication":
		b, err := parseBool(value)
		if err != nil {
			return err
		}
		c.EnableDeduplication = b
	case "enable_delta_compression":
		b, err := parseBool(value)
		if err != nil {
			return err
		}
		c.EnableDeltaCompression = b
	case "similarity_threshold":
		f, err := parseFloat(value)
		if err != nil {
			return err
		}
		if f < 0 || f > 1 {
			return fmt.Errorf("%w: similarity_threshold must be in [0,1]", storeerr.ErrInvalidInput)
		}
		c.SimilarityThreshold = f
	case "delta_algorithm":
		c.DeltaAlgorithm = value
	case "logging_level":
		c.LoggingLevel = value
	case "concurrency":
		n, err := parseInt(value)
		if err != nil {
			return err
		}
		c.Concurrency = n
	default:
		return fmt.Errorf("%w: unknown config key %q", storeerr.ErrInvalidInput, key)
	}
	return Validate(c)
}

// List returns every config key/value as strings, in a stable order, for
// the CLI's `config list` verb.
func (c *Config) List() [][2]string {
	return [][2]string{
		{"storage_path", c.StoragePath},
		{"index_mode", string(c.IndexMode)},
		{"multithread", fmt.Sprint(c.Multithread)},
		{"compression_algorithm", c.CompressionAlgorithm},
		{"compression_level", fmt.Sprint(c.CompressionLevel)},
		{"enable_deduplication", fmt.Sprint(c.EnableDeduplication)},
		{"enable_delta_compression", fmt.Sprint(c.EnableDeltaCompression)},
		{"similarity_threshold", fmt.Sprint(c.SimilarityThreshold)},
		{"delta_algorithm", c.DeltaAlgorithm},
		{"logging_level", c.LoggingLevel},
		{"concurrency", fmt.Sprint(c.Concurrency)},
	}
}

func parseInt(s string) (int, error) {
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
		return 0, fmt.Errorf("%w: expected integer, got %q", storeerr.ErrInvalidInput, s)
	}
	return n, nil
}

func parseFloat(s string) (float64, error) {
	var f float64
	if _, err := fmt.Sscanf(s, "%g", &f); err != nil {
		return 0, fmt.Errorf("%w: expected float, got %q", storeerr.ErrInvalidInput, s)
	}
	return f, nil
}

func parseBool(s string) (bool, error) {
	switch s {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	default:
		return false, fmt.Errorf("%w: expected boolean, got %q", storeerr.ErrInvalidInput, s)
	}
}
