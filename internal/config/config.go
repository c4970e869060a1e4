package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"cascadeforecast/internal/label"
)

// Config is the application's configuration model.
// It captures the dataset, prefix lengths, labeling, storage and the external classifier.
type Config struct {
	Dataset    DatasetConfig    `yaml:"dataset"`
	Prefix     PrefixConfig     `yaml:"prefix"`
	Label      LabelConfig      `yaml:"label"`
	Pipeline   PipelineConfig   `yaml:"pipeline"`
	Storage    StorageConfig    `yaml:"storage"`
	Redis      RedisConfig      `yaml:"redis"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

type DatasetConfig struct {
	// Tab-separated cascade file, one cascade per line
	InputPath string `yaml:"inputPath"`
}

type PrefixConfig struct {
	// Prefix lengths to generate samples for
	Ks []int `yaml:"ks"`
}

type LabelConfig struct {
	// "declared" (record's retweet count) or "observed" (deduplicated events)
	SizeSource string `yaml:"sizeSource"`
}

type PipelineConfig struct {
	// Worker goroutines; 0 means GOMAXPROCS
	Workers int `yaml:"workers"`
	// Minimum gap between progress log lines
	ProgressInterval time.Duration `yaml:"progressInterval"`
}

type StorageConfig struct {
	DBPath string `yaml:"dbPath"`
}

type RedisConfig struct {
	// Empty disables publishing. If empty, read from env CASCADE_REDIS_ADDR
	Addr string        `yaml:"addr"`
	TTL  time.Duration `yaml:"ttl"`
}

type ClassifierConfig struct {
	// External trainer binary speaking JSONL on stdin. If empty, read CASCADE_CLASSIFIER_BIN
	BinaryPath   string  `yaml:"binaryPath"`
	ModelPath    string  `yaml:"modelPath"`
	TestFraction float64 `yaml:"testFraction"`
	Seed         uint64  `yaml:"seed"`
}

type MetricsConfig struct {
	// e.g. ":9090". If empty, read from env METRICS_ADDR
	Addr string `yaml:"addr"`
}

// Default returns a sensible default configuration.
func Default() Config {
	return Config{
		Dataset:    DatasetConfig{InputPath: "./data/cascades.txt"},
		Prefix:     PrefixConfig{Ks: []int{5, 10}},
		Label:      LabelConfig{SizeSource: string(label.Declared)},
		Pipeline:   PipelineConfig{Workers: 0, ProgressInterval: 5 * time.Second},
		Storage:    StorageConfig{DBPath: "./cascades.db"},
		Redis:      RedisConfig{Addr: "", TTL: 24 * time.Hour},
		Classifier: ClassifierConfig{BinaryPath: "", ModelPath: "./model.json", TestFraction: 0.3, Seed: 42},
		Metrics:    MetricsConfig{Addr: ""},
	}
}

// ResolveEnv fills in config fields from environment variables if not set.
func (c *Config) ResolveEnv() {
	if c.Redis.Addr == "" {
		c.Redis.Addr = os.Getenv("CASCADE_REDIS_ADDR")
	}
	if c.Classifier.BinaryPath == "" {
		c.Classifier.BinaryPath = os.Getenv("CASCADE_CLASSIFIER_BIN")
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = os.Getenv("METRICS_ADDR")
	}
}

// Validate rejects settings the pipeline cannot run with.
func (c Config) Validate() error {
	if len(c.Prefix.Ks) == 0 {
		return errors.New("prefix.ks is empty")
	}
	for _, k := range c.Prefix.Ks {
		if k <= 0 {
			return fmt.Errorf("prefix.ks: k must be positive, got %d", k)
		}
	}
	if _, err := label.ParseSizeSource(c.Label.SizeSource); err != nil {
		return fmt.Errorf("label.sizeSource: %w", err)
	}
	if c.Pipeline.Workers < 0 {
		return fmt.Errorf("pipeline.workers: negative value %d", c.Pipeline.Workers)
	}
	if f := c.Classifier.TestFraction; f < 0 || f >= 1 {
		return fmt.Errorf("classifier.testFraction must be in [0,1), got %v", f)
	}
	return nil
}

// Load reads YAML config from path. Fields missing from the file keep their defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	cfg.ResolveEnv()
	return cfg, cfg.Validate()
}

// Save writes YAML config to path, creating directories as needed.
func Save(path string, cfg Config) error {
	if path == "" {
		return errors.New("empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
