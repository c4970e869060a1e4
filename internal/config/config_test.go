package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cascade.yaml")
	cfg := Default()
	cfg.Prefix.Ks = []int{3, 7}
	cfg.Pipeline.ProgressInterval = 2 * time.Second
	if err := Save(path, cfg); err != nil { t.Fatal(err) }
	got, err := Load(path)
	if err != nil { t.Fatal(err) }
	if len(got.Prefix.Ks) != 2 || got.Prefix.Ks[1] != 7 { t.Fatalf("ks: %v", got.Prefix.Ks) }
	if got.Pipeline.ProgressInterval != 2*time.Second { t.Fatalf("interval: %v", got.Pipeline.ProgressInterval) }
}

func TestLoadKeepsDefaultsAndResolvesEnv(t *testing.T) {
	t.Setenv("CASCADE_REDIS_ADDR", "localhost:6379")
	path := filepath.Join(t.TempDir(), "c.yaml")
	if err := os.WriteFile(path, []byte("prefix:\n  ks: [4]\n"), 0o644); err != nil { t.Fatal(err) }
	got, err := Load(path)
	if err != nil { t.Fatal(err) }
	if got.Storage.DBPath != "./cascades.db" || got.Label.SizeSource != "declared" { t.Fatalf("defaults lost: %+v", got) }
	if got.Redis.Addr != "localhost:6379" { t.Fatalf("env not resolved: %q", got.Redis.Addr) }
}

func TestValidate(t *testing.T) {
	bad := []func(*Config){
		func(c *Config) { c.Prefix.Ks = nil },
		func(c *Config) { c.Prefix.Ks = []int{5, 0} },
		func(c *Config) { c.Label.SizeSource = "final" },
		func(c *Config) { c.Pipeline.Workers = -1 },
		func(c *Config) { c.Classifier.TestFraction = 1 },
	}
	for i, mut := range bad {
		c := Default()
		mut(&c)
		if c.Validate() == nil { t.Fatalf("case %d: expected validation error", i) }
	}
	if err := Default().Validate(); err != nil { t.Fatal(err) }
}
