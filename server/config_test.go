package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, dir, contents string) string {
	t.Helper()
	filename := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(filename, []byte(contents), 0644); err != nil {
		t.Fatalf("error writing config: %v", err)
	}
	return filename
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	filename := writeConfig(t, dir, `
[server]
httpAddress = "localhost:9000"

[viewer]
tick_period = 0.05
debounce = 0.3

[store]
path = "db"
group = "oak_a"

[cache]
size_mb = 64
`)
	if err := LoadConfig(filename); err != nil {
		t.Fatalf("error loading config: %v", err)
	}
	if HTTPAddress() != "localhost:9000" {
		t.Errorf("http address %q, expected localhost:9000", HTTPAddress())
	}
	// Relative store paths resolve against the TOML file's directory.
	if want := filepath.Join(dir, "db"); StorePath() != want {
		t.Errorf("store path %q, expected %q", StorePath(), want)
	}
	if InitialGroup() != "oak_a" {
		t.Errorf("initial group %q, expected oak_a", InitialGroup())
	}
	config := tc.ViewerConfig()
	if config.TickPeriod != 50*time.Millisecond {
		t.Errorf("tick period %s, expected 50ms", config.TickPeriod)
	}
	if config.Debounce != 300*time.Millisecond {
		t.Errorf("debounce %s, expected 300ms", config.Debounce)
	}
	if tc.CacheSizeMB() != 64 {
		t.Errorf("cache size %d MB, expected 64", tc.CacheSizeMB())
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	filename := writeConfig(t, t.TempDir(), `
[store]
path = "/data/db"
`)
	if err := LoadConfig(filename); err != nil {
		t.Fatalf("error loading minimal config: %v", err)
	}
	if HTTPAddress() != DefaultWebAddress {
		t.Errorf("http address %q, expected default %q", HTTPAddress(), DefaultWebAddress)
	}
	config := tc.ViewerConfig()
	if config.TickPeriod <= 0 || config.Debounce <= 0 {
		t.Errorf("defaults not applied: %+v", config)
	}
	if tc.CacheSizeMB() != DefaultCacheSizeMB {
		t.Errorf("cache size %d MB, expected default %d", tc.CacheSizeMB(), DefaultCacheSizeMB)
	}
}

func TestLoadConfigFailsFast(t *testing.T) {
	if err := LoadConfig(""); err == nil {
		t.Errorf("empty config filename should fail")
	}
	filename := writeConfig(t, t.TempDir(), `
[viewer]
tick_period = 0.05
`)
	if err := LoadConfig(filename); err == nil {
		t.Errorf("config without a store path should fail")
	}
	filename = writeConfig(t, t.TempDir(), `
[viewer]
tick_period = -1.0

[store]
path = "/data/db"
`)
	if err := LoadConfig(filename); err == nil {
		t.Errorf("negative tick period should fail validation")
	}
	filename = writeConfig(t, t.TempDir(), `
[viewer]
tick_period = 0.1
debounce = 0.05

[store]
path = "/data/db"
`)
	if err := LoadConfig(filename); err == nil {
		t.Errorf("debounce shorter than tick period should fail validation")
	}
}
