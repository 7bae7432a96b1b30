package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"btvol/internal/config"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.toml")
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if cfg.Audio.MaxVolume != 15 || cfg.Audio.MinVolume != 0 {
		t.Fatalf("unexpected audio defaults: %+v", cfg.Audio)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if !cfg.Monitor.Enabled {
		t.Fatal("monitor should default to enabled")
	}
}

func TestLoadParsesAndExpandsPaths(t *testing.T) {
	base := t.TempDir()
	path := writeConfig(t, `
[paths]
state_dir = "`+base+`/state"
log_dir = "`+base+`/logs"

[audio]
max_volume = 25

[logging]
level = "debug"
`)
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected exists=true")
	}
	if cfg.Audio.MaxVolume != 25 {
		t.Fatalf("max_volume = %d", cfg.Audio.MaxVolume)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("level = %q", cfg.Logging.Level)
	}
	if !filepath.IsAbs(cfg.Paths.StateDir) {
		t.Fatalf("state dir not absolute: %q", cfg.Paths.StateDir)
	}
	if got := cfg.DatabasePath(); got != filepath.Join(base, "state", "devices.db") {
		t.Fatalf("DatabasePath() = %q", got)
	}
	if got := cfg.SocketPath(); got != filepath.Join(base, "state", "btvold.sock") {
		t.Fatalf("SocketPath() = %q", got)
	}
}

func TestLoadRejectsNonPositiveMaxVolume(t *testing.T) {
	path := writeConfig(t, `
[audio]
max_volume = 0
`)
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected validation error for zero max volume")
	} else if !strings.Contains(err.Error(), "max_volume") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadRejectsBadLoggingValues(t *testing.T) {
	path := writeConfig(t, `
[logging]
format = "xml"
`)
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected validation error for unsupported log format")
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	if _, _, exists, err := config.Load(path); err != nil || !exists {
		t.Fatalf("Load of sample: exists=%v err=%v", exists, err)
	}
}
