package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"btvol/internal/audio"
	"btvol/internal/config"
	"btvol/internal/coordinator"
	"btvol/internal/daemon"
	"btvol/internal/devstore"
	"btvol/internal/ipc"
	"btvol/internal/logging"
	"btvol/internal/transport"
	"btvol/internal/volume"
)

type cliTestEnv struct {
	cfg        *config.Config
	socketPath string
	configPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Monitor.Enabled = false
	cfg := &cfgVal
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	configPath := filepath.Join(base, "config.toml")
	configBody := fmt.Sprintf(`[paths]
state_dir = %q
log_dir = %q

[audio]
max_volume = 15
min_volume = 0

[monitor]
enabled = false
`, cfg.Paths.StateDir, cfg.Paths.LogDir)
	if err := os.WriteFile(configPath, []byte(configBody), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	logger := logging.NewNop()
	store, err := devstore.Open(cfg, logger)
	if err != nil {
		t.Fatalf("devstore.Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	mixer := audio.NewMixer(cfg, logger)
	rng, err := volume.NewRange(cfg.Audio.MinVolume, cfg.Audio.MaxVolume)
	if err != nil {
		t.Fatalf("NewRange: %v", err)
	}
	coord := coordinator.New(rng, store, mixer, transport.Nop{}, logger)
	mixer.Subscribe(coord)

	d, err := daemon.New(cfg, store, logger, coord, mixer)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("daemon.Start: %v", err)
	}
	t.Cleanup(d.Stop)

	socketPath := filepath.Join(base, "cli.sock")
	srv, err := ipc.NewServer(context.Background(), socketPath, d, nil, logger)
	if err != nil {
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()
	t.Cleanup(srv.Close)

	return &cliTestEnv{cfg: cfg, socketPath: socketPath, configPath: configPath}
}

func (env *cliTestEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--socket", env.socketPath, "--config", env.configPath))
	err := cmd.Execute()
	return out.String(), err
}

func (env *cliTestEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := env.run(t, args...)
	if err != nil {
		t.Fatalf("btvol %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

const testAddr = "AA:BB:CC:DD:EE:FF"

func TestStatusCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out := env.mustRun(t, "status")
	if !strings.Contains(out, "Running") {
		t.Fatalf("status missing running line:\n%s", out)
	}
	if !strings.Contains(out, "Route state") {
		t.Fatalf("status missing route section:\n%s", out)
	}
}

func TestStatusCommandOffline(t *testing.T) {
	env := setupCLITestEnv(t)

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"status", "--socket", filepath.Join(t.TempDir(), "missing.sock"), "--config", env.configPath})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("offline status should not fail: %v", err)
	}
	if !strings.Contains(out.String(), "Not running") {
		t.Fatalf("offline status output:\n%s", out.String())
	}
}

func TestDeviceAndVolumeFlow(t *testing.T) {
	env := setupCLITestEnv(t)

	env.mustRun(t, "device", "connected", testAddr, "--name", "WH-1000XM4", "--absolute")
	env.mustRun(t, "route", "active", testAddr)
	env.mustRun(t, "route", "confirm", testAddr)
	env.mustRun(t, "volume", "set", testAddr, "127")

	out := env.mustRun(t, "volume", "get", testAddr)
	if !strings.Contains(out, "Volume: 15") {
		t.Fatalf("volume get output:\n%s", out)
	}
	if !strings.Contains(out, "absolute volume: yes") {
		t.Fatalf("volume get missing capability:\n%s", out)
	}

	devices := env.mustRun(t, "devices")
	if !strings.Contains(devices, "WH-1000XM4") {
		t.Fatalf("devices output:\n%s", devices)
	}

	dump := env.mustRun(t, "dump")
	if !strings.Contains(dump, "VolumeCoordinator:") {
		t.Fatalf("dump output:\n%s", dump)
	}

	env.mustRun(t, "device", "forget", testAddr)
	devices = env.mustRun(t, "devices")
	if !strings.Contains(devices, "No devices known") {
		t.Fatalf("devices after forget:\n%s", devices)
	}
}

func TestVolumeSetRejectsOutOfRange(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, err := env.run(t, "volume", "set", testAddr, "200"); err == nil {
		t.Fatal("expected range error")
	}
	if _, err := env.run(t, "volume", "set", testAddr, "abc"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestDevicesJSONOutput(t *testing.T) {
	env := setupCLITestEnv(t)

	env.mustRun(t, "device", "connected", testAddr, "--name", "Speaker")
	out := env.mustRun(t, "devices", "--json")
	if !strings.Contains(out, `"address": "AA:BB:CC:DD:EE:FF"`) {
		t.Fatalf("json output:\n%s", out)
	}
}

func TestConfigInitCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	target := filepath.Join(t.TempDir(), "config.toml")
	out := env.mustRun(t, "config", "init", "--path", target)
	if !strings.Contains(out, "Wrote sample configuration") {
		t.Fatalf("config init output:\n%s", out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("sample config missing: %v", err)
	}

	if _, err := env.run(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected overwrite refusal")
	}
}
