package preflight_test

import (
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"btvol/internal/preflight"
	"btvol/internal/testsupport"
)

func TestRunAllPassesForFreshConfig(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	results := preflight.RunAll(cfg)
	if len(results) == 0 {
		t.Fatal("no results")
	}
	if !preflight.Passed(results) {
		t.Fatalf("checks failed: %+v", results)
	}
}

func TestCheckDirectoryAccess(t *testing.T) {
	dir := t.TempDir()

	if result := preflight.CheckDirectoryAccess("dir", dir); !result.Passed {
		t.Fatalf("writable dir failed: %+v", result)
	}
	if result := preflight.CheckDirectoryAccess("dir", filepath.Join(dir, "missing")); result.Passed {
		t.Fatal("missing dir passed")
	}

	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if result := preflight.CheckDirectoryAccess("dir", file); result.Passed {
		t.Fatal("regular file passed as directory")
	}
}

func TestCheckStaleSocket(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "btvold.sock")

	if result := preflight.CheckStaleSocket("socket", path); !result.Passed {
		t.Fatalf("absent socket should pass: %+v", result)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	result := preflight.CheckStaleSocket("socket", path)
	listener.Close()
	if !result.Passed {
		t.Fatalf("live socket should pass: %+v", result)
	}

	// A socket file with no listener behind it is stale.
	if err := os.WriteFile(path, nil, 0o644); err == nil {
		stale := preflight.CheckStaleSocket("socket", path)
		if stale.Passed {
			t.Fatal("stale socket passed")
		}
		if !strings.Contains(stale.Detail, "stale") {
			t.Fatalf("detail = %q", stale.Detail)
		}
	}
}

func TestCheckFreeSpace(t *testing.T) {
	result := preflight.CheckFreeSpace("space", t.TempDir())
	if !result.Passed {
		t.Fatalf("temp dir reported no space: %+v", result)
	}
}
