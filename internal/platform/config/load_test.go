package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage.Backend != BackendBBolt {
		t.Fatalf("expected bbolt default, got %s", cfg.Storage.Backend)
	}
	if cfg.Party.MinSize != 1 || cfg.Party.MaxSize != 8 {
		t.Fatalf("unexpected party bounds %d..%d", cfg.Party.MinSize, cfg.Party.MaxSize)
	}
	if cfg.Chapter.SlowLossThreshold != 200*time.Millisecond {
		t.Fatalf("unexpected slow-loss threshold %v", cfg.Chapter.SlowLossThreshold)
	}
}

func TestLoadMissingFileFallsBack(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage.Backend != BackendBBolt {
		t.Fatalf("expected defaults for missing file, got %s", cfg.Storage.Backend)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := strings.Join([]string{
		"storage:",
		"  backend: sqlite",
		"  path: /tmp/chapters.db",
		"party:",
		"  min_size: 2",
		"  max_size: 6",
	}, "\n")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage.Backend != BackendSQLite {
		t.Fatalf("expected sqlite, got %s", cfg.Storage.Backend)
	}
	if cfg.Storage.Path != "/tmp/chapters.db" {
		t.Fatalf("unexpected path %q", cfg.Storage.Path)
	}
	if cfg.Party.MinSize != 2 || cfg.Party.MaxSize != 6 {
		t.Fatalf("unexpected party bounds %d..%d", cfg.Party.MinSize, cfg.Party.MaxSize)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("storage:\n  backend: sqlite\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("IRONMARCH_STORAGE_BACKEND", "memory")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage.Backend != BackendMemory {
		t.Fatalf("expected env to win, got %s", cfg.Storage.Backend)
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("IRONMARCH_STORAGE_BACKEND", "cloud")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("storge:\n  backend: sqlite\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for misspelled field")
	}
}

func TestLoadRejectsInvertedPartyBounds(t *testing.T) {
	t.Setenv("IRONMARCH_PARTY_MIN_SIZE", "6")
	t.Setenv("IRONMARCH_PARTY_MAX_SIZE", "2")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for inverted party bounds")
	}
}
