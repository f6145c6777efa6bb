package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TouchTimeoutSeconds != DefaultConfig().TouchTimeoutSeconds {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadOverlaysFileOntoDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("touch_timeout_seconds = 3\ntransport = \"unix\"\nsocket_path = \"/tmp/x.sock\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TouchTimeoutSeconds != 3 {
		t.Fatalf("TouchTimeoutSeconds = %d, want 3", cfg.TouchTimeoutSeconds)
	}
	if cfg.BlinkIntervalMillis != DefaultConfig().BlinkIntervalMillis {
		t.Fatalf("BlinkIntervalMillis should keep its default, got %d", cfg.BlinkIntervalMillis)
	}
	if cfg.Transport != "unix" {
		t.Fatalf("Transport = %q, want unix", cfg.Transport)
	}
}

func TestValidateRejectsUnknownTransport(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Transport = "carrier-pigeon"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown transport")
	}
}

func TestValidateRequiresSocketPathForUnixTransport(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Transport = "unix"
	cfg.SocketPath = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing socket_path")
	}
}

func TestValidateRejectsZeroTouchTimeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TouchTimeoutSeconds = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero touch timeout")
	}
}

func TestLoaderOnChangeFiresOnReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("touch_timeout_seconds = 5\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	loader, err := NewLoader(path)
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}
	defer loader.Close()

	if got := loader.Config().TouchTimeoutSeconds; got != 5 {
		t.Fatalf("initial TouchTimeoutSeconds = %d, want 5", got)
	}

	seen := make(chan *Config, 1)
	loader.OnChange(func(c *Config) { seen <- c })

	if err := loader.Watch(); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	if err := os.WriteFile(path, []byte("touch_timeout_seconds = 9\n"), 0o644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	select {
	case c := <-seen:
		if c.TouchTimeoutSeconds != 9 {
			t.Fatalf("reloaded TouchTimeoutSeconds = %d, want 9", c.TouchTimeoutSeconds)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for config reload")
	}
}
