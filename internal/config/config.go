// Package config loads the simulator/harness's non-cryptographic knobs:
// touch timing, transport selection, and logging. It never configures
// anything that would let a deployment weaken the device secret, the
// DRBG, or the MAC/signature primitives: those are fixed in code, not by
// an operator-editable file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the simulator's editable configuration surface.
type Config struct {
	// TouchTimeoutSeconds bounds how long the presence gate waits for a
	// touch before treating the request as user-absent.
	TouchTimeoutSeconds int `toml:"touch_timeout_seconds"`

	// BlinkIntervalMillis is how often the LED toggles while waiting.
	BlinkIntervalMillis int `toml:"blink_interval_millis"`

	// Transport selects how the simulator exposes its host link:
	// "stdio", "unix", or "serial".
	Transport string `toml:"transport"`

	// SocketPath is the Unix domain socket path when Transport=="unix".
	SocketPath string `toml:"socket_path"`

	// SerialPath is the TTY device path when Transport=="serial".
	SerialPath string `toml:"serial_path"`

	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string `toml:"log_level"`

	// LogFormat is "text" or "json".
	LogFormat string `toml:"log_format"`
}

// DefaultConfig returns the simulator's out-of-the-box configuration.
func DefaultConfig() *Config {
	return &Config{
		TouchTimeoutSeconds: 10,
		BlinkIntervalMillis: 150,
		Transport:           "stdio",
		SocketPath:          "/tmp/tkeyfido.sock",
		LogLevel:            "info",
		LogFormat:           "text",
	}
}

// TouchTimeout returns TouchTimeoutSeconds as a time.Duration.
func (c *Config) TouchTimeout() time.Duration {
	return time.Duration(c.TouchTimeoutSeconds) * time.Second
}

// BlinkInterval returns BlinkIntervalMillis as a time.Duration.
func (c *Config) BlinkInterval() time.Duration {
	return time.Duration(c.BlinkIntervalMillis) * time.Millisecond
}

// Load reads a TOML config file at path, overlaying it onto the
// defaults. A missing file is not an error: the defaults are returned
// as-is, the same "absent config is fine" behavior as the daemon this
// loader's structure is modeled on.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations that can't describe a working device.
func (c *Config) Validate() error {
	if c.TouchTimeoutSeconds < 1 {
		return errors.New("config: touch_timeout_seconds must be at least 1")
	}
	if c.BlinkIntervalMillis < 1 {
		return errors.New("config: blink_interval_millis must be at least 1")
	}
	switch c.Transport {
	case "stdio", "unix", "serial":
	default:
		return fmt.Errorf("config: unknown transport %q", c.Transport)
	}
	if c.Transport == "unix" && c.SocketPath == "" {
		return errors.New("config: socket_path is required for transport=unix")
	}
	if c.Transport == "serial" && c.SerialPath == "" {
		return errors.New("config: serial_path is required for transport=serial")
	}
	if _, err := parseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

func parseLogLevel(s string) (string, error) {
	switch s {
	case "debug", "info", "warn", "error":
		return s, nil
	default:
		return "", fmt.Errorf("config: unknown log_level %q", s)
	}
}
