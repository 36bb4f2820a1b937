package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is loaded once at startup and immutable for the process lifetime.
type Config struct {
	Server   ServerConfig  `koanf:"server"`
	Platform string        `koanf:"platform"`
	Timeouts TimeoutConfig `koanf:"timeouts"`
	Cache    CacheConfig   `koanf:"cache"`
	Log      LogConfig     `koanf:"log"`
	Shell    ShellConfig   `koanf:"shell"`
	ADB      ADBConfig     `koanf:"adb"`
	WDA      WDAConfig     `koanf:"wda"`
}

type ServerConfig struct {
	Name    string `koanf:"name"`
	Version string `koanf:"version"`
	Listen  string `koanf:"listen"`
}

type TimeoutConfig struct {
	ADBMillis  int `koanf:"adb_millis"`
	ToolMillis int `koanf:"tool_millis"`
}

type CacheConfig struct {
	DeviceValidityMillis int `koanf:"device_validity_millis"`
}

type LogConfig struct {
	Level string `koanf:"level"`
}

// ShellConfig gates the shell.run escape hatch. An empty allowlist denies
// every command over RPC.
type ShellConfig struct {
	Allowlist []string `koanf:"allowlist"`
}

type ADBConfig struct {
	Path string `koanf:"path"`
}

type WDAConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
}

// Load reads defaults, then the YAML config file if present, then
// MOBILE_AGENT_* environment variables, later sources overriding earlier
// ones.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(NewDefaultProvider(), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		configPath = expandPath(configPath)

		if _, err := os.Stat(configPath); err == nil {
			if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file: %w", err)
			}
		}
	}

	// MOBILE_AGENT_TIMEOUTS__ADB_MILLIS=2000 -> timeouts.adb_millis
	if err := k.Load(env.Provider("MOBILE_AGENT_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "MOBILE_AGENT_")
		return strings.ReplaceAll(strings.ToLower(s), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Platform {
	case "android", "ios":
	default:
		return fmt.Errorf("unknown platform: %s (supported: android, ios)", c.Platform)
	}

	if c.Server.Name == "" {
		return fmt.Errorf("server name is required")
	}
	if strings.TrimSpace(c.Server.Version) == "" {
		return fmt.Errorf("server version must be non-blank")
	}
	if c.Server.Listen == "" {
		return fmt.Errorf("server listen address is required")
	}

	if c.Timeouts.ADBMillis <= 0 {
		return fmt.Errorf("timeouts.adb_millis must be positive")
	}
	if c.Timeouts.ToolMillis <= 0 {
		return fmt.Errorf("timeouts.tool_millis must be positive")
	}
	if c.Cache.DeviceValidityMillis < 0 {
		return fmt.Errorf("cache.device_validity_millis must not be negative")
	}

	return nil
}

// ADBTimeout bounds a single raw shell invocation.
func (c *Config) ADBTimeout() time.Duration {
	return time.Duration(c.Timeouts.ADBMillis) * time.Millisecond
}

// ToolTimeout bounds one full tool call, which may issue several shell
// invocations.
func (c *Config) ToolTimeout() time.Duration {
	return time.Duration(c.Timeouts.ToolMillis) * time.Millisecond
}

// DeviceCacheValidity governs the device enumeration refresh cadence.
func (c *Config) DeviceCacheValidity() time.Duration {
	return time.Duration(c.Cache.DeviceValidityMillis) * time.Millisecond
}

func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}

	return path
}
