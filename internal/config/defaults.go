package config

import (
	"github.com/knadh/koanf/providers/confmap"
)

func DefaultConfig() map[string]interface{} {
	return map[string]interface{}{
		"server": map[string]interface{}{
			"name":    "mobile-agent",
			"version": "1.0.0",
			"listen":  "127.0.0.1:7920",
		},
		"platform": "android",
		"timeouts": map[string]interface{}{
			"adb_millis":  5000,
			"tool_millis": 10000,
		},
		"cache": map[string]interface{}{
			"device_validity_millis": 1000,
		},
		"log": map[string]interface{}{
			"level": "info",
		},
		"shell": map[string]interface{}{
			// Empty by default: shell.run rejects everything until the
			// integrator opts commands in.
			"allowlist": []string{},
		},
		"adb": map[string]interface{}{
			"path": "",
		},
		"wda": map[string]interface{}{
			"host": "localhost",
			"port": 8100,
		},
	}
}

func NewDefaultProvider() *confmap.Confmap {
	return confmap.Provider(DefaultConfig(), ".")
}

func GetDefaultConfigPath() string {
	return "~/.mobile-agent/config.yaml"
}
