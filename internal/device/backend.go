package device

import (
	"fmt"
	"log/slog"

	"github.com/notexe/mobile-agent/internal/config"
	"github.com/notexe/mobile-agent/internal/wda"
)

// NewBackend selects the platform implementation once at startup from
// configuration. Nothing downstream ever inspects call arguments to pick a
// platform.
func NewBackend(cfg *config.Config, log *slog.Logger) (Backend, error) {
	switch cfg.Platform {
	case PlatformAndroid:
		return NewAndroid(cfg.ADB.Path, cfg.ADBTimeout(), cfg.DeviceCacheValidity(), log), nil
	case PlatformIOS:
		client := wda.NewClient(cfg.WDA.Host, cfg.WDA.Port, cfg.ToolTimeout())
		return NewIOS(client, cfg.ADBTimeout(), cfg.DeviceCacheValidity(), log), nil
	}
	return nil, fmt.Errorf("unknown platform: %s", cfg.Platform)
}
