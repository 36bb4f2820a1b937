package device

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/notexe/mobile-agent/internal/wda"
)

// IOS drives simulators through xcrun simctl for device and app management,
// and through WebDriverAgent for UI automation.
type IOS struct {
	shellTimeout time.Duration
	cache        *Cache
	wda          *wda.Client
	log          *slog.Logger

	// findLimit bounds per-element attribute fetches on broad queries.
	findLimit int
}

// NewIOS builds the simctl/WDA-backed implementation.
func NewIOS(client *wda.Client, shellTimeout, cacheValidity time.Duration, log *slog.Logger) *IOS {
	b := &IOS{
		shellTimeout: shellTimeout,
		wda:          client,
		log:          log,
		findLimit:    25,
	}
	b.cache = NewCache(cacheValidity, b.enumerate)
	return b
}

func (b *IOS) Platform() string { return PlatformIOS }

func (b *IOS) runSimctl(ctx context.Context, args ...string) (string, error) {
	tctx, cancel := context.WithTimeout(ctx, b.shellTimeout)
	defer cancel()

	full := append([]string{"simctl"}, args...)
	out, err := exec.CommandContext(tctx, "xcrun", full...).CombinedOutput()
	if err != nil {
		if tctx.Err() != nil {
			return "", &OpError{Op: "simctl " + args[0], Err: tctx.Err()}
		}
		return "", &OpError{
			Op:  "simctl " + args[0],
			Err: fmt.Errorf("%w: %s", err, strings.TrimSpace(string(out))),
		}
	}
	return string(out), nil
}

type simctlDevice struct {
	UDID        string `json:"udid"`
	Name        string `json:"name"`
	State       string `json:"state"`
	IsAvailable bool   `json:"isAvailable"`
}

func (b *IOS) enumerate(ctx context.Context) ([]Device, error) {
	out, err := b.runSimctl(ctx, "list", "devices", "-j")
	if err != nil {
		return nil, err
	}

	var list struct {
		Devices map[string][]simctlDevice `json:"devices"`
	}
	if err := json.Unmarshal([]byte(out), &list); err != nil {
		return nil, &OpError{Op: "simctl list", Err: fmt.Errorf("failed to parse device list: %w", err)}
	}

	// Booted simulators first so "first available" prefers a usable target.
	devices := []Device{}
	for runtime, devs := range list.Devices {
		runtimeName := runtime
		if idx := strings.LastIndex(runtime, "."); idx >= 0 {
			runtimeName = runtime[idx+1:]
		}
		for _, d := range devs {
			if !d.IsAvailable {
				continue
			}
			dev := Device{
				ID:       d.UDID,
				Name:     fmt.Sprintf("%s (%s)", d.Name, runtimeName),
				Platform: PlatformIOS,
			}
			if d.State == "Booted" {
				devices = append([]Device{dev}, devices...)
			} else {
				devices = append(devices, dev)
			}
		}
	}

	return devices, nil
}

func (b *IOS) ListDevices(ctx context.Context) ([]Device, error) {
	return b.cache.Devices(ctx)
}

func (b *IOS) GetFirstAvailableDevice(ctx context.Context) (Device, error) {
	devices, err := b.ListDevices(ctx)
	if err != nil {
		return Device{}, err
	}
	if len(devices) == 0 {
		return Device{}, &ResolutionError{Reason: "no iOS simulators available"}
	}
	return devices[0], nil
}

func (b *IOS) resolve(ctx context.Context, deviceID string) (string, error) {
	if deviceID != "" {
		return deviceID, nil
	}
	d, err := b.GetFirstAvailableDevice(ctx)
	if err != nil {
		return "", err
	}
	return d.ID, nil
}

var bundleIDPattern = regexp.MustCompile(`CFBundleIdentifier\s*=\s*"?([A-Za-z0-9_.\-]+)"?;?`)

func (b *IOS) ListApps(ctx context.Context, deviceID string) ([]string, error) {
	id, err := b.resolve(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	out, err := b.runSimctl(ctx, "listapps", id)
	if err != nil {
		return nil, err
	}

	var bundles []string
	seen := make(map[string]bool)
	for _, m := range bundleIDPattern.FindAllStringSubmatch(out, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			bundles = append(bundles, m[1])
		}
	}
	return bundles, nil
}

func (b *IOS) GetAppInfo(ctx context.Context, packageID, deviceID string) (string, error) {
	id, err := b.resolve(ctx, deviceID)
	if err != nil {
		return "", err
	}
	return b.runSimctl(ctx, "appinfo", id, packageID)
}

// LaunchApp checks installation first so an unknown bundle reports false
// rather than surfacing simctl's launch failure.
func (b *IOS) LaunchApp(ctx context.Context, packageID, activity, deviceID string) (bool, error) {
	id, err := b.resolve(ctx, deviceID)
	if err != nil {
		return false, err
	}

	installed, err := b.ListApps(ctx, id)
	if err != nil {
		return false, err
	}
	found := false
	for _, bundle := range installed {
		if bundle == packageID {
			found = true
			break
		}
	}
	if !found {
		return false, nil
	}

	// Activities are an Android concept; iOS launches the bundle as a whole.
	if _, err := b.runSimctl(ctx, "launch", id, packageID); err != nil {
		return false, err
	}
	return true, nil
}

func (b *IOS) ExecuteShell(ctx context.Context, command, deviceID string) (string, error) {
	id, err := b.resolve(ctx, deviceID)
	if err != nil {
		return "", err
	}

	fields := strings.Fields(command)
	if len(fields) == 0 {
		return "", &OpError{Op: "simctl spawn", DeviceID: id, Err: fmt.Errorf("empty command")}
	}
	return b.runSimctl(ctx, append([]string{"spawn", id}, fields...)...)
}

func (b *IOS) Hierarchy(ctx context.Context, deviceID string) (string, error) {
	source, err := b.wda.Source(ctx)
	if err != nil {
		return "", &OpError{Op: "ui hierarchy", DeviceID: deviceID, Err: err}
	}
	return source, nil
}

func (b *IOS) DisplayMetrics(ctx context.Context, deviceID string) (Metrics, error) {
	id, err := b.resolve(ctx, deviceID)
	if err != nil {
		return Metrics{}, err
	}

	size, err := b.wda.WindowSize(ctx)
	if err != nil {
		return Metrics{}, &OpError{Op: "window size", DeviceID: id, Err: err}
	}

	m := Metrics{Width: size.Width, Height: size.Height}

	if orientation, err := b.wda.Orientation(ctx); err == nil {
		if strings.EqualFold(orientation, "LANDSCAPE") {
			m.Rotation = 1
		}
	}

	if status, err := b.wda.Status(ctx); err == nil {
		m.OSVersion = status.OS.Version
	}

	// Product is the simulator's display name from the enumeration.
	if devices, err := b.ListDevices(ctx); err == nil {
		for _, d := range devices {
			if d.ID == id {
				m.Product = d.Name
				break
			}
		}
	}

	return m, nil
}

func (b *IOS) FindElements(ctx context.Context, deviceID string, q Query) ([]UIElement, error) {
	using, value := "xpath", "//*"
	switch {
	case q.ID != "":
		using, value = "accessibility id", q.ID
	case q.Text != "":
		using = "predicate string"
		escaped := strings.ReplaceAll(q.Text, `"`, `\"`)
		value = fmt.Sprintf(`name == "%s" OR label == "%s" OR value == "%s"`, escaped, escaped, escaped)
	}

	handles, err := b.wda.FindElements(ctx, using, value)
	if err != nil {
		return nil, &OpError{Op: "find elements", DeviceID: deviceID, Err: err}
	}
	if len(handles) > b.findLimit {
		handles = handles[:b.findLimit]
	}

	elements := make([]UIElement, 0, len(handles))
	for _, h := range handles {
		attrs, err := b.wda.ElementAttributes(ctx, h.ElementID)
		if err != nil {
			// A stale handle should not sink the whole query.
			b.log.Debug("skipping element with unreadable attributes", "element", h.ElementID, "error", err)
			continue
		}

		enabled := attrs.Enabled
		el := UIElement{
			Text:       attrs.Value,
			Identifier: attrs.Name,
			Type:       attrs.Type,
			Label:      attrs.Label,
			X:          int(attrs.Rect.X),
			Y:          int(attrs.Rect.Y),
			Width:      int(attrs.Rect.Width),
			Height:     int(attrs.Rect.Height),
			HasBounds:  true,
			Enabled:    &enabled,
		}
		if q.Matches(el) {
			elements = append(elements, el)
		}
	}

	return elements, nil
}

func (b *IOS) Tap(ctx context.Context, deviceID string, x, y int) error {
	if err := b.wda.Tap(ctx, x, y); err != nil {
		return &OpError{Op: "tap", DeviceID: deviceID, Err: err}
	}
	return nil
}

func (b *IOS) Swipe(ctx context.Context, deviceID string, s Swipe) error {
	duration := time.Duration(s.DurationMS) * time.Millisecond
	if err := b.wda.Drag(ctx, s.FromX, s.FromY, s.ToX, s.ToY, duration); err != nil {
		return &OpError{Op: "swipe", DeviceID: deviceID, Err: err}
	}
	return nil
}

func (b *IOS) TypeText(ctx context.Context, deviceID, text string) error {
	if err := b.wda.SendKeys(ctx, text); err != nil {
		return &OpError{Op: "type text", DeviceID: deviceID, Err: err}
	}
	return nil
}

var iosButtonMap = map[string]string{
	"HOME":        "home",
	"VOLUME_UP":   "volumeUp",
	"VOLUME_DOWN": "volumeDown",
}

func (b *IOS) PressButton(ctx context.Context, deviceID, button string) error {
	name, ok := iosButtonMap[strings.ToUpper(button)]
	if !ok {
		return fmt.Errorf("unsupported button %q", button)
	}
	if err := b.wda.PressButton(ctx, name); err != nil {
		return &OpError{Op: "press button", DeviceID: deviceID, Err: err}
	}
	return nil
}
