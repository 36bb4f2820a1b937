package device

import (
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/notexe/mobile-agent/internal/parser"
)

// Android drives devices and emulators through adb. Every invocation gets
// its own timeout context so one stuck call cannot wedge unrelated requests.
type Android struct {
	adbPath      string
	shellTimeout time.Duration
	cache        *Cache
	log          *slog.Logger
}

// NewAndroid builds the ADB-backed implementation. An empty adbPath resolves
// via ANDROID_HOME, falling back to the adb on PATH.
func NewAndroid(adbPath string, shellTimeout, cacheValidity time.Duration, log *slog.Logger) *Android {
	if adbPath == "" {
		if home := os.Getenv("ANDROID_HOME"); home != "" {
			adbPath = home + "/platform-tools/adb"
		} else {
			adbPath = "adb"
		}
	}

	a := &Android{
		adbPath:      adbPath,
		shellTimeout: shellTimeout,
		log:          log,
	}
	a.cache = NewCache(cacheValidity, a.enumerate)
	return a
}

func (a *Android) Platform() string { return PlatformAndroid }

func (a *Android) runAdb(ctx context.Context, deviceID string, args ...string) (string, error) {
	tctx, cancel := context.WithTimeout(ctx, a.shellTimeout)
	defer cancel()

	cmdArgs := args
	if deviceID != "" {
		cmdArgs = append([]string{"-s", deviceID}, args...)
	}

	out, err := exec.CommandContext(tctx, a.adbPath, cmdArgs...).CombinedOutput()
	if err != nil {
		if tctx.Err() != nil {
			return "", &OpError{Op: "adb " + strings.Join(args, " "), DeviceID: deviceID, Err: tctx.Err()}
		}
		return "", &OpError{
			Op:       "adb " + strings.Join(args, " "),
			DeviceID: deviceID,
			Err:      fmt.Errorf("%w: %s", err, strings.TrimSpace(string(out))),
		}
	}

	return string(out), nil
}

// enumerate is the uncached device listing behind the cache.
func (a *Android) enumerate(ctx context.Context) ([]Device, error) {
	out, err := a.runAdb(ctx, "", "devices")
	if err != nil {
		return nil, err
	}

	devices := []Device{}
	lines := strings.Split(out, "\n")
	for i := 1; i < len(lines); i++ {
		parts := strings.Fields(strings.TrimSpace(lines[i]))
		if len(parts) != 2 || parts[1] != "device" {
			continue
		}
		devices = append(devices, Device{
			ID:       parts[0],
			Name:     a.deviceName(ctx, parts[0]),
			Platform: PlatformAndroid,
		})
	}

	return devices, nil
}

func (a *Android) deviceName(ctx context.Context, deviceID string) string {
	out, err := a.runAdb(ctx, deviceID, "shell", "getprop", "ro.product.model")
	if err != nil || strings.TrimSpace(out) == "" {
		return deviceID
	}
	return strings.TrimSpace(out)
}

func (a *Android) ListDevices(ctx context.Context) ([]Device, error) {
	return a.cache.Devices(ctx)
}

func (a *Android) GetFirstAvailableDevice(ctx context.Context) (Device, error) {
	devices, err := a.ListDevices(ctx)
	if err != nil {
		return Device{}, err
	}
	if len(devices) == 0 {
		return Device{}, &ResolutionError{Reason: "no Android devices attached"}
	}
	return devices[0], nil
}

// resolve maps a blank deviceID onto the first available device.
func (a *Android) resolve(ctx context.Context, deviceID string) (string, error) {
	if deviceID != "" {
		return deviceID, nil
	}
	d, err := a.GetFirstAvailableDevice(ctx)
	if err != nil {
		return "", err
	}
	return d.ID, nil
}

func (a *Android) ListApps(ctx context.Context, deviceID string) ([]string, error) {
	id, err := a.resolve(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	out, err := a.runAdb(ctx, id, "shell", "pm", "list", "packages")
	if err != nil {
		return nil, err
	}

	var packages []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if pkg, ok := strings.CutPrefix(line, "package:"); ok && pkg != "" {
			packages = append(packages, pkg)
		}
	}
	return packages, nil
}

func (a *Android) GetAppInfo(ctx context.Context, packageID, deviceID string) (string, error) {
	id, err := a.resolve(ctx, deviceID)
	if err != nil {
		return "", err
	}
	return a.runAdb(ctx, id, "shell", "dumpsys", "package", packageID)
}

func (a *Android) LaunchApp(ctx context.Context, packageID, activity, deviceID string) (bool, error) {
	id, err := a.resolve(ctx, deviceID)
	if err != nil {
		return false, err
	}

	if activity != "" {
		out, err := a.runAdb(ctx, id, "shell", "am", "start", "-n", packageID+"/"+activity)
		if err != nil {
			return false, err
		}
		if strings.Contains(out, "Error") {
			// am reports unknown components on stdout with exit 0.
			return false, nil
		}
		return true, nil
	}

	out, err := a.runAdb(ctx, id, "shell", "monkey", "-p", packageID,
		"-c", "android.intent.category.LAUNCHER", "1")
	if err != nil {
		return false, err
	}
	if strings.Contains(out, "No activities found") {
		return false, nil
	}
	return true, nil
}

func (a *Android) ExecuteShell(ctx context.Context, command, deviceID string) (string, error) {
	id, err := a.resolve(ctx, deviceID)
	if err != nil {
		return "", err
	}
	return a.runAdb(ctx, id, "shell", command)
}

const hierarchyDumpPath = "/sdcard/window_dump.xml"

func (a *Android) Hierarchy(ctx context.Context, deviceID string) (string, error) {
	id, err := a.resolve(ctx, deviceID)
	if err != nil {
		return "", err
	}

	if _, err := a.runAdb(ctx, id, "shell", "uiautomator", "dump", hierarchyDumpPath); err != nil {
		return "", err
	}
	return a.runAdb(ctx, id, "shell", "cat", hierarchyDumpPath)
}

var (
	physicalSizePattern = regexp.MustCompile(`Physical size: (\d+x\d+)`)
	orientationPattern  = regexp.MustCompile(`SurfaceOrientation: (\d)`)
)

func (a *Android) DisplayMetrics(ctx context.Context, deviceID string) (Metrics, error) {
	id, err := a.resolve(ctx, deviceID)
	if err != nil {
		return Metrics{}, err
	}

	props, err := a.runAdb(ctx, id, "shell", "getprop")
	if err != nil {
		return Metrics{}, err
	}

	m := Metrics{
		Product:   parser.ExtractProperty(props, "ro.product.model"),
		OSVersion: parser.ExtractProperty(props, "ro.build.version.release"),
	}

	sizeOut, err := a.runAdb(ctx, id, "shell", "wm", "size")
	if err != nil {
		return Metrics{}, err
	}
	if pair := parser.ExtractPattern(sizeOut, physicalSizePattern); pair != parser.Unknown {
		if w, h, ok := strings.Cut(pair, "x"); ok {
			m.Width, _ = strconv.Atoi(w)
			m.Height, _ = strconv.Atoi(h)
		}
	}

	// Rotation is best effort; the field degrades to 0 on devices that no
	// longer expose SurfaceOrientation.
	if out, err := a.runAdb(ctx, id, "shell", "dumpsys", "input"); err == nil {
		if rot := parser.ExtractPattern(out, orientationPattern); rot != parser.Unknown {
			m.Rotation, _ = strconv.Atoi(rot)
		}
	}

	return m, nil
}

func (a *Android) FindElements(ctx context.Context, deviceID string, q Query) ([]UIElement, error) {
	raw, err := a.Hierarchy(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	all := parseUIAutomatorXML(raw)
	matched := make([]UIElement, 0, len(all))
	for _, el := range all {
		if q.Matches(el) {
			matched = append(matched, el)
		}
	}
	return matched, nil
}

func (a *Android) Tap(ctx context.Context, deviceID string, x, y int) error {
	id, err := a.resolve(ctx, deviceID)
	if err != nil {
		return err
	}
	_, err = a.runAdb(ctx, id, "shell", "input", "tap", strconv.Itoa(x), strconv.Itoa(y))
	return err
}

func (a *Android) Swipe(ctx context.Context, deviceID string, s Swipe) error {
	id, err := a.resolve(ctx, deviceID)
	if err != nil {
		return err
	}
	_, err = a.runAdb(ctx, id, "shell", "input", "swipe",
		strconv.Itoa(s.FromX), strconv.Itoa(s.FromY),
		strconv.Itoa(s.ToX), strconv.Itoa(s.ToY),
		strconv.Itoa(s.DurationMS))
	return err
}

func (a *Android) TypeText(ctx context.Context, deviceID, text string) error {
	switch text {
	case "\b":
		return a.PressButton(ctx, deviceID, "BACKSPACE")
	case "\n":
		return a.PressButton(ctx, deviceID, "ENTER")
	}

	id, err := a.resolve(ctx, deviceID)
	if err != nil {
		return err
	}

	escaped := strings.ReplaceAll(text, " ", "\\ ")
	_, err = a.runAdb(ctx, id, "shell", "input", "text", escaped)
	return err
}

var androidKeyMap = map[string]string{
	"HOME":        "KEYCODE_HOME",
	"BACK":        "KEYCODE_BACK",
	"VOLUME_UP":   "KEYCODE_VOLUME_UP",
	"VOLUME_DOWN": "KEYCODE_VOLUME_DOWN",
	"ENTER":       "KEYCODE_ENTER",
	"BACKSPACE":   "KEYCODE_DEL",
	"DPAD_CENTER": "KEYCODE_DPAD_CENTER",
	"DPAD_UP":     "KEYCODE_DPAD_UP",
	"DPAD_DOWN":   "KEYCODE_DPAD_DOWN",
	"DPAD_LEFT":   "KEYCODE_DPAD_LEFT",
	"DPAD_RIGHT":  "KEYCODE_DPAD_RIGHT",
}

func (a *Android) PressButton(ctx context.Context, deviceID, button string) error {
	keycode, ok := androidKeyMap[strings.ToUpper(button)]
	if !ok {
		return fmt.Errorf("unsupported button %q", button)
	}

	id, err := a.resolve(ctx, deviceID)
	if err != nil {
		return err
	}
	_, err = a.runAdb(ctx, id, "shell", "input", "keyevent", keycode)
	return err
}

var boundsPattern = regexp.MustCompile(`\[(-?\d+),(-?\d+)\]\[(-?\d+),(-?\d+)\]`)

// parseUIAutomatorXML walks a uiautomator dump and normalizes its nodes.
// Malformed XML yields whatever nodes decode before the error; it never
// fails.
func parseUIAutomatorXML(raw string) []UIElement {
	var elements []UIElement
	decoder := xml.NewDecoder(strings.NewReader(raw))

	for {
		token, err := decoder.Token()
		if err != nil {
			return elements
		}

		start, ok := token.(xml.StartElement)
		if !ok || start.Name.Local != "node" {
			continue
		}

		attrs := make(map[string]string, len(start.Attr))
		for _, attr := range start.Attr {
			attrs[attr.Name.Local] = attr.Value
		}

		el := UIElement{
			Text:       attrs["text"],
			Identifier: attrs["resource-id"],
			Type:       attrs["class"],
			Label:      attrs["content-desc"],
		}
		if v, ok := attrs["enabled"]; ok {
			enabled := v == "true"
			el.Enabled = &enabled
		}
		if m := boundsPattern.FindStringSubmatch(attrs["bounds"]); m != nil {
			x1, _ := strconv.Atoi(m[1])
			y1, _ := strconv.Atoi(m[2])
			x2, _ := strconv.Atoi(m[3])
			y2, _ := strconv.Atoi(m[4])
			el.X, el.Y = x1, y1
			el.Width, el.Height = x2-x1, y2-y1
			el.HasBounds = true
		}

		elements = append(elements, el)
	}
}
