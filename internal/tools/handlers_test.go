package tools

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/notexe/mobile-agent/internal/config"
	"github.com/notexe/mobile-agent/internal/device"
	"github.com/notexe/mobile-agent/internal/result"
	"github.com/notexe/mobile-agent/internal/rpc"
)

// fakeBackend records calls and returns canned data. Any method the test
// does not expect to reach can be armed with err.
type fakeBackend struct {
	devices  []device.Device
	apps     []string
	appInfo  string
	launched bool
	elements []device.UIElement
	metrics  device.Metrics
	shellOut string
	err      error

	calls     []string
	lastSwipe device.Swipe
}

func (f *fakeBackend) record(name string) { f.calls = append(f.calls, name) }

func (f *fakeBackend) Platform() string { return device.PlatformAndroid }

func (f *fakeBackend) ListDevices(ctx context.Context) ([]device.Device, error) {
	f.record("ListDevices")
	return f.devices, f.err
}

func (f *fakeBackend) GetFirstAvailableDevice(ctx context.Context) (device.Device, error) {
	f.record("GetFirstAvailableDevice")
	if len(f.devices) == 0 {
		return device.Device{}, &device.ResolutionError{Reason: "no devices attached"}
	}
	return f.devices[0], f.err
}

func (f *fakeBackend) ListApps(ctx context.Context, deviceID string) ([]string, error) {
	f.record("ListApps")
	return f.apps, f.err
}

func (f *fakeBackend) GetAppInfo(ctx context.Context, packageID, deviceID string) (string, error) {
	f.record("GetAppInfo")
	return f.appInfo, f.err
}

func (f *fakeBackend) LaunchApp(ctx context.Context, packageID, activity, deviceID string) (bool, error) {
	f.record("LaunchApp")
	return f.launched, f.err
}

func (f *fakeBackend) ExecuteShell(ctx context.Context, command, deviceID string) (string, error) {
	f.record("ExecuteShell")
	return f.shellOut, f.err
}

func (f *fakeBackend) Hierarchy(ctx context.Context, deviceID string) (string, error) {
	f.record("Hierarchy")
	return "<hierarchy/>", f.err
}

func (f *fakeBackend) DisplayMetrics(ctx context.Context, deviceID string) (device.Metrics, error) {
	f.record("DisplayMetrics")
	return f.metrics, f.err
}

func (f *fakeBackend) FindElements(ctx context.Context, deviceID string, q device.Query) ([]device.UIElement, error) {
	f.record("FindElements")
	return f.elements, f.err
}

func (f *fakeBackend) Tap(ctx context.Context, deviceID string, x, y int) error {
	f.record("Tap")
	return f.err
}

func (f *fakeBackend) Swipe(ctx context.Context, deviceID string, s device.Swipe) error {
	f.record("Swipe")
	f.lastSwipe = s
	return f.err
}

func (f *fakeBackend) TypeText(ctx context.Context, deviceID, text string) error {
	f.record("TypeText")
	return f.err
}

func (f *fakeBackend) PressButton(ctx context.Context, deviceID, button string) error {
	f.record("PressButton")
	return f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{Name: "mobile-agent", Version: "1.0.0", Listen: "127.0.0.1:0"},
		Platform: "android",
		Timeouts: config.TimeoutConfig{ADBMillis: 5000, ToolMillis: 10000},
		Cache:    config.CacheConfig{DeviceValidityMillis: 1000},
		Shell:    config.ShellConfig{Allowlist: []string{"getprop"}},
	}
}

func newTestRegistry(t *testing.T, backend device.Backend) *Registry {
	t.Helper()
	cfg := testConfig()
	r := NewRegistry(cfg.ToolTimeout(), testLogger())
	NewService(backend, cfg, testLogger()).RegisterAll(r)
	r.RegisterIntrospection()
	return r
}

func dispatch(t *testing.T, r *Registry, method string, params rpc.Params) rpc.Response {
	t.Helper()
	return r.Dispatch(context.Background(), &rpc.Request{
		JSONRPC: rpc.Version,
		Method:  method,
		Params:  params,
		ID:      "test-1",
	})
}

func errCode(t *testing.T, resp rpc.Response) int {
	t.Helper()
	if resp.Err == nil {
		t.Fatalf("Dispatch() = %+v, want an error response", resp)
	}
	return resp.Err.Code
}

func resultMap(t *testing.T, resp rpc.Response) map[string]any {
	t.Helper()
	if resp.Err != nil {
		t.Fatalf("Dispatch() error = %v", resp.Err)
	}
	m, ok := resp.Result.(map[string]any)
	if !ok {
		t.Fatalf("Result = %T, want map", resp.Result)
	}
	return m
}

func TestDeviceList(t *testing.T) {
	backend := &fakeBackend{devices: []device.Device{
		{ID: "emulator-5554", Name: "Pixel 6", Platform: "android"},
	}}
	r := newTestRegistry(t, backend)

	m := resultMap(t, dispatch(t, r, "device.list", nil))
	if m["count"] != 1 {
		t.Errorf("count = %v, want 1", m["count"])
	}
}

func TestInvalidParamsBeforeBackend(t *testing.T) {
	tests := []struct {
		method string
		params rpc.Params
	}{
		{"app.info", nil},
		{"app.launch", rpc.Params{"package": ""}},
		{"ui.tap", rpc.Params{"y": float64(10)}},
		{"ui.tap", rpc.Params{"x": "abc", "y": float64(10)}},
		{"ui.swipe", nil},
		{"ui.swipe", rpc.Params{"direction": "sideways"}},
		{"ui.swipe", rpc.Params{"direction": "up", "distance": "huge"}},
		{"ui.type", rpc.Params{"text": ""}},
		{"ui.press", nil},
		{"ui.find", nil},
		{"shell.run", nil},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			backend := &fakeBackend{err: errors.New("backend must not be reached")}
			r := newTestRegistry(t, backend)

			resp := dispatch(t, r, tt.method, tt.params)
			if code := errCode(t, resp); code != rpc.CodeInvalidParams {
				t.Errorf("code = %d, want %d", code, rpc.CodeInvalidParams)
			}
			if len(backend.calls) != 0 {
				t.Errorf("backend was reached: %v", backend.calls)
			}
		})
	}
}

func TestLenientCoordinateCoercion(t *testing.T) {
	backend := &fakeBackend{}
	r := newTestRegistry(t, backend)

	resp := dispatch(t, r, "ui.tap", rpc.Params{"x": "540", "y": float64(1200)})
	m := resultMap(t, resp)
	if m["success"] != true {
		t.Errorf("success = %v, want true", m["success"])
	}
}

func TestAppLaunchNotFoundReportsFailure(t *testing.T) {
	backend := &fakeBackend{launched: false}
	r := newTestRegistry(t, backend)

	m := resultMap(t, dispatch(t, r, "app.launch", rpc.Params{"package": "com.missing"}))
	if m["success"] != false {
		t.Errorf("success = %v, want false", m["success"])
	}
	if m["error"] == "" || m["error"] == nil {
		t.Error("failed launch must carry an error message")
	}
}

func TestDomainErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{
			name: "resolution failure",
			err:  &device.ResolutionError{Reason: "no devices attached"},
			code: rpc.CodeDeviceError,
		},
		{
			name: "timeout",
			err:  context.DeadlineExceeded,
			code: rpc.CodeAutomationError,
		},
		{
			name: "generic backend failure",
			err:  errors.New("uiautomator crashed"),
			code: rpc.CodeAutomationError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRegistry(t, &fakeBackend{err: tt.err})

			resp := dispatch(t, r, "ui.hierarchy", nil)
			if code := errCode(t, resp); code != tt.code {
				t.Errorf("code = %d, want %d", code, tt.code)
			}
		})
	}
}

func TestSwipePlansAgainstDisplay(t *testing.T) {
	backend := &fakeBackend{metrics: device.Metrics{Width: 1080, Height: 2400}}
	r := newTestRegistry(t, backend)

	resp := dispatch(t, r, "ui.swipe", rpc.Params{"direction": "up", "distance": "long", "speed": "fast"})
	resultMap(t, resp)

	want := device.Swipe{FromX: 540, FromY: 1920, ToX: 540, ToY: 480, DurationMS: 250}
	if backend.lastSwipe != want {
		t.Errorf("swipe = %+v, want %+v", backend.lastSwipe, want)
	}
}

func TestUIFindReturnsFirstMatch(t *testing.T) {
	backend := &fakeBackend{elements: []device.UIElement{
		{Text: "Login", X: 100, Y: 200, Width: 400, Height: 100, HasBounds: true},
		{Text: "Login", X: 0, Y: 0},
	}}
	r := newTestRegistry(t, backend)

	m := resultMap(t, dispatch(t, r, "ui.find", rpc.Params{"text": "Login"}))
	if m["found"] != true {
		t.Errorf("found = %v, want true", m["found"])
	}
	bounds, ok := m["bounds"].(map[string]any)
	if !ok || bounds["x"] != 100 {
		t.Errorf("bounds = %v, want the first match's bounds", m["bounds"])
	}
}

func TestUIFindMiss(t *testing.T) {
	r := newTestRegistry(t, &fakeBackend{})

	m := resultMap(t, dispatch(t, r, "ui.find", rpc.Params{"text": "Nope"}))
	if m["found"] != false {
		t.Errorf("found = %v, want false", m["found"])
	}
	if _, present := m["error"]; present {
		t.Error("a clean miss is not an error")
	}
}

func TestShellRunAllowlist(t *testing.T) {
	backend := &fakeBackend{shellOut: "[ro.product.model]: [Pixel 6]"}
	r := newTestRegistry(t, backend)

	m := resultMap(t, dispatch(t, r, "shell.run", rpc.Params{"command": "getprop ro.product.model"}))
	if m["output"] != "[ro.product.model]: [Pixel 6]" {
		t.Errorf("output = %v", m["output"])
	}

	resp := dispatch(t, r, "shell.run", rpc.Params{"command": "rm -rf /sdcard"})
	if code := errCode(t, resp); code != rpc.CodeInvalidParams {
		t.Errorf("code = %d, want %d", code, rpc.CodeInvalidParams)
	}
	if len(backend.calls) != 1 {
		t.Errorf("backend calls = %v, want only the allowed command", backend.calls)
	}
}

func TestShellRunEmptyAllowlistDeniesAll(t *testing.T) {
	cfg := testConfig()
	cfg.Shell.Allowlist = nil
	backend := &fakeBackend{}
	r := NewRegistry(cfg.ToolTimeout(), testLogger())
	NewService(backend, cfg, testLogger()).RegisterAll(r)

	resp := dispatch(t, r, "shell.run", rpc.Params{"command": "getprop"})
	if code := errCode(t, resp); code != rpc.CodeInvalidParams {
		t.Errorf("code = %d, want %d", code, rpc.CodeInvalidParams)
	}
	if len(backend.calls) != 0 {
		t.Errorf("backend was reached: %v", backend.calls)
	}
}

func TestToolTimeoutSurfacesAsAutomationError(t *testing.T) {
	cfg := testConfig()
	r := NewRegistry(10*time.Millisecond, testLogger())
	NewService(&fakeBackend{}, cfg, testLogger()).RegisterAll(r)
	r.Register("slow.op", "Hang until the deadline", false,
		func(ctx context.Context, p rpc.Params) (result.Result, *rpc.Error) {
			<-ctx.Done()
			return nil, rpc.AutomationError("operation timed out: " + ctx.Err().Error())
		})

	resp := dispatch(t, r, "slow.op", nil)
	if code := errCode(t, resp); code != rpc.CodeAutomationError {
		t.Errorf("code = %d, want %d", code, rpc.CodeAutomationError)
	}
}
