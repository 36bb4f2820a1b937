// Package device defines the platform-agnostic capability contract that both
// the Android and iOS backends implement, plus the short-lived device
// enumeration cache shared by them.
package device

import "context"

// Platform tags. A backend only ever reports devices of its own platform.
const (
	PlatformAndroid = "android"
	PlatformIOS     = "ios"
)

// Device identifies one attached device or simulator.
type Device struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Platform string `json:"platform"`
}

// Capability is the contract every platform backend implements with
// identical semantics for "not found", "timeout" and "empty device list".
// A blank deviceID always means the first available device. All calls may
// block on device I/O and honor the caller's context.
type Capability interface {
	// ListDevices enumerates attached devices. Order is stable within the
	// cache validity window.
	ListDevices(ctx context.Context) ([]Device, error)

	// GetFirstAvailableDevice returns the first enumerated device, or a
	// *ResolutionError when none are attached.
	GetFirstAvailableDevice(ctx context.Context) (Device, error)

	// ListApps returns installed package/bundle identifiers.
	ListApps(ctx context.Context, deviceID string) ([]string, error)

	// GetAppInfo returns the backend's raw metadata dump for a package.
	// Parsing is the caller's concern (see internal/parser).
	GetAppInfo(ctx context.Context, packageID, deviceID string) (string, error)

	// LaunchApp starts an app. An unknown package reports false without an
	// error; only backend failures return one.
	LaunchApp(ctx context.Context, packageID, activity, deviceID string) (bool, error)

	// ExecuteShell runs a raw diagnostic command on the device. The
	// interface is command-agnostic; callers exposing it enforce their own
	// allow-list.
	ExecuteShell(ctx context.Context, command, deviceID string) (string, error)
}

// Metrics describes a device display plus identity fields used by the
// device.info tool.
type Metrics struct {
	Width     int
	Height    int
	Rotation  int
	Product   string
	OSVersion string
}

// UIElement is a platform-normalized view of one on-screen element.
type UIElement struct {
	Text       string
	Identifier string
	Type       string
	Label      string
	Value      string
	X, Y       int
	Width      int
	Height     int
	HasBounds  bool
	Enabled    *bool
}

// Query selects elements by visible text/label or by identifier. Empty
// fields match everything.
type Query struct {
	Text string
	ID   string
}

// Matches reports whether el satisfies the query.
func (q Query) Matches(el UIElement) bool {
	if q.Text != "" && el.Text != q.Text && el.Label != q.Text {
		return false
	}
	if q.ID != "" && el.Identifier != q.ID {
		return false
	}
	return true
}

// Swipe is a resolved gesture in screen coordinates with a total duration in
// milliseconds.
type Swipe struct {
	FromX, FromY int
	ToX, ToY     int
	DurationMS   int
}

// Automation is the UI automation bridge a backend exposes: hierarchy and
// element queries, gestures, and display metrics. Handlers reach it only
// through the backend selected at startup.
type Automation interface {
	Hierarchy(ctx context.Context, deviceID string) (string, error)
	DisplayMetrics(ctx context.Context, deviceID string) (Metrics, error)
	FindElements(ctx context.Context, deviceID string, q Query) ([]UIElement, error)
	Tap(ctx context.Context, deviceID string, x, y int) error
	Swipe(ctx context.Context, deviceID string, s Swipe) error
	TypeText(ctx context.Context, deviceID, text string) error
	PressButton(ctx context.Context, deviceID, button string) error
}

// Backend couples the capability and automation surfaces of one platform.
type Backend interface {
	Capability
	Automation
	Platform() string
}
