// Package wda is a thin HTTP client for WebDriverAgent, the XCUITest-based
// automation server the iOS backend drives.
package wda

// Session is a WDA automation session.
type Session struct {
	SessionID    string         `json:"sessionId"`
	Capabilities map[string]any `json:"capabilities,omitempty"`
}

// StatusInfo is the payload of GET /status.
type StatusInfo struct {
	OS struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	} `json:"os"`
	State string `json:"state"`
}

// Element is a WDA element handle.
type Element struct {
	ElementID string `json:"ELEMENT"`
}

// Attributes is the detail set fetched per element.
type Attributes struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	Label   string `json:"label"`
	Value   string `json:"value"`
	Enabled bool   `json:"enabled"`
	Rect    Rect   `json:"rect"`
}

// Rect is an element's bounding rectangle in points.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// WindowSize is the active window's dimensions in points.
type WindowSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type findElementRequest struct {
	Using string `json:"using"`
	Value string `json:"value"`
}
