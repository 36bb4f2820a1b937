package wda

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

const defaultPort = 8100

// Client talks to one WebDriverAgent instance. Session state is guarded so
// concurrent tool calls can share a client.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu        sync.Mutex
	sessionID string
}

// NewClient builds a client for the given host/port. Zero values select
// localhost:8100. The timeout bounds each individual WDA round trip.
func NewClient(host string, port int, timeout time.Duration) *Client {
	if host == "" {
		host = "localhost"
	}
	if port == 0 {
		port = defaultPort
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:    fmt.Sprintf("http://%s:%d", host, port),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Status checks whether WDA is up.
func (c *Client) Status(ctx context.Context) (*StatusInfo, error) {
	resp, err := c.get(ctx, "/status")
	if err != nil {
		return nil, err
	}

	var status struct {
		Value StatusInfo `json:"value"`
	}
	if err := json.Unmarshal(resp, &status); err != nil {
		return nil, fmt.Errorf("failed to parse status response: %w", err)
	}
	return &status.Value, nil
}

// EnsureSession returns the active session id, creating a session when none
// exists yet.
func (c *Client) EnsureSession(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sessionID != "" {
		return c.sessionID, nil
	}

	body := map[string]any{"capabilities": map[string]any{}}
	resp, err := c.post(ctx, "/session", body)
	if err != nil {
		return "", err
	}

	var created struct {
		Value     Session `json:"value"`
		SessionID string  `json:"sessionId"`
	}
	if err := json.Unmarshal(resp, &created); err != nil {
		return "", fmt.Errorf("failed to parse session response: %w", err)
	}

	// The id shows up in either slot depending on WDA version.
	id := created.Value.SessionID
	if id == "" {
		id = created.SessionID
	}
	if id == "" {
		return "", fmt.Errorf("WDA returned no session id")
	}

	c.sessionID = id
	return id, nil
}

// DeleteSession tears down the active session, if any.
func (c *Client) DeleteSession(ctx context.Context) error {
	c.mu.Lock()
	id := c.sessionID
	c.sessionID = ""
	c.mu.Unlock()

	if id == "" {
		return nil
	}
	_, err := c.delete(ctx, "/session/"+id)
	return err
}

// Source returns the UI hierarchy of the current screen as XML.
func (c *Client) Source(ctx context.Context) (string, error) {
	id, err := c.EnsureSession(ctx)
	if err != nil {
		return "", err
	}

	resp, err := c.get(ctx, fmt.Sprintf("/session/%s/source", id))
	if err != nil {
		return "", err
	}

	var source struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(resp, &source); err != nil {
		return "", fmt.Errorf("failed to parse source response: %w", err)
	}
	return source.Value, nil
}

// WindowSize returns the active window dimensions.
func (c *Client) WindowSize(ctx context.Context) (*WindowSize, error) {
	id, err := c.EnsureSession(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := c.get(ctx, fmt.Sprintf("/session/%s/window/size", id))
	if err != nil {
		return nil, err
	}

	var size struct {
		Value WindowSize `json:"value"`
	}
	if err := json.Unmarshal(resp, &size); err != nil {
		return nil, fmt.Errorf("failed to parse window size response: %w", err)
	}
	return &size.Value, nil
}

// Orientation returns the device orientation string (e.g. PORTRAIT,
// LANDSCAPE).
func (c *Client) Orientation(ctx context.Context) (string, error) {
	id, err := c.EnsureSession(ctx)
	if err != nil {
		return "", err
	}

	resp, err := c.get(ctx, fmt.Sprintf("/session/%s/orientation", id))
	if err != nil {
		return "", err
	}

	var orientation struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(resp, &orientation); err != nil {
		return "", fmt.Errorf("failed to parse orientation response: %w", err)
	}
	return orientation.Value, nil
}

// FindElements finds all elements matching the locator strategy.
// using can be: "accessibility id", "class name", "name", "xpath",
// "predicate string".
func (c *Client) FindElements(ctx context.Context, using, value string) ([]Element, error) {
	id, err := c.EnsureSession(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := c.post(ctx, fmt.Sprintf("/session/%s/elements", id), findElementRequest{Using: using, Value: value})
	if err != nil {
		return nil, err
	}

	var elems struct {
		Value []Element `json:"value"`
	}
	if err := json.Unmarshal(resp, &elems); err != nil {
		return nil, fmt.Errorf("failed to parse elements response: %w", err)
	}
	return elems.Value, nil
}

// ElementAttributes fetches the detail set of one element.
func (c *Client) ElementAttributes(ctx context.Context, elementID string) (*Attributes, error) {
	id, err := c.EnsureSession(ctx)
	if err != nil {
		return nil, err
	}

	attrs := &Attributes{}
	for _, name := range []string{"type", "name", "label", "value", "enabled"} {
		resp, err := c.get(ctx, fmt.Sprintf("/session/%s/element/%s/attribute/%s", id, elementID, name))
		if err != nil {
			return nil, err
		}
		var attr struct {
			Value any `json:"value"`
		}
		if err := json.Unmarshal(resp, &attr); err != nil {
			return nil, fmt.Errorf("failed to parse attribute response: %w", err)
		}
		if attr.Value == nil {
			continue
		}
		switch name {
		case "type":
			attrs.Type = fmt.Sprintf("%v", attr.Value)
		case "name":
			attrs.Name = fmt.Sprintf("%v", attr.Value)
		case "label":
			attrs.Label = fmt.Sprintf("%v", attr.Value)
		case "value":
			attrs.Value = fmt.Sprintf("%v", attr.Value)
		case "enabled":
			if b, ok := attr.Value.(bool); ok {
				attrs.Enabled = b
			} else {
				attrs.Enabled = fmt.Sprintf("%v", attr.Value) == "true"
			}
		}
	}

	rect, err := c.ElementRect(ctx, elementID)
	if err != nil {
		return nil, err
	}
	attrs.Rect = *rect

	return attrs, nil
}

// ElementRect returns the bounding rectangle of an element.
func (c *Client) ElementRect(ctx context.Context, elementID string) (*Rect, error) {
	id, err := c.EnsureSession(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := c.get(ctx, fmt.Sprintf("/session/%s/element/%s/rect", id, elementID))
	if err != nil {
		return nil, err
	}

	var rect struct {
		Value Rect `json:"value"`
	}
	if err := json.Unmarshal(resp, &rect); err != nil {
		return nil, fmt.Errorf("failed to parse rect response: %w", err)
	}
	return &rect.Value, nil
}

// Tap taps at screen coordinates.
func (c *Client) Tap(ctx context.Context, x, y int) error {
	id, err := c.EnsureSession(ctx)
	if err != nil {
		return err
	}

	_, err = c.post(ctx, fmt.Sprintf("/session/%s/wda/tap/0", id), map[string]any{"x": x, "y": y})
	return err
}

// Drag performs a drag from one point to another over the given duration.
func (c *Client) Drag(ctx context.Context, fromX, fromY, toX, toY int, duration time.Duration) error {
	id, err := c.EnsureSession(ctx)
	if err != nil {
		return err
	}

	body := map[string]any{
		"fromX":    fromX,
		"fromY":    fromY,
		"toX":      toX,
		"toY":      toY,
		"duration": duration.Seconds(),
	}
	_, err = c.post(ctx, fmt.Sprintf("/session/%s/wda/dragfromtoforduration", id), body)
	return err
}

// SendKeys types text into the focused element. WDA wants the text as an
// array of characters.
func (c *Client) SendKeys(ctx context.Context, text string) error {
	id, err := c.EnsureSession(ctx)
	if err != nil {
		return err
	}

	chars := make([]string, 0, len(text))
	for _, r := range text {
		chars = append(chars, string(r))
	}

	_, err = c.post(ctx, fmt.Sprintf("/session/%s/wda/keys", id), map[string]any{"value": chars})
	return err
}

// PressButton presses a hardware button: "home", "volumeUp", "volumeDown".
func (c *Client) PressButton(ctx context.Context, name string) error {
	id, err := c.EnsureSession(ctx)
	if err != nil {
		return err
	}

	_, err = c.post(ctx, fmt.Sprintf("/session/%s/wda/pressButton", id), map[string]any{"name": name})
	return err
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.doRequest(req)
}

func (c *Client) post(ctx context.Context, path string, body any) ([]byte, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.doRequest(req)
}

func (c *Client) delete(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.doRequest(req)
}

func (c *Client) doRequest(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Value struct {
				Message string `json:"message"`
				Error   string `json:"error"`
			} `json:"value"`
		}
		if json.Unmarshal(body, &errResp) == nil {
			msg := errResp.Value.Message
			if msg == "" {
				msg = errResp.Value.Error
			}
			if msg != "" {
				return nil, fmt.Errorf("WDA error: %s", msg)
			}
		}
		return nil, fmt.Errorf("WDA request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return body, nil
}
