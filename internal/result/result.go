// Package result defines the closed set of result shapes returned by tool
// handlers. Each variant converts to a wire-safe map: mandatory fields are
// always present, optional fields are omitted entirely when unknown rather
// than serialized as null.
package result

import "fmt"

// Result is the common surface of every variant.
type Result interface {
	ToMap() map[string]any
	Validate() error
}

// Operation is the generic outcome of a state-changing call.
type Operation struct {
	Success bool
	Err     string
}

func OK() Operation {
	return Operation{Success: true}
}

func Failed(reason string) Operation {
	return Operation{Err: reason}
}

func (o Operation) ToMap() map[string]any {
	m := map[string]any{"success": o.Success}
	if o.Err != "" {
		m["error"] = o.Err
	}
	return m
}

func (o Operation) Validate() error {
	return checkSuccessError(o.Success, o.Err)
}

// UIHierarchy carries the raw UI tree of the current screen.
type UIHierarchy struct {
	Success   bool
	Hierarchy string
	Err       string
}

func (h UIHierarchy) ToMap() map[string]any {
	m := map[string]any{"success": h.Success}
	if h.Hierarchy != "" {
		m["hierarchy"] = h.Hierarchy
	}
	if h.Err != "" {
		m["error"] = h.Err
	}
	return m
}

func (h UIHierarchy) Validate() error {
	return checkSuccessError(h.Success, h.Err)
}

// DeviceInfo reports display metrics and identity of a device.
type DeviceInfo struct {
	Width     int
	Height    int
	Rotation  int
	Product   string
	OSVersion string
	Success   bool
	Err       string
}

func (d DeviceInfo) ToMap() map[string]any {
	m := map[string]any{
		"success":  d.Success,
		"width":    d.Width,
		"height":   d.Height,
		"rotation": d.Rotation,
	}
	if d.Product != "" {
		m["product"] = d.Product
	}
	if d.OSVersion != "" {
		m["osVersion"] = d.OSVersion
	}
	if d.Err != "" {
		m["error"] = d.Err
	}
	return m
}

func (d DeviceInfo) Validate() error {
	return checkSuccessError(d.Success, d.Err)
}

// Bounds is an element's on-screen rectangle.
type Bounds struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Element describes a single UI element lookup. Found=false with an empty
// error is a legitimate "no such element" outcome, not a failure.
type Element struct {
	Found      bool
	Text       string
	Identifier string
	Type       string
	Label      string
	Value      string
	Bounds     *Bounds
	Enabled    *bool
	Err        string
}

func (e Element) ToMap() map[string]any {
	m := map[string]any{"found": e.Found}
	if e.Text != "" {
		m["text"] = e.Text
	}
	if e.Identifier != "" {
		m["identifier"] = e.Identifier
	}
	if e.Type != "" {
		m["type"] = e.Type
	}
	if e.Label != "" {
		m["label"] = e.Label
	}
	if e.Value != "" {
		m["value"] = e.Value
	}
	if e.Bounds != nil {
		m["bounds"] = map[string]any{
			"x":      e.Bounds.X,
			"y":      e.Bounds.Y,
			"width":  e.Bounds.Width,
			"height": e.Bounds.Height,
		}
	}
	if e.Enabled != nil {
		m["enabled"] = *e.Enabled
	}
	if e.Err != "" {
		m["error"] = e.Err
	}
	return m
}

func (e Element) Validate() error {
	if e.Err != "" && e.Found {
		return fmt.Errorf("element result carries both found=true and error %q", e.Err)
	}
	return nil
}

// ElementList carries an ordered sequence of elements; count always mirrors
// the sequence length.
type ElementList struct {
	Success  bool
	Elements []Element
	Err      string
}

func (l ElementList) ToMap() map[string]any {
	elems := make([]map[string]any, 0, len(l.Elements))
	for _, e := range l.Elements {
		elems = append(elems, e.ToMap())
	}
	m := map[string]any{
		"success":  l.Success,
		"elements": elems,
		"count":    len(l.Elements),
	}
	if l.Err != "" {
		m["error"] = l.Err
	}
	return m
}

func (l ElementList) Validate() error {
	return checkSuccessError(l.Success, l.Err)
}

func checkSuccessError(success bool, errMsg string) error {
	if !success && errMsg == "" {
		return fmt.Errorf("failed result must carry an error message")
	}
	if success && errMsg != "" {
		return fmt.Errorf("successful result must not carry an error message (%q)", errMsg)
	}
	return nil
}
