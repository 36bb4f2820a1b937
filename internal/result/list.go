package result

import "fmt"

// Wire shapes for the enumeration and report tools. They follow the same
// rules as the core variants: mandatory success flag, error present exactly
// when success is false, optional payloads omitted when empty.

// DeviceEntry is one enumerated device on the wire.
type DeviceEntry struct {
	ID       string
	Name     string
	Platform string
}

// DeviceList reports the device enumeration.
type DeviceList struct {
	Success bool
	Devices []DeviceEntry
	Err     string
}

func (l DeviceList) ToMap() map[string]any {
	devices := make([]map[string]any, 0, len(l.Devices))
	for _, d := range l.Devices {
		devices = append(devices, map[string]any{
			"id":       d.ID,
			"name":     d.Name,
			"platform": d.Platform,
		})
	}
	m := map[string]any{
		"success": l.Success,
		"devices": devices,
		"count":   len(l.Devices),
	}
	if l.Err != "" {
		m["error"] = l.Err
	}
	return m
}

func (l DeviceList) Validate() error {
	return checkSuccessError(l.Success, l.Err)
}

// StringList reports an ordered list of identifiers, e.g. installed
// packages.
type StringList struct {
	Success bool
	Key     string
	Values  []string
	Err     string
}

func (l StringList) ToMap() map[string]any {
	values := l.Values
	if values == nil {
		values = []string{}
	}
	m := map[string]any{
		"success": l.Success,
		l.Key:     values,
		"count":   len(values),
	}
	if l.Err != "" {
		m["error"] = l.Err
	}
	return m
}

func (l StringList) Validate() error {
	if l.Key == "" {
		return fmt.Errorf("string list result requires a payload key")
	}
	return checkSuccessError(l.Success, l.Err)
}

// Text carries a preformatted report or raw command output.
type Text struct {
	Success bool
	Key     string
	Value   string
	Err     string
}

func (t Text) ToMap() map[string]any {
	m := map[string]any{"success": t.Success}
	if t.Value != "" {
		m[t.Key] = t.Value
	}
	if t.Err != "" {
		m["error"] = t.Err
	}
	return m
}

func (t Text) Validate() error {
	if t.Key == "" {
		return fmt.Errorf("text result requires a payload key")
	}
	return checkSuccessError(t.Success, t.Err)
}
