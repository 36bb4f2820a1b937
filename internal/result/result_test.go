package result

import (
	"reflect"
	"testing"
)

func TestOperationToMap(t *testing.T) {
	m := OK().ToMap()
	if m["success"] != true {
		t.Errorf("success = %v, want true", m["success"])
	}
	if _, present := m["error"]; present {
		t.Error("successful operation must omit the error key entirely")
	}

	m = Failed("device unreachable").ToMap()
	if m["success"] != false {
		t.Errorf("success = %v, want false", m["success"])
	}
	if m["error"] != "device unreachable" {
		t.Errorf("error = %v, want device unreachable", m["error"])
	}
}

func TestValidateSuccessErrorExclusivity(t *testing.T) {
	if err := (Operation{Success: false}).Validate(); err == nil {
		t.Error("failure without an error message must not validate")
	}
	if err := (Operation{Success: true, Err: "boom"}).Validate(); err == nil {
		t.Error("success with an error message must not validate")
	}
	if err := OK().Validate(); err != nil {
		t.Errorf("OK().Validate() = %v", err)
	}
	if err := Failed("reason").Validate(); err != nil {
		t.Errorf("Failed().Validate() = %v", err)
	}
}

func TestElementOmitsAbsentOptionals(t *testing.T) {
	m := Element{Found: true, Text: "Login"}.ToMap()

	if m["found"] != true || m["text"] != "Login" {
		t.Fatalf("ToMap() = %v", m)
	}
	for _, key := range []string{"identifier", "type", "label", "value", "bounds", "enabled", "error"} {
		if _, present := m[key]; present {
			t.Errorf("absent optional %q must be omitted, got %v", key, m[key])
		}
	}
}

func TestElementNotFoundIsValid(t *testing.T) {
	// A clean miss is a result, not a failure.
	if err := (Element{Found: false}).Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
	if err := (Element{Found: true, Err: "lookup failed"}).Validate(); err == nil {
		t.Error("found=true with an error must not validate")
	}
}

func TestElementRoundTrip(t *testing.T) {
	enabled := true
	in := Element{
		Found:      true,
		Text:       "Submit",
		Identifier: "com.example:id/submit",
		Type:       "android.widget.Button",
		Bounds:     &Bounds{X: 10, Y: 20, Width: 100, Height: 40},
		Enabled:    &enabled,
	}

	out := ElementFromMap(in.ToMap())
	if !reflect.DeepEqual(in, out) {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}
}

func TestElementListCountMirrorsLength(t *testing.T) {
	list := ElementList{Success: true, Elements: []Element{
		{Found: true, Text: "a"},
		{Found: true, Text: "b"},
	}}

	m := list.ToMap()
	if m["count"] != 2 {
		t.Errorf("count = %v, want 2", m["count"])
	}

	empty := ElementList{Success: true}.ToMap()
	if empty["count"] != 0 {
		t.Errorf("count = %v, want 0", empty["count"])
	}
	if elems, ok := empty["elements"].([]map[string]any); !ok || elems == nil {
		t.Errorf("elements = %v, want empty non-nil slice", empty["elements"])
	}
}

func TestDeviceInfoToMap(t *testing.T) {
	m := DeviceInfo{Width: 1080, Height: 2400, Rotation: 1, Success: true}.ToMap()

	if m["width"] != 1080 || m["height"] != 2400 || m["rotation"] != 1 {
		t.Errorf("ToMap() = %v", m)
	}
	for _, key := range []string{"product", "osVersion", "error"} {
		if _, present := m[key]; present {
			t.Errorf("absent optional %q must be omitted", key)
		}
	}

	out := DeviceInfoFromMap(m)
	if out.Width != 1080 || out.Height != 2400 || !out.Success {
		t.Errorf("DeviceInfoFromMap() = %+v", out)
	}
}

func TestUIHierarchyRoundTrip(t *testing.T) {
	in := UIHierarchy{Success: true, Hierarchy: "<hierarchy/>"}
	out := UIHierarchyFromMap(in.ToMap())
	if out != in {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}
}

func TestStringListPayloadKey(t *testing.T) {
	l := StringList{Success: true, Key: "packages", Values: []string{"com.a", "com.b"}}
	m := l.ToMap()

	if got, ok := m["packages"].([]string); !ok || len(got) != 2 {
		t.Errorf("packages = %v, want two entries", m["packages"])
	}
	if m["count"] != 2 {
		t.Errorf("count = %v, want 2", m["count"])
	}

	if err := (StringList{Success: true}).Validate(); err == nil {
		t.Error("StringList without a payload key must not validate")
	}
}

func TestTextOmitsEmptyValue(t *testing.T) {
	m := Text{Success: false, Key: "output", Err: "command failed"}.ToMap()
	if _, present := m["output"]; present {
		t.Error("empty payload must be omitted")
	}
	if m["error"] != "command failed" {
		t.Errorf("error = %v", m["error"])
	}
}
