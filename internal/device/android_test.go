package device

import "testing"

const uiautomatorDump = `<?xml version='1.0' encoding='UTF-8' standalone='yes' ?>
<hierarchy rotation="0">
  <node index="0" text="" resource-id="" class="android.widget.FrameLayout" content-desc="" enabled="true" bounds="[0,0][1080,2400]">
    <node index="0" text="Login" resource-id="com.example:id/login" class="android.widget.Button" content-desc="Login button" enabled="true" bounds="[100,200][500,300]"/>
    <node index="1" text="" resource-id="com.example:id/spinner" class="android.widget.ProgressBar" content-desc="" enabled="false" bounds="[540,1200][600,1260]"/>
  </node>
</hierarchy>`

func TestParseUIAutomatorXML(t *testing.T) {
	elements := parseUIAutomatorXML(uiautomatorDump)
	if len(elements) != 3 {
		t.Fatalf("parsed %d elements, want 3", len(elements))
	}

	login := elements[1]
	if login.Text != "Login" {
		t.Errorf("Text = %q, want Login", login.Text)
	}
	if login.Identifier != "com.example:id/login" {
		t.Errorf("Identifier = %q", login.Identifier)
	}
	if login.Type != "android.widget.Button" {
		t.Errorf("Type = %q", login.Type)
	}
	if login.Label != "Login button" {
		t.Errorf("Label = %q", login.Label)
	}
	if !login.HasBounds || login.X != 100 || login.Y != 200 || login.Width != 400 || login.Height != 100 {
		t.Errorf("bounds = (%d,%d %dx%d, has=%v)", login.X, login.Y, login.Width, login.Height, login.HasBounds)
	}
	if login.Enabled == nil || !*login.Enabled {
		t.Error("Enabled = nil or false, want true")
	}

	spinner := elements[2]
	if spinner.Enabled == nil || *spinner.Enabled {
		t.Error("disabled node must parse as enabled=false")
	}
}

func TestParseUIAutomatorXMLTruncated(t *testing.T) {
	truncated := `<hierarchy><node text="a" bounds="[0,0][10,10]"/><node text="b"`

	elements := parseUIAutomatorXML(truncated)
	if len(elements) != 1 {
		t.Fatalf("parsed %d elements, want the 1 complete node", len(elements))
	}
	if elements[0].Text != "a" {
		t.Errorf("Text = %q, want a", elements[0].Text)
	}
}

func TestParseUIAutomatorXMLGarbage(t *testing.T) {
	if got := parseUIAutomatorXML("not xml at all"); len(got) != 0 {
		t.Errorf("parsed %d elements from garbage, want 0", len(got))
	}
}

func TestQueryMatches(t *testing.T) {
	el := UIElement{Text: "Submit", Label: "Submit form", Identifier: "com.example:id/submit"}

	tests := []struct {
		name string
		q    Query
		want bool
	}{
		{"empty query matches all", Query{}, true},
		{"text match", Query{Text: "Submit"}, true},
		{"label match counts as text", Query{Text: "Submit form"}, true},
		{"text mismatch", Query{Text: "Cancel"}, false},
		{"id match", Query{ID: "com.example:id/submit"}, true},
		{"id mismatch", Query{ID: "com.example:id/cancel"}, false},
		{"both must match", Query{Text: "Submit", ID: "com.example:id/cancel"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.q.Matches(el); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAndroidKeyMap(t *testing.T) {
	for _, button := range []string{"HOME", "BACK", "ENTER", "VOLUME_UP", "VOLUME_DOWN"} {
		if _, ok := androidKeyMap[button]; !ok {
			t.Errorf("androidKeyMap missing %s", button)
		}
	}
}
