package rpc

import "testing"

func TestParamsInt(t *testing.T) {
	p := Params{
		"float":   float64(100),
		"frac":    float64(99.9),
		"str":     "250",
		"strFrac": "3.7",
		"bad":     "abc",
		"bool":    true,
	}

	tests := []struct {
		key  string
		want int
		ok   bool
	}{
		{"float", 100, true},
		{"frac", 99, true},
		{"str", 250, true},
		{"strFrac", 3, true},
		{"bad", 0, false},
		{"bool", 0, false},
		{"missing", 0, false},
	}
	for _, tt := range tests {
		got, ok := p.Int(tt.key)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Int(%q) = (%d, %v), want (%d, %v)", tt.key, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParamsFloat(t *testing.T) {
	p := Params{"n": float64(0.4), "s": "2.5", "bad": "x"}

	if got, ok := p.Float("n"); !ok || got != 0.4 {
		t.Errorf("Float(n) = (%v, %v), want (0.4, true)", got, ok)
	}
	if got, ok := p.Float("s"); !ok || got != 2.5 {
		t.Errorf("Float(s) = (%v, %v), want (2.5, true)", got, ok)
	}
	if _, ok := p.Float("bad"); ok {
		t.Error("Float(bad) ok = true, want false")
	}
}

func TestParamsString(t *testing.T) {
	p := Params{"s": "hello", "n": float64(5)}

	if got, ok := p.String("s"); !ok || got != "hello" {
		t.Errorf("String(s) = (%q, %v), want (hello, true)", got, ok)
	}
	if _, ok := p.String("n"); ok {
		t.Error("String(n) ok = true, want false: numbers do not coerce to strings")
	}
	if got := p.StringOr("missing", "fallback"); got != "fallback" {
		t.Errorf("StringOr(missing) = %q, want fallback", got)
	}
}

func TestParamsBool(t *testing.T) {
	p := Params{"b": true, "s": "true", "bad": "yep"}

	if got, ok := p.Bool("b"); !ok || !got {
		t.Errorf("Bool(b) = (%v, %v), want (true, true)", got, ok)
	}
	if got, ok := p.Bool("s"); !ok || !got {
		t.Errorf("Bool(s) = (%v, %v), want (true, true)", got, ok)
	}
	if _, ok := p.Bool("bad"); ok {
		t.Error("Bool(bad) ok = true, want false")
	}
}
