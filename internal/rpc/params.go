package rpc

import "strconv"

// Params is the heterogeneous parameter mapping of a request. Extraction is
// deliberately lenient: callers sending "5", 5, or 5.0 for an int parameter
// all get 5. The second return reports whether the key was present and
// coercible; handlers turn false into an invalid-params error before touching
// any device.
type Params map[string]any

// Int extracts an integer. Accepts JSON numbers (floats are truncated) and
// numeric strings.
func (p Params) Int(key string) (int, bool) {
	v, ok := p[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case string:
		if i, err := strconv.Atoi(n); err == nil {
			return i, true
		}
		if f, err := strconv.ParseFloat(n, 64); err == nil {
			return int(f), true
		}
	}
	return 0, false
}

// Float extracts a float. Accepts JSON numbers and numeric strings.
func (p Params) Float(key string) (float64, bool) {
	v, ok := p[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		if f, err := strconv.ParseFloat(n, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// String extracts a string value.
func (p Params) String(key string) (string, bool) {
	v, ok := p[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// StringOr extracts a string, falling back to def when the key is absent or
// not a string.
func (p Params) StringOr(key, def string) string {
	if s, ok := p.String(key); ok {
		return s
	}
	return def
}

// Bool extracts a boolean. Accepts JSON booleans and the strings
// "true"/"false".
func (p Params) Bool(key string) (bool, bool) {
	v, ok := p[key]
	if !ok {
		return false, false
	}
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		if parsed, err := strconv.ParseBool(b); err == nil {
			return parsed, true
		}
	}
	return false, false
}
