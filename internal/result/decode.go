package result

// Decoders for wire maps, used by clients consuming agent responses. Absent
// optional keys decode to zero values / nil, mirroring the omission rule in
// ToMap.

func OperationFromMap(m map[string]any) Operation {
	return Operation{
		Success: mapBool(m, "success"),
		Err:     mapString(m, "error"),
	}
}

func UIHierarchyFromMap(m map[string]any) UIHierarchy {
	return UIHierarchy{
		Success:   mapBool(m, "success"),
		Hierarchy: mapString(m, "hierarchy"),
		Err:       mapString(m, "error"),
	}
}

func DeviceInfoFromMap(m map[string]any) DeviceInfo {
	return DeviceInfo{
		Width:     mapInt(m, "width"),
		Height:    mapInt(m, "height"),
		Rotation:  mapInt(m, "rotation"),
		Product:   mapString(m, "product"),
		OSVersion: mapString(m, "osVersion"),
		Success:   mapBool(m, "success"),
		Err:       mapString(m, "error"),
	}
}

func ElementFromMap(m map[string]any) Element {
	e := Element{
		Found:      mapBool(m, "found"),
		Text:       mapString(m, "text"),
		Identifier: mapString(m, "identifier"),
		Type:       mapString(m, "type"),
		Label:      mapString(m, "label"),
		Value:      mapString(m, "value"),
		Err:        mapString(m, "error"),
	}
	if b, ok := m["bounds"].(map[string]any); ok {
		e.Bounds = &Bounds{
			X:      mapInt(b, "x"),
			Y:      mapInt(b, "y"),
			Width:  mapInt(b, "width"),
			Height: mapInt(b, "height"),
		}
	}
	if v, ok := m["enabled"].(bool); ok {
		enabled := v
		e.Enabled = &enabled
	}
	return e
}

func ElementListFromMap(m map[string]any) ElementList {
	l := ElementList{
		Success: mapBool(m, "success"),
		Err:     mapString(m, "error"),
	}
	switch elems := m["elements"].(type) {
	case []map[string]any:
		for _, em := range elems {
			l.Elements = append(l.Elements, ElementFromMap(em))
		}
	case []any:
		for _, v := range elems {
			if em, ok := v.(map[string]any); ok {
				l.Elements = append(l.Elements, ElementFromMap(em))
			}
		}
	}
	return l
}

func mapString(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func mapBool(m map[string]any, key string) bool {
	b, _ := m[key].(bool)
	return b
}

func mapInt(m map[string]any, key string) int {
	switch n := m[key].(type) {
	case int:
		return n
	case float64:
		return int(n)
	}
	return 0
}
