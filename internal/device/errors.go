package device

import "fmt"

// ResolutionError reports that a target device could not be resolved, e.g.
// the enumeration came back empty or an explicit id is not attached. The
// dispatcher maps it to the device error code.
type ResolutionError struct {
	Reason string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("device resolution failed: %s", e.Reason)
}

// OpError wraps a backend failure with the operation name and the device it
// targeted, so callers can retry or escalate. The dispatcher maps it to the
// automation error code.
type OpError struct {
	Op       string
	DeviceID string
	Err      error
}

func (e *OpError) Error() string {
	if e.DeviceID != "" {
		return fmt.Sprintf("%s failed on device %s: %v", e.Op, e.DeviceID, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }
