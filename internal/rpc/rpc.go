// Package rpc implements the JSON-RPC 2.0 envelope used by the agent:
// request parsing, the error code taxonomy, and response construction.
// It is transport-agnostic; the HTTP framing lives in internal/tools.
package rpc

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Version is the protocol tag stamped on every response.
const Version = "2.0"

// Standard JSON-RPC error codes plus the agent's domain range. These are
// wire constants shared with other implementations and must not change.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603

	CodeAutomationError = -32000
	CodeDeviceError     = -32001
)

// Parse failure classification. ErrMalformed means the bytes were not valid
// JSON at all; ErrInvalidRequest means valid JSON of the wrong shape.
var (
	ErrMalformed      = errors.New("malformed JSON")
	ErrInvalidRequest = errors.New("invalid request object")
)

// Request is a decoded JSON-RPC request. ID keeps whatever the caller sent
// (string, number, or nil) so it can round-trip into the response.
type Request struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  Params `json:"params,omitempty"`
	ID      any    `json:"id"`
}

// Error is a JSON-RPC error object.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Response is a JSON-RPC response envelope. Result and Err are mutually
// exclusive; ID is always serialized, substituting null when absent.
type Response struct {
	JSONRPC string `json:"jsonrpc"`
	Result  any    `json:"result,omitempty"`
	Err     *Error `json:"error,omitempty"`
	ID      any    `json:"id"`
}

// Parse decodes raw bytes into a Request. It never panics on bad input:
// non-JSON bytes return ErrMalformed, and well-formed JSON that is not an
// object with a non-empty string method returns ErrInvalidRequest.
func Parse(data []byte) (*Request, error) {
	var probe any
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, ErrMalformed
	}

	obj, ok := probe.(map[string]any)
	if !ok {
		return nil, ErrInvalidRequest
	}

	method, ok := obj["method"].(string)
	if !ok || method == "" {
		return nil, ErrInvalidRequest
	}

	req := &Request{Method: method, ID: obj["id"]}
	if v, ok := obj["jsonrpc"].(string); ok {
		req.JSONRPC = v
	}
	if p, ok := obj["params"].(map[string]any); ok {
		req.Params = Params(p)
	}

	return req, nil
}

// NewResult builds a success envelope carrying result for the given id.
func NewResult(result any, id any) Response {
	return Response{JSONRPC: Version, Result: result, ID: id}
}

// NewError builds a failure envelope for the given id.
func NewError(err *Error, id any) Response {
	return Response{JSONRPC: Version, Err: err, ID: id}
}

// Error constructors. Pure functions so codes and message shapes stay in one
// place.

func ParseError() *Error {
	return &Error{Code: CodeParseError, Message: "parse error"}
}

func InvalidRequest() *Error {
	return &Error{Code: CodeInvalidRequest, Message: "invalid request"}
}

func MethodNotFound(method string) *Error {
	return &Error{Code: CodeMethodNotFound, Message: fmt.Sprintf("method not found: %s", method)}
}

func InvalidParams(detail string) *Error {
	return &Error{Code: CodeInvalidParams, Message: fmt.Sprintf("invalid params: %s", detail)}
}

func InternalError(detail string) *Error {
	return &Error{Code: CodeInternalError, Message: fmt.Sprintf("internal error: %s", detail)}
}

func AutomationError(detail string) *Error {
	return &Error{Code: CodeAutomationError, Message: fmt.Sprintf("automation error: %s", detail)}
}

func DeviceError(detail string) *Error {
	return &Error{Code: CodeDeviceError, Message: fmt.Sprintf("device error: %s", detail)}
}
