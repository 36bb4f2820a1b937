package tools

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/notexe/mobile-agent/internal/rpc"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := testConfig()
	registry := newTestRegistry(t, &fakeBackend{})
	srv := NewServer(cfg, registry, testLogger())

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postRPC(t *testing.T, ts *httptest.Server, body string) rpc.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+"/rpc", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	defer resp.Body.Close()

	var decoded rpc.Response
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return decoded
}

func TestServerHandlesCall(t *testing.T) {
	ts := newTestServer(t)

	decoded := postRPC(t, ts, `{"jsonrpc":"2.0","method":"device.list","id":1}`)
	if decoded.Err != nil {
		t.Fatalf("error = %v", decoded.Err)
	}
	if decoded.JSONRPC != "2.0" {
		t.Errorf("jsonrpc = %q, want 2.0", decoded.JSONRPC)
	}
	if id, ok := decoded.ID.(float64); !ok || id != 1 {
		t.Errorf("id = %v, want 1", decoded.ID)
	}
}

func TestServerParseError(t *testing.T) {
	ts := newTestServer(t)

	decoded := postRPC(t, ts, `{broken`)
	if decoded.Err == nil || decoded.Err.Code != rpc.CodeParseError {
		t.Fatalf("error = %+v, want code %d", decoded.Err, rpc.CodeParseError)
	}
	if decoded.ID != nil {
		t.Errorf("id = %v, want null", decoded.ID)
	}
}

func TestServerInvalidRequest(t *testing.T) {
	ts := newTestServer(t)

	for _, body := range []string{`[1,2]`, `{"id":5}`, `"hello"`} {
		decoded := postRPC(t, ts, body)
		if decoded.Err == nil || decoded.Err.Code != rpc.CodeInvalidRequest {
			t.Errorf("body %q: error = %+v, want code %d", body, decoded.Err, rpc.CodeInvalidRequest)
		}
	}
}

func TestServerMethodNotFound(t *testing.T) {
	ts := newTestServer(t)

	decoded := postRPC(t, ts, `{"jsonrpc":"2.0","method":"no.such.tool","id":"a"}`)
	if decoded.Err == nil || decoded.Err.Code != rpc.CodeMethodNotFound {
		t.Fatalf("error = %+v, want code %d", decoded.Err, rpc.CodeMethodNotFound)
	}
	if decoded.ID != "a" {
		t.Errorf("id = %v, want a", decoded.ID)
	}
}

func TestServerRejectsGetOnRPC(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/rpc")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusMethodNotAllowed)
	}
}

func TestServerHealth(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	defer resp.Body.Close()

	var health map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if health["status"] != "ok" {
		t.Errorf("status = %q, want ok", health["status"])
	}
	if health["server"] != "mobile-agent" {
		t.Errorf("server = %q, want mobile-agent", health["server"])
	}
	if health["version"] == "" {
		t.Error("version must be non-blank")
	}
}
