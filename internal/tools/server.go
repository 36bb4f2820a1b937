package tools

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/notexe/mobile-agent/internal/config"
	"github.com/notexe/mobile-agent/internal/rpc"
)

const maxRequestBytes = 1 << 20

// Server frames the JSON-RPC envelope over HTTP: POST /rpc for calls and
// GET /healthz for liveness. net/http runs every request on its own
// goroutine, so slow device calls never stall unrelated callers.
type Server struct {
	registry *Registry
	cfg      *config.Config
	log      *slog.Logger
	httpSrv  *http.Server
}

func NewServer(cfg *config.Config, registry *Registry, log *slog.Logger) *Server {
	s := &Server{registry: registry, cfg: cfg, log: log}
	s.httpSrv = &http.Server{
		Addr:              cfg.Server.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler exposes the route table, mainly so tests can drive the server
// through httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /rpc", s.handleRPC)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

func (s *Server) ListenAndServe() error {
	s.log.Info("listening", "addr", s.cfg.Server.Listen,
		"server", s.cfg.Server.Name, "version", s.cfg.Server.Version)
	return s.httpSrv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err != nil {
		s.writeResponse(w, rpc.NewError(rpc.InvalidRequest(), nil))
		return
	}

	req, err := rpc.Parse(body)
	if err != nil {
		if errors.Is(err, rpc.ErrMalformed) {
			s.writeResponse(w, rpc.NewError(rpc.ParseError(), nil))
		} else {
			s.writeResponse(w, rpc.NewError(rpc.InvalidRequest(), nil))
		}
		return
	}

	s.log.Debug("dispatching", "method", req.Method)
	s.writeResponse(w, s.registry.Dispatch(r.Context(), req))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"server":  s.cfg.Server.Name,
		"version": s.cfg.Server.Version,
	})
}

func (s *Server) writeResponse(w http.ResponseWriter, resp rpc.Response) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.Error("failed to write response", "error", err)
	}
}
