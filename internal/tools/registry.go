// Package tools maps JSON-RPC method names onto automation handlers and
// hosts the HTTP transport above them.
package tools

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/notexe/mobile-agent/internal/result"
	"github.com/notexe/mobile-agent/internal/rpc"
)

// Handler executes one tool call. It returns either a result or an RPC
// error, never both.
type Handler func(ctx context.Context, p rpc.Params) (result.Result, *rpc.Error)

// Method describes a registered tool for introspection surfaces (MCP
// adapter, shell help).
type Method struct {
	Name        string
	Description string
	Mutating    bool
}

type entry struct {
	handler Handler
	method  Method
}

// Registry routes method names to handlers. Registration happens once at
// startup; dispatch is read-only and safe for concurrent use.
type Registry struct {
	methods     map[string]entry
	toolTimeout time.Duration
	log         *slog.Logger
}

func NewRegistry(toolTimeout time.Duration, log *slog.Logger) *Registry {
	return &Registry{
		methods:     make(map[string]entry),
		toolTimeout: toolTimeout,
		log:         log,
	}
}

// Register adds a handler. Mutating marks methods that change device state
// and are therefore not idempotent.
func (r *Registry) Register(name, description string, mutating bool, h Handler) {
	r.methods[name] = entry{
		handler: h,
		method:  Method{Name: name, Description: description, Mutating: mutating},
	}
}

// Methods lists registered tools in name order.
func (r *Registry) Methods() []Method {
	out := make([]Method, 0, len(r.methods))
	for _, e := range r.methods {
		out = append(out, e.method)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// RegisterIntrospection exposes the registered method names as a tool of
// their own, so clients can discover the surface without out-of-band docs.
func (r *Registry) RegisterIntrospection() {
	r.Register("agent.methods", "List registered tool methods", false,
		func(ctx context.Context, p rpc.Params) (result.Result, *rpc.Error) {
			methods := r.Methods()
			names := make([]string, 0, len(methods))
			for _, m := range methods {
				names = append(names, m.Name)
			}
			return result.StringList{Success: true, Key: "methods", Values: names}, nil
		})
}

// Dispatch resolves and runs one request. Unknown methods, handler panics
// and invariant-violating results all come back as error envelopes; nothing
// escapes to the transport.
func (r *Registry) Dispatch(ctx context.Context, req *rpc.Request) rpc.Response {
	e, ok := r.methods[req.Method]
	if !ok {
		return rpc.NewError(rpc.MethodNotFound(req.Method), req.ID)
	}

	tctx, cancel := context.WithTimeout(ctx, r.toolTimeout)
	defer cancel()

	res, rpcErr := r.invoke(tctx, e, req)
	if rpcErr != nil {
		return rpc.NewError(rpcErr, req.ID)
	}

	if err := res.Validate(); err != nil {
		r.log.Error("handler produced invalid result", "method", req.Method, "error", err)
		return rpc.NewError(rpc.InternalError("inconsistent result"), req.ID)
	}

	return rpc.NewResult(res.ToMap(), req.ID)
}

// invoke runs the handler with panic containment. A panicking handler must
// not take the server down over a single bad request.
func (r *Registry) invoke(ctx context.Context, e entry, req *rpc.Request) (res result.Result, rpcErr *rpc.Error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("handler panicked", "method", req.Method, "panic", rec)
			res = nil
			rpcErr = rpc.InternalError("unexpected fault handling request")
		}
	}()

	return e.handler(ctx, req.Params)
}
