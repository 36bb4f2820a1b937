// Command mobile-agent-mcp exposes the mobile automation tools as an MCP
// server over stdio.
//
// Every JSON-RPC method of mobile-agent becomes an MCP tool (device.list
// is published as device_list, and so on). Arguments are passed through to
// the same registry the HTTP server uses, so behavior and error taxonomy
// are identical.
//
// Usage:
//
//	./mobile-agent-mcp                  # Start MCP server (stdio)
//	./mobile-agent-mcp --config <path>  # Use an alternate config file
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/notexe/mobile-agent/internal/config"
	"github.com/notexe/mobile-agent/internal/device"
	"github.com/notexe/mobile-agent/internal/logging"
	"github.com/notexe/mobile-agent/internal/rpc"
	"github.com/notexe/mobile-agent/internal/tools"
)

func main() {
	configPath := config.GetDefaultConfigPath()

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--config":
			if i+1 >= len(args) {
				fmt.Fprintln(os.Stderr, "--config requires a path")
				os.Exit(1)
			}
			i++
			configPath = args[i]
		default:
			fmt.Fprintf(os.Stderr, "unknown flag: %s\n", args[i])
			os.Exit(1)
		}
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	log := logging.Setup(cfg.Log.Level)

	backend, err := device.NewBackend(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "backend error: %v\n", err)
		os.Exit(1)
	}

	registry := tools.NewRegistry(cfg.ToolTimeout(), log)
	svc := tools.NewService(backend, cfg, log)
	svc.RegisterAll(registry)

	mcpServer := server.NewMCPServer(
		cfg.Server.Name,
		cfg.Server.Version,
		server.WithToolCapabilities(false),
	)

	for _, m := range registry.Methods() {
		mcpServer.AddTool(
			mcp.NewTool(strings.ReplaceAll(m.Name, ".", "_"),
				mcp.WithDescription(m.Description),
			),
			dispatchHandler(registry, m.Name),
		)
	}

	if err := server.ServeStdio(mcpServer); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

// dispatchHandler bridges an MCP tool call onto the JSON-RPC registry.
// Parameter validation happens inside the handlers, so a bad argument
// surfaces as the same INVALID_PARAMS message the HTTP server would return.
func dispatchHandler(registry *tools.Registry, method string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		resp := registry.Dispatch(ctx, &rpc.Request{
			JSONRPC: rpc.Version,
			Method:  method,
			Params:  rpc.Params(req.GetArguments()),
		})
		if resp.Err != nil {
			return mcp.NewToolResultError(resp.Err.Message), nil
		}

		output, err := json.MarshalIndent(resp.Result, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to format output: %v", err)), nil
		}
		return mcp.NewToolResultText(string(output)), nil
	}
}
