// Command mobile-shell is an interactive client for a running mobile-agent
// server. It sends JSON-RPC calls typed at a prompt and pretty-prints the
// responses.
//
// Usage:
//
//	./mobile-shell                          # Connect to the default address
//	./mobile-shell -addr http://host:7920   # Connect elsewhere
//
// Inside the shell, type a method name followed by optional JSON params:
//
//	mobile> device.list
//	mobile> ui.tap {"x": 540, "y": 1200}
//
// Type /help for built-in commands.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/notexe/mobile-agent/internal/shell"
)

func main() {
	addr := flag.String("addr", "http://127.0.0.1:7920", "mobile-agent base URL")
	timeout := flag.Duration("timeout", 30*time.Second, "request timeout")
	flag.Parse()

	client := shell.NewClient(*addr, *timeout)

	repl, err := shell.NewREPL(client, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start shell: %v\n", err)
		os.Exit(1)
	}

	if err := repl.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "shell error: %v\n", err)
		os.Exit(1)
	}
}
