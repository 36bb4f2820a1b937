package shell

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

const helpText = `# mobile-shell

Interactive client for a running mobile-agent.

## Usage

  <method> [json-params]   call a tool, e.g. ` + "`ui.tap {\"x\": 100, \"y\": 200}`" + `
  /methods                 list available tool methods
  /health                  probe the agent liveness endpoint
  /help                    show this help
  /quit                    exit

Parameters are a single JSON object. Methods that target a device accept an
optional ` + "`device`" + ` key; omitting it selects the first available device.
`

// REPL drives the interactive loop.
type REPL struct {
	client *Client
	rl     *readline.Instance
	out    io.Writer
}

func NewREPL(client *Client, out io.Writer) (*REPL, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            "mobile> ",
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return nil, err
	}

	return &REPL{client: client, rl: rl, out: out}, nil
}

// Run loops until /quit or EOF.
func (r *REPL) Run(ctx context.Context) error {
	defer r.rl.Close()

	fmt.Fprintln(r.out, RenderMarkdown(helpText))

	for {
		line, err := r.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				return nil
			}
			return err
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			if done := r.runCommand(ctx, input); done {
				return nil
			}
			continue
		}

		r.runCall(ctx, input)
	}
}

func (r *REPL) runCommand(ctx context.Context, input string) bool {
	switch strings.ToLower(strings.Fields(input)[0]) {
	case "/quit", "/exit":
		return true
	case "/help":
		fmt.Fprintln(r.out, RenderMarkdown(helpText))
	case "/health":
		status, err := r.client.Health(ctx)
		if err != nil {
			fmt.Fprintln(r.out, errorStyle.Render(err.Error()))
			return false
		}
		fmt.Fprintf(r.out, "%s %s (%s)\n",
			successStyle.Render(status["status"]), status["server"], status["version"])
	case "/methods":
		r.listMethods(ctx)
	default:
		fmt.Fprintln(r.out, errorStyle.Render("unknown command: "+input))
	}
	return false
}

// listMethods asks the agent itself; an unknown-method error still names the
// probe, so any reachable agent answers something useful.
func (r *REPL) listMethods(ctx context.Context) {
	resp, err := r.client.Call(ctx, "agent.methods", nil)
	if err != nil {
		fmt.Fprintln(r.out, errorStyle.Render(err.Error()))
		return
	}
	fmt.Fprintln(r.out, FormatResponse(resp))
}

func (r *REPL) runCall(ctx context.Context, input string) {
	method, rest, _ := strings.Cut(input, " ")

	var params map[string]any
	rest = strings.TrimSpace(rest)
	if rest != "" {
		if err := json.Unmarshal([]byte(rest), &params); err != nil {
			fmt.Fprintln(r.out, errorStyle.Render("parameters must be a JSON object: "+err.Error()))
			return
		}
	}

	resp, err := r.client.Call(ctx, method, params)
	if err != nil {
		fmt.Fprintln(r.out, errorStyle.Render(err.Error()))
		return
	}
	fmt.Fprintln(r.out, methodStyle.Render(method))
	fmt.Fprintln(r.out, FormatResponse(resp))
}
