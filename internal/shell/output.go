package shell

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/notexe/mobile-agent/internal/rpc"
)

var (
	methodStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("81")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("114"))
)

// FormatResponse renders a response envelope for the terminal: green
// pretty-printed result payloads, red error lines with the wire code.
func FormatResponse(resp *rpc.Response) string {
	if resp.Err != nil {
		return errorStyle.Render(fmt.Sprintf("error %d: %s", resp.Err.Code, resp.Err.Message))
	}

	pretty, err := json.MarshalIndent(resp.Result, "", "  ")
	if err != nil {
		return successStyle.Render(fmt.Sprintf("%v", resp.Result))
	}
	return successStyle.Render(string(pretty))
}

// RenderMarkdown renders help text through glamour, falling back to the raw
// markdown when the terminal profile cannot be established.
func RenderMarkdown(md string) string {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}
