package handlers

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"heritage/internal/hook"
)

// ToolConfirmHandler prompts the operator before a tool is dispatched.
type ToolConfirmHandler struct {
	scanner   *bufio.Scanner
	writer    io.Writer
	toolNames map[string]bool // Only confirm these tools (empty = all)
}

// NewToolConfirmHandler creates a handler reading answers from stdin.
func NewToolConfirmHandler(tools ...string) *ToolConfirmHandler {
	return NewToolConfirmHandlerWithIO(os.Stdin, os.Stderr, tools...)
}

// NewToolConfirmHandlerWithIO creates a handler with custom IO (for testing)
func NewToolConfirmHandlerWithIO(reader io.Reader, writer io.Writer, tools ...string) *ToolConfirmHandler {
	toolNames := make(map[string]bool)
	for _, t := range tools {
		toolNames[t] = true
	}
	return &ToolConfirmHandler{
		scanner:   bufio.NewScanner(reader),
		writer:    writer,
		toolNames: toolNames,
	}
}

func (h *ToolConfirmHandler) Name() string {
	return "tool_confirm"
}

func (h *ToolConfirmHandler) Points() []hook.Point {
	return []hook.Point{hook.BeforeToolExecution}
}

func (h *ToolConfirmHandler) Priority() int {
	return 100
}

func (h *ToolConfirmHandler) Handle(ctx context.Context, e *hook.Event) (hook.Decision, error) {
	if len(h.toolNames) > 0 && !h.toolNames[e.Tool] {
		return hook.Allow(), nil
	}

	fmt.Fprintf(h.writer, "\n\033[33mTool '%s' requires confirmation:\033[0m\n", e.Tool)
	if e.Params != "" {
		fmt.Fprintf(h.writer, "    Parameters: %s\n", e.Params)
	}
	fmt.Fprintf(h.writer, "Allow? [y/N]: ")

	if !h.scanner.Scan() {
		return hook.Deny("no input received"), nil
	}

	switch strings.TrimSpace(strings.ToLower(h.scanner.Text())) {
	case "y", "yes":
		fmt.Fprintf(h.writer, "\033[32mAllowed\033[0m\n\n")
		return hook.Allow(), nil
	default:
		fmt.Fprintf(h.writer, "\033[31mDenied\033[0m\n\n")
		return hook.Deny("operator denied tool execution"), nil
	}
}
