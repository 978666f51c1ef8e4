package handlers

import (
	"context"

	"heritage/internal/hook"
	"heritage/internal/logger"
)

// Logging writes model rounds and tool activity to a logger.
type Logging struct {
	log *logger.Logger
}

func NewLogging(log *logger.Logger) *Logging {
	return &Logging{log: log}
}

func (h *Logging) Name() string {
	return "logging"
}

func (h *Logging) Points() []hook.Point {
	return []hook.Point{hook.BeforeModelCall, hook.BeforeToolExecution, hook.AfterToolExecution}
}

func (h *Logging) Priority() int {
	return 0
}

func (h *Logging) Handle(ctx context.Context, e *hook.Event) (hook.Decision, error) {
	switch e.Point {
	case hook.BeforeModelCall:
		messages, _ := e.Attr("messages").(int)
		choice, _ := e.Attr("tool_choice").(string)
		h.log.Debug("model round %d: %d messages, tool_choice=%s", e.Turn, messages, choice)
	case hook.BeforeToolExecution:
		h.log.ToolCall(e.Turn, e.Tool, e.Params)
	case hook.AfterToolExecution:
		h.log.ToolResult(e.Tool, e.Status, e.Duration)
	}
	return hook.Allow(), nil
}
