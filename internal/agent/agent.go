package agent

import (
	"context"
	"errors"

	"heritage/internal/hook"
	"heritage/internal/llm"
	"heritage/internal/logger"
	"heritage/internal/tool"
)

// MaxToolRounds caps the model rounds that may request tools. When the cap is
// reached with calls still pending, one more model call is made with tools
// disabled.
const MaxToolRounds = 3

// ErrEmptyRequest is returned when an invocation carries no request text.
var ErrEmptyRequest = errors.New("request is empty")

type Agent interface {
	Run(ctx context.Context, input *Input) (*Output, error)
}

// InvocationContext holds caller-selected values that replace whatever the
// model proposes for the matching tool arguments.
type InvocationContext struct {
	Location          string
	StructureName     string
	VisualizationType string
}

type Input struct {
	Request string
	Context InvocationContext

	// Logger overrides the agent's logger for this run.
	Logger *logger.Logger
	// Handlers are registered for this run only, after the agent's own.
	Handlers []hook.Handler
}

type Output struct {
	RunID     string
	Narrative string
	// Results maps a tool name to the decoded payload of its latest call.
	Results   map[string]map[string]any
	Messages  []llm.Message
	ToolCalls []*tool.CallResult
	Rounds    int
	// Truncated is set when the round cap forced a final answer.
	Truncated bool
}

type Config struct {
	SystemPrompt      string
	Temperature       float32
	MaxTokens         int
	ToolExecutionMode tool.ExecutionMode
}
