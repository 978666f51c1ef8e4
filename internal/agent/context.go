package agent

import (
	"time"

	"heritage/internal/logger"
)

// State is the position of an invocation in the orchestration loop.
type State int

const (
	AwaitingModel State = iota
	DispatchingTools
	Done
)

func (s State) String() string {
	switch s {
	case AwaitingModel:
		return "awaiting_model"
	case DispatchingTools:
		return "dispatching_tools"
	case Done:
		return "done"
	}
	return "unknown"
}

// ExecutionContext tracks the execution state of one invocation
type ExecutionContext struct {
	RunID         string
	Logger        *logger.Logger
	StartTime     time.Time
	State         State
	Round         int
	ToolCallCount int
}

func NewExecutionContext(runID string, log *logger.Logger) *ExecutionContext {
	return &ExecutionContext{
		RunID:     runID,
		Logger:    log,
		StartTime: time.Now(),
		State:     AwaitingModel,
	}
}

// Transition moves to the next state and logs it at debug level.
func (c *ExecutionContext) Transition(next State) {
	if c.State != next {
		c.Logger.Debug("round %d: %s -> %s", c.Round, c.State, next)
	}
	c.State = next
}
