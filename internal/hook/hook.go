// Package hook lets callers observe an agent run and gate its tool calls.
package hook

import (
	"context"
	"time"
)

// Point names a place in the run where handlers are invoked.
type Point string

const (
	OnAgentStart Point = "on_agent_start"
	OnAgentEnd   Point = "on_agent_end"

	BeforeModelCall Point = "before_model_call"

	// BeforeToolExecution is the only gated point: a denial skips the call.
	BeforeToolExecution Point = "before_tool_execution"
	AfterToolExecution  Point = "after_tool_execution"
)

// Event describes one occurrence at a Point. The tool fields are only set
// for the tool points; Status and Duration only after execution.
type Event struct {
	Point Point
	Time  time.Time
	Turn  int

	Tool     string
	CallID   string
	Params   string
	Status   string
	Duration time.Duration

	Attrs map[string]any
}

func NewEvent(point Point, turn int) *Event {
	return &Event{Point: point, Time: time.Now(), Turn: turn}
}

// ForCall fills the tool fields.
func (e *Event) ForCall(tool, callID, params string) *Event {
	e.Tool = tool
	e.CallID = callID
	e.Params = params
	return e
}

// With attaches a point-specific attribute.
func (e *Event) With(key string, value any) *Event {
	if e.Attrs == nil {
		e.Attrs = make(map[string]any)
	}
	e.Attrs[key] = value
	return e
}

func (e *Event) Attr(key string) any {
	return e.Attrs[key]
}

// Decision is a handler's verdict. The zero value allows.
type Decision struct {
	Deny   bool
	Reason string
}

func Allow() Decision {
	return Decision{}
}

func Deny(reason string) Decision {
	return Decision{Deny: true, Reason: reason}
}

type Handler interface {
	Name() string
	Points() []Point

	// Priority orders handlers on a point, higher first.
	Priority() int

	// Handle returns a Decision that only matters at gated points.
	Handle(ctx context.Context, e *Event) (Decision, error)
}
