package handlers

import (
	"context"
	"fmt"
	"sync"

	"heritage/internal/hook"
)

// Step is one user-visible progress event: a tool about to be dispatched.
type Step struct {
	Round   int    `json:"round"`
	Tool    string `json:"tool"`
	CallID  string `json:"call_id"`
	Message string `json:"message"`
}

// StepMessage renders the progress line shown to the user.
func StepMessage(round int, toolName string) string {
	return fmt.Sprintf("STEP %d: 에이전트가 Tool '%s'을(를) 호출합니다.", round, toolName)
}

// ProgressReporter forwards a Step to sink before every tool dispatch and
// keeps the steps it emitted.
type ProgressReporter struct {
	sink  func(Step)
	mu    sync.Mutex
	steps []Step
}

// NewProgressReporter creates a reporter. sink may be nil when only the
// collected steps are needed.
func NewProgressReporter(sink func(Step)) *ProgressReporter {
	return &ProgressReporter{sink: sink}
}

func (h *ProgressReporter) Name() string {
	return "progress"
}

func (h *ProgressReporter) Points() []hook.Point {
	return []hook.Point{hook.BeforeToolExecution}
}

// Priority is low so that a denying handler runs first and denied calls are
// not announced.
func (h *ProgressReporter) Priority() int {
	return 10
}

func (h *ProgressReporter) Handle(ctx context.Context, e *hook.Event) (hook.Decision, error) {
	step := Step{
		Round:   e.Turn,
		Tool:    e.Tool,
		CallID:  e.CallID,
		Message: StepMessage(e.Turn, e.Tool),
	}

	h.mu.Lock()
	h.steps = append(h.steps, step)
	h.mu.Unlock()

	if h.sink != nil {
		h.sink(step)
	}
	return hook.Allow(), nil
}

// Steps returns the steps emitted so far.
func (h *ProgressReporter) Steps() []Step {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Step(nil), h.steps...)
}
