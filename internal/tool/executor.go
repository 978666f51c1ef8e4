package tool

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"heritage/internal/hook"
)

type ExecutionMode string

// A visualization consumes the latest lookup of the same turn, so no mode
// runs calls of different tools together.
const (
	ExecutionModeSequential ExecutionMode = "sequential"
	ExecutionModeMixed      ExecutionMode = "mixed"
)

// ParseExecutionMode validates a configured mode. Empty means sequential.
func ParseExecutionMode(s string) (ExecutionMode, error) {
	switch m := ExecutionMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ExecutionModeSequential, nil
	case ExecutionModeSequential, ExecutionModeMixed:
		return m, nil
	default:
		return "", fmt.Errorf("unknown execution mode %q", s)
	}
}

// Binder rewrites a call's arguments immediately before it is dispatched.
// It sees every result recorded by earlier batches.
type Binder func(call *Call, results *ResultSet)

type Executor struct {
	registry    *Registry
	mode        ExecutionMode
	hookManager *hook.Manager
}

func NewExecutor(registry *Registry) *Executor {
	return &Executor{
		registry: registry,
		mode:     ExecutionModeSequential,
	}
}

func (e *Executor) SetMode(mode ExecutionMode) {
	e.mode = mode
}

func (e *Executor) Mode() ExecutionMode {
	return e.mode
}

// SetHookManager sets the hook manager for tool execution hooks
func (e *Executor) SetHookManager(manager *hook.Manager) {
	e.hookManager = manager
}

// Execute dispatches calls batch by batch according to the configured mode.
// After each batch its results are recorded into results in request order,
// so a later call's Binder observes them. Results are returned in request
// order. A handler error aborts the whole execution.
func (e *Executor) Execute(ctx context.Context, calls []*Call, bind Binder, results *ResultSet) ([]*CallResult, error) {
	out := make([]*CallResult, len(calls))
	for _, batch := range e.plan(calls) {
		batchResults, err := e.executeBatch(ctx, calls, batch, bind, results)
		if err != nil {
			return nil, err
		}
		for i, idx := range batch {
			cr := batchResults[i]
			out[idx] = cr
			if !cr.Denied {
				results.Record(cr.ToolName, cr.Result)
			}
		}
	}
	return out, nil
}

// plan splits calls into batches of indices.
func (e *Executor) plan(calls []*Call) [][]int {
	if e.mode == ExecutionModeMixed {
		return buildExecutionBatches(len(calls), analyzeDependencies(calls))
	}
	batches := make([][]int, len(calls))
	for i := range calls {
		batches[i] = []int{i}
	}
	return batches
}

func (e *Executor) executeBatch(ctx context.Context, calls []*Call, batch []int, bind Binder, results *ResultSet) ([]*CallResult, error) {
	// Bind before launching so every call in the batch sees the same state.
	for _, idx := range batch {
		if bind != nil {
			bind(calls[idx], results)
		}
	}

	if len(batch) == 1 {
		cr, err := e.executeOne(ctx, calls[batch[0]])
		if err != nil {
			return nil, err
		}
		return []*CallResult{cr}, nil
	}

	out := make([]*CallResult, len(batch))
	errs := make([]error, len(batch))
	var wg sync.WaitGroup
	for i, idx := range batch {
		wg.Add(1)
		go func(i int, call *Call) {
			defer wg.Done()
			out[i], errs[i] = e.executeOne(ctx, call)
		}(i, calls[idx])
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (e *Executor) executeOne(ctx context.Context, call *Call) (*CallResult, error) {
	startTime := time.Now()
	name := call.Tool.Name()
	params := call.Arguments()

	before := hook.NewEvent(hook.BeforeToolExecution, hook.Turn(ctx)).ForCall(name, call.CallID, string(params))
	decision, err := e.hookManager.Trigger(ctx, before)
	if err != nil {
		return nil, fmt.Errorf("before %s: %w", name, err)
	}
	if decision.Deny {
		return &CallResult{
			ToolName:  name,
			CallID:    call.CallID,
			Params:    params,
			Result:    ErrorResult("tool execution was denied: " + decision.Reason),
			Denied:    true,
			StartTime: startTime,
			EndTime:   time.Now(),
		}, nil
	}

	result, err := e.registry.Dispatch(ctx, call)
	if err != nil {
		return nil, fmt.Errorf("execute %s: %w", name, err)
	}

	after := hook.NewEvent(hook.AfterToolExecution, before.Turn).ForCall(name, call.CallID, string(params))
	after.Status = string(result.Status)
	after.Duration = time.Since(startTime)
	after.With("result", result)
	// observers cannot undo a finished call
	_ = e.hookManager.Notify(ctx, after)

	return &CallResult{
		ToolName:  name,
		CallID:    call.CallID,
		Params:    params,
		Result:    result,
		StartTime: startTime,
		EndTime:   time.Now(),
	}, nil
}

// analyzeDependencies orders calls of different tools as requested. A
// visualization reads the latest lookup result, so it waits for every lookup
// before it, and a lookup waits for every visualization before it so that
// those read the record that preceded it. Calls of the same tool run together.
func analyzeDependencies(calls []*Call) map[int][]int {
	deps := make(map[int][]int)
	seen := make(map[ID][]int)
	for i, c := range calls {
		for id, idxs := range seen {
			if id != c.Tool && len(idxs) > 0 {
				deps[i] = append(deps[i], idxs...)
			}
		}
		seen[c.Tool] = append(seen[c.Tool], i)
	}
	return deps
}

// buildExecutionBatches creates execution batches using topological sort
func buildExecutionBatches(n int, deps map[int][]int) [][]int {
	batches := make([][]int, 0)
	executed := make(map[int]bool)

	for len(executed) < n {
		batch := make([]int, 0)
		for i := 0; i < n; i++ {
			if executed[i] {
				continue
			}
			ready := true
			for _, dep := range deps[i] {
				if !executed[dep] {
					ready = false
					break
				}
			}
			if ready {
				batch = append(batch, i)
			}
		}
		for _, idx := range batch {
			executed[idx] = true
		}
		batches = append(batches, batch)
	}

	return batches
}
