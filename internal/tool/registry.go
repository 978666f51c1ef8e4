package tool

import (
	"context"
	"errors"
	"fmt"

	"heritage/internal/llm"
)

// RecordLookup handles TextRecordLookup calls.
type RecordLookup interface {
	LookupRecord(ctx context.Context, args RecordArgs) (*Result, error)
}

// Visualizer handles VisualizationGenerator calls.
type Visualizer interface {
	Visualize(ctx context.Context, args VisualizationArgs) (*Result, error)
}

// Registry binds every declared tool to its handler.
type Registry struct {
	records    RecordLookup
	visualizer Visualizer
}

func NewRegistry(records RecordLookup, visualizer Visualizer) (*Registry, error) {
	if records == nil {
		return nil, fmt.Errorf("tool %s has no handler", TextRecordLookup)
	}
	if visualizer == nil {
		return nil, fmt.Errorf("tool %s has no handler", VisualizationGenerator)
	}
	return &Registry{records: records, visualizer: visualizer}, nil
}

func (r *Registry) Descriptors() []Descriptor {
	return Descriptors()
}

func (r *Registry) GetToolDefinitions() []*llm.ToolDefinition {
	descs := r.Descriptors()
	defs := make([]*llm.ToolDefinition, len(descs))
	for i, d := range descs {
		defs[i] = &llm.ToolDefinition{
			Type: "function",
			Function: &llm.FunctionDef{
				Name:        d.Name(),
				Description: d.Description,
				Parameters:  d.Schema(),
			},
		}
	}
	return defs
}

// Dispatch runs the handler for a parsed call.
func (r *Registry) Dispatch(ctx context.Context, call *Call) (*Result, error) {
	switch call.Tool {
	case TextRecordLookup:
		if call.Record == nil {
			return nil, &MalformedToolCallError{Tool: call.Tool.Name(), CallID: call.CallID, Err: errors.New("missing arguments")}
		}
		return r.records.LookupRecord(ctx, *call.Record)
	case VisualizationGenerator:
		if call.Visualization == nil {
			return nil, &MalformedToolCallError{Tool: call.Tool.Name(), CallID: call.CallID, Err: errors.New("missing arguments")}
		}
		return r.visualizer.Visualize(ctx, *call.Visualization)
	default:
		return nil, &UnknownToolError{Name: call.Tool.Name()}
	}
}
