package tool

import (
	"context"
	"sync"
	"testing"
)

type fakeRecords struct {
	mu    sync.Mutex
	calls []RecordArgs
}

func (f *fakeRecords) LookupRecord(ctx context.Context, args RecordArgs) (*Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, args)
	f.mu.Unlock()
	return NewResult(map[string]string{"status": "success", "text_record": "record of " + args.StructureName})
}

type fakeVisualizer struct {
	mu    sync.Mutex
	calls []VisualizationArgs
}

func (f *fakeVisualizer) Visualize(ctx context.Context, args VisualizationArgs) (*Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, args)
	f.mu.Unlock()
	return NewResult(map[string]string{"status": "error", "message": "viz of " + args.Data})
}

func newTestRegistry(t *testing.T) (*Registry, *fakeRecords, *fakeVisualizer) {
	t.Helper()
	records := &fakeRecords{}
	viz := &fakeVisualizer{}
	r, err := NewRegistry(records, viz)
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}
	return r, records, viz
}

func TestNewRegistryRequiresHandlers(t *testing.T) {
	if _, err := NewRegistry(nil, &fakeVisualizer{}); err == nil {
		t.Error("Expected error without record handler")
	}
	if _, err := NewRegistry(&fakeRecords{}, nil); err == nil {
		t.Error("Expected error without visualizer")
	}
}

func TestGetToolDefinitions(t *testing.T) {
	r, _, _ := newTestRegistry(t)
	defs := r.GetToolDefinitions()
	if len(defs) != 2 {
		t.Fatalf("Expected 2 definitions, got %d", len(defs))
	}

	lookup := defs[0].Function
	if lookup.Name != "get_heritage_text_record" {
		t.Errorf("Expected lookup first, got %s", lookup.Name)
	}
	required := lookup.Parameters["required"].([]string)
	if len(required) != 1 || required[0] != "structure_name" {
		t.Errorf("Expected required [structure_name], got %v", required)
	}
	props := lookup.Parameters["properties"].(map[string]any)
	if _, ok := props["location"]; !ok {
		t.Error("Expected location property")
	}

	viz := defs[1].Function
	if viz.Name != "generate_visualization_data" {
		t.Errorf("Expected visualization second, got %s", viz.Name)
	}
	required = viz.Parameters["required"].([]string)
	if len(required) != 2 {
		t.Errorf("Expected 2 required params, got %v", required)
	}
	data := viz.Parameters["properties"].(map[string]any)["data"].(map[string]any)
	if data["description"] != "분석할 텍스트 기록 전체" {
		t.Errorf("Unexpected data description: %v", data["description"])
	}
}

func TestDispatch(t *testing.T) {
	r, records, viz := newTestRegistry(t)
	ctx := context.Background()

	res, err := r.Dispatch(ctx, &Call{Tool: TextRecordLookup, Record: &RecordArgs{StructureName: "A"}})
	if err != nil || !res.Success() {
		t.Fatalf("Dispatch lookup: %v %v", res, err)
	}
	res, err = r.Dispatch(ctx, &Call{Tool: VisualizationGenerator, Visualization: &VisualizationArgs{Data: "x"}})
	if err != nil || res.Status != StatusError {
		t.Fatalf("Dispatch visualization: %v %v", res, err)
	}
	if len(records.calls) != 1 || len(viz.calls) != 1 {
		t.Errorf("Expected one call per handler, got %d and %d", len(records.calls), len(viz.calls))
	}

	if _, err := r.Dispatch(ctx, &Call{Tool: ID(99)}); err == nil {
		t.Error("Expected error for undeclared tool ID")
	}
}
