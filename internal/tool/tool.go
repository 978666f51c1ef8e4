package tool

import (
	"encoding/json"
	"fmt"
	"time"
)

// ID identifies one of the declared tools. The set is closed: adding a tool
// means adding a constant here and a case to every switch over ID.
type ID int

const (
	TextRecordLookup ID = iota + 1
	VisualizationGenerator
)

// All lists the declared tools in declaration order.
var All = []ID{TextRecordLookup, VisualizationGenerator}

// Name returns the function name presented to the model.
func (id ID) Name() string {
	switch id {
	case TextRecordLookup:
		return "get_heritage_text_record"
	case VisualizationGenerator:
		return "generate_visualization_data"
	}
	return fmt.Sprintf("tool(%d)", int(id))
}

func (id ID) String() string {
	return id.Name()
}

// Lookup resolves a model-supplied function name.
func Lookup(name string) (ID, error) {
	for _, id := range All {
		if id.Name() == name {
			return id, nil
		}
	}
	return 0, &UnknownToolError{Name: name}
}

type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Result is a tool's structured output. Handlers report failure through
// Status, never through an error.
type Result struct {
	Status Status
	Output string         // JSON payload handed back to the model
	Data   map[string]any // Output decoded into a generic object
}

// NewResult encodes a payload and decodes it back so that Data holds exactly
// what the model will see.
func NewResult(payload any) (*Result, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode tool payload: %w", err)
	}
	data := map[string]any{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("tool payload is not an object: %w", err)
	}
	status, _ := data["status"].(string)
	return &Result{Status: Status(status), Output: string(raw), Data: data}, nil
}

// ErrorResult builds an error payload carrying a message.
func ErrorResult(message string) *Result {
	r, _ := NewResult(map[string]string{"status": string(StatusError), "message": message})
	return r
}

func (r *Result) Success() bool {
	return r != nil && r.Status == StatusSuccess
}

type CallResult struct {
	ToolName  string
	CallID    string
	Params    json.RawMessage
	Result    *Result
	Denied    bool // a hook refused the call; Result explains why
	StartTime time.Time
	EndTime   time.Time
}
