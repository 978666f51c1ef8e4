package tool

import (
	"bytes"
	"encoding/json"
	"errors"

	"heritage/internal/llm"
)

type RecordArgs struct {
	Location      string `json:"location"`
	StructureName string `json:"structure_name"`
}

type VisualizationArgs struct {
	Data              string `json:"data"`
	VisualizationType string `json:"visualization_type"`
}

// Call is a parsed tool-call request. Exactly one of the argument pointers is
// set, matching Tool.
type Call struct {
	CallID        string
	Tool          ID
	Record        *RecordArgs
	Visualization *VisualizationArgs
}

// ParseCall validates a model tool-call at the boundary: the name must be
// declared and the arguments must decode into the tool's argument struct.
func ParseCall(tc *llm.ToolCall) (*Call, error) {
	if tc == nil || tc.Function == nil {
		return nil, &MalformedToolCallError{Err: errors.New("missing function")}
	}
	id, err := Lookup(tc.Function.Name)
	if err != nil {
		return nil, err
	}
	return ParseArguments(id, tc.ID, []byte(tc.Function.Arguments))
}

// ParseArguments decodes raw JSON arguments for a known tool. An empty payload
// is treated as an empty object.
func ParseArguments(id ID, callID string, raw []byte) (*Call, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	if raw[0] != '{' {
		return nil, &MalformedToolCallError{Tool: id.Name(), CallID: callID, Err: errors.New("arguments must be a JSON object")}
	}

	call := &Call{CallID: callID, Tool: id}
	var target any
	switch id {
	case TextRecordLookup:
		call.Record = &RecordArgs{}
		target = call.Record
	case VisualizationGenerator:
		call.Visualization = &VisualizationArgs{}
		target = call.Visualization
	default:
		return nil, &UnknownToolError{Name: id.Name()}
	}

	if err := json.Unmarshal(raw, target); err != nil {
		return nil, &MalformedToolCallError{Tool: id.Name(), CallID: callID, Err: err}
	}
	return call, nil
}

// Arguments encodes the call's current arguments.
func (c *Call) Arguments() json.RawMessage {
	var v any
	switch c.Tool {
	case TextRecordLookup:
		v = c.Record
	case VisualizationGenerator:
		v = c.Visualization
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("{}")
	}
	return raw
}
