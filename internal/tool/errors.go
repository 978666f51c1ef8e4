package tool

import "fmt"

// UnknownToolError is returned when the model names a tool that was never declared.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool %q", e.Name)
}

// MalformedToolCallError is returned when tool-call arguments cannot be parsed
// into the tool's argument structure.
type MalformedToolCallError struct {
	Tool   string
	CallID string
	Err    error
}

func (e *MalformedToolCallError) Error() string {
	return fmt.Sprintf("bad tool-call payload for %s (call %s): %v", e.Tool, e.CallID, e.Err)
}

func (e *MalformedToolCallError) Unwrap() error {
	return e.Err
}
