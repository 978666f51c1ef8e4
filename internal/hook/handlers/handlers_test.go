package handlers

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"heritage/internal/hook"
	"heritage/internal/logger"
)

func toolEvent(point hook.Point, name string, turn int) *hook.Event {
	return hook.NewEvent(point, turn).ForCall(name, "call_1", `{"structure_name":"홍길동 작가"}`)
}

func TestProgressReporterEmitsSteps(t *testing.T) {
	var got []Step
	reporter := NewProgressReporter(func(s Step) { got = append(got, s) })

	m := hook.NewManager()
	m.Register(reporter)

	ctx := context.Background()
	if _, err := m.Trigger(ctx, toolEvent(hook.BeforeToolExecution, "get_heritage_text_record", 1)); err != nil {
		t.Fatalf("Trigger failed: %v", err)
	}
	if _, err := m.Trigger(ctx, toolEvent(hook.BeforeToolExecution, "generate_visualization_data", 2)); err != nil {
		t.Fatalf("Trigger failed: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("Expected 2 steps, got %d", len(got))
	}
	if got[0].Message != "STEP 1: 에이전트가 Tool 'get_heritage_text_record'을(를) 호출합니다." {
		t.Errorf("Unexpected message: %q", got[0].Message)
	}
	if got[1].Round != 2 || got[1].Tool != "generate_visualization_data" || got[1].CallID != "call_1" {
		t.Errorf("Unexpected step: %+v", got[1])
	}
	if len(reporter.Steps()) != 2 {
		t.Errorf("Expected reporter to keep 2 steps, got %d", len(reporter.Steps()))
	}
}

func TestDeniedCallIsNotAnnounced(t *testing.T) {
	reporter := NewProgressReporter(nil)
	confirm := NewToolConfirmHandlerWithIO(strings.NewReader("n\n"), &bytes.Buffer{})

	m := hook.NewManager()
	m.Register(reporter)
	m.Register(confirm)

	decision, err := m.Trigger(context.Background(), toolEvent(hook.BeforeToolExecution, "get_heritage_text_record", 1))
	if err != nil {
		t.Fatalf("Trigger failed: %v", err)
	}
	if !decision.Deny {
		t.Fatal("Expected denial")
	}
	if len(reporter.Steps()) != 0 {
		t.Errorf("Expected no steps for a denied call, got %d", len(reporter.Steps()))
	}
}

func TestToolConfirmHandler(t *testing.T) {
	var out bytes.Buffer
	h := NewToolConfirmHandlerWithIO(strings.NewReader("yes\n\n"), &out, "generate_visualization_data")
	ctx := context.Background()

	// Not in the confirm list: allowed without reading input.
	d, _ := h.Handle(ctx, toolEvent(hook.BeforeToolExecution, "get_heritage_text_record", 1))
	if d.Deny {
		t.Error("Expected unlisted tool to be allowed")
	}

	d, _ = h.Handle(ctx, toolEvent(hook.BeforeToolExecution, "generate_visualization_data", 1))
	if d.Deny {
		t.Error("Expected 'yes' to allow")
	}

	d, _ = h.Handle(ctx, toolEvent(hook.BeforeToolExecution, "generate_visualization_data", 1))
	if !d.Deny {
		t.Error("Expected empty answer to deny")
	}

	d, _ = h.Handle(ctx, toolEvent(hook.BeforeToolExecution, "generate_visualization_data", 1))
	if !d.Deny || d.Reason != "no input received" {
		t.Errorf("Expected EOF denial, got %+v", d)
	}
	if !strings.Contains(out.String(), "Parameters: {\"structure_name\":\"홍길동 작가\"}") {
		t.Errorf("Expected parameters in prompt, got %q", out.String())
	}
}

func TestLoggingHandler(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewLogger(&buf, logger.LevelTool)
	log.SetColorMode(false)
	log.SetShowTime(false)

	h := NewLogging(log)
	ctx := context.Background()
	h.Handle(ctx, toolEvent(hook.BeforeToolExecution, "get_heritage_text_record", 1))
	after := hook.NewEvent(hook.AfterToolExecution, 1).ForCall("get_heritage_text_record", "call_1", "")
	after.Status = "success"
	h.Handle(ctx, after)

	out := buf.String()
	if !strings.Contains(out, "round 1: get_heritage_text_record") {
		t.Errorf("Expected tool call line, got %q", out)
	}
	if !strings.Contains(out, "get_heritage_text_record -> success") {
		t.Errorf("Expected tool result line, got %q", out)
	}
}
