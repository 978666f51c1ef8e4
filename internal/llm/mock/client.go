// Package mock provides offline llm.Client implementations: a scripted client
// for tests and a deterministic demo planner that drives both heritage tools.
package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"heritage/internal/llm"

	"github.com/google/uuid"
)

const providerName = "mock"

// Scripted replays a fixed list of responses and records every request.
// Once the script is exhausted the last response is repeated.
type Scripted struct {
	mu        sync.Mutex
	responses []*llm.ChatResponse
	errs      []error
	requests  []*llm.ChatRequest
}

func NewScripted(responses ...*llm.ChatResponse) *Scripted {
	return &Scripted{responses: responses}
}

// FailWith makes the n-th call (zero-based) return err instead of a response.
func (s *Scripted) FailWith(n int, err error) *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.errs) <= n {
		s.errs = append(s.errs, nil)
	}
	s.errs[n] = err
	return s
}

func (s *Scripted) Chat(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.requests)
	snapshot := *req
	snapshot.Messages = append([]llm.Message(nil), req.Messages...)
	s.requests = append(s.requests, &snapshot)

	if n < len(s.errs) && s.errs[n] != nil {
		return nil, s.errs[n]
	}
	if len(s.responses) == 0 {
		return nil, fmt.Errorf("mock: no scripted responses")
	}
	if n >= len(s.responses) {
		n = len(s.responses) - 1
	}
	resp := *s.responses[n]
	return &resp, nil
}

// Requests returns every request received so far.
func (s *Scripted) Requests() []*llm.ChatRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*llm.ChatRequest(nil), s.requests...)
}

func (s *Scripted) Provider() string { return providerName }
func (s *Scripted) Model() string    { return "scripted" }

// Text builds a final answer response.
func Text(content string) *llm.ChatResponse {
	return &llm.ChatResponse{
		Message:    llm.Message{Role: llm.RoleAssistant, Content: content},
		StopReason: llm.StopReasonStop,
	}
}

// ToolCalls builds a response requesting the given calls.
func ToolCalls(calls ...*llm.ToolCall) *llm.ChatResponse {
	return &llm.ChatResponse{
		Message:    llm.Message{Role: llm.RoleAssistant, ToolCalls: calls},
		StopReason: llm.StopReasonToolCalls,
	}
}

// Call builds a single tool call request.
func Call(id, name, arguments string) *llm.ToolCall {
	return &llm.ToolCall{
		ID:       id,
		Type:     "function",
		Function: &llm.FunctionCall{Name: name, Arguments: arguments},
	}
}

// Demo plans like a cooperative model: look the record up, then ask for the
// visualization, then summarize whatever came back.
type Demo struct{}

func NewDemo() *Demo {
	return &Demo{}
}

func (d *Demo) Provider() string { return providerName }
func (d *Demo) Model() string    { return "demo" }

var quoted = regexp.MustCompile(`'([^']+)'`)

func (d *Demo) Chat(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	replies := map[string]map[string]any{}
	var request string
	for _, msg := range req.Messages {
		switch msg.Role {
		case llm.RoleUser:
			request = msg.Content
		case llm.RoleTool:
			payload := map[string]any{}
			_ = json.Unmarshal([]byte(msg.Content), &payload)
			replies[msg.Name] = payload
		}
	}

	if req.ToolChoice != llm.ToolChoiceNone && len(req.Tools) > 0 {
		if _, ok := replies["get_heritage_text_record"]; !ok {
			subject := ""
			if m := quoted.FindStringSubmatch(request); m != nil {
				subject = m[1]
			}
			args, _ := json.Marshal(map[string]string{"structure_name": subject})
			return ToolCalls(Call("call_"+uuid.NewString(), "get_heritage_text_record", string(args))), nil
		}
		if _, ok := replies["generate_visualization_data"]; !ok {
			return ToolCalls(Call("call_"+uuid.NewString(), "generate_visualization_data",
				`{"data":"","visualization_type":""}`)), nil
		}
	}

	return Text(summarize(replies)), nil
}

func summarize(replies map[string]map[string]any) string {
	var b strings.Builder
	record := replies["get_heritage_text_record"]
	if record["status"] == "success" {
		fmt.Fprintf(&b, "검색된 기록에 따르면, %v", record["text_record"])
		if n, ok := record["exhibition_count"]; ok {
			fmt.Fprintf(&b, " 확인된 전시는 %v회입니다.", n)
		}
	} else {
		b.WriteString("요청한 대상에 대한 기록을 찾지 못했습니다.")
	}

	viz := replies["generate_visualization_data"]
	if viz["status"] == "success" {
		if entries, ok := viz["data"].([]any); ok {
			fmt.Fprintf(&b, " 주요 활동 시기를 %d개 항목의 %v로 정리했습니다.", len(entries), viz["visualization_type"])
		}
	} else if viz != nil {
		b.WriteString(" 시각화 데이터는 생성할 수 없었습니다.")
	}
	return b.String()
}
