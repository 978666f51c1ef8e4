// Package gemini adapts Google's Gemini function-calling API to llm.Client.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"heritage/internal/llm"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/api/option"
)

const providerName = "gemini"

type Client struct {
	client *genai.Client
	model  string
}

// NewClient opens a Gemini client authenticated with an API key.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	c, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &Client{client: c, model: model}, nil
}

func (c *Client) Provider() string {
	return providerName
}

func (c *Client) Model() string {
	return c.model
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) Chat(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	model := c.client.GenerativeModel(c.model)
	if req.Temperature > 0 {
		model.SetTemperature(req.Temperature)
	}
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxTokens))
	}

	if len(req.Tools) > 0 {
		model.Tools = []*genai.Tool{{FunctionDeclarations: convertTools(req.Tools)}}
		mode := genai.FunctionCallingAuto
		if req.ToolChoice == llm.ToolChoiceNone {
			mode = genai.FunctionCallingNone
		}
		model.ToolConfig = &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{Mode: mode},
		}
	}

	system, contents := convertMessages(req.Messages)
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}
	if len(contents) == 0 {
		return nil, fmt.Errorf("gemini: no messages to send")
	}

	// The last turn is sent, everything before it becomes chat history.
	cs := model.StartChat()
	cs.History = contents[:len(contents)-1]
	resp, err := cs.SendMessage(ctx, contents[len(contents)-1].Parts...)
	if err != nil {
		return nil, wrapError(err)
	}

	return convertResponse(resp)
}

func wrapError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	upstream := &llm.UpstreamServiceError{Provider: providerName, Err: err}
	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPCode() > 0 {
		upstream.StatusCode = apiErr.HTTPCode()
	}
	return upstream
}

func convertTools(tools []*llm.ToolDefinition) []*genai.FunctionDeclaration {
	decls := make([]*genai.FunctionDeclaration, len(tools))
	for i, t := range tools {
		decls[i] = &genai.FunctionDeclaration{
			Name:        t.Function.Name,
			Description: t.Function.Description,
			Parameters:  convertSchema(t.Function.Parameters),
		}
	}
	return decls
}

// convertMessages maps the conversation onto Gemini contents. Consecutive tool
// replies are merged into a single user turn of function responses.
func convertMessages(msgs []llm.Message) (string, []*genai.Content) {
	var system string
	var contents []*genai.Content

	for _, msg := range msgs {
		switch msg.Role {
		case llm.RoleSystem:
			system = msg.Content

		case llm.RoleUser:
			contents = append(contents, &genai.Content{
				Role:  "user",
				Parts: []genai.Part{genai.Text(msg.Content)},
			})

		case llm.RoleAssistant:
			var parts []genai.Part
			if msg.Content != "" {
				parts = append(parts, genai.Text(msg.Content))
			}
			for _, tc := range msg.ToolCalls {
				parts = append(parts, genai.FunctionCall{
					Name: tc.Function.Name,
					Args: decodeObject(tc.Function.Arguments),
				})
			}
			contents = append(contents, &genai.Content{Role: "model", Parts: parts})

		case llm.RoleTool:
			part := genai.FunctionResponse{
				Name:     msg.Name,
				Response: decodeObject(msg.Content),
			}
			if n := len(contents); n > 0 && isFunctionResponseTurn(contents[n-1]) {
				contents[n-1].Parts = append(contents[n-1].Parts, part)
				continue
			}
			contents = append(contents, &genai.Content{Role: "user", Parts: []genai.Part{part}})
		}
	}
	return system, contents
}

func isFunctionResponseTurn(c *genai.Content) bool {
	if c.Role != "user" || len(c.Parts) == 0 {
		return false
	}
	_, ok := c.Parts[0].(genai.FunctionResponse)
	return ok
}

// decodeObject parses a JSON object, wrapping anything else under "content".
func decodeObject(s string) map[string]any {
	obj := map[string]any{}
	if s == "" {
		return obj
	}
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return map[string]any{"content": s}
	}
	return obj
}

func convertResponse(resp *genai.GenerateContentResponse) (*llm.ChatResponse, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, &llm.UpstreamServiceError{Provider: providerName, Err: llm.ErrNoChoices}
	}
	cand := resp.Candidates[0]

	result := &llm.ChatResponse{
		Message:    llm.Message{Role: llm.RoleAssistant},
		StopReason: llm.StopReasonStop,
	}
	if cand.FinishReason == genai.FinishReasonMaxTokens {
		result.StopReason = llm.StopReasonLength
	}
	if resp.UsageMetadata != nil {
		result.Usage = llm.Usage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}

	if cand.Content == nil {
		return result, nil
	}
	for _, part := range cand.Content.Parts {
		switch p := part.(type) {
		case genai.Text:
			result.Message.Content += string(p)
		case genai.FunctionCall:
			args, err := json.Marshal(p.Args)
			if err != nil {
				return nil, fmt.Errorf("gemini: encode function args: %w", err)
			}
			// Gemini does not assign call IDs
			result.Message.ToolCalls = append(result.Message.ToolCalls, &llm.ToolCall{
				ID:   "call_" + uuid.NewString(),
				Type: "function",
				Function: &llm.FunctionCall{
					Name:      p.Name,
					Arguments: string(args),
				},
			})
		}
	}
	if len(result.Message.ToolCalls) > 0 {
		result.StopReason = llm.StopReasonToolCalls
	}
	return result, nil
}
