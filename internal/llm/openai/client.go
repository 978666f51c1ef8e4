// Package openai adapts the OpenAI chat-completions API to llm.Client.
package openai

import (
	"context"
	"errors"

	"heritage/internal/llm"

	openai "github.com/sashabaranov/go-openai"
)

const providerName = "openai"

type Client struct {
	api   *openai.Client
	model string
}

// NewClient creates a client for model. An optional non-empty baseURL points
// it at an OpenAI-compatible endpoint instead of api.openai.com.
func NewClient(apiKey, model string, baseURL ...string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if len(baseURL) > 0 && baseURL[0] != "" {
		cfg.BaseURL = baseURL[0]
	}
	return &Client{api: openai.NewClientWithConfig(cfg), model: model}
}

func (c *Client) Provider() string { return providerName }

func (c *Client) Model() string { return c.model }

func (c *Client) Chat(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	wireReq := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    toWireMessages(req.Messages),
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	// tool_choice is rejected by the API unless tools are declared
	if len(req.Tools) > 0 {
		wireReq.Tools = toWireTools(req.Tools)
		if req.ToolChoice != "" {
			wireReq.ToolChoice = string(req.ToolChoice)
		}
	}

	resp, err := c.api.CreateChatCompletion(ctx, wireReq)
	if err != nil {
		return nil, classify(err)
	}
	if len(resp.Choices) == 0 {
		return nil, &llm.UpstreamServiceError{Provider: providerName, Err: llm.ErrNoChoices}
	}
	return fromWireResponse(resp), nil
}

// classify attaches the HTTP status so the retry layer can tell transient
// failures from permanent ones.
func classify(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	upstream := &llm.UpstreamServiceError{Provider: providerName, Err: err}
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		upstream.StatusCode = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		upstream.StatusCode = reqErr.HTTPStatusCode
	}
	return upstream
}

func toWireMessages(msgs []llm.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(msgs))
	for _, m := range msgs {
		wire := openai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content}
		switch m.Role {
		case llm.RoleTool:
			wire.ToolCallID = m.ToolCallID
		case llm.RoleAssistant:
			for _, tc := range m.ToolCalls {
				wire.ToolCalls = append(wire.ToolCalls, openai.ToolCall{
					ID:       tc.ID,
					Type:     openai.ToolTypeFunction,
					Function: openai.FunctionCall{Name: tc.Function.Name, Arguments: tc.Function.Arguments},
				})
			}
		}
		out = append(out, wire)
	}
	return out
}

func toWireTools(defs []*llm.ToolDefinition) []openai.Tool {
	out := make([]openai.Tool, 0, len(defs))
	for _, d := range defs {
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        d.Function.Name,
				Description: d.Function.Description,
				Parameters:  d.Function.Parameters,
			},
		})
	}
	return out
}

func fromWireResponse(resp openai.ChatCompletionResponse) *llm.ChatResponse {
	choice := resp.Choices[0]
	out := &llm.ChatResponse{
		Message:    llm.Message{Role: llm.RoleAssistant, Content: choice.Message.Content},
		StopReason: llm.StopReason(choice.FinishReason),
		Usage: llm.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}
	for _, tc := range choice.Message.ToolCalls {
		out.Message.ToolCalls = append(out.Message.ToolCalls, &llm.ToolCall{
			ID:       tc.ID,
			Type:     string(tc.Type),
			Function: &llm.FunctionCall{Name: tc.Function.Name, Arguments: tc.Function.Arguments},
		})
	}
	// some compatible servers report "stop" alongside tool calls
	if len(out.Message.ToolCalls) > 0 {
		out.StopReason = llm.StopReasonToolCalls
	}
	return out
}
