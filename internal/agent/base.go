package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"heritage/internal/hook"
	"heritage/internal/hook/handlers"
	"heritage/internal/llm"
	"heritage/internal/logger"
	"heritage/internal/tool"

	"github.com/google/uuid"
)

// BaseAgent runs the bounded model/tool loop. It is safe for concurrent use:
// every Run owns its conversation and results.
type BaseAgent struct {
	llmClient    llm.Client
	toolRegistry *tool.Registry
	config       *Config
	hooks        *hook.Manager
	logger       *logger.Logger
}

func NewBaseAgent(client llm.Client, registry *tool.Registry, cfg *Config) *BaseAgent {
	if cfg == nil {
		cfg = &Config{ToolExecutionMode: tool.ExecutionModeSequential}
	}
	return &BaseAgent{
		llmClient:    client,
		toolRegistry: registry,
		config:       cfg,
		hooks:        hook.NewManager(),
		logger:       logger.Discard(),
	}
}

// SetHookManager sets handlers shared by every run.
func (a *BaseAgent) SetHookManager(m *hook.Manager) {
	a.hooks = m
}

func (a *BaseAgent) SetLogger(l *logger.Logger) {
	a.logger = l
}

func (a *BaseAgent) Run(ctx context.Context, input *Input) (*Output, error) {
	if input == nil || strings.TrimSpace(input.Request) == "" {
		return nil, ErrEmptyRequest
	}

	runID := uuid.NewString()
	log := a.logger
	if input.Logger != nil {
		log = input.Logger
	}
	log = log.WithRunID(runID[:8])
	execCtx := NewExecutionContext(runID, log)
	log.SessionStart(input.Request)

	hooks := a.hooks.Clone()
	hooks.Register(handlers.NewLogging(log))
	for _, h := range input.Handlers {
		hooks.Register(h)
	}

	executor := tool.NewExecutor(a.toolRegistry)
	executor.SetMode(a.config.ToolExecutionMode)
	executor.SetHookManager(hooks)

	notify(ctx, hooks, log, hook.NewEvent(hook.OnAgentStart, 0).
		With("run_id", runID).
		With("request", input.Request))

	messages := make([]llm.Message, 0, 2+4*MaxToolRounds)
	if a.config.SystemPrompt != "" {
		messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: a.config.SystemPrompt, Timestamp: time.Now()})
	}
	messages = append(messages, llm.UserMessage(input.Request))

	results := tool.NewResultSet()
	bind := bindInvocationContext(input.Context)
	allToolCalls := make([]*tool.CallResult, 0)

	for round := 1; round <= MaxToolRounds; round++ {
		execCtx.Round = round
		execCtx.Transition(AwaitingModel)

		resp, err := a.callModel(ctx, hooks, round, messages, llm.ToolChoiceAuto)
		if err != nil {
			return nil, a.fail(ctx, hooks, execCtx, err)
		}
		messages = append(messages, resp.Message)

		if !resp.HasToolCalls() {
			return a.finish(ctx, hooks, execCtx, &Output{
				Narrative: resp.Message.Content,
				Messages:  messages,
				ToolCalls: allToolCalls,
			}, results, false), nil
		}

		execCtx.Transition(DispatchingTools)
		replies, callResults, err := a.dispatch(hook.WithTurn(ctx, round), execCtx, executor, resp.Message.ToolCalls, bind, results)
		if err != nil {
			return nil, a.fail(ctx, hooks, execCtx, err)
		}
		allToolCalls = append(allToolCalls, callResults...)
		messages = append(messages, replies...)
	}

	log.Warn("round cap %d reached with tool calls pending, forcing a final answer", MaxToolRounds)
	execCtx.Transition(AwaitingModel)
	resp, err := a.callModel(ctx, hooks, MaxToolRounds+1, messages, llm.ToolChoiceNone)
	if err != nil {
		return nil, a.fail(ctx, hooks, execCtx, err)
	}
	messages = append(messages, resp.Message)

	return a.finish(ctx, hooks, execCtx, &Output{
		Narrative: resp.Message.Content,
		Messages:  messages,
		ToolCalls: allToolCalls,
	}, results, true), nil
}

func (a *BaseAgent) callModel(ctx context.Context, hooks *hook.Manager, round int, messages []llm.Message, choice llm.ToolChoice) (*llm.ChatResponse, error) {
	notify(ctx, hooks, a.logger, hook.NewEvent(hook.BeforeModelCall, round).
		With("messages", len(messages)).
		With("tool_choice", string(choice)))

	resp, err := a.llmClient.Chat(ctx, &llm.ChatRequest{
		Messages:    messages,
		Tools:       a.toolRegistry.GetToolDefinitions(),
		ToolChoice:  choice,
		Temperature: a.config.Temperature,
		MaxTokens:   a.config.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("model call in round %d failed: %w", round, err)
	}
	return resp, nil
}

// dispatch parses every requested call before running any of them, so a
// malformed payload aborts the round with nothing dispatched. Unknown tools
// get an error reply and are never run. Replies keep the request order.
func (a *BaseAgent) dispatch(
	ctx context.Context,
	execCtx *ExecutionContext,
	executor *tool.Executor,
	toolCalls []*llm.ToolCall,
	bind tool.Binder,
	results *tool.ResultSet,
) ([]llm.Message, []*tool.CallResult, error) {
	replies := make([]llm.Message, len(toolCalls))
	calls := make([]*tool.Call, 0, len(toolCalls))
	positions := make([]int, 0, len(toolCalls))

	for i, tc := range toolCalls {
		call, err := tool.ParseCall(tc)
		var unknown *tool.UnknownToolError
		switch {
		case errors.As(err, &unknown):
			execCtx.Logger.Warn("model requested undeclared tool %q (call %s)", unknown.Name, tc.ID)
			replies[i] = llm.ToolMessage(tc.ID, unknown.Name, tool.ErrorResult(unknown.Error()).Output)
		case err != nil:
			return nil, nil, err
		default:
			calls = append(calls, call)
			positions = append(positions, i)
		}
	}

	callResults, err := executor.Execute(ctx, calls, bind, results)
	if err != nil {
		return nil, nil, err
	}
	for j, cr := range callResults {
		execCtx.ToolCallCount++
		reply := llm.ToolMessage(cr.CallID, cr.ToolName, cr.Result.Output)
		reply.Timestamp = cr.EndTime
		replies[positions[j]] = reply
	}
	return replies, callResults, nil
}

func (a *BaseAgent) finish(ctx context.Context, hooks *hook.Manager, execCtx *ExecutionContext, out *Output, results *tool.ResultSet, truncated bool) *Output {
	execCtx.Transition(Done)
	out.RunID = execCtx.RunID
	out.Results = results.Map()
	out.Rounds = execCtx.Round
	out.Truncated = truncated

	notify(ctx, hooks, execCtx.Logger, hook.NewEvent(hook.OnAgentEnd, execCtx.Round).
		With("run_id", execCtx.RunID).
		With("truncated", truncated).
		With("output", out))

	execCtx.Logger.SessionEnd(time.Since(execCtx.StartTime), execCtx.Round, execCtx.ToolCallCount, truncated)
	return out
}

func (a *BaseAgent) fail(ctx context.Context, hooks *hook.Manager, execCtx *ExecutionContext, err error) error {
	execCtx.Transition(Done)
	execCtx.Logger.Error("invocation failed in round %d: %v", execCtx.Round, err)
	notify(ctx, hooks, execCtx.Logger, hook.NewEvent(hook.OnAgentEnd, execCtx.Round).
		With("run_id", execCtx.RunID).
		With("error", err))
	return err
}

// notify delivers an observational event. Handler failures never stop a run.
func notify(ctx context.Context, hooks *hook.Manager, log *logger.Logger, e *hook.Event) {
	if err := hooks.Notify(ctx, e); err != nil {
		log.Warn("%s handlers: %v", e.Point, err)
	}
}
