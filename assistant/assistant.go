// Package assistant runs the tool-call resolution protocol between a chat
// model and a tool host: one model call that may request tools, the
// requested tool invocations, and one closing model call that must answer
// with text.
package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/stickynotes/pkg/llms"
	"github.com/effective-security/stickynotes/pkg/llmutils"
	"github.com/effective-security/xlog"
	"github.com/google/uuid"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/stickynotes", "assistant")

// ToolSession is the subset of the tool host client the assistant needs.
type ToolSession interface {
	ListTools(ctx context.Context) ([]llms.Tool, error)
	CallTool(ctx context.Context, name string, args any) (string, error)
}

// Assistant answers user queries with a chat model, resolving at most one
// round of tool calls per query against a tool host session.
type Assistant struct {
	llm     llms.Model
	session ToolSession

	systemPrompt string

	toolDefs    []llms.Tool
	toolsByName map[string]bool
	toolNames   []string

	runMessages []llms.Message
}

// New creates an assistant over the model and tool session. The host's tool
// list is fetched once; the tool set is fixed for the assistant's lifetime.
func New(ctx context.Context, llmModel llms.Model, session ToolSession) (*Assistant, error) {
	toolDefs, err := session.ListTools(ctx)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to fetch tool list")
	}

	a := &Assistant{
		llm:         llmModel,
		session:     session,
		toolDefs:    toolDefs,
		toolsByName: make(map[string]bool, len(toolDefs)),
	}
	for _, t := range toolDefs {
		if t.Function == nil {
			continue
		}
		a.toolsByName[strings.ToLower(t.Function.Name)] = true
		a.toolNames = append(a.toolNames, t.Function.Name)
	}

	logger.ContextKV(ctx, xlog.DEBUG,
		"status", "tools_fetched",
		"tools", strings.Join(a.toolNames, ", "),
	)
	return a, nil
}

// WithSystemPrompt prepends a system message to every query. By default no
// system message is sent; the first model call carries the user query alone.
func (a *Assistant) WithSystemPrompt(prompt string) *Assistant {
	a.systemPrompt = prompt
	return a
}

// ToolNames returns the names of the tools advertised by the host.
func (a *Assistant) ToolNames() []string {
	return a.toolNames
}

// Tools returns the tool definitions advertised by the host.
func (a *Assistant) Tools() []llms.Tool {
	return a.toolDefs
}

// LastRunMessages returns the full message list of the most recent query,
// including the tool-call exchange.
func (a *Assistant) LastRunMessages() []llms.Message {
	return a.runMessages
}

// Query answers a single user query. The first model call offers the host's
// tools with the "auto" invocation mode. If the model requests tool calls,
// all of them are executed and their results fed back, then a second call
// with mode "none" produces the final answer. The model's text is returned
// as-is.
func (a *Assistant) Query(ctx context.Context, input string) (string, error) {
	runID := uuid.New().String()
	a.runMessages = nil

	var messages []llms.Message
	if a.systemPrompt != "" {
		messages = append(messages, llms.MessageFromTextParts(llms.RoleSystem, a.systemPrompt))
	}
	messages = append(messages, llms.MessageFromTextParts(llms.RoleHuman, input))

	resp, err := a.llm.GenerateContent(ctx, messages,
		llms.WithTools(a.toolDefs),
		llms.WithToolChoice(llms.ToolChoiceAuto),
	)
	if err != nil {
		a.runMessages = messages
		return "", errors.WithMessagef(ErrModelAPI, "%s", err.Error())
	}
	if len(resp.Choices) == 0 {
		a.runMessages = messages
		return "", errors.WithMessage(ErrModelAPI, "model returned no choices")
	}

	choice := resp.Choices[0]
	if len(choice.ToolCalls) == 0 {
		a.runMessages = messages
		logger.ContextKV(ctx, xlog.DEBUG,
			"run_id", runID,
			"status", "no_tool_calls",
		)
		return choice.Content, nil
	}

	toolCalls := normalizeToolCalls(choice.ToolCalls)

	logger.ContextKV(ctx, xlog.DEBUG,
		"run_id", runID,
		"status", "tool_calls_requested",
		"count", len(toolCalls),
	)

	// Replay the assistant turn that requested the calls. Content is
	// normalized to an empty string; some providers reject a null content
	// field when tool calls are present.
	messages = append(messages, llms.MessageFromToolCalls(llms.RoleAI, "", toolCalls...))

	toolMessages, err := a.executeToolCalls(ctx, runID, toolCalls)
	if err != nil {
		a.runMessages = messages
		return "", err
	}
	messages = append(messages, toolMessages...)

	resp, err = a.llm.GenerateContent(ctx, messages,
		llms.WithTools(a.toolDefs),
		llms.WithToolChoice(llms.ToolChoiceNone),
	)
	if err != nil {
		a.runMessages = messages
		return "", errors.WithMessagef(ErrModelAPI, "%s", err.Error())
	}
	if len(resp.Choices) == 0 {
		a.runMessages = messages
		return "", errors.WithMessage(ErrModelAPI, "model returned no choices")
	}

	a.runMessages = messages
	return resp.Choices[0].Content, nil
}

// normalizeToolCalls fills in identifiers and types the model left out so
// every call can be correlated with its result.
func normalizeToolCalls(calls []llms.ToolCall) []llms.ToolCall {
	out := make([]llms.ToolCall, len(calls))
	for i, tc := range calls {
		if tc.ID == "" {
			tc.ID = fmt.Sprintf("%s_%d", tc.FunctionCall.Name, i)
		}
		if tc.Type == "" {
			tc.Type = "function"
		}
		out[i] = tc
	}
	return out
}

// executeToolCalls runs every requested call against the host and returns
// one tool message per call, in the order the model requested them. Calls
// run concurrently; results are reassembled by index.
func (a *Assistant) executeToolCalls(ctx context.Context, runID string, toolCalls []llms.ToolCall) ([]llms.Message, error) {
	type toolCallResult struct {
		response string
		err      error
	}

	results := make([]toolCallResult, len(toolCalls))

	var wg sync.WaitGroup
	wg.Add(len(toolCalls))
	for i, toolCall := range toolCalls {
		go func(index int, tc llms.ToolCall) {
			defer wg.Done()

			toolName := tc.FunctionCall.Name
			if !a.toolsByName[strings.ToLower(toolName)] {
				logger.ContextKV(ctx, xlog.WARNING,
					"run_id", runID,
					"status", "tool_not_found",
					"tool", toolName,
					"available_tools", strings.Join(a.toolNames, ", "),
				)
				results[index].err = errors.WithMessagef(ErrUnknownTool, "tool %s is not available", toolName)
				return
			}

			args, err := decodeArguments(tc.FunctionCall.Arguments)
			if err != nil {
				results[index].err = err
				return
			}

			res, err := a.session.CallTool(ctx, toolName, args)
			if err != nil {
				logger.ContextKV(ctx, xlog.WARNING,
					"run_id", runID,
					"status", "tool_call_failed",
					"tool", toolName,
					"err", err.Error(),
				)
				results[index].err = errors.WithMessagef(ErrToolExecution, "tool %s: %s", toolName, err.Error())
				return
			}

			logger.ContextKV(ctx, xlog.DEBUG,
				"run_id", runID,
				"status", "tool_call_succeeded",
				"tool", toolName,
				"tool_call_id", tc.ID,
				"response_size", len(res),
			)
			results[index].response = res
		}(i, toolCall)
	}
	wg.Wait()

	messages := make([]llms.Message, 0, len(toolCalls))
	for i, result := range results {
		if result.err != nil {
			return nil, result.err
		}
		messages = append(messages, llms.MessageFromToolResponse(llms.RoleTool, llms.ToolCallResponse{
			ToolCallID: toolCalls[i].ID,
			Name:       toolCalls[i].FunctionCall.Name,
			Content:    result.response,
		}))
	}
	return messages, nil
}

// decodeArguments parses the model-produced arguments string into a value
// the tool host accepts. An empty string means no arguments.
func decodeArguments(raw string) (map[string]any, error) {
	args := map[string]any{}
	if strings.TrimSpace(raw) == "" {
		return args, nil
	}
	if err := json.Unmarshal(llmutils.CleanJSON([]byte(raw)), &args); err != nil {
		return nil, errors.WithStack(ErrMalformedArguments)
	}
	return args, nil
}
