package openai

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/stickynotes/pkg/llms"
	openaisdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/shared"
)

// ErrEmptyResponse is returned when the OpenAI API returns an empty response.
var ErrEmptyResponse = errors.New("empty response")

// LLM is an llms.Model implementation backed by the official OpenAI SDK.
// It supports both the public OpenAI endpoint and Azure OpenAI deployments.
type LLM struct {
	client   openaisdk.Client
	provider llms.ProviderType
	model    string
}

var _ llms.Model = (*LLM)(nil)

// New returns a new OpenAI LLM.
func New(opts ...Option) (*LLM, error) {
	options, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	return &LLM{
		client:   openaisdk.NewClient(options.clientOptions()...),
		provider: options.provider,
		model:    options.model,
	}, nil
}

// GetProviderType implements the Model interface.
func (o *LLM) GetProviderType() llms.ProviderType {
	return o.provider
}

// GetName implements the Model interface.
func (o *LLM) GetName() string {
	return o.model
}

// GenerateContent implements the Model interface.
func (o *LLM) GenerateContent(ctx context.Context, messages []llms.Message, options ...llms.CallOption) (*llms.ContentResponse, error) {
	opts := llms.CallOptions{}
	for _, opt := range options {
		opt(&opts)
	}

	params, err := buildChatParams(messages, &opts)
	if err != nil {
		return nil, err
	}
	if params.Model == "" {
		params.Model = o.model
	}

	completion, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create chat completion")
	}
	if len(completion.Choices) == 0 {
		return nil, errors.WithStack(ErrEmptyResponse)
	}

	choices := make([]*llms.ContentChoice, len(completion.Choices))
	for i, c := range completion.Choices {
		choice := &llms.ContentChoice{
			Content:    c.Message.Content,
			StopReason: string(c.FinishReason),
			GenerationInfo: map[string]any{
				"CompletionTokens": completion.Usage.CompletionTokens,
				"PromptTokens":     completion.Usage.PromptTokens,
				"TotalTokens":      completion.Usage.TotalTokens,
			},
		}
		for _, tool := range c.Message.ToolCalls {
			choice.ToolCalls = append(choice.ToolCalls, llms.ToolCall{
				ID:   tool.ID,
				Type: string(tool.Type),
				FunctionCall: &llms.FunctionCall{
					Name:      tool.Function.Name,
					Arguments: tool.Function.Arguments,
				},
			})
		}
		choices[i] = choice
	}
	return &llms.ContentResponse{Choices: choices}, nil
}

// buildChatParams converts provider-neutral messages and call options into
// chat-completion request parameters.
func buildChatParams(messages []llms.Message, opts *llms.CallOptions) (openaisdk.ChatCompletionNewParams, error) {
	params := openaisdk.ChatCompletionNewParams{
		Model: opts.Model,
	}
	if opts.Temperature > 0 {
		params.Temperature = openaisdk.Float(opts.Temperature)
	}
	if opts.MaxTokens > 0 {
		params.MaxTokens = openaisdk.Int(int64(opts.MaxTokens))
	}
	if opts.Seed > 0 {
		params.Seed = openaisdk.Int(int64(opts.Seed))
	}

	for _, mc := range messages {
		msg, err := convertMessage(mc)
		if err != nil {
			return params, err
		}
		params.Messages = append(params.Messages, msg)
	}

	for _, tool := range opts.Tools {
		if tool.Function == nil {
			return params, errors.Newf("tool type %q has no function definition", tool.Type)
		}
		fnParams, err := functionParameters(tool.Function.Parameters)
		if err != nil {
			return params, errors.WithMessagef(err, "invalid parameters schema for tool %s", tool.Function.Name)
		}
		params.Tools = append(params.Tools, openaisdk.ChatCompletionFunctionTool(shared.FunctionDefinitionParam{
			Name:        tool.Function.Name,
			Description: openaisdk.String(tool.Function.Description),
			Parameters:  fnParams,
		}))
	}

	switch choice := opts.ToolChoice.(type) {
	case nil:
	case string:
		params.ToolChoice = openaisdk.ChatCompletionToolChoiceOptionUnionParam{
			OfAuto: openaisdk.String(choice),
		}
	case llms.ToolChoice:
		if choice.Function == nil {
			return params, errors.New("tool choice has no function reference")
		}
		params.ToolChoice = openaisdk.ChatCompletionToolChoiceOptionUnionParam{
			OfFunctionToolChoice: &openaisdk.ChatCompletionNamedToolChoiceParam{
				Function: openaisdk.ChatCompletionNamedToolChoiceFunctionParam{
					Name: choice.Function.Name,
				},
			},
		}
	default:
		return params, errors.Newf("unsupported tool choice type %T", opts.ToolChoice)
	}

	return params, nil
}

func convertMessage(mc llms.Message) (openaisdk.ChatCompletionMessageParamUnion, error) {
	switch mc.Role {
	case llms.RoleSystem:
		return openaisdk.SystemMessage(textContent(mc)), nil
	case llms.RoleHuman:
		return openaisdk.UserMessage(textContent(mc)), nil
	case llms.RoleAI:
		return convertAssistantMessage(mc), nil
	case llms.RoleTool:
		// A tool message carries exactly one ToolCallResponse part.
		if len(mc.Parts) != 1 {
			return openaisdk.ChatCompletionMessageParamUnion{}, errors.Newf("expected exactly one part for role %v, got %d", mc.Role, len(mc.Parts))
		}
		resp, ok := mc.Parts[0].(llms.ToolCallResponse)
		if !ok {
			return openaisdk.ChatCompletionMessageParamUnion{}, errors.Newf("expected part of type ToolCallResponse for role %v, got %T", mc.Role, mc.Parts[0])
		}
		return openaisdk.ToolMessage(resp.Content, resp.ToolCallID), nil
	default:
		return openaisdk.ChatCompletionMessageParamUnion{}, errors.Newf("role %v not supported", mc.Role)
	}
}

func convertAssistantMessage(mc llms.Message) openaisdk.ChatCompletionMessageParamUnion {
	toolCalls := mc.ToolCalls()
	if len(toolCalls) == 0 {
		return openaisdk.AssistantMessage(textContent(mc))
	}

	msg := openaisdk.ChatCompletionAssistantMessageParam{
		Role: "assistant",
		// Content is always present, some endpoints reject a missing field.
		Content: openaisdk.ChatCompletionAssistantMessageParamContentUnion{
			OfString: openaisdk.String(textContent(mc)),
		},
	}
	for _, tc := range toolCalls {
		msg.ToolCalls = append(msg.ToolCalls, openaisdk.ChatCompletionMessageToolCallUnionParam{
			OfFunction: &openaisdk.ChatCompletionMessageFunctionToolCallParam{
				ID: tc.ID,
				Function: openaisdk.ChatCompletionMessageFunctionToolCallFunctionParam{
					Name: tc.FunctionCall.Name,
					// raw encoded arguments, not re-encoded
					Arguments: tc.FunctionCall.Arguments,
				},
			},
		})
	}
	return openaisdk.ChatCompletionMessageParamUnion{OfAssistant: &msg}
}

func textContent(mc llms.Message) string {
	var text string
	for _, part := range mc.Parts {
		if tp, ok := part.(llms.TextContent); ok {
			text += tp.Text
		}
	}
	return text
}

// functionParameters coerces a schema of any supported shape into the SDK's
// parameters map.
func functionParameters(schema any) (shared.FunctionParameters, error) {
	switch s := schema.(type) {
	case nil:
		return shared.FunctionParameters{"type": "object", "properties": map[string]any{}}, nil
	case shared.FunctionParameters:
		return s, nil
	case map[string]any:
		return shared.FunctionParameters(s), nil
	default:
		js, err := json.Marshal(schema)
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal parameters schema")
		}
		var m map[string]any
		if err := json.Unmarshal(js, &m); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal parameters schema")
		}
		return shared.FunctionParameters(m), nil
	}
}
