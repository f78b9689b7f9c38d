package assistant_test

import (
	"context"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/stickynotes/assistant"
	"github.com/effective-security/stickynotes/pkg/llms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeModel replays canned responses and records every call it receives.
type fakeModel struct {
	responses []*llms.ContentResponse
	errs      []error

	calls    int
	messages [][]llms.Message
	options  []*llms.CallOptions
}

func (m *fakeModel) GetProviderType() llms.ProviderType { return llms.ProviderOpenAI }
func (m *fakeModel) GetName() string                    { return "fake" }

func (m *fakeModel) GenerateContent(_ context.Context, messages []llms.Message, options ...llms.CallOption) (*llms.ContentResponse, error) {
	opts := &llms.CallOptions{}
	for _, o := range options {
		o(opts)
	}
	idx := m.calls
	m.calls++
	m.messages = append(m.messages, messages)
	m.options = append(m.options, opts)

	if idx < len(m.errs) && m.errs[idx] != nil {
		return nil, m.errs[idx]
	}
	if idx >= len(m.responses) {
		return nil, errors.Errorf("unexpected model call %d", idx)
	}
	return m.responses[idx], nil
}

type fakeSession struct {
	tools   []llms.Tool
	results map[string]string
	errs    map[string]error

	mu    sync.Mutex
	calls []string
}

func (s *fakeSession) ListTools(_ context.Context) ([]llms.Tool, error) {
	return s.tools, nil
}

// CallTool is invoked from concurrent goroutines; the call log is guarded.
func (s *fakeSession) CallTool(_ context.Context, name string, _ any) (string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, name)
	s.mu.Unlock()
	if err := s.errs[name]; err != nil {
		return "", err
	}
	return s.results[name], nil
}

func (s *fakeSession) calledTools() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.calls))
	copy(out, s.calls)
	return out
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		tools: []llms.Tool{
			{
				Type: "function",
				Function: &llms.FunctionDefinition{
					Name:        "add_note",
					Description: "Append a new note.",
					Parameters:  map[string]any{"type": "object"},
				},
			},
			{
				Type: "function",
				Function: &llms.FunctionDefinition{
					Name:        "read_notes",
					Description: "Read all notes.",
					Parameters:  map[string]any{"type": "object"},
				},
			},
		},
		results: map[string]string{
			"add_note":   "Note saved!",
			"read_notes": "No notes yet.",
		},
		errs: map[string]error{},
	}
}

func textResponse(content string) *llms.ContentResponse {
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: content}},
	}
}

func toolCallResponse(calls ...llms.ToolCall) *llms.ContentResponse {
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{ToolCalls: calls}},
	}
}

func Test_Query_NoToolCalls(t *testing.T) {
	ctx := context.Background()
	session := newFakeSession()
	model := &fakeModel{
		responses: []*llms.ContentResponse{textResponse("Hi there!")},
	}

	agent, err := assistant.New(ctx, model, session)
	require.NoError(t, err)
	assert.Equal(t, []string{"add_note", "read_notes"}, agent.ToolNames())

	answer, err := agent.Query(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, "Hi there!", answer)

	// A single model call carrying the user query alone, no tool invocations.
	assert.Equal(t, 1, model.calls)
	assert.Empty(t, session.calledTools())
	assert.Equal(t, llms.ToolChoiceAuto, model.options[0].ToolChoice)
	assert.Len(t, model.options[0].Tools, 2)

	first := model.messages[0]
	require.Len(t, first, 1)
	assert.Equal(t, llms.RoleHuman, first[0].Role)
	assert.Len(t, agent.LastRunMessages(), 1)
}

func Test_Query_SingleToolCall(t *testing.T) {
	ctx := context.Background()
	session := newFakeSession()
	model := &fakeModel{
		responses: []*llms.ContentResponse{
			toolCallResponse(llms.ToolCall{
				ID:   "call_1",
				Type: "function",
				FunctionCall: &llms.FunctionCall{
					Name:      "add_note",
					Arguments: `{"message": "buy milk"}`,
				},
			}),
			textResponse("Saved your note."),
		},
	}

	agent, err := assistant.New(ctx, model, session)
	require.NoError(t, err)

	answer, err := agent.Query(ctx, "note down: buy milk")
	require.NoError(t, err)
	assert.Equal(t, "Saved your note.", answer)

	require.Equal(t, 2, model.calls)
	assert.Equal(t, llms.ToolChoiceAuto, model.options[0].ToolChoice)
	assert.Equal(t, llms.ToolChoiceNone, model.options[1].ToolChoice)
	assert.Equal(t, []string{"add_note"}, session.calledTools())

	// user + assistant replay + one tool result.
	second := model.messages[1]
	require.Len(t, second, 3)
	assert.Equal(t, llms.RoleHuman, second[0].Role)
	assert.Equal(t, llms.RoleAI, second[1].Role)
	require.Len(t, second[1].ToolCalls(), 1)
	assert.Equal(t, "call_1", second[1].ToolCalls()[0].ID)

	assert.Equal(t, llms.RoleTool, second[2].Role)
	resp, ok := second[2].Parts[0].(llms.ToolCallResponse)
	require.True(t, ok)
	assert.Equal(t, "call_1", resp.ToolCallID)
	assert.Equal(t, "add_note", resp.Name)
	assert.Equal(t, "Note saved!", resp.Content)
}

func Test_Query_MultipleToolCalls_KeepOrder(t *testing.T) {
	ctx := context.Background()
	session := newFakeSession()
	model := &fakeModel{
		responses: []*llms.ContentResponse{
			toolCallResponse(
				llms.ToolCall{
					ID:           "call_a",
					FunctionCall: &llms.FunctionCall{Name: "read_notes", Arguments: "{}"},
				},
				llms.ToolCall{
					ID:           "call_b",
					FunctionCall: &llms.FunctionCall{Name: "add_note", Arguments: `{"message": "x"}`},
				},
			),
			textResponse("Done."),
		},
	}

	agent, err := assistant.New(ctx, model, session)
	require.NoError(t, err)

	answer, err := agent.Query(ctx, "read then add")
	require.NoError(t, err)
	assert.Equal(t, "Done.", answer)

	// One tool message per call, in the order the model requested them.
	second := model.messages[1]
	require.Len(t, second, 4)

	first, ok := second[2].Parts[0].(llms.ToolCallResponse)
	require.True(t, ok)
	assert.Equal(t, "call_a", first.ToolCallID)
	assert.Equal(t, "No notes yet.", first.Content)

	next, ok := second[3].Parts[0].(llms.ToolCallResponse)
	require.True(t, ok)
	assert.Equal(t, "call_b", next.ToolCallID)
	assert.Equal(t, "Note saved!", next.Content)
}

func Test_Query_MissingCallID(t *testing.T) {
	ctx := context.Background()
	session := newFakeSession()
	model := &fakeModel{
		responses: []*llms.ContentResponse{
			toolCallResponse(llms.ToolCall{
				FunctionCall: &llms.FunctionCall{Name: "read_notes", Arguments: ""},
			}),
			textResponse("Empty."),
		},
	}

	agent, err := assistant.New(ctx, model, session)
	require.NoError(t, err)

	_, err = agent.Query(ctx, "what notes do I have?")
	require.NoError(t, err)

	second := model.messages[1]
	require.Len(t, second, 3)
	calls := second[1].ToolCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "read_notes_0", calls[0].ID)
	assert.Equal(t, "function", calls[0].Type)

	resp, ok := second[2].Parts[0].(llms.ToolCallResponse)
	require.True(t, ok)
	assert.Equal(t, "read_notes_0", resp.ToolCallID)
}

func Test_Query_UnknownTool(t *testing.T) {
	ctx := context.Background()
	session := newFakeSession()
	model := &fakeModel{
		responses: []*llms.ContentResponse{
			toolCallResponse(llms.ToolCall{
				ID:           "call_1",
				FunctionCall: &llms.FunctionCall{Name: "launch_rockets", Arguments: "{}"},
			}),
		},
	}

	agent, err := assistant.New(ctx, model, session)
	require.NoError(t, err)

	_, err = agent.Query(ctx, "do something weird")
	assert.ErrorIs(t, err, assistant.ErrUnknownTool)
	assert.Empty(t, session.calledTools())

	// The assistant stays usable for the next query.
	model.responses = append(model.responses, textResponse("Hello!"))
	answer, err := agent.Query(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, "Hello!", answer)
}

func Test_Query_MalformedArguments(t *testing.T) {
	ctx := context.Background()
	session := newFakeSession()
	model := &fakeModel{
		responses: []*llms.ContentResponse{
			toolCallResponse(llms.ToolCall{
				ID:           "call_1",
				FunctionCall: &llms.FunctionCall{Name: "add_note", Arguments: `{"message": `},
			}),
		},
	}

	agent, err := assistant.New(ctx, model, session)
	require.NoError(t, err)

	_, err = agent.Query(ctx, "add a note")
	assert.ErrorIs(t, err, assistant.ErrMalformedArguments)
	assert.Empty(t, session.calledTools())
}

func Test_Query_ToolExecutionError(t *testing.T) {
	ctx := context.Background()
	session := newFakeSession()
	session.errs["add_note"] = errors.New("disk full")
	model := &fakeModel{
		responses: []*llms.ContentResponse{
			toolCallResponse(llms.ToolCall{
				ID:           "call_1",
				FunctionCall: &llms.FunctionCall{Name: "add_note", Arguments: `{"message": "x"}`},
			}),
		},
	}

	agent, err := assistant.New(ctx, model, session)
	require.NoError(t, err)

	_, err = agent.Query(ctx, "add a note")
	assert.ErrorIs(t, err, assistant.ErrToolExecution)
	assert.Contains(t, err.Error(), "add_note")
}

func Test_Query_ModelAPIError(t *testing.T) {
	ctx := context.Background()
	session := newFakeSession()
	model := &fakeModel{
		errs: []error{errors.New("429 rate limited")},
	}

	agent, err := assistant.New(ctx, model, session)
	require.NoError(t, err)

	_, err = agent.Query(ctx, "hello")
	assert.ErrorIs(t, err, assistant.ErrModelAPI)
}

func Test_Query_MessageListLengths(t *testing.T) {
	ctx := context.Background()
	session := newFakeSession()
	model := &fakeModel{
		responses: []*llms.ContentResponse{
			toolCallResponse(llms.ToolCall{
				ID:           "call_1",
				FunctionCall: &llms.FunctionCall{Name: "add_note", Arguments: `{"message": "buy milk"}`},
			}),
			textResponse("Saved."),
		},
	}

	agent, err := assistant.New(ctx, model, session)
	require.NoError(t, err)

	_, err = agent.Query(ctx, "add a note saying buy milk")
	require.NoError(t, err)

	// The first call carries the user query alone; the second carries
	// user + assistant + one tool message per requested call.
	require.Equal(t, 2, model.calls)
	assert.Len(t, model.messages[0], 1)
	assert.Len(t, model.messages[1], 3)
	assert.Equal(t, llms.RoleHuman, model.messages[1][0].Role)
	assert.Equal(t, llms.RoleAI, model.messages[1][1].Role)
	assert.Equal(t, llms.RoleTool, model.messages[1][2].Role)
}

func Test_Query_SystemPrompt(t *testing.T) {
	ctx := context.Background()
	session := newFakeSession()
	model := &fakeModel{
		responses: []*llms.ContentResponse{textResponse("ok")},
	}

	agent, err := assistant.New(ctx, model, session)
	require.NoError(t, err)
	agent.WithSystemPrompt("You are a note keeper.")

	_, err = agent.Query(ctx, "hello")
	require.NoError(t, err)

	first := model.messages[0]
	require.Len(t, first, 2)
	assert.Equal(t, llms.RoleSystem, first[0].Role)
	assert.Equal(t, "You are a note keeper.\n", first[0].GetContent())
	assert.Equal(t, llms.RoleHuman, first[1].Role)
}
