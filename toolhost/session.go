package toolhost

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/stickynotes/pkg/llms"
	"github.com/effective-security/stickynotes/pkg/llmutils"
	"github.com/effective-security/xlog"
	mcp "github.com/metoro-io/mcp-golang"
	"github.com/metoro-io/mcp-golang/transport"
)

// Session is a client connection to a tool host. It wraps the MCP client
// with the conversions the orchestration layer needs: tool listings in the
// model function-calling shape, and tool results coerced to plain text.
type Session struct {
	client *mcp.Client
}

// NewSession creates a session over the given transport. Call Connect
// before any other method.
func NewSession(tr transport.Transport) *Session {
	return &Session{
		client: mcp.NewClient(tr),
	}
}

// Connect performs the MCP initialize handshake.
func (s *Session) Connect(ctx context.Context) (*mcp.InitializeResponse, error) {
	resp, err := s.client.Initialize(ctx)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to initialize session")
	}
	logger.ContextKV(ctx, xlog.DEBUG,
		"status", "connected",
		"server", resp.ServerInfo.Name,
		"version", resp.ServerInfo.Version,
	)
	return resp, nil
}

// ListTools fetches the host's tool list and converts it to the model
// function-calling shape. Input schemas are passed through untouched.
func (s *Session) ListTools(ctx context.Context) ([]llms.Tool, error) {
	resp, err := s.client.ListTools(ctx, nil)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to list tools")
	}
	list := make([]llms.Tool, 0, len(resp.Tools))
	for _, t := range resp.Tools {
		fn := &llms.FunctionDefinition{
			Name:       t.Name,
			Parameters: t.InputSchema,
		}
		if t.Description != nil {
			fn.Description = *t.Description
		}
		list = append(list, llms.Tool{
			Type:     "function",
			Function: fn,
		})
	}
	return list, nil
}

// CallTool invokes a tool on the host and coerces its result to text.
func (s *Session) CallTool(ctx context.Context, name string, args any) (string, error) {
	resp, err := s.client.CallTool(ctx, name, args)
	if err != nil {
		return "", errors.WithMessagef(err, "failed to call tool %s", name)
	}
	return CoerceText(resp), nil
}

// ReadResource fetches a resource from the host.
func (s *Session) ReadResource(ctx context.Context, uri string) (*mcp.ResourceResponse, error) {
	resp, err := s.client.ReadResource(ctx, uri)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to read resource %s", uri)
	}
	return resp, nil
}

// GetPrompt renders a prompt template on the host.
func (s *Session) GetPrompt(ctx context.Context, name string, args any) (*mcp.PromptResponse, error) {
	resp, err := s.client.GetPrompt(ctx, name, args)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to get prompt %s", name)
	}
	return resp, nil
}

// CoerceText flattens a tool response to a single string: the first
// element's text when it has one, otherwise the first element serialized
// as JSON.
func CoerceText(resp *mcp.ToolResponse) string {
	if resp == nil || len(resp.Content) == 0 {
		return ""
	}
	first := resp.Content[0]
	if first != nil && first.TextContent != nil {
		return first.TextContent.Text
	}
	return llmutils.ToJSON(first)
}
