package tools

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/stickynotes/pkg/llmutils"
	mcp "github.com/metoro-io/mcp-golang"
)

var (
	// ErrFailedUnmarshalInput is returned when a tool cannot decode its input
	// into the typed request.
	ErrFailedUnmarshalInput = errors.New("failed to unmarshal input: check the schema and try again")

	// ErrInvalidArguments is returned when a decoded request fails
	// validation against the tool's schema.
	ErrInvalidArguments = errors.New("invalid arguments: check the schema and try again")
)

// McpServerRegistrator registers a tool handler with an MCP server.
type McpServerRegistrator interface {
	RegisterTool(name string, description string, handler any) error
}

// ITool is a callable function exposed to the llm agent.
type ITool interface {
	// Name returns the name of the Tool.
	Name() string
	// Description returns the description of the tool, to be used in the prompt.
	// Should not exceed LLM model limit.
	Description() string
	// Parameters returns the parameters definition of the function, to be used in the prompt.
	Parameters() any

	// Call executes the tool with the given input and returns the result.
	// If the tool fails to parse the input, it should return ErrFailedUnmarshalInput error.
	Call(context.Context, string) (string, error)
}

// Tool is a typed tool with a structured request and response.
type Tool[I any, O any] interface {
	ITool
	Run(context.Context, *I) (*O, error)
}

// IMCPTool is an interface that extends ITool to include functionality for
// registering the tool with an MCP server.
// The RegisterMCP method allows the tool to be registered with a given
// MCP Server.
type IMCPTool interface {
	ITool
	RegisterMCP(registrator McpServerRegistrator) error
}

// MCPTool is a typed tool that can serve MCP tool calls directly.
type MCPTool[I any] interface {
	IMCPTool
	RunMCP(context.Context, *I) (*mcp.ToolResponse, error)
}

type toolDescription struct {
	Name        string `json:"Name" yaml:"Name"`
	Description string `json:"Description" yaml:"Description"`
}

type toolsDescription struct {
	Tools []toolDescription `json:"Tools" yaml:"Tools"`
}

// GetDescriptions renders the tool list as a fenced JSON block for prompts.
func GetDescriptions(list ...ITool) string {
	var d toolsDescription
	for _, tool := range list {
		d.Tools = append(d.Tools, toolDescription{
			Name:        tool.Name(),
			Description: tool.Description(),
		})
	}
	return llmutils.BackticksJSON(llmutils.ToJSONIndent(d))
}

// UniqueNames reports whether every tool name in the list is unique,
// ignoring case.
func UniqueNames(list ...ITool) bool {
	seen := make(map[string]struct{}, len(list))
	for _, tool := range list {
		name := strings.ToLower(tool.Name())
		if _, ok := seen[name]; ok {
			return false
		}
		seen[name] = struct{}{}
	}
	return true
}
