package notes

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/stickynotes/pkg/llmutils"
	"github.com/effective-security/stickynotes/pkg/schema"
	"github.com/effective-security/stickynotes/store"
	"github.com/effective-security/stickynotes/tools"
	mcp "github.com/metoro-io/mcp-golang"
)

const CountToolName = "count_notes"

// CountRequest represents the count_notes tool input. The tool takes no
// arguments.
type CountRequest struct{}

// CountResult carries the number of stored notes.
type CountResult struct {
	Count int `json:"count"`
}

// CountTool reports how many notes are in the sticky note store.
type CountTool struct {
	name        string
	description string
	funcParams  any

	store store.NoteStore
}

var (
	_ tools.Tool[CountRequest, CountResult] = (*CountTool)(nil)
	_ tools.MCPTool[CountRequest]           = (*CountTool)(nil)
)

// NewCountTool returns the count_notes tool over the given store.
func NewCountTool(noteStore store.NoteStore) (*CountTool, error) {
	sc, err := schema.New(reflect.TypeOf(CountRequest{}))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create schema")
	}
	return &CountTool{
		name:        CountToolName,
		description: "Count the notes in the sticky note file.",
		funcParams:  sc.Parameters,
		store:       noteStore,
	}, nil
}

func (t *CountTool) Name() string {
	return t.name
}

func (t *CountTool) Description() string {
	return t.description
}

func (t *CountTool) Parameters() any {
	return t.funcParams
}

func (t *CountTool) Run(ctx context.Context, _ *CountRequest) (*CountResult, error) {
	n, err := t.store.Count(ctx)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to count notes")
	}
	return &CountResult{Count: n}, nil
}

func (t *CountTool) Call(ctx context.Context, input string) (string, error) {
	var req CountRequest
	if input != "" {
		if err := json.Unmarshal(llmutils.CleanJSON([]byte(input)), &req); err != nil {
			return "", errors.WithStack(tools.ErrFailedUnmarshalInput)
		}
	}
	res, err := t.Run(ctx, &req)
	if err != nil {
		return "", err
	}
	return formatCount(res.Count), nil
}

func (t *CountTool) RunMCP(ctx context.Context, req *CountRequest) (*mcp.ToolResponse, error) {
	res, err := t.Run(ctx, req)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResponse(mcp.NewTextContent(formatCount(res.Count))), nil
}

func (t *CountTool) RegisterMCP(registrator tools.McpServerRegistrator) error {
	return registrator.RegisterTool(t.Name(), t.Description(), func(ctx context.Context, args CountRequest) (*mcp.ToolResponse, error) {
		return t.RunMCP(ctx, &args)
	})
}

func formatCount(n int) string {
	if n == 1 {
		return "There is 1 note."
	}
	return fmt.Sprintf("There are %d notes.", n)
}
