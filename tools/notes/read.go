package notes

import (
	"context"
	"encoding/json"
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/stickynotes/pkg/llmutils"
	"github.com/effective-security/stickynotes/pkg/schema"
	"github.com/effective-security/stickynotes/store"
	"github.com/effective-security/stickynotes/tools"
	mcp "github.com/metoro-io/mcp-golang"
)

const ReadToolName = "read_notes"

// ReadRequest represents the read_notes tool input. The tool takes no
// arguments.
type ReadRequest struct{}

// ReadResult carries all notes as a single newline-separated string.
type ReadResult struct {
	Content string `json:"content"`
}

// ReadTool returns all notes from the sticky note store.
type ReadTool struct {
	name        string
	description string
	funcParams  any

	store store.NoteStore
}

var (
	_ tools.Tool[ReadRequest, ReadResult] = (*ReadTool)(nil)
	_ tools.MCPTool[ReadRequest]          = (*ReadTool)(nil)
)

// NewReadTool returns the read_notes tool over the given store.
func NewReadTool(noteStore store.NoteStore) (*ReadTool, error) {
	sc, err := schema.New(reflect.TypeOf(ReadRequest{}))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create schema")
	}
	return &ReadTool{
		name:        ReadToolName,
		description: "Read and return all notes from the sticky note file.",
		funcParams:  sc.Parameters,
		store:       noteStore,
	}, nil
}

func (t *ReadTool) Name() string {
	return t.name
}

func (t *ReadTool) Description() string {
	return t.description
}

func (t *ReadTool) Parameters() any {
	return t.funcParams
}

func (t *ReadTool) Run(ctx context.Context, _ *ReadRequest) (*ReadResult, error) {
	list, err := t.store.List(ctx)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to read notes")
	}
	content := strings.Join(list, "\n")
	if content == "" {
		content = NoNotesMessage
	}
	return &ReadResult{Content: content}, nil
}

func (t *ReadTool) Call(ctx context.Context, input string) (string, error) {
	var req ReadRequest
	if input != "" {
		if err := json.Unmarshal(llmutils.CleanJSON([]byte(input)), &req); err != nil {
			return "", errors.WithStack(tools.ErrFailedUnmarshalInput)
		}
	}
	res, err := t.Run(ctx, &req)
	if err != nil {
		return "", err
	}
	return res.Content, nil
}

func (t *ReadTool) RunMCP(ctx context.Context, req *ReadRequest) (*mcp.ToolResponse, error) {
	res, err := t.Run(ctx, req)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResponse(mcp.NewTextContent(res.Content)), nil
}

func (t *ReadTool) RegisterMCP(registrator tools.McpServerRegistrator) error {
	return registrator.RegisterTool(t.Name(), t.Description(), func(ctx context.Context, args ReadRequest) (*mcp.ToolResponse, error) {
		return t.RunMCP(ctx, &args)
	})
}
