package notes

import (
	"context"
	"encoding/json"
	"reflect"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/stickynotes/pkg/llmutils"
	"github.com/effective-security/stickynotes/pkg/schema"
	"github.com/effective-security/stickynotes/store"
	"github.com/effective-security/stickynotes/tools"
	mcp "github.com/metoro-io/mcp-golang"
)

const AddToolName = "add_note"

// AddRequest represents the add_note tool input.
type AddRequest struct {
	Message string `json:"message" jsonschema:"required,description=The note content to be added." validate:"required"`
}

// AddResult is the confirmation returned after a note was saved.
type AddResult struct {
	Confirmation string `json:"confirmation"`
}

// AddTool appends a new note to the sticky note store.
type AddTool struct {
	name        string
	description string
	funcParams  any

	store store.NoteStore
}

var (
	_ tools.Tool[AddRequest, AddResult] = (*AddTool)(nil)
	_ tools.MCPTool[AddRequest]         = (*AddTool)(nil)
)

// NewAddTool returns the add_note tool over the given store.
func NewAddTool(noteStore store.NoteStore) (*AddTool, error) {
	sc, err := schema.New(reflect.TypeOf(AddRequest{}))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create schema")
	}
	return &AddTool{
		name:        AddToolName,
		description: "Append a new note to the sticky note file.",
		funcParams:  sc.Parameters,
		store:       noteStore,
	}, nil
}

func (t *AddTool) Name() string {
	return t.name
}

func (t *AddTool) Description() string {
	return t.description
}

func (t *AddTool) Parameters() any {
	return t.funcParams
}

func (t *AddTool) Run(ctx context.Context, req *AddRequest) (*AddResult, error) {
	if err := validate.Struct(req); err != nil {
		return nil, errors.WithMessagef(tools.ErrInvalidArguments, "%s", err.Error())
	}
	if err := t.store.Add(ctx, req.Message); err != nil {
		return nil, errors.WithMessage(err, "failed to save note")
	}
	return &AddResult{Confirmation: "Note saved!"}, nil
}

func (t *AddTool) Call(ctx context.Context, input string) (string, error) {
	var req AddRequest
	if err := json.Unmarshal(llmutils.CleanJSON([]byte(input)), &req); err != nil {
		return "", errors.WithStack(tools.ErrFailedUnmarshalInput)
	}
	res, err := t.Run(ctx, &req)
	if err != nil {
		return "", err
	}
	return res.Confirmation, nil
}

func (t *AddTool) RunMCP(ctx context.Context, req *AddRequest) (*mcp.ToolResponse, error) {
	res, err := t.Run(ctx, req)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResponse(mcp.NewTextContent(res.Confirmation)), nil
}

func (t *AddTool) RegisterMCP(registrator tools.McpServerRegistrator) error {
	return registrator.RegisterTool(t.Name(), t.Description(), func(ctx context.Context, args AddRequest) (*mcp.ToolResponse, error) {
		return t.RunMCP(ctx, &args)
	})
}
