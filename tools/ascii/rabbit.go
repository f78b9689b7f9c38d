// Package ascii provides drawing tools that return literal ASCII art.
package ascii

import (
	"context"
	"encoding/json"
	"reflect"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/stickynotes/pkg/llmutils"
	"github.com/effective-security/stickynotes/pkg/schema"
	"github.com/effective-security/stickynotes/tools"
	mcp "github.com/metoro-io/mcp-golang"
)

const RabbitToolName = "draw_ascii_rabbit"

const rabbitArt = `
   /|   /|
  ( :v:  )
   |(_)|
  /     \
 /       \
/         \
(___________)

(\   /)
( ._. )
o_(")(")

 Or this one:

    /|      /|
   (  :v:  )
    )   (
   (  v  )
  ^^  o  ^^
`

// RabbitRequest represents the draw_ascii_rabbit tool input. The tool takes
// no arguments.
type RabbitRequest struct{}

// RabbitResult carries the drawing.
type RabbitResult struct {
	Art string `json:"art"`
}

// RabbitTool draws a cute ASCII rabbit.
type RabbitTool struct {
	name        string
	description string
	funcParams  any
}

var (
	_ tools.Tool[RabbitRequest, RabbitResult] = (*RabbitTool)(nil)
	_ tools.MCPTool[RabbitRequest]            = (*RabbitTool)(nil)
)

// NewRabbitTool returns the draw_ascii_rabbit tool.
func NewRabbitTool() (*RabbitTool, error) {
	sc, err := schema.New(reflect.TypeOf(RabbitRequest{}))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create schema")
	}
	return &RabbitTool{
		name:        RabbitToolName,
		description: "Draw a cute ASCII rabbit.",
		funcParams:  sc.Parameters,
	}, nil
}

func (t *RabbitTool) Name() string {
	return t.name
}

func (t *RabbitTool) Description() string {
	return t.description
}

func (t *RabbitTool) Parameters() any {
	return t.funcParams
}

func (t *RabbitTool) Run(_ context.Context, _ *RabbitRequest) (*RabbitResult, error) {
	return &RabbitResult{Art: rabbitArt}, nil
}

func (t *RabbitTool) Call(ctx context.Context, input string) (string, error) {
	var req RabbitRequest
	if input != "" {
		if err := json.Unmarshal(llmutils.CleanJSON([]byte(input)), &req); err != nil {
			return "", errors.WithStack(tools.ErrFailedUnmarshalInput)
		}
	}
	res, err := t.Run(ctx, &req)
	if err != nil {
		return "", err
	}
	return res.Art, nil
}

func (t *RabbitTool) RunMCP(ctx context.Context, req *RabbitRequest) (*mcp.ToolResponse, error) {
	res, err := t.Run(ctx, req)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResponse(mcp.NewTextContent(res.Art)), nil
}

func (t *RabbitTool) RegisterMCP(registrator tools.McpServerRegistrator) error {
	return registrator.RegisterTool(t.Name(), t.Description(), func(ctx context.Context, args RabbitRequest) (*mcp.ToolResponse, error) {
		return t.RunMCP(ctx, &args)
	})
}
