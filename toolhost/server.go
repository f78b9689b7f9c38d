// Package toolhost exposes the sticky-note tools, resources and prompts over
// the MCP protocol, and provides the client session used to invoke them.
package toolhost

import (
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/stickynotes/store"
	"github.com/effective-security/stickynotes/tools"
	"github.com/effective-security/stickynotes/tools/ascii"
	"github.com/effective-security/stickynotes/tools/notes"
	"github.com/effective-security/xlog"
	mcp "github.com/metoro-io/mcp-golang"
	"github.com/metoro-io/mcp-golang/transport"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/stickynotes", "toolhost")

const (
	// ServerName identifies the tool host to connecting clients.
	ServerName = "stickynotes"
	// ServerVersion is reported during the MCP handshake.
	ServerVersion = "0.1.0"

	// DinoJoke is the static joke served at joke://dino.
	DinoJoke = "Why don't dinosaurs ever pay their bills? Because they're dead broke! 🦕"
)

// GreetingArgs is the input of the greeting prompt.
type GreetingArgs struct {
	Name string `json:"name" jsonschema:"required,description=The name to greet."`
}

// NoteSummaryArgs is the input of the note_summary prompt. It takes no
// arguments.
type NoteSummaryArgs struct{}

// Server assembles the MCP server: the fixed tool set over a note store,
// the read-only resources and the prompt templates. Registration happens
// once at construction; the tool set is immutable afterwards.
type Server struct {
	server *mcp.Server
	store  store.NoteStore
	tools  []tools.IMCPTool
}

// NewServer registers all tools, resources and prompts on the given
// transport.
func NewServer(tr transport.Transport, noteStore store.NoteStore) (*Server, error) {
	addTool, err := notes.NewAddTool(noteStore)
	if err != nil {
		return nil, err
	}
	readTool, err := notes.NewReadTool(noteStore)
	if err != nil {
		return nil, err
	}
	countTool, err := notes.NewCountTool(noteStore)
	if err != nil {
		return nil, err
	}
	rabbitTool, err := ascii.NewRabbitTool()
	if err != nil {
		return nil, err
	}

	s := &Server{
		server: mcp.NewServer(tr, mcp.WithName(ServerName), mcp.WithVersion(ServerVersion)),
		store:  noteStore,
		tools:  []tools.IMCPTool{addTool, readTool, countTool, rabbitTool},
	}

	if !tools.UniqueNames(toITools(s.tools)...) {
		return nil, errors.New("tool names must be unique")
	}

	for _, t := range s.tools {
		if err := t.RegisterMCP(s.server); err != nil {
			return nil, errors.WithMessagef(err, "failed to register tool %s", t.Name())
		}
	}
	if err := s.registerResources(); err != nil {
		return nil, err
	}
	if err := s.registerPrompts(); err != nil {
		return nil, err
	}

	logger.KV(xlog.INFO,
		"status", "registered",
		"tools", len(s.tools),
	)
	return s, nil
}

// Serve starts handling requests on the transport.
func (s *Server) Serve() error {
	return s.server.Serve()
}

// Tools returns the registered tool set.
func (s *Server) Tools() []tools.IMCPTool {
	return s.tools
}

func (s *Server) registerResources() error {
	err := s.server.RegisterResource("joke://dino", "dino_joke", "Get a bad joke from Dino.", "text/plain",
		func() (*mcp.ResourceResponse, error) {
			return mcp.NewResourceResponse(mcp.NewTextEmbeddedResource("joke://dino", DinoJoke, "text/plain")), nil
		})
	if err != nil {
		return errors.WithMessage(err, "failed to register joke resource")
	}

	err = s.server.RegisterResource("notes://latest", "latest_note", "Get the most recently added note.", "text/plain",
		func(ctx context.Context) (*mcp.ResourceResponse, error) {
			latest, err := s.store.Latest(ctx)
			if errors.Is(err, store.ErrNoNotes) {
				latest = notes.NoNotesMessage
			} else if err != nil {
				return nil, err
			}
			return mcp.NewResourceResponse(mcp.NewTextEmbeddedResource("notes://latest", latest, "text/plain")), nil
		})
	if err != nil {
		return errors.WithMessage(err, "failed to register latest note resource")
	}
	return nil
}

// Prompt handlers take the arguments struct first; the MCP layer reflects
// the prompt schema from the first parameter and does not pass a context.
func (s *Server) registerPrompts() error {
	err := s.server.RegisterPrompt("greeting", "Get a personalized greeting.",
		func(args GreetingArgs) (*mcp.PromptResponse, error) {
			greeting := fmt.Sprintf("Hello, %s!", args.Name)
			return mcp.NewPromptResponse("greeting",
				mcp.NewPromptMessage(mcp.NewTextContent(greeting), mcp.RoleUser)), nil
		})
	if err != nil {
		return errors.WithMessage(err, "failed to register greeting prompt")
	}

	err = s.server.RegisterPrompt("note_summary", "Ask the AI to summarize all current notes.",
		func(args NoteSummaryArgs) (*mcp.PromptResponse, error) {
			list, err := s.store.List(context.Background())
			if err != nil {
				return nil, err
			}
			prompt := "There are no notes yet."
			if len(list) > 0 {
				prompt = "Summarize the current notes: " + strings.Join(list, "\n")
			}
			return mcp.NewPromptResponse("note_summary",
				mcp.NewPromptMessage(mcp.NewTextContent(prompt), mcp.RoleUser)), nil
		})
	if err != nil {
		return errors.WithMessage(err, "failed to register note summary prompt")
	}
	return nil
}

func toITools(list []tools.IMCPTool) []tools.ITool {
	out := make([]tools.ITool, len(list))
	for i, t := range list {
		out[i] = t
	}
	return out
}
