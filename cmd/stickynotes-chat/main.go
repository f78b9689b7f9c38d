// Command stickynotes-chat is an interactive client for the sticky-note
// tool host. It spawns the tool host as a subprocess, fetches its tool
// list and answers queries with a chat model, resolving one round of tool
// calls per query.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/effective-security/stickynotes/assistant"
	"github.com/effective-security/stickynotes/llmfactory"
	"github.com/effective-security/stickynotes/toolhost"
	"github.com/metoro-io/mcp-golang/transport/stdio"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, in io.Reader, out, errOut io.Writer) int {
	fs := flag.NewFlagSet("stickynotes-chat", flag.ContinueOnError)
	fs.SetOutput(errOut)

	serverCmd := fs.String("server", "stickynotes-server", "tool host command to spawn")
	cfgFile := fs.String("cfg", "", "optional YAML configuration file")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	ctx := context.Background()

	cfg, err := loadConfig(*cfgFile)
	if err != nil {
		fmt.Fprintln(errOut, "configuration error:", err)
		return 1
	}
	model, err := llmfactory.New(cfg)
	if err != nil {
		fmt.Fprintln(errOut, "configuration error:", err)
		return 1
	}

	session, stop, err := spawnToolHost(ctx, *serverCmd, errOut)
	if err != nil {
		fmt.Fprintln(errOut, "failed to start tool host:", err)
		return 1
	}
	defer stop()

	if _, err := session.Connect(ctx); err != nil {
		fmt.Fprintln(errOut, "failed to connect to tool host:", err)
		return 1
	}

	agent, err := assistant.New(ctx, model, session)
	if err != nil {
		fmt.Fprintln(errOut, "failed to fetch tools:", err)
		return 1
	}

	fmt.Fprintln(out, "Connected. Available tools:")
	for _, tool := range agent.Tools() {
		if tool.Function != nil {
			fmt.Fprintf(out, "  - %s: %s\n", tool.Function.Name, tool.Function.Description)
		}
	}
	fmt.Fprintln(out, "Type a question, or exit/quit/bye to leave.")

	chat(ctx, agent, in, out)
	return 0
}

func chat(ctx context.Context, agent *assistant.Assistant, in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "\nQuery: ")
		if !scanner.Scan() {
			return
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		if isExit(query) {
			fmt.Fprintln(out, "Bye!")
			return
		}

		answer, err := agent.Query(ctx, query)
		if err != nil {
			fmt.Fprintln(out, "Error:", err)
			continue
		}
		fmt.Fprintln(out, answer)
	}
}

func isExit(query string) bool {
	switch strings.ToLower(query) {
	case "exit", "quit", "bye":
		return true
	}
	return false
}

func loadConfig(cfgFile string) (*llmfactory.Config, error) {
	if cfgFile != "" {
		return llmfactory.LoadConfigFile(cfgFile)
	}
	return llmfactory.LoadConfig()
}

// spawnToolHost starts the tool host subprocess and returns a session over
// its stdio pipes.
func spawnToolHost(ctx context.Context, command string, errOut io.Writer) (*toolhost.Session, func(), error) {
	parts := strings.Fields(command)
	cmd := exec.CommandContext(ctx, parts[0], parts[1:]...)
	cmd.Stderr = errOut

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, nil, err
	}

	stop := func() {
		_ = stdin.Close()
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	}

	session := toolhost.NewSession(stdio.NewStdioServerTransportWithIO(stdout, stdin))
	return session, stop, nil
}
