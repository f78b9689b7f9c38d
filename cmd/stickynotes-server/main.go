// Command stickynotes-server runs the sticky-note tool host over stdio.
// It is normally started as a subprocess by stickynotes-chat, but works
// with any MCP client that speaks stdio.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/effective-security/stickynotes/store"
	"github.com/effective-security/stickynotes/toolhost"
	"github.com/joho/godotenv"
	"github.com/metoro-io/mcp-golang/transport/stdio"
	"github.com/redis/go-redis/v9"
)

const defaultNotesFile = "notes.txt"

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, errOut io.Writer) int {
	fs := flag.NewFlagSet("stickynotes-server", flag.ContinueOnError)
	fs.SetOutput(errOut)

	notesFile := fs.String("notes", "", "path to the notes file (default notes.txt)")
	redisAddr := fs.String("redis", "", "redis address; overrides the notes file")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	// stdout carries the protocol; only .env convenience here.
	_ = godotenv.Load()

	// Wrap stdin so the client closing its end is observable; the protocol
	// layer owns the transport's own close handler.
	in := newEOFNotifyReader(os.Stdin)

	server, err := toolhost.NewServer(stdio.NewStdioServerTransportWithIO(in, os.Stdout), buildStore(*notesFile, *redisAddr))
	if err != nil {
		fmt.Fprintln(errOut, "failed to start tool host:", err)
		return 1
	}
	if err := server.Serve(); err != nil {
		fmt.Fprintln(errOut, "tool host failed:", err)
		return 1
	}

	// Serve returns after wiring the transport; stay up until the client
	// closes stdin or the process is signalled.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	select {
	case <-in.done:
	case <-sig:
	}
	return 0
}

// eofNotifyReader closes its done channel the first time the underlying
// reader reports EOF.
type eofNotifyReader struct {
	r    io.Reader
	once sync.Once
	done chan struct{}
}

func newEOFNotifyReader(r io.Reader) *eofNotifyReader {
	return &eofNotifyReader{
		r:    r,
		done: make(chan struct{}),
	}
}

func (r *eofNotifyReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if err == io.EOF {
		r.once.Do(func() {
			close(r.done)
		})
	}
	return n, err
}

func buildStore(notesFile, redisAddr string) store.NoteStore {
	if redisAddr == "" {
		redisAddr = os.Getenv("REDIS_ADDR")
	}
	if redisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr: redisAddr,
		})
		return store.NewRedisStore(client, "stickynotes")
	}

	if notesFile == "" {
		notesFile = os.Getenv("NOTES_FILE")
	}
	if notesFile == "" {
		notesFile = defaultNotesFile
	}
	return store.NewFileStore(notesFile)
}
