package assistant

import "github.com/cockroachdb/errors"

var (
	// ErrModelAPI indicates the model API call itself failed. The query is
	// abandoned but the caller may keep serving further queries.
	ErrModelAPI = errors.New("model API call failed")

	// ErrUnknownTool indicates the model requested a tool that is not in
	// the host's tool list.
	ErrUnknownTool = errors.New("unknown tool requested")

	// ErrMalformedArguments indicates the model produced tool arguments
	// that are not valid JSON.
	ErrMalformedArguments = errors.New("malformed tool arguments")

	// ErrToolExecution indicates the tool ran and reported a failure.
	// Schema-invalid arguments rejected by the host surface here as well,
	// carrying the host's validation message.
	ErrToolExecution = errors.New("tool execution failed")
)
