package llmutils_test

import (
	"testing"

	"github.com/effective-security/stickynotes/pkg/llms"
	"github.com/effective-security/stickynotes/pkg/llmutils"
	"github.com/stretchr/testify/assert"
)

func Test_CleanJSON(t *testing.T) {
	llmOutput := "\n```json\n\n{\"city\": \"Paris\", \"country\": \"France\"}\n\n```\n\n"
	clean := llmutils.CleanJSON([]byte(llmOutput))

	expected := "{\"city\": \"Paris\", \"country\": \"France\"}"
	assert.Equal(t, expected, string(clean))

	llmOutput = "Here you go:\n```json\n\n[{\"city\": \"Paris\", \"country\": \"France\"}]\n```\n\n"
	clean = llmutils.CleanJSON([]byte(llmOutput))

	expected = "[{\"city\": \"Paris\", \"country\": \"France\"}]"
	assert.Equal(t, expected, string(clean))

	// No JSON at all is returned untouched.
	assert.Equal(t, "plain text", string(llmutils.CleanJSON([]byte("plain text"))))
}

func Test_BackticksJSON(t *testing.T) {
	js := "{\"city\": \"Paris\"}"
	wrapped := llmutils.BackticksJSON(js)
	assert.Equal(t, "```json\n{\"city\": \"Paris\"}\n```", wrapped)
}

func Test_ToJSON(t *testing.T) {
	v := map[string]string{"a": "b"}
	assert.Equal(t, `{"a":"b"}`, llmutils.ToJSON(v))
	assert.Equal(t, "{\n  \"a\": \"b\"\n}", llmutils.ToJSONIndent(v))
}

func Test_CountMessagesContentSize(t *testing.T) {
	msgs := []llms.Message{
		llms.MessageFromTextParts(llms.RoleSystem, "abc"),
		llms.MessageFromTextParts(llms.RoleHuman, "de"),
	}
	// GetContent terminates each message with a newline.
	assert.Equal(t, uint64(7), llmutils.CountMessagesContentSize(msgs))
}
