package llmutils

import (
	"bytes"
	"encoding/json"

	"github.com/effective-security/stickynotes/pkg/llms"
)

// CleanJSON returns JSON by trimming prefixes and postfixes,
// as an LLM can reply like,
// `Here you go: {json}`
func CleanJSON(bs []byte) []byte {
	return trimPostfixAfterJSON(trimPrefixBeforeJSON(bs))
}

// Removes any prefixes before the JSON (like "Sure, here you go:")
func trimPrefixBeforeJSON(bs []byte) []byte {
	startObject := bytes.IndexByte(bs, '{')
	startArray := bytes.IndexByte(bs, '[')

	var start int
	if startObject == -1 && startArray == -1 {
		return bs // No opening brace or bracket found, return the original string
	} else if startObject == -1 {
		start = startArray
	} else if startArray == -1 {
		start = startObject
	} else {
		start = min(startObject, startArray)
	}

	return bs[start:]
}

// Removes any postfixes after the JSON
func trimPostfixAfterJSON(bs []byte) []byte {
	endObject := bytes.LastIndexByte(bs, '}')
	endArray := bytes.LastIndexByte(bs, ']')

	var end int
	if endObject == -1 && endArray == -1 {
		return bs // No closing brace or bracket found, return the original string
	} else if endObject == -1 {
		end = endArray
	} else if endArray == -1 {
		end = endObject
	} else {
		end = max(endObject, endArray)
	}

	return bs[:end+1]
}

// ToJSON returns the value marshaled as a compact JSON string.
func ToJSON(v any) string {
	js, _ := json.Marshal(v)
	return string(js)
}

// ToJSONIndent returns the value marshaled as an indented JSON string.
func ToJSONIndent(v any) string {
	js, _ := json.MarshalIndent(v, "", "  ")
	return string(js)
}

// BackticksJSON wraps a JSON string in a fenced code block.
func BackticksJSON(js string) string {
	return "```json\n" + js + "\n```"
}

// CountMessagesContentSize returns the total content size of the messages,
// used for request size logging.
func CountMessagesContentSize(messages []llms.Message) uint64 {
	var size uint64
	for _, m := range messages {
		size += uint64(len(m.GetContent()))
	}
	return size
}
