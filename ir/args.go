package ir

import "encoding/json"

// ParseToolArguments parses a dialect's JSON-encoded tool-call arguments
// string into an IR-compatible input value. When raw fails to parse as
// JSON, the raw string is preserved as a JSON string value instead —
// lifters must never panic or drop the block on malformed arguments.
func ParseToolArguments(raw string) any {
	if raw == "" {
		return map[string]any{}
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	return v
}
