package utils

import (
	"encoding/json"
	"fmt"
)

// JSONToString converts v to its JSON representation.
func JSONToString(object interface{}, indent ...bool) string {
	var encoded []byte
	var err error
	if indent != nil && len(indent) > 0 && indent[0] {
		encoded, err = json.MarshalIndent(object, "", "  ")
	} else {
		encoded, err = json.Marshal(object)
	}
	if err != nil {
		return "{\"error\": \"failed to marshal to JSON: " + err.Error() + "\"}"
	}
	return string(encoded)
}

// ToString uses JSONToString and returns the JSON string.
// If marshaling fails, it returns the JSON error object that JSONToString builds.
func ToString(object interface{}) string {
	return JSONToString(object)
}

// DefaultMaxStringLength is the default maximum length for truncated strings.
const DefaultMaxStringLength = 500

// TruncateString truncates s to maxLen characters, appending a suffix noting
// the original length. maxLen <= 0 falls back to DefaultMaxStringLength.
func TruncateString(s string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxStringLength
	}
	if len(s) <= maxLen {
		return s
	}
	return fmt.Sprintf("%s... (truncated, total: %d chars)", s[:maxLen], len(s))
}

// TruncateStringDefault truncates s using DefaultMaxStringLength.
func TruncateStringDefault(s string) string {
	return TruncateString(s, DefaultMaxStringLength)
}
