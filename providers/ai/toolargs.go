package ai

import "github.com/leofalp/llmstream/core/jsonvalue"

// NormalizeToolCallArguments returns the raw JSON text an adapter should
// use for a tool-call block's accumulated arguments, defaulting empty
// input to "{}" per the spec's requirement that serialized arguments are
// never blank, together with its decoded jsonvalue.Value tree. If raw
// (after defaulting) still fails to parse — and fails jsonvalue.Decode's
// jsonrepair fallback — the tree is a jsonvalue.Unsupported wrapping the
// raw string rather than a hard error, since a non-serializable argument
// fragment must still flow through to the caller.
func NormalizeToolCallArguments(raw string) (string, jsonvalue.Value) {
	if raw == "" {
		raw = "{}"
	}
	v, err := jsonvalue.Decode([]byte(raw))
	if err != nil {
		return raw, jsonvalue.Unsupported(raw)
	}
	return raw, v
}
