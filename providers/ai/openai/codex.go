package openai

import "strings"

// codexReasoningEncryptedContentInclude is the include value the Codex
// backend needs on every reasoning-enabled request, since Store is always
// false and reasoning state otherwise can't carry across turns.
const codexReasoningEncryptedContentInclude = "reasoning.encrypted_content"

// isCodexModel reports whether modelID belongs to the Codex CLI model
// family (gpt-5.1, gpt-5.1-codex-mini, gpt-5.2*, gpt-5.3*, and any ID
// explicitly carrying "codex"), which speaks the Responses API through a
// backend that imposes the additional body-rewrite pass applyCodexTransform
// implements.
func isCodexModel(modelID string) bool {
	switch {
	case modelID == "gpt-5.1", modelID == "gpt-5.1-codex-mini":
		return true
	case strings.HasPrefix(modelID, "gpt-5.2"), strings.HasPrefix(modelID, "gpt-5.3"):
		return true
	case strings.Contains(modelID, "codex"):
		return true
	default:
		return false
	}
}

// codexReasoningEffort re-maps an already-computed reasoning.effort value
// onto the narrower enum a given Codex model family actually accepts.
func codexReasoningEffort(modelID, effort string) string {
	switch {
	case modelID == "gpt-5.1-codex-mini":
		if effort == "high" || effort == "xhigh" {
			return "high"
		}
		return "medium"
	case modelID == "gpt-5.1":
		if effort == "xhigh" {
			return "high"
		}
		return effort
	case strings.HasPrefix(modelID, "gpt-5.2"), strings.HasPrefix(modelID, "gpt-5.3"):
		if effort == "minimal" {
			return "low"
		}
		return effort
	default:
		return effort
	}
}

// applyCodexTransform rewrites req in place to match the Codex backend's
// request constraints: no server-side output-token cap (the backend rejects
// it), a model-appropriate reasoning.effort, a default text.verbosity, and
// "reasoning.encrypted_content" present in include whenever reasoning is
// requested (deduplicated, since the API rejects a repeated include value).
// buildInput has already rewritten orphaned function_call_output items and
// never emits an "id" field or an "item_reference" item, so those two
// transform rules require no further action here.
func applyCodexTransform(req *responseRequest, modelID string) {
	req.MaxOutputTokens = nil

	if req.Reasoning != nil {
		if req.Reasoning.Effort != "" {
			req.Reasoning.Effort = codexReasoningEffort(modelID, req.Reasoning.Effort)
		}
		if req.Text == nil {
			req.Text = &textConfig{Verbosity: "medium"}
		} else if req.Text.Verbosity == "" {
			req.Text.Verbosity = "medium"
		}
		req.Include = dedupeIncludes(append(req.Include, codexReasoningEncryptedContentInclude))
	}
}
