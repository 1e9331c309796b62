package openai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/leofalp/llmstream/core/textsafe"
	"github.com/leofalp/llmstream/providers/ai"
)

const functionCallOutputMaxChars = 16_000

// requestFromContext converts a canonical ai.Context into a responseRequest.
// store and stream are always forced (store=false: this library never reads
// a response back by ID, so there is nothing to gain from persisting it
// server-side; stream=true: Stream always drives the SSE lifecycle).
func requestFromContext(model ai.Model, convo ai.Context, opts ai.Options) responseRequest {
	req := responseRequest{
		Model:  model.ID,
		Input:  buildInput(convo, model.ID),
		Store:  false,
		Stream: true,
	}

	if opts.MaxTokens != nil {
		req.MaxOutputTokens = opts.MaxTokens
	}
	if opts.Temperature != nil {
		t := float64(*opts.Temperature)
		req.Temperature = &t
	}
	if opts.Thinking != nil {
		req.Reasoning = buildReasoningConfig(*opts.Thinking)
		req.Text = &textConfig{Verbosity: "medium"}
	}

	if len(convo.Tools) > 0 {
		req.Tools = buildTools(convo.Tools)
	}
	if convo.ToolChoice != nil {
		req.ToolChoice = buildToolChoice(convo.ToolChoice)
	}

	req.Include = dedupeIncludes(req.Include)

	if isCodexModel(model.ID) {
		applyCodexTransform(&req, model.ID)
	}

	return req
}

// buildInput converts the conversation into the Responses API's input item
// array. The system prompt becomes a developer-role message, since the
// Responses API has no separate system-prompt field. Orphaned
// function_call_output items (tool results with no local record of the
// matching function_call) are truncated to functionCallOutputMaxChars —
// the API enforces this limit server-side and rejects oversized output
// otherwise. For the Codex model family (see isCodexModel), an orphaned
// function_call_output is instead rewritten into a synthetic assistant
// message, since that backend never stores conversation state server-side
// and so cannot resolve a call_id it never saw in this request.
func buildInput(convo ai.Context, modelID string) []responseInput {
	var input []responseInput
	seenCallIDs := make(map[string]bool)
	codex := isCodexModel(modelID)

	if convo.SystemPrompt != "" {
		input = append(input, responseInput{
			Type: "message",
			Role: "developer",
			Content: []responseInputPart{
				{Type: "input_text", Text: textsafe.Sanitize(convo.SystemPrompt)},
			},
		})
	}

	for _, msg := range convo.Turns {
		switch msg.Role {
		case ai.RoleUser:
			input = append(input, responseInput{Type: "message", Role: "user", Content: contentPartsFromMessage(msg)})

		case ai.RoleAssistant:
			if len(msg.ContentParts) > 0 || msg.Content != "" {
				input = append(input, responseInput{Type: "message", Role: "assistant", Content: contentPartsFromMessage(msg)})
			}
			for _, tc := range msg.ToolCalls {
				seenCallIDs[tc.ID] = true
				input = append(input, responseInput{Type: "function_call", CallID: tc.ID, Name: tc.Name, Arguments: tc.Arguments})
			}

		case ai.RoleTool:
			if codex && !seenCallIDs[msg.ToolCallID] {
				input = append(input, syntheticToolResultMessage(msg))
				continue
			}
			input = append(input, responseInput{
				Type:   "function_call_output",
				CallID: msg.ToolCallID,
				Output: truncateFunctionCallOutput(msg.Content),
			})
		}
	}

	return input
}

func truncateFunctionCallOutput(output string) string {
	if len(output) <= functionCallOutputMaxChars {
		return output
	}
	return output[:functionCallOutputMaxChars]
}

// syntheticToolResultMessage rewrites an orphaned function_call_output into
// the assistant-message shape the Codex backend requires in its place.
func syntheticToolResultMessage(msg ai.Message) responseInput {
	name := msg.Name
	if name == "" {
		name = "tool"
	}
	text := fmt.Sprintf("[Previous %s result; call_id=%s]: %s", name, msg.ToolCallID, truncateWithMarker(msg.Content))
	return responseInput{
		Type:    "message",
		Role:    "assistant",
		Content: []responseInputPart{{Type: "output_text", Text: text}},
	}
}

// truncateWithMarker is truncateFunctionCallOutput's Codex-transform
// counterpart: it appends a visible marker so the truncation itself is
// legible inside the synthetic message rather than silently cutting text.
func truncateWithMarker(s string) string {
	if len(s) <= functionCallOutputMaxChars {
		return s
	}
	return s[:functionCallOutputMaxChars] + "\n...[truncated]"
}

func contentPartsFromMessage(msg ai.Message) []responseInputPart {
	if len(msg.ContentParts) == 0 {
		return []responseInputPart{{Type: "input_text", Text: textsafe.Sanitize(msg.Content)}}
	}

	var parts []responseInputPart
	for _, p := range msg.ContentParts {
		switch p.Type {
		case ai.ContentTypeText:
			parts = append(parts, responseInputPart{Type: "input_text", Text: textsafe.Sanitize(p.Text)})
		case ai.ContentTypeImage:
			if p.Image == nil {
				continue
			}
			url := p.Image.URI
			if url == "" {
				url = "data:" + p.Image.MimeType + ";base64," + p.Image.Data
			}
			parts = append(parts, responseInputPart{Type: "input_image", ImageURL: url})
		default:
			// audio/video/document are not accepted by the Responses API input schema
		}
	}
	return parts
}

// buildReasoningConfig normalizes ai.ThinkingConfig onto the Responses API's
// closed reasoning.effort enum ("minimal", "low", "medium", "high"), since
// unlike Anthropic/Gemini, OpenAI has no numeric token budget for reasoning.
func buildReasoningConfig(cfg ai.ThinkingConfig) *reasoningConfig {
	switch {
	case cfg.BudgetTokens < 0:
		return &reasoningConfig{Effort: "high"}
	case cfg.BudgetTokens == 0:
		if cfg.IncludeThoughts {
			return &reasoningConfig{Effort: "medium"}
		}
		return nil
	case cfg.BudgetTokens <= 1024:
		return &reasoningConfig{Effort: "minimal"}
	case cfg.BudgetTokens <= 4096:
		return &reasoningConfig{Effort: "low"}
	case cfg.BudgetTokens <= 16384:
		return &reasoningConfig{Effort: "medium"}
	default:
		return &reasoningConfig{Effort: "high"}
	}
}

func buildTools(tools []ai.ToolDescription) []responseTool {
	var result []responseTool

	for _, t := range tools {
		if ai.IsBuiltinTool(t.Name) {
			continue
		}

		entry := responseTool{Type: "function", Name: t.Name, Description: t.Description}
		if t.Parameters != nil {
			if b, err := json.Marshal(t.Parameters); err == nil {
				entry.Parameters = b
			}
		}
		if entry.Parameters == nil {
			entry.Parameters = json.RawMessage(`{"type":"object","properties":{}}`)
		}

		result = append(result, entry)
	}

	return result
}

// buildToolChoice converts an ai.ToolChoice to its Responses API wire
// representation. Multiple required tools have no single-object encoding in
// the Responses API, so "required" (forces some call, not a specific set)
// is the closest available approximation, matching Anthropic's "any" choice.
func buildToolChoice(tc *ai.ToolChoice) any {
	if tc == nil {
		return nil
	}

	if tc.Forced != "" {
		switch strings.ToLower(tc.Forced) {
		case "none":
			return "none"
		case "auto":
			return "auto"
		case "any", "required":
			return "required"
		default:
			return responseToolChoiceObj{Type: "function", Name: tc.Forced}
		}
	}

	if tc.AtLeastOneRequired {
		return "required"
	}
	if len(tc.RequiredTools) == 1 {
		return responseToolChoiceObj{Type: "function", Name: tc.RequiredTools[0]}
	}
	if len(tc.RequiredTools) > 1 {
		return "required"
	}

	return nil
}

// dedupeIncludes removes duplicate entries from the include array, which
// the API rejects if the same value is requested twice.
func dedupeIncludes(include []string) []string {
	if len(include) < 2 {
		return include
	}
	seen := make(map[string]bool, len(include))
	result := include[:0]
	for _, v := range include {
		if seen[v] {
			continue
		}
		seen[v] = true
		result = append(result, v)
	}
	return result
}

// mapStatus converts a Responses API terminal status to the canonical
// ai.StopReason. toolCallsEmitted disambiguates "completed", which OpenAI
// reports identically whether the turn ended in a tool call or plain text.
func mapStatus(status string, toolCallsEmitted bool) ai.StopReason {
	switch status {
	case "completed":
		if toolCallsEmitted {
			return ai.StopReasonToolUse
		}
		return ai.StopReasonEndTurn
	case "incomplete":
		return ai.StopReasonMaxTokens
	case "failed":
		return ai.StopReasonError
	default:
		return ai.StopReasonEndTurn
	}
}
