package anthropic

import (
	"encoding/json"
	"strings"

	"github.com/leofalp/llmstream/core/textsafe"
	"github.com/leofalp/llmstream/providers/ai"
)

// defaultMaxTokens is sent when opts.MaxTokens is unset, since Anthropic
// rejects a request with no max_tokens at all.
const defaultMaxTokens = 4096

// requestFromContext converts a canonical ai.Context into an anthropicRequest,
// applying the per-call ai.Options on top. model.ID goes directly into the
// body (unlike Gemini, Anthropic has no per-model URL segment).
func requestFromContext(model ai.Model, convo ai.Context, opts ai.Options) anthropicRequest {
	req := anthropicRequest{
		Model:     model.ID,
		System:    textsafe.Sanitize(convo.SystemPrompt),
		Messages:  buildMessages(convo.Turns),
		MaxTokens: defaultMaxTokens,
	}

	if opts.MaxTokens != nil {
		req.MaxTokens = *opts.MaxTokens
	}
	if opts.Temperature != nil {
		t := float64(*opts.Temperature)
		req.Temperature = &t
	}
	if opts.Thinking != nil {
		req.Thinking = buildThinkingConfig(*opts.Thinking)
	}

	if len(convo.Tools) > 0 {
		req.Tools = buildTools(convo.Tools)
	}
	if convo.ToolChoice != nil {
		req.ToolChoice = buildToolChoice(convo.ToolChoice)
	}

	return req
}

// buildThinkingConfig maps the shared ai.ThinkingConfig onto Anthropic's
// thinking block. A negative BudgetTokens requests a vendor-chosen dynamic
// budget (Anthropic's "adaptive" mode); a positive value pins a fixed budget.
// Zero with IncludeThoughts set still opts into adaptive thinking, since
// Anthropic has no "let me think but don't tell me the budget" alternative.
func buildThinkingConfig(cfg ai.ThinkingConfig) *anthropicThinkingConfig {
	switch {
	case cfg.BudgetTokens > 0:
		return &anthropicThinkingConfig{Type: "enabled", BudgetTokens: cfg.BudgetTokens}
	case cfg.BudgetTokens < 0 || cfg.IncludeThoughts:
		return &anthropicThinkingConfig{Type: "adaptive"}
	default:
		return nil
	}
}

// buildMessages converts a slice of ai.Message into Anthropic message objects.
//
// Anthropic requires strictly alternating user/assistant turns. Consecutive
// tool-result messages (ai.RoleTool) are therefore merged into a single user
// message with multiple tool_result content blocks, which is the only layout
// the API accepts.
func buildMessages(turns []ai.Message) []anthropicMessage {
	var result []anthropicMessage

	for _, msg := range turns {
		switch msg.Role {
		case ai.RoleUser:
			userMsg := anthropicMessage{Role: "user"}
			if len(msg.ContentParts) > 0 {
				userMsg.Content = contentPartsToBlocks(msg.ContentParts)
			} else {
				userMsg.Content = []anthropicContentBlock{{Type: "text", Text: textsafe.Sanitize(msg.Content)}}
			}
			result = append(result, userMsg)

		case ai.RoleAssistant:
			assistantMsg := anthropicMessage{Role: "assistant"}

			// Tool calls are represented as tool_use blocks.
			for _, tc := range msg.ToolCalls {
				assistantMsg.Content = append(assistantMsg.Content, anthropicContentBlock{
					Type:  "tool_use",
					ID:    tc.ID,
					Name:  tc.Name,
					Input: json.RawMessage(tc.Arguments),
				})
			}

			if len(msg.ContentParts) > 0 {
				assistantMsg.Content = append(assistantMsg.Content, contentPartsToBlocks(msg.ContentParts)...)
			} else if msg.Content != "" {
				assistantMsg.Content = append(assistantMsg.Content, anthropicContentBlock{Type: "text", Text: textsafe.Sanitize(msg.Content)})
			}

			if len(assistantMsg.Content) > 0 {
				result = append(result, assistantMsg)
			}

		case ai.RoleTool:
			toolResultContent, err := json.Marshal(msg.Content)
			if err != nil {
				toolResultContent = []byte(`"` + msg.Content + `"`)
			}

			toolResultBlock := anthropicContentBlock{
				Type:      "tool_result",
				ToolUseID: msg.ToolCallID,
				Content:   toolResultContent,
			}

			// Merge consecutive tool results into a single user message.
			// Anthropic forbids two consecutive user turns, so multiple tool
			// responses must be combined into one message.
			if len(result) > 0 && isAllToolResults(result[len(result)-1]) {
				result[len(result)-1].Content = append(result[len(result)-1].Content, toolResultBlock)
			} else {
				result = append(result, anthropicMessage{Role: "user", Content: []anthropicContentBlock{toolResultBlock}})
			}
		}
	}

	return result
}

// isAllToolResults returns true when every content block in msg is a
// tool_result block, identifying it as a mergeable tool-result turn.
func isAllToolResults(msg anthropicMessage) bool {
	if msg.Role != "user" || len(msg.Content) == 0 {
		return false
	}
	for _, block := range msg.Content {
		if block.Type != "tool_result" {
			return false
		}
	}
	return true
}

// contentPartsToBlocks converts generic ContentParts into Anthropic content
// blocks. Audio is silently skipped — Anthropic's Messages API does not
// accept audio input.
func contentPartsToBlocks(parts []ai.ContentPart) []anthropicContentBlock {
	var blocks []anthropicContentBlock

	for _, part := range parts {
		switch part.Type {
		case ai.ContentTypeText:
			blocks = append(blocks, anthropicContentBlock{Type: "text", Text: textsafe.Sanitize(part.Text)})

		case ai.ContentTypeImage:
			if part.Image == nil {
				continue
			}
			blocks = append(blocks, anthropicContentBlock{Type: "image", Source: mediaToSource(*part.Image)})

		case ai.ContentTypeDocument:
			if part.Document == nil {
				continue
			}
			blocks = append(blocks, anthropicContentBlock{Type: "document", Source: mediaToSource(*part.Document)})
		}
	}

	return blocks
}

func mediaToSource(m ai.MediaData) *anthropicSource {
	if m.URI != "" {
		return &anthropicSource{Type: "url", URL: m.URI}
	}
	return &anthropicSource{Type: "base64", MediaType: m.MimeType, Data: m.Data}
}

// buildTools converts the provider-agnostic ToolDescription slice to
// Anthropic tool definitions. Built-in pseudo-tools (Gemini-only) are
// filtered out because Anthropic does not recognize them.
func buildTools(tools []ai.ToolDescription) []anthropicTool {
	var result []anthropicTool

	for _, t := range tools {
		if ai.IsBuiltinTool(t.Name) {
			continue
		}

		entry := anthropicTool{Name: t.Name, Description: t.Description}
		if t.Parameters != nil {
			if b, err := json.Marshal(t.Parameters); err == nil {
				entry.InputSchema = b
			}
		}
		if entry.InputSchema == nil {
			// Anthropic requires input_schema on every tool; fall back to an
			// empty object schema so the request stays valid.
			entry.InputSchema = json.RawMessage(`{"type":"object","properties":{}}`)
		}

		result = append(result, entry)
	}

	return result
}

// buildToolChoice converts an ai.ToolChoice to its Anthropic wire
// representation. Anthropic has no concept of a required-tools list longer
// than one name; when RequiredTools names more than one tool, "any" is the
// closest available approximation (forces some tool call, not a specific set).
func buildToolChoice(tc *ai.ToolChoice) *anthropicToolChoice {
	if tc == nil {
		return nil
	}

	if tc.Forced != "" {
		switch strings.ToLower(tc.Forced) {
		case "none", "auto":
			return &anthropicToolChoice{Type: "auto"}
		case "any", "required":
			return &anthropicToolChoice{Type: "any"}
		default:
			return &anthropicToolChoice{Type: "tool", Name: tc.Forced}
		}
	}

	if tc.AtLeastOneRequired {
		return &anthropicToolChoice{Type: "any"}
	}

	if len(tc.RequiredTools) == 1 {
		return &anthropicToolChoice{Type: "tool", Name: tc.RequiredTools[0]}
	}
	if len(tc.RequiredTools) > 1 {
		return &anthropicToolChoice{Type: "any"}
	}

	return nil
}

// mapStopReason converts an Anthropic stop_reason value to the canonical
// ai.StopReason. tool_use is reported directly by Anthropic (unlike Gemini,
// which always says STOP and relies on toolCallsEmitted to disambiguate).
func mapStopReason(stopReason string) ai.StopReason {
	switch stopReason {
	case "tool_use":
		return ai.StopReasonToolUse
	case "max_tokens":
		return ai.StopReasonMaxTokens
	case "end_turn", "stop_sequence":
		return ai.StopReasonEndTurn
	default:
		return ai.StopReasonEndTurn
	}
}
