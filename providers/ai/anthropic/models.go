package anthropic

import "encoding/json"

/*
	ANTHROPIC MESSAGES API - REQUEST TYPES
*/

// anthropicRequest represents the request body for Anthropic's Messages API.
type anthropicRequest struct {
	Model       string                   `json:"model"`
	Messages    []anthropicMessage       `json:"messages"`
	System      string                   `json:"system,omitempty"`
	MaxTokens   int                      `json:"max_tokens"` // required by Anthropic on every request
	Temperature *float64                 `json:"temperature,omitempty"`
	Tools       []anthropicTool          `json:"tools,omitempty"`
	ToolChoice  *anthropicToolChoice     `json:"tool_choice,omitempty"`
	Stream      bool                     `json:"stream,omitempty"`
	Thinking    *anthropicThinkingConfig `json:"thinking,omitempty"`
}

// anthropicThinkingConfig controls extended/adaptive thinking on the request.
// Type "adaptive" lets the model choose its own budget; type "enabled" pins
// BudgetTokens to a fixed value.
type anthropicThinkingConfig struct {
	Type         string `json:"type"`
	BudgetTokens int    `json:"budget_tokens,omitempty"`
}

// anthropicMessage represents a single message in the conversation.
type anthropicMessage struct {
	Role    string                  `json:"role"` // "user" or "assistant"
	Content []anthropicContentBlock `json:"content"`
}

// anthropicContentBlock is a discriminated union via the Type field.
// Depending on Type, different fields are populated:
//   - "text": Text
//   - "image"/"document": Source
//   - "tool_use": ID, Name, Input
//   - "tool_result": ToolUseID, Content
//   - "thinking": Thinking, Signature
type anthropicContentBlock struct {
	Type      string           `json:"type"`
	Text      string           `json:"text,omitempty"`
	Source    *anthropicSource `json:"source,omitempty"`
	ID        string           `json:"id,omitempty"`
	Name      string           `json:"name,omitempty"`
	Input     json.RawMessage  `json:"input,omitempty"`
	ToolUseID string           `json:"tool_use_id,omitempty"`
	Content   json.RawMessage  `json:"content,omitempty"`
	Thinking  string           `json:"thinking,omitempty"`
	Signature string           `json:"signature,omitempty"`
}

// anthropicSource represents a media source (base64 inline or URL reference).
type anthropicSource struct {
	Type      string `json:"type"` // "base64" or "url"
	MediaType string `json:"media_type,omitempty"`
	Data      string `json:"data,omitempty"`
	URL       string `json:"url,omitempty"`
}

// anthropicTool describes a tool/function available to the model.
type anthropicTool struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"input_schema"`
}

// anthropicToolChoice controls which tool the model should use.
type anthropicToolChoice struct {
	Type string `json:"type"`           // "auto", "any", "tool"
	Name string `json:"name,omitempty"` // only for type="tool"
}

/*
	ANTHROPIC MESSAGES API - RESPONSE TYPES

	A full anthropicResponse only ever arrives wrapped inside the
	message_start SSE event (as its Message field); every other field fills
	in incrementally over the rest of the lifecycle, so stream.go never
	decodes one wholesale.
*/

// anthropicResponse is the message_start payload's "message" field.
type anthropicResponse struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Role       string         `json:"role"`
	Model      string         `json:"model"`
	StopReason string         `json:"stop_reason"`
	Usage      anthropicUsage `json:"usage"`
}

// anthropicUsage reports token consumption for a single request.
type anthropicUsage struct {
	InputTokens              int `json:"input_tokens"`
	OutputTokens             int `json:"output_tokens"`
	CacheCreationInputTokens int `json:"cache_creation_input_tokens,omitempty"`
	CacheReadInputTokens     int `json:"cache_read_input_tokens,omitempty"`
}

// responseContentBlock mirrors a content_block_start event's ContentBlock
// field: the block's type plus whatever header fields that type carries
// (tool_use's ID/Name); the block body itself always arrives via deltas.
type responseContentBlock struct {
	Type string `json:"type"` // "text", "thinking", "tool_use"
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}
