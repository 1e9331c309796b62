package openai

import "encoding/json"

// responseRequest is the request body for the /v1/responses endpoint. Only
// the fields this adapter exercises are modeled; Responses API accepts many
// more (background, metadata, truncation) that have no ai.Options/ai.Context
// equivalent and are left unset.
type responseRequest struct {
	Model             string           `json:"model"`
	Input             []responseInput  `json:"input"`
	Temperature       *float64         `json:"temperature,omitempty"`
	MaxOutputTokens   *int             `json:"max_output_tokens,omitempty"`
	Reasoning         *reasoningConfig `json:"reasoning,omitempty"`
	Text              *textConfig      `json:"text,omitempty"`
	Tools             []responseTool   `json:"tools,omitempty"`
	ToolChoice        any              `json:"tool_choice,omitempty"`
	ParallelToolCalls *bool            `json:"parallel_tool_calls,omitempty"`
	Store             bool             `json:"store"`
	Stream            bool             `json:"stream"`
	Include           []string         `json:"include,omitempty"`
}

type responseInput struct {
	Type    string              `json:"type,omitempty"` // "message" | "function_call" | "function_call_output"
	Role    string              `json:"role,omitempty"` // developer, user, assistant
	Content []responseInputPart `json:"content,omitempty"`

	// function_call
	CallID    string `json:"call_id,omitempty"`
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`

	// function_call_output
	Output string `json:"output,omitempty"`
}

type responseInputPart struct {
	Type     string `json:"type"` // input_text, input_image, output_text
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

type reasoningConfig struct {
	Effort string `json:"effort,omitempty"` // "minimal", "low", "medium", "high"
}

type textConfig struct {
	Verbosity string `json:"verbosity,omitempty"` // "low", "medium", "high"
}

type responseTool struct {
	Type        string          `json:"type"` // "function"
	Name        string          `json:"name,omitempty"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
	Strict      bool            `json:"strict,omitempty"`
}

type responseToolChoiceObj struct {
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
}

// responseUsage mirrors the Responses API's usage object, present on the
// response.completed event.
type responseUsage struct {
	InputTokens         int `json:"input_tokens"`
	OutputTokens        int `json:"output_tokens"`
	TotalTokens         int `json:"total_tokens"`
	InputTokensDetails  *struct {
		CachedTokens int `json:"cached_tokens"`
	} `json:"input_tokens_details,omitempty"`
	OutputTokensDetails *struct {
		ReasoningTokens int `json:"reasoning_tokens"`
	} `json:"output_tokens_details,omitempty"`
}

// responseErrorDetail mirrors the Responses API's top-level error object,
// carried by both a non-streaming error response and a response.failed event.
type responseErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type,omitempty"`
	Code    string `json:"code,omitempty"`
}
