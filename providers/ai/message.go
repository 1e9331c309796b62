package ai

import (
	"github.com/leofalp/llmstream/core/jsonvalue"
	"github.com/leofalp/llmstream/internal/utils"
)

// BlockKind identifies which variant of ContentBlock is populated.
type BlockKind string

const (
	BlockKindText     BlockKind = "text"
	BlockKindThinking BlockKind = "thinking"
	BlockKindToolCall BlockKind = "tool_call"
	// BlockKindOther covers vendor-carried content this library does not
	// model as a first-class block (inline media, code execution results,
	// grounding metadata): see OtherKind/OtherRaw.
	BlockKindOther BlockKind = "other"
)

// ContentBlock is one entry of an AssistantMessage's Content list. Its
// position in that list is its stable content index, referenced by every
// AssistantEvent concerning the block.
type ContentBlock struct {
	Kind BlockKind

	// Text / Thinking
	Body      string
	Signature string // opaque vendor signature for reasoning continuity, if any

	// ToolCall
	ToolCallID        string
	ToolCallName      string
	ToolCallArguments string        // accumulated raw JSON string
	Arguments         jsonvalue.Value // the same arguments, decoded to the any-value tree

	// Other — vendor-carried content not otherwise modeled (multimodal
	// output, code execution, grounding metadata). OtherKind names the
	// vendor concept ("code_execution", "grounding", "image", ...).
	OtherKind string
	OtherRaw  any
}

// DecodeToolCallArguments unmarshals a tool-call block's accumulated
// argument JSON into T. Some vendors terminate a stream mid-argument on
// cancellation or a content filter trip, leaving ToolCallArguments truncated;
// ParseStringAs's repair pass recovers a best-effort value in that case
// instead of failing outright. Only meaningful when Kind == BlockKindToolCall.
func DecodeToolCallArguments[T any](block ContentBlock) (T, error) {
	return utils.ParseStringAs[T](block.ToolCallArguments)
}

// StopReason normalizes vendor finish/stop reasons into a small closed set.
type StopReason string

const (
	StopReasonEndTurn      StopReason = "endTurn"
	StopReasonMaxTokens    StopReason = "maxTokens"
	StopReasonToolUse      StopReason = "toolUse"
	StopReasonContentFilter StopReason = "contentFilter"
	StopReasonError        StopReason = "error"
	StopReasonCanceled     StopReason = "canceled"
)

// Usage reports token consumption and, when pricing is available, the
// computed dollar cost for a single request.
type Usage struct {
	Input       int
	Output      int
	CacheRead   int
	CacheWrite  int
	TotalTokens int
	Cost        *float64
}

// FinalizeUsage fills in Usage.Cost from model.Pricing, leaving it nil when
// the model carries no published rates. Every adapter calls this once, at
// the point it assembles the final AssistantMessage, so Cost is computed the
// same way regardless of vendor.
func FinalizeUsage(usage Usage, model Model) Usage {
	if model.Pricing == nil {
		return usage
	}
	total := model.Pricing.CalculateTotalCost(usage.Input, usage.Output, usage.CacheRead, 0)
	usage.Cost = &total
	return usage
}

// AssistantMessage is the final aggregated result of a streamed response:
// every ContentBlock the model produced, in order, plus usage and
// termination metadata.
type AssistantMessage struct {
	Content []ContentBlock

	API      API
	Provider string
	Model    string

	Usage Usage

	StopReason   StopReason
	ErrorMessage string
}
