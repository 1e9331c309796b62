package ai

import "github.com/leofalp/llmstream/core/jsonvalue"

// AssistantEventType identifies the kind of payload an AssistantEvent
// carries. Every non-terminal event concerns a specific content-block
// index and follows the Start -> Delta* -> End lifecycle for that block.
type AssistantEventType string

const (
	EventStart AssistantEventType = "start"

	EventTextStart AssistantEventType = "textStart"
	EventTextDelta AssistantEventType = "textDelta"
	EventTextEnd   AssistantEventType = "textEnd"

	EventThinkingStart AssistantEventType = "thinkingStart"
	EventThinkingDelta AssistantEventType = "thinkingDelta"
	EventThinkingEnd   AssistantEventType = "thinkingEnd"

	EventToolCallStart AssistantEventType = "toolCallStart"
	EventToolCallDelta AssistantEventType = "toolCallDelta"
	EventToolCallEnd   AssistantEventType = "toolCallEnd"

	EventDone  AssistantEventType = "done"
	EventError AssistantEventType = "error"
)

// AssistantEvent is a single incremental update yielded while a response
// streams in. ContentIndex identifies which ContentBlock in the eventual
// AssistantMessage.Content this event concerns; it is stable across the
// Start/Delta/End sequence for a given block and equal to that block's
// final position in the content list.
type AssistantEvent struct {
	Type         AssistantEventType
	ContentIndex int

	// TextDelta / ThinkingDelta
	Delta string

	// ToolCallStart
	ToolCallID   string
	ToolCallName string
	// ToolCallDelta
	ArgumentsDelta string

	// TextEnd / ThinkingEnd / ToolCallEnd carry the accumulated final
	// value for the block, so a caller that only watches End events still
	// gets complete content without summing deltas itself. ToolCallEnd's
	// Arguments is the any-value tree decoded from FinalArguments, the
	// vendor-agnostic form the spec's data model requires tool-call
	// arguments travel as.
	FinalText      string
	FinalArguments string
	Arguments      jsonvalue.Value

	// Done
	StopReason StopReason
	Usage      *Usage

	// Error
	Err error
}
