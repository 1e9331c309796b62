package anthropic

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/leofalp/llmstream/internal/sse"
	"github.com/leofalp/llmstream/providers/ai"
	"github.com/leofalp/llmstream/providers/observability"
)

// runStream reads SSE events from resp.Body and drives them onto events,
// closing events with a final AssistantMessage once message_stop arrives, the
// body is exhausted without one, or the request is canceled.
//
// Anthropic SSE lifecycle:
//
//	message_start → content_block_start → content_block_delta(s) →
//	content_block_stop → message_delta → message_stop
func runStream(ctx context.Context, cancel <-chan struct{}, resp *http.Response, model ai.Model, events *ai.AssistantStream) {
	defer resp.Body.Close()

	reader := sse.NewReader(resp.Body)
	defer reader.Close()

	observer := observability.ObserverFromContext(ctx)
	st := newStreamState(model)

	for {
		payload, err := reader.Next(ctx, cancel)
		if err != nil {
			if errors.Is(err, io.EOF) {
				st.finishWithError(events, ai.NewStreamError(ai.ErrorInvalidResponse, fmt.Errorf("anthropic: stream ended without a message_stop event")))
				return
			}
			st.finishWithError(events, classifyStreamErr(err))
			return
		}
		if payload == "" {
			continue
		}

		event, parseErr := unmarshalStreamEvent(payload)
		if parseErr != nil {
			if observer != nil {
				observer.Trace(ctx, "anthropic: failed to decode SSE event", observability.Error(parseErr))
			}
			st.finishWithError(events, ai.NewStreamError(ai.ErrorInvalidResponse, fmt.Errorf("anthropic: decode event: %w", parseErr)))
			return
		}

		if done := st.applyEvent(event, events); done {
			return
		}
	}
}

func classifyStreamErr(err error) *ai.StreamError {
	if err == sse.ErrCanceled || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ai.NewStreamError(ai.ErrorAborted, err)
	}
	return ai.NewStreamError(ai.ErrorInvalidResponse, err)
}

// streamState tracks the single currently-open content block (Anthropic
// never interleaves blocks the way Gemini can pack several parts into one
// chunk) needed to turn the message_start/content_block_*/message_delta/
// message_stop lifecycle into Start/Delta/End events with stable indices.
type streamState struct {
	model ai.Model

	content []ai.ContentBlock

	openIndex int // -1 when no block is currently open
	openKind  ai.BlockKind
	acc       strings.Builder

	toolID   string
	toolName string

	synth *ai.ToolCallIDSynthesizer

	usage      ai.Usage
	stopReason string // raw Anthropic stop_reason, set by message_delta
}

func newStreamState(model ai.Model) *streamState {
	return &streamState{
		model:     model,
		openIndex: -1,
		synth:     ai.NewToolCallIDSynthesizer(),
	}
}

// applyEvent folds one decoded SSE event into state, pushing the resulting
// events onto the stream. It reports whether the response has finished
// (message_stop or a terminal error event).
func (st *streamState) applyEvent(event *anthropicStreamEvent, events *ai.AssistantStream) (done bool) {
	switch event.Type {
	case "message_start":
		if event.Message != nil {
			st.usage.Input = event.Message.Usage.InputTokens
			st.usage.CacheWrite = event.Message.Usage.CacheCreationInputTokens
			st.usage.CacheRead = event.Message.Usage.CacheReadInputTokens
		}

	case "content_block_start":
		if event.ContentBlock != nil {
			st.openBlock(*event.ContentBlock, events)
		}

	case "content_block_delta":
		if event.Delta != nil {
			st.applyDelta(*event.Delta, events)
		}

	case "content_block_stop":
		st.closeBlock(events)

	case "message_delta":
		if event.Usage != nil {
			st.usage.Output = event.Usage.OutputTokens
		}
		if event.Delta != nil && event.Delta.StopReason != "" {
			st.stopReason = event.Delta.StopReason
		}

	case "message_stop":
		st.usage.TotalTokens = st.usage.Input + st.usage.Output
		st.finish(events, mapStopReason(st.stopReason))
		return true

	case "error":
		msg := "unknown stream error"
		if event.Error != nil {
			msg = event.Error.Message
		}
		st.finishWithError(events, ai.NewStreamError(ai.ErrorAPIError, fmt.Errorf("anthropic stream error: %s", msg)))
		return true

	case "ping":
		// keep-alive; nothing to do

	default:
		// unknown event types are silently skipped for forward-compatibility
	}

	return false
}

func (st *streamState) openBlock(cb responseContentBlock, events *ai.AssistantStream) {
	idx := st.nextIndex()
	st.acc.Reset()

	switch cb.Type {
	case "text":
		st.openIndex, st.openKind = idx, ai.BlockKindText
		st.content[idx] = ai.ContentBlock{Kind: ai.BlockKindText}
		events.Push(ai.AssistantEvent{Type: ai.EventTextStart, ContentIndex: idx})

	case "thinking":
		st.openIndex, st.openKind = idx, ai.BlockKindThinking
		st.content[idx] = ai.ContentBlock{Kind: ai.BlockKindThinking}
		events.Push(ai.AssistantEvent{Type: ai.EventThinkingStart, ContentIndex: idx})

	case "tool_use":
		st.openIndex, st.openKind = idx, ai.BlockKindToolCall
		st.toolID = st.synth.Resolve(cb.Name, cb.ID)
		st.toolName = cb.Name
		st.content[idx] = ai.ContentBlock{Kind: ai.BlockKindToolCall, ToolCallID: st.toolID, ToolCallName: st.toolName}
		events.Push(ai.AssistantEvent{Type: ai.EventToolCallStart, ContentIndex: idx, ToolCallID: st.toolID, ToolCallName: st.toolName})

	default:
		// Unknown block type: still reserve a slot so later content_block_stop
		// indices line up, but surface it only as an Other block.
		st.openIndex, st.openKind = idx, ai.BlockKindOther
		st.content[idx] = ai.ContentBlock{Kind: ai.BlockKindOther, OtherKind: cb.Type}
		events.Push(ai.AssistantEvent{Type: ai.EventStart, ContentIndex: idx})
	}
}

func (st *streamState) applyDelta(d streamDelta, events *ai.AssistantStream) {
	if st.openIndex == -1 {
		return
	}

	switch d.Type {
	case "text_delta":
		if d.Text == "" {
			return
		}
		st.acc.WriteString(d.Text)
		events.Push(ai.AssistantEvent{Type: ai.EventTextDelta, ContentIndex: st.openIndex, Delta: d.Text})

	case "thinking_delta":
		if d.Thinking == "" {
			return
		}
		st.acc.WriteString(d.Thinking)
		events.Push(ai.AssistantEvent{Type: ai.EventThinkingDelta, ContentIndex: st.openIndex, Delta: d.Thinking})

	case "input_json_delta":
		if d.PartialJSON == "" {
			return
		}
		st.acc.WriteString(d.PartialJSON)
		events.Push(ai.AssistantEvent{Type: ai.EventToolCallDelta, ContentIndex: st.openIndex, ArgumentsDelta: d.PartialJSON})
	}
}

func (st *streamState) closeBlock(events *ai.AssistantStream) {
	if st.openIndex == -1 {
		return
	}

	final := st.acc.String()

	switch st.openKind {
	case ai.BlockKindText:
		st.content[st.openIndex].Body = final
		events.Push(ai.AssistantEvent{Type: ai.EventTextEnd, ContentIndex: st.openIndex, FinalText: final})
	case ai.BlockKindThinking:
		st.content[st.openIndex].Body = final
		events.Push(ai.AssistantEvent{Type: ai.EventThinkingEnd, ContentIndex: st.openIndex, FinalText: final})
	case ai.BlockKindToolCall:
		args, argsValue := ai.NormalizeToolCallArguments(final)
		st.content[st.openIndex].ToolCallArguments = args
		st.content[st.openIndex].Arguments = argsValue
		events.Push(ai.AssistantEvent{Type: ai.EventToolCallEnd, ContentIndex: st.openIndex, FinalArguments: args, Arguments: argsValue})
	}

	st.openIndex = -1
}

func (st *streamState) nextIndex() int {
	idx := len(st.content)
	st.content = append(st.content, ai.ContentBlock{})
	return idx
}

func (st *streamState) finish(events *ai.AssistantStream, reason ai.StopReason) {
	st.usage = ai.FinalizeUsage(st.usage, st.model)

	msg := &ai.AssistantMessage{
		Content:    st.content,
		API:        st.model.API,
		Provider:   st.model.Provider,
		Model:      st.model.ID,
		Usage:      st.usage,
		StopReason: reason,
	}

	usage := st.usage
	events.Push(ai.AssistantEvent{Type: ai.EventDone, StopReason: reason, Usage: &usage})
	events.End(msg, nil)
}

func (st *streamState) finishWithError(events *ai.AssistantStream, streamErr *ai.StreamError) {
	reason := ai.StopReasonError
	if streamErr.Kind == ai.ErrorAborted {
		reason = ai.StopReasonCanceled
	}

	if st.openIndex != -1 {
		st.closeBlock(events)
	}

	events.Push(ai.AssistantEvent{Type: ai.EventError, Err: streamErr})

	st.usage = ai.FinalizeUsage(st.usage, st.model)

	msg := &ai.AssistantMessage{
		Content:      st.content,
		API:          st.model.API,
		Provider:     st.model.Provider,
		Model:        st.model.ID,
		Usage:        st.usage,
		StopReason:   reason,
		ErrorMessage: streamErr.Error(),
	}
	events.End(msg, nil)
}
