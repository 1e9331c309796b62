package openai

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
// closing events with a final AssistantMessage once response.completed (or
// response.failed) arrives, the body is exhausted without one, or the
// request is canceled.
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
				st.finishWithError(events, ai.NewStreamError(ai.ErrorInvalidResponse, fmt.Errorf("openai: stream ended without a response.completed event")))
				return
			}
			st.finishWithError(events, classifyStreamErr(err))
			return
		}
		if payload == "" || payload == "[DONE]" {
			continue
		}

		event, parseErr := unmarshalResponseStreamEvent(payload)
		if parseErr != nil {
			if observer != nil {
				observer.Trace(ctx, "openai: failed to decode SSE event", observability.Error(parseErr))
			}
			st.finishWithError(events, ai.NewStreamError(ai.ErrorInvalidResponse, fmt.Errorf("openai: decode event: %w", parseErr)))
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

// openItem tracks one in-flight output item (message, reasoning, or
// function_call), keyed by its output_index since the Responses API can in
// principle interleave items by index even though it rarely streams more
// than one at a time.
type openItem struct {
	contentIndex int
	kind         ai.BlockKind
	acc          strings.Builder
	toolID       string
	toolName     string
}

type streamState struct {
	model ai.Model

	content []ai.ContentBlock
	open    map[int]*openItem

	synth *ai.ToolCallIDSynthesizer

	toolCallsEmitted bool
	usage            ai.Usage
	status           string
}

func newStreamState(model ai.Model) *streamState {
	return &streamState{
		model: model,
		open:  make(map[int]*openItem),
		synth: ai.NewToolCallIDSynthesizer(),
	}
}

func (st *streamState) applyEvent(event *responseStreamEvent, events *ai.AssistantStream) (done bool) {
	switch event.Type {
	case "response.output_item.added":
		if event.Item != nil {
			st.openItem(event.OutputIndex, *event.Item, events)
		}

	case "response.output_text.delta":
		st.applyTextDelta(event.OutputIndex, event.Delta, events)

	case "response.reasoning_summary_text.delta":
		st.applyThinkingDelta(event.OutputIndex, event.Delta, events)

	case "response.function_call_arguments.delta":
		st.applyToolDelta(event.OutputIndex, event.Delta, events)

	case "response.output_item.done":
		st.closeItem(event.OutputIndex, events)

	case "response.completed":
		if event.Response != nil && event.Response.Usage != nil {
			st.applyUsage(*event.Response.Usage)
		}
		st.status = "completed"
		st.finish(events, mapStatus(st.status, st.toolCallsEmitted))
		return true

	case "response.failed":
		msg := "response failed"
		if event.Response != nil && event.Response.Error != nil {
			msg = event.Response.Error.Message
		}
		st.finishWithError(events, ai.NewStreamError(ai.ErrorAPIError, fmt.Errorf("openai response failed: %s", msg)))
		return true

	case "error":
		msg := "unknown stream error"
		if event.Error != nil {
			msg = event.Error.Message
		}
		st.finishWithError(events, ai.NewStreamError(ai.ErrorAPIError, fmt.Errorf("openai stream error: %s", msg)))
		return true

	default:
		// response.created, response.in_progress, content_part.added/done,
		// output_text.done, function_call_arguments.done and others carry no
		// information this adapter needs beyond what their paired delta/item
		// events already provided.
	}

	return false
}

func (st *streamState) openItem(outputIndex int, item responseStreamItem, events *ai.AssistantStream) {
	idx := st.nextIndex()

	switch item.Type {
	case "message":
		st.open[outputIndex] = &openItem{contentIndex: idx, kind: ai.BlockKindText}
		st.content[idx] = ai.ContentBlock{Kind: ai.BlockKindText}
		events.Push(ai.AssistantEvent{Type: ai.EventTextStart, ContentIndex: idx})

	case "reasoning":
		st.open[outputIndex] = &openItem{contentIndex: idx, kind: ai.BlockKindThinking}
		st.content[idx] = ai.ContentBlock{Kind: ai.BlockKindThinking}
		events.Push(ai.AssistantEvent{Type: ai.EventThinkingStart, ContentIndex: idx})

	case "function_call":
		toolID := st.synth.Resolve(item.Name, item.CallID)
		st.open[outputIndex] = &openItem{contentIndex: idx, kind: ai.BlockKindToolCall, toolID: toolID, toolName: item.Name}
		st.content[idx] = ai.ContentBlock{Kind: ai.BlockKindToolCall, ToolCallID: toolID, ToolCallName: item.Name}
		events.Push(ai.AssistantEvent{Type: ai.EventToolCallStart, ContentIndex: idx, ToolCallID: toolID, ToolCallName: item.Name})

	default:
		st.open[outputIndex] = &openItem{contentIndex: idx, kind: ai.BlockKindOther}
		st.content[idx] = ai.ContentBlock{Kind: ai.BlockKindOther, OtherKind: item.Type}
		events.Push(ai.AssistantEvent{Type: ai.EventStart, ContentIndex: idx})
	}
}

func (st *streamState) applyTextDelta(outputIndex int, delta string, events *ai.AssistantStream) {
	item, ok := st.open[outputIndex]
	if !ok || delta == "" {
		return
	}
	item.acc.WriteString(delta)
	events.Push(ai.AssistantEvent{Type: ai.EventTextDelta, ContentIndex: item.contentIndex, Delta: delta})
}

func (st *streamState) applyThinkingDelta(outputIndex int, delta string, events *ai.AssistantStream) {
	item, ok := st.open[outputIndex]
	if !ok || delta == "" {
		return
	}
	item.acc.WriteString(delta)
	events.Push(ai.AssistantEvent{Type: ai.EventThinkingDelta, ContentIndex: item.contentIndex, Delta: delta})
}

func (st *streamState) applyToolDelta(outputIndex int, delta string, events *ai.AssistantStream) {
	item, ok := st.open[outputIndex]
	if !ok || delta == "" {
		return
	}
	item.acc.WriteString(delta)
	events.Push(ai.AssistantEvent{Type: ai.EventToolCallDelta, ContentIndex: item.contentIndex, ArgumentsDelta: delta})
}

func (st *streamState) closeItem(outputIndex int, events *ai.AssistantStream) {
	item, ok := st.open[outputIndex]
	if !ok {
		return
	}
	final := item.acc.String()

	switch item.kind {
	case ai.BlockKindText:
		st.content[item.contentIndex].Body = final
		events.Push(ai.AssistantEvent{Type: ai.EventTextEnd, ContentIndex: item.contentIndex, FinalText: final})
	case ai.BlockKindThinking:
		st.content[item.contentIndex].Body = final
		events.Push(ai.AssistantEvent{Type: ai.EventThinkingEnd, ContentIndex: item.contentIndex, FinalText: final})
	case ai.BlockKindToolCall:
		args, argsValue := ai.NormalizeToolCallArguments(final)
		st.content[item.contentIndex].ToolCallArguments = args
		st.content[item.contentIndex].Arguments = argsValue
		st.toolCallsEmitted = true
		events.Push(ai.AssistantEvent{Type: ai.EventToolCallEnd, ContentIndex: item.contentIndex, FinalArguments: args, Arguments: argsValue})
	}

	delete(st.open, outputIndex)
}

func (st *streamState) applyUsage(u responseUsage) {
	st.usage.Input = u.InputTokens
	st.usage.Output = u.OutputTokens
	st.usage.TotalTokens = u.TotalTokens
	if u.InputTokensDetails != nil {
		st.usage.CacheRead = u.InputTokensDetails.CachedTokens
	}
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

	for idx := range st.open {
		st.closeItem(idx, events)
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
