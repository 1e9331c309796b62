package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/leofalp/llmstream/internal/sse"
	"github.com/leofalp/llmstream/providers/ai"
	"github.com/leofalp/llmstream/providers/observability"
)

// runStream reads SSE chunks from resp.Body and drives out onto events,
// closing events with a final AssistantMessage once the body is exhausted
// or the request is canceled. Unlike OpenAI-shaped deltas, every Gemini SSE
// event carries the full accumulated text-so-far rather than an increment,
// so state tracks rune-length watermarks and diffs each chunk against them.
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
				// The body closed without a finishReason ever arriving:
				// an unexpected mid-stream disconnect rather than a clean end.
				st.finishWithError(events, ai.NewStreamError(ai.ErrorInvalidResponse, fmt.Errorf("google: stream ended without a finish reason")))
				return
			}
			st.finishWithError(events, classifyStreamErr(err))
			return
		}
		if payload == "" {
			continue
		}

		var chunk generateContentResponse
		if jsonErr := json.Unmarshal([]byte(payload), &chunk); jsonErr != nil {
			if observer != nil {
				observer.Trace(ctx, "google: failed to decode SSE chunk", observability.Error(jsonErr))
			}
			st.finishWithError(events, ai.NewStreamError(ai.ErrorInvalidResponse, fmt.Errorf("google: decode chunk: %w", jsonErr)))
			return
		}

		done, finalReason := st.applyChunk(&chunk, events)
		if done {
			st.finish(events, finalReason)
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

// streamState tracks the open content blocks and watermarks needed to turn
// a sequence of cumulative Gemini chunks into Start/Delta/End events with
// stable content indices.
type streamState struct {
	model ai.Model

	content []ai.ContentBlock

	text        strings.Builder
	textIndex   int // -1 until the first non-empty text delta
	textRunes   int

	thinking      strings.Builder
	thinkingIndex int
	thinkingRunes int

	toolCallsEmitted bool
	synth            *ai.ToolCallIDSynthesizer

	usage ai.Usage
}

func newStreamState(model ai.Model) *streamState {
	return &streamState{
		model:         model,
		textIndex:     -1,
		thinkingIndex: -1,
		synth:         ai.NewToolCallIDSynthesizer(),
	}
}

func (st *streamState) nextIndex() int {
	idx := len(st.content)
	st.content = append(st.content, ai.ContentBlock{})
	return idx
}

// applyChunk folds one decoded chunk into state, pushing the resulting
// events onto the stream. It reports whether the response has finished and,
// if so, with which stop reason.
func (st *streamState) applyChunk(chunk *generateContentResponse, events *ai.AssistantStream) (done bool, reason ai.StopReason) {
	if chunk.UsageMetadata != nil {
		// Output counts candidate tokens plus reasoning ("thoughts") tokens,
		// since Gemini reports them separately but both count as generated.
		st.usage = ai.Usage{
			Input:       chunk.UsageMetadata.PromptTokenCount,
			Output:      chunk.UsageMetadata.CandidatesTokenCount + chunk.UsageMetadata.ThoughtsTokenCount,
			CacheRead:   chunk.UsageMetadata.CachedContentTokenCount,
			TotalTokens: chunk.UsageMetadata.TotalTokenCount,
		}
	}

	if len(chunk.Candidates) == 0 {
		return false, ""
	}

	candidate := chunk.Candidates[0]

	if candidate.Content != nil {
		st.applyParts(candidate.Content.Parts, events)
	}

	if candidate.GroundingMetadata != nil {
		st.emitGrounding(candidate.GroundingMetadata, events)
	}

	if candidate.FinishReason == "" {
		return false, ""
	}
	return true, mapStopReason(candidate.FinishReason)
}

func (st *streamState) applyParts(parts []part, events *ai.AssistantStream) {
	var textParts, thinkingParts []string
	var toolCalls []part
	var codeParts []part

	for _, p := range parts {
		switch {
		case p.Text != "" && p.Thought:
			thinkingParts = append(thinkingParts, p.Text)
		case p.Text != "":
			textParts = append(textParts, p.Text)
		case p.FunctionCall != nil:
			toolCalls = append(toolCalls, p)
		case p.ExecutableCode != nil || p.CodeExecResult != nil:
			codeParts = append(codeParts, p)
		}
	}

	if len(thinkingParts) > 0 {
		st.applyTextDelta(strings.Join(thinkingParts, ""), &st.thinking, &st.thinkingRunes, &st.thinkingIndex,
			ai.BlockKindThinking, ai.EventThinkingStart, ai.EventThinkingDelta, events)
	}

	if len(textParts) > 0 {
		st.applyTextDelta(strings.Join(textParts, ""), &st.text, &st.textRunes, &st.textIndex,
			ai.BlockKindText, ai.EventTextStart, ai.EventTextDelta, events)
	}

	if len(toolCalls) > 0 && !st.toolCallsEmitted {
		st.toolCallsEmitted = true
		for _, p := range toolCalls {
			st.emitToolCall(p.FunctionCall, events)
		}
	}

	for _, p := range codeParts {
		st.emitCodeExecution(p, events)
	}
}

// applyTextDelta computes the new suffix of a cumulative field (Gemini
// resends the full text-so-far on every chunk) by diffing rune counts
// against the watermark, then emits Start (on first content) and Delta.
func (st *streamState) applyTextDelta(full string, acc *strings.Builder, prevRunes *int, blockIndex *int,
	kind ai.BlockKind, startEvt, deltaEvt ai.AssistantEventType, events *ai.AssistantStream) {

	runes := []rune(full)
	if len(runes) <= *prevRunes {
		return
	}
	delta := string(runes[*prevRunes:])
	*prevRunes = len(runes)
	acc.WriteString(delta)

	if *blockIndex == -1 {
		*blockIndex = st.nextIndex()
		st.content[*blockIndex] = ai.ContentBlock{Kind: kind}
		events.Push(ai.AssistantEvent{Type: startEvt, ContentIndex: *blockIndex})
	}
	events.Push(ai.AssistantEvent{Type: deltaEvt, ContentIndex: *blockIndex, Delta: delta})
}

// emitToolCall pushes a complete Start/Delta/End triple immediately: Gemini
// sends function-call arguments whole, never incrementally. Empty args
// normalize to "{}" rather than an empty string.
func (st *streamState) emitToolCall(fc *functionCall, events *ai.AssistantStream) {
	idx := st.nextIndex()
	id := st.synth.Resolve(fc.Name, "")
	args, argsValue := ai.NormalizeToolCallArguments(string(fc.Args))

	st.content[idx] = ai.ContentBlock{
		Kind:              ai.BlockKindToolCall,
		ToolCallID:        id,
		ToolCallName:      fc.Name,
		ToolCallArguments: args,
		Arguments:         argsValue,
	}

	events.Push(ai.AssistantEvent{Type: ai.EventToolCallStart, ContentIndex: idx, ToolCallID: id, ToolCallName: fc.Name})
	events.Push(ai.AssistantEvent{Type: ai.EventToolCallDelta, ContentIndex: idx, ArgumentsDelta: args})
	events.Push(ai.AssistantEvent{Type: ai.EventToolCallEnd, ContentIndex: idx, FinalArguments: args, Arguments: argsValue})
}

// emitCodeExecution round-trips a code_execution tool part (source, then
// sandbox result) as an Other content block; this library does not model
// code execution as a first-class block kind.
func (st *streamState) emitCodeExecution(p part, events *ai.AssistantStream) {
	idx := st.nextIndex()

	ce := ai.CodeExecution{}
	if p.ExecutableCode != nil {
		ce.Language = p.ExecutableCode.Language
		ce.Code = p.ExecutableCode.Code
	}
	if p.CodeExecResult != nil {
		ce.Outcome = p.CodeExecResult.Outcome
		ce.Output = p.CodeExecResult.Output
	}

	st.content[idx] = ai.ContentBlock{Kind: ai.BlockKindOther, OtherKind: "code_execution", OtherRaw: ce}
	events.Push(ai.AssistantEvent{Type: ai.EventStart, ContentIndex: idx})
}

func (st *streamState) emitGrounding(gm *groundingMetadata, events *ai.AssistantStream) {
	idx := st.nextIndex()
	st.content[idx] = ai.ContentBlock{Kind: ai.BlockKindOther, OtherKind: "grounding", OtherRaw: gm}
	events.Push(ai.AssistantEvent{Type: ai.EventStart, ContentIndex: idx})
}

// finish closes any still-open text/thinking blocks, pushes Done, and ends
// the stream with the aggregated AssistantMessage.
func (st *streamState) finish(events *ai.AssistantStream, reason ai.StopReason) {
	if st.textIndex != -1 {
		final := st.text.String()
		st.content[st.textIndex].Body = final
		events.Push(ai.AssistantEvent{Type: ai.EventTextEnd, ContentIndex: st.textIndex, FinalText: final})
	}
	if st.thinkingIndex != -1 {
		final := st.thinking.String()
		st.content[st.thinkingIndex].Body = final
		events.Push(ai.AssistantEvent{Type: ai.EventThinkingEnd, ContentIndex: st.thinkingIndex, FinalText: final})
	}

	if st.toolCallsEmitted && reason == ai.StopReasonEndTurn {
		reason = ai.StopReasonToolUse
	}

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

	if st.textIndex != -1 {
		final := st.text.String()
		st.content[st.textIndex].Body = final
		events.Push(ai.AssistantEvent{Type: ai.EventTextEnd, ContentIndex: st.textIndex, FinalText: final})
	}
	if st.thinkingIndex != -1 {
		final := st.thinking.String()
		st.content[st.thinkingIndex].Body = final
		events.Push(ai.AssistantEvent{Type: ai.EventThinkingEnd, ContentIndex: st.thinkingIndex, FinalText: final})
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

func mapStopReason(geminiReason string) ai.StopReason {
	switch geminiReason {
	case "STOP":
		return ai.StopReasonEndTurn
	case "MAX_TOKENS":
		return ai.StopReasonMaxTokens
	case "SAFETY", "RECITATION", "BLOCKLIST", "PROHIBITED_CONTENT":
		return ai.StopReasonContentFilter
	default:
		return ai.StopReasonEndTurn
	}
}
