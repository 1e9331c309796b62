package anthropic

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/leofalp/llmstream/core/jsonvalue"
	"github.com/leofalp/llmstream/providers/ai"
)

func writeSSE(w http.ResponseWriter, data string) {
	fmt.Fprintf(w, "data: %s\n\n", data)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func testModel(baseURL string) ai.Model {
	return ai.Model{ID: "claude-sonnet-4-5-20250929", API: ai.APIAnthropic, Provider: "Anthropic", BaseURL: baseURL}
}

func TestStreamTextRoundTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		writeSSE(w, `{"type":"message_start","message":{"id":"msg_1","type":"message","role":"assistant","model":"claude-sonnet-4-5-20250929","usage":{"input_tokens":10,"output_tokens":0}}}`)
		writeSSE(w, `{"type":"content_block_start","index":0,"content_block":{"type":"text"}}`)
		writeSSE(w, `{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Hello"}}`)
		writeSSE(w, `{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":" world!"}}`)
		writeSSE(w, `{"type":"content_block_stop","index":0}`)
		writeSSE(w, `{"type":"message_delta","delta":{"stop_reason":"end_turn"},"usage":{"output_tokens":3}}`)
		writeSSE(w, `{"type":"message_stop"}`)
	}))
	defer server.Close()

	stream, err := Stream(context.Background(), testModel(server.URL),
		ai.Context{Turns: []ai.Message{{Role: ai.RoleUser, Content: "Hi"}}},
		ai.Options{APIKey: "test-key"})
	if err != nil {
		t.Fatalf("Stream returned error: %v", err)
	}

	var deltas []string
	for ev := range stream.Iter() {
		if ev.Type == ai.EventTextDelta {
			deltas = append(deltas, ev.Delta)
		}
	}
	if got := strings.Join(deltas, ""); got != "Hello world!" {
		t.Errorf("joined deltas = %q, want %q", got, "Hello world!")
	}

	msg, err := stream.Result(context.Background())
	if err != nil {
		t.Fatalf("Result returned error: %v", err)
	}
	if msg.StopReason != ai.StopReasonEndTurn {
		t.Errorf("StopReason = %q, want endTurn", msg.StopReason)
	}
	if len(msg.Content) != 1 || msg.Content[0].Kind != ai.BlockKindText || msg.Content[0].Body != "Hello world!" {
		t.Fatalf("unexpected content blocks: %+v", msg.Content)
	}
	if msg.Usage.Input != 10 || msg.Usage.Output != 3 || msg.Usage.TotalTokens != 13 {
		t.Errorf("unexpected usage: %+v", msg.Usage)
	}
}

func TestStreamToolCallKeepsVendorSuppliedID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		writeSSE(w, `{"type":"message_start","message":{"id":"msg_1","type":"message","role":"assistant","model":"claude-sonnet-4-5-20250929","usage":{"input_tokens":8,"output_tokens":0}}}`)
		writeSSE(w, `{"type":"content_block_start","index":0,"content_block":{"type":"tool_use","id":"toolu_01abc","name":"get_weather"}}`)
		writeSSE(w, `{"type":"content_block_delta","index":0,"delta":{"type":"input_json_delta","partial_json":"{\"city\":"}}`)
		writeSSE(w, `{"type":"content_block_delta","index":0,"delta":{"type":"input_json_delta","partial_json":"\"London\"}"}}`)
		writeSSE(w, `{"type":"content_block_stop","index":0}`)
		writeSSE(w, `{"type":"message_delta","delta":{"stop_reason":"tool_use"},"usage":{"output_tokens":12}}`)
		writeSSE(w, `{"type":"message_stop"}`)
	}))
	defer server.Close()

	stream, err := Stream(context.Background(), testModel(server.URL),
		ai.Context{Turns: []ai.Message{{Role: ai.RoleUser, Content: "weather?"}}},
		ai.Options{APIKey: "test-key"})
	if err != nil {
		t.Fatalf("Stream returned error: %v", err)
	}

	msg, err := stream.Result(context.Background())
	if err != nil {
		t.Fatalf("Result returned error: %v", err)
	}
	if msg.StopReason != ai.StopReasonToolUse {
		t.Errorf("StopReason = %q, want toolUse", msg.StopReason)
	}
	if len(msg.Content) != 1 {
		t.Fatalf("expected 1 content block, got %d", len(msg.Content))
	}
	block := msg.Content[0]
	if block.Kind != ai.BlockKindToolCall || block.ToolCallName != "get_weather" {
		t.Fatalf("unexpected block: %+v", block)
	}
	if block.ToolCallID != "toolu_01abc" {
		t.Errorf("ToolCallID = %q, want vendor-supplied toolu_01abc unchanged", block.ToolCallID)
	}
	if !strings.Contains(block.ToolCallArguments, "London") {
		t.Errorf("expected arguments to contain London, got %q", block.ToolCallArguments)
	}
}

func TestStreamToolCallWithEmptyArgsNormalizesToEmptyObject(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		writeSSE(w, `{"type":"message_start","message":{"id":"msg_1","type":"message","role":"assistant","model":"claude-sonnet-4-5-20250929","usage":{"input_tokens":4,"output_tokens":0}}}`)
		writeSSE(w, `{"type":"content_block_start","index":0,"content_block":{"type":"tool_use","id":"toolu_01xyz","name":"ping"}}`)
		writeSSE(w, `{"type":"content_block_stop","index":0}`)
		writeSSE(w, `{"type":"message_delta","delta":{"stop_reason":"tool_use"},"usage":{"output_tokens":2}}`)
		writeSSE(w, `{"type":"message_stop"}`)
	}))
	defer server.Close()

	stream, err := Stream(context.Background(), testModel(server.URL),
		ai.Context{Turns: []ai.Message{{Role: ai.RoleUser, Content: "ping"}}},
		ai.Options{APIKey: "test-key"})
	if err != nil {
		t.Fatalf("Stream returned error: %v", err)
	}

	var endArgs string
	for ev := range stream.Iter() {
		if ev.Type == ai.EventToolCallEnd {
			endArgs = ev.FinalArguments
		}
	}

	msg, err := stream.Result(context.Background())
	if err != nil {
		t.Fatalf("Result returned error: %v", err)
	}
	block := msg.Content[0]
	if block.ToolCallArguments != "{}" {
		t.Errorf("ToolCallArguments = %q, want {}", block.ToolCallArguments)
	}
	if endArgs != "{}" {
		t.Errorf("ToolCallEnd.FinalArguments = %q, want {}", endArgs)
	}
	if block.Arguments.Kind() != jsonvalue.KindObject || len(block.Arguments.AsObject()) != 0 {
		t.Errorf("block.Arguments = %#v, want empty jsonvalue object", block.Arguments)
	}
}

func TestStreamThinkingAndTextAreSeparateBlocks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		writeSSE(w, `{"type":"message_start","message":{"id":"msg_1","type":"message","role":"assistant","model":"claude-sonnet-4-5-20250929","usage":{"input_tokens":4,"output_tokens":0}}}`)
		writeSSE(w, `{"type":"content_block_start","index":0,"content_block":{"type":"thinking"}}`)
		writeSSE(w, `{"type":"content_block_delta","index":0,"delta":{"type":"thinking_delta","thinking":"reasoning..."}}`)
		writeSSE(w, `{"type":"content_block_stop","index":0}`)
		writeSSE(w, `{"type":"content_block_start","index":1,"content_block":{"type":"text"}}`)
		writeSSE(w, `{"type":"content_block_delta","index":1,"delta":{"type":"text_delta","text":"answer"}}`)
		writeSSE(w, `{"type":"content_block_stop","index":1}`)
		writeSSE(w, `{"type":"message_delta","delta":{"stop_reason":"end_turn"},"usage":{"output_tokens":6}}`)
		writeSSE(w, `{"type":"message_stop"}`)
	}))
	defer server.Close()

	stream, err := Stream(context.Background(), testModel(server.URL),
		ai.Context{Turns: []ai.Message{{Role: ai.RoleUser, Content: "solve it"}}},
		ai.Options{APIKey: "test-key"})
	if err != nil {
		t.Fatalf("Stream returned error: %v", err)
	}

	msg, err := stream.Result(context.Background())
	if err != nil {
		t.Fatalf("Result returned error: %v", err)
	}
	if len(msg.Content) != 2 {
		t.Fatalf("expected 2 content blocks, got %d: %+v", len(msg.Content), msg.Content)
	}
	if msg.Content[0].Kind != ai.BlockKindThinking || msg.Content[0].Body != "reasoning..." {
		t.Errorf("block 0 = %+v, want thinking block", msg.Content[0])
	}
	if msg.Content[1].Kind != ai.BlockKindText || msg.Content[1].Body != "answer" {
		t.Errorf("block 1 = %+v, want text block 'answer'", msg.Content[1])
	}
}

func TestStreamMidStreamErrorEventIsTerminal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		writeSSE(w, `{"type":"message_start","message":{"id":"msg_1","type":"message","role":"assistant","model":"claude-sonnet-4-5-20250929","usage":{"input_tokens":4,"output_tokens":0}}}`)
		writeSSE(w, `{"type":"content_block_start","index":0,"content_block":{"type":"text"}}`)
		writeSSE(w, `{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"partial"}}`)
		writeSSE(w, `{"type":"error","error":{"type":"overloaded_error","message":"server overloaded"}}`)
	}))
	defer server.Close()

	stream, err := Stream(context.Background(), testModel(server.URL),
		ai.Context{Turns: []ai.Message{{Role: ai.RoleUser, Content: "hi"}}},
		ai.Options{APIKey: "test-key"})
	if err != nil {
		t.Fatalf("Stream returned error: %v", err)
	}

	var sawError bool
	for ev := range stream.Iter() {
		if ev.Type == ai.EventError {
			sawError = true
		}
	}
	if !sawError {
		t.Fatal("expected an EventError to be pushed")
	}

	msg, err := stream.Result(context.Background())
	if err != nil {
		t.Fatalf("Result returned error: %v", err)
	}
	if msg.StopReason != ai.StopReasonError {
		t.Errorf("StopReason = %q, want error", msg.StopReason)
	}
	if !strings.Contains(msg.ErrorMessage, "server overloaded") {
		t.Errorf("ErrorMessage = %q, want it to mention server overloaded", msg.ErrorMessage)
	}
}

func TestStreamMissingAPIKeyFailsBeforeRequest(t *testing.T) {
	_, err := Stream(context.Background(), testModel("http://unused.invalid"),
		ai.Context{Turns: []ai.Message{{Role: ai.RoleUser, Content: "hi"}}},
		ai.Options{})
	if err == nil {
		t.Fatal("expected error for missing API key")
	}
	streamErr, ok := err.(*ai.StreamError)
	if !ok || streamErr.Kind != ai.ErrorMissingAPIKey {
		t.Fatalf("expected ErrorMissingAPIKey, got %v", err)
	}
}

func TestStreamHTTPErrorSurfacesBeforeStreamStarts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"invalid x-api-key"}}`)
	}))
	defer server.Close()

	_, err := Stream(context.Background(), testModel(server.URL),
		ai.Context{Turns: []ai.Message{{Role: ai.RoleUser, Content: "hi"}}},
		ai.Options{APIKey: "bad-key"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("expected error to mention 401, got: %v", err)
	}
}

func TestStreamContextCancellationTerminatesStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		writeSSE(w, `{"type":"message_start","message":{"id":"msg_1","type":"message","role":"assistant","model":"claude-sonnet-4-5-20250929","usage":{"input_tokens":4,"output_tokens":0}}}`)
		writeSSE(w, `{"type":"content_block_start","index":0,"content_block":{"type":"text"}}`)
		writeSSE(w, `{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Hello"}}`)
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())

	stream, err := Stream(ctx, testModel(server.URL),
		ai.Context{Turns: []ai.Message{{Role: ai.RoleUser, Content: "hi"}}},
		ai.Options{APIKey: "test-key"})
	if err != nil {
		t.Fatalf("Stream returned error: %v", err)
	}

	seen := 0
	for ev := range stream.Iter() {
		seen++
		if ev.Type == ai.EventTextDelta {
			cancel()
		}
	}
	if seen == 0 {
		t.Fatal("expected at least one event before cancellation")
	}

	msg, err := stream.Result(context.Background())
	if err != nil {
		t.Fatalf("Result returned error: %v", err)
	}
	if msg.StopReason != ai.StopReasonCanceled {
		t.Errorf("StopReason = %q, want canceled", msg.StopReason)
	}
}
