package google

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
	return ai.Model{ID: "gemini-2.5-flash", API: ai.APIGoogle, Provider: "Google", BaseURL: baseURL}
}

func TestStreamContentDeltasFromCumulativeChunks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		writeSSE(w, `{"candidates":[{"content":{"parts":[{"text":"Hello"}],"role":"model"}}]}`)
		writeSSE(w, `{"candidates":[{"content":{"parts":[{"text":"Hello world"}],"role":"model"}}]}`)
		writeSSE(w, `{"candidates":[{"content":{"parts":[{"text":"Hello world!"}],"role":"model"},"finishReason":"STOP"}],"usageMetadata":{"promptTokenCount":5,"candidatesTokenCount":3,"totalTokenCount":8}}`)
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
	if msg.Usage.Input != 5 || msg.Usage.Output != 3 || msg.Usage.TotalTokens != 8 {
		t.Errorf("unexpected usage: %+v", msg.Usage)
	}
}

func TestStreamFunctionCallGetsSynthesizedID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		writeSSE(w, `{"candidates":[{"content":{"parts":[{"functionCall":{"name":"get_weather","args":{"city":"London"}}}],"role":"model"},"finishReason":"STOP"}]}`)
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
	if block.ToolCallID == "" || !strings.HasPrefix(block.ToolCallID, "get_weather_") {
		t.Errorf("expected synthesized ID prefixed with function name, got %q", block.ToolCallID)
	}
	if !strings.Contains(block.ToolCallArguments, "London") {
		t.Errorf("expected arguments to contain London, got %q", block.ToolCallArguments)
	}
}

func TestStreamThinkingAndTextAreSeparateBlocks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		writeSSE(w, `{"candidates":[{"content":{"parts":[{"text":"thinking...","thought":true}],"role":"model"}}]}`)
		writeSSE(w, `{"candidates":[{"content":{"parts":[{"text":"thinking...","thought":true},{"text":"answer"}],"role":"model"},"finishReason":"STOP"}]}`)
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
	if msg.Content[0].Kind != ai.BlockKindThinking || msg.Content[0].Body != "thinking..." {
		t.Errorf("block 0 = %+v, want thinking block", msg.Content[0])
	}
	if msg.Content[1].Kind != ai.BlockKindText || msg.Content[1].Body != "answer" {
		t.Errorf("block 1 = %+v, want text block 'answer'", msg.Content[1])
	}
}

func TestStreamFunctionCallWithEmptyArgsNormalizesToEmptyObject(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		writeSSE(w, `{"candidates":[{"content":{"parts":[{"functionCall":{"name":"ping"}}],"role":"model"},"finishReason":"STOP"}]}`)
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

func TestStreamUsageSumsCandidateAndThoughtsTokens(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		writeSSE(w, `{"candidates":[{"content":{"parts":[{"text":"thinking...","thought":true}],"role":"model"}}]}`)
		writeSSE(w, `{"candidates":[{"content":{"parts":[{"text":"thinking...","thought":true},{"text":"answer"}],"role":"model"},"finishReason":"STOP"}],"usageMetadata":{"promptTokenCount":10,"candidatesTokenCount":4,"thoughtsTokenCount":6,"totalTokenCount":20}}`)
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
	if msg.Usage.Output != 10 {
		t.Errorf("Usage.Output = %d, want 10 (candidates 4 + thoughts 6)", msg.Usage.Output)
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
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error":{"message":"API key invalid"}}`)
	}))
	defer server.Close()

	_, err := Stream(context.Background(), testModel(server.URL),
		ai.Context{Turns: []ai.Message{{Role: ai.RoleUser, Content: "hi"}}},
		ai.Options{APIKey: "bad-key"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "403") {
		t.Errorf("expected error to mention 403, got: %v", err)
	}
}

func TestStreamContextCancellationTerminatesStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		writeSSE(w, `{"candidates":[{"content":{"parts":[{"text":"Hello"}],"role":"model"}}]}`)
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
