package ai

import (
	"context"
	"testing"
)

const testAPI API = "test-dispatch"

func registerTestAdapter(t *testing.T, fn AdapterFunc) {
	t.Helper()
	DefaultRegistry.Register(testAPI, fn, nil, "test")
	t.Cleanup(func() { DefaultRegistry.Unregister(testAPI) })
}

func TestStreamGeneratesSessionIDWhenUnset(t *testing.T) {
	var captured Options
	registerTestAdapter(t, func(ctx context.Context, model Model, convo Context, opts Options) (*AssistantStream, error) {
		captured = opts
		s := NewAssistantStream()
		s.End(&AssistantMessage{StopReason: StopReasonEndTurn}, nil)
		return s, nil
	})

	if _, err := Stream(context.Background(), Model{API: testAPI}, Context{}, Options{}); err != nil {
		t.Fatalf("Stream returned error: %v", err)
	}

	if captured.SessionID == "" {
		t.Error("expected Stream to auto-generate a SessionID when left blank")
	}
}

func TestStreamKeepsCallerSuppliedSessionID(t *testing.T) {
	var captured Options
	registerTestAdapter(t, func(ctx context.Context, model Model, convo Context, opts Options) (*AssistantStream, error) {
		captured = opts
		s := NewAssistantStream()
		s.End(&AssistantMessage{StopReason: StopReasonEndTurn}, nil)
		return s, nil
	})

	if _, err := Stream(context.Background(), Model{API: testAPI}, Context{}, Options{SessionID: "caller-session"}); err != nil {
		t.Fatalf("Stream returned error: %v", err)
	}

	if captured.SessionID != "caller-session" {
		t.Errorf("SessionID = %q, want caller-session", captured.SessionID)
	}
}

func TestStreamUnknownAPIReturnsTerminatedStream(t *testing.T) {
	stream, err := Stream(context.Background(), Model{API: "does-not-exist"}, Context{}, Options{})
	if err != nil {
		t.Fatalf("Stream returned a Go error instead of a terminated stream: %v", err)
	}

	msg, err := stream.Result(context.Background())
	if err != nil {
		t.Fatalf("stream.Result returned error: %v", err)
	}
	if msg.StopReason != StopReasonError {
		t.Errorf("StopReason = %q, want %q", msg.StopReason, StopReasonError)
	}
}

func TestStreamSimpleFallsBackToFullAdapterAndGeneratesSessionID(t *testing.T) {
	var captured Options
	registerTestAdapter(t, func(ctx context.Context, model Model, convo Context, opts Options) (*AssistantStream, error) {
		captured = opts
		s := NewAssistantStream()
		s.End(&AssistantMessage{StopReason: StopReasonEndTurn}, nil)
		return s, nil
	})

	if _, err := StreamSimple(context.Background(), Model{API: testAPI}, Context{}, SimpleOptions{}); err != nil {
		t.Fatalf("StreamSimple returned error: %v", err)
	}

	if captured.SessionID == "" {
		t.Error("expected StreamSimple to auto-generate a SessionID when falling back to the full adapter")
	}
}
