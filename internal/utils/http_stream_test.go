package utils

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/leofalp/llmstream/internal/sse"
)

// ---- DoPostStream tests -----------------------------------------------------

// TestDoPostStream_SuccessResponse_ReturnsOpenBody verifies that a 200 response
// leaves the body open for the caller to read from (SSE consumption pattern).
func TestDoPostStream_SuccessResponse_ReturnsOpenBody(t *testing.T) {
	ssePayload := "data: chunk1\n\ndata: [DONE]\n\n"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, ssePayload)
	}))
	defer server.Close()

	response, err := DoPostStream(context.Background(), server.Client(), server.URL, "test-key", map[string]string{"q": "test"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	defer CloseWithLog(response.Body)

	// Body must still be readable — consume via the package's SSE reader.
	reader := sse.NewReader(response.Body)
	defer reader.Close()
	payload, readErr := reader.Next(context.Background(), nil)
	if readErr != nil {
		t.Fatalf("expected nil error reading SSE, got %v", readErr)
	}
	if payload != "chunk1" {
		t.Errorf("expected %q, got %q", "chunk1", payload)
	}
}

// TestDoPostStream_NonTwoxxResponse_ReturnsError verifies that a non-2xx
// HTTP status causes DoPostStream to return an error with the status code.
func TestDoPostStream_NonTwoxxResponse_ReturnsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limit exceeded"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := DoPostStream(context.Background(), server.Client(), server.URL, "test-key", map[string]string{})
	if err == nil {
		t.Fatal("expected error for non-2xx response, got nil")
	}

	// Error should mention the status code
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("expected error to contain status code 429, got: %v", err)
	}
}

// TestDoPostStream_ServerError_ReturnsError verifies that a 500 response is
// treated as an error and the body contents are included in the error message.
func TestDoPostStream_ServerError_ReturnsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := DoPostStream(context.Background(), server.Client(), server.URL, "", map[string]string{})
	if err == nil {
		t.Fatal("expected error for 500 response, got nil")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("expected error to contain status 500, got: %v", err)
	}
}

// TestDoPostStream_ContextCancellation_ReturnsError verifies that a
// pre-cancelled context causes DoPostStream to return an error immediately.
func TestDoPostStream_ContextCancellation_ReturnsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// This handler will never be reached if context is already cancelled.
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cancelledCtx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately before the request

	_, err := DoPostStream(cancelledCtx, server.Client(), server.URL, "", map[string]string{})
	if err == nil {
		t.Fatal("expected error for cancelled context, got nil")
	}
}

// TestDoPostStream_NetworkError_ReturnsError verifies that an unreachable
// server causes DoPostStream to return a wrapped error.
func TestDoPostStream_NetworkError_ReturnsError(t *testing.T) {
	// Point to a port that is guaranteed not to be listening.
	_, err := DoPostStream(context.Background(), nil, "http://127.0.0.1:1", "", map[string]string{})
	if err == nil {
		t.Fatal("expected network error, got nil")
	}
}

// TestDoPostStream_SetsAuthHeader_WithAPIKey verifies that when an API key is
// provided the Authorization header is sent as a Bearer token.
func TestDoPostStream_SetsAuthHeader_WithAPIKey(t *testing.T) {
	const expectedKey = "supersecret"
	var capturedAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	response, err := DoPostStream(context.Background(), server.Client(), server.URL, expectedKey, map[string]string{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	CloseWithLog(response.Body)

	expected := "Bearer " + expectedKey
	if capturedAuth != expected {
		t.Errorf("expected Authorization header %q, got %q", expected, capturedAuth)
	}
}

// TestDoPostStream_CustomHeader_OverridesDefault verifies that a HeaderOption
// is applied to the outgoing request, overriding any default header value.
func TestDoPostStream_CustomHeader_OverridesDefault(t *testing.T) {
	const customHeaderKey = "x-custom-provider-key"
	const customHeaderValue = "provider-token-123"
	var capturedHeader string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedHeader = r.Header.Get(customHeaderKey)
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	response, err := DoPostStream(
		context.Background(),
		server.Client(),
		server.URL,
		"",
		map[string]string{},
		HeaderOption{Key: customHeaderKey, Value: customHeaderValue},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	CloseWithLog(response.Body)

	if capturedHeader != customHeaderValue {
		t.Errorf("expected custom header %q, got %q", customHeaderValue, capturedHeader)
	}
}
