package ai

import (
	"context"

	"github.com/google/uuid"

	"github.com/leofalp/llmstream/providers/credentials"
)

// ThinkingConfig controls extended reasoning, where the vendor supports it.
type ThinkingConfig struct {
	BudgetTokens    int // 0 disables, negative requests a vendor-chosen dynamic budget
	IncludeThoughts bool
}

// Options carries every per-request knob Stream accepts, vendor-specific
// fields included. SimpleOptions is the reduced, vendor-agnostic subset for
// StreamSimple.
type Options struct {
	Temperature *float32
	MaxTokens   *int
	ToolChoice  *ToolChoice
	Thinking    *ThinkingConfig

	// APIKey overrides credential resolution for this call only.
	APIKey string

	// Headers are merged on top of the model's DefaultHeaders and any
	// adapter-computed auth headers.
	Headers map[string]string

	// SessionID is an opaque caller-supplied correlation identifier,
	// forwarded to observability spans; it has no effect on the wire
	// request sent to any vendor.
	SessionID string

	// Signal, when non-nil, lets a caller cancel this specific request
	// independent of ctx — useful when one ctx is shared across many
	// concurrent requests. ctx cancellation is always honored regardless.
	Signal <-chan struct{}
}

// SimpleOptions is the vendor-agnostic request option set for StreamSimple.
// Adapters map it onto Options internally.
type SimpleOptions struct {
	Temperature *float32
	MaxTokens   *int
	Signal      <-chan struct{}
}

func (s SimpleOptions) toOptions() Options {
	return Options{
		Temperature: s.Temperature,
		MaxTokens:   s.MaxTokens,
		Signal:      s.Signal,
	}
}

// resolveAPIKey returns the API key to use for a request: an explicit
// per-call override, falling back to the credential resolver keyed by the
// model's provider name. Internals of credential storage (keychains,
// vaults, secret managers) are out of scope for this library; see the
// providers/credentials package.
func resolveAPIKey(model Model, opts Options) string {
	if opts.APIKey != "" {
		return opts.APIKey
	}
	return credentials.Resolve(model.Provider)
}

// errorStream returns an already-terminated AssistantStream carrying a
// single EventError and an error-stopped final message, for error conditions detected before any
// vendor adapter is invoked (e.g. an unknown API tag).
func errorStream(kind ErrorKind, err error) *AssistantStream {
	s := NewAssistantStream()
	streamErr := NewStreamError(kind, err)
	s.Push(AssistantEvent{Type: EventError, Err: streamErr})
	s.End(&AssistantMessage{StopReason: StopReasonError, ErrorMessage: streamErr.Error()}, nil)
	return s
}

// Stream dispatches a streaming chat request to the adapter registered for
// model.API, returning a live AssistantStream. An unregistered model.API
// yields an already-terminated stream carrying an EventError and a nil
// error. A non-nil error return comes from the adapter when it fails before
// streaming starts (for example a missing API key or a non-2xx response);
// once streaming starts, failures surface as a terminal EventError on the
// returned stream instead.
func Stream(ctx context.Context, model Model, convo Context, options Options) (*AssistantStream, error) {
	bootstrapDefaults()

	full, _, ok := DefaultRegistry.Get(model.API)
	if !ok {
		return errorStream(ErrorUnknownAPI, errUnknownAPI(model.API)), nil
	}

	if options.APIKey == "" {
		options.APIKey = resolveAPIKey(model, options)
	}
	if options.SessionID == "" {
		options.SessionID = uuid.NewString()
	}

	return full(ctx, model, convo, options)
}

// StreamSimple is Stream's vendor-agnostic counterpart, for callers that
// don't need vendor-specific Options fields.
func StreamSimple(ctx context.Context, model Model, convo Context, options SimpleOptions) (*AssistantStream, error) {
	bootstrapDefaults()

	_, simple, ok := DefaultRegistry.Get(model.API)
	if !ok {
		return errorStream(ErrorUnknownAPI, errUnknownAPI(model.API)), nil
	}

	if simple != nil {
		return simple(ctx, model, convo, options)
	}

	full, _, _ := DefaultRegistry.Get(model.API)
	opts := options.toOptions()
	if opts.APIKey == "" {
		opts.APIKey = resolveAPIKey(model, opts)
	}
	if opts.SessionID == "" {
		opts.SessionID = uuid.NewString()
	}
	return full(ctx, model, convo, opts)
}
