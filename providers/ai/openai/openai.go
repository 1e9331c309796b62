package openai

import (
	"context"
	"fmt"

	"github.com/leofalp/llmstream/internal/utils"
	"github.com/leofalp/llmstream/providers/ai"
	"github.com/leofalp/llmstream/providers/observability"
)

const (
	defaultBaseURL    = "https://api.openai.com/v1"
	responsesEndpoint = "/responses"
)

func init() {
	ai.RegisterBuiltin(func(r *ai.Registry) {
		r.Register(ai.APIOpenAI, Stream, nil, "built-in")
	})
	registerModels()
}

// Stream implements ai.AdapterFunc for ai.APIOpenAI over the Responses API.
func Stream(ctx context.Context, model ai.Model, convo ai.Context, opts ai.Options) (*ai.AssistantStream, error) {
	if opts.APIKey == "" {
		return nil, &ai.StreamError{Kind: ai.ErrorMissingAPIKey, Cause: fmt.Errorf("openai: no API key resolved for model %q", model.ID)}
	}

	span := observability.SpanFromContext(ctx)
	observer := observability.ObserverFromContext(ctx)

	req := requestFromContext(model, convo, opts)

	if span != nil {
		span.AddEvent(observability.EventLLMRequestStart)
		span.SetAttributes(
			observability.String(observability.AttrLLMProvider, string(model.API)),
			observability.String(observability.AttrLLMModel, model.ID),
			observability.String(observability.AttrSessionID, opts.SessionID),
			observability.Bool("llm.streaming", true),
		)
	}
	if observer != nil {
		observer.Trace(ctx, "openai: starting stream",
			observability.String(observability.AttrLLMModel, model.ID),
			observability.Int(observability.AttrRequestMessagesCount, len(convo.Turns)),
			observability.Int(observability.AttrRequestToolsCount, len(convo.Tools)),
		)
	}

	baseURL := model.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	url := baseURL + responsesEndpoint

	headers := make([]utils.HeaderOption, 0, len(opts.Headers)+len(model.DefaultHeaders))
	for k, v := range model.DefaultHeaders {
		headers = append(headers, utils.HeaderOption{Key: k, Value: v})
	}
	for k, v := range opts.Headers {
		headers = append(headers, utils.HeaderOption{Key: k, Value: v})
	}

	resp, err := utils.DoPostStream(ctx, nil, url, opts.APIKey, req, headers...)
	if err != nil {
		if observer != nil {
			observer.Trace(ctx, "openai: stream request failed", observability.Error(err))
		}
		return nil, &ai.StreamError{Kind: ai.ErrorAPIError, Cause: err}
	}

	events := ai.NewAssistantStream()

	var cancelCh <-chan struct{}
	if opts.Signal != nil {
		cancelCh = opts.Signal
	} else {
		cancelCh = make(chan struct{})
	}

	go runStream(ctx, cancelCh, resp, model, events)

	return events, nil
}
