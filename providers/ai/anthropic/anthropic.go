// Package anthropic implements the ai.AdapterFunc contract for Anthropic's
// Messages API streaming endpoint.
package anthropic

import (
	"context"
	"fmt"

	"github.com/leofalp/llmstream/internal/utils"
	"github.com/leofalp/llmstream/providers/ai"
	"github.com/leofalp/llmstream/providers/observability"
)

const (
	defaultBaseURL   = "https://api.anthropic.com/v1"
	messagesEndpoint = "/messages"

	// anthropicVersion is the required anthropic-version header value.
	// Anthropic uses this to version-lock response formats independently of
	// the URL.
	anthropicVersion = "2023-06-01"
)

func init() {
	ai.RegisterBuiltin(func(r *ai.Registry) {
		r.Register(ai.APIAnthropic, Stream, nil, "built-in")
	})
	registerModels()
}

// Stream implements ai.AdapterFunc for ai.APIAnthropic. Authentication uses
// the x-api-key header (Anthropic does not accept Bearer tokens).
func Stream(ctx context.Context, model ai.Model, convo ai.Context, opts ai.Options) (*ai.AssistantStream, error) {
	if opts.APIKey == "" {
		return nil, &ai.StreamError{Kind: ai.ErrorMissingAPIKey, Cause: fmt.Errorf("anthropic: no API key resolved for model %q", model.ID)}
	}

	span := observability.SpanFromContext(ctx)
	observer := observability.ObserverFromContext(ctx)

	req := requestFromContext(model, convo, opts)
	req.Stream = true

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
		observer.Trace(ctx, "anthropic: starting stream",
			observability.String(observability.AttrLLMModel, model.ID),
			observability.Int(observability.AttrRequestMessagesCount, len(convo.Turns)),
			observability.Int(observability.AttrRequestToolsCount, len(convo.Tools)),
		)
	}

	baseURL := model.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	url := baseURL + messagesEndpoint

	var headers []utils.HeaderOption
	for k, v := range model.DefaultHeaders {
		headers = append(headers, utils.HeaderOption{Key: k, Value: v})
	}
	headers = append(headers,
		utils.HeaderOption{Key: "x-api-key", Value: opts.APIKey},
		utils.HeaderOption{Key: "anthropic-version", Value: anthropicVersion},
	)
	for k, v := range opts.Headers {
		headers = append(headers, utils.HeaderOption{Key: k, Value: v})
	}

	// Pass empty apiKey so DoPostStream does not also inject a Bearer token;
	// auth is already carried by the x-api-key header above.
	resp, err := utils.DoPostStream(ctx, nil, url, "", req, headers...)
	if err != nil {
		if observer != nil {
			observer.Trace(ctx, "anthropic: stream request failed", observability.Error(err))
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

func registerModels() {
	for _, m := range []ai.Model{
		{ID: "claude-sonnet-4-5-20250929", Name: "Claude Sonnet 4.5", Reasoning: true, ContextWindow: 200_000, MaxOutputTokens: 64_000,
			Pricing: &ai.ModelPricing{InputCostPerMillion: 3.00, OutputCostPerMillion: 15.00, CachedInputCostPerMillion: 0.30}},
		{ID: "claude-opus-4-1-20250805", Name: "Claude Opus 4.1", Reasoning: true, ContextWindow: 200_000, MaxOutputTokens: 32_000,
			Pricing: &ai.ModelPricing{InputCostPerMillion: 15.00, OutputCostPerMillion: 75.00, CachedInputCostPerMillion: 1.50}},
		{ID: "claude-haiku-4-5-20251001", Name: "Claude Haiku 4.5", ContextWindow: 200_000, MaxOutputTokens: 64_000,
			Pricing: &ai.ModelPricing{InputCostPerMillion: 1.00, OutputCostPerMillion: 5.00, CachedInputCostPerMillion: 0.10}},
	} {
		m.API = ai.APIAnthropic
		m.Provider = "Anthropic"
		m.InputModalities = []ai.Modality{ai.ModalityText, ai.ModalityImage, ai.ModalityDocument}
		ai.RegisterModel(m)
	}
}
