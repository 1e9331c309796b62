// Package google implements the ai.AdapterFunc contract for the Gemini
// generateContent API (Google AI Studio, i.e. the "Google" API tag; see the
// sibling vertex package for the same wire protocol served through Vertex
// AI's project/location-scoped endpoint).
package google

import (
	"context"
	"fmt"

	"github.com/leofalp/llmstream/internal/utils"
	"github.com/leofalp/llmstream/providers/ai"
	"github.com/leofalp/llmstream/providers/observability"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

func init() {
	ai.RegisterBuiltin(func(r *ai.Registry) {
		r.Register(ai.APIGoogle, Stream, nil, "built-in")
	})
	registerModels()
}

// Stream implements ai.AdapterFunc for ai.APIGoogle, talking to the public
// Google AI Studio endpoint with an "x-goog-api-key" header.
func Stream(ctx context.Context, model ai.Model, convo ai.Context, opts ai.Options) (*ai.AssistantStream, error) {
	if opts.APIKey == "" {
		return nil, &ai.StreamError{Kind: ai.ErrorMissingAPIKey, Cause: fmt.Errorf("google: no API key resolved for model %q", model.ID)}
	}

	baseURL := model.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	url := fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse", baseURL, model.ID)

	return StreamWithEndpoint(ctx, model, convo, opts, url, []utils.HeaderOption{{Key: "x-goog-api-key", Value: opts.APIKey}})
}

// StreamWithEndpoint runs the shared Gemini request/response pipeline
// against an arbitrary url and auth headers, so a sibling adapter speaking
// the same wire protocol through a different endpoint (Vertex AI's
// project/location-scoped URL with Bearer-token auth) can reuse the request
// builder and streaming FSM without duplicating either.
func StreamWithEndpoint(ctx context.Context, model ai.Model, convo ai.Context, opts ai.Options, url string, authHeaders []utils.HeaderOption) (*ai.AssistantStream, error) {
	span := observability.SpanFromContext(ctx)
	observer := observability.ObserverFromContext(ctx)

	req := requestFromContext(convo, opts)

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
		observer.Trace(ctx, "google: starting stream",
			observability.String(observability.AttrLLMModel, model.ID),
			observability.Int(observability.AttrRequestMessagesCount, len(convo.Turns)),
			observability.Int(observability.AttrRequestToolsCount, len(convo.Tools)),
		)
	}

	var headers []utils.HeaderOption
	for k, v := range model.DefaultHeaders {
		headers = append(headers, utils.HeaderOption{Key: k, Value: v})
	}
	headers = append(headers, authHeaders...)
	for k, v := range opts.Headers {
		headers = append(headers, utils.HeaderOption{Key: k, Value: v})
	}

	resp, err := utils.DoPostStream(ctx, nil, url, "", req, headers...)
	if err != nil {
		if observer != nil {
			observer.Trace(ctx, "google: stream request failed", observability.Error(err))
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
	ai.RegisterModel(ai.Model{
		ID:              "gemini-2.5-flash",
		Name:            "Gemini 2.5 Flash",
		API:             ai.APIGoogle,
		Provider:        "Google",
		Reasoning:       true,
		InputModalities: []ai.Modality{ai.ModalityText, ai.ModalityImage, ai.ModalityAudio, ai.ModalityVideo, ai.ModalityDocument},
		ContextWindow:   1_048_576,
		MaxOutputTokens: 65_536,
		Pricing: &ai.ModelPricing{
			InputCostPerMillion:       0.30,
			OutputCostPerMillion:      2.50,
			CachedInputCostPerMillion: 0.15,
			ReasoningCostPerMillion:   2.50,
		},
	})
	ai.RegisterModel(ai.Model{
		ID:              "gemini-2.5-pro",
		Name:            "Gemini 2.5 Pro",
		API:             ai.APIGoogle,
		Provider:        "Google",
		Reasoning:       true,
		InputModalities: []ai.Modality{ai.ModalityText, ai.ModalityImage, ai.ModalityAudio, ai.ModalityVideo, ai.ModalityDocument},
		ContextWindow:   1_048_576,
		MaxOutputTokens: 65_536,
		Pricing: &ai.ModelPricing{
			InputCostPerMillion:       1.25,
			OutputCostPerMillion:      10.00,
			CachedInputCostPerMillion: 0.625,
			ReasoningCostPerMillion:   10.00,
		},
	})
	ai.RegisterModel(ai.Model{
		ID:              "gemini-2.0-flash-lite",
		Name:            "Gemini 2.0 Flash Lite",
		API:             ai.APIGoogle,
		Provider:        "Google",
		InputModalities: []ai.Modality{ai.ModalityText, ai.ModalityImage, ai.ModalityAudio, ai.ModalityVideo},
		ContextWindow:   1_048_576,
		MaxOutputTokens: 8_192,
		Pricing: &ai.ModelPricing{
			InputCostPerMillion:       0.075,
			OutputCostPerMillion:      0.30,
			CachedInputCostPerMillion: 0.0375,
			ReasoningCostPerMillion:   0.30,
		},
	})
}
