// Package vertex implements the ai.AdapterFunc contract for Gemini models
// served through Vertex AI's project/location-scoped endpoint. It speaks
// the same generateContent wire protocol as providers/ai/google and reuses
// that package's request builder and streaming state machine by
// composition; the only thing this package owns is how the endpoint URL is
// built and how the Bearer token is resolved.
package vertex

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/leofalp/llmstream/internal/utils"
	"github.com/leofalp/llmstream/providers/ai"
	"github.com/leofalp/llmstream/providers/ai/google"
)

const defaultLocation = "us-central1"

func init() {
	ai.RegisterBuiltin(func(r *ai.Registry) {
		r.Register(ai.APIVertex, Stream, nil, "built-in")
	})
	registerModels()
}

// Stream implements ai.AdapterFunc for ai.APIVertex. The project and
// location come from environment variables (see resolveProject and
// resolveLocation), not from
// the Options.APIKey credential-resolution path: Vertex authenticates with
// a Google OAuth access token, not a vendor API key.
func Stream(ctx context.Context, model ai.Model, convo ai.Context, opts ai.Options) (*ai.AssistantStream, error) {
	project, ok := resolveProject()
	if !ok {
		return nil, &ai.StreamError{Kind: ai.ErrorMissingProject, Cause: fmt.Errorf("vertex: no project resolved (set GOOGLE_CLOUD_PROJECT or GCLOUD_PROJECT)")}
	}

	location := resolveLocation()

	token, err := resolveToken(ctx, opts)
	if err != nil {
		return nil, &ai.StreamError{Kind: ai.ErrorMissingToken, Cause: err}
	}

	baseURL := model.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s-aiplatform.googleapis.com/v1", location)
	}
	url := fmt.Sprintf("%s/projects/%s/locations/%s/publishers/google/models/%s:streamGenerateContent?alt=sse",
		baseURL, project, location, model.ID)

	return google.StreamWithEndpoint(ctx, model, convo, opts, url, []utils.HeaderOption{{Key: "Authorization", Value: "Bearer " + token}})
}

// resolveProject reads the Vertex project ID from the conventional
// environment variables, preferring GOOGLE_CLOUD_PROJECT.
func resolveProject() (string, bool) {
	if v := os.Getenv("GOOGLE_CLOUD_PROJECT"); v != "" {
		return v, true
	}
	if v := os.Getenv("GCLOUD_PROJECT"); v != "" {
		return v, true
	}
	return "", false
}

// resolveLocation reads the Vertex region, defaulting to us-central1 when
// unset — Vertex requires a location but most callers never need one other
// than their default region.
func resolveLocation() string {
	if v := os.Getenv("GOOGLE_CLOUD_LOCATION"); v != "" {
		return v
	}
	return defaultLocation
}

// resolveToken resolves a Vertex OAuth access token: an explicit per-call
// override (opts.APIKey, so Stream's shared signature still works), then
// one of three conventional environment variables, then a best-effort
// shell-out to the gcloud CLI's application-default credential helper.
// Internals of OAuth token refresh/caching are out of scope for this
// library; a caller that needs that should resolve a token itself and pass
// it via opts.APIKey.
func resolveToken(ctx context.Context, opts ai.Options) (string, error) {
	if opts.APIKey != "" {
		return opts.APIKey, nil
	}
	for _, name := range []string{"GOOGLE_ACCESS_TOKEN", "GCLOUD_ACCESS_TOKEN", "GOOGLE_OAUTH_ACCESS_TOKEN"} {
		if v := os.Getenv(name); v != "" {
			return v, nil
		}
	}
	return printAccessTokenViaGcloud(ctx)
}

func printAccessTokenViaGcloud(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, "/usr/bin/env", "gcloud", "auth", "application-default", "print-access-token")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("vertex: no access token in environment and gcloud fallback failed: %w (%s)", err, strings.TrimSpace(stderr.String()))
	}

	token := strings.TrimSpace(stdout.String())
	if token == "" {
		return "", fmt.Errorf("vertex: gcloud print-access-token returned an empty token")
	}
	return token, nil
}

func registerModels() {
	for _, m := range []ai.Model{
		{ID: "gemini-2.5-flash", Name: "Gemini 2.5 Flash (Vertex)", Reasoning: true, ContextWindow: 1_048_576, MaxOutputTokens: 65_536},
		{ID: "gemini-2.5-pro", Name: "Gemini 2.5 Pro (Vertex)", Reasoning: true, ContextWindow: 1_048_576, MaxOutputTokens: 65_536},
	} {
		m.API = ai.APIVertex
		m.Provider = "Google Vertex"
		m.InputModalities = []ai.Modality{ai.ModalityText, ai.ModalityImage, ai.ModalityAudio, ai.ModalityVideo, ai.ModalityDocument}
		ai.RegisterModel(m)
	}
}
