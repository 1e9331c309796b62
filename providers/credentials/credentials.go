// Package credentials resolves API keys for LLM providers. It is
// intentionally minimal: a thin env-var lookup, not a secrets manager.
// Callers needing keychain, vault, or managed-secret integration should
// resolve the key themselves and pass it via ai.Options.APIKey, which
// always takes precedence over this package.
package credentials

import (
	"os"
	"strings"
)

// Resolve returns the API key for provider from its conventional
// environment variable, "<PROVIDER>_API_KEY" (provider upper-cased, spaces
// replaced with underscores, e.g. "Google Vertex" -> "GOOGLE_VERTEX_API_KEY").
// Returns "" if unset.
func Resolve(provider string) string {
	return os.Getenv(envVarName(provider))
}

func envVarName(provider string) string {
	upper := strings.ToUpper(provider)
	upper = strings.ReplaceAll(upper, " ", "_")
	upper = strings.ReplaceAll(upper, "-", "_")
	return upper + "_API_KEY"
}
