package credentials

import "testing"

func TestResolveReadsConventionalEnvVar(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "secret-123")
	if got := Resolve("Google"); got != "secret-123" {
		t.Fatalf("Resolve(Google) = %q, want secret-123", got)
	}
}

func TestResolveNormalizesProviderName(t *testing.T) {
	t.Setenv("GOOGLE_VERTEX_API_KEY", "vertex-secret")
	if got := Resolve("Google Vertex"); got != "vertex-secret" {
		t.Fatalf("Resolve(Google Vertex) = %q, want vertex-secret", got)
	}
}

func TestResolveUnsetReturnsEmpty(t *testing.T) {
	if got := Resolve("NoSuchProvider"); got != "" {
		t.Fatalf("Resolve(NoSuchProvider) = %q, want empty", got)
	}
}
