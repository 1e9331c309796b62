package ai

import (
	"fmt"
	"sync/atomic"
	"time"
)

// ToolCallIDSynthesizer manufactures a tool-call ID in the shape
// "<name>_<unix-ms>_<seq>" for vendors whose SSE payloads omit or collide
// on tool-call identifiers. Seq is a per-synthesizer monotonic counter so
// IDs stay unique even when two calls land in the same millisecond;
// KnownIDs additionally resolves the has-an-ID-but-it-collided case by
// tracking every ID (vendor-supplied or synthesized) observed so far in
// the response.
type ToolCallIDSynthesizer struct {
	counter  atomic.Int64
	knownIDs map[string]struct{}
}

// NewToolCallIDSynthesizer returns a synthesizer scoped to a single
// response. Vendor-supplied IDs observed via Observe are tracked so a
// later synthesized ID never collides with one the vendor already gave.
func NewToolCallIDSynthesizer() *ToolCallIDSynthesizer {
	return &ToolCallIDSynthesizer{knownIDs: map[string]struct{}{}}
}

// Observe records a vendor-supplied ID as already in use.
func (s *ToolCallIDSynthesizer) Observe(id string) {
	if id != "" {
		s.knownIDs[id] = struct{}{}
	}
}

// Resolve returns vendorID unchanged if it is non-empty and has not already
// been observed (i.e. it's not a duplicate); otherwise it synthesizes and
// records a fresh ID.
func (s *ToolCallIDSynthesizer) Resolve(name, vendorID string) string {
	if vendorID != "" {
		if _, dup := s.knownIDs[vendorID]; !dup {
			s.knownIDs[vendorID] = struct{}{}
			return vendorID
		}
	}

	for {
		candidate := s.synthesize(name)
		if _, dup := s.knownIDs[candidate]; !dup {
			s.knownIDs[candidate] = struct{}{}
			return candidate
		}
	}
}

func (s *ToolCallIDSynthesizer) synthesize(name string) string {
	seq := s.counter.Add(1)
	return fmt.Sprintf("%s_%d_%d", name, time.Now().UnixMilli(), seq)
}
