package ai

import "github.com/leofalp/llmstream/core/cost"

// API identifies which vendor wire protocol a [Model] speaks. It is
// distinct from Provider (a free-form display name) because two models
// from different providers can share a wire protocol — Vertex AI speaks
// the same Gemini protocol as the public Google API, just over a
// differently authenticated endpoint.
type API string

const (
	APIGoogle    API = "google"
	APIVertex    API = "vertex"
	APIOpenAI    API = "openai"
	APIAnthropic API = "anthropic"
)

// Modality represents an input or output content type a model supports.
type Modality string

const (
	ModalityText     Modality = "text"
	ModalityImage    Modality = "image"
	ModalityAudio    Modality = "audio"
	ModalityVideo    Modality = "video"
	ModalityDocument Modality = "document"
)

// ModelPricing holds per-million-token USD rates for a model. A nil
// *ModelPricing on [Model] means pricing is unpublished (e.g. a preview
// model); Usage.Cost is then left nil rather than computed as zero.
type ModelPricing = cost.ModelCost

// Model describes a single callable model: which vendor wire protocol to
// speak, where to send requests, and what the model is capable of. Model
// values are immutable once constructed; adapters never mutate a caller's
// Model.
type Model struct {
	ID       string // canonical model identifier used in API calls, e.g. "gemini-2.5-pro"
	Name     string // human-readable display name
	API      API
	Provider string // display name, e.g. "Google", "Google Vertex", "OpenAI", "Anthropic"
	BaseURL  string

	Reasoning       bool
	InputModalities []Modality

	ContextWindow   int
	MaxOutputTokens int

	Pricing *ModelPricing

	// DefaultHeaders are merged into every request for this model before
	// adapter- or call-specific headers, letting a model registration pin
	// a required API version header without every caller repeating it.
	DefaultHeaders map[string]string
}

// Models is the cross-provider model table: provider -> model ID -> Model.
// Vendor adapter packages populate it via RegisterModel in their init()
// functions so a caller can discover models without importing every vendor
// package directly.
var Models = map[string]map[string]Model{}

// RegisterModel adds or replaces a Model entry in the shared model table,
// keyed by its Provider and ID.
func RegisterModel(m Model) {
	bucket, ok := Models[m.Provider]
	if !ok {
		bucket = map[string]Model{}
		Models[m.Provider] = bucket
	}
	bucket[m.ID] = m
}

// LookupModel returns the registered Model for provider/id, if any.
func LookupModel(provider, id string) (Model, bool) {
	bucket, ok := Models[provider]
	if !ok {
		return Model{}, false
	}
	m, ok := bucket[id]
	return m, ok
}
