package google

// Capabilities describes what the Gemini wire protocol supports. These are
// informational only; no runtime validation is performed before a request is
// sent, and an unsupported combination simply surfaces as a vendor API
// error on the stream.
type Capabilities struct {
	SupportsMultimodal        bool
	SupportsStructuredOutputs bool
	SupportsThinking          bool
	SupportsBuiltinTools      bool
	SupportsFunctionCalling   bool
	SupportsCodeExecution     bool
}

// DetectCapabilities returns the capability set for the Gemini protocol.
// Every model registered in this package shares the same wire-level
// capabilities; per-model limits (context window, output modality) live on
// ai.Model instead.
func DetectCapabilities() Capabilities {
	return Capabilities{
		SupportsMultimodal:        true,
		SupportsStructuredOutputs: true,
		SupportsThinking:          true,
		SupportsBuiltinTools:      true,
		SupportsFunctionCalling:   true,
		SupportsCodeExecution:     true,
	}
}
