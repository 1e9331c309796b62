package openai

import "github.com/leofalp/llmstream/providers/ai"

func registerModels() {
	for _, m := range []ai.Model{
		{ID: "gpt-5", Name: "GPT-5", Reasoning: true, ContextWindow: 400_000, MaxOutputTokens: 128_000,
			Pricing: &ai.ModelPricing{InputCostPerMillion: 1.25, OutputCostPerMillion: 10.00, CachedInputCostPerMillion: 0.125}},
		{ID: "gpt-5-mini", Name: "GPT-5 Mini", Reasoning: true, ContextWindow: 400_000, MaxOutputTokens: 128_000,
			Pricing: &ai.ModelPricing{InputCostPerMillion: 0.25, OutputCostPerMillion: 2.00, CachedInputCostPerMillion: 0.025}},
		{ID: "gpt-4.1", Name: "GPT-4.1", ContextWindow: 1_047_576, MaxOutputTokens: 32_768,
			Pricing: &ai.ModelPricing{InputCostPerMillion: 2.00, OutputCostPerMillion: 8.00, CachedInputCostPerMillion: 0.50}},
		{ID: "o4-mini", Name: "o4-mini", Reasoning: true, ContextWindow: 200_000, MaxOutputTokens: 100_000,
			Pricing: &ai.ModelPricing{InputCostPerMillion: 1.10, OutputCostPerMillion: 4.40, CachedInputCostPerMillion: 0.275}},
		{ID: "gpt-5.1", Name: "GPT-5.1", Reasoning: true, ContextWindow: 400_000, MaxOutputTokens: 128_000,
			Pricing: &ai.ModelPricing{InputCostPerMillion: 1.25, OutputCostPerMillion: 10.00, CachedInputCostPerMillion: 0.125}},
		{ID: "gpt-5.1-codex-mini", Name: "GPT-5.1 Codex Mini", Reasoning: true, ContextWindow: 400_000, MaxOutputTokens: 128_000,
			Pricing: &ai.ModelPricing{InputCostPerMillion: 0.25, OutputCostPerMillion: 2.00, CachedInputCostPerMillion: 0.025}},
		{ID: "gpt-5.2-codex", Name: "GPT-5.2 Codex", Reasoning: true, ContextWindow: 400_000, MaxOutputTokens: 128_000,
			Pricing: &ai.ModelPricing{InputCostPerMillion: 1.25, OutputCostPerMillion: 10.00, CachedInputCostPerMillion: 0.125}},
		{ID: "gpt-5.3-codex", Name: "GPT-5.3 Codex", Reasoning: true, ContextWindow: 400_000, MaxOutputTokens: 128_000,
			Pricing: &ai.ModelPricing{InputCostPerMillion: 1.25, OutputCostPerMillion: 10.00, CachedInputCostPerMillion: 0.125}},
	} {
		m.API = ai.APIOpenAI
		m.Provider = "OpenAI"
		m.InputModalities = []ai.Modality{ai.ModalityText, ai.ModalityImage}
		ai.RegisterModel(m)
	}
}
