// Package llm provides model configuration and client abstractions for the
// parsing and generation collaborators.
package llm

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for simple tasks: classification, short extraction
	TierLite ModelTier = "lite"
	// TierStandard is for structured output: resume and job parsing
	TierStandard ModelTier = "standard"
	// TierAdvanced is for generation: project ideas, profile rewriting
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM backend
type Provider string

const (
	// ProviderGemini is the Gemini API (AI Studio key)
	ProviderGemini Provider = "gemini"
	// ProviderVertex is Gemini served through Vertex AI
	ProviderVertex Provider = "vertex"
)

// Config holds the model configuration used to build a client.
// A Config is a value: clients are constructed from it per call.
type Config struct {
	Provider    Provider
	Models      map[ModelTier]string
	Temperature float32
	// Project and Location are used by ProviderVertex only.
	Project  string
	Location string
}

// DefaultConfig returns the default configuration (Gemini, deterministic sampling)
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		Temperature: 0.0,
	}
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}

// WithModel returns a copy of the Config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	next := c.clone()
	next.Models[tier] = model
	return next
}

// WithTemperature returns a copy of the Config with a different temperature
func (c *Config) WithTemperature(t float32) *Config {
	next := c.clone()
	next.Temperature = t
	return next
}

func (c *Config) clone() *Config {
	next := *c
	next.Models = make(map[ModelTier]string, len(c.Models))
	for k, v := range c.Models {
		next.Models[k] = v
	}
	return &next
}
