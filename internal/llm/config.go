// Package llm wraps the text generation provider used for match letters.
package llm

// ModelTier selects how capable (and how expensive) a model should be
type ModelTier string

const (
	// TierLite is for short, templated writing such as match letters
	TierLite ModelTier = "lite"
	// TierStandard is for longer free-form writing
	TierStandard ModelTier = "standard"
)

// DefaultTemperature keeps letters close to the prompt while avoiding identical phrasing
const DefaultTemperature float32 = 0.4

// Config holds the model configuration for letter generation
type Config struct {
	Models      map[ModelTier]string
	Temperature float32
	// MaxOutputTokens bounds the letter length; 0 leaves the provider default
	MaxOutputTokens int32
}

// DefaultConfig returns the default Gemini configuration
func DefaultConfig() *Config {
	return &Config{
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
		},
		Temperature:     DefaultTemperature,
		MaxOutputTokens: 512,
	}
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}

// WithModel returns a copy of the config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := &Config{
		Models:          make(map[ModelTier]string, len(c.Models)+1),
		Temperature:     c.Temperature,
		MaxOutputTokens: c.MaxOutputTokens,
	}
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	newConfig.Models[tier] = model
	return newConfig
}
