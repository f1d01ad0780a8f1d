package gemini

import "time"

// Config holds the configuration for the Gemini provider.
type Config struct {
	// APIKey authenticates requests to the Generative Language API.
	APIKey string
	// BaseURL is the API root. Overridden in tests to point at a stub server.
	BaseURL string
	// PrimaryModel is tried first on every call.
	PrimaryModel string
	// FallbackModel is tried once if the primary model is reported missing.
	FallbackModel string
	// Timeout bounds each provider HTTP call. The provider itself imposes no
	// cap, so without this a request could hang indefinitely.
	Timeout time.Duration
}

// DefaultConfig provides the production settings.
func DefaultConfig(apiKey string) Config {
	return Config{
		APIKey:        apiKey,
		BaseURL:       "https://generativelanguage.googleapis.com",
		PrimaryModel:  "gemini-1.5-pro",
		FallbackModel: "gemini-pro",
		Timeout:       60 * time.Second,
	}
}
