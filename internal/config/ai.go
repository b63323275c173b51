package config

import "os"

// PhrasingConfig holds settings for the hosted chat-completion API that
// rewrites templated replies into conversational ones.
type PhrasingConfig struct {
	APIKey    string `json:"-"` // Never serialize
	BaseURL   string `json:"baseUrl"`
	Model     string `json:"model"`
	TimeoutMS int    `json:"timeoutMs"`
}

// DefaultPhrasingConfig returns the default phrasing configuration.
func DefaultPhrasingConfig() *PhrasingConfig {
	return &PhrasingConfig{
		APIKey:    os.Getenv("GROQ_API_KEY"),
		BaseURL:   getEnvOrDefault("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		Model:     getEnvOrDefault("GROQ_MODEL", "llama-3.1-8b-instant"),
		TimeoutMS: 15000,
	}
}

// IsEnabled returns true if the phrasing API is configured.
func (c *PhrasingConfig) IsEnabled() bool {
	return c.APIKey != ""
}

// Endpoint returns the chat-completions endpoint.
func (c *PhrasingConfig) Endpoint() string {
	return c.BaseURL + "/chat/completions"
}
