// Package llm abstracts the text-generation services used for report
// narratives.
package llm

import (
	"context"
	"log"
	"strings"
)

// Provider is the interface for LLM providers.
type Provider interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
	IsConfigured() bool
}

// CreateProvider creates an LLM provider based on configuration.
// It returns nil when no provider has a usable credential; callers must
// treat nil as "analysis disabled", never as an error.
func CreateProvider(provider, model, apiKeyEnv, openaiModel, openaiAPIKeyEnv string) Provider {
	if strings.ToLower(provider) == "gemini" {
		p := NewGeminiProvider(model, apiKeyEnv)
		if p.IsConfigured() {
			log.Printf("Using Gemini with model: %s", model)
			return p
		}
		log.Printf("Gemini key (%s) not set, trying OpenAI fallback...", apiKeyEnv)
	}

	p := NewOpenAIProvider(openaiModel, openaiAPIKeyEnv)
	if p.IsConfigured() {
		log.Printf("Using OpenAI with model: %s", openaiModel)
		return p
	}

	log.Println("No narrative provider configured; reports will use fallback text.")
	return nil
}
