package factory

import (
	"fmt"

	"biz-assistant-be/pkg/classifier"
	"biz-assistant-be/pkg/classifier/ollama"
	"biz-assistant-be/pkg/classifier/openai"
)

func NewProvider(providerType, modelName, baseURL, apiKey string) (classifier.Provider, error) {
	switch providerType {
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	case "openai":
		if baseURL == "" {
			baseURL = "https://api.openai.com/v1"
		}
		return openai.NewOpenAIProvider(baseURL, apiKey, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported classifier provider: %s", providerType)
	}
}
