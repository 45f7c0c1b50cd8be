package config

import (
	"sync"
	"time"
)

type GeminiConfig struct {
	APIKey         string
	EmbedModel     string
	GenerateModel  string
	MaxRetries     int
	RequestTimeout time.Duration
}

var (
	geminiConfig *GeminiConfig
	geminiOnce   sync.Once
)

func LoadGeminiConfig() *GeminiConfig {
	geminiOnce.Do(func() {
		geminiConfig = &GeminiConfig{
			APIKey:         getEnv("GEMINI_API_KEY", ""),
			EmbedModel:     getEnv("GEMINI_EMBED_MODEL", "gemini-embedding-001"),
			GenerateModel:  getEnv("GEMINI_GENERATE_MODEL", "gemini-2.5-flash"),
			MaxRetries:     getEnvInt("GEMINI_MAX_RETRIES", 3),
			RequestTimeout: getEnvDuration("GEMINI_REQUEST_TIMEOUT", 90*time.Second),
		}
	})
	return geminiConfig
}
