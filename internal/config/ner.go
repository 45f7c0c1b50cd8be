package config

import (
	"sync"
	"time"
)

// NERConfig points at the entity-recognition backend used by the guardrail
// masker. Any service answering POST {base_url}/detect with a span list works.
type NERConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
}

var (
	nerConfig *NERConfig
	nerOnce   sync.Once
)

func LoadNERConfig() *NERConfig {
	nerOnce.Do(func() {
		nerConfig = &NERConfig{
			BaseURL:        getEnv("NER_BASE_URL", "http://localhost:8081"),
			RequestTimeout: getEnvDuration("NER_REQUEST_TIMEOUT", 30*time.Second),
		}
	})
	return nerConfig
}
