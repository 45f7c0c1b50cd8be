package config

import (
	"sync"
)

// GuardrailConfig lists the protected-attribute categories that must never
// reach storage. Recruiters edit this list via env, not code.
type GuardrailConfig struct {
	Categories []string
}

var (
	guardrailConfig *GuardrailConfig
	guardrailOnce   sync.Once
)

var defaultMaskedCategories = []string{
	"PERSON", "GENDER", "AGE", "DATE", "ADDRESS", "ETHNICITY",
}

func LoadGuardrailConfig() *GuardrailConfig {
	guardrailOnce.Do(func() {
		guardrailConfig = &GuardrailConfig{
			Categories: getEnvList("GUARDRAIL_CATEGORIES", defaultMaskedCategories),
		}
	})
	return guardrailConfig
}
