package config

import (
	"sync"
)

// LexiconConfig locates the controlled skills vocabulary (one skill per CSV
// row, ESCO-style). An empty path falls back to the built-in starter set.
type LexiconConfig struct {
	Path string
}

var (
	lexiconConfig *LexiconConfig
	lexiconOnce   sync.Once
)

func LoadLexiconConfig() *LexiconConfig {
	lexiconOnce.Do(func() {
		lexiconConfig = &LexiconConfig{
			Path: getEnv("SKILLS_LEXICON_PATH", ""),
		}
	})
	return lexiconConfig
}
