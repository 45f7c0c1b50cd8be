package config

import (
	"sync"
	"time"
)

// SearchConfig tunes the hybrid ranking. The coverage/similarity split is a
// tunable with an equal default; weights are normalized at load so partial
// overrides keep the score in [0,1].
type SearchConfig struct {
	CoverageWeight    float64
	SimilarityWeight  float64
	DefaultTopK       int
	MaxTopK           int
	GenerationTimeout time.Duration
}

var (
	searchConfig *SearchConfig
	searchOnce   sync.Once
)

func LoadSearchConfig() *SearchConfig {
	searchOnce.Do(func() {
		cov := getEnvFloat("SEARCH_COVERAGE_WEIGHT", 0.5)
		sim := getEnvFloat("SEARCH_SIMILARITY_WEIGHT", 0.5)
		if cov < 0 {
			cov = 0
		}
		if sim < 0 {
			sim = 0
		}
		if cov == 0 && sim == 0 {
			cov, sim = 0.5, 0.5
		}
		total := cov + sim
		searchConfig = &SearchConfig{
			CoverageWeight:    cov / total,
			SimilarityWeight:  sim / total,
			DefaultTopK:       getEnvInt("SEARCH_DEFAULT_TOP_K", 5),
			MaxTopK:           getEnvInt("SEARCH_MAX_TOP_K", 100),
			GenerationTimeout: getEnvDuration("SEARCH_GENERATION_TIMEOUT", 45*time.Second),
		}
	})
	return searchConfig
}
