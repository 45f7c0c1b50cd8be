package config

import (
	"log"
	"sync"
)

type AppConfig struct {
	Name        string
	Env         string
	Port        string
	MetricsPort string
	BaseURL     string
	LogJSON     bool
	Debug       bool
}

var (
	appConfig *AppConfig
	appOnce   sync.Once
)

func LoadAppConfig() *AppConfig {
	appOnce.Do(func() {
		env := getEnv("APP_ENV", "")
		if env == "" {
			env = "development"
			log.Printf("Warning: APP_ENV not set, defaulting to %s", env)
		}
		appConfig = &AppConfig{
			Name:        getEnv("APP_NAME", "talent-graph"),
			Env:         env,
			Port:        getEnv("APP_PORT", ":3000"),
			MetricsPort: getEnv("METRICS_PORT", ":9091"),
			BaseURL:     getEnv("APP_URL", ""),
			LogJSON:     getEnvBool("LOG_JSON", env == "production"),
			Debug:       getEnvBool("APP_DEBUG", env != "production"),
		}
	})
	return appConfig
}
