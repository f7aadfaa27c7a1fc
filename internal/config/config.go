package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds application configuration values loaded from environment variables.
type Config struct {
	HTTPPort string

	// Memory store
	MemoryBackend  string // "weaviate" or "inmem"
	WeaviateHost   string
	WeaviateScheme string

	// Provider credentials and models. Read once at process start; a provider
	// with an empty key is simply not registered.
	OpenAIAPIKey string
	OpenAIModel  string
	GeminiAPIKey string
	GeminiModel  string

	// RetrievalK is the number of prior messages fetched as context per turn.
	RetrievalK int

	// TurnTimeout bounds one full chat turn (retrieval, generation, persistence).
	TurnTimeout time.Duration

	CORSAllowedOrigins []string
}

// LoadConfig loads configuration from environment variables.
// It looks for a .env file first, then checks actual environment variables.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Could not load .env file, using environment variables only")
	}

	cfg := &Config{
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		MemoryBackend:  getEnv("MEMORY_BACKEND", "weaviate"),
		WeaviateHost:   getEnv("WEAVIATE_HOST", "localhost:8081"),
		WeaviateScheme: getEnv("WEAVIATE_SCHEME", "http"),
		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:    getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
		GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
		GeminiModel:    getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		RetrievalK:     getEnvInt("RETRIEVAL_K", 3),
		TurnTimeout:    time.Duration(getEnvInt("TURN_TIMEOUT_SECONDS", 120)) * time.Second,
	}

	origins := getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	log.Info().
		Str("port", cfg.HTTPPort).
		Str("memory_backend", cfg.MemoryBackend).
		Int("retrieval_k", cfg.RetrievalK).
		Dur("turn_timeout", cfg.TurnTimeout).
		Bool("openai_configured", cfg.OpenAIAPIKey != "").
		Bool("gemini_configured", cfg.GeminiAPIKey != "").
		Msg("Configuration loaded")

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable or returns a default value.
func getEnvInt(key string, fallback int) int {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		log.Warn().Str("key", key).Str("value", raw).Int("fallback", fallback).
			Msg("Invalid integer env variable, using default")
		return fallback
	}
	return value
}
