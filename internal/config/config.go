package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Addr       string
	CORSOrigin string

	// Redis session storage
	RedisURL   string
	SessionTTL time.Duration

	// Document handling
	MaxDocChars    int
	MaxUploadBytes int64

	// Party detection
	MinParties int

	// LLM backend: "openai" or "gemini"
	LLMProvider   string
	LLMTimeout    time.Duration
	OpenAIBaseURL string
	OpenAIAPIKey  string
	OpenAIModel   string
	GeminiAPIKey  string
	GeminiModel   string

	// MinIO upload archive - empty endpoint disables archiving
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
}

func Load() Config {
	return Config{
		Addr:       getenv("API_ADDR", ":8788"),
		CORSOrigin: getenv("LEXSIDE_CORS_ORIGIN", "*"),

		RedisURL:   getenv("REDIS_URL", "redis://localhost:6379/0"),
		SessionTTL: time.Duration(getenvInt("LEXSIDE_SESSION_TTL_SECONDS", 3600)) * time.Second,

		MaxDocChars:    getenvInt("LEXSIDE_MAX_DOC_CHARS", 30000),
		MaxUploadBytes: int64(getenvInt("LEXSIDE_MAX_UPLOAD_BYTES", 10<<20)),

		MinParties: getenvInt("LEXSIDE_MIN_PARTIES", 2),

		LLMProvider:   getenv("LEXSIDE_LLM_PROVIDER", "openai"),
		LLMTimeout:    time.Duration(getenvInt("LEXSIDE_LLM_TIMEOUT_SECONDS", 60)) * time.Second,
		OpenAIBaseURL: getenv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIAPIKey:  getenv("OPENAI_API_KEY", ""),
		OpenAIModel:   getenv("LEXSIDE_OPENAI_MODEL", "gpt-4o-mini"),
		GeminiAPIKey:  getenv("GEMINI_API_KEY", ""),
		GeminiModel:   getenv("LEXSIDE_GEMINI_MODEL", "gemini-2.0-flash"),

		// MinIO - empty by default, archiving disabled if not configured
		MinioEndpoint:  getenv("MINIO_ENDPOINT", ""),
		MinioAccessKey: getenv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getenv("MINIO_SECRET_KEY", ""),
		MinioBucket:    getenv("MINIO_BUCKET", "lexside-uploads"),
		MinioUseSSL:    getenv("MINIO_USE_SSL", "") == "true",
	}
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
