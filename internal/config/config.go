package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Gemini AI
	GeminiAPIKey    string
	GeminiModel     string
	GenerateTimeout time.Duration

	// Document handling
	MaxDocumentChars int
	MaxUploadBytes   int64

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:             getEnvOrDefault("PORT", "3001"),
		Env:              getEnvOrDefault("ENV", "development"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiModel:      getEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash"),
		GenerateTimeout:  time.Duration(getEnvAsIntOrDefault("GEMINI_TIMEOUT_SECONDS", 25)) * time.Second,
		MaxDocumentChars: getEnvAsIntOrDefault("MAX_DOCUMENT_CHARS", 8000),
		MaxUploadBytes:   int64(getEnvAsIntOrDefault("MAX_UPLOAD_MB", 20)) << 20,
		FrontendURL:      getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
	}

	return cfg
}

// KeyDiagnostics reports superficial problems with the configured API key.
// Diagnostics are logged at startup and never include the key's value; a
// missing or odd-looking key does not prevent the server from running.
func (c *Config) KeyDiagnostics() []string {
	var warnings []string

	if c.GeminiAPIKey == "" {
		warnings = append(warnings, "GEMINI_API_KEY is not set; /chat and /ask will fail")
		return warnings
	}
	if len(c.GeminiAPIKey) < 20 {
		warnings = append(warnings, "GEMINI_API_KEY looks too short")
	}
	if !strings.HasPrefix(c.GeminiAPIKey, "AIza") {
		warnings = append(warnings, "GEMINI_API_KEY does not have the expected prefix")
	}

	return warnings
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
