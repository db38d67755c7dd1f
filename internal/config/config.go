package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr               string
	DatabaseURL        string
	Env                string
	CORSAllowedOrigins []string
	APIMaxBodyBytes    int64
	UploadMaxFileBytes int64
	FetchTimeout       time.Duration
	FetchUserAgent     string
	FetchRatePerSec    float64
	FetchBurst         int
	SupplierCacheTTL   time.Duration
	CredentialKey      [32]byte
	BlobDir            string
	ReadHeaderTimeout  time.Duration
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	RateLimitPerMin    int
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Addr:        getEnv("API_ADDR", ":8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Env:         getEnv("APP_ENV", "dev"),
		CORSAllowedOrigins: getEnvCSV("CORS_ALLOWED_ORIGINS", []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
		}),
		APIMaxBodyBytes:    int64(getEnvInt("API_MAX_BODY_MB", 2)) * 1024 * 1024,
		UploadMaxFileBytes: int64(getEnvInt("UPLOAD_MAX_FILE_MB", 25)) * 1024 * 1024,
		FetchTimeout:       time.Duration(getEnvInt("FETCH_TIMEOUT_SEC", 30)) * time.Second,
		FetchUserAgent:     getEnv("FETCH_USER_AGENT", "feedgrid-fetcher/1.0"),
		FetchRatePerSec:    getEnvFloat("FETCH_RATE_PER_SEC", 4),
		FetchBurst:         getEnvInt("FETCH_BURST", 2),
		SupplierCacheTTL:   time.Duration(getEnvInt("SUPPLIER_CACHE_TTL_SEC", 30)) * time.Second,
		BlobDir:            getEnv("BLOB_DIR", "./blobs"),
		ReadHeaderTimeout:  time.Duration(getEnvInt("API_READ_HEADER_TIMEOUT_SEC", 5)) * time.Second,
		ReadTimeout:        time.Duration(getEnvInt("API_READ_TIMEOUT_SEC", 15)) * time.Second,
		WriteTimeout:       time.Duration(getEnvInt("API_WRITE_TIMEOUT_SEC", 60)) * time.Second,
		IdleTimeout:        time.Duration(getEnvInt("API_IDLE_TIMEOUT_SEC", 60)) * time.Second,
		RateLimitPerMin:    getEnvInt("RATE_LIMIT_PER_MIN", 300),
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}

	key, err := loadCredentialKey(cfg.Env)
	if err != nil {
		return Config{}, err
	}
	cfg.CredentialKey = key

	return cfg, nil
}

// loadCredentialKey decodes the 32-byte secretbox key used to seal supplier
// basic-auth passwords at rest. A missing key is only acceptable outside prod.
func loadCredentialKey(env string) ([32]byte, error) {
	var key [32]byte
	raw := strings.TrimSpace(os.Getenv("CREDENTIAL_KEY_BASE64"))
	if raw == "" {
		if env == "prod" {
			return key, fmt.Errorf("CREDENTIAL_KEY_BASE64 is required in prod")
		}
		copy(key[:], []byte("feedgrid-dev-only-credential-key"))
		return key, nil
	}
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return key, fmt.Errorf("decode CREDENTIAL_KEY_BASE64: %w", err)
	}
	if len(decoded) != 32 {
		return key, fmt.Errorf("CREDENTIAL_KEY_BASE64 must decode to 32 bytes, got %d", len(decoded))
	}
	copy(key[:], decoded)
	return key, nil
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvCSV(key string, fallback []string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}

	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		result = append(result, trimmed)
	}
	if len(result) == 0 {
		return fallback
	}
	return result
}
