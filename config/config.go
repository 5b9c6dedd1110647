// Package config はアプリケーション設定の読み込みを提供する。
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config はアプリケーション設定を表す。
type Config struct {
	Port               string
	DatabaseURL        string
	KMSKeyName         string
	GoogleCloudProject string
	LogLevel           string

	OtelEnabled      bool
	OtelEndpoint     string
	OtelServiceName  string
	OtelSamplingRate float64

	ClerkIssuer             string
	ClerkJWKSURL            string
	ClerkAudience           string
	ClerkAPIURL             string
	ClerkSecretKey          string
	ClerkSecretKeyEncrypted string

	OpenAIAPIKey          string
	OpenAIAPIKeyEncrypted string
	OpenAIBaseURL         string
	OpenAIModel           string
	OpenAITimeout         time.Duration

	WikipediaAccessToken          string
	WikipediaAccessTokenEncrypted string
	WikipediaBaseURL              string
	UserAgent                     string

	// UpstreamTimeout はJWKS・Clerk・Wikimediaへの呼び出しに適用する。
	UpstreamTimeout        time.Duration
	JWKSFreshness          time.Duration
	JWKSMinRefreshInterval time.Duration
}

// Load は環境変数から設定を読み込む。
func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8080"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		KMSKeyName:         os.Getenv("KMS_KEY_NAME"),
		GoogleCloudProject: os.Getenv("GOOGLE_CLOUD_PROJECT"),
		LogLevel:           getEnv("LOG_LEVEL", "INFO"),

		OtelEnabled:      getBool("OTEL_ENABLED", false),
		OtelEndpoint:     getEnv("OTEL_ENDPOINT", "localhost:4317"),
		OtelServiceName:  getEnv("OTEL_SERVICE_NAME", "flashquiz-service"),
		OtelSamplingRate: getFloat("OTEL_SAMPLING_RATE", 1.0),

		ClerkIssuer:             os.Getenv("CLERK_ISSUER"),
		ClerkJWKSURL:            os.Getenv("CLERK_JWKS_URL"),
		ClerkAudience:           getEnv("CLERK_AUDIENCE", "clerk"),
		ClerkAPIURL:             getEnv("CLERK_API_URL", "https://api.clerk.com"),
		ClerkSecretKey:          os.Getenv("CLERK_SECRET_KEY"),
		ClerkSecretKeyEncrypted: os.Getenv("CLERK_SECRET_KEY_ENCRYPTED"),

		OpenAIAPIKey:          os.Getenv("OPENAI_API_KEY"),
		OpenAIAPIKeyEncrypted: os.Getenv("OPENAI_API_KEY_ENCRYPTED"),
		OpenAIBaseURL:         getEnv("OPENAI_BASE_URL", "https://api.openai.com"),
		OpenAIModel:           getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAITimeout:         getDuration("OPENAI_TIMEOUT", 60*time.Second),

		WikipediaAccessToken:          os.Getenv("WIKIPEDIA_ACCESS_TOKEN"),
		WikipediaAccessTokenEncrypted: os.Getenv("WIKIPEDIA_ACCESS_TOKEN_ENCRYPTED"),
		WikipediaBaseURL:              getEnv("WIKIPEDIA_BASE_URL", "https://api.wikimedia.org"),
		UserAgent:                     getEnv("USER_AGENT", "flashquiz-service/1.0"),

		UpstreamTimeout:        getDuration("UPSTREAM_TIMEOUT", 10*time.Second),
		JWKSFreshness:          getDuration("JWKS_FRESHNESS", time.Hour),
		JWKSMinRefreshInterval: getDuration("JWKS_MIN_REFRESH_INTERVAL", 10*time.Second),
	}
}

// Validate はサーバー起動に必須の設定がそろっているか確認する。
// 不足している項目はまとめて返す。
func (c *Config) Validate() error {
	var missing []string
	if c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.ClerkIssuer == "" {
		missing = append(missing, "CLERK_ISSUER")
	}
	if c.ClerkJWKSURL == "" {
		missing = append(missing, "CLERK_JWKS_URL")
	}
	if c.ClerkSecretKey == "" && c.ClerkSecretKeyEncrypted == "" {
		missing = append(missing, "CLERK_SECRET_KEY")
	}
	if c.OpenAIAPIKey == "" && c.OpenAIAPIKeyEncrypted == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	if c.hasEncryptedSecrets() && c.KMSKeyName == "" {
		return errors.New("KMS_KEY_NAME is required when encrypted secrets are set")
	}
	if c.OtelEnabled && (c.OtelSamplingRate < 0 || c.OtelSamplingRate > 1) {
		return fmt.Errorf("OTEL_SAMPLING_RATE must be between 0 and 1, got %g", c.OtelSamplingRate)
	}
	return nil
}

func (c *Config) hasEncryptedSecrets() bool {
	return c.ClerkSecretKeyEncrypted != "" ||
		c.OpenAIAPIKeyEncrypted != "" ||
		c.WikipediaAccessTokenEncrypted != ""
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getBool(key string, defaultVal bool) bool {
	val, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultVal
	}
	return val
}

func getFloat(key string, defaultVal float64) float64 {
	val, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return defaultVal
	}
	return val
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	val, err := time.ParseDuration(os.Getenv(key))
	if err != nil || val <= 0 {
		return defaultVal
	}
	return val
}
