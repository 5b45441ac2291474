package config

import (
	"os"
	"strconv"
	"strings"
)

const (
	CredentialSourceEnv    = "env"
	CredentialSourceDotenv = "dotenv"
	CredentialSourceAuto   = "auto"
)

type Config struct {
	Environment string
	HTTPAddr    string

	WebhookMaxBodyBytes int

	CredentialSource string // env | dotenv | auto
	EnvFile          string

	LLMBaseURL    string
	LLMModel      string
	LLMTimeoutSec int

	HeartbeatIntervalSec int
	HeartbeatStaleSec    int
}

func FromEnv() Config {
	return Config{
		Environment: stringOrDefault("ACTION_SERVER_ENV", "development"),
		HTTPAddr:    stringOrDefault("ACTION_SERVER_HTTP_ADDR", ":5055"),

		WebhookMaxBodyBytes: intOrDefault("ACTION_SERVER_WEBHOOK_MAX_BODY_BYTES", 64<<20),

		CredentialSource: credentialSourceOrDefault("ACTION_SERVER_CREDENTIAL_SOURCE", CredentialSourceAuto),
		EnvFile:          stringOrDefault("ACTION_SERVER_ENV_FILE", ".env"),

		LLMBaseURL:    stringOrDefault("ACTION_SERVER_LLM_BASE_URL", "https://api.openai.com/v1"),
		LLMModel:      stringOrDefault("ACTION_SERVER_LLM_MODEL", "gpt-3.5-turbo"),
		LLMTimeoutSec: intOrDefault("ACTION_SERVER_LLM_TIMEOUT_SECONDS", 60),

		HeartbeatIntervalSec: intOrDefault("ACTION_SERVER_HEARTBEAT_INTERVAL_SECONDS", 30),
		HeartbeatStaleSec:    intOrDefault("ACTION_SERVER_HEARTBEAT_STALE_SECONDS", 120),
	}
}

func stringOrDefault(name, fallback string) string {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	return value
}

func intOrDefault(name string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 1 {
		return fallback
	}
	return parsed
}

func credentialSourceOrDefault(name, fallback string) string {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(name)))
	switch value {
	case CredentialSourceEnv, CredentialSourceDotenv, CredentialSourceAuto:
		return value
	default:
		return fallback
	}
}
