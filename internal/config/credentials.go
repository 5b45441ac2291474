package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// APIKeyVariable names the credential in the process environment and in env files.
const APIKeyVariable = "OPENAI_API_KEY"

var (
	ErrMissingCredential     = errors.New("credential not set")
	ErrPlaceholderCredential = errors.New("credential is a placeholder")
)

var placeholderMarkers = []string{
	"your_openai_api_key",
	"your-openai-api-key",
	"your_api_key",
	"your-api-key",
	"sk-...",
	"sk-xxxx",
	"changeme",
}

// CredentialSource looks up a single named secret.
type CredentialSource interface {
	Name() string
	Lookup(key string) (string, bool, error)
}

type EnvSource struct{}

func (EnvSource) Name() string { return "environment" }

func (EnvSource) Lookup(key string) (string, bool, error) {
	value, ok := os.LookupEnv(key)
	return value, ok, nil
}

// FileSource reads a dotenv file without touching the process environment.
type FileSource struct {
	Path string
	// Optional makes a missing file behave like an empty one.
	Optional bool
}

func (s FileSource) Name() string { return "env file " + s.Path }

func (s FileSource) Lookup(key string) (string, bool, error) {
	values, err := godotenv.Read(s.Path)
	if err != nil {
		if s.Optional && errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read env file %s: %w", s.Path, err)
	}
	value, ok := values[key]
	return value, ok, nil
}

// ChainSource returns the first non-blank value across its sources.
type ChainSource []CredentialSource

func (c ChainSource) Name() string {
	names := make([]string, 0, len(c))
	for _, source := range c {
		names = append(names, source.Name())
	}
	return strings.Join(names, ", ")
}

func (c ChainSource) Lookup(key string) (string, bool, error) {
	for _, source := range c {
		value, ok, err := source.Lookup(key)
		if err != nil {
			return "", false, err
		}
		if ok && strings.TrimSpace(value) != "" {
			return value, true, nil
		}
	}
	return "", false, nil
}

// NewCredentialSource maps the configured source mode to a CredentialSource.
func NewCredentialSource(cfg Config) (CredentialSource, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.CredentialSource)) {
	case CredentialSourceEnv:
		return EnvSource{}, nil
	case CredentialSourceDotenv:
		return FileSource{Path: cfg.EnvFile}, nil
	case CredentialSourceAuto, "":
		return ChainSource{EnvSource{}, FileSource{Path: cfg.EnvFile, Optional: true}}, nil
	default:
		return nil, fmt.Errorf("unknown credential source %q", cfg.CredentialSource)
	}
}

// ResolveAPIKey returns the API key or a descriptive startup error.
func ResolveAPIKey(source CredentialSource) (string, error) {
	if source == nil {
		return "", fmt.Errorf("%w: no credential source configured", ErrMissingCredential)
	}
	value, ok, err := source.Lookup(APIKeyVariable)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrMissingCredential, APIKeyVariable, err)
	}
	value = strings.TrimSpace(value)
	if !ok || value == "" {
		return "", fmt.Errorf("%w: %s is not set in %s; set it before starting the action server", ErrMissingCredential, APIKeyVariable, source.Name())
	}
	if IsPlaceholder(value) {
		return "", fmt.Errorf("%w: %s in %s still holds placeholder text; replace it with a real key", ErrPlaceholderCredential, APIKeyVariable, source.Name())
	}
	return value, nil
}

func IsPlaceholder(value string) bool {
	lower := strings.ToLower(strings.TrimSpace(value))
	if strings.HasPrefix(lower, "<") && strings.HasSuffix(lower, ">") {
		return true
	}
	for _, marker := range placeholderMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
