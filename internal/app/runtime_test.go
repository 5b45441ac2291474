package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dwizi/action-server/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewFailsWithoutCredential(t *testing.T) {
	t.Setenv(config.APIKeyVariable, "")
	cfg := config.Config{CredentialSource: config.CredentialSourceAuto, EnvFile: filepath.Join(t.TempDir(), ".env")}

	runtime, err := New(cfg, discardLogger())
	if !errors.Is(err, config.ErrMissingCredential) {
		t.Fatalf("expected missing credential error, got %v", err)
	}
	if runtime != nil {
		t.Fatal("expected no runtime when credential is missing")
	}
}

func TestNewFailsWithPlaceholderCredential(t *testing.T) {
	t.Setenv(config.APIKeyVariable, "")
	envFile := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(envFile, []byte("OPENAI_API_KEY=\"your-api-key-here\"\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	cfg := config.Config{CredentialSource: config.CredentialSourceDotenv, EnvFile: envFile}

	_, err := New(cfg, discardLogger())
	if !errors.Is(err, config.ErrPlaceholderCredential) {
		t.Fatalf("expected placeholder error, got %v", err)
	}
}

func TestRuntimeServesFallbackAgainstChatCompletionAPI(t *testing.T) {
	llmServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "Hi there!"}},
			},
		})
	}))
	defer llmServer.Close()

	t.Setenv(config.APIKeyVariable, "sk-test")
	cfg := config.Config{
		CredentialSource:     config.CredentialSourceEnv,
		LLMBaseURL:           llmServer.URL,
		LLMModel:             "gpt-3.5-turbo",
		LLMTimeoutSec:        5,
		HeartbeatIntervalSec: 1,
	}
	runtime, err := New(cfg, discardLogger())
	if err != nil {
		t.Fatalf("new runtime: %v", err)
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- runtime.Serve(ctx, listener)
	}()

	body, _ := json.Marshal(map[string]any{
		"next_action": "action_fallback_gpt",
		"tracker": map[string]any{
			"sender_id":      "user-1",
			"latest_message": map[string]any{"text": "hello"},
		},
		"domain": map[string]any{},
	})
	res, err := http.Post("http://"+listener.Addr().String()+"/webhook", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post webhook: %v", err)
	}
	defer res.Body.Close()

	var out struct {
		Events    []map[string]any `json:"events"`
		Responses []struct {
			Text string `json:"text"`
		} `json:"responses"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(out.Responses) != 1 || out.Responses[0].Text != "Hi there!" {
		t.Fatalf("unexpected responses: %+v", out.Responses)
	}
	if len(out.Events) != 0 {
		t.Fatalf("expected no events, got %+v", out.Events)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("runtime did not stop")
	}
}
