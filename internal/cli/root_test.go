package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dwizi/action-server/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestVersionCommand(t *testing.T) {
	root := NewRoot(discardLogger())
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if strings.TrimSpace(out.String()) != version {
		t.Fatalf("unexpected version output: %q", out.String())
	}
}

func TestServeFailsWithoutCredential(t *testing.T) {
	t.Setenv(config.APIKeyVariable, "")
	t.Setenv("ACTION_SERVER_ENV_FILE", filepath.Join(t.TempDir(), ".env"))
	t.Setenv("ACTION_SERVER_HTTP_ADDR", "127.0.0.1:0")

	root := NewRoot(discardLogger())
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"serve"})
	err := root.Execute()
	if !errors.Is(err, config.ErrMissingCredential) {
		t.Fatalf("expected missing credential error, got %v", err)
	}
	if !strings.Contains(err.Error(), config.APIKeyVariable) {
		t.Fatalf("expected descriptive error naming the variable, got %v", err)
	}
}

func TestAskPrintsModelReply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "Hi there!"}},
			},
		})
	}))
	defer server.Close()

	t.Setenv(config.APIKeyVariable, "sk-test")
	t.Setenv("ACTION_SERVER_LLM_BASE_URL", server.URL)

	root := NewRoot(discardLogger())
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"ask", "hello"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if strings.TrimSpace(out.String()) != "Hi there!" {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestAskPrintsApologyOnFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	t.Setenv(config.APIKeyVariable, "sk-test")
	t.Setenv("ACTION_SERVER_LLM_BASE_URL", server.URL)

	root := NewRoot(discardLogger())
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"ask", "hello"})
	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out.String(), "trouble thinking") {
		t.Fatalf("expected apology, got %q", out.String())
	}
}

func TestBoundedTimeout(t *testing.T) {
	if boundedTimeout(0) != 120*time.Second {
		t.Fatal("expected default timeout")
	}
	if boundedTimeout(5000) != 600*time.Second {
		t.Fatal("expected capped timeout")
	}
}

func TestAskForwardsMessageUnchanged(t *testing.T) {
	var received string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err == nil && len(body.Messages) == 1 {
			received = body.Messages[0].Content
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "ok"}},
			},
		})
	}))
	defer server.Close()

	t.Setenv(config.APIKeyVariable, "sk-test")
	t.Setenv("ACTION_SERVER_LLM_BASE_URL", server.URL)

	root := NewRoot(discardLogger())
	root.SetOut(io.Discard)
	root.SetArgs([]string{"ask", "  hello ", "there"})
	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if received != "  hello  there" {
		t.Fatalf("expected raw message, got %q", received)
	}
}
