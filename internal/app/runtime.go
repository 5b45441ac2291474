package app

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dwizi/action-server/internal/actions"
	"github.com/dwizi/action-server/internal/actions/fallback"
	"github.com/dwizi/action-server/internal/config"
	"github.com/dwizi/action-server/internal/heartbeat"
	"github.com/dwizi/action-server/internal/httpapi"
	"github.com/dwizi/action-server/internal/llm"
	"github.com/dwizi/action-server/internal/llm/openai"
)

type Runtime struct {
	cfg              config.Config
	logger           *slog.Logger
	actions          *actions.Registry
	heartbeat        *heartbeat.Registry
	heartbeatMonitor *heartbeat.Monitor
	httpServer       *http.Server
}

// New fails before anything is registered when the credential is missing or a placeholder.
func New(cfg config.Config, logger *slog.Logger) (*Runtime, error) {
	if logger == nil {
		logger = slog.Default()
	}
	responder, model, err := NewResponder(cfg, logger)
	if err != nil {
		return nil, err
	}
	return newRuntime(cfg, logger, responder, model), nil
}

// NewResponder resolves the API key and builds the shared chat-completion client.
func NewResponder(cfg config.Config, logger *slog.Logger) (llm.Responder, string, error) {
	source, err := config.NewCredentialSource(cfg)
	if err != nil {
		return nil, "", fmt.Errorf("configure credential source: %w", err)
	}
	apiKey, err := config.ResolveAPIKey(source)
	if err != nil {
		return nil, "", fmt.Errorf("startup aborted: %w", err)
	}
	client := openai.New(openai.Config{
		APIKey:  apiKey,
		BaseURL: cfg.LLMBaseURL,
		Model:   cfg.LLMModel,
		Timeout: time.Duration(cfg.LLMTimeoutSec) * time.Second,
	}, logger.With("component", "llm-openai"))
	return client, client.Model(), nil
}

func newRuntime(cfg config.Config, logger *slog.Logger, responder llm.Responder, model string) *Runtime {
	heartbeatRegistry := heartbeat.NewRegistry()
	staleAfter := time.Duration(cfg.HeartbeatStaleSec) * time.Second
	registry := actions.NewRegistry(
		fallback.New(responder, logger.With("component", "action-fallback"), heartbeatRegistry),
	)
	router := httpapi.NewRouter(httpapi.Dependencies{
		Config:              cfg,
		Actions:             registry,
		Model:               model,
		MaxBodyBytes:        int64(cfg.WebhookMaxBodyBytes),
		Logger:              logger.With("component", "api"),
		Heartbeat:           heartbeatRegistry,
		HeartbeatStaleAfter: staleAfter,
	})

	return &Runtime{
		cfg:       cfg,
		logger:    logger,
		actions:   registry,
		heartbeat: heartbeatRegistry,
		heartbeatMonitor: heartbeat.NewMonitor(heartbeatRegistry, heartbeat.MonitorConfig{
			Interval:   time.Duration(cfg.HeartbeatIntervalSec) * time.Second,
			StaleAfter: staleAfter,
			Logger:     logger.With("component", "heartbeat"),
		}),
		httpServer: &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func (r *Runtime) Actions() *actions.Registry {
	return r.actions
}
