package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/dwizi/action-server/internal/actions"
	"github.com/dwizi/action-server/internal/config"
	"github.com/dwizi/action-server/internal/heartbeat"
)

type ActionRunner interface {
	Names() []string
	Run(ctx context.Context, name string, dispatcher actions.Dispatcher, tracker actions.Tracker, domain actions.Domain) ([]actions.Event, error)
}

type Dependencies struct {
	Config              config.Config
	Actions             ActionRunner
	Model               string
	MaxBodyBytes        int64
	Logger              *slog.Logger
	Heartbeat           *heartbeat.Registry
	HeartbeatStaleAfter time.Duration
}

type router struct {
	deps Dependencies
}

func NewRouter(deps Dependencies) http.Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	rt := &router{deps: deps}
	mux := http.NewServeMux()
	mux.HandleFunc("/health", rt.handleHealth)
	mux.HandleFunc("/healthz", rt.handleHealth)
	mux.HandleFunc("/readyz", rt.handleReady)
	mux.HandleFunc("/actions", rt.handleActions)
	mux.HandleFunc("/webhook", rt.handleWebhook)
	mux.HandleFunc("/api/v1/heartbeat", rt.handleHeartbeat)
	mux.HandleFunc("/api/v1/info", rt.handleInfo)
	return mux
}
