package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/dwizi/action-server/internal/llm"
)

const DefaultModel = goopenai.GPT3Dot5Turbo

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client is built once at startup and shared across invocations.
type Client struct {
	model  string
	api    *goopenai.Client
	logger *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Client {
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	clientConfig := goopenai.DefaultConfig(strings.TrimSpace(cfg.APIKey))
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(baseURL, "/")
	}
	clientConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &Client{
		model:  cfg.Model,
		api:    goopenai.NewClientWithConfig(clientConfig),
		logger: logger,
	}
}

func (c *Client) Model() string { return c.model }

// Reply sends the text as a single user turn and returns the first choice verbatim.
func (c *Client) Reply(ctx context.Context, input llm.MessageInput) (string, error) {
	response, err := c.api.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: c.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: input.Text},
		},
	})
	if err != nil {
		var apiErr *goopenai.APIError
		if errors.As(err, &apiErr) {
			c.logger.Error("openai chat completion failed", "status", apiErr.HTTPStatusCode, "type", apiErr.Type, "message", apiErr.Message)
		}
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("%w: openai response returned no choices", llm.ErrUnavailable)
	}
	return response.Choices[0].Message.Content, nil
}
