package llm

import (
	"context"
	"errors"
)

var ErrUnavailable = errors.New("llm unavailable")

type MessageInput struct {
	Text string
}

type Responder interface {
	Reply(ctx context.Context, input MessageInput) (string, error)
}
