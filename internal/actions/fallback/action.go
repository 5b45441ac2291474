// Package fallback relays unmatched user input to a chat-completion model.
package fallback

import (
	"context"
	"log/slog"

	"github.com/dwizi/action-server/internal/actions"
	"github.com/dwizi/action-server/internal/heartbeat"
	"github.com/dwizi/action-server/internal/llm"
)

const (
	Name           = "action_fallback_gpt"
	ApologyMessage = "I'm sorry, I seem to be having trouble thinking right now. Please try again in a moment."

	healthComponent = "llm"
)

type Action struct {
	responder llm.Responder
	logger    *slog.Logger
	reporter  heartbeat.Reporter
}

// New takes the shared responder built at startup. reporter may be nil.
func New(responder llm.Responder, logger *slog.Logger, reporter heartbeat.Reporter) *Action {
	if logger == nil {
		logger = slog.Default()
	}
	return &Action{
		responder: responder,
		logger:    logger,
		reporter:  reporter,
	}
}

func (a *Action) Name() string {
	return Name
}

// Run utters exactly one message and never fails: any responder error is
// logged and replaced by ApologyMessage.
func (a *Action) Run(ctx context.Context, dispatcher actions.Dispatcher, tracker actions.Tracker, domain actions.Domain) ([]actions.Event, error) {
	text, _ := tracker.LatestText()

	reply, err := a.reply(ctx, text)
	if err != nil {
		a.logger.Error("fallback chat completion failed", "action", Name, "sender_id", tracker.SenderID, "error", err)
		if a.reporter != nil {
			a.reporter.Degrade(healthComponent, "chat completion failed", err)
		}
		dispatcher.UtterMessage(actions.Message{Text: ApologyMessage})
		return []actions.Event{}, nil
	}

	if a.reporter != nil {
		a.reporter.Beat(healthComponent, "reply relayed")
	}
	dispatcher.UtterMessage(actions.Message{Text: reply})
	return []actions.Event{}, nil
}

func (a *Action) reply(ctx context.Context, text string) (reply string, err error) {
	if a.responder == nil {
		return "", llm.ErrUnavailable
	}
	defer func() {
		if recovered := recover(); recovered != nil {
			err = &panicError{value: recovered}
		}
	}()
	return a.responder.Reply(ctx, llm.MessageInput{Text: text})
}
