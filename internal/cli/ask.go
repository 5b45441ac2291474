package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dwizi/action-server/internal/actions"
	"github.com/dwizi/action-server/internal/actions/fallback"
	"github.com/dwizi/action-server/internal/app"
	"github.com/dwizi/action-server/internal/config"
)

func newAskCommand(logger *slog.Logger) *cobra.Command {
	var (
		senderID   string
		timeoutSec int
	)

	cmd := &cobra.Command{
		Use:   "ask [message]",
		Short: "Run the fallback action once and print what it would utter",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			runtime, err := app.New(config.FromEnv(), logger)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), boundedTimeout(timeoutSec))
			defer cancel()
			return runAsk(ctx, cmd, runtime.Actions(), senderID, text)
		},
	}
	cmd.Flags().StringVar(&senderID, "sender-id", "cli", "sender id placed on the tracker")
	cmd.Flags().IntVar(&timeoutSec, "timeout-sec", 120, "invocation timeout in seconds")
	return cmd
}

func runAsk(ctx context.Context, cmd *cobra.Command, registry *actions.Registry, senderID, text string) error {
	dispatcher := actions.NewCollectingDispatcher()
	tracker := actions.Tracker{
		SenderID:      senderID,
		LatestMessage: actions.UserMessage{Text: &text},
	}
	if _, err := registry.Run(ctx, fallback.Name, dispatcher, tracker, actions.Domain{}); err != nil {
		return err
	}
	for _, message := range dispatcher.Messages() {
		fmt.Fprintln(cmd.OutOrStdout(), message.Text)
	}
	return nil
}

func boundedTimeout(timeoutSec int) time.Duration {
	if timeoutSec < 1 {
		timeoutSec = 120
	}
	if timeoutSec > 600 {
		timeoutSec = 600
	}
	return time.Duration(timeoutSec) * time.Second
}
