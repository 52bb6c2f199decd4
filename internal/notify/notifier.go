// Package notify delivers run-completion summaries to operator channels
// (Telegram, Discord). Long batch replays finish unattended; the summary is
// how anyone learns the outcome without polling the database.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/OtsoKarali/prosperity-replay/internal/report"
)

// Sender is one delivery channel.
type Sender interface {
	// Send delivers a notification with the given title and message body.
	Send(ctx context.Context, title, message string) error
	// Name returns a human-readable identifier for the sender.
	Name() string
}

// Notifier fans a notification out to every configured sender. A sender
// failure is logged and does not block the remaining senders.
type Notifier struct {
	senders []Sender
	logger  *slog.Logger
}

// NewNotifier creates a Notifier over the given senders. With no senders it
// is a silent no-op, so callers never need to nil-check.
func NewNotifier(senders []Sender, logger *slog.Logger) *Notifier {
	return &Notifier{
		senders: senders,
		logger:  logger.With(slog.String("component", "notifier")),
	}
}

// RunFinished sends a finished run's summary to all senders.
func (n *Notifier) RunFinished(ctx context.Context, s report.Summary) error {
	title := fmt.Sprintf("replay day %s finished", s.Day)
	return n.send(ctx, title, s.String())
}

// RunFailed reports a run that aborted before producing results.
func (n *Notifier) RunFailed(ctx context.Context, day string, runErr error) error {
	title := fmt.Sprintf("replay day %s FAILED", day)
	return n.send(ctx, title, runErr.Error())
}

func (n *Notifier) send(ctx context.Context, title, message string) error {
	if len(n.senders) == 0 {
		return nil
	}

	var errs []string
	for _, s := range n.senders {
		if err := s.Send(ctx, title, message); err != nil {
			n.logger.ErrorContext(ctx, "sender failed",
				slog.String("sender", s.Name()),
				slog.String("error", err.Error()),
			)
			errs = append(errs, fmt.Sprintf("%s: %v", s.Name(), err))
			continue
		}
		n.logger.DebugContext(ctx, "notification sent",
			slog.String("sender", s.Name()),
			slog.String("title", title),
		)
	}

	if len(errs) > 0 {
		return fmt.Errorf("notify: %d sender(s) failed: %s", len(errs), strings.Join(errs, "; "))
	}
	return nil
}
