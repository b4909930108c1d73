package activity

import (
	"context"
	"log/slog"
)

// Worker drains the emitter's outbox channel into the publisher. Keeps
// publishing off the request path; a publish failure only logs, matching the
// best-effort contract of the side channel.
type Worker struct {
	publisher Publisher
	inbox     <-chan Entry
	logger    *slog.Logger
}

func NewWorker(publisher Publisher, inbox <-chan Entry, logger *slog.Logger) *Worker {
	return &Worker{publisher: publisher, inbox: inbox, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case entry := <-w.inbox:
			if err := w.publisher.Publish(ctx, entry); err != nil {
				emitFailures.WithLabelValues("publish").Inc()
				w.logger.Error("activity entry not published",
					"error", err.Error(),
					"activity_type", entry.Type,
				)
			}
		}
	}
}
