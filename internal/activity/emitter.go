package activity

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"mandate/pkg/requestcontext"
)

var emitFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "mandate_activity_emit_failures_total",
	Help: "Activity entries that could not be persisted or queued for publishing.",
}, []string{"sink"})

// Emitter records activity entries as a best-effort side channel. A failed
// append or a full publish queue is logged and counted but never fails the
// primary mutation that produced the entry.
type Emitter struct {
	store  Store
	outbox chan<- Entry // nil when publishing is disabled
	logger *slog.Logger
}

func NewEmitter(store Store, outbox chan<- Entry, logger *slog.Logger) *Emitter {
	return &Emitter{store: store, outbox: outbox, logger: logger}
}

// Emit persists the entry and queues it for publishing. Always returns,
// never an error: see the type comment.
func (e *Emitter) Emit(ctx context.Context, entry Entry) {
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = requestcontext.Now(ctx)
	}

	if err := e.store.Append(ctx, entry); err != nil {
		emitFailures.WithLabelValues("store").Inc()
		e.logger.ErrorContext(ctx, "activity entry not persisted",
			"error", err.Error(),
			"activity_type", entry.Type,
			"request_id", requestcontext.RequestID(ctx),
		)
	}

	if e.outbox == nil {
		return
	}
	select {
	case e.outbox <- entry:
	default:
		// Queue full; drop rather than block the caller's request.
		emitFailures.WithLabelValues("outbox").Inc()
		e.logger.WarnContext(ctx, "activity outbox full, entry dropped",
			"activity_type", entry.Type,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}
