// Package documents names the document kinds the system issues and fans
// out the side effects of issuing one.
package documents

import (
	"context"
	"fmt"
	"log/slog"
)

// Kind identifies a printable document.
type Kind string

const (
	KindInvoice   Kind = "invoice"
	KindQuotation Kind = "quotation"
	KindPurchase  Kind = "purchase"
	KindReturn    Kind = "return"
)

// ParseKind validates a kind read from a URL or task payload.
func ParseKind(raw string) (Kind, error) {
	switch k := Kind(raw); k {
	case KindInvoice, KindQuotation, KindPurchase, KindReturn:
		return k, nil
	default:
		return "", fmt.Errorf("documents: unknown kind %q", raw)
	}
}

// Notifier is told about every document persisted.
type Notifier interface {
	DocumentCreated(ctx context.Context, kind Kind, id int64)
}

// Enqueuer schedules a PDF render.
type Enqueuer interface {
	EnqueueRender(ctx context.Context, kind string, id int64) error
}

// Counter records issued documents.
type Counter interface {
	DocumentIssued(kind string)
}

// Dispatcher enqueues a render job and counts the document. Failures are
// logged; the document is already committed.
type Dispatcher struct {
	queue   Enqueuer
	counter Counter
	logger  *slog.Logger
}

// NewDispatcher builds a dispatcher. queue and counter may be nil.
func NewDispatcher(queue Enqueuer, counter Counter, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{queue: queue, counter: counter, logger: logger}
}

// DocumentCreated implements Notifier.
func (d *Dispatcher) DocumentCreated(ctx context.Context, kind Kind, id int64) {
	if d == nil {
		return
	}
	if d.counter != nil {
		d.counter.DocumentIssued(string(kind))
	}
	if d.queue == nil {
		return
	}
	if err := d.queue.EnqueueRender(ctx, string(kind), id); err != nil {
		d.logger.Warn("enqueue document render",
			slog.String("kind", string(kind)),
			slog.Int64("id", id),
			slog.Any("error", err))
	}
}

// Nop discards notifications.
type Nop struct{}

// DocumentCreated implements Notifier.
func (Nop) DocumentCreated(context.Context, Kind, int64) {}
