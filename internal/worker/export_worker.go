// Package worker consumes transaction events and appends them to the
// ledger. The ledger is a convenience copy; the primary store stays
// authoritative, so a failed append only requeues the event. Entries
// are buffered and written in batches to keep Sheets API usage low.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"celengan/internal/amqp"
	"celengan/internal/ledger"
)

// ExportWorker turns published transaction events into ledger rows.
// Rows are buffered until the batch size is reached; Run flushes
// partial batches on the configured interval.
type ExportWorker struct {
	writer    ledger.Writer
	batchSize int
	interval  time.Duration

	mu      sync.Mutex
	pending []ledger.Entry
}

func NewExportWorker(writer ledger.Writer, batchSize int, interval time.Duration) *ExportWorker {
	if batchSize < 1 {
		batchSize = 1
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &ExportWorker{
		writer:    writer,
		batchSize: batchSize,
		interval:  interval,
	}
}

// HandleTransactionEvent buffers a single event from AMQP, flushing
// once a full batch has accumulated. Returning an error makes the
// consumer nack and requeue the delivery.
func (w *ExportWorker) HandleTransactionEvent(ctx context.Context, msg *amqp.TransactionEvent) error {
	slog.DebugContext(ctx, "Buffering transaction event",
		"username", msg.Username,
		"source", msg.Source,
		"kind", msg.Kind)

	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending = append(w.pending, ledger.Entry{
		Username: msg.Username,
		Source:   msg.Source,
		Target:   msg.Target,
		Kind:     string(msg.Kind),
		Amount:   msg.Amount,
		Note:     msg.Note,
		At:       msg.At,
	})
	if len(w.pending) < w.batchSize {
		return nil
	}
	return w.flushLocked(ctx)
}

// Flush writes all buffered entries to the ledger.
func (w *ExportWorker) Flush(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.flushLocked(ctx)
}

// flushLocked appends every pending entry. Unwritten entries stay
// buffered for the next attempt. Callers hold w.mu.
func (w *ExportWorker) flushLocked(ctx context.Context) error {
	for len(w.pending) > 0 {
		entry := w.pending[0]
		ref, err := w.writer.Append(ctx, entry)
		if err != nil {
			return fmt.Errorf("append to ledger: %w", err)
		}
		w.pending = w.pending[1:]

		slog.InfoContext(ctx, "Transaction exported",
			"username", entry.Username,
			"ledger_ref", ref,
			"amount", entry.Amount)
	}
	return nil
}

// Run flushes partial batches on the export interval until the context
// is cancelled, then drains whatever is still buffered.
func (w *ExportWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.Flush(ctx); err != nil {
				slog.ErrorContext(ctx, "Ledger flush failed", "error", err)
			}
		case <-ctx.Done():
			drainCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := w.Flush(drainCtx); err != nil {
				slog.ErrorContext(drainCtx, "Final ledger flush failed", "error", err)
			}
			return nil
		}
	}
}
