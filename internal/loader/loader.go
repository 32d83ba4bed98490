// Package loader writes documents to storage in fixed-size batches and
// reports the running count.
package loader

import (
	"context"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"strings"
	"time"

	"github.com/dgallion1/jarbas/internal/document"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultBatchSize is the number of documents written per bulk insert.
const DefaultBatchSize = 10000

// Store is the document storage the loader writes to.
type Store interface {
	Count(ctx context.Context) (int64, error)
	BulkInsert(ctx context.Context, docs []document.Document) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
}

// Result summarizes a Load call.
type Result struct {
	Documents int64
	Batches   int
	Flushes   StatsSnapshot
}

// Loader buffers documents and flushes them to a Store.
type Loader struct {
	store     Store
	out       io.Writer
	log       *slog.Logger
	batchSize int
	printer   *message.Printer
	flushMs   []int64
}

type Option func(*Loader)

// WithBatchSize sets the number of documents per flush. Non-positive
// values keep the default.
func WithBatchSize(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.batchSize = n
		}
	}
}

// New returns a Loader printing progress lines to out.
func New(store Store, out io.Writer, log *slog.Logger, opts ...Option) *Loader {
	l := &Loader{
		store:     store,
		out:       out,
		log:       log,
		batchSize: DefaultBatchSize,
		printer:   message.NewPrinter(language.English),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// BatchSize returns the configured flush size.
func (l *Loader) BatchSize() int {
	return l.batchSize
}

// Load consumes docs, flushing every BatchSize documents and once more at
// the end, even when the last batch is empty. Batches flushed before an
// error stay committed.
func (l *Loader) Load(ctx context.Context, docs iter.Seq2[*document.Document, error]) (Result, error) {
	var res Result
	l.flushMs = l.flushMs[:0]
	batch := make([]document.Document, 0, l.batchSize)

	for doc, err := range docs {
		if err != nil {
			return l.result(res), err
		}
		batch = append(batch, *doc)
		if len(batch) < l.batchSize {
			continue
		}
		if err := l.flush(ctx, batch, &res); err != nil {
			return l.result(res), err
		}
		batch = batch[:0]
		if err := l.PrintCount(ctx, false); err != nil {
			return l.result(res), err
		}
	}

	if err := l.flush(ctx, batch, &res); err != nil {
		return l.result(res), err
	}
	if err := l.PrintCount(ctx, true); err != nil {
		return l.result(res), err
	}

	res = l.result(res)
	l.log.Info("load complete",
		"documents", res.Documents,
		"batches", res.Batches,
		"flush_avg_ms", res.Flushes.AvgMs,
		"flush_p95_ms", res.Flushes.P95Ms,
		"flush_max_ms", res.Flushes.MaxMs,
	)
	return res, nil
}

func (l *Loader) flush(ctx context.Context, batch []document.Document, res *Result) error {
	start := time.Now()
	n, err := l.store.BulkInsert(ctx, batch)
	if err != nil {
		l.log.Error("batch failed", "batch", res.Batches+1, "size", len(batch), "error", err)
		return fmt.Errorf("batch %d: %w", res.Batches+1, err)
	}
	l.flushMs = append(l.flushMs, time.Since(start).Milliseconds())
	res.Batches++
	res.Documents += n
	l.log.Debug("batch flushed", "batch", res.Batches, "size", len(batch))
	return nil
}

func (l *Loader) result(res Result) Result {
	res.Flushes = summarize(l.flushMs)
	return res
}

// Drop deletes every stored document. There is no undo.
func (l *Loader) Drop(ctx context.Context) error {
	fmt.Fprintln(l.out, "Deleting all existing documents")
	n, err := l.store.DeleteAll(ctx)
	if err != nil {
		return fmt.Errorf("drop documents: %w", err)
	}
	l.log.Info("documents deleted", "count", n)
	return l.PrintCount(ctx, true)
}

// PrintCount writes the live document count. Transient lines end with a
// carriage return so the next one overwrites them.
func (l *Loader) PrintCount(ctx context.Context, permanent bool) error {
	n, err := l.store.Count(ctx)
	if err != nil {
		return err
	}
	end := "\r"
	if permanent {
		end = "\n"
	}
	msg := l.printer.Sprintf("Current count: %d documents", n)
	// Pad so a shorter line fully covers the previous one.
	if pad := 60 - len(msg); pad > 0 {
		msg += strings.Repeat(" ", pad)
	}
	_, err = io.WriteString(l.out, msg+end)
	return err
}

// PrintStart writes the count found before any work is done.
func (l *Loader) PrintStart(ctx context.Context) (int64, error) {
	n, err := l.store.Count(ctx)
	if err != nil {
		return 0, err
	}
	_, err = l.printer.Fprintf(l.out, "Starting with %d documents\n", n)
	return n, err
}
