package pipeline

import (
	"context"
	"fmt"
	"io"
	"iter"
	"log/slog"

	"github.com/dgallion1/jarbas/internal/config"
	"github.com/dgallion1/jarbas/internal/dataset"
	"github.com/dgallion1/jarbas/internal/document"
	"github.com/dgallion1/jarbas/internal/loader"
)

// Options are the per-run parameters of the loader command.
type Options struct {
	// Source is a directory holding the dataset archives. Empty means
	// download them.
	Source string
	// Drop deletes every stored document before loading.
	Drop      bool
	BatchSize int
}

// Orchestrator runs the dataset ingestion pipeline.
type Orchestrator struct {
	store  loader.Store
	out    io.Writer
	log    *slog.Logger
	cfg    config.Config
	remote dataset.Discoverer
}

// NewOrchestrator wires the pipeline to a document store. Progress lines
// go to out.
func NewOrchestrator(cfg config.Config, store loader.Store, out io.Writer, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		store:  store,
		out:    out,
		log:    log,
		cfg:    cfg,
		remote: dataset.NewRemote(cfg.S3Region, cfg.S3Bucket, cfg.DatasetDate, log),
	}
}

// SetRemote replaces the discoverer used when no source directory is given.
func (o *Orchestrator) SetRemote(d dataset.Discoverer) {
	o.remote = d
}

// Run loads every available dataset partition into the store.
func (o *Orchestrator) Run(ctx context.Context, opts Options) (RunSnapshot, error) {
	run := NewRun()
	log := o.log.With("run_id", run.ID)
	l := loader.New(o.store, o.out, log, loader.WithBatchSize(opts.BatchSize))

	if _, err := l.PrintStart(ctx); err != nil {
		return run.Fail(err), err
	}

	if opts.Drop {
		run.SetStatus(StatusDropping)
		if err := l.Drop(ctx); err != nil {
			return run.Fail(err), err
		}
	}

	run.SetStatus(StatusLoading)
	docs := o.documents(o.discoverer(opts, log).Datasets(ctx), run, log)
	res, err := l.Load(ctx, docs)
	run.SetLoaded(res.Documents, res.Batches)
	if err != nil {
		log.Error("load failed", "error", err, "file", run.Snapshot().Progress.CurrentFile)
		return run.Fail(err), err
	}

	run.SetStatus(StatusCompleted)
	snap := run.Snapshot()
	log.Info("run complete",
		"files", snap.Progress.Files,
		"rows", snap.Progress.Rows,
		"documents", snap.Progress.Documents,
		"batches", snap.Progress.Batches,
	)
	return snap, nil
}

func (o *Orchestrator) discoverer(opts Options, log *slog.Logger) dataset.Discoverer {
	if opts.Source != "" {
		return &dataset.Local{Dir: opts.Source, Date: o.cfg.DatasetDate, Log: log}
	}
	return o.remote
}

// documents chains dataset paths into built documents. Stopping the
// consumer closes the open archive and any temporary download.
func (o *Orchestrator) documents(paths iter.Seq2[string, error], run *Run, log *slog.Logger) iter.Seq2[*document.Document, error] {
	return func(yield func(*document.Document, error) bool) {
		for path, err := range paths {
			if err != nil {
				yield(nil, fmt.Errorf("discover datasets: %w", err))
				return
			}
			run.StartFile(path)
			log.Debug("reading dataset", "path", path)
			for row, err := range dataset.Rows(path) {
				if err != nil {
					yield(nil, err)
					return
				}
				run.IncrRows()
				doc, err := document.FromRow(row)
				if err != nil {
					yield(nil, fmt.Errorf("%s: %w", path, err))
					return
				}
				if !yield(doc, nil) {
					return
				}
			}
		}
	}
}
