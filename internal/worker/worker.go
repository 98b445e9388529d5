package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/trungbq/docflow-be/internal/domain"
)

// Config holds worker loop configuration.
type Config struct {
	Logger       *slog.Logger
	Records      domain.RecordStore
	Queue        domain.WorkQueue
	Processor    Processor
	PollInterval time.Duration
	// RunOnce drains the queue and returns instead of waiting for new jobs.
	RunOnce bool
}

// Worker drains the work queue and advances one document per job to a
// terminal status. Failures during processing are contained per job: they
// are recorded on the document, never propagated out of the loop.
type Worker struct {
	logger       *slog.Logger
	records      domain.RecordStore
	queue        domain.WorkQueue
	processor    Processor
	pollInterval time.Duration
	runOnce      bool
}

// NewWorker creates a new worker instance.
func NewWorker(cfg *Config) *Worker {
	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	return &Worker{
		logger:       cfg.Logger,
		records:      cfg.Records,
		queue:        cfg.Queue,
		processor:    cfg.Processor,
		pollInterval: pollInterval,
		runOnce:      cfg.RunOnce,
	}
}

// Run dequeues and processes jobs until the context is canceled. When the
// queue reports empty, Run returns in run-once mode and waits for the poll
// interval otherwise. Jobs are processed one at a time, run to completion.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("Worker loop started",
		slog.Duration("poll_interval", w.pollInterval),
		slog.Bool("run_once", w.runOnce),
	)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Worker loop stopped - context canceled")
			return ctx.Err()
		default:
		}

		job, err := w.queue.Dequeue(ctx)
		if err != nil {
			w.logger.Error("Failed to dequeue job",
				slog.String("error", err.Error()),
			)
			return fmt.Errorf("failed to dequeue job: %w", err)
		}

		if job == nil {
			if w.runOnce {
				w.logger.Info("Queue drained, worker loop exiting")
				return nil
			}
			select {
			case <-ctx.Done():
				w.logger.Info("Worker loop stopped - context canceled")
				return ctx.Err()
			case <-time.After(w.pollInterval):
			}
			continue
		}

		w.processJob(ctx, job)
	}
}

// processJob advances the document referenced by a single job. Whatever
// happens inside the processing step, the document ends in COMPLETED or
// FAILED - never PROCESSING - and the loop keeps running.
func (w *Worker) processJob(ctx context.Context, job *domain.Job) {
	w.logger.Info("Processing job",
		slog.String("job_id", job.JobID),
		slog.String("document_id", job.DocumentID),
	)

	doc, err := w.records.Get(ctx, job.DocumentID)
	if err != nil {
		// Document removed or never existed: drop the job.
		w.logger.Warn("Dropping job - document not found",
			slog.String("job_id", job.JobID),
			slog.String("document_id", job.DocumentID),
			slog.String("error", err.Error()),
		)
		return
	}

	now := time.Now().UTC()
	processing := doc.WithStatus(domain.StatusProcessing, now)
	if _, err := w.records.Update(ctx, processing); err != nil {
		w.logger.Error("Failed to mark document PROCESSING",
			slog.String("document_id", doc.ID),
			slog.String("error", err.Error()),
		)
		return
	}

	if err := w.runProcessor(ctx, processing); err != nil {
		w.logger.Error("Processing failed",
			slog.String("job_id", job.JobID),
			slog.String("document_id", doc.ID),
			slog.String("error", err.Error()),
		)

		failed := processing.WithFailure(err.Error(), time.Now().UTC())
		if _, updateErr := w.records.Update(ctx, failed); updateErr != nil {
			w.logger.Error("Failed to mark document FAILED",
				slog.String("document_id", doc.ID),
				slog.String("error", updateErr.Error()),
			)
		}
		return
	}

	completed := processing.WithStatus(domain.StatusCompleted, time.Now().UTC())
	if _, err := w.records.Update(ctx, completed); err != nil {
		w.logger.Error("Failed to mark document COMPLETED",
			slog.String("document_id", doc.ID),
			slog.String("error", err.Error()),
		)
		return
	}

	w.logger.Info("Job completed",
		slog.String("job_id", job.JobID),
		slog.String("document_id", doc.ID),
	)
}

// runProcessor invokes the processing step and converts a panic into an
// ordinary error so a misbehaving processor cannot leave the document stuck
// in PROCESSING or take the loop down.
func (w *Worker) runProcessor(ctx context.Context, doc domain.Document) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("processor panic: %v", r)
		}
	}()
	return w.processor.Process(ctx, doc)
}
