package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/trungbq/docflow-be/internal/domain"
)

// Processor is the unit of work the worker runs for each document. The
// actual transformation of file contents is outside this service; any
// implementation satisfying this interface can be plugged in.
type Processor interface {
	Process(ctx context.Context, doc domain.Document) error
}

// StubProcessor simulates processing by sleeping for a fixed delay. It
// stands in for the real transformation step during development and in the
// in-memory backend.
type StubProcessor struct {
	logger *slog.Logger
	delay  time.Duration
}

// NewStubProcessor creates a StubProcessor with the given simulated work
// duration.
func NewStubProcessor(logger *slog.Logger, delay time.Duration) *StubProcessor {
	return &StubProcessor{logger: logger, delay: delay}
}

// Process waits for the configured delay and succeeds, unless the context is
// canceled first.
func (p *StubProcessor) Process(ctx context.Context, doc domain.Document) error {
	p.logger.Debug("Simulating document processing",
		slog.String("document_id", doc.ID),
		slog.String("object_key", doc.ObjectKey),
		slog.Duration("delay", p.delay),
	)

	select {
	case <-time.After(p.delay):
		return nil
	case <-ctx.Done():
		return fmt.Errorf("processing canceled: %w", ctx.Err())
	}
}
