// Package indexer wires together the frontend, builder, logging and
// metrics into the single entry point spec.md §6 describes:
// parse(filename, compiler_args) -> IndexedFile.
package indexer

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"cxxindex/pkg/builder"
	"cxxindex/pkg/errs"
	"cxxindex/pkg/frontend"
	"cxxindex/pkg/graph"
	"cxxindex/pkg/logger"
	"cxxindex/pkg/metrics"
)

// Indexer owns a frontend collaborator and the ambient logging/metrics it
// reports through. It is safe to reuse across many Parse calls; each
// Parse gets its own Builder and IndexedFile.
type Indexer struct {
	frontend frontend.Frontend
	log      logger.Logger
	rec      *metrics.Recorder
}

// New returns an Indexer driving fe. log and rec may be nil.
func New(fe frontend.Frontend, log logger.Logger, rec *metrics.Recorder) *Indexer {
	if log == nil {
		log = logger.NewNop()
	}
	return &Indexer{frontend: fe, log: log, rec: rec}
}

// Parse runs one translation unit through the frontend and builder,
// returning the resulting IndexedFile. On any error — frontend
// initialization failure, a fatal builder error, or cooperative
// cancellation — the partial IndexedFile is discarded entirely and the
// error is returned; there is no partial-result return path (spec.md §5,
// §6, §7).
func (ix *Indexer) Parse(ctx context.Context, filename string, compilerArgs []string) (*graph.IndexedFile, error) {
	start := time.Now()
	b := builder.New(ix.log, ix.rec)

	emit := func(ev frontend.Event) error {
		return b.HandleEvent(ctx, ev)
	}

	err := ix.frontend.Parse(ctx, filename, compilerArgs, emit)
	if ix.rec != nil {
		ix.rec.ObserveParseDuration(time.Since(start).Seconds())
	}
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrCancelled):
			ix.rec.ObserveCancelled()
			ix.log.Info("indexer: parse of %s cancelled", filename)
		case errors.Is(err, errs.ErrCapacityExceeded):
			ix.rec.ObserveCapacityExceeded()
			ix.log.Error("indexer: parse of %s aborted, capacity exceeded: %v", filename, err)
		case errors.Is(err, errs.ErrInvariantViolated):
			ix.rec.ObserveInvariantViolated()
			ix.log.Error("indexer: parse of %s aborted, invariant violated: %v", filename, err)
		default:
			ix.log.Warn("indexer: parse of %s failed: %v", filename, err)
		}
		return nil, err
	}

	ix.rec.ObserveFileParsed()
	ix.log.Debug("indexer: parsed %s in %s", filename, time.Since(start))
	return b.IndexedFile(), nil
}
