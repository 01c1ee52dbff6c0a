package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// TaskError accumulates the per-item errors of a bulk ingestion.
type TaskError struct {
	Errors []error
}

func (e *TaskError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := "multiple errors:"
	for _, err := range e.Errors {
		msg += " " + err.Error() + ";"
	}
	return msg
}

// Unwrap exposes the item errors to errors.Is and errors.As.
func (e *TaskError) Unwrap() []error {
	return e.Errors
}

func (e *TaskError) append(err error) {
	if err == nil {
		return
	}
	e.Errors = append(e.Errors, err)
}

func (e *TaskError) asError() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

// BulkIngestor creates readings and comparisons from large datasets with a
// bounded number of concurrent calls into the ReadingService.
type BulkIngestor struct {
	service  *ReadingService
	workers  int
	progress func(done, total int)
}

// NewBulkIngestor creates a BulkIngestor running at most workers items at a
// time. Non-positive values fall back to four.
func NewBulkIngestor(service *ReadingService, workers int) *BulkIngestor {
	if workers <= 0 {
		workers = 4
	}
	return &BulkIngestor{
		service: service,
		workers: workers,
	}
}

// OnProgress registers fn to be called after every finished item, successful
// or not. fn is called from worker goroutines.
func (bi *BulkIngestor) OnProgress(fn func(done, total int)) *BulkIngestor {
	bi.progress = fn
	return bi
}

// IngestReadings creates one reading per input and returns how many were
// stored. Per-item failures are collected into a *TaskError.
func (bi *BulkIngestor) IngestReadings(ctx context.Context, inputs []ReadingInput) (int, error) {
	return bi.run(ctx, len(inputs), func(idx int) error {
		if _, err := bi.service.CreateReading(ctx, inputs[idx]); err != nil {
			return fmt.Errorf("reading %d (%s): %w", idx, inputs[idx].FullName, err)
		}
		return nil
	})
}

// IngestComparisons scores and stores each pair.
func (bi *BulkIngestor) IngestComparisons(ctx context.Context, pairs []CompatibilityInput) (int, error) {
	return bi.run(ctx, len(pairs), func(idx int) error {
		if _, err := bi.service.Compatibility(ctx, pairs[idx]); err != nil {
			return fmt.Errorf("comparison %d: %w", idx, err)
		}
		return nil
	})
}

// run calls item for every index in [0, total). Item errors never stop the
// batch; cancellation does, and wins over item errors.
func (bi *BulkIngestor) run(ctx context.Context, total int, item func(idx int) error) (int, error) {
	if total == 0 {
		return 0, nil
	}

	var (
		g        errgroup.Group
		mu       sync.Mutex
		taskErr  TaskError
		finished atomic.Int64
		ok       atomic.Int64
	)
	g.SetLimit(bi.workers)

	for i := 0; i < total; i++ {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			if err := item(i); err != nil {
				mu.Lock()
				taskErr.append(err)
				mu.Unlock()
			} else {
				ok.Add(1)
			}
			done := finished.Add(1)
			if bi.progress != nil {
				bi.progress(int(done), total)
			}
			return nil
		})
	}
	_ = g.Wait()

	created := int(ok.Load())
	if err := ctx.Err(); err != nil {
		return created, err
	}
	return created, taskErr.asError()
}
