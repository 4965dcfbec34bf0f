// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package concurrent

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// WorkerPool runs jobs with a bounded number of goroutines.
type WorkerPool struct {
	workerCount int
}

// RunAll executes every function regardless of failures. The returned slice
// is aligned with functions: errs[i] is the outcome of functions[i].
func (wp *WorkerPool) RunAll(ctx context.Context, functions ...func(ctx context.Context) error) []error {
	if len(functions) == 0 {
		return nil
	}

	errs := make([]error, len(functions))
	g := new(errgroup.Group)
	g.SetLimit(wp.workerCount)

	for i, fn := range functions {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			// Each goroutine owns its own slot, no lock needed.
			errs[i] = fn(ctx)
			return nil
		})
	}

	_ = g.Wait()
	return errs
}

// Failed returns only the non-nil errors of a RunAll result.
func Failed(errs []error) []error {
	var out []error
	for _, err := range errs {
		if err != nil {
			out = append(out, err)
		}
	}
	return out
}

// NewWorkerPool creates a new worker pool with the specified number of workers
func NewWorkerPool(workerCount int) *WorkerPool {
	if workerCount <= 0 {
		workerCount = 1
	}
	return &WorkerPool{
		workerCount: workerCount,
	}
}
