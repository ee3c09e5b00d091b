// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package manifest

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/gogpu/gpgpu"
)

// Result is the outcome of one job.
type Result struct {
	Name   string
	Output string
	Err    error
}

// RunOptions tune Run.
type RunOptions struct {
	// Producers is the number of goroutines submitting jobs. Zero or
	// negative means one per job.
	Producers int

	// Limit caps the number of elements rendered per result.
	Limit int
}

// Run submits every job in m to q and waits for all results. Each job is
// submitted and awaited by its own producer goroutine, so jobs reach the
// queue concurrently. A job failure is recorded in its Result and does
// not stop the others; Run itself only fails when ctx ends.
func Run(ctx context.Context, q *gpgpu.Queue, m *Manifest, opts RunOptions) ([]Result, error) {
	results := make([]Result, len(m.Jobs))

	g, ctx := errgroup.WithContext(ctx)
	if opts.Producers > 0 {
		g.SetLimit(opts.Producers)
	}
	for i := range m.Jobs {
		j := &m.Jobs[i]
		g.Go(func() error {
			results[i] = runJob(ctx, q, j, opts.Limit)
			return ctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func runJob(ctx context.Context, q *gpgpu.Queue, j *Job, limit int) Result {
	r := Result{Name: j.Name}
	p, err := Submit(ctx, q, j)
	if err != nil {
		r.Err = err
		return r
	}
	r.Output, r.Err = p.Wait(ctx, limit)
	if ctx.Err() != nil {
		p.Abandon()
	}
	return r
}
