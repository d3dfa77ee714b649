// Package parallel runs index-range work across a bounded number of goroutines.
package parallel

import (
	"runtime"

	"github.com/sourcegraph/conc/pool"
)

// Workers resolves a scikit-learn style n_jobs value: n <= 0 means all CPUs.
func Workers(nJobs int) int {
	if nJobs <= 0 {
		return runtime.NumCPU()
	}
	return nJobs
}

// Parallelize splits [0, items) into contiguous ranges and runs fn on each
// range using at most workers goroutines. workers <= 0 means all CPUs.
// A panic in fn is re-raised in the caller after all ranges finish.
func Parallelize(items, workers int, fn func(start, end int)) {
	if items == 0 {
		return
	}

	numWorkers := Workers(workers)
	if numWorkers > items {
		numWorkers = items
	}
	if numWorkers == 1 {
		fn(0, items)
		return
	}

	chunkSize := (items + numWorkers - 1) / numWorkers

	p := pool.New().WithMaxGoroutines(numWorkers)
	for start := 0; start < items; start += chunkSize {
		end := start + chunkSize
		if end > items {
			end = items
		}
		s, e := start, end
		p.Go(func() {
			fn(s, e)
		})
	}
	p.Wait()
}

// ParallelizeWithThreshold runs fn sequentially when items <= threshold and
// falls back to Parallelize otherwise.
func ParallelizeWithThreshold(items, threshold, workers int, fn func(start, end int)) {
	if items <= threshold {
		fn(0, items)
		return
	}
	Parallelize(items, workers, fn)
}
