// Package pool runs independent per-index work on a bounded set of
// goroutines while keeping results in index order.
package pool

import (
	"runtime"
	"sync"
)

// Map invokes fn for every index in [0, n) using at most workers
// goroutines. Results and errors are collected into index-keyed slices, so
// output order is deterministic regardless of completion order. workers <= 0
// selects GOMAXPROCS; workers == 1 runs inline.
func Map[T any](n, workers int, fn func(i int) (T, error)) ([]T, []error) {
	results := make([]T, n)
	errs := make([]error, n)
	if n == 0 {
		return results, errs
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > n {
		workers = n
	}
	if workers == 1 {
		for i := 0; i < n; i++ {
			results[i], errs[i] = fn(i)
		}
		return results, errs
	}

	indices := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range indices {
				results[i], errs[i] = fn(i)
			}
		}()
	}
	for i := 0; i < n; i++ {
		indices <- i
	}
	close(indices)
	wg.Wait()
	return results, errs
}
