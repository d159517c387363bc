package md2site

import (
	"runtime"
	"sync"
)

// Worker pool sizing.
const (
	// MinPoolSize ensures at least one worker is available.
	MinPoolSize = 1

	// MaxPoolSize caps automatic sizing; explicit values may exceed it.
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for the Dart Sass process.
	cpuDivisor = 2
)

// ResolvePoolSize determines the number of build workers.
// Priority: explicit workers > GOMAXPROCS-based calculation.
// Exported for use by CLIs.
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}

	// GOMAXPROCS is adjusted by automaxprocs in containers
	n := runtime.GOMAXPROCS(0) / cpuDivisor

	if n < MinPoolSize {
		return MinPoolSize
	}
	if n > MaxPoolSize {
		return MaxPoolSize
	}
	return n
}

// runBatch calls fn for every index in [0, n) using up to workers
// goroutines. Each index is handled exactly once; results are written by
// fn into caller-owned slices at that index.
func runBatch(n, workers int, fn func(idx int)) {
	if n == 0 {
		return
	}
	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan int, n)
	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				fn(idx)
			}
		}()
	}
	wg.Wait()
}
