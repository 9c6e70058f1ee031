// Package parallel splits row loops of pixel conversions across goroutines.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls how rows are shared between workers.
type Config struct {
	Workers int // Goroutines to use; 1 or less runs sequentially.
	MinRows int // Fewer rows per worker than this is not worth a goroutine.
}

// DefaultConfig uses one worker per CPU and chunks of at least 32 rows.
func DefaultConfig() Config {
	return Config{Workers: runtime.NumCPU(), MinRows: 32}
}

// Rows calls f(y) for every y in [0, n). Rows are handed out in contiguous
// chunks, so f must only write memory belonging to row y.
func Rows(n int, cfg Config, f func(y int)) {
	if cfg.Workers <= 1 || n < 2*cfg.MinRows {
		for y := range n {
			f(y)
		}
		return
	}

	chunk := max((n+cfg.Workers-1)/cfg.Workers, cfg.MinRows)
	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		wg.Go(func() {
			for y := start; y < end; y++ {
				f(y)
			}
		})
	}
	wg.Wait()
}
