// Package parallel splits index ranges across a bounded pool of goroutines.
package parallel

import (
	"runtime"

	"github.com/sourcegraph/conc/pool"
)

// MinChunk is the smallest range handed to a single worker. Ranges no larger
// than this run on the calling goroutine.
const MinChunk = 4096

// Workers normalizes a configured worker count; values < 1 mean GOMAXPROCS.
func Workers(n int) int {
	if n < 1 {
		return runtime.GOMAXPROCS(0)
	}
	return n
}

// For calls fn over [0, n) split into contiguous [lo, hi) chunks, using at most
// workers goroutines. fn must not depend on the order chunks run in.
func For(n, workers int, fn func(lo, hi int)) {
	if n <= 0 {
		return
	}
	workers = Workers(workers)
	if workers == 1 || n <= MinChunk {
		fn(0, n)
		return
	}

	chunk := (n + workers - 1) / workers
	if chunk < MinChunk {
		chunk = MinChunk
	}

	p := pool.New().WithMaxGoroutines(workers)
	for lo := 0; lo < n; lo += chunk {
		lo, hi := lo, min(lo+chunk, n)
		p.Go(func() {
			fn(lo, hi)
		})
	}
	p.Wait()
}
