package blessed

import (
	"context"
	"runtime"
	"sync"

	"github.com/flarebyte/seshat-blessed/internal/fixture"
)

// Result is one unit's outcome under RunAll. Err carries the verdict or
// run-time failure; nil means pass.
type Result struct {
	Unit fixture.Unit
	Err  error
}

// Workers clamps a requested worker count to a sane value.
func Workers(n int) int {
	if n <= 0 {
		n = runtime.NumCPU()
	}
	if n < 1 {
		n = 1
	}
	return n
}

// RunAll executes every unit on a bounded worker pool and returns results
// indexed like units. Safe only while output paths are unique; callers
// check fixture.DuplicateOutputs first.
func (e *Engine) RunAll(ctx context.Context, units []fixture.Unit, workers int) []Result {
	workers = Workers(workers)
	jobs := make(chan int)
	out := make([]Result, len(units))
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for idx := range jobs {
			out[idx] = Result{Unit: units[idx], Err: e.Run(ctx, units[idx])}
		}
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go worker()
	}

	for i := range units {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return out
}
