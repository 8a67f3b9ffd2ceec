// Copyright 2026 The Osiris Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	"runtime"
	"sync"
)

// parConfig controls goroutine fan-out for batch-level loops.
type parConfig struct {
	enabled    bool
	numWorkers int
	minWork    int // minimum iterations per call to bother spawning
}

func defaultParConfig() parConfig {
	n := runtime.NumCPU()
	return parConfig{
		enabled:    n > 1,
		numWorkers: n,
		minWork:    4,
	}
}

// parFor executes f(i) for i in [0, n), fanning out across workers when the
// loop is large enough. Iterations must be independent.
func (c *Backend) parFor(n int, f func(i int)) {
	if !c.par.enabled || n < c.par.minWork {
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	chunk := (n + c.par.numWorkers - 1) / c.par.numWorkers
	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				f(i)
			}
		}(start, end)
	}
	wg.Wait()
}
