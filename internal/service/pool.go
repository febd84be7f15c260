// Package service wires repositories, strategies and the provider
// client into the analysis and settlement flows.
package service

import (
	"context"
	"sync"
)

// forEach runs fn over n items with at most workers goroutines in
// flight. It returns once every item was processed or skipped due to
// context cancellation.
func forEach(ctx context.Context, workers, n int, fn func(ctx context.Context, i int)) {
	if workers < 1 {
		workers = 1
	}

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			wg.Wait()
			return
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			fn(ctx, i)
		}(i)
	}

	wg.Wait()
}
