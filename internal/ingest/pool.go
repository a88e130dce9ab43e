// Package ingest runs multiple independent file ingests concurrently under
// a bounded semaphore. Each file gets its own parse; only the store's swap
// step serializes, so the pool never widens the store's locking.
package ingest

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/iPoetDev/browsechat-sub001/internal/store"
	"github.com/iPoetDev/browsechat-sub001/internal/types"
)

// Result is the outcome of ingesting one path.
type Result struct {
	Path     string
	Sequence types.Sequence
	Err      error
}

// Pool ingests files through a store with at most maxConcurrent parses in
// flight.
type Pool struct {
	store *store.Store
	sem   *semaphore.Weighted
}

// NewPool creates a Pool. maxConcurrent values below 1 are treated as 1.
func NewPool(st *store.Store, maxConcurrent int64) *Pool {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Pool{
		store: st,
		sem:   semaphore.NewWeighted(maxConcurrent),
	}
}

// IngestAll ingests every path and returns one result per path, in input
// order. A failing file does not stop the others; its error lands in its
// own result.
func (p *Pool) IngestAll(ctx context.Context, paths []string) []Result {
	results := make([]Result, len(paths))
	var wg sync.WaitGroup

	for i, path := range paths {
		if err := p.sem.Acquire(ctx, 1); err != nil {
			results[i] = Result{Path: path, Err: err}
			continue
		}
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			defer p.sem.Release(1)

			seq, err := p.store.Ingest(ctx, path)
			if err != nil {
				slog.Error("ingest failed", "path", path, "error", err)
			}
			results[i] = Result{Path: path, Sequence: seq, Err: err}
		}(i, path)
	}

	wg.Wait()
	return results
}
