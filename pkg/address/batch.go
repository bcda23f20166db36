package address

import (
	"context"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// Job is one address to parse in bulk.
type Job struct {
	ID   string
	Text string
}

type Result struct {
	ID     string
	Record *Record
}

// BatchStats summarizes a Run. Failed counts records that were not
// interpreted.
type BatchStats struct {
	Processed   int           `json:"processed"`
	Interpreted int           `json:"interpreted"`
	Failed      int           `json:"failed"`
	Elapsed     time.Duration `json:"elapsed"`
}

// Batch parses a stream of addresses on several workers. Each worker owns one
// resolver for the whole run.
type Batch struct {
	Parser  *Parser
	Workers int
}

// Run reads jobs from in until it is closed or ctx is done, and sends one
// Result per job to out. Results are not ordered. Run closes out before
// returning and reports the context error when cancelled.
func (b *Batch) Run(ctx context.Context, in <-chan Job, out chan<- Result) (BatchStats, error) {
	defer close(out)
	if b.Parser == nil {
		return BatchStats{}, ErrCatalogNotInitialized
	}
	workers := b.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	start := time.Now()
	var processed, interpreted atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			res := b.Parser.pool.Get()
			defer b.Parser.pool.Put(res)
			for {
				select {
				case <-gctx.Done():
					return gctx.Err()
				case job, ok := <-in:
					if !ok {
						return nil
					}
					rec := b.Parser.ParseWith(res, job.Text)
					processed.Add(1)
					if rec.Interpreted() {
						interpreted.Add(1)
					}
					select {
					case out <- Result{ID: job.ID, Record: rec}:
					case <-gctx.Done():
						return gctx.Err()
					}
				}
			}
		})
	}
	err := g.Wait()

	total := BatchStats{
		Processed:   int(processed.Load()),
		Interpreted: int(interpreted.Load()),
		Elapsed:     time.Since(start),
	}
	total.Failed = total.Processed - total.Interpreted
	b.Parser.log.Debugf("Batch done: %d processed, %d interpreted in %s",
		total.Processed, total.Interpreted, total.Elapsed)
	return total, err
}
