//go:build test

package address_test

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"testing"

	"github.com/bastiangx/addrserve/pkg/address"
)

type memSample struct {
	alloc      uint64
	goroutines int
}

func sampleMem() memSample {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	return memSample{alloc: m.Alloc, goroutines: runtime.NumGoroutine()}
}

func report(t *testing.T, label string, base memSample, ops int) (float64, int) {
	t.Helper()
	final := sampleMem()
	memDelta := int64(final.alloc - base.alloc)
	goroutineDelta := final.goroutines - base.goroutines
	memPerOp := float64(memDelta) / float64(ops)
	t.Logf("%s ops=%d mem_delta=%d bytes mem_per_op=%.2f goroutine_delta=%d",
		label, ops, memDelta, memPerOp, goroutineDelta)
	return memPerOp, goroutineDelta
}

func TestMemoryLeakPooled(t *testing.T) {
	p := newParser(t)
	for _, iterations := range []int{100, 1000, 5000} {
		t.Run(fmt.Sprintf("iterations_%d", iterations), func(t *testing.T) {
			base := sampleMem()
			for i := 0; i < iterations; i++ {
				for _, text := range batchTexts {
					_ = p.Parse(text)
				}
			}
			memPerOp, goroutineDelta := report(t, "pooled", base, iterations*len(batchTexts))
			if memPerOp > 500 {
				t.Errorf("excessive retained memory per parse: %.2f bytes", memPerOp)
			}
			if goroutineDelta > 2 {
				t.Errorf("goroutine leak detected: %d goroutines leaked", goroutineDelta)
			}
		})
	}
}

func TestMemoryLeakBatch(t *testing.T) {
	p := newParser(t)
	configs := []struct {
		workers int
		jobs    int
	}{
		{workers: 1, jobs: 2000},
		{workers: 4, jobs: 2000},
		{workers: 8, jobs: 4000},
	}
	for _, cfg := range configs {
		t.Run(fmt.Sprintf("workers_%d_jobs_%d", cfg.workers, cfg.jobs), func(t *testing.T) {
			base := sampleMem()

			in := make(chan address.Job)
			out := make(chan address.Result, 64)
			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer wg.Done()
				for range out {
				}
			}()
			go func() {
				defer close(in)
				for i := 0; i < cfg.jobs; i++ {
					in <- address.Job{ID: fmt.Sprint(i), Text: batchTexts[i%len(batchTexts)]}
				}
			}()

			b := &address.Batch{Parser: p, Workers: cfg.workers}
			if _, err := b.Run(context.Background(), in, out); err != nil {
				t.Fatalf("batch failed: %v", err)
			}
			wg.Wait()

			memPerOp, goroutineDelta := report(t, "batch", base, cfg.jobs)
			if memPerOp > 500 {
				t.Errorf("excessive retained memory per parse: %.2f bytes", memPerOp)
			}
			if goroutineDelta > 2 {
				t.Errorf("goroutine leak detected: %d goroutines leaked", goroutineDelta)
			}
		})
	}
}
