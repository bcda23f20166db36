package address_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/bastiangx/addrserve/pkg/address"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var batchTexts = []string{
	"青海海西格尔木市河西街道郭镇盐桥村",
	"山东青岛市南区宁德路金梦花园",
	"新疆阿克苏地区阿拉尔市新苑祥和小区",
	"广州从化区温泉镇新田村",
	"河北秦皇岛昌黎县昌黎镇秦皇岛市昌黎镇马铁庄村",
	"北京市朝阳区建国路88号现代城5号楼2单元1201室",
	"金梦花园3栋",
}

func TestBatchMatchesSequential(t *testing.T) {
	p := newParser(t)

	want := map[string]address.View{}
	failed := 0
	jobs := make([]address.Job, 0, 200)
	for i := 0; i < 200; i++ {
		text := batchTexts[i%len(batchTexts)]
		job := address.Job{ID: fmt.Sprintf("job-%03d", i), Text: text}
		jobs = append(jobs, job)
		want[job.ID] = p.Parse(text).View()
		if !want[job.ID].Interpreted {
			failed++
		}
	}
	require.Equal(t, 28, failed, "only the address without a region fails")

	for _, workers := range []int{1, 4, 8} {
		t.Run(fmt.Sprintf("workers_%d", workers), func(t *testing.T) {
			in := make(chan address.Job)
			out := make(chan address.Result, 16)
			go func() {
				defer close(in)
				for _, job := range jobs {
					in <- job
				}
			}()

			got := map[string]address.View{}
			done := make(chan struct{})
			go func() {
				defer close(done)
				for res := range out {
					got[res.ID] = res.Record.View()
				}
			}()

			b := &address.Batch{Parser: p, Workers: workers}
			stats, err := b.Run(context.Background(), in, out)
			require.NoError(t, err)
			<-done

			assert.Equal(t, want, got)
			assert.Equal(t, len(jobs), stats.Processed)
			assert.Equal(t, stats.Processed, stats.Interpreted+stats.Failed)
			assert.Equal(t, failed, stats.Failed)
		})
	}
}

func TestBatchCancel(t *testing.T) {
	p := newParser(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	in := make(chan address.Job)
	out := make(chan address.Result)
	b := &address.Batch{Parser: p, Workers: 2}
	_, err := b.Run(ctx, in, out)
	assert.ErrorIs(t, err, context.Canceled)

	_, open := <-out
	assert.False(t, open, "out is closed")
}

func TestBatchWithoutParser(t *testing.T) {
	out := make(chan address.Result)
	_, err := (&address.Batch{}).Run(context.Background(), nil, out)
	assert.ErrorIs(t, err, address.ErrCatalogNotInitialized)
}

func TestBatchCancelMidRun(t *testing.T) {
	p := newParser(t)

	in := make(chan address.Job, len(batchTexts))
	for i, text := range batchTexts {
		in <- address.Job{ID: fmt.Sprint(i), Text: text}
	}
	close(in)

	ctx, cancel := context.WithCancel(context.Background())
	out := make(chan address.Result)
	type runResult struct {
		stats address.BatchStats
		err   error
	}
	done := make(chan runResult, 1)
	go func() {
		stats, err := (&address.Batch{Parser: p, Workers: 2}).Run(ctx, in, out)
		done <- runResult{stats, err}
	}()

	<-out
	cancel()

	res := <-done
	assert.ErrorIs(t, res.err, context.Canceled)
	assert.GreaterOrEqual(t, res.stats.Processed, 1)
	assert.Equal(t, res.stats.Processed, res.stats.Interpreted+res.stats.Failed)
}
