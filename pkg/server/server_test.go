package server_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/bastiangx/addrserve/internal/fixture"
	"github.com/bastiangx/addrserve/pkg/address"
	"github.com/bastiangx/addrserve/pkg/cache"
	"github.com/bastiangx/addrserve/pkg/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func newParser(t *testing.T) *address.Parser {
	t.Helper()
	cat, idx := fixture.Index()
	p, err := address.NewParser(idx, cat)
	require.NoError(t, err)
	return p
}

// run feeds reqs to a server and returns a decoder over everything it wrote,
// positioned after the ready message.
func run(t *testing.T, reqs []any, opts ...server.Option) *msgpack.Decoder {
	t.Helper()
	var in, out bytes.Buffer
	enc := msgpack.NewEncoder(&in)
	for _, r := range reqs {
		require.NoError(t, enc.Encode(r))
	}

	opts = append(opts, server.WithIO(&in, &out))
	s, err := server.NewServer(newParser(t), opts...)
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))

	dec := msgpack.NewDecoder(&out)
	var ready server.StatusResponse
	require.NoError(t, dec.Decode(&ready))
	require.Equal(t, "ready", ready.Status)
	return dec
}

func TestParse(t *testing.T) {
	dec := run(t, []any{
		server.Request{ID: "1", Cmd: server.CmdParse, Text: "广东省广州市天河区体育西路123号"},
		server.Request{ID: "2", Text: "山东青岛市南区宁德路金梦花园"},
	})

	var resp server.ParseResponse
	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, "1", resp.ID)
	assert.True(t, resp.Record.Interpreted)
	assert.Equal(t, int64(440000), resp.Record.ProvinceID)
	assert.Equal(t, int64(440100), resp.Record.CityID)
	assert.Equal(t, int64(440106), resp.Record.CountyID)
	assert.Equal(t, "体育西路", resp.Record.Road)
	assert.Equal(t, "123号", resp.Record.RoadNum)
	assert.False(t, resp.Cached)

	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, "2", resp.ID, "text without cmd is a parse request")
	assert.Equal(t, int64(370202), resp.Record.CountyID)
	assert.Equal(t, "宁德路", resp.Record.Road)
	assert.Equal(t, "金梦花园", resp.Record.Text)
}

func TestParseCached(t *testing.T) {
	c := cache.NewLRU(16, time.Hour)
	text := "北京市朝阳区建国路88号"
	dec := run(t, []any{
		server.Request{ID: "a", Cmd: server.CmdParse, Text: text},
		server.Request{ID: "b", Cmd: server.CmdParse, Text: text},
		server.Request{ID: "s", Cmd: server.CmdStats},
	}, server.WithCache(c))

	var first, second server.ParseResponse
	require.NoError(t, dec.Decode(&first))
	require.NoError(t, dec.Decode(&second))
	assert.False(t, first.Cached)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Record, second.Record)

	var stats server.StatsResponse
	require.NoError(t, dec.Decode(&stats))
	require.NotNil(t, stats.Cache)
	assert.Equal(t, int64(1), stats.Cache.Hits)
	assert.Equal(t, int64(1), stats.Cache.Misses)
	assert.Equal(t, 1, stats.Cache.Entries)
}

func TestBatch(t *testing.T) {
	texts := []string{
		"青海海西格尔木市河西街道郭镇盐桥村",
		"金梦花园3栋",
		"新疆阿克苏地区阿拉尔市新苑祥和小区",
	}
	dec := run(t, []any{
		server.Request{ID: "b1", Cmd: server.CmdBatch, Texts: texts},
	}, server.WithWorkers(2))

	var resp server.BatchResponse
	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, "b1", resp.ID)
	require.Len(t, resp.Records, len(texts))
	assert.Equal(t, 3, resp.Count)
	assert.Equal(t, 2, resp.Interpreted)
	for i, text := range texts {
		assert.Equal(t, text, resp.Records[i].Raw, "records keep request order")
	}
	assert.Equal(t, int64(632801), resp.Records[0].CountyID)
	assert.False(t, resp.Records[1].Interpreted)
	assert.Equal(t, int64(659002), resp.Records[2].CountyID)
}

func TestHealthAndStats(t *testing.T) {
	dec := run(t, []any{
		server.Request{ID: "h", Cmd: server.CmdHealth},
		server.Request{ID: "s", Cmd: server.CmdStats},
	})

	var health server.StatusResponse
	require.NoError(t, dec.Decode(&health))
	assert.Equal(t, server.StatusResponse{ID: "h", Status: "ok"}, health)

	var stats server.StatsResponse
	require.NoError(t, dec.Decode(&stats))
	assert.Equal(t, "s", stats.ID)
	assert.Equal(t, fixture.Catalog().Len(), stats.Regions)
	assert.Equal(t, int64(2), stats.Requests)
	assert.Positive(t, stats.Index.Terms)
	assert.Nil(t, stats.Cache)
}

func TestErrors(t *testing.T) {
	dec := run(t, []any{
		server.Request{ID: "x", Cmd: "geocode"},
		"not a request",
		server.Request{ID: "p", Cmd: server.CmdParse},
		server.Request{ID: "b", Cmd: server.CmdBatch},
		server.Request{ID: "big", Cmd: server.CmdBatch, Texts: []string{"a", "b", "c"}},
		server.Request{ID: "h", Cmd: server.CmdHealth},
	}, server.WithMaxBatch(2))

	for _, id := range []string{"x", "", "p", "b", "big"} {
		var resp server.ErrorResponse
		require.NoError(t, dec.Decode(&resp))
		assert.Equal(t, id, resp.ID)
		assert.Equal(t, 400, resp.Code)
		assert.NotEmpty(t, resp.Error)
	}

	var health server.StatusResponse
	require.NoError(t, dec.Decode(&health))
	assert.Equal(t, "ok", health.Status, "server keeps serving after bad requests")
}

func TestNewServerWithoutParser(t *testing.T) {
	_, err := server.NewServer(nil)
	assert.ErrorIs(t, err, address.ErrCatalogNotInitialized)
}
