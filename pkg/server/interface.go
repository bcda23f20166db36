/*
Package server implements msgpack IPC for address parsing.

Clients write msgpack maps to stdin and read one msgpack map per request from
stdout. Logs go to stderr. Right after start the server writes a status
message:

	{"status": "ready"}

# Requests

Every request carries an id, echoed in the response, and a command:

	{"id": "req_001", "cmd": "parse", "t": "广东省广州市天河区体育西路123号"}
	{"id": "req_002", "cmd": "batch", "ts": ["山东青岛市南区宁德路", "北京市朝阳区建国路88号"]}
	{"id": "req_003", "cmd": "health"}
	{"id": "req_004", "cmd": "stats"}

A request without cmd but with t is a parse request.

# Responses

parse answers with the flattened record and the time taken in microseconds:

	{"id": "req_001", "r": {"ok": true, "pid": 440000, "p": "广东省", ...}, "tt": 41}

batch answers with the records in request order. Failures to interpret an
address are not errors: the record comes back with "ok": false and the
unconsumed text. Malformed requests, unknown commands and oversize batches
answer with an ErrorResponse carrying code 400.
*/
package server

import (
	"github.com/bastiangx/addrserve/pkg/address"
	"github.com/bastiangx/addrserve/pkg/cache"
	"github.com/bastiangx/addrserve/pkg/index"
)

// Commands understood by the server.
const (
	CmdParse  = "parse"
	CmdBatch  = "batch"
	CmdHealth = "health"
	CmdStats  = "stats"
)

// Request - any client request
type Request struct {
	ID    string   `msgpack:"id"`
	Cmd   string   `msgpack:"cmd,omitempty"`
	Text  string   `msgpack:"t,omitempty"`
	Texts []string `msgpack:"ts,omitempty"`
}

// ParseResponse - one parsed address
type ParseResponse struct {
	ID        string       `msgpack:"id"`
	Record    address.View `msgpack:"r"`
	Cached    bool         `msgpack:"cached,omitempty"`
	TimeTaken int64        `msgpack:"tt"`
}

// BatchResponse - parsed addresses in request order
type BatchResponse struct {
	ID          string         `msgpack:"id"`
	Records     []address.View `msgpack:"rs"`
	Count       int            `msgpack:"n"`
	Interpreted int            `msgpack:"ok"`
	TimeTaken   int64          `msgpack:"tt"`
}

// StatusResponse - ready and health messages
type StatusResponse struct {
	ID     string `msgpack:"id,omitempty"`
	Status string `msgpack:"status"`
}

// StatsResponse - index, cache and traffic counters
type StatsResponse struct {
	ID       string       `msgpack:"id"`
	Regions  int          `msgpack:"regions"`
	Index    index.Stats  `msgpack:"index"`
	Cache    *cache.Stats `msgpack:"cache,omitempty"`
	Requests int64        `msgpack:"requests"`
	Uptime   int64        `msgpack:"uptime_s"`
}

// ErrorResponse holds basic error information for a failed request
type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
