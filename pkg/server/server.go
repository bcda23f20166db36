package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/bastiangx/addrserve/internal/logger"
	"github.com/bastiangx/addrserve/pkg/address"
	"github.com/bastiangx/addrserve/pkg/cache"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

const DefaultMaxBatch = 1000

// Server handles the IPC for address parsing
type Server struct {
	parser   *address.Parser
	cache    cache.Cache
	maxBatch int
	workers  int

	dec *msgpack.Decoder
	out *bufio.Writer
	enc *msgpack.Encoder
	log *log.Logger

	started  time.Time
	requests atomic.Int64
}

type Option func(*Server)

// WithIO replaces stdin/stdout, mainly for tests and embedding.
func WithIO(r io.Reader, w io.Writer) Option {
	return func(s *Server) {
		s.dec = msgpack.NewDecoder(bufio.NewReader(r))
		s.out = bufio.NewWriter(w)
	}
}

// WithCache enables result caching. A nil cache disables it.
func WithCache(c cache.Cache) Option {
	return func(s *Server) { s.cache = c }
}

// WithMaxBatch bounds the number of texts in one batch request.
func WithMaxBatch(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBatch = n
		}
	}
}

// WithWorkers sets the batch worker count; 0 means one per CPU.
func WithWorkers(n int) Option {
	return func(s *Server) { s.workers = n }
}

// NewServer creates a parsing server using stdin/stdout for IPC
func NewServer(parser *address.Parser, opts ...Option) (*Server, error) {
	if parser == nil {
		return nil, address.ErrCatalogNotInitialized
	}
	s := &Server{
		parser:   parser,
		maxBatch: DefaultMaxBatch,
		log:      logger.New("server"),
		started:  time.Now(),
	}
	WithIO(os.Stdin, os.Stdout)(s)
	for _, opt := range opts {
		opt(s)
	}
	s.enc = msgpack.NewEncoder(s.out)
	return s, nil
}

// Start reports ready, then serves requests until the input ends or ctx is
// done.
func (s *Server) Start(ctx context.Context) error {
	s.log.Debug("Starting server")
	if err := s.send(StatusResponse{Status: "ready"}); err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		// Decode raw first so a request of the wrong shape does not
		// desync the stream.
		raw, err := s.dec.DecodeRaw()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.log.Debug("Input closed, stopping")
				return nil
			}
			s.log.Errorf("Reading request: %v", err)
			return err
		}
		s.requests.Add(1)

		var req Request
		if err := msgpack.Unmarshal(raw, &req); err != nil {
			s.log.Warnf("Invalid request: %v", err)
			if err := s.sendError("", "invalid msgpack request", 400); err != nil {
				return err
			}
			continue
		}
		if err := s.handleRequest(ctx, req); err != nil {
			return err
		}
	}
}

// handleRequest answers req. Only write failures are returned.
func (s *Server) handleRequest(ctx context.Context, req Request) error {
	cmd := req.Cmd
	if cmd == "" && req.Text != "" {
		cmd = CmdParse
	}
	switch cmd {
	case CmdParse:
		return s.handleParse(ctx, req)
	case CmdBatch:
		return s.handleBatch(ctx, req)
	case CmdHealth:
		return s.send(StatusResponse{ID: req.ID, Status: "ok"})
	case CmdStats:
		return s.send(s.stats(req.ID))
	}
	return s.sendError(req.ID, fmt.Sprintf("unknown command: %q", req.Cmd), 400)
}

func (s *Server) handleParse(ctx context.Context, req Request) error {
	if req.Text == "" {
		return s.sendError(req.ID, "missing 't' parameter", 400)
	}
	start := time.Now()
	view, cached := s.parse(ctx, req.Text)
	return s.send(ParseResponse{
		ID:        req.ID,
		Record:    view,
		Cached:    cached,
		TimeTaken: time.Since(start).Microseconds(),
	})
}

func (s *Server) parse(ctx context.Context, text string) (address.View, bool) {
	if s.cache != nil {
		if b, ok := s.cache.Get(ctx, text); ok {
			var view address.View
			if err := msgpack.Unmarshal(b, &view); err == nil {
				return view, true
			}
			s.log.Warnf("Dropping undecodable cache entry for %q", text)
		}
	}
	view := s.parser.Parse(text).View()
	if s.cache != nil {
		if b, err := msgpack.Marshal(&view); err == nil {
			s.cache.Set(ctx, text, b)
		}
	}
	return view, false
}

func (s *Server) handleBatch(ctx context.Context, req Request) error {
	if len(req.Texts) == 0 {
		return s.sendError(req.ID, "missing 'ts' parameter", 400)
	}
	if len(req.Texts) > s.maxBatch {
		return s.sendError(req.ID, fmt.Sprintf("batch of %d exceeds maximum of %d", len(req.Texts), s.maxBatch), 400)
	}

	start := time.Now()
	in := make(chan address.Job)
	out := make(chan address.Result, len(req.Texts))
	go func() {
		defer close(in)
		for i, text := range req.Texts {
			select {
			case in <- address.Job{ID: strconv.Itoa(i), Text: text}:
			case <-ctx.Done():
				return
			}
		}
	}()

	b := &address.Batch{Parser: s.parser, Workers: s.workers}
	stats, err := b.Run(ctx, in, out)
	if err != nil {
		return s.sendError(req.ID, err.Error(), 500)
	}

	views := make([]address.View, len(req.Texts))
	for res := range out {
		i, _ := strconv.Atoi(res.ID)
		views[i] = res.Record.View()
	}
	return s.send(BatchResponse{
		ID:          req.ID,
		Records:     views,
		Count:       len(views),
		Interpreted: stats.Interpreted,
		TimeTaken:   time.Since(start).Microseconds(),
	})
}

func (s *Server) stats(id string) StatsResponse {
	resp := StatsResponse{
		ID:       id,
		Regions:  s.parser.Catalog().Len(),
		Index:    s.parser.Index().Stats(),
		Requests: s.requests.Load(),
		Uptime:   int64(time.Since(s.started).Seconds()),
	}
	if s.cache != nil {
		cs := s.cache.Stats()
		resp.Cache = &cs
	}
	return resp
}

// send encodes one response and flushes it.
func (s *Server) send(response any) error {
	if err := s.enc.Encode(response); err != nil {
		s.log.Errorf("Encoding response: %v", err)
		return err
	}
	return s.out.Flush()
}

func (s *Server) sendError(id, message string, code int) error {
	return s.send(ErrorResponse{ID: id, Error: message, Code: code})
}
