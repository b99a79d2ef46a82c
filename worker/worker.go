package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/katalvlaran/lcsall/lcs"
)

var tracer = otel.Tracer("lcsall.worker")

// Worker executes requests concurrently, each on its own goroutine.
type Worker struct {
	cfg    Config
	logger *slog.Logger
	cache  *lru.Cache[string, *lcs.Table]
	sem    chan struct{}

	// base is cancelled by Close and parents every run.
	base   context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// New returns a Worker for cfg. A nil Logger discards logs.
//
// Errors:
//   - ErrBadConfig if CacheSize or MaxConcurrent is not positive, or
//     Buffer is negative.
func New(cfg Config) (*Worker, error) {
	if cfg.CacheSize <= 0 || cfg.MaxConcurrent <= 0 || cfg.Buffer < 0 {
		return nil, fmt.Errorf("%w: cache_size=%d max_concurrent=%d buffer=%d",
			ErrBadConfig, cfg.CacheSize, cfg.MaxConcurrent, cfg.Buffer)
	}
	cache, err := lru.New[string, *lcs.Table](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadConfig, err)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	base, cancel := context.WithCancel(context.Background())

	return &Worker{
		cfg:    cfg,
		logger: logger.With("component", "worker"),
		cache:  cache,
		sem:    make(chan struct{}, cfg.MaxConcurrent),
		base:   base,
		cancel: cancel,
	}, nil
}

// Submit starts req and returns its message stream.
//
// The request's ID is echoed on every message; an empty ID is replaced by
// a fresh UUID before the run starts. Cancelling ctx stops the run.
//
// Errors:
//   - ErrClosed after Close.
//   - ErrUnknownKind for an unsupported req.Kind.
func (w *Worker) Submit(ctx context.Context, req Request) (<-chan Message, error) {
	switch req.Kind {
	case KindComputeTable, KindComputeAllBounded:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, req.Kind)
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil, ErrClosed
	}

	// One slot stays free for the terminal message.
	out := make(chan Message, w.cfg.Buffer+1)
	w.wg.Add(1)
	go w.run(ctx, req, out)

	return out, nil
}

// Close cancels every in-flight run and waits for them to finish.
// Close is idempotent.
func (w *Worker) Close() {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()

	w.cancel()
	w.wg.Wait()
}

// stream is the sending side of one request.
type stream struct {
	id  string
	out chan Message
}

// progress sends a progress message unless only the terminal slot is left.
// Only the run goroutine sends, so the length check cannot race a send.
func (s *stream) progress(status string, p *ProgressInfo) {
	if len(s.out) >= cap(s.out)-1 {
		return
	}
	s.out <- Message{ID: s.id, Kind: MsgProgress, Status: status, Progress: p}
}

func (s *stream) finish(m Message) {
	m.ID = s.id
	s.out <- m
	close(s.out)
}

func (w *Worker) run(ctx context.Context, req Request, out chan Message) {
	defer w.wg.Done()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(w.base, cancel)
	defer stop()

	ctx, span := tracer.Start(ctx, "worker."+string(req.Kind),
		trace.WithAttributes(
			attribute.String("lcs.request_id", req.ID),
			attribute.Int("lcs.len_a", utf8.RuneCountInString(req.A)),
			attribute.Int("lcs.len_b", utf8.RuneCountInString(req.B)),
		),
	)
	defer span.End()

	log := w.logger.With("id", req.ID, "kind", req.Kind)
	s := &stream{id: req.ID, out: out}

	select {
	case w.sem <- struct{}{}:
		defer func() { <-w.sem }()
	case <-ctx.Done():
		w.fail(span, log, s, ctx.Err())
		return
	}

	start := time.Now()
	log.Debug("request started")

	var (
		msg Message
		err error
	)
	switch req.Kind {
	case KindComputeTable:
		msg, err = w.computeTable(ctx, req, s)
	case KindComputeAllBounded:
		msg, err = w.computeAllBounded(ctx, req, s)
	}
	if err != nil {
		w.fail(span, log, s, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	log.Debug("request finished", "type", msg.Kind, "duration", time.Since(start))
	s.finish(msg)
}

func (w *Worker) fail(span trace.Span, log *slog.Logger, s *stream, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	log.Warn("request failed", "error", err)
	s.finish(Message{Kind: MsgError, Error: err.Error()})
}

func (w *Worker) computeTable(ctx context.Context, req Request, s *stream) (Message, error) {
	a, b := []rune(req.A), []rune(req.B)
	s.progress("computing DP table", nil)
	t := w.table(a, b)
	if err := ctx.Err(); err != nil {
		return Message{}, err
	}

	one, err := lcs.Reconstruct(a, b, t)
	if err != nil {
		return Message{}, err
	}

	return Message{
		Kind: MsgTableResult,
		Table: &TableResult{
			Rows:       t.Grid(),
			Length:     t.Length(),
			LCS:        string(one),
			Complexity: fmt.Sprintf("O(%d × %d) = O(%d)", len(a), len(b), len(a)*len(b)),
		},
	}, nil
}

func (w *Worker) computeAllBounded(ctx context.Context, req Request, s *stream) (Message, error) {
	a, b := []rune(req.A), []rune(req.B)
	n, m := len(a), len(b)
	if n > longSequence || m > longSequence {
		s.progress(fmt.Sprintf("long sequences detected (%d×%d), limiting results", n, m), nil)
	}
	if min(n, m) > highBlowUp {
		s.progress("high risk of many LCS, applying strict limits", nil)
	}

	opts := append(req.Limits.Apply(w.cfg.Limits).Options(),
		lcs.WithContext(ctx),
		lcs.WithOnProgress(func(p lcs.Progress) {
			s.progress(p.Message, &ProgressInfo{
				Found:     p.Found,
				Explored:  p.Explored,
				Frontier:  p.Frontier,
				ElapsedMS: p.Elapsed.Milliseconds(),
			})
		}),
	)

	res, err := lcs.BoundedFromTable(a, b, w.table(a, b), opts...)
	if err != nil {
		return Message{}, err
	}

	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String("lcs.reason", res.Stats.Reason.String()),
		attribute.Int("lcs.found", res.Stats.Found),
		attribute.Int("lcs.explored", res.Stats.Explored),
	)

	return Message{
		Kind: MsgBoundedResult,
		Bounded: &BoundedResult{
			LCS:         res.LCS,
			Count:       len(res.LCS),
			Length:      res.Length,
			Reason:      res.Stats.Reason.String(),
			Truncated:   res.Stats.Reason.Truncated(),
			Explored:    res.Stats.Explored,
			MaxFrontier: res.Stats.MaxFrontier,
			ElapsedMS:   res.Stats.Elapsed.Milliseconds(),
			Complexity:  fmt.Sprintf("O(%d × %d × 2^min(%d, %d))", n, m, n, m),
		},
	}, nil
}

// table returns the cached DP table for (a, b), building it on a miss.
func (w *Worker) table(a, b []rune) *lcs.Table {
	key := cacheKey(a, b)
	if t, ok := w.cache.Get(key); ok {
		return t
	}
	t := lcs.BuildTable(a, b)
	w.cache.Add(key, t)

	return t
}

// cacheKey prefixes a's length so that no two pairs share a key.
func cacheKey(a, b []rune) string {
	return fmt.Sprintf("%d:%s%s", len(a), string(a), string(b))
}

// CacheLen reports the number of cached tables.
func (w *Worker) CacheLen() int {
	return w.cache.Len()
}
