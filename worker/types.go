package worker

import (
	"errors"
	"log/slog"
	"time"

	"github.com/katalvlaran/lcsall/lcs"
)

// Sentinel errors for the worker.
var (
	// ErrClosed is returned by Submit after Close.
	ErrClosed = errors.New("worker: closed")

	// ErrUnknownKind is returned for a request kind the worker does not serve.
	ErrUnknownKind = errors.New("worker: unknown request kind")

	// ErrBadConfig is returned by New for an unusable Config.
	ErrBadConfig = errors.New("worker: invalid config")
)

// Kind selects the computation a Request asks for.
type Kind string

const (
	KindComputeTable      Kind = "computeTable"
	KindComputeAllBounded Kind = "computeAllBounded"
)

// MessageKind tags a Message.
type MessageKind string

const (
	MsgProgress      MessageKind = "progress"
	MsgTableResult   MessageKind = "tableResult"
	MsgBoundedResult MessageKind = "boundedResult"
	MsgError         MessageKind = "error"
)

// Terminal reports whether k ends a message stream.
func (k MessageKind) Terminal() bool {
	return k != MsgProgress
}

// Limits are the enumeration ceilings of a computeAllBounded request.
// Zero means unlimited, except ProgressEvery where zero selects the default.
type Limits struct {
	MaxResults    int `json:"maxResults" yaml:"max_results"`
	TimeoutMS     int `json:"timeoutMs" yaml:"timeout_ms"`
	MaxStates     int `json:"maxStates" yaml:"max_states"`
	MaxFrontier   int `json:"maxFrontier" yaml:"max_frontier"`
	ProgressEvery int `json:"progressEvery" yaml:"progress_every"`
}

// DefaultLimits mirrors lcs.DefaultOptions.
func DefaultLimits() Limits {
	return Limits{
		MaxResults:    lcs.DefaultMaxResults,
		TimeoutMS:     int(lcs.DefaultTimeout / time.Millisecond),
		MaxFrontier:   lcs.DefaultMaxFrontier,
		ProgressEvery: lcs.DefaultProgressEvery,
	}
}

// Options translates l into lcs options. Negative values pass through and
// are rejected by lcs.Bounded.
func (l Limits) Options() []lcs.Option {
	opts := []lcs.Option{
		lcs.WithMaxResults(l.MaxResults),
		lcs.WithTimeout(time.Duration(l.TimeoutMS) * time.Millisecond),
		lcs.WithMaxStates(l.MaxStates),
		lcs.WithMaxFrontier(l.MaxFrontier),
	}
	if l.ProgressEvery != 0 {
		opts = append(opts, lcs.WithProgressEvery(l.ProgressEvery))
	}

	return opts
}

// LimitsPatch is a partial Limits sent with a request. Only the fields that
// are present replace the configured value; an explicit 0 still means
// unlimited for that one ceiling.
type LimitsPatch struct {
	MaxResults    *int `json:"maxResults,omitempty"`
	TimeoutMS     *int `json:"timeoutMs,omitempty"`
	MaxStates     *int `json:"maxStates,omitempty"`
	MaxFrontier   *int `json:"maxFrontier,omitempty"`
	ProgressEvery *int `json:"progressEvery,omitempty"`
}

// Apply returns base with the fields set in p replaced. A nil p returns base.
func (p *LimitsPatch) Apply(base Limits) Limits {
	if p == nil {
		return base
	}
	set := func(dst *int, v *int) {
		if v != nil {
			*dst = *v
		}
	}
	set(&base.MaxResults, p.MaxResults)
	set(&base.TimeoutMS, p.TimeoutMS)
	set(&base.MaxStates, p.MaxStates)
	set(&base.MaxFrontier, p.MaxFrontier)
	set(&base.ProgressEvery, p.ProgressEvery)

	return base
}

// Request is one unit of work.
type Request struct {
	ID   string `json:"id"`
	Kind Kind   `json:"type"`
	A    string `json:"a"`
	B    string `json:"b"`

	// Limits adjusts Config.Limits for computeAllBounded, field by field.
	Limits *LimitsPatch `json:"limits,omitempty"`
}

// Message is one element of a request's output stream.
type Message struct {
	ID       string         `json:"id"`
	Kind     MessageKind    `json:"type"`
	Status   string         `json:"status,omitempty"`
	Progress *ProgressInfo  `json:"progress,omitempty"`
	Table    *TableResult   `json:"table,omitempty"`
	Bounded  *BoundedResult `json:"bounded,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// ProgressInfo carries the counters of an enumeration in flight.
type ProgressInfo struct {
	Found     int   `json:"found"`
	Explored  int   `json:"explored"`
	Frontier  int   `json:"frontier"`
	ElapsedMS int64 `json:"elapsedMs"`
}

// TableResult answers computeTable.
type TableResult struct {
	Rows       [][]int `json:"rows"`
	Length     int     `json:"length"`
	LCS        string  `json:"lcs"`
	Complexity string  `json:"complexity"`
}

// BoundedResult answers computeAllBounded.
type BoundedResult struct {
	LCS         []string `json:"lcs"`
	Count       int      `json:"count"`
	Length      int      `json:"length"`
	Reason      string   `json:"reason"`
	Truncated   bool     `json:"truncated"`
	Explored    int      `json:"explored"`
	MaxFrontier int      `json:"maxFrontier"`
	ElapsedMS   int64    `json:"elapsedMs"`
	Complexity  string   `json:"complexity"`
}

// Config configures a Worker.
type Config struct {
	// CacheSize is the number of DP tables kept. Must be positive.
	CacheSize int `yaml:"cache_size"`

	// MaxConcurrent bounds the requests computing at once. Must be positive.
	MaxConcurrent int `yaml:"max_concurrent"`

	// Buffer is the progress capacity of each output channel.
	Buffer int `yaml:"buffer"`

	// Limits are the default ceilings for computeAllBounded.
	Limits Limits `yaml:"limits"`

	Logger *slog.Logger `yaml:"-"`
}

// DefaultConfig returns a Config suitable for a single process.
func DefaultConfig() Config {
	return Config{
		CacheSize:     128,
		MaxConcurrent: 4,
		Buffer:        32,
		Limits:        DefaultLimits(),
	}
}

// Advisory thresholds for computeAllBounded.
const (
	longSequence = 20
	highBlowUp   = 15
)
