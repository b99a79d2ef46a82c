package worker_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/katalvlaran/lcsall/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sevenLCS = []string{"ijiji", "ijiki", "ijkji", "ikiji", "ikiki", "ikjii", "ikjki"}

func newWorker(t *testing.T, mutate ...func(*worker.Config)) *worker.Worker {
	t.Helper()
	cfg := worker.DefaultConfig()
	for _, m := range mutate {
		m(&cfg)
	}
	w, err := worker.New(cfg)
	require.NoError(t, err)
	t.Cleanup(w.Close)

	return w
}

// collect drains ch and checks the stream shape: progress messages, then
// exactly one terminal message, then close.
func collect(t *testing.T, ch <-chan worker.Message) (progress []worker.Message, last worker.Message) {
	t.Helper()
	timeout := time.After(10 * time.Second)
	var all []worker.Message
	for {
		select {
		case m, ok := <-ch:
			if !ok {
				require.NotEmpty(t, all, "stream closed without a terminal message")
				last = all[len(all)-1]
				require.True(t, last.Kind.Terminal(), "last message %q is not terminal", last.Kind)
				for _, p := range all[:len(all)-1] {
					require.Equal(t, worker.MsgProgress, p.Kind)
				}
				return all[:len(all)-1], last
			}
			all = append(all, m)
		case <-timeout:
			t.Fatal("stream did not close")
		}
	}
}

func intp(v int) *int { return &v }

// unbounded lifts every ceiling for one request.
func unbounded() *worker.LimitsPatch {
	return &worker.LimitsPatch{MaxResults: intp(0), TimeoutMS: intp(0), MaxStates: intp(0), MaxFrontier: intp(0)}
}

func statuses(msgs []worker.Message) string {
	var sb strings.Builder
	for _, m := range msgs {
		sb.WriteString(m.Status)
		sb.WriteString("\n")
	}
	return sb.String()
}

// TestNew_BadConfig verifies that unusable configs are rejected.
func TestNew_BadConfig(t *testing.T) {
	for _, cfg := range []worker.Config{
		{CacheSize: 0, MaxConcurrent: 1},
		{CacheSize: 1, MaxConcurrent: 0},
		{CacheSize: 1, MaxConcurrent: 1, Buffer: -1},
	} {
		_, err := worker.New(cfg)
		assert.ErrorIs(t, err, worker.ErrBadConfig)
	}
}

// TestSubmit_UnknownKind is rejected synchronously.
func TestSubmit_UnknownKind(t *testing.T) {
	w := newWorker(t)
	_, err := w.Submit(context.Background(), worker.Request{Kind: "nope", A: "a", B: "a"})
	assert.ErrorIs(t, err, worker.ErrUnknownKind)
}

// TestComputeTable returns the grid, length, one LCS and complexity note.
func TestComputeTable(t *testing.T) {
	w := newWorker(t)
	ch, err := w.Submit(context.Background(), worker.Request{ID: "r1", Kind: worker.KindComputeTable, A: "abc", B: "ac"})
	require.NoError(t, err)

	_, last := collect(t, ch)
	require.Equal(t, worker.MsgTableResult, last.Kind)
	assert.Equal(t, "r1", last.ID)
	require.NotNil(t, last.Table)
	assert.Equal(t, [][]int{{0, 0, 0}, {0, 1, 1}, {0, 1, 1}, {0, 1, 2}}, last.Table.Rows)
	assert.Equal(t, 2, last.Table.Length)
	assert.Equal(t, "ac", last.Table.LCS)
	assert.Equal(t, "O(3 × 2) = O(6)", last.Table.Complexity)
}

// TestSubmit_GeneratesID fills in a UUID for requests without one.
func TestSubmit_GeneratesID(t *testing.T) {
	w := newWorker(t)
	ch, err := w.Submit(context.Background(), worker.Request{Kind: worker.KindComputeTable, A: "ab", B: "ba"})
	require.NoError(t, err)

	progress, last := collect(t, ch)
	_, err = uuid.Parse(last.ID)
	assert.NoError(t, err)
	for _, p := range progress {
		assert.Equal(t, last.ID, p.ID)
	}
}

// TestComputeAllBounded completes on a small pair.
func TestComputeAllBounded(t *testing.T) {
	w := newWorker(t)
	ch, err := w.Submit(context.Background(), worker.Request{Kind: worker.KindComputeAllBounded, A: "ijkijkii", B: "ikjikji"})
	require.NoError(t, err)

	progress, last := collect(t, ch)
	require.Equal(t, worker.MsgBoundedResult, last.Kind)
	require.NotNil(t, last.Bounded)
	assert.Equal(t, sevenLCS, last.Bounded.LCS)
	assert.Equal(t, 7, last.Bounded.Count)
	assert.Equal(t, 5, last.Bounded.Length)
	assert.Equal(t, "completed", last.Bounded.Reason)
	assert.False(t, last.Bounded.Truncated)
	assert.Equal(t, "O(8 × 7 × 2^min(8, 7))", last.Bounded.Complexity)

	s := statuses(progress)
	assert.Contains(t, s, "starting search")
	assert.Contains(t, s, "search complete. 7 LCS found")
}

// TestComputeAllBounded_Limits applies per-request ceilings.
func TestComputeAllBounded_Limits(t *testing.T) {
	w := newWorker(t)
	ch, err := w.Submit(context.Background(), worker.Request{
		Kind: worker.KindComputeAllBounded, A: "ijkijkii", B: "ikjikji",
		Limits: &worker.LimitsPatch{MaxResults: intp(2)},
	})
	require.NoError(t, err)

	_, last := collect(t, ch)
	require.Equal(t, worker.MsgBoundedResult, last.Kind)
	assert.Equal(t, 2, last.Bounded.Count)
	assert.Equal(t, "countLimitReached", last.Bounded.Reason)
	assert.True(t, last.Bounded.Truncated)
	assert.Subset(t, sevenLCS, last.Bounded.LCS)
}

// TestLimitsPatch_Apply replaces only the fields a request sends.
func TestLimitsPatch_Apply(t *testing.T) {
	base := worker.DefaultLimits()
	assert.Equal(t, base, (*worker.LimitsPatch)(nil).Apply(base))

	var p worker.LimitsPatch
	require.NoError(t, json.Unmarshal([]byte(`{"maxResults":3000000}`), &p))
	got := p.Apply(base)
	assert.Equal(t, 3000000, got.MaxResults)
	assert.Equal(t, base.TimeoutMS, got.TimeoutMS)
	assert.Equal(t, base.MaxFrontier, got.MaxFrontier)
	assert.Equal(t, base.ProgressEvery, got.ProgressEvery)

	p = worker.LimitsPatch{}
	require.NoError(t, json.Unmarshal([]byte(`{"timeoutMs":0,"maxStates":7}`), &p))
	got = p.Apply(base)
	assert.Equal(t, 0, got.TimeoutMS)
	assert.Equal(t, 7, got.MaxStates)
	assert.Equal(t, base.MaxResults, got.MaxResults)
}

// TestComputeAllBounded_PartialLimitsKeepTimeout checks that raising one
// ceiling leaves the configured time budget in force.
func TestComputeAllBounded_PartialLimitsKeepTimeout(t *testing.T) {
	w := newWorker(t, func(c *worker.Config) {
		c.Limits.TimeoutMS = 100
		c.Limits.MaxFrontier = 0
	})
	ch, err := w.Submit(context.Background(), worker.Request{
		Kind:   worker.KindComputeAllBounded,
		A:      strings.Repeat("abc", 14),
		B:      strings.Repeat("cba", 14),
		Limits: &worker.LimitsPatch{MaxResults: intp(3000000)},
	})
	require.NoError(t, err)

	start := time.Now()
	_, last := collect(t, ch)
	require.Equal(t, worker.MsgBoundedResult, last.Kind, last.Error)
	assert.Equal(t, "timeLimitReached", last.Bounded.Reason)
	assert.True(t, last.Bounded.Truncated)
	assert.Less(t, time.Since(start), 5*time.Second)
}

// TestComputeAllBounded_BadLimits reports invalid ceilings as an error message.
func TestComputeAllBounded_BadLimits(t *testing.T) {
	w := newWorker(t)
	ch, err := w.Submit(context.Background(), worker.Request{
		Kind: worker.KindComputeAllBounded, A: "ab", B: "ba", Limits: &worker.LimitsPatch{MaxResults: intp(-1)},
	})
	require.NoError(t, err)

	_, last := collect(t, ch)
	assert.Equal(t, worker.MsgError, last.Kind)
	assert.Contains(t, last.Error, "invalid option")
}

// TestComputeAllBounded_Advisories warns about long and blow-up-prone inputs.
func TestComputeAllBounded_Advisories(t *testing.T) {
	w := newWorker(t)
	ch, err := w.Submit(context.Background(), worker.Request{
		Kind:   worker.KindComputeAllBounded,
		A:      strings.Repeat("ab", 11),
		B:      strings.Repeat("ba", 11),
		Limits: &worker.LimitsPatch{MaxResults: intp(1)},
	})
	require.NoError(t, err)

	progress, last := collect(t, ch)
	require.Equal(t, worker.MsgBoundedResult, last.Kind)
	assert.Equal(t, 1, last.Bounded.Count)

	s := statuses(progress)
	assert.Contains(t, s, "long sequences detected (22×22)")
	assert.Contains(t, s, "high risk of many LCS")
}

// TestSubmit_Cancelled discards results of a cancelled run.
func TestSubmit_Cancelled(t *testing.T) {
	w := newWorker(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, kind := range []worker.Kind{worker.KindComputeTable, worker.KindComputeAllBounded} {
		ch, err := w.Submit(ctx, worker.Request{Kind: kind, A: "ab", B: "ba"})
		require.NoError(t, err)

		_, last := collect(t, ch)
		assert.Equal(t, worker.MsgError, last.Kind, kind)
		assert.Contains(t, last.Error, context.Canceled.Error())
		assert.Nil(t, last.Table)
		assert.Nil(t, last.Bounded)
	}
}

// TestSubmit_CancelInFlight stops an unbounded blow-up mid-run.
func TestSubmit_CancelInFlight(t *testing.T) {
	w := newWorker(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := w.Submit(ctx, worker.Request{
		Kind:   worker.KindComputeAllBounded,
		A:      strings.Repeat("ab", 20),
		B:      strings.Repeat("ba", 20),
		Limits: unbounded(),
	})
	require.NoError(t, err)

	time.AfterFunc(50*time.Millisecond, cancel)
	_, last := collect(t, ch)
	assert.Equal(t, worker.MsgError, last.Kind)
	assert.Contains(t, last.Error, context.Canceled.Error())
}

// TestClose cancels in-flight runs and rejects new ones.
func TestClose(t *testing.T) {
	w, err := worker.New(worker.DefaultConfig())
	require.NoError(t, err)

	ch, err := w.Submit(context.Background(), worker.Request{
		Kind:   worker.KindComputeAllBounded,
		A:      strings.Repeat("ab", 20),
		B:      strings.Repeat("ba", 20),
		Limits: unbounded(),
	})
	require.NoError(t, err)

	w.Close()
	_, last := collect(t, ch)
	assert.Equal(t, worker.MsgError, last.Kind)

	_, err = w.Submit(context.Background(), worker.Request{Kind: worker.KindComputeTable})
	assert.ErrorIs(t, err, worker.ErrClosed)
	w.Close()
}

// TestTableCache reuses the table across request kinds.
func TestTableCache(t *testing.T) {
	w := newWorker(t)
	for _, kind := range []worker.Kind{worker.KindComputeTable, worker.KindComputeAllBounded} {
		ch, err := w.Submit(context.Background(), worker.Request{Kind: kind, A: "abc", B: "ac"})
		require.NoError(t, err)
		collect(t, ch)
	}
	assert.Equal(t, 1, w.CacheLen())

	ch, err := w.Submit(context.Background(), worker.Request{Kind: worker.KindComputeTable, A: "ab", B: "cac"})
	require.NoError(t, err)
	collect(t, ch)
	assert.Equal(t, 2, w.CacheLen())
}

// TestMaxConcurrent queues requests beyond the limit.
func TestMaxConcurrent(t *testing.T) {
	w := newWorker(t, func(c *worker.Config) { c.MaxConcurrent = 1 })

	var chans []<-chan worker.Message
	for i := 0; i < 5; i++ {
		ch, err := w.Submit(context.Background(), worker.Request{Kind: worker.KindComputeAllBounded, A: "ijkijkii", B: "ikjikji"})
		require.NoError(t, err)
		chans = append(chans, ch)
	}
	for _, ch := range chans {
		_, last := collect(t, ch)
		require.Equal(t, worker.MsgBoundedResult, last.Kind)
		assert.Equal(t, sevenLCS, last.Bounded.LCS)
	}
}

// TestSlowConsumer never blocks the run on progress.
func TestSlowConsumer(t *testing.T) {
	w := newWorker(t, func(c *worker.Config) { c.Buffer = 0 })
	ch, err := w.Submit(context.Background(), worker.Request{
		Kind: worker.KindComputeAllBounded, A: "ijkijkii", B: "ikjikji",
		Limits: &worker.LimitsPatch{ProgressEvery: intp(1)},
	})
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	progress, last := collect(t, ch)
	assert.Empty(t, progress)
	assert.Equal(t, worker.MsgBoundedResult, last.Kind)
}
