package server

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/katalvlaran/lcsall/worker"
)

const (
	wsWriteWait = 10 * time.Second
	wsPongWait  = 60 * time.Second
	wsPingEvery = (wsPongWait * 9) / 10
)

// Protocol-level message types, in addition to worker.MessageKind.
const (
	typeCancel = "cancel"
	typePing   = "ping"

	msgPong worker.MessageKind = "pong"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

// wsInbound is a client message.
type wsInbound struct {
	Type   string         `json:"type"`
	ID     string         `json:"id,omitempty"`
	A      string         `json:"a"`
	B      string         `json:"b"`
	Limits *worker.LimitsPatch `json:"limits,omitempty"`
}

// wsSession is the state of one connection.
type wsSession struct {
	s       *Server
	ctx     context.Context
	writeCh chan worker.Message

	mu      sync.Mutex
	running map[string]context.CancelFunc
	wg      sync.WaitGroup
}

// push queues m for the writer, giving up when the connection is gone.
func (ss *wsSession) push(m worker.Message) {
	select {
	case ss.writeCh <- m:
	case <-ss.ctx.Done():
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	wsConnections.Inc()
	defer wsConnections.Dec()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(wsPongWait)); err != nil {
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	ss := &wsSession{
		s:       s,
		ctx:     ctx,
		writeCh: make(chan worker.Message, 32),
		running: make(map[string]context.CancelFunc),
	}

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		defer cancel()
		ticker := time.NewTicker(wsPingEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case out := <-ss.writeCh:
				if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	log := s.logger.With("remote", r.RemoteAddr)
	log.Debug("websocket connected")
	for {
		var in wsInbound
		if err := conn.ReadJSON(&in); err != nil {
			log.Debug("websocket closed", "error", err)
			break
		}
		ss.dispatch(in)
	}

	cancel()
	ss.wg.Wait()
	<-writerDone
}

func (ss *wsSession) dispatch(in wsInbound) {
	id := strings.TrimSpace(in.ID)
	switch strings.TrimSpace(in.Type) {
	case typePing:
		ss.push(worker.Message{ID: id, Kind: msgPong})
	case typeCancel:
		// The worker ends the stream with an error message; no extra
		// acknowledgement is sent.
		ss.mu.Lock()
		stop, ok := ss.running[id]
		ss.mu.Unlock()
		if !ok {
			ss.push(worker.Message{ID: id, Kind: worker.MsgError, Error: "no running request with this id"})
			return
		}
		stop()
	case "":
		ss.push(worker.Message{ID: id, Kind: worker.MsgError, Error: "type is required"})
	default:
		ss.start(worker.Request{ID: id, Kind: worker.Kind(in.Type), A: in.A, B: in.B, Limits: in.Limits})
	}
}

// start submits req and forwards its stream to the writer. Requests
// without an ID get one here so that they can be cancelled by it.
func (ss *wsSession) start(req worker.Request) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	ss.mu.Lock()
	if _, dup := ss.running[req.ID]; dup {
		ss.mu.Unlock()
		ss.push(worker.Message{ID: req.ID, Kind: worker.MsgError, Error: "a request with this id is already running"})
		return
	}
	ctx, cancel := context.WithCancel(ss.ctx)
	ss.running[req.ID] = cancel
	ss.mu.Unlock()

	ch, err := ss.s.worker.Submit(ctx, req)
	if err != nil {
		ss.forget(req.ID)
		ss.push(worker.Message{ID: req.ID, Kind: worker.MsgError, Error: err.Error()})
		return
	}

	inflight.Inc()
	start := time.Now()
	ss.wg.Add(1)
	go func() {
		defer ss.wg.Done()
		defer inflight.Dec()
		defer ss.forget(req.ID)

		for m := range ch {
			if m.Kind.Terminal() {
				requestsTotal.WithLabelValues(string(req.Kind), outcome(m)).Inc()
				requestDuration.WithLabelValues(string(req.Kind)).Observe(time.Since(start).Seconds())
			}
			ss.push(m)
		}
	}()
}

// forget cancels and unregisters a request.
func (ss *wsSession) forget(id string) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	if stop, ok := ss.running[id]; ok {
		stop()
		delete(ss.running, id)
	}
}

// outcome labels a terminal message for requestsTotal.
func outcome(m worker.Message) string {
	switch {
	case m.Kind == worker.MsgError:
		return "error"
	case m.Bounded != nil:
		return m.Bounded.Reason
	default:
		return "ok"
	}
}
