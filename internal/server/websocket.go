package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"lotto-lab/internal/domain"
	"lotto-lab/internal/optimizer"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsReadTimeout  = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Stream message types.
const (
	msgProgress = "progress"
	msgResult   = "result"
	msgError    = "error"
)

// streamMessage is one frame of the optimizer stream.
type streamMessage struct {
	Type     string                  `json:"type"`
	Progress *optimizer.Progress     `json:"progress,omitempty"`
	Run      *domain.OptimizationRun `json:"run,omitempty"`
	Error    string                  `json:"error,omitempty"`
}

// streamWriter serializes writes to one connection.
type streamWriter struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (sw *streamWriter) send(msg streamMessage) error {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	if err := sw.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
		return err
	}
	return sw.conn.WriteJSON(msg)
}

// handleOptimizeStream upgrades to a websocket, reads one optimizer request
// and streams a progress frame per evaluation, then the finished run.
// Closing the socket cancels the run.
func (s *Server) handleOptimizeStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade")
		return
	}
	defer conn.Close()
	out := &streamWriter{conn: conn}

	var body optimizeBody
	_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	if err := conn.ReadJSON(&body); err != nil {
		_ = out.send(streamMessage{Type: msgError, Error: "read request: " + err.Error()})
		return
	}
	_ = conn.SetReadDeadline(time.Time{})

	release, err := s.acquire()
	if err != nil {
		_ = out.send(streamMessage{Type: msgError, Error: err.Error()})
		return
	}
	defer release()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// any read error means the client went away
	go func() {
		for {
			if _, _, err := conn.NextReader(); err != nil {
				cancel()
				return
			}
		}
	}()

	req := s.optimizerRequest(body)
	req.Progress = func(p optimizer.Progress) {
		if err := out.send(streamMessage{Type: msgProgress, Progress: &p}); err != nil {
			cancel()
		}
	}

	run, err := s.orch.Optimize(ctx, req)
	if err != nil {
		_ = out.send(streamMessage{Type: msgError, Error: err.Error()})
		return
	}
	if err := out.send(streamMessage{Type: msgResult, Run: run}); err != nil {
		s.log.Warn().Err(err).Msg("send result")
		return
	}

	sendClose(out)
}

func sendClose(out *streamWriter) {
	out.mu.Lock()
	defer out.mu.Unlock()
	_ = out.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"),
		time.Now().Add(wsWriteTimeout))
}
