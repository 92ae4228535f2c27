package server

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ukaji3/datavision-go/pkg/datavision/chat"
	"github.com/ukaji3/datavision-go/pkg/datavision/models"
	"github.com/ukaji3/datavision-go/pkg/datavision/session"
)

const (
	chatWSWriteWait = 10 * time.Second
	chatWSPongWait  = 60 * time.Second
	chatWSPingEvery = (chatWSPongWait * 9) / 10
)

var chatWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type chatWSInbound struct {
	Type  string `json:"type"`
	Level int    `json:"level,omitempty"`
	Text  string `json:"text,omitempty"`
}

type chatWSOutbound struct {
	Type    string              `json:"type"`
	Event   chat.EventKind      `json:"event,omitempty"`
	Message *models.ChatMessage `json:"message,omitempty"`
	Code    string              `json:"code,omitempty"`
	Error   string              `json:"error,omitempty"`
}

// HandleChatWS upgrades to a WebSocket carrying select, send and ping
// frames for one session. Every message change of a turn is pushed as a
// "message" frame and the turn ends with "done".
func (h *Handler) HandleChatWS(w http.ResponseWriter, r *http.Request) {
	s, ok := h.sessions.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	conn, err := chatWSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	// Unblocks ReadJSON once the writer or the request has stopped.
	stopClose := context.AfterFunc(ctx, func() { conn.Close() })
	defer stopClose()

	if err := conn.SetReadDeadline(time.Now().Add(chatWSPongWait)); err != nil {
		h.logger.Warn("chat ws set read deadline failed", "error", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(chatWSPongWait))
	})

	writeCh := make(chan chatWSOutbound, 32)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		runChatWriter(ctx, cancel, conn, writeCh, chatWSPingEvery)
	}()

	var turns sync.WaitGroup
	defer func() {
		cancel()
		turns.Wait()
		<-writerDone
	}()

	push := func(out chatWSOutbound) {
		select {
		case writeCh <- out:
		case <-ctx.Done():
		}
	}
	pushError := func(err error) {
		push(chatWSOutbound{Type: "error", Code: errorCode(err), Error: err.Error()})
	}

	for {
		var in chatWSInbound
		if err := conn.ReadJSON(&in); err != nil {
			return
		}
		// Any inbound frame proves the peer is alive.
		_ = conn.SetReadDeadline(time.Now().Add(chatWSPongWait))

		switch strings.ToLower(strings.TrimSpace(in.Type)) {
		case "ping":
			push(chatWSOutbound{Type: "pong"})
		case "select":
			msg, changed, err := s.SelectLevel(in.Level)
			if err != nil {
				pushError(err)
				continue
			}
			if changed {
				push(chatWSOutbound{Type: "message", Event: chat.MessageAppended, Message: &msg})
			}
			push(chatWSOutbound{Type: "done"})
		case "send":
			turns.Add(1)
			go func(text string) {
				defer turns.Done()
				h.runTurn(ctx, s, text, push, pushError)
			}(in.Text)
		case "":
			push(chatWSOutbound{Type: "error", Code: "invalid_argument", Error: "type is required"})
		default:
			push(chatWSOutbound{Type: "error", Code: "invalid_argument", Error: "unsupported type: " + in.Type})
		}
	}
}

// chatConn is the write side of a WebSocket connection.
type chatConn interface {
	SetWriteDeadline(t time.Time) error
	WriteJSON(v any) error
	WriteMessage(messageType int, data []byte) error
}

// runChatWriter drains writeCh onto conn and pings every pingEvery until ctx
// is done or a write fails. It cancels ctx on return so the reader and any
// running turn stop with it.
func runChatWriter(ctx context.Context, cancel context.CancelFunc, conn chatConn, writeCh <-chan chatWSOutbound, pingEvery time.Duration) {
	defer cancel()
	ticker := time.NewTicker(pingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case out := <-writeCh:
			if err := conn.SetWriteDeadline(time.Now().Add(chatWSWriteWait)); err != nil {
				return
			}
			if err := conn.WriteJSON(out); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.SetWriteDeadline(time.Now().Add(chatWSWriteWait)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Handler) runTurn(ctx context.Context, s *session.Session, text string, push func(chatWSOutbound), pushError func(error)) {
	_, err := s.Send(ctx, h.streamer, text, func(e chat.Event) {
		msg := e.Message
		push(chatWSOutbound{Type: "message", Event: e.Kind, Message: &msg})
	})
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		h.logger.Warn("chat turn failed", "session", s.ID, "error", err)
		pushError(err)
		// A transport failure still completed the turn with a fallback.
		if errorCode(err) != "transport" {
			return
		}
	}
	push(chatWSOutbound{Type: "done"})
}
