package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	stdhttp "net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/ymoraviadev-droid/t-chat/internal/core"
	"github.com/ymoraviadev-droid/t-chat/internal/proto"
)

// wsHandle pushes events to one WebSocket client through a buffered channel
// drained by the connection's write loop. Send never blocks: events for a
// slow or closed consumer are dropped.
type wsHandle struct {
	events chan core.Event
	closed chan struct{}
	once   sync.Once
}

func newWSHandle() *wsHandle {
	return &wsHandle{
		events: make(chan core.Event, 16),
		closed: make(chan struct{}),
	}
}

func (h *wsHandle) Open() bool {
	select {
	case <-h.closed:
		return false
	default:
		return true
	}
}

func (h *wsHandle) Send(event core.Event) {
	if !h.Open() {
		return
	}
	select {
	case h.events <- event:
	default:
		// Drop if slow consumer.
	}
}

func (h *wsHandle) close() {
	h.once.Do(func() { close(h.closed) })
}

// session is the per-connection state: the client's id once it has joined,
// and the handle the registry uses to reach it.
type session struct {
	id     string
	handle *wsHandle
}

// WSHandler upgrades HTTP connections and bridges them to the router.
type WSHandler struct {
	reg    *core.Registry
	router *core.Router
	log    *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(reg *core.Registry, router *core.Router, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{reg: reg, router: router, log: logger}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	ctx := r.Context()

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	sess := &session{handle: newWSHandle()}
	h.log.Debug().Msg("new connection")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, sess)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, sess)
	}()

	err = <-errCh
	cancel() // stop the other goroutine
	sess.handle.close()
	<-errCh

	// Transport-level close acts as a disconnect event. A no-op if the
	// client never joined or was already swept.
	if sess.id != "" {
		h.deliver(sess, h.router.Dispatch(sess.id, core.Inbound{Kind: core.InboundDisconnect}))
	}

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != 0 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = err.Error()
			h.log.Warn().Err(err).Str("client_id", sess.id).Msg("ws connection closed with error")
		}
	}

	conn.Close(status, reason)
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, sess *session) error {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}

		var frame proto.Inbound
		if err := json.Unmarshal(data, &frame); err != nil {
			// Malformed payload is reported, not fatal.
			h.log.Warn().Err(err).Str("client_id", sess.id).Msg("undecodable ws frame")
			h.deliver(sess, h.router.Malformed())
			continue
		}

		in := inboundToEvent(frame)
		if in.Kind == core.InboundJoin {
			in.Handle = sess.handle
			// A re-join under a new id retires the old identity; otherwise
			// its record would linger until the handle sweeper, and the
			// shared handle would echo broadcasts back to this client.
			if sess.id != "" && sess.id != in.ID {
				h.deliver(sess, h.router.Dispatch(sess.id, core.Inbound{Kind: core.InboundDisconnect}))
			}
			ds := h.router.Dispatch(sess.id, in)
			sess.id = in.ID
			h.deliver(sess, ds)
			continue
		}

		h.deliver(sess, h.router.Dispatch(sess.id, in))
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, sess *session) error {
	for {
		select {
		case event := <-sess.handle.events:
			if err := wsjson.Write(ctx, conn, frameFromEvent(event)); err != nil {
				h.log.Error().Err(err).Msg("write ws event")
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// deliver fans out router deliveries. Sender replies go through this
// connection's own handle, so they work even before the client has joined;
// everything else resolves through the registry and is dropped if the
// target's handle is gone.
func (h *WSHandler) deliver(sess *session, ds []core.Delivery) {
	for _, d := range ds {
		switch d.Scope {
		case core.ScopeSender:
			sess.handle.Send(d.Event)
		case core.ScopeUnicast:
			if rec, ok := h.reg.Get(d.TargetID); ok && rec.Handle != nil {
				rec.Handle.Send(d.Event)
			}
		case core.ScopeBroadcast:
			for _, rec := range h.reg.All() {
				if rec.ID == sess.id || rec.Handle == nil {
					continue
				}
				rec.Handle.Send(d.Event)
			}
		}
	}
}
