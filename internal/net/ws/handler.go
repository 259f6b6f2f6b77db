package ws

import (
	nethttp "net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"hexloom/editor/internal/net/proto"
	"hexloom/editor/internal/session"
	"hexloom/editor/internal/telemetry"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 20
)

// HandlerConfig tunes the websocket endpoint.
type HandlerConfig struct {
	Logger telemetry.Logger
}

// Handler upgrades editor clients and bridges them to the session hub:
// inbound frames become commands, hub broadcasts become wire frames.
type Handler struct {
	hub      *session.Hub
	logger   telemetry.Logger
	upgrader websocket.Upgrader
}

// NewHandler constructs a websocket handler for the given hub.
func NewHandler(hub *session.Hub, cfg HandlerConfig) *Handler {
	return &Handler{
		hub:    hub,
		logger: telemetry.WrapLogger(cfg.Logger),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Local tooling clients connect from arbitrary origins.
			CheckOrigin: func(r *nethttp.Request) bool { return true },
		},
	}
}

// conn serializes writes; the write pump and command replies share it.
type conn struct {
	sock *websocket.Conn
	mu   sync.Mutex
}

func (c *conn) write(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sock.SetWriteDeadline(time.Now().Add(writeWait))
	return c.sock.WriteMessage(messageType, data)
}

// Handle runs one client session until the connection drops or the hub
// disconnects the client.
func (h *Handler) Handle(w nethttp.ResponseWriter, r *nethttp.Request) {
	sock, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("upgrade failed: %v", err)
		return
	}
	c := &conn{sock: sock}
	sub := h.hub.Subscribe()
	go h.writePump(c, sub)
	h.readLoop(c, sub)
}

// writePump forwards hub broadcasts to the socket and keeps the
// connection alive with pings. A closed subscriber channel means the
// hub dropped the client; the socket is closed to unblock the reader.
func (h *Handler) writePump(c *conn, sub *session.Subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-sub.Outbound():
			if !ok {
				c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				c.sock.Close()
				return
			}
			data, err := proto.EncodeOutbound(msg)
			if err != nil {
				h.logger.Printf("failed to encode %s frame for %s: %v", msg.Kind, sub.ID(), err)
				continue
			}
			if err := c.write(websocket.TextMessage, data); err != nil {
				c.sock.Close()
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				c.sock.Close()
				return
			}
		}
	}
}

func (h *Handler) readLoop(c *conn, sub *session.Subscriber) {
	defer func() {
		h.hub.Unsubscribe(sub.ID())
		c.sock.Close()
	}()
	c.sock.SetReadLimit(maxMessageSize)
	c.sock.SetReadDeadline(time.Now().Add(pongWait))
	c.sock.SetPongHandler(func(string) error {
		c.sock.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	var lastSeq uint64
	for {
		_, payload, err := c.sock.ReadMessage()
		if err != nil {
			return
		}
		msg, err := proto.DecodeClientMessage(payload)
		if err != nil {
			h.logger.Printf("rejecting malformed message from %s: %v", sub.ID(), err)
			if !h.reply(c, proto.CommandError{Seq: msg.Seq, Reason: err.Error()}) {
				return
			}
			continue
		}
		cmd, err := proto.BuildCommand(msg)
		if err != nil {
			if !h.reply(c, proto.CommandError{Seq: msg.Seq, Reason: err.Error()}) {
				return
			}
			continue
		}
		if msg.Seq != 0 && msg.Seq == lastSeq {
			// Duplicate delivery of an already-accepted command.
			if !h.ack(c, proto.CommandAck{Seq: msg.Seq}) {
				return
			}
			continue
		}
		cmd.ClientID = sub.ID()
		if err := h.hub.Enqueue(cmd); err != nil {
			if !h.reply(c, proto.CommandError{Seq: msg.Seq, Op: string(cmd.Type), Reason: err.Error()}) {
				return
			}
			continue
		}
		if msg.Seq != 0 {
			lastSeq = msg.Seq
			if !h.ack(c, proto.CommandAck{Seq: msg.Seq, Tick: h.hub.Tick()}) {
				return
			}
		}
	}
}

// ack writes an acceptance frame; false means the connection is gone.
func (h *Handler) ack(c *conn, msg proto.CommandAck) bool {
	data, err := proto.EncodeCommandAck(msg)
	if err != nil {
		h.logger.Printf("failed to encode ack: %v", err)
		return true
	}
	return c.write(websocket.TextMessage, data) == nil
}

// reply writes an error frame; false means the connection is gone.
func (h *Handler) reply(c *conn, msg proto.CommandError) bool {
	data, err := proto.EncodeCommandError(msg)
	if err != nil {
		h.logger.Printf("failed to encode error reply: %v", err)
		return true
	}
	return c.write(websocket.TextMessage, data) == nil
}
