package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"TimetableSim/internal/campus"
	"TimetableSim/internal/sim"
	"TimetableSim/internal/store"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type scheduleRequest struct {
	ID int64 `json:"id"`
}

// Hub serves one running simulation to any number of viewers.
type Hub struct {
	engine *sim.Engine
	state  *campus.State
	runs   *store.RunRepository
	cfg    AppConfig
	log    *zap.Logger

	mu      sync.Mutex
	clients map[string]*liveConn
}

// NewHub wires the viewers to engine and state. runs may be nil.
func NewHub(engine *sim.Engine, state *campus.State, runs *store.RunRepository, cfg AppConfig, log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		engine:  engine,
		state:   state,
		runs:    runs,
		cfg:     sanitizeAppConfig(cfg),
		log:     log,
		clients: map[string]*liveConn{},
	}
}

type liveConn struct {
	id      string
	conn    *websocket.Conn
	limiter *rate.Limiter
	writeMu sync.Mutex
}

func (c *liveConn) send(kind string, payload map[string]any) error {
	data, err := encodeEnvelope(kind, payload)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.BinaryMessage, data)
}

// ClientCount is the number of connected viewers.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) register(c *liveConn) {
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()
}

func (h *Hub) unregister(c *liveConn) {
	h.mu.Lock()
	delete(h.clients, c.id)
	h.mu.Unlock()
}

func (h *Hub) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("upgrade", zap.Error(err))
		return
	}
	lc := &liveConn{
		id:      uuid.NewString(),
		conn:    conn,
		limiter: rate.NewLimiter(rate.Limit(h.cfg.ClientRateHz), h.cfg.ClientBurst),
	}
	h.register(lc)
	defer func() {
		h.unregister(lc)
		_ = conn.Close()
	}()
	h.log.Debug("viewer connected", zap.String("client", lc.id))

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go func() {
		defer cancel()
		for {
			msgType, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if !lc.limiter.Allow() {
				_ = lc.send(msgError, map[string]any{"message": "rate limited"})
				continue
			}
			h.handleInbound(lc, msgType, data)
		}
	}()

	// First frame goes out right away so viewers do not wait a tick.
	if err := lc.send(msgFrame, frameToMap(h.engine.Snapshot())); err != nil {
		return
	}
	ticker := time.NewTicker(time.Duration(float64(time.Second) / h.cfg.PushRateHz))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			h.log.Debug("viewer gone", zap.String("client", lc.id))
			return
		case <-ticker.C:
			if err := lc.send(msgFrame, frameToMap(h.engine.Snapshot())); err != nil {
				return
			}
		}
	}
}

func (h *Hub) handleInbound(lc *liveConn, msgType int, data []byte) {
	var inbound inboundMessage
	switch msgType {
	case websocket.BinaryMessage:
		kind, payload, err := decodeEnvelope(data)
		if err != nil {
			_ = lc.send(msgError, map[string]any{"message": err.Error()})
			return
		}
		inbound.Type = kind
		if payload != nil {
			inbound.Payload, _ = json.Marshal(payload)
		}
	case websocket.TextMessage:
		if err := json.Unmarshal(data, &inbound); err != nil {
			_ = lc.send(msgError, map[string]any{"message": "invalid JSON message"})
			return
		}
	default:
		return
	}

	switch inbound.Type {
	case "ping":
		_ = lc.send(msgPong, map[string]any{"now": h.engine.Now()})
	case "schedule":
		var req scheduleRequest
		if len(inbound.Payload) > 0 {
			if err := json.Unmarshal(inbound.Payload, &req); err != nil {
				_ = lc.send(msgError, map[string]any{"message": "invalid schedule payload"})
				return
			}
		}
		id := campus.EntityID(req.ID)
		plan, ok := h.state.Schedule(id)
		if !ok {
			_ = lc.send(msgError, map[string]any{"message": campus.ErrUnknownEntity.Error()})
			return
		}
		_ = lc.send(msgSchedule, scheduleToMap(id, plan, h.state.Timing()))
	default:
		h.log.Debug("unknown message", zap.String("type", inbound.Type))
		_ = lc.send(msgError, map[string]any{"message": "unknown message type " + inbound.Type})
	}
}
