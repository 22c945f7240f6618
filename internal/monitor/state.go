// Package monitor serves a read-only live view of the strip over websockets.
package monitor

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	diag "github.com/coreman2200/ambilight/internal/diagnostics"
	"github.com/coreman2200/ambilight/internal/render"
)

const writeWait = 200 * time.Millisecond

type frame struct {
	T       int64  `json:"t"`
	FrameID uint64 `json:"frame_id"`
	RGB     []byte `json:"rgb"`
}

// Hub fans frames and diagnostics out to websocket clients. Publish and
// Report are called from the render loop and never block on the network.
type Hub struct {
	log   zerolog.Logger
	order render.WireOrder

	slotMu  sync.Mutex
	slot    []uint32
	slotID  uint64
	pending chan struct{}
	diags   chan diag.Diagnostic

	mu          sync.RWMutex
	rgb         []byte
	frameID     uint64
	startTime   time.Time
	clients     map[*websocket.Conn]bool
	diagClients map[*websocket.Conn]bool
	upgrader    websocket.Upgrader
}

func New(count int, order render.WireOrder, log zerolog.Logger) *Hub {
	return &Hub{
		log:         log,
		order:       order,
		slot:        make([]uint32, count),
		pending:     make(chan struct{}, 1),
		diags:       make(chan diag.Diagnostic, 16),
		rgb:         make([]byte, count*3),
		startTime:   time.Now(),
		clients:     map[*websocket.Conn]bool{},
		diagClients: map[*websocket.Conn]bool{},
		upgrader:    websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

// Publish stores strip as the latest frame. Older unsent frames are dropped.
func (h *Hub) Publish(strip []uint32, frames uint64) {
	h.slotMu.Lock()
	copy(h.slot, strip)
	h.slotID = frames
	h.slotMu.Unlock()
	select {
	case h.pending <- struct{}{}:
	default:
	}
}

// Report queues d for diag clients, dropping it when the queue is full.
func (h *Hub) Report(d diag.Diagnostic) {
	if d.Time.IsZero() {
		d.Time = time.Now()
	}
	select {
	case h.diags <- d:
	default:
	}
}

// Run broadcasts until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case <-h.pending:
			h.broadcastFrame(h.takeFrame())
		case d := <-h.diags:
			h.pushDiag(d)
		}
	}
}

func (h *Hub) takeFrame() []byte {
	h.slotMu.Lock()
	defer h.slotMu.Unlock()
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, w := range h.slot {
		p := h.order.Unpack(w)
		h.rgb[i*3+0], h.rgb[i*3+1], h.rgb[i*3+2] = p.R, p.G, p.B
	}
	h.frameID = h.slotID
	b, _ := json.Marshal(frame{T: time.Now().UnixNano(), FrameID: h.frameID, RGB: h.rgb})
	return b
}

// Handler returns the monitor routes.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.HandleFramesWS)
	mux.HandleFunc("/diag", h.HandleDiagWS)
	mux.HandleFunc("/health", h.HandleHealth)
	return mux
}

func (h *Hub) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	h.mu.Lock()
	h.clients[conn] = true
	if h.frameID > 0 {
		b, _ := json.Marshal(frame{T: time.Now().UnixNano(), FrameID: h.frameID, RGB: h.rgb})
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = conn.WriteMessage(websocket.TextMessage, b)
	}
	h.mu.Unlock()
	go h.drain(conn, h.clients)
}

func (h *Hub) HandleDiagWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	h.mu.Lock()
	h.diagClients[conn] = true
	h.mu.Unlock()
	go h.drain(conn, h.diagClients)
}

// drain discards client messages; the monitor takes no input.
func (h *Hub) drain(conn *websocket.Conn, set map[*websocket.Conn]bool) {
	defer func() {
		h.mu.Lock()
		delete(set, conn)
		h.mu.Unlock()
		conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	resp := map[string]any{
		"frame_id": h.frameID,
		"uptime_s": time.Since(h.startTime).Seconds(),
		"count":    len(h.rgb) / 3,
		"clients":  len(h.clients),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (h *Hub) broadcastFrame(b []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		c.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
			h.log.Debug().Err(err).Msg("write frame")
		}
	}
}

func (h *Hub) pushDiag(d diag.Diagnostic) {
	b, _ := json.Marshal(d)
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.diagClients {
		c.SetWriteDeadline(time.Now().Add(writeWait))
		_ = c.WriteMessage(websocket.TextMessage, b)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.Close()
	}
	for c := range h.diagClients {
		c.Close()
	}
}
