package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

const (
	MaxWSConnectionsTotal = 500
	MaxWSConnectionsPerIP = 10

	// BroadcastInterval paces snapshot pushes (10 Hz)
	BroadcastInterval = 100 * time.Millisecond

	wsWriteWait      = time.Second
	wsPongWait       = 30 * time.Second
	wsPingPeriod     = wsPongWait * 9 / 10
	wsSendQueue      = 32
	wsMaxMessageSize = 512

	// Aim updates follow the mouse, so the budget is generous
	wsCommandsPerSec = 60
	wsCommandBurst   = 30
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")

		// Native clients send no Origin header
		if origin == "" || IsAllowedOrigin(origin) {
			return true
		}

		log.Printf("⚠️ WebSocket connection rejected from origin: %s", origin)
		RecordConnectionRejected("origin")
		return false
	},
}

// wsEvent is a server to client message.
type wsEvent struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// wsCommand is a client to server message.
type wsCommand struct {
	Type  string  `json:"type"` // "aim" or "teleport"
	Angle float64 `json:"angle"`
}

type wsClient struct {
	conn *websocket.Conn
	ip   string
	send chan []byte
}

// WebSocketHub pushes snapshots and cues to every client and feeds their
// aim and teleport commands into the engine. Each client has its own send
// queue; a client whose queue is full is dropped.
type WebSocketHub struct {
	engine EngineInterface
	limits *ConnLimiter

	mu      sync.RWMutex
	clients map[*wsClient]struct{}

	done     chan struct{}
	stopOnce sync.Once
}

// NewWebSocketHub creates a hub for engine.
func NewWebSocketHub(engine EngineInterface) *WebSocketHub {
	return &WebSocketHub{
		engine:  engine,
		limits:  NewConnLimiter(MaxWSConnectionsTotal, MaxWSConnectionsPerIP),
		clients: make(map[*wsClient]struct{}),
		done:    make(chan struct{}),
	}
}

// Run blocks until Stop and then disconnects every client.
func (h *WebSocketHub) Run() {
	<-h.done

	h.mu.Lock()
	for c := range h.clients {
		h.drop(c)
	}
	h.mu.Unlock()
	UpdateWSConnections(0)
}

// Stop disconnects all clients and ends Run and the broadcast loop.
func (h *WebSocketHub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// drop forgets c and closes its send queue. Caller holds mu.
func (h *WebSocketHub) drop(c *wsClient) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.limits.Release(c.ip)
}

func (h *WebSocketHub) add(c *wsClient) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	select {
	case <-h.done:
		return false
	default:
	}
	h.clients[c] = struct{}{}
	log.Printf("📱 Client connected from %s (%d total)", c.ip, len(h.clients))
	UpdateWSConnections(len(h.clients))
	return true
}

func (h *WebSocketHub) remove(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return
	}
	h.drop(c)
	log.Printf("📱 Client disconnected (%d remaining)", len(h.clients))
	UpdateWSConnections(len(h.clients))
}

func encodeEvent(event string, data interface{}) ([]byte, bool) {
	msg, err := json.Marshal(wsEvent{Event: event, Data: data})
	if err != nil {
		log.Printf("❌ Encode %s: %v", event, err)
		return nil, false
	}
	return msg, true
}

// Broadcast queues an event for every client.
func (h *WebSocketHub) Broadcast(event string, data interface{}) {
	msg, ok := encodeEvent(event, data)
	if !ok {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			log.Printf("⚠️ Dropping slow client %s", c.ip)
			h.drop(c)
		}
	}
	UpdateWSConnections(len(h.clients))
	IncrementWSMessages()
}

// reply queues an event for one client.
func (h *WebSocketHub) reply(c *wsClient, event string, data interface{}) {
	msg, ok := encodeEvent(event, data)
	if !ok {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	select {
	case c.send <- msg:
	default:
		h.drop(c)
	}
}

// ClientCount returns the number of connected clients.
func (h *WebSocketHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// StartBroadcastLoop pushes the latest snapshot and any drained cues to
// every client at BroadcastInterval.
func (h *WebSocketHub) StartBroadcastLoop() {
	go func() {
		ticker := time.NewTicker(BroadcastInterval)
		defer ticker.Stop()

		for {
			select {
			case <-h.done:
				return
			case <-ticker.C:
			}

			if h.ClientCount() == 0 {
				continue
			}
			h.Broadcast("match:state", h.engine.GetSnapshot())
			if cues := h.engine.DrainCues(); len(cues) > 0 {
				h.Broadcast("match:cues", cues)
			}
		}
	}()
}

// HandleWebSocket upgrades the request and starts the client's pumps.
func (h *WebSocketHub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ip := GetClientIP(r)

	if ok, reason := h.limits.Acquire(ip); !ok {
		log.Printf("⚠️ WebSocket connection from %s rejected: %s", ip, reason)
		RecordConnectionRejected(reason)
		code := http.StatusTooManyRequests
		if reason == "ws_total_limit" {
			code = http.StatusServiceUnavailable
		}
		http.Error(w, "Too many connections", code)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		h.limits.Release(ip)
		return
	}

	c := &wsClient{conn: conn, ip: ip, send: make(chan []byte, wsSendQueue)}
	if !h.add(c) {
		h.limits.Release(ip)
		conn.Close()
		return
	}

	go h.writePump(c)
	go h.readPump(c)
}

// writePump owns every write on the connection.
func (h *WebSocketHub) writePump(c *wsClient) {
	ping := time.NewTicker(wsPingPeriod)
	defer func() {
		ping.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ping.C:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump applies client commands until the connection fails.
func (h *WebSocketHub) readPump(c *wsClient) {
	defer h.remove(c)

	c.conn.SetReadLimit(wsMaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	limiter := rate.NewLimiter(wsCommandsPerSec, wsCommandBurst)
	source := "ws:" + c.ip

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if !limiter.Allow() {
			recordWSCommand("limited")
			continue
		}

		var cmd wsCommand
		if err := json.Unmarshal(message, &cmd); err != nil {
			recordWSCommand("unknown")
			continue
		}

		switch cmd.Type {
		case "aim":
			recordWSCommand("aim")
			h.engine.SetAim(cmd.Angle)
		case "teleport":
			recordWSCommand("teleport")
			res, err := h.engine.Teleport(cmd.Angle, source)
			result := map[string]interface{}{"kills": res.Kills}
			if err != nil {
				result["error"] = err.Error()
			}
			h.reply(c, "match:teleport", result)
		default:
			recordWSCommand("unknown")
		}
	}
}
