package websocket

import (
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/yanun0323/logs"

	"github.com/smeysmey1509/rest-api-node-sub000/internal/obs"
	"github.com/smeysmey1509/rest-api-node-sub000/pkg/exception"
)

// Authenticator resolves the socket owner from the upgrade request.
type Authenticator func(r *http.Request) (Key, error)

// Hub keeps the live sockets of every connected user and pushes frames to them.
type Hub struct {
	opt      Option
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[Key]map[*client]struct{}
	closed  bool
	wg      sync.WaitGroup
}

func NewHub(opt Option) *Hub {
	opt = opt.withDefaults()
	h := &Hub{
		opt:     opt,
		clients: make(map[Key]map[*client]struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  opt.ReadBufferSize,
		WriteBufferSize: opt.WriteBufferSize,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	if len(h.opt.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	for _, allowed := range h.opt.AllowedOrigins {
		if strings.EqualFold(origin, allowed) {
			return true
		}
	}
	return false
}

// Send queues payload on every socket of key and returns how many accepted it.
func (h *Hub) Send(key Key, payload []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	sent := 0
	for c := range h.clients[key] {
		queued, evicted := c.queue.Push(payload)
		if evicted || !queued {
			obs.HubDropped()
		}
		if queued {
			obs.HubDelivered()
			sent++
		}
	}
	return sent
}

// Connections returns the number of live sockets of key.
func (h *Hub) Connections(key Key) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[key])
}

// Len returns the number of live sockets.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

// Handler upgrades requests authenticated by auth into hub sockets.
func (h *Hub) Handler(auth Authenticator) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, err := auth(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			logs.Warnf("websocket upgrade for %s, err: %+v", key, err)
			return
		}

		c := newClient(h, key, conn)
		if err := h.register(c); err != nil {
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
			_ = conn.Close()
			return
		}

		go func() {
			defer h.wg.Done()
			c.writeLoop()
		}()
		go func() {
			defer h.wg.Done()
			c.readLoop()
		}()
	})
}

// Close disconnects every socket and waits for their loops to exit.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	var all []*client
	for _, set := range h.clients {
		for c := range set {
			all = append(all, c)
		}
	}
	h.mu.Unlock()

	for _, c := range all {
		c.close()
	}
	h.wg.Wait()
}

func (h *Hub) register(c *client) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return exception.ErrWebSocketConnectionClose
	}
	set, ok := h.clients[c.key]
	if !ok {
		set = make(map[*client]struct{})
		h.clients[c.key] = set
	}
	set[c] = struct{}{}
	// Add under the lock so Close cannot miss loops it is about to wait for.
	h.wg.Add(2)
	obs.HubConnected()
	logs.Debugf("websocket %s connected", c.key)
	return nil
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.key]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.key)
	}
	obs.HubDisconnected()
	logs.Debugf("websocket %s disconnected", c.key)
}

// RequestKey reads the owner from the X-Tenant-ID and X-User-ID headers,
// falling back to the tenant and user query parameters browsers can set.
func RequestKey(r *http.Request) (Key, error) {
	key := Key{
		TenantID: strings.TrimSpace(r.Header.Get("X-Tenant-ID")),
		UserID:   strings.TrimSpace(r.Header.Get("X-User-ID")),
	}
	q := r.URL.Query()
	if key.TenantID == "" {
		key.TenantID = strings.TrimSpace(q.Get("tenant"))
	}
	if key.UserID == "" {
		key.UserID = strings.TrimSpace(q.Get("user"))
	}
	if key.TenantID == "" || key.UserID == "" {
		return Key{}, exception.ErrWebSocketNoIdentity
	}
	return key, nil
}
