package ws

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/AnemiB/SipStop/internal/activity"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	Close() error
}

// PresenceStore shares online state between server instances.
type PresenceStore interface {
	SetUserOnline(userID string) error
	SetUserOffline(userID string) error
	RefreshUserOnline(userID string) error
	IsUserOnline(userID string) bool
}

// Client is one live socket. A user may hold several.
type Client struct {
	ID           string
	UserID       string
	SupportsGzip bool

	conn      Conn
	writeMu   sync.Mutex
	lastPong  time.Time
	slots     *Slots
	closeChan chan struct{}
	closeOnce sync.Once

	trackerMu sync.Mutex
	tracker   *activity.Tracker
}

func (c *Client) Slots() *Slots {
	return c.slots
}

// Tracker is the activity subscription's tracker, nil when none is open.
func (c *Client) Tracker() *activity.Tracker {
	c.trackerMu.Lock()
	defer c.trackerMu.Unlock()
	return c.tracker
}

func (c *Client) setTracker(tr *activity.Tracker) {
	c.trackerMu.Lock()
	c.tracker = tr
	c.trackerMu.Unlock()
}

// releaseTracker clears tr unless a newer subscription already replaced it.
func (c *Client) releaseTracker(tr *activity.Tracker) {
	c.trackerMu.Lock()
	if c.tracker == tr {
		c.tracker = nil
	}
	c.trackerMu.Unlock()
}

func (c *Client) write(frameType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(frameType, data)
}

func (c *Client) ping(deadline time.Time) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, []byte{}, deadline)
}

// Hub manages all active WebSocket connections
type Hub struct {
	clients    map[string]map[*Client]struct{}
	clientsMux sync.RWMutex
	presence   PresenceStore

	pingInterval time.Duration
	pongTimeout  time.Duration
	done         chan struct{}
	stopOnce     sync.Once
}

// NewHub creates a hub and starts its health checker. presence may be nil.
func NewHub(presence PresenceStore) *Hub {
	hub := &Hub{
		clients:      make(map[string]map[*Client]struct{}),
		presence:     presence,
		pingInterval: 30 * time.Second,
		pongTimeout:  90 * time.Second,
		done:         make(chan struct{}),
	}
	go hub.connectionHealthChecker()
	return hub
}

// PongTimeout is how long a client may stay silent before it is dropped.
func (h *Hub) PongTimeout() time.Duration {
	return h.pongTimeout
}

// Close stops background workers.
func (h *Hub) Close() {
	h.stopOnce.Do(func() { close(h.done) })
}

// Register adds a client connection with health monitoring
func (h *Hub) Register(userID string, conn Conn, supportsGzip bool) *Client {
	client := &Client{
		ID:           uuid.NewString(),
		UserID:       userID,
		SupportsGzip: supportsGzip,
		conn:         conn,
		lastPong:     time.Now(),
		slots:        NewSlots(),
		closeChan:    make(chan struct{}),
	}

	h.clientsMux.Lock()
	first := len(h.clients[userID]) == 0
	if first {
		h.clients[userID] = make(map[*Client]struct{})
	}
	h.clients[userID][client] = struct{}{}
	total := h.countLocked()
	h.clientsMux.Unlock()

	if first && h.presence != nil {
		if err := h.presence.SetUserOnline(userID); err != nil {
			logrus.WithError(err).WithField("user_id", userID).Warn("failed to mark user online")
		}
	}

	go h.pingRoutine(client)

	logrus.WithFields(logrus.Fields{"user_id": userID, "total": total, "gzip": supportsGzip}).Debug("client connected to hub")
	return client
}

// Unregister removes a client and cancels its live queries. Safe to call twice.
func (h *Hub) Unregister(client *Client) {
	client.closeOnce.Do(func() {
		close(client.closeChan)
		client.slots.Close()
	})

	h.clientsMux.Lock()
	set, ok := h.clients[client.UserID]
	if !ok {
		h.clientsMux.Unlock()
		return
	}
	if _, present := set[client]; !present {
		h.clientsMux.Unlock()
		return
	}
	delete(set, client)
	last := len(set) == 0
	if last {
		delete(h.clients, client.UserID)
	}
	total := h.countLocked()
	h.clientsMux.Unlock()

	if last && h.presence != nil {
		if err := h.presence.SetUserOffline(client.UserID); err != nil {
			logrus.WithError(err).WithField("user_id", client.UserID).Warn("failed to mark user offline")
		}
	}
	logrus.WithFields(logrus.Fields{"user_id": client.UserID, "total": total}).Debug("client disconnected from hub")
}

// Touch records a pong from client.
func (h *Hub) Touch(client *Client) {
	h.clientsMux.Lock()
	client.lastPong = time.Now()
	h.clientsMux.Unlock()

	if h.presence != nil {
		if err := h.presence.RefreshUserOnline(client.UserID); err != nil {
			logrus.WithError(err).WithField("user_id", client.UserID).Debug("failed to refresh presence")
		}
	}
}

// IsUserOnline reports a socket on this instance or, through the presence
// store, on any other.
func (h *Hub) IsUserOnline(userID string) bool {
	h.clientsMux.RLock()
	n := len(h.clients[userID])
	h.clientsMux.RUnlock()
	if n > 0 {
		return true
	}
	return h.presence != nil && h.presence.IsUserOnline(userID)
}

// Send writes data to one client, gzip-compressing large frames when the
// client asked for it. A failed write drops the client.
func (h *Hub) Send(client *Client, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	finalData := jsonData
	frameType := websocket.TextMessage
	if client.SupportsGzip && len(jsonData) > 512 {
		compressed, err := compressData(jsonData)
		if err == nil && len(compressed) < len(jsonData) {
			finalData = compressed
			frameType = websocket.BinaryMessage
		}
	}

	if err := client.write(frameType, finalData); err != nil {
		logrus.WithError(err).WithField("user_id", client.UserID).Warn("websocket write failed")
		h.Unregister(client)
		return err
	}
	return nil
}

// SendToUser sends data to every socket the user has open here.
func (h *Hub) SendToUser(userID string, data interface{}) {
	for _, c := range h.userClients(userID) {
		_ = h.Send(c, data)
	}
}

func (h *Hub) userClients(userID string) []*Client {
	h.clientsMux.RLock()
	defer h.clientsMux.RUnlock()
	out := make([]*Client, 0, len(h.clients[userID]))
	for c := range h.clients[userID] {
		out = append(out, c)
	}
	return out
}

// Subscribers returns the clients holding an active q subscription.
func (h *Hub) Subscribers(q Query) []*Client {
	h.clientsMux.RLock()
	defer h.clientsMux.RUnlock()
	var out []*Client
	for _, set := range h.clients {
		for c := range set {
			if c.slots.Has(q) {
				out = append(out, c)
			}
		}
	}
	return out
}

// Count returns the number of connected clients
func (h *Hub) Count() int {
	h.clientsMux.RLock()
	defer h.clientsMux.RUnlock()
	return h.countLocked()
}

func (h *Hub) countLocked() int {
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

// pingRoutine sends periodic ping messages to keep connection alive
func (h *Hub) pingRoutine(client *Client) {
	defer func() {
		if r := recover(); r != nil {
			logrus.WithField("user_id", client.UserID).Errorf("ping routine recovered from panic: %v", r)
		}
	}()

	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-client.closeChan:
			return
		case <-h.done:
			return
		case <-ticker.C:
			if err := client.ping(time.Now().Add(10 * time.Second)); err != nil {
				logrus.WithError(err).WithField("user_id", client.UserID).Debug("ping failed")
				h.Unregister(client)
				return
			}
		}
	}
}

// connectionHealthChecker removes connections that stopped answering pings
func (h *Hub) connectionHealthChecker() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-h.done:
			return
		case <-ticker.C:
			for _, c := range h.stale(time.Now()) {
				logrus.WithField("user_id", c.UserID).Info("removing dead connection (no pong received)")
				h.Unregister(c)
				_ = c.conn.Close()
			}
		}
	}
}

func (h *Hub) stale(now time.Time) []*Client {
	h.clientsMux.RLock()
	defer h.clientsMux.RUnlock()
	var dead []*Client
	for _, set := range h.clients {
		for c := range set {
			if now.Sub(c.lastPong) > h.pongTimeout {
				dead = append(dead, c)
			}
		}
	}
	return dead
}

func compressData(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	gzipWriter := gzip.NewWriter(&buf)

	if _, err := gzipWriter.Write(data); err != nil {
		return nil, err
	}

	if err := gzipWriter.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// DecompressMessage inflates a gzip-compressed client frame.
func DecompressMessage(data []byte) ([]byte, error) {
	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	return io.ReadAll(io.LimitReader(reader, 1<<20))
}
