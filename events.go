package main

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type EventType string

const (
	EventNotification EventType = "notification"
	EventRevert       EventType = "revert"
	EventCelebration  EventType = "celebration"
	EventAdvance      EventType = "advance"
	EventResults      EventType = "results"
	EventPortal       EventType = "portal"
	EventReload       EventType = "reload"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
)

type Event struct {
	ID      string         `json:"id"`
	Type    EventType      `json:"type"`
	Level   Level          `json:"level,omitempty"`
	Message string         `json:"message,omitempty"`
	Arc     int            `json:"arc,omitempty"`
	Realm   string         `json:"realm,omitempty"`
	Step    string         `json:"step,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
	At      time.Time      `json:"at"`
}

// Notifier delivers events to whatever renders them (toasts, overlays).
type Notifier interface {
	Notify(Event)
}

func toast(level Level, msg string) Event {
	return Event{Type: EventNotification, Level: level, Message: msg}
}

// outbox queues events raised while a controller holds its lock so they can
// be delivered after it is released.
type outbox []Event

func (o *outbox) add(ev Event) { *o = append(*o, ev) }

func (o outbox) flush(n Notifier) {
	for _, ev := range o {
		n.Notify(ev)
	}
}

const writeWait = 5 * time.Second

// Hub fans events out to every connected page.
type Hub struct {
	mu       sync.Mutex
	conns    map[*websocket.Conn]struct{}
	upgrader websocket.Upgrader
}

func NewHub(checkOrigin func(origin string) bool) *Hub {
	return &Hub{
		conns: make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || checkOrigin(origin)
			},
		},
	}
}

func (h *Hub) Notify(ev Event) {
	if ev.ID == "" {
		ev.ID = uuid.New().String()
	}
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("event marshal: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("event write: %v", err)
			conn.Close()
			delete(h.conns, conn)
		}
	}
}

func (h *Hub) register(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = struct{}{}
	log.Printf("Event stream connected (total: %d)", len(h.conns))
}

func (h *Hub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[conn]; ok {
		conn.Close()
		delete(h.conns, conn)
	}
}

// Close drops every connection.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		conn.Close()
		delete(h.conns, conn)
	}
}

// GET /api/v1/events (websocket)
func ServeEvents(h *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("websocket upgrade: %v", err)
			return
		}
		h.register(conn)

		// read until the page goes away; inbound messages are ignored
		go func() {
			defer h.unregister(conn)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	}
}
