package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lcalzada-xor/wbrute/internal/core/domain"
)

// DefaultAllowedOrigins is used when no origins are configured.
var DefaultAllowedOrigins = []string{
	"http://localhost:8080",
	"http://127.0.0.1:8080",
	"http://[::1]:8080",
}

// EventSource is the part of the attack core the manager listens to.
type EventSource interface {
	Subscribe() (<-chan domain.AttackEvent, func())
	Status(ctx context.Context) domain.AttackStatus
}

type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// WSManager streams attack events and periodic status snapshots to browsers.
type WSManager struct {
	Service        EventSource
	Clients        map[*websocket.Conn]*domain.User
	StatusInterval time.Duration
	upgrader       websocket.Upgrader
	mu             sync.Mutex
}

func NewWSManager(service EventSource, allowedOrigins []string) *WSManager {
	if len(allowedOrigins) == 0 {
		allowedOrigins = DefaultAllowedOrigins
	}
	m := &WSManager{
		Service:        service,
		Clients:        make(map[*websocket.Conn]*domain.User),
		StatusInterval: 2 * time.Second,
	}
	m.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     checkOrigin(allowedOrigins),
	}
	return m
}

func checkOrigin(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")

		// Allow same-origin (no Origin header)
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if origin == a {
				return true
			}
		}
		log.Printf("WebSocket: Rejected origin: %s", origin)
		return false
	}
}

// Start forwards core events until ctx is done.
func (m *WSManager) Start(ctx context.Context) {
	events, unsubscribe := m.Service.Subscribe()
	go func() {
		defer unsubscribe()
		m.processAndBroadcast(ctx, events)
	}()
}

func (m *WSManager) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	// Extract user from context (set by AuthMiddleware)
	user := domain.UserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Upgrade error:", err)
		return
	}

	m.mu.Lock()
	m.Clients[conn] = user
	m.mu.Unlock()

	log.Printf("WebSocket connected: user=%s, role=%s", user.Username, user.Role)

	// Send the current state so late joiners do not wait for the next tick.
	m.send(conn, user, WSMessage{Type: "attack.status", Payload: m.Service.Status(r.Context())})

	// Clean up on disconnect
	go func() {
		defer conn.Close()
		defer func() {
			m.mu.Lock()
			delete(m.Clients, conn)
			m.mu.Unlock()
			log.Printf("WebSocket disconnected: user=%s", user.Username)
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()
}

func (m *WSManager) processAndBroadcast(ctx context.Context, events <-chan domain.AttackEvent) {
	ticker := time.NewTicker(m.StatusInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			m.broadcastMessage(WSMessage{Type: string(ev.Type), Payload: ev})
		case <-ticker.C:
			st := m.Service.Status(ctx)
			if st.Phase.IsActive() {
				m.broadcastMessage(WSMessage{Type: "attack.status", Payload: st})
			}
		}
	}
}

// ClientCount returns the number of connected browsers.
func (m *WSManager) ClientCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Clients)
}

func (m *WSManager) broadcastMessage(msg WSMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for conn, user := range m.Clients {
		if err := m.write(conn, user, msg); err != nil {
			conn.Close()
			delete(m.Clients, conn)
		}
	}
}

func (m *WSManager) send(conn *websocket.Conn, user *domain.User, msg WSMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.write(conn, user, msg); err != nil {
		conn.Close()
		delete(m.Clients, conn)
	}
}

func (m *WSManager) write(conn *websocket.Conn, user *domain.User, msg WSMessage) error {
	data, err := json.Marshal(redact(msg, user))
	if err != nil {
		log.Println("JSON marshal error:", err)
		return nil
	}
	conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, data)
}

// redact hides candidates and recovered credentials from viewers.
func redact(msg WSMessage, user *domain.User) WSMessage {
	if user.CanRunAttacks() {
		return msg
	}
	switch p := msg.Payload.(type) {
	case domain.AttackEvent:
		p.Candidate = ""
		if p.Outcome != nil {
			o := *p.Outcome
			o.Candidate = ""
			p.Outcome = &o
		}
		msg.Payload = p
	case domain.AttackStatus:
		p.CurrentCandidate = ""
		if p.Outcome != nil {
			o := *p.Outcome
			o.Candidate = ""
			p.Outcome = &o
		}
		msg.Payload = p
	}
	return msg
}
