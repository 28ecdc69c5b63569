package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lcalzada-xor/nettrust/internal/core/domain"
	"github.com/lcalzada-xor/nettrust/internal/core/ports"
	"github.com/lcalzada-xor/nettrust/internal/core/services/registry"
)

const writeTimeout = 5 * time.Second

// Message types pushed to websocket clients.
const (
	MessageScan      = "scan"
	MessageThreat    = "threat"
	MessageBaseline  = "baseline.learned"
	MessageConfirmed = "attack.confirmed"
)

// WSMessage is the envelope of every websocket frame.
type WSMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// WSManager pushes scan results and trust transitions to connected clients.
type WSManager struct {
	upgrader websocket.Upgrader
	clients  map[*websocket.Conn]struct{}
	mu       sync.Mutex
	logger   *slog.Logger
}

var (
	_ ports.ResultPublisher    = (*WSManager)(nil)
	_ registry.ProfileObserver = (*WSManager)(nil)
)

// NewWSManager creates a hub. Requests without an Origin header are always
// accepted; otherwise the origin must be listed in allowedOrigins.
func NewWSManager(allowedOrigins []string, logger *slog.Logger) *WSManager {
	if logger == nil {
		logger = slog.Default()
	}
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	m := &WSManager{
		clients: make(map[*websocket.Conn]struct{}),
		logger:  logger,
	}
	m.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || allowed[origin] {
				return true
			}
			logger.Warn("WebSocket origin rejected", "origin", origin)
			return false
		},
	}
	return m
}

// Start closes every connection once ctx is done.
func (m *WSManager) Start(ctx context.Context) {
	go func() {
		<-ctx.Done()
		m.mu.Lock()
		defer m.mu.Unlock()
		for conn := range m.clients {
			conn.Close()
			delete(m.clients, conn)
		}
	}()
}

// Clients returns the number of connected clients.
func (m *WSManager) Clients() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.clients)
}

// HandleWebSocket upgrades the request and registers the client until it disconnects.
func (m *WSManager) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		m.logger.Debug("WebSocket upgrade failed", "error", err)
		return
	}

	m.mu.Lock()
	m.clients[conn] = struct{}{}
	m.mu.Unlock()
	m.logger.Info("WebSocket connected", "remote", r.RemoteAddr)

	// Clients only listen; reading detects the disconnect.
	go func() {
		defer func() {
			m.mu.Lock()
			delete(m.clients, conn)
			m.mu.Unlock()
			conn.Close()
			m.logger.Info("WebSocket disconnected", "remote", r.RemoteAddr)
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// PublishScan sends the scan, then one threat message per network rated HIGH or worse.
func (m *WSManager) PublishScan(ctx context.Context, scan domain.Scan) error {
	if err := m.broadcastMessage(WSMessage{Type: MessageScan, Payload: scan}); err != nil {
		return err
	}
	for _, r := range scan.Results {
		if r.ThreatLevel >= domain.ThreatHigh {
			if err := m.broadcastMessage(WSMessage{Type: MessageThreat, Payload: r}); err != nil {
				return err
			}
		}
	}
	return nil
}

// OnBaselineLearned broadcasts a newly trusted access point.
func (m *WSManager) OnBaselineLearned(p domain.DeviceProfile) {
	m.broadcastMessage(WSMessage{
		Type:    MessageBaseline,
		Payload: domain.LearnedNetwork{SSID: p.SSID, Address: p.Address},
	})
}

// OnAttackConfirmed broadcasts an access point whose attack evidence was confirmed.
func (m *WSManager) OnAttackConfirmed(p domain.DeviceProfile) {
	m.broadcastMessage(WSMessage{Type: MessageConfirmed, Payload: p})
}

func (m *WSManager) broadcastMessage(msg WSMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		m.logger.Error("WebSocket marshal failed", "type", msg.Type, "error", err)
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for conn := range m.clients {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			conn.Close()
			delete(m.clients, conn)
		}
	}
	return nil
}
