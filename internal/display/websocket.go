package display

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"github.com/gorilla/websocket"
)

const (
	// clientBuffer is how many updates a client may lag behind before it is dropped
	clientBuffer = 16
	writeTimeout = 2 * time.Second
)

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// WebSocket broadcasts every update as a JSON text message to all connected
// clients. Clients that fall behind are disconnected rather than slowing the
// render tick.
type WebSocket struct {
	address  string
	logger   logging.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*wsClient]struct{}
	server  *http.Server
}

// NewWebSocket creates a websocket sink serving on address
func NewWebSocket(address string, logger logging.Logger) *WebSocket {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &WebSocket{
		address: address,
		logger: logger.WithFields(logging.Fields{
			"component": "websocket_sink",
		}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients: make(map[*wsClient]struct{}),
	}
}

func (s *WebSocket) Name() string { return "websocket" }

// Handler returns the HTTP handler serving /ws
func (s *WebSocket) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleConnection)
	return mux
}

// Serve listens on the configured address until ctx is cancelled
func (s *WebSocket) Serve(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("websocket sink listen on %s: %w", s.address, err)
	}

	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.mu.Lock()
	s.server = server
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("WebSocket display listening", logging.Fields{
		"address": listener.Addr().String(),
		"path":    "/ws",
	})

	if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("websocket sink: %w", err)
	}
	return nil
}

func (s *WebSocket) handleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed", logging.Fields{
			"remote": r.RemoteAddr,
			"error":  err.Error(),
		})
		return
	}

	client := &wsClient{conn: conn, send: make(chan []byte, clientBuffer)}
	s.mu.Lock()
	s.clients[client] = struct{}{}
	count := len(s.clients)
	s.mu.Unlock()

	s.logger.Info("WebSocket client connected", logging.Fields{
		"remote":  r.RemoteAddr,
		"clients": count,
	})

	go s.writePump(client)
	s.readPump(client)
}

// readPump discards client messages and detects disconnects
func (s *WebSocket) readPump(c *wsClient) {
	defer s.remove(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("WebSocket client read failed", logging.Fields{"error": err.Error()})
			}
			return
		}
	}
}

func (s *WebSocket) writePump(c *wsClient) {
	defer c.conn.Close()
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			s.remove(c)
			return
		}
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeTimeout))
}

// remove unregisters c once; closing send ends its write pump
func (s *WebSocket) remove(c *wsClient) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c]; !ok {
		return
	}
	delete(s.clients, c)
	close(c.send)
}

// Clients returns the number of connected clients
func (s *WebSocket) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Render broadcasts u to every client without blocking
func (s *WebSocket) Render(u *Update) error {
	if s.Clients() == 0 {
		return nil
	}

	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("failed to encode update %d: %w", u.Sequence, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		select {
		case c.send <- data:
		default:
			s.logger.Warn("Dropping slow websocket client", logging.Fields{
				"remote": c.conn.RemoteAddr().String(),
			})
			delete(s.clients, c)
			close(c.send)
		}
	}
	return nil
}

// Close disconnects every client and stops the server if it is running
func (s *WebSocket) Close() error {
	s.mu.Lock()
	for c := range s.clients {
		delete(s.clients, c)
		close(c.send)
	}
	server := s.server
	s.mu.Unlock()

	if server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
