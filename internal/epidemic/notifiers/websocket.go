// Package notifiers holds delivery channels for simulation tick events.
package notifiers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/JoshuaRadin37/Infection/internal/epidemic"
)

const writeDeadline = 10 * time.Second

// WebSocketNotifier broadcasts tick events to every connected WebSocket
// client. Registration, unregistration, and broadcasting all flow through
// one goroutine, so the client set needs no locking on the hot path.
type WebSocketNotifier struct {
	id         string
	upgrader   websocket.Upgrader
	mu         sync.Mutex
	clients    map[*websocket.Conn]struct{}
	broadcast  chan epidemic.TickEvent
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{}
	wg         sync.WaitGroup
}

// NewWebSocketNotifier creates a notifier and starts its broadcaster.
func NewWebSocketNotifier(id string) *WebSocketNotifier {
	n := &WebSocketNotifier{
		id:         id,
		clients:    make(map[*websocket.Conn]struct{}),
		broadcast:  make(chan epidemic.TickEvent, 256),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	n.wg.Add(1)
	go n.run()
	return n
}

// ID returns the notifier id.
func (n *WebSocketNotifier) ID() string { return n.id }

// Type returns "websocket".
func (n *WebSocketNotifier) Type() string { return "websocket" }

// Upgrader returns the upgrader HTTP handlers use to accept clients.
func (n *WebSocketNotifier) Upgrader() websocket.Upgrader { return n.upgrader }

// RegisterClient adds a client connection to the broadcast set.
func (n *WebSocketNotifier) RegisterClient(conn *websocket.Conn) {
	select {
	case n.register <- conn:
	case <-n.done:
	}
}

// UnregisterClient removes and closes a client connection.
func (n *WebSocketNotifier) UnregisterClient(conn *websocket.Conn) {
	select {
	case n.unregister <- conn:
	case <-n.done:
	}
}

// ClientCount returns the number of connected clients.
func (n *WebSocketNotifier) ClientCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.clients)
}

// Notify queues an event for broadcast to every connected client.
func (n *WebSocketNotifier) Notify(ctx context.Context, event epidemic.TickEvent) error {
	select {
	case n.broadcast <- event:
		return nil
	case <-n.done:
		return fmt.Errorf("websocket notifier %s closed", n.id)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (n *WebSocketNotifier) run() {
	defer n.wg.Done()
	for {
		select {
		case <-n.done:
			return

		case conn := <-n.register:
			if conn == nil {
				continue
			}
			n.mu.Lock()
			n.clients[conn] = struct{}{}
			n.mu.Unlock()

		case conn := <-n.unregister:
			if conn == nil {
				continue
			}
			n.mu.Lock()
			if _, ok := n.clients[conn]; ok {
				delete(n.clients, conn)
				conn.Close()
			}
			n.mu.Unlock()

		case event := <-n.broadcast:
			payload, err := event.JSON()
			if err != nil {
				continue
			}

			n.mu.Lock()
			conns := make([]*websocket.Conn, 0, len(n.clients))
			for conn := range n.clients {
				conns = append(conns, conn)
			}
			n.mu.Unlock()

			var dead []*websocket.Conn
			for _, conn := range conns {
				conn.SetWriteDeadline(time.Now().Add(writeDeadline))
				if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
					conn.Close()
					dead = append(dead, conn)
				}
			}
			if len(dead) > 0 {
				n.mu.Lock()
				for _, conn := range dead {
					delete(n.clients, conn)
				}
				n.mu.Unlock()
			}
		}
	}
}

// Close disconnects every client and stops the broadcaster.
func (n *WebSocketNotifier) Close() error {
	close(n.done)
	n.wg.Wait()

	n.mu.Lock()
	defer n.mu.Unlock()
	for conn := range n.clients {
		conn.Close()
		delete(n.clients, conn)
	}
	return nil
}
