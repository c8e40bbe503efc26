package server

import (
	"context"
	"encoding/json"
	"net/http"

	"market-assistant/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// handleWebsockets is the main Hub loop
func (s *APIServer) handleWebsockets() {
	for {
		select {
		case <-s.done:
			for client := range s.clients {
				delete(s.clients, client)
				close(client.send)
			}
			return

		case client := <-s.register:
			s.clients[client] = struct{}{}
			s.stateMutex.RLock()
			if s.latestState != nil {
				initial := *s.latestState
				initial.Type = models.UpdateInitial
				client.send <- &initial
			}
			s.stateMutex.RUnlock()

		case client := <-s.unregister:
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				close(client.send)
			}

		case message := <-s.broadcast:
			for client := range s.clients {
				select {
				case client.send <- message:
				default:
					// Slow consumer, drop it so the hub never blocks
					delete(s.clients, client)
					close(client.send)
				}
			}
		}
	}
}

// -----------------------------------------------------------------------------
// Data Exchange Interface Implementation
// -----------------------------------------------------------------------------

// Broadcast records snap as the latest state and queues it for clients.
func (s *APIServer) Broadcast(snap models.MDashboardSnapshot) {
	update := &models.MDashboardUpdate{Type: models.UpdateState, Snapshot: snap}

	s.stateMutex.Lock()
	s.latestState = update
	s.stateMutex.Unlock()

	select {
	case s.broadcast <- update:
	case <-s.done:
	default:
		s.Logger.Warning("Broadcast queue full, dropping update %d", snap.Generation)
	}
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *APIServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		hub:  s,
		conn: conn,
		send: make(chan *models.MDashboardUpdate, 256),
	}

	select {
	case s.register <- client:
	case <-s.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// -----------------------------------------------------------------------------
// Client Message Handling
// -----------------------------------------------------------------------------

// HandleClientMessage applies select/refresh commands. The resulting state
// reaches every client through Broadcast.
func (s *APIServer) HandleClientMessage(client *Client, message []byte) {
	var cmd models.MClientCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		s.Logger.Info("Failed to parse client command: %v, disconnecting client", err)
		client.conn.Close()
		return
	}

	ctx := context.Background()
	var err error
	switch cmd.Command {
	case "select":
		_, err = s.Dashboard.Select(ctx, models.MChartSelection{
			Symbol:    cmd.Symbol,
			Timeframe: cmd.Timeframe,
			ChartType: cmd.ChartType,
		})
	case "refresh":
		_, err = s.Dashboard.Refresh(ctx)
	default:
		return
	}
	if err != nil {
		s.Logger.Debug("Client command %q: %v", cmd.Command, err)
	}
}
