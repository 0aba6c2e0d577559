package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"shop-admin/internal/admin-service/adapters/driver/myhttp/handle"
	"shop-admin/internal/admin-service/core/domain/models"
	"shop-admin/internal/admin-service/core/ports"
	"shop-admin/internal/mylogger"

	"github.com/gorilla/websocket"
)

const MessageUsersChanged = "users_changed"

// websocketUpgrader upgrades incoming HTTP requests into a persistent websocket connection.
// Origins are not checked because every connection carries an admin token.
var websocketUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type Message struct {
	Type string                   `json:"type"`
	Data models.UsersChangedEvent `json:"data"`
}

// ClientList is a set of connected clients.
type ClientList map[*Client]bool

// Dispatcher pushes users-view changes to connected admin consoles.
type Dispatcher struct {
	clients ClientList
	sync.RWMutex
	log   mylogger.Logger
	guard ports.IAccessGuard
}

func NewDispatcher(log mylogger.Logger, guard ports.IAccessGuard) *Dispatcher {
	return &Dispatcher{
		clients: make(ClientList),
		log:     log,
		guard:   guard,
	}
}

// UsersHandler upgrades an admin's request and keeps the connection until
// the peer goes away.
func (d *Dispatcher) UsersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := d.log.Action("ws_users")
		caller := models.CallerFrom(r.Context())

		if err := d.guard.CheckAdmin(caller); err != nil {
			log.Warn("access denied", "user_id", caller.UserId)
			handle.JsonError(w, handle.StatusFor(err), err)
			return
		}

		conn, err := websocketUpgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Error("cannot upgrade", err)
			return
		}

		client := NewClient(conn, d, caller.UserId)
		d.AddClient(client)
		log.Debug("client connected", "user_id", caller.UserId)

		go client.WriteMessage()
		client.ReadMessage()
	}
}

// PublishUsersChanged fans the event out to every client. A client whose
// buffer is full is disconnected rather than allowed to stall the rest.
func (d *Dispatcher) PublishUsersChanged(ctx context.Context, event models.UsersChangedEvent) error {
	payload, err := json.Marshal(Message{Type: MessageUsersChanged, Data: event})
	if err != nil {
		return fmt.Errorf("marshal ws message: %w", err)
	}

	var slow []*Client
	d.RLock()
	for client := range d.clients {
		select {
		case client.egress <- payload:
		default:
			slow = append(slow, client)
		}
	}
	d.RUnlock()

	for _, client := range slow {
		d.log.Action("ws_users").Warn("dropping slow client", "user_id", client.userId)
		d.RemoveClient(client)
	}
	return nil
}

func (d *Dispatcher) AddClient(client *Client) {
	d.Lock()
	defer d.Unlock()

	d.clients[client] = true
}

// RemoveClient is safe to call more than once per client.
func (d *Dispatcher) RemoveClient(client *Client) {
	d.Lock()
	defer d.Unlock()

	if _, ok := d.clients[client]; ok {
		delete(d.clients, client)
		close(client.egress)
	}
}

func (d *Dispatcher) Count() int {
	d.RLock()
	defer d.RUnlock()
	return len(d.clients)
}

// Close disconnects every client.
func (d *Dispatcher) Close() {
	d.Lock()
	defer d.Unlock()

	for client := range d.clients {
		delete(d.clients, client)
		close(client.egress)
	}
}
