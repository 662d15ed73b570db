package websocket

import (
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

// The hub pushes state-change events (progress updates, finalized attempts,
// exam results, issued certificates) to every tab a learner has open, so a
// stale tab refreshes instead of merging concurrent edits.

type Client struct {
	UserID uuid.UUID
	Conn   *websocket.Conn
}

type Event struct {
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data,omitempty"`
}

type addressedEvent struct {
	userID uuid.UUID
	event  Event
}

var clients = make(map[uuid.UUID][]*websocket.Conn)
var clientsMu sync.RWMutex
var Register = make(chan *Client)
var Unregister = make(chan *Client)
var events = make(chan addressedEvent, 64)

// Push queues an event for every open connection of the given user. It never
// blocks; if the hub is not draining, the event is dropped (clients refresh
// on focus anyway).
func Push(userID uuid.UUID, eventType string, data map[string]interface{}) {
	select {
	case events <- addressedEvent{userID: userID, event: Event{Type: eventType, Data: data}}:
	default:
		log.Printf("Event queue full, dropping %s event for user %s", eventType, userID)
	}
}

func RunHub() {
	for {
		select {
		case client := <-Register:
			log.Printf("Client registered: %s", client.UserID)
			clientsMu.Lock()
			clients[client.UserID] = append(clients[client.UserID], client.Conn)
			clientsMu.Unlock()
		case client := <-Unregister:
			log.Printf("Client unregistered: %s", client.UserID)
			clientsMu.Lock()
			conns := clients[client.UserID]
			for i, conn := range conns {
				if conn == client.Conn {
					clients[client.UserID] = append(conns[:i], conns[i+1:]...)
					break
				}
			}
			if len(clients[client.UserID]) == 0 {
				delete(clients, client.UserID)
			}
			clientsMu.Unlock()
		case ev := <-events:
			clientsMu.RLock()
			conns := clients[ev.userID]
			var broken []*websocket.Conn
			for _, conn := range conns {
				if err := conn.WriteJSON(ev.event); err != nil {
					log.Printf("Error pushing %s event to user %s: %v", ev.event.Type, ev.userID, err)
					conn.Close()
					broken = append(broken, conn)
				}
			}
			clientsMu.RUnlock()

			if len(broken) > 0 {
				clientsMu.Lock()
				for _, bad := range broken {
					conns := clients[ev.userID]
					for i, conn := range conns {
						if conn == bad {
							clients[ev.userID] = append(conns[:i], conns[i+1:]...)
							break
						}
					}
				}
				if len(clients[ev.userID]) == 0 {
					delete(clients, ev.userID)
				}
				clientsMu.Unlock()
			}
		}
	}
}
