package hub

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/marcuschin/poolhall-pos/utils"
)

// Event types pushed to connected consoles.
const (
	EventInit               = "init"
	EventTableUpdate        = "table_update"
	EventTablesMerged       = "tables_merged"
	EventTableUnmerged      = "table_unmerged"
	EventQueueUpdate        = "queue_update"
	EventReservationUpdate  = "reservation_update"
	EventTransactionCreated = "transaction_created"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub fans committed state changes out to every connected observer.
// Delivery is best-effort: a slow client loses messages, a dead one is
// dropped, and neither ever blocks the mutation path.
type Hub struct {
	mu      sync.Mutex
	clients map[*Client]struct{}
}

type Client struct {
	conn  *websocket.Conn
	send  chan []byte
	close sync.Once
}

func New() *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
	}
}

// Register adds a connection and starts its writer. The returned client
// must be passed back to Unregister when the read loop ends.
func (h *Hub) Register(conn *websocket.Conn) *Client {
	cl := &Client{
		conn: conn,
		send: make(chan []byte, 64),
	}

	h.mu.Lock()
	h.clients[cl] = struct{}{}
	h.mu.Unlock()

	go cl.writePump()
	return cl
}

func (h *Hub) Unregister(cl *Client) {
	h.mu.Lock()
	delete(h.clients, cl)
	h.mu.Unlock()
	cl.shutdown()
}

func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast sends an event to every connected client. Messages to clients
// with a full buffer are discarded; real-time consoles recover from the
// next full snapshot.
func (h *Hub) Broadcast(event string, data interface{}) {
	raw, err := json.Marshal(Message{Event: event, Data: data})
	if err != nil {
		utils.ErrorLogger.Printf("hub: marshal %s event: %v", event, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for cl := range h.clients {
		select {
		case cl.send <- raw:
		default:
		}
	}
}

// Send delivers a message to a single client, used for the initial bulk
// snapshot on connect.
func (cl *Client) Send(msg Message) {
	raw, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Printf("hub: marshal %s event: %v", msg.Event, err)
		return
	}
	select {
	case cl.send <- raw:
	default:
	}
}

func (cl *Client) writePump() {
	for raw := range cl.send {
		if err := cl.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
			cl.conn.Close()
			return
		}
	}
	cl.conn.Close()
}

func (cl *Client) shutdown() {
	cl.close.Do(func() {
		close(cl.send)
	})
}
