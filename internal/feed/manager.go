package feed

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"carbon-market/credit-exchange/exchange-backend/internal/ledger"
)

// Event is one ledger event pushed to websocket subscribers.
type Event struct {
	Type      string `json:"type"`
	TxID      uint64 `json:"tx_id"`
	ProjectID uint64 `json:"project_id"`
	Amount    uint64 `json:"amount"`
	Price     uint64 `json:"price"`
	Height    uint64 `json:"height"`
}

// Hub broadcasts committed ledger events to websocket clients. It implements
// audit.Sink so services fan out to it like any other sink; a slow client
// drops events rather than blocking the ledger.
type Hub struct {
	mu       sync.Mutex
	clients  map[*client]bool
	events   chan Event
	stop     chan struct{}
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

type client struct {
	conn *websocket.Conn
	send chan Event
}

// NewHub starts a broadcast hub.
func NewHub(logger *zap.Logger) *Hub {
	h := &Hub{
		clients: make(map[*client]bool),
		events:  make(chan Event, 256),
		stop:    make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger: logger,
	}
	go h.run()
	return h
}

// Record implements audit.Sink.
func (h *Hub) Record(tx *ledger.Transaction) {
	event := Event{
		Type:      string(tx.Type),
		TxID:      tx.ID,
		ProjectID: tx.ProjectID,
		Amount:    tx.Amount,
		Price:     tx.Price,
		Height:    tx.Height,
	}
	select {
	case h.events <- event:
	default:
		h.logger.Warn("Event feed backlog full, dropping event", zap.Uint64("tx_id", tx.ID))
	}
}

// ServeWS handles GET /api/v1/feed
func (h *Hub) ServeWS(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("Websocket upgrade failed", zap.Error(err))
		return
	}

	cl := &client{conn: conn, send: make(chan Event, 64)}
	h.mu.Lock()
	h.clients[cl] = true
	h.mu.Unlock()

	go h.writePump(cl)
	go h.readPump(cl)
}

// Stop shuts the hub down and closes all client connections.
func (h *Hub) Stop() {
	close(h.stop)
}

func (h *Hub) run() {
	for {
		select {
		case event := <-h.events:
			h.mu.Lock()
			for cl := range h.clients {
				select {
				case cl.send <- event:
				default:
					// Slow consumer; drop it.
					delete(h.clients, cl)
					close(cl.send)
				}
			}
			h.mu.Unlock()
		case <-h.stop:
			h.mu.Lock()
			for cl := range h.clients {
				delete(h.clients, cl)
				close(cl.send)
			}
			h.mu.Unlock()
			return
		}
	}
}

func (h *Hub) writePump(cl *client) {
	defer cl.conn.Close()
	for event := range cl.send {
		if err := cl.conn.WriteJSON(event); err != nil {
			return
		}
	}
	cl.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (h *Hub) readPump(cl *client) {
	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			h.mu.Lock()
			if h.clients[cl] {
				delete(h.clients, cl)
				close(cl.send)
			}
			h.mu.Unlock()
			return
		}
	}
}
