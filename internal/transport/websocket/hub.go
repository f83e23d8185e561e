package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"healthfirst/internal/domain"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	sendBuffer = 64
)

// TokenParser resolves an access token to the user it was issued for.
type TokenParser interface {
	ParseToken(ctx context.Context, token string) (int64, domain.UserRole, error)
}

// Client is one live connection of a provider. A provider may hold several,
// one per open browser tab.
type Client struct {
	ProviderID int64
	Conn       *websocket.Conn
	Send       chan []byte
	Hub        *NotificationHub
}

type outbound struct {
	providerID int64
	payload    []byte
}

// NotificationHub pushes availability notifications to the connections of
// the provider they belong to.
type NotificationHub struct {
	clients    map[int64]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan outbound
	done       chan struct{}
	logger     *zap.Logger
	mutex      sync.RWMutex
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

func NewNotificationHub(logger *zap.Logger) *NotificationHub {
	return &NotificationHub{
		clients:    make(map[int64]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan outbound, 256),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run serves register, unregister and broadcast requests until ctx is done,
// then closes every connection.
func (h *NotificationHub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for providerID, set := range h.clients {
				for client := range set {
					close(client.Send)
				}
				delete(h.clients, providerID)
			}
			h.mutex.Unlock()
			return

		case client := <-h.register:
			h.mutex.Lock()
			if h.clients[client.ProviderID] == nil {
				h.clients[client.ProviderID] = make(map[*Client]struct{})
			}
			h.clients[client.ProviderID][client] = struct{}{}
			h.mutex.Unlock()
			h.logger.Info("notification client connected", zap.Int64("provider_id", client.ProviderID))

		case client := <-h.unregister:
			h.mutex.Lock()
			if set, ok := h.clients[client.ProviderID]; ok {
				if _, ok := set[client]; ok {
					delete(set, client)
					close(client.Send)
				}
				if len(set) == 0 {
					delete(h.clients, client.ProviderID)
				}
			}
			h.mutex.Unlock()
			h.logger.Info("notification client disconnected", zap.Int64("provider_id", client.ProviderID))

		case msg := <-h.broadcast:
			h.mutex.RLock()
			for client := range h.clients[msg.providerID] {
				select {
				case client.Send <- msg.payload:
				default:
					h.logger.Warn("notification client is not reading, dropping message",
						zap.Int64("provider_id", msg.providerID))
				}
			}
			h.mutex.RUnlock()
		}
	}
}

// Send queues n for the provider's open connections. It never blocks the
// caller; when the hub is saturated the notification is dropped, since the
// feed still holds it.
func (h *NotificationHub) Send(n domain.Notification) {
	payload, err := json.Marshal(n)
	if err != nil {
		h.logger.Error("failed to marshal notification", zap.Error(err))
		return
	}

	select {
	case h.broadcast <- outbound{providerID: n.ProviderID, payload: payload}:
	default:
		h.logger.Warn("notification hub is saturated, dropping message",
			zap.Int64("provider_id", n.ProviderID))
	}
}

func (h *NotificationHub) IsConnected(providerID int64) bool {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return len(h.clients[providerID]) > 0
}

// HandleWebSocket upgrades the request after checking the access token,
// which browsers can only pass as the token query parameter.
func (h *NotificationHub) HandleWebSocket(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "token is required"})
			return
		}

		userID, role, err := parser.ParseToken(c.Request.Context(), token)
		if err != nil {
			h.logger.Debug("websocket token rejected", zap.Error(err))
			c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": domain.ErrInvalidToken.Error()})
			return
		}
		if role != domain.UserRoleProvider && role != domain.UserRoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"status": "error", "message": "provider role required"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			h.logger.Error("failed to upgrade connection", zap.Error(err))
			return
		}

		client := &Client{
			ProviderID: userID,
			Conn:       conn,
			Send:       make(chan []byte, sendBuffer),
			Hub:        h,
		}
		select {
		case h.register <- client:
		case <-h.done:
			conn.Close()
			return
		}

		go client.writePump()
		go client.readPump()
	}
}

// readPump only watches for the connection closing; clients have nothing
// to say to the hub.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.Hub.unregister <- c:
		case <-c.Hub.done:
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(512)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Warn("websocket error", zap.Int64("provider_id", c.ProviderID), zap.Error(err))
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.Hub.logger.Error("failed to write notification",
					zap.Int64("provider_id", c.ProviderID),
					zap.Error(err))
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
