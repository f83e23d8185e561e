package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"healthfirst/internal/domain"
)

type stubParser map[string]struct {
	id   int64
	role domain.UserRole
}

func (p stubParser) ParseToken(_ context.Context, token string) (int64, domain.UserRole, error) {
	user, ok := p[token]
	if !ok {
		return 0, "", errors.New("bad token")
	}
	return user.id, user.role, nil
}

func newHubServer(t *testing.T) (*NotificationHub, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := NewNotificationHub(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	parser := stubParser{
		"provider": {id: 42, role: domain.UserRoleProvider},
		"patient":  {id: 9, role: domain.UserRolePatient},
	}
	router := gin.New()
	router.GET("/ws/notifications", hub.HandleWebSocket(parser))

	srv := httptest.NewServer(router)
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/notifications"
}

func TestHubDeliversToProvider(t *testing.T) {
	hub, url := newHubServer(t)

	conn, _, err := websocket.DefaultDialer.Dial(url+"?token=provider", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.IsConnected(42) }, time.Second, 10*time.Millisecond)

	hub.Send(domain.Notification{ProviderID: 7, Title: "Not yours"})
	hub.Send(domain.Notification{ProviderID: 42, Title: "Slot Added", Severity: domain.SeveritySuccess})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var got domain.Notification
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "Slot Added", got.Title)
	assert.Equal(t, int64(42), got.ProviderID)
}

func TestHubRejectsUnauthorized(t *testing.T) {
	_, url := newHubServer(t)

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(url+"?token=forged", nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(url+"?token=patient", nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestHubForgetsClosedConnections(t *testing.T) {
	hub, url := newHubServer(t)

	conn, _, err := websocket.DefaultDialer.Dial(url+"?token=provider", nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.IsConnected(42) }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return !hub.IsConnected(42) }, 2*time.Second, 10*time.Millisecond)
}
