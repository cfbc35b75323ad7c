package websocket

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"procurement/internal/policy"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

type stubTokens map[string]uuid.UUID

func (s stubTokens) Parse(token string) (uuid.UUID, error) {
	if id, ok := s[token]; ok {
		return id, nil
	}
	return uuid.Nil, errors.New("invalid token")
}

type stubUsers map[uuid.UUID]policy.Principal

func (s stubUsers) ResolvePrincipal(_ context.Context, id uuid.UUID) (policy.Principal, error) {
	if p, ok := s[id]; ok {
		return p, nil
	}
	return policy.Principal{}, errors.New("inactive")
}

func newTestServer(t *testing.T) (*Hub, *httptest.Server, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	active := uuid.New()
	tokens := stubTokens{"good": active, "disabled": uuid.New()}
	users := stubUsers{active: {UserID: active, Role: "requester"}}

	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	router := gin.New()
	router.GET("/ws", func(c *gin.Context) { ServeWs(hub, c, tokens, users) })
	srv := httptest.NewServer(router)
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, srv, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func TestServeWsRejectsBadTokens(t *testing.T) {
	_, _, url := newTestServer(t)

	for _, token := range []string{"", "unknown", "disabled"} {
		_, resp, err := websocket.DefaultDialer.Dial(url+"?token="+token, nil)
		require.Error(t, err, "token %q", token)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
}

func TestPublishReachesClients(t *testing.T) {
	hub, _, url := newTestServer(t)

	conn, _, err := websocket.DefaultDialer.Dial(url+"?token=good", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	hub.Publish("request.approved", map[string]string{"id": "r-1"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, message, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "request.approved", gjson.GetBytes(message, "event").String())
	assert.Equal(t, "r-1", gjson.GetBytes(message, "data.id").String())
	assert.True(t, gjson.GetBytes(message, "timestamp").Exists())
}

func TestPublishWithoutRunnerDoesNotBlock(t *testing.T) {
	hub := NewHub()
	done := make(chan struct{})
	go func() {
		for i := 0; i < broadcastBuffer*2; i++ {
			hub.Publish("request.created", i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked")
	}
}
