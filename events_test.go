package main

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (h *Hub) connCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

func TestHubBroadcastsToConnectedPages(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub(func(string) bool { return false })
	t.Cleanup(hub.Close)

	r := gin.New()
	r.GET("/events", ServeEvents(hub))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.connCount() == 1 }, time.Second, 10*time.Millisecond)

	hub.Notify(toast(LevelSuccess, "Arc 2 unlocked!"))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev Event
	require.NoError(t, json.Unmarshal(msg, &ev))
	assert.Equal(t, EventNotification, ev.Type)
	assert.Equal(t, LevelSuccess, ev.Level)
	assert.Equal(t, "Arc 2 unlocked!", ev.Message)
	assert.NotEmpty(t, ev.ID)
	assert.False(t, ev.At.IsZero())
}

func TestHubRejectsForeignOrigins(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := Config{}
	hub := NewHub(cfg.AllowOrigin)
	t.Cleanup(hub.Close)

	r := gin.New()
	r.GET("/events", ServeEvents(hub))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/events"
	header := map[string][]string{"Origin": {"https://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 403, resp.StatusCode)
	assert.Zero(t, hub.connCount())
}
