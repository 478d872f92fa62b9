package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slurmsim/slurmsim/cluster"
	"github.com/slurmsim/slurmsim/store"
)

func dialEvents(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	return conn
}

func TestHandleEventsUpgrade(t *testing.T) {
	s := NewServer(newFixtureState(t), "fifo", nil)
	ts := httptest.NewServer(http.HandlerFunc(s.handleEvents))
	defer ts.Close()

	conn := dialEvents(t, ts)
	defer conn.Close()

	assert.NotNil(t, conn)
}

func TestHandleEventsPushesPlacementOnStateChange(t *testing.T) {
	path := newFixtureState(t)
	s := NewServer(path, "fifo", nil)
	ts := httptest.NewServer(http.HandlerFunc(s.handleEvents))
	defer ts.Close()

	conn := dialEvents(t, ts)
	defer conn.Close()

	c, jobs, err := store.Load(path)
	require.NoError(t, err)
	job := jobs["J1"]
	job.State = cluster.Running
	node := "N0"
	job.AssignedNode = &node
	require.NoError(t, store.Save(path, c, jobs, nil))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var evt StreamEvent
	require.NoError(t, conn.ReadJSON(&evt))

	assert.Equal(t, EventPlaced, evt.Type)
	assert.Equal(t, "J1", evt.JobID)
	assert.Equal(t, "N0", evt.NodeID)
}

func TestHandleEventsPushesTickOnClockAdvance(t *testing.T) {
	path := newFixtureState(t)
	s := NewServer(path, "fifo", nil)
	ts := httptest.NewServer(http.HandlerFunc(s.handleEvents))
	defer ts.Close()

	conn := dialEvents(t, ts)
	defer conn.Close()

	c, jobs, err := store.Load(path)
	require.NoError(t, err)
	c.Now += 5
	require.NoError(t, store.Save(path, c, jobs, nil))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var evt StreamEvent
	require.NoError(t, conn.ReadJSON(&evt))

	assert.Equal(t, EventTick, evt.Type)
	assert.Equal(t, 5, evt.Now)
}
