package realtime

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func sendEvent(t *testing.T, conn *websocket.Conn, name string, data interface{}) {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	msg, err := json.Marshal(Event{Name: name, Data: raw})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, msg))
}

func expectNothing(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err, "expected no message")
}

func TestWebsocket_RelayBetweenRoomMembers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	reg := NewRegistry()
	RegisterRoutes(r, reg, NewDispatcher(reg))
	srv := httptest.NewServer(r)
	defer srv.Close()

	a := dialWS(t, srv)
	b := dialWS(t, srv)
	c := dialWS(t, srv)

	sendEvent(t, a, EventJoinDocument, "doc1")
	sendEvent(t, b, EventJoinDocument, "doc1")
	sendEvent(t, c, EventJoinDocument, "doc2")

	// allow the server to process the joins before broadcasting
	time.Sleep(100 * time.Millisecond)

	delta := map[string]interface{}{"documentId": "doc1", "text": "hi"}
	sendEvent(t, a, EventDocumentChange, delta)

	// b receives receive-changes with the identical payload
	require.NoError(t, b.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := b.ReadMessage()
	require.NoError(t, err)
	var ev Event
	require.NoError(t, json.Unmarshal(msg, &ev))
	require.Equal(t, EventReceiveChanges, ev.Name)
	require.JSONEq(t, `{"documentId":"doc1","text":"hi"}`, string(ev.Data))

	// the sender and members of other rooms receive nothing
	expectNothing(t, a)
	expectNothing(t, c)
}

func TestWebsocket_DisconnectLeavesRooms(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	reg := NewRegistry()
	RegisterRoutes(r, reg, NewDispatcher(reg))
	srv := httptest.NewServer(r)
	defer srv.Close()

	a := dialWS(t, srv)
	sendEvent(t, a, EventJoinDocument, "doc1")

	require.Eventually(t, func() bool {
		return len(reg.Members("doc1")) == 1
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, a.Close())

	require.Eventually(t, func() bool {
		return len(reg.Members("doc1")) == 0
	}, time.Second, 10*time.Millisecond)
}
