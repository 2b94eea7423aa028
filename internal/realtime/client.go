package realtime

import (
	"encoding/json"
	"time"

	"github.com/coedit/coedit/pkg/logger"
	"github.com/coedit/coedit/pkg/metrics"
	"github.com/gorilla/websocket"
)

const (
	// time allowed to write a message to the peer
	writeWait = 10 * time.Second
	// time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second
	// send pings with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10
	// maximum inbound message size
	maxMessageSize = 1 << 20
	// outbound queue depth per connection
	sendBufferSize = 64
)

// Client is one realtime connection. The registry only ever holds the
// pointer; the connection itself is owned by the read/write pumps.
type Client struct {
	conn *websocket.Conn
	send chan []byte
}

func newClient(conn *websocket.Conn) *Client {
	return &Client{conn: conn, send: make(chan []byte, sendBufferSize)}
}

// readPump consumes inbound events until the connection drops, then removes
// the client from all rooms. Unknown or malformed events are ignored; the
// relay has no error channel back to the peer.
func (c *Client) readPump(reg *Registry, disp *Dispatcher) {
	defer func() {
		reg.Leave(c)
		close(c.send)
		_ = c.conn.Close()
		metrics.RealtimeConnections.Dec()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debugf("realtime: read error: %v", err)
			}
			return
		}
		var ev Event
		if err := json.Unmarshal(msg, &ev); err != nil {
			logger.Debugf("realtime: ignoring malformed event: %v", err)
			continue
		}
		switch ev.Name {
		case EventJoinDocument:
			var docID string
			if err := json.Unmarshal(ev.Data, &docID); err == nil {
				reg.Join(c, docID)
			}
		case EventDocumentChange:
			disp.Broadcast(c, ev.Data)
		}
	}
}

// writePump flushes the send queue and keeps the connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
