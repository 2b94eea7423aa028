package realtime

import (
	"encoding/json"

	"github.com/coedit/coedit/pkg/logger"
	"github.com/coedit/coedit/pkg/metrics"
)

// Dispatcher forwards edit deltas to the other members of a document room.
// It is a pure fan-out primitive: no ordering across senders, no merge, no
// persistence. Delivery is fire-and-forget; a member with a full send buffer
// just misses the delta.
type Dispatcher struct {
	reg *Registry
}

func NewDispatcher(reg *Registry) *Dispatcher {
	return &Dispatcher{reg: reg}
}

// Broadcast sends delta to every member of the delta's document room except
// the sender. A delta without a documentId, or a room with no other members,
// makes the call a no-op.
func (d *Dispatcher) Broadcast(sender *Client, delta json.RawMessage) {
	var hdr deltaHeader
	if err := json.Unmarshal(delta, &hdr); err != nil || hdr.DocumentID == "" {
		logger.Debugf("relay: dropping delta without documentId")
		return
	}
	out, err := json.Marshal(Event{Name: EventReceiveChanges, Data: delta})
	if err != nil {
		return
	}
	d.reg.forEachMember(hdr.DocumentID, func(c *Client) {
		if c == sender {
			return
		}
		select {
		case c.send <- out:
			metrics.RealtimeDeltasForwarded.Inc()
		default:
			// slow consumer: drop rather than block the relay
			logger.Debugf("relay: send buffer full, dropping delta for room %s", hdr.DocumentID)
		}
	})
}
