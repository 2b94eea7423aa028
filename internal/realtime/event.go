package realtime

import "encoding/json"

// Event is the wire envelope for realtime messages in both directions.
// Inbound names: "join-document" (data = document id string) and
// "document-change" (data = opaque delta object). Outbound: "receive-changes"
// carrying the forwarded delta unchanged.
type Event struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data"`
}

const (
	EventJoinDocument   = "join-document"
	EventDocumentChange = "document-change"
	EventReceiveChanges = "receive-changes"
)

// deltaHeader is the only part of a delta the relay looks at; everything else
// is forwarded verbatim.
type deltaHeader struct {
	DocumentID string `json:"documentId"`
}
