package realtime

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func bareClient() *Client {
	return &Client{send: make(chan []byte, 8)}
}

func TestRegistry_JoinAndMembers(t *testing.T) {
	reg := NewRegistry()
	a, b := bareClient(), bareClient()

	reg.Join(a, "doc1")
	reg.Join(b, "doc1")
	require.Len(t, reg.Members("doc1"), 2)

	// duplicate join is idempotent
	reg.Join(a, "doc1")
	require.Len(t, reg.Members("doc1"), 2)

	// empty room key ignored
	reg.Join(a, "")
	require.Empty(t, reg.Members(""))

	// unknown room has no members
	require.Empty(t, reg.Members("doc2"))
}

func TestRegistry_LeaveRemovesFromAllRooms(t *testing.T) {
	reg := NewRegistry()
	a := bareClient()
	reg.Join(a, "doc1")
	reg.Join(a, "doc2")

	reg.Leave(a)
	require.Empty(t, reg.Members("doc1"))
	require.Empty(t, reg.Members("doc2"))

	// leave is idempotent and safe for unknown clients
	reg.Leave(a)
	reg.Leave(bareClient())
}
