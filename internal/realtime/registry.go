package realtime

import "sync"

// Registry tracks which realtime connections are members of which document
// room. It performs no authentication: any connected session may join any
// room by id. Rooms exist implicitly while they have at least one member.
type Registry struct {
	mu     sync.RWMutex
	rooms  map[string]map[*Client]struct{}
	joined map[*Client]map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		rooms:  map[string]map[*Client]struct{}{},
		joined: map[*Client]map[string]struct{}{},
	}
}

// Join adds the client to the room keyed by docID. Joining a room the client
// is already in is a no-op.
func (r *Registry) Join(c *Client, docID string) {
	if docID == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[docID]
	if !ok {
		room = map[*Client]struct{}{}
		r.rooms[docID] = room
	}
	room[c] = struct{}{}
	mem, ok := r.joined[c]
	if !ok {
		mem = map[string]struct{}{}
		r.joined[c] = mem
	}
	mem[docID] = struct{}{}
}

// Leave removes the client from every room it joined. Safe to call for a
// client that never joined anything, and safe to call twice.
func (r *Registry) Leave(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for docID := range r.joined[c] {
		delete(r.rooms[docID], c)
		if len(r.rooms[docID]) == 0 {
			delete(r.rooms, docID)
		}
	}
	delete(r.joined, c)
}

// forEachMember runs fn for every member of the room while holding the
// registry read lock. Leave takes the write lock, so a client's send channel
// cannot be closed while a fan-out over it is in progress.
func (r *Registry) forEachMember(docID string, fn func(*Client)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for c := range r.rooms[docID] {
		fn(c)
	}
}

// Members returns a snapshot of the clients currently in the room.
func (r *Registry) Members(docID string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Client, 0, len(r.rooms[docID]))
	for c := range r.rooms[docID] {
		out = append(out, c)
	}
	return out
}
