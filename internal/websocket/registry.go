package websocket

import "sync"

// Registry holds each room's broadcast group: the set of live sessions
// currently joined to that room.
type Registry struct {
	mu    sync.RWMutex
	rooms map[int64]map[*Session]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[int64]map[*Session]struct{}),
	}
}

func (r *Registry) Add(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.rooms[s.RoomID] == nil {
		r.rooms[s.RoomID] = make(map[*Session]struct{})
	}
	r.rooms[s.RoomID][s] = struct{}{}
}

// Remove is idempotent and safe to race with an in-flight broadcast: a
// broadcast to a just-removed member is a harmless no-op.
func (r *Registry) Remove(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if members, ok := r.rooms[s.RoomID]; ok {
		delete(members, s)
		if len(members) == 0 {
			delete(r.rooms, s.RoomID)
		}
	}
}

// Broadcast fans a payload out to every member of the room's group,
// including the sender's own session. Delivery per member is independent;
// TrySend never blocks on a slow consumer.
func (r *Registry) Broadcast(roomID int64, payload []byte) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for s := range r.rooms[roomID] {
		s.TrySend(payload)
	}
}

func (r *Registry) RoomSize(roomID int64) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[roomID])
}

func (r *Registry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, members := range r.rooms {
		for s := range members {
			s.Close()
		}
	}
}
