package memory

import (
	"errors"
	"sync"
)

const (
	defaultMaxParticipants = 2
)

var ErrRoomIsFull = errors.New("room is full")

// room guards its own membership so that joins on different rooms do not
// contend. closed marks a room that has been discarded from the table; a
// joiner that raced with the discard must re-fetch.
type room struct {
	mx      sync.Mutex
	members map[string]struct{}
	closed  bool
}

// MemStore tracks which connection handles occupy which room. Rooms are
// created on first join and discarded as soon as they become empty; an empty
// room is never observable through the table.
type MemStore struct {
	mx    *sync.RWMutex
	rooms map[string]*room
}

func NewMemStore() *MemStore {
	return &MemStore{
		mx:    &sync.RWMutex{},
		rooms: make(map[string]*room),
	}
}

func (ms *MemStore) get(roomID string) *room {
	ms.mx.RLock()
	defer ms.mx.RUnlock()
	return ms.rooms[roomID]
}

func (ms *MemStore) getOrCreate(roomID string) *room {
	if r := ms.get(roomID); r != nil {
		return r
	}
	ms.mx.Lock()
	defer ms.mx.Unlock()
	if r, ok := ms.rooms[roomID]; ok {
		return r
	}
	r := &room{members: make(map[string]struct{})}
	ms.rooms[roomID] = r
	return r
}

// discard drops the room from the table if it is still the same closed
// instance. A fresh room created under the same ID in the meantime stays.
func (ms *MemStore) discard(roomID string, r *room) {
	ms.mx.Lock()
	defer ms.mx.Unlock()
	if ms.rooms[roomID] == r {
		delete(ms.rooms, roomID)
	}
}

// Join adds handle to the room as a single atomic check-and-add. It returns
// ErrRoomIsFull when two other handles already occupy the room; the handle is
// not added in that case. Joining a room the handle is already in is a no-op.
func (ms *MemStore) Join(roomID, handle string) error {
	for {
		r := ms.getOrCreate(roomID)
		r.mx.Lock()
		if r.closed {
			r.mx.Unlock()
			continue
		}
		if _, ok := r.members[handle]; !ok && len(r.members) >= defaultMaxParticipants {
			r.mx.Unlock()
			return ErrRoomIsFull
		}
		r.members[handle] = struct{}{}
		r.mx.Unlock()
		return nil
	}
}

// Leave removes handle from the room and reports whether it was a member.
// Idempotent; when the last member leaves, the room entry is discarded
// entirely.
func (ms *MemStore) Leave(roomID, handle string) bool {
	r := ms.get(roomID)
	if r == nil {
		return false
	}
	r.mx.Lock()
	_, wasMember := r.members[handle]
	delete(r.members, handle)
	empty := len(r.members) == 0
	if empty {
		r.closed = true
	}
	r.mx.Unlock()
	if empty {
		ms.discard(roomID, r)
	}
	return wasMember
}

// CloseRoom atomically evicts every handle from the room and discards it,
// returning the evicted handles. Closing an absent room returns nil.
func (ms *MemStore) CloseRoom(roomID string) []string {
	r := ms.get(roomID)
	if r == nil {
		return nil
	}
	r.mx.Lock()
	evicted := make([]string, 0, len(r.members))
	for h := range r.members {
		evicted = append(evicted, h)
	}
	r.members = make(map[string]struct{})
	r.closed = true
	r.mx.Unlock()
	ms.discard(roomID, r)
	return evicted
}

// Members returns the handles currently in the room.
func (ms *MemStore) Members(roomID string) []string {
	return ms.MembersExcept(roomID, "")
}

// MembersExcept returns the handles in the room other than the given one.
func (ms *MemStore) MembersExcept(roomID, handle string) []string {
	r := ms.get(roomID)
	if r == nil {
		return nil
	}
	r.mx.Lock()
	defer r.mx.Unlock()
	var out []string
	for h := range r.members {
		if h != handle {
			out = append(out, h)
		}
	}
	return out
}
