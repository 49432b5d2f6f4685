package registry

import (
	"errors"
	"sync"
)

var ErrConflict = errors.New("identifier or handle already registered")

// Registry maps participant identifiers (emails) to connection handles and
// back. Both directions are kept in lockstep under one mutex, so every
// operation observes a consistent pair. The registry has no notion of rooms.
type Registry struct {
	mx       *sync.Mutex
	byID     map[string]string
	byHandle map[string]string
}

func New() *Registry {
	return &Registry{
		mx:       &sync.Mutex{},
		byID:     make(map[string]string),
		byHandle: make(map[string]string),
	}
}

// Register inserts both directions of the (id, handle) pair. It fails with
// ErrConflict if either side is already present; callers are expected to
// remove stale entries first, entries are never updated in place.
func (r *Registry) Register(id, handle string) error {
	r.mx.Lock()
	defer r.mx.Unlock()

	if _, ok := r.byID[id]; ok {
		return ErrConflict
	}
	if _, ok := r.byHandle[handle]; ok {
		return ErrConflict
	}
	r.byID[id] = handle
	r.byHandle[handle] = id
	return nil
}

// Handle returns the connection handle registered for id.
func (r *Registry) Handle(id string) (string, bool) {
	r.mx.Lock()
	defer r.mx.Unlock()
	handle, ok := r.byID[id]
	return handle, ok
}

// Identifier returns the identifier registered for handle.
func (r *Registry) Identifier(handle string) (string, bool) {
	r.mx.Lock()
	defer r.mx.Unlock()
	id, ok := r.byHandle[handle]
	return id, ok
}

// Remove deletes the entry for id in both directions. Removing an absent id
// is a no-op.
func (r *Registry) Remove(id string) {
	r.mx.Lock()
	defer r.mx.Unlock()
	if handle, ok := r.byID[id]; ok {
		delete(r.byID, id)
		delete(r.byHandle, handle)
	}
}

// RemoveByHandle deletes the entry for handle in both directions. Removing an
// absent handle is a no-op.
func (r *Registry) RemoveByHandle(handle string) {
	r.mx.Lock()
	defer r.mx.Unlock()
	if id, ok := r.byHandle[handle]; ok {
		delete(r.byHandle, handle)
		delete(r.byID, id)
	}
}
