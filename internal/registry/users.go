package registry

import (
	"sync"

	"github.com/oj-engine/gojudge/internal/core"
)

// UserRegistry is the append/update store of Users, enforcing global
// case-sensitive name uniqueness.
type UserRegistry struct {
	mu    sync.RWMutex
	users []core.User
}

func NewUserRegistry() *UserRegistry {
	return &UserRegistry{}
}

// SeedRoot appends the seeded "root" user at id 0, used only when starting
// with --flush-data.
func (r *UserRegistry) SeedRoot() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.users) == 0 {
		r.users = append(r.users, core.User{ID: 0, Name: "root"})
	}
}

// Upsert applies the registry's user rules: id absent + new name ->
// append; id absent + name in use -> ErrInvalidArgument; id present +
// matches -> rename (respecting uniqueness); id present + not found ->
// ErrNotFound.
func (r *UserRegistry) Upsert(id *int, name string) (*core.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if nameOwner, ok := r.findByName(name); ok {
		if id == nil || *id != nameOwner.ID {
			return nil, core.InvalidArgument("user name %q is already in use", name)
		}
	}

	if id == nil {
		u := core.User{ID: len(r.users), Name: name}
		r.users = append(r.users, u)
		return &u, nil
	}

	if *id < 0 || *id >= len(r.users) {
		return nil, core.NotFound("user %d not found", *id)
	}
	r.users[*id].Name = name
	u := r.users[*id]
	return &u, nil
}

func (r *UserRegistry) findByName(name string) (core.User, bool) {
	for _, u := range r.users {
		if u.Name == name {
			return u, true
		}
	}
	return core.User{}, false
}

// Get looks up a user by id.
func (r *UserRegistry) Get(id int) (*core.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id < 0 || id >= len(r.users) {
		return nil, false
	}
	u := r.users[id]
	return &u, true
}

// Exists reports whether id names a known user.
func (r *UserRegistry) Exists(id int) bool {
	_, ok := r.Get(id)
	return ok
}

// All returns every user, in id order.
func (r *UserRegistry) All() []core.User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]core.User(nil), r.users...)
}

// Snapshot returns a copy of every user for persistence.
func (r *UserRegistry) Snapshot() []core.User {
	return r.All()
}

// Restore replaces the registry's contents.
func (r *UserRegistry) Restore(users []core.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = append([]core.User(nil), users...)
}

// Len reports how many users exist.
func (r *UserRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}
