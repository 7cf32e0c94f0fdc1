package core

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/rafapignataro/open-world/internal/domain"
)

type userEntry struct {
	user   *domain.User
	conn   SignalConnection
	roomID domain.RoomID
}

// Registry maps every live connection to a stable user id. It is shared by
// all rooms; mutations are rare next to lookups.
type Registry struct {
	mu    sync.RWMutex
	users map[domain.UserID]*userEntry
}

func NewRegistry() *Registry {
	return &Registry{users: make(map[domain.UserID]*userEntry)}
}

// Register allocates a user for a fresh connection and tells the connection
// its assigned id.
func (r *Registry) Register(conn SignalConnection) *domain.User {
	u := domain.NewUser()
	r.mu.Lock()
	r.users[u.ID] = &userEntry{user: u, conn: conn}
	r.mu.Unlock()
	log.Info().Str("module", "core.registry").Str("user", string(u.ID)).Msg("user connected")
	sendEvent(conn, EventConnectUser, u)
	return u
}

// Resolve looks up a user and its connection. Unknown ids are expected
// around disconnect races and simply report !ok.
func (r *Registry) Resolve(id domain.UserID) (*domain.User, SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.users[id]
	if !ok {
		return nil, nil, false
	}
	return e.user, e.conn, true
}

// Unregister drops the entry. Callers clean up room membership first.
func (r *Registry) Unregister(id domain.UserID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return
	}
	delete(r.users, id)
	log.Info().Str("module", "core.registry").Str("user", string(id)).Msg("user disconnected")
}

func (r *Registry) SetRoom(id domain.UserID, roomID domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.users[id]; ok {
		e.roomID = roomID
	}
}

func (r *Registry) ClearRoom(id domain.UserID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.users[id]; ok {
		e.roomID = ""
	}
}

// RoomOf returns the room the user currently occupies, if any.
func (r *Registry) RoomOf(id domain.UserID) (domain.RoomID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.users[id]
	if !ok || e.roomID == "" {
		return "", false
	}
	return e.roomID, true
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

// BroadcastAll fans an event out to every registered connection, joined to
// a room or not. This is how the lobby learns about new rooms.
func (r *Registry) BroadcastAll(name string, data any) {
	frame, err := EncodeEvent(name, data)
	if err != nil {
		log.Error().Err(err).Str("module", "core.registry").Str("event", name).Msg("encode event")
		return
	}
	r.mu.RLock()
	conns := make([]SignalConnection, 0, len(r.users))
	for _, e := range r.users {
		conns = append(conns, e.conn)
	}
	r.mu.RUnlock()
	sent := 0
	for _, conn := range conns {
		if err := conn.TrySend(frame); err != nil {
			continue
		}
		sent++
	}
	log.Debug().Str("module", "core.registry").Str("event", name).Int("sent_to", sent).Msg("broadcast all")
}
