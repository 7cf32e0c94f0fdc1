package core

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/rafapignataro/open-world/internal/domain"
	"github.com/rafapignataro/open-world/internal/idgen"
)

// Directory is the process-wide roomId -> Room mapping. It lives for the
// whole process; rooms remove themselves when they drain.
type Directory struct {
	registry *Registry
	cfg      RoomConfig

	mu    sync.RWMutex
	rooms map[domain.RoomID]*Room
}

func NewDirectory(registry *Registry, cfg RoomConfig) *Directory {
	return &Directory{
		registry: registry,
		cfg:      cfg,
		rooms:    make(map[domain.RoomID]*Room),
	}
}

// CreateRoom allocates a room under a fresh short id. The password is
// stored but joins never check it.
func (d *Directory) CreateRoom(name domain.RoomName, password string) (*Room, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var id string
	for {
		fresh, err := idgen.NewRoomID()
		if err != nil {
			return nil, err
		}
		if _, taken := d.rooms[domain.RoomID(fresh)]; !taken {
			id = fresh
			break
		}
	}

	meta := &domain.Room{ID: domain.RoomID(id), Name: name, Password: password}
	room := NewRoom(meta, d.cfg, d.registry, d.Delete)
	d.rooms[meta.ID] = room
	log.Info().Str("module", "core.directory").Str("room", id).Str("name", string(name)).Msg("room created")
	return room, nil
}

func (d *Directory) Room(id domain.RoomID) (*Room, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	room, ok := d.rooms[id]
	return room, ok
}

// Delete discards a room. Rooms call it through their onEmpty hook once
// the last participant leaves.
func (d *Directory) Delete(id domain.RoomID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.rooms[id]; !ok {
		return
	}
	delete(d.rooms, id)
	log.Info().Str("module", "core.directory").Str("room", string(id)).Msg("room removed")
}

func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.rooms)
}

// List projects every room to its {id, name, participants} snapshot.
func (d *Directory) List() []RoomSnapshot {
	d.mu.RLock()
	rooms := make([]*Room, 0, len(d.rooms))
	for _, room := range d.rooms {
		rooms = append(rooms, room)
	}
	d.mu.RUnlock()

	out := make([]RoomSnapshot, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, room.Snapshot())
	}
	return out
}

// StopAll halts every room loop; used on process shutdown.
func (d *Directory) StopAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, room := range d.rooms {
		room.Stop()
	}
}
