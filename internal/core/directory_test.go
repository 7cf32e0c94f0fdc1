package core

import (
	"regexp"
	"testing"

	"github.com/rafapignataro/open-world/internal/domain"
)

func newTestDirectory(t *testing.T) (*Directory, *Registry) {
	t.Helper()
	reg := NewRegistry()
	dir := NewDirectory(reg, testRoomConfig())
	t.Cleanup(dir.StopAll)
	return dir, reg
}

func TestCreateAndLookupRoom(t *testing.T) {
	dir, _ := newTestDirectory(t)

	room, err := dir.CreateRoom("Alpha", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !regexp.MustCompile(`^[0-9a-f]{6}$`).MatchString(string(room.ID())) {
		t.Fatalf("room id %q is not a short hex token", room.ID())
	}
	if room.Name() != "Alpha" {
		t.Fatalf("name = %q, want Alpha", room.Name())
	}
	if room.Status() != domain.RoomStopped {
		t.Fatalf("fresh room status = %s, want STOPPED", room.Status())
	}

	got, ok := dir.Room(room.ID())
	if !ok || got != room {
		t.Fatalf("lookup returned (%v, %v)", got, ok)
	}
	if _, ok := dir.Room("nope"); ok {
		t.Fatalf("unknown id resolved")
	}
}

func TestListProjection(t *testing.T) {
	dir, reg := newTestDirectory(t)
	a, _ := addUser(t, reg)

	if got := len(dir.List()); got != 0 {
		t.Fatalf("empty directory lists %d rooms", got)
	}

	room, err := dir.CreateRoom("Alpha", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	room.AddParticipant(a)

	list := dir.List()
	if len(list) != 1 {
		t.Fatalf("listed %d rooms, want 1", len(list))
	}
	snap := list[0]
	if snap.ID != room.ID() || snap.Name != "Alpha" {
		t.Fatalf("snapshot = %+v", snap)
	}
	if len(snap.Participants) != 1 || snap.Participants[0].UserID != a {
		t.Fatalf("snapshot participants = %+v", snap.Participants)
	}
}

func TestRoomRemovedWhenDrained(t *testing.T) {
	dir, reg := newTestDirectory(t)
	a, _ := addUser(t, reg)
	b, _ := addUser(t, reg)

	room, err := dir.CreateRoom("Alpha", "hunter2")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// The stored password is never checked on join.
	room.AddParticipant(a)
	room.AddParticipant(b)

	room.RemoveParticipant(a)
	if dir.Len() != 1 {
		t.Fatalf("room discarded while still occupied")
	}

	room.RemoveParticipant(b)
	if dir.Len() != 0 {
		t.Fatalf("drained room still in directory")
	}
	if got := len(dir.List()); got != 0 {
		t.Fatalf("drained room still listed: %d", got)
	}
	if _, ok := dir.Room(room.ID()); ok {
		t.Fatalf("drained room still resolvable")
	}

	// A second delete of the same id is a no-op.
	dir.Delete(room.ID())
}

func TestDrainedRoomCannotBeRejoined(t *testing.T) {
	dir, reg := newTestDirectory(t)
	a, _ := addUser(t, reg)
	b, _ := addUser(t, reg)

	room, err := dir.CreateRoom("Alpha", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	room.AddParticipant(a)

	// A racing join resolves the room before the drain and only calls
	// AddParticipant afterwards; the stale pointer must stay dead.
	stale := room
	room.RemoveParticipant(a)

	if stale.AddParticipant(b) {
		t.Fatalf("join on a drained room succeeded")
	}
	if got := stale.Status(); got != domain.RoomStopped {
		t.Fatalf("drained room status = %s, want STOPPED", got)
	}
	if got := stale.MemberCount(); got != 0 {
		t.Fatalf("drained room has %d members, want 0", got)
	}
	if dir.Len() != 0 {
		t.Fatalf("drained room reappeared in the directory")
	}
	if _, ok := reg.RoomOf(b); ok {
		t.Fatalf("late joiner tracked as being in a dead room")
	}
}

func TestStopAll(t *testing.T) {
	dir, reg := newTestDirectory(t)
	a, _ := addUser(t, reg)
	b, _ := addUser(t, reg)

	r1, _ := dir.CreateRoom("one", "")
	r2, _ := dir.CreateRoom("two", "")
	r1.AddParticipant(a)
	r2.AddParticipant(b)

	dir.StopAll()
	if r1.Status() != domain.RoomStopped || r2.Status() != domain.RoomStopped {
		t.Fatalf("rooms still running after StopAll")
	}
}
