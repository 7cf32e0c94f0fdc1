package core

import (
	"encoding/json"
	"testing"

	"github.com/rafapignataro/open-world/internal/domain"
)

func TestRegisterNotifiesConnection(t *testing.T) {
	reg := NewRegistry()
	conn := &testConn{}

	user := reg.Register(conn)
	if user.ID == "" {
		t.Fatalf("no id assigned")
	}

	acks := conn.events(t, EventConnectUser)
	if len(acks) != 1 {
		t.Fatalf("got %d connect-user events, want 1", len(acks))
	}
	var got domain.User
	if err := json.Unmarshal(acks[0], &got); err != nil {
		t.Fatalf("decode connect-user: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("connect-user id = %s, want %s", got.ID, user.ID)
	}
}

func TestResolveAndUnregister(t *testing.T) {
	reg := NewRegistry()
	conn := &testConn{}
	user := reg.Register(conn)

	u, c, ok := reg.Resolve(user.ID)
	if !ok || u.ID != user.ID || c != SignalConnection(conn) {
		t.Fatalf("resolve = (%v, %v, %v)", u, c, ok)
	}
	if reg.Count() != 1 {
		t.Fatalf("count = %d, want 1", reg.Count())
	}

	if _, _, ok := reg.Resolve("ghost"); ok {
		t.Fatalf("resolved unknown id")
	}

	reg.Unregister(user.ID)
	reg.Unregister(user.ID)
	if _, _, ok := reg.Resolve(user.ID); ok {
		t.Fatalf("resolved after unregister")
	}
	if reg.Count() != 0 {
		t.Fatalf("count = %d, want 0", reg.Count())
	}
}

func TestRoomTracking(t *testing.T) {
	reg := NewRegistry()
	user := reg.Register(&testConn{})

	if _, ok := reg.RoomOf(user.ID); ok {
		t.Fatalf("fresh user already in a room")
	}

	reg.SetRoom(user.ID, "abc123")
	roomID, ok := reg.RoomOf(user.ID)
	if !ok || roomID != "abc123" {
		t.Fatalf("RoomOf = (%s, %v)", roomID, ok)
	}

	reg.ClearRoom(user.ID)
	if _, ok := reg.RoomOf(user.ID); ok {
		t.Fatalf("room association survived ClearRoom")
	}

	// Unknown ids are silent no-ops.
	reg.SetRoom("ghost", "abc123")
	reg.ClearRoom("ghost")
}

func TestBroadcastAll(t *testing.T) {
	reg := NewRegistry()
	connA := &testConn{}
	connB := &testConn{}
	reg.Register(connA)
	reg.Register(connB)

	reg.BroadcastAll(EventUpdatedRooms, []RoomSnapshot{})

	for i, conn := range []*testConn{connA, connB} {
		if got := len(conn.events(t, EventUpdatedRooms)); got != 1 {
			t.Fatalf("conn %d saw %d updated-rooms events, want 1", i, got)
		}
	}
}
