package domain

type (
	RoomName string
	RoomID   string
)

type RoomStatus string

const (
	RoomStopped RoomStatus = "STOPPED"
	RoomRunning RoomStatus = "RUNNING"
)

const MaxRoomNameLen = 36

// Room is the identity of a room. Password is stored as received on
// creation; joins never check it.
type Room struct {
	ID       RoomID
	Name     RoomName
	Password string
}
