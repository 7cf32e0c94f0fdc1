package core

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/rafapignataro/open-world/internal/domain"
)

// Frame is an encoded outbound protocol message.
type Frame []byte

// SignalConnection abstracts a system messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// Outbound event names.
const (
	EventConnectUser             = "connect-user"
	EventUpdatedRooms            = "updated-rooms"
	EventParticipantJoined       = "participant-joined"
	EventParticipantDisconnected = "participant-disconnected"
	EventParticipantMedia        = "participant-media"
	EventSyncRoomWorld           = "sync-room-world"
)

type envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// EncodeEvent wraps data in the wire envelope {"event": ..., "data": ...}.
func EncodeEvent(name string, data any) (Frame, error) {
	b, err := json.Marshal(envelope{Event: name, Data: data})
	if err != nil {
		return nil, err
	}
	return Frame(b), nil
}

func sendEvent(conn SignalConnection, name string, data any) {
	frame, err := EncodeEvent(name, data)
	if err != nil {
		log.Error().Err(err).Str("module", "core").Str("event", name).Msg("encode event")
		return
	}
	if err := conn.TrySend(frame); err != nil {
		log.Debug().Err(err).Str("module", "core").Str("event", name).Msg("send dropped")
	}
}

// MediaState is the payload of participant-media and the toggle-media ack.
type MediaState struct {
	UserID  domain.UserID    `json:"userId"`
	Type    domain.MediaKind `json:"type"`
	Enabled bool             `json:"enabled"`
}

// WorldSnapshot is the per-tick sync-room-world payload.
type WorldSnapshot struct {
	Participants []domain.Participant `json:"participants"`
}

// RoomSnapshot is the read-only projection used by join/create acks,
// updated-rooms and the REST listing.
type RoomSnapshot struct {
	ID           domain.RoomID        `json:"id"`
	Name         domain.RoomName      `json:"name"`
	Participants []domain.Participant `json:"participants"`
}
