package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/rafapignataro/open-world/internal/core"
	"github.com/rafapignataro/open-world/internal/domain"
)

// roomOf resolves the acting user's current room, shared by every
// participant-scoped handler. Unknown user or room is a silent miss.
func (ctl *Controller) roomOf(userID domain.UserID) (*core.Room, bool) {
	roomID, ok := ctl.registry.RoomOf(userID)
	if !ok {
		return nil, false
	}
	return ctl.rooms.Room(roomID)
}

func (ctl *Controller) toggleMedia(c *wsConn, data []byte) {
	type payload struct {
		UserID domain.UserID    `json:"userId"`
		Type   domain.MediaKind `json:"type"`
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad toggle-media payload")
		return
	}
	room, ok := ctl.roomOf(p.UserID)
	if !ok {
		return
	}
	enabled, ok := room.ToggleMedia(p.UserID, p.Type)
	if !ok {
		return
	}
	ctl.reply(c, eventToggleMediaResult, core.MediaState{UserID: p.UserID, Type: p.Type, Enabled: enabled})
}

func (ctl *Controller) updateMovement(data []byte) {
	type payload struct {
		UserID   domain.UserID   `json:"userId"`
		Movement domain.Movement `json:"movement"`
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad update-movement payload")
		return
	}
	room, ok := ctl.roomOf(p.UserID)
	if !ok {
		return
	}
	room.SetMovement(p.UserID, p.Movement)
}

func (ctl *Controller) updateRotation(data []byte) {
	type payload struct {
		UserID    domain.UserID `json:"userId"`
		Direction int           `json:"direction"`
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad update-rotation payload")
		return
	}
	if p.Direction != 1 && p.Direction != -1 {
		return
	}
	room, ok := ctl.roomOf(p.UserID)
	if !ok {
		return
	}
	room.Rotate(p.UserID, p.Direction)
}
