package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/rafapignataro/open-world/internal/core"
	"github.com/rafapignataro/open-world/internal/domain"
)

func (ctl *Controller) createRoom(userID domain.UserID, c *wsConn, data []byte) {
	type payload struct {
		Name     string `json:"name"`
		Password string `json:"password,omitempty"`
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad create-room payload")
		ctl.replyError(c, "bad_payload")
		return
	}
	if !ctl.limiter.Allow(userID) {
		ctl.replyError(c, "too_many_requests")
		return
	}
	name := p.Name
	if len(name) > domain.MaxRoomNameLen {
		name = name[:domain.MaxRoomNameLen]
	}

	room, err := ctl.rooms.CreateRoom(domain.RoomName(name), p.Password)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("create room")
		ctl.replyError(c, "internal")
		return
	}

	ctl.reply(c, eventCreateRoomResult, room.Snapshot())

	// The room-list broadcast is the only way the lobby discovers rooms,
	// so it fires on every create.
	ctl.registry.BroadcastAll(core.EventUpdatedRooms, ctl.rooms.List())
}

func (ctl *Controller) joinRoom(c *wsConn, data []byte) {
	type payload struct {
		UserID domain.UserID `json:"userId"`
		RoomID domain.RoomID `json:"roomId"`
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join-room payload")
		ctl.reply(c, eventJoinRoomResult, nil)
		return
	}
	// The join contract is one ack per request, so even a rate-limited
	// attempt answers on the result channel instead of leaving the
	// client waiting.
	if !ctl.limiter.Allow(p.UserID) {
		ctl.reply(c, eventJoinRoomResult, nil)
		return
	}

	room, ok := ctl.rooms.Room(p.RoomID)
	if !ok {
		log.Warn().Str("module", "signal").Str("room", string(p.RoomID)).Msg("join: room does not exist")
		ctl.reply(c, eventJoinRoomResult, nil)
		return
	}
	if !room.AddParticipant(p.UserID) {
		ctl.reply(c, eventJoinRoomResult, nil)
		return
	}
	ctl.reply(c, eventJoinRoomResult, room.Snapshot())
}

func (ctl *Controller) leaveRoom(data []byte) {
	type payload struct {
		UserID domain.UserID `json:"userId"`
		RoomID domain.RoomID `json:"roomId"`
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad leave-room payload")
		return
	}
	room, ok := ctl.rooms.Room(p.RoomID)
	if !ok {
		return
	}
	room.RemoveParticipant(p.UserID)
}
