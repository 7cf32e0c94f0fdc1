package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/rafapignataro/open-world/internal/core"
	"github.com/rafapignataro/open-world/internal/domain"
)

func (ctl *Controller) ping(c *wsConn) {
	ctl.reply(c, eventPong, nil)
}

// relaySignal forwards an opaque peer payload (call negotiation and the
// like) to one room mate. The engine never inspects the contents.
func (ctl *Controller) relaySignal(from domain.UserID, data []byte) {
	type payload struct {
		To   domain.UserID   `json:"to"`
		Data json.RawMessage `json:"data"`
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad signal payload")
		return
	}

	fromRoom, ok := ctl.registry.RoomOf(from)
	if !ok {
		return
	}
	toRoom, ok := ctl.registry.RoomOf(p.To)
	if !ok || toRoom != fromRoom {
		return
	}
	_, conn, ok := ctl.registry.Resolve(p.To)
	if !ok {
		return
	}

	frame, err := core.EncodeEvent(eventSignal, map[string]any{
		"from": from,
		"data": p.Data,
	})
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("encode signal relay")
		return
	}
	_ = conn.TrySend(frame)
}
