package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/rafapignataro/open-world/internal/core"
	"github.com/rafapignataro/open-world/internal/domain"
)

const writeWait = 5 * time.Second

func (ctl *Controller) writePump(ctx context.Context, c *wsConn) {
	ping := time.NewTicker(ctl.pingPeriod)
	defer ping.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ping.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debug().Err(err).Str("module", "signal").Msg("writePump ping error")
				return
			}
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *Controller) readPump(ctx context.Context, cancel context.CancelFunc, userID domain.UserID, c *wsConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("user", string(userID)).Msg("readPump closing")
		cancel()
		ctl.disconnect(userID, c)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Debug().Err(err).Str("module", "signal").Str("user", string(userID)).Msg("readPump read error")
				return
			}
			ctl.handleEvent(userID, c, data)
		}
	}
}

// handleEvent decodes the {"event", "data"} envelope and dispatches.
// A malformed payload is dropped; it never reaches room state.
func (ctl *Controller) handleEvent(userID domain.UserID, c *wsConn, data []byte) {
	var env struct {
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad envelope")
		return
	}

	switch env.Event {
	case eventCreateRoom:
		ctl.createRoom(userID, c, env.Data)
	case eventJoinRoom:
		ctl.joinRoom(c, env.Data)
	case eventLeaveRoom:
		ctl.leaveRoom(env.Data)
	case eventToggleMedia:
		ctl.toggleMedia(c, env.Data)
	case eventUpdateMovement:
		ctl.updateMovement(env.Data)
	case eventUpdateRotation:
		ctl.updateRotation(env.Data)
	case eventPing:
		ctl.ping(c)
	case eventSignal:
		ctl.relaySignal(userID, env.Data)
	default:
		log.Warn().Str("module", "signal").Str("event", env.Event).Msg("unknown event")
	}
}

func (ctl *Controller) reply(c *wsConn, name string, data any) {
	frame, err := core.EncodeEvent(name, data)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Str("event", name).Msg("encode reply")
		return
	}
	_ = c.TrySend(frame)
}

func (ctl *Controller) replyError(c *wsConn, msg string) {
	ctl.reply(c, eventError, map[string]string{"error": msg})
}
