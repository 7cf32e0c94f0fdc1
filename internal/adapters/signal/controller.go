package signal

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/rafapignataro/open-world/internal/core"
	"github.com/rafapignataro/open-world/internal/domain"
)

// Inbound event names.
const (
	eventCreateRoom     = "create-room"
	eventJoinRoom       = "join-room"
	eventLeaveRoom      = "leave-room"
	eventToggleMedia    = "toggle-media"
	eventUpdateMovement = "update-movement"
	eventUpdateRotation = "update-rotation"
	eventPing           = "ping"
	eventSignal         = "signal"
)

// Ack event names; acks go only to the requesting connection.
const (
	eventCreateRoomResult  = "create-room-result"
	eventJoinRoomResult    = "join-room-result"
	eventToggleMediaResult = "toggle-media-result"
	eventPong              = "pong"
	eventError             = "error"
)

const defaultPingPeriod = 54 * time.Second

// Controller routes inbound client events to room and directory
// operations and answers acks on the originating socket.
type Controller struct {
	registry   *core.Registry
	rooms      *core.Directory
	limiter    *roomRateLimiter
	readLimit  int64
	pingPeriod time.Duration
}

func NewController(registry *core.Registry, rooms *core.Directory, readLimit int64, pingPeriod time.Duration) *Controller {
	if pingPeriod <= 0 {
		pingPeriod = defaultPingPeriod
	}
	return &Controller{
		registry:   registry,
		rooms:      rooms,
		limiter:    newRoomRateLimiter(5, 10*time.Second),
		readLimit:  readLimit,
		pingPeriod: pingPeriod,
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal upgrades the request, registers the user (which acks
// connect-user with the assigned id) and starts the IO pumps.
func (ctl *Controller) HandleSignal(ctx context.Context, c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	if ctl.readLimit > 0 {
		ws.SetReadLimit(ctl.readLimit)
	}

	conn := newWSConn(ws)
	user := ctl.registry.Register(conn)
	log.Info().Str("module", "signal").Str("user", string(user.ID)).Msg("new WS connection")

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cancel, user.ID, conn)
}

// disconnect synthesizes a leave-room for whatever room the user occupies,
// then drops the identity. Runs exactly once per connection, after the
// read pump exits.
func (ctl *Controller) disconnect(userID domain.UserID, conn *wsConn) {
	if roomID, ok := ctl.registry.RoomOf(userID); ok {
		if room, ok := ctl.rooms.Room(roomID); ok {
			room.RemoveParticipant(userID)
		}
	}
	ctl.registry.Unregister(userID)
	conn.Close()
}
