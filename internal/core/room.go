package core

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rafapignataro/open-world/internal/domain"
)

// RoomConfig carries the simulation constants every participant spawns with.
type RoomConfig struct {
	TickPeriod   time.Duration
	SpawnRange   float64
	SpawnHeight  float64
	Speed        float64
	RotationStep float64
	Size         domain.Size
	MapWidth     float64
	MapHeight    float64
}

func DefaultRoomConfig() RoomConfig {
	return RoomConfig{
		TickPeriod:   time.Second / 30,
		SpawnRange:   4,
		SpawnHeight:  10,
		Speed:        1.5,
		RotationStep: 1,
		Size:         domain.Size{Width: 10, Height: 15, Length: 10},
		MapWidth:     100,
		MapHeight:    100,
	}
}

// Room owns one simulation: the participant set, their kinematic state and
// a fixed-rate update loop. One mutex serializes event handling and ticks,
// so no two mutations of the same participant ever overlap.
type Room struct {
	meta     *domain.Room
	cfg      RoomConfig
	registry *Registry
	onEmpty  func(domain.RoomID)

	mu           sync.Mutex
	status       domain.RoomStatus
	closed       bool
	startedAt    time.Time
	participants map[domain.UserID]*domain.Participant
	conns        map[domain.UserID]SignalConnection
	stop         chan struct{}
}

func NewRoom(meta *domain.Room, cfg RoomConfig, registry *Registry, onEmpty func(domain.RoomID)) *Room {
	return &Room{
		meta:         meta,
		cfg:          cfg,
		registry:     registry,
		onEmpty:      onEmpty,
		status:       domain.RoomStopped,
		participants: make(map[domain.UserID]*domain.Participant),
		conns:        make(map[domain.UserID]SignalConnection),
	}
}

func (r *Room) ID() domain.RoomID     { return r.meta.ID }
func (r *Room) Name() domain.RoomName { return r.meta.Name }

func (r *Room) Status() domain.RoomStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

func (r *Room) StartedAt() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.startedAt
}

func (r *Room) MemberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.participants)
}

// Participant returns a copy of one participant's state.
func (r *Room) Participant(id domain.UserID) (domain.Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[id]
	if !ok {
		return domain.Participant{}, false
	}
	return *p, true
}

// Snapshot is the {id, name, participants} projection of the room.
func (r *Room) Snapshot() RoomSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RoomSnapshot{
		ID:           r.meta.ID,
		Name:         r.meta.Name,
		Participants: r.participantsLocked(),
	}
}

// AddParticipant spawns the user into the room and subscribes its
// connection to room broadcasts. Reports false only when the user is
// unknown to the registry; joining twice is an idempotent no-op.
func (r *Room) AddParticipant(userID domain.UserID) bool {
	user, conn, ok := r.registry.Resolve(userID)
	if !ok {
		return false
	}

	r.mu.Lock()
	// A drained room is discarded for good. A join racing the drain may
	// still hold the stale pointer; it must fail like an unknown room
	// rather than restart the loop outside the directory.
	if r.closed {
		r.mu.Unlock()
		return false
	}
	if _, joined := r.participants[userID]; joined {
		r.mu.Unlock()
		return true
	}

	p := r.spawnParticipant(user.ID)
	r.participants[userID] = p
	r.conns[userID] = conn
	r.broadcastLocked(userID, EventParticipantJoined, *p)
	if r.status == domain.RoomStopped {
		r.startLocked()
	}
	r.mu.Unlock()

	r.registry.SetRoom(userID, r.meta.ID)
	log.Info().Str("module", "core.room").Str("room", string(r.meta.ID)).Str("user", string(userID)).Msg("participant joined")
	return true
}

// RemoveParticipant drops the user, notifies the remaining members and
// tears the room down once the last one is gone.
func (r *Room) RemoveParticipant(userID domain.UserID) {
	r.mu.Lock()
	if _, ok := r.participants[userID]; !ok {
		r.mu.Unlock()
		return
	}
	delete(r.participants, userID)
	delete(r.conns, userID)
	r.broadcastLocked(userID, EventParticipantDisconnected, map[string]domain.UserID{"userId": userID})
	empty := len(r.participants) == 0
	if empty {
		r.closed = true
		r.stopLocked()
	}
	r.mu.Unlock()

	r.registry.ClearRoom(userID)
	log.Info().Str("module", "core.room").Str("room", string(r.meta.ID)).Str("user", string(userID)).Msg("participant left")
	if empty && r.onEmpty != nil {
		r.onEmpty(r.meta.ID)
	}
}

// ToggleMedia flips the participant's audio or video flag, broadcasts the
// change to everyone else and returns the new value for the caller's ack.
func (r *Room) ToggleMedia(userID domain.UserID, kind domain.MediaKind) (bool, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[userID]
	if !ok || !kind.Valid() {
		return false, false
	}
	var enabled bool
	switch kind {
	case domain.MediaAudio:
		p.Media.Audio.Enabled = !p.Media.Audio.Enabled
		enabled = p.Media.Audio.Enabled
	case domain.MediaVideo:
		p.Media.Video.Enabled = !p.Media.Video.Enabled
		enabled = p.Media.Video.Enabled
	}
	r.broadcastLocked(userID, EventParticipantMedia, MediaState{UserID: userID, Type: kind, Enabled: enabled})
	log.Info().Str("module", "core.room").Str("user", string(userID)).Str("type", string(kind)).Bool("enabled", enabled).Msg("media toggled")
	return enabled, true
}

// SetMovement replaces the participant's movement flags verbatim. No
// broadcast: the next tick's snapshot carries the effect.
func (r *Room) SetMovement(userID domain.UserID, m domain.Movement) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.participants[userID]; ok {
		p.Movement = m
	}
}

// Rotate turns the participant by one angular step. The wrap is
// asymmetric on purpose: past 360 lands on the step size, below 0 on 360.
func (r *Room) Rotate(userID domain.UserID, direction int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[userID]
	if !ok {
		return
	}
	y := p.Rotation.Y + r.cfg.RotationStep*float64(direction)
	if y > 360 {
		y = r.cfg.RotationStep
	}
	if y < 0 {
		y = 360
	}
	p.Rotation.Y = y
}

func (r *Room) spawnParticipant(id domain.UserID) *domain.Participant {
	return &domain.Participant{
		UserID: id,
		Position: domain.Vector3{
			X: spawnCoord(r.cfg.SpawnRange),
			Y: r.cfg.SpawnHeight,
			Z: spawnCoord(r.cfg.SpawnRange),
		},
		Size:     r.cfg.Size,
		Velocity: domain.Vector3{X: r.cfg.Speed, Z: r.cfg.Speed},
	}
}

// spawnCoord draws uniformly from [-rng, rng], rounded to 2 decimals.
func spawnCoord(rng float64) float64 {
	v := rand.Float64()*2*rng - rng
	return math.Round(v*100) / 100
}

func (r *Room) startLocked() {
	if r.status == domain.RoomRunning {
		return
	}
	r.status = domain.RoomRunning
	r.startedAt = time.Now()
	stop := make(chan struct{})
	r.stop = stop
	go r.run(stop)
	log.Info().Str("module", "core.room").Str("room", string(r.meta.ID)).Msg("simulation started")
}

func (r *Room) stopLocked() {
	if r.status == domain.RoomStopped {
		return
	}
	r.status = domain.RoomStopped
	close(r.stop)
	r.stop = nil
	log.Info().Str("module", "core.room").Str("room", string(r.meta.ID)).Msg("simulation stopped")
}

// Stop halts the loop. Safe to call twice or on a stopped room.
func (r *Room) Stop() {
	r.mu.Lock()
	r.stopLocked()
	r.mu.Unlock()
}

// run drives the fixed-rate loop until stop closes. A Ticker coalesces
// missed ticks, so a slow tick never triggers a catch-up burst.
func (r *Room) run(stop <-chan struct{}) {
	ticker := time.NewTicker(r.cfg.TickPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			r.tick()
		}
	}
}

// tick advances every moving participant and broadcasts the world
// snapshot to all members, movers and idlers alike.
func (r *Room) tick() {
	r.mu.Lock()
	if r.status != domain.RoomRunning {
		r.mu.Unlock()
		return
	}
	for _, p := range r.participants {
		r.stepParticipant(p)
	}
	snap := WorldSnapshot{Participants: r.participantsLocked()}
	conns := make([]SignalConnection, 0, len(r.conns))
	for _, c := range r.conns {
		conns = append(conns, c)
	}
	r.mu.Unlock()

	frame, err := EncodeEvent(EventSyncRoomWorld, snap)
	if err != nil {
		log.Error().Err(err).Str("module", "core.room").Msg("encode world snapshot")
		return
	}
	for _, c := range conns {
		_ = c.TrySend(frame)
	}
}

// stepParticipant applies one tick of displacement. Idle participants are
// skipped individually; a fault in one participant's math never reaches
// the others or the loop.
func (r *Room) stepParticipant(p *domain.Participant) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Str("module", "core.room").Interface("panic", rec).Msg("participant step recovered")
		}
	}()

	if !p.Movement.Any() {
		return
	}

	rad := degToRad(p.Rotation.Y)
	dx := math.Sin(rad) * p.Velocity.X
	dz := math.Cos(rad) * p.Velocity.Z

	if p.Movement.Up {
		p.Position.X += dx
		p.Position.Z += dz
	}
	if p.Movement.Down {
		p.Position.X -= dx
		p.Position.Z -= dz
	}
	if p.Movement.Left || p.Movement.Right {
		angle := rad - math.Pi/2
		if p.Movement.Left {
			angle = rad + math.Pi/2
		}
		p.Position.X += math.Sin(angle) * p.Velocity.X
		p.Position.Z += math.Cos(angle) * p.Velocity.Z
	}
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// participantsLocked copies the participant set for snapshots.
func (r *Room) participantsLocked() []domain.Participant {
	out := make([]domain.Participant, 0, len(r.participants))
	for _, p := range r.participants {
		out = append(out, *p)
	}
	return out
}

// broadcastLocked fans an event out to every member except one. Pass an
// empty id to reach everyone.
func (r *Room) broadcastLocked(except domain.UserID, name string, data any) {
	frame, err := EncodeEvent(name, data)
	if err != nil {
		log.Error().Err(err).Str("module", "core.room").Str("event", name).Msg("encode event")
		return
	}
	sent := 0
	for id, conn := range r.conns {
		if id == except {
			continue
		}
		if err := conn.TrySend(frame); err != nil {
			continue
		}
		sent++
	}
	log.Debug().Str("module", "core.room").Str("event", name).Int("sent_to", sent).Msg("broadcast")
}
