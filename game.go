package main

import (
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	TickRate       = 60 // physics ticks per second
	BroadcastRate  = 30 // state broadcasts per second
	TickDuration   = time.Second / TickRate
	BroadcastEvery = TickRate / BroadcastRate
)

const (
	maxPlayersPerRoom = 8
	inputBufSize      = 256
	minTanksToStart   = 2
)

var ErrRoomFull = errors.New("room full")

// Broadcaster interface for sending messages to clients
type Broadcaster interface {
	SendJSON(msg interface{})
	SendBinary(data []byte)
}

// Game runs one room's world on its own goroutine
type Game struct {
	mu        sync.RWMutex
	roomID    string
	world     *World
	seats     []LevelTank            // unclaimed human slots from the level
	clients   map[string]Broadcaster // tankID -> client
	inputs    chan Command
	tick      uint64
	stopped   bool
	stop      chan struct{}
	startedAt time.Time
	metrics   *Metrics
	analytics *Analytics
	logger    *log.Logger
}

// NewGame wraps a built world. seats are filled in order by AddPlayer.
func NewGame(roomID string, w *World, seats []LevelTank, metrics *Metrics) *Game {
	return &Game{
		roomID:  roomID,
		world:   w,
		seats:   seats,
		clients: make(map[string]Broadcaster),
		inputs:  make(chan Command, inputBufSize),
		stop:    make(chan struct{}),
		metrics: metrics,
		logger:  log.With("room", roomID),
	}
}

// Run starts the game loop
func (g *Game) Run() {
	ticker := time.NewTicker(TickDuration)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			g.update()
		case <-g.stop:
			return
		}
	}
}

// Stop terminates the game loop. It is safe to call before Run and more
// than once.
func (g *Game) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.stopped {
		g.stopped = true
		close(g.stop)
	}
}

// AddPlayer creates a tank for a joining player. The next free level seat is
// used when there is one, otherwise a random planet and longitude. The game
// starts once two tanks exist.
func (g *Game) AddPlayer(name string) (*Tank, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.countPlayers() >= maxPlayersPerRoom {
		return nil, ErrRoomFull
	}

	w := g.world
	planetID, lon, color := "", w.Rand().Float64()*360, ""
	if len(g.seats) > 0 {
		seat := g.seats[0]
		g.seats = g.seats[1:]
		planetID, lon, color = w.planetForSlot(seat.PlanetIdx), seat.Longitude, seat.Color
	}

	tank, err := w.AddTank(GenerateID(4), planetID, lon, color, true)
	if err != nil {
		return nil, err
	}
	tank.Name = name
	g.logger.Info("player joined", "tank", tank.ID, "name", name)
	g.analytics.Track(EvtPlayerJoined, g.roomID, tank.ID, name)

	if !w.Started() && len(w.Tanks()) >= minTanksToStart {
		w.StartGame()
		g.startedAt = time.Now()
		g.logger.Info("game started", "tanks", len(w.Tanks()))
		g.analytics.Track(EvtGameStarted, g.roomID, "", w.Name)
	}
	return tank, nil
}

func (g *Game) countPlayers() int {
	n := 0
	for _, t := range g.world.Tanks() {
		if t.IsPlayer {
			n++
		}
	}
	return n
}

// RemovePlayer removes a player's tank and client
func (g *Game) RemovePlayer(tankID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.world.RemoveTank(tankID)
	delete(g.clients, tankID)
	g.analytics.Track(EvtPlayerLeft, g.roomID, tankID, "")
}

// SetClient associates a broadcaster with a tank and sends it the terrain
// and the current turn.
func (g *Game) SetClient(tankID string, client Broadcaster) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.clients[tankID] = client

	for _, p := range g.world.Planets() {
		client.SendJSON(Envelope{T: MsgPlanet, Data: p.ToInit()})
	}
	if g.world.Started() {
		client.SendJSON(Envelope{T: MsgNextTurn, Data: NextTurnMsg{CurrentPlayer: g.world.CurrentTurn()}})
	}
}

// HandleInput queues a command for the next tick. Commands are dropped when
// the queue is full.
func (g *Game) HandleInput(cmd Command) {
	select {
	case g.inputs <- cmd:
	default:
	}
}

// PlayerCount returns the number of connected clients
func (g *Game) PlayerCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.clients)
}

// TankCount returns the number of tanks in the world
func (g *Game) TankCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.world.Tanks())
}

// Phase reports where the match is in its lifecycle
func (g *Game) Phase() MatchPhase {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return PhaseOf(g.world)
}

// World returns the wrapped world. Callers must not use it while Run is active.
func (g *Game) World() *World { return g.world }

// update runs one game tick
func (g *Game) update() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.tick++
	g.drainInputs()

	start := time.Now()
	g.world.Tick()
	fired, exploded := g.world.TakeCounters()
	g.metrics.RecordTick(g.roomID, time.Since(start), fired, exploded)

	g.relayEvents()
	for tankID, traj := range g.world.DirtyTrajectories() {
		if client, ok := g.clients[tankID]; ok {
			client.SendJSON(Envelope{T: MsgTrajectory, Data: traj})
		}
	}

	if g.tick%BroadcastEvery == 0 {
		g.broadcastState()
	}
}

func (g *Game) drainInputs() {
	for {
		select {
		case cmd := <-g.inputs:
			g.world.Apply(cmd)
		default:
			return
		}
	}
}

// relayEvents turns world events into client messages
func (g *Game) relayEvents() {
	for _, ev := range g.world.TakeEvents() {
		switch ev.Kind {
		case EventNextTurn:
			g.broadcastMsg(Envelope{T: MsgNextTurn, Data: NextTurnMsg{CurrentPlayer: ev.TankID}})
		case EventCameraFollow:
			g.broadcastMsg(Envelope{T: MsgCamera, Data: CameraMsg{Tank: ev.TankID, Bullet: ev.BulletID}})
		case EventRemoved:
			name := ""
			for _, t := range g.world.Fallen() {
				if t.ID == ev.TankID {
					name = t.Name
				}
			}
			g.logger.Info("tank destroyed", "tank", ev.TankID, "name", name)
			g.analytics.Track(EvtTankDestroyed, g.roomID, ev.TankID, name)
			g.broadcastMsg(Envelope{T: MsgRIP, Data: RIPMsg{Tank: ev.TankID, Name: name}})
		}
	}
}

// broadcastState sends the msgpack snapshot to all clients
func (g *Game) broadcastState() {
	data, err := msgpack.Marshal(Envelope{T: MsgState, Data: g.world.Snapshot()})
	if err != nil {
		g.logger.Error("marshal state", "err", err)
		return
	}
	for _, client := range g.clients {
		client.SendBinary(data)
	}
}

// broadcastMsg sends a message to all clients in the room
func (g *Game) broadcastMsg(msg Envelope) {
	for _, client := range g.clients {
		client.SendJSON(msg)
	}
}

// Broadcast sends a message to every client, taking the lock
func (g *Game) Broadcast(msg Envelope) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	g.broadcastMsg(msg)
}

// Snapshot summarises the room for the KV mirror
func (g *Game) Snapshot(info RoomInfo) RoomSnapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()

	w := g.world
	snap := RoomSnapshot{
		Room:      info,
		Phase:     PhaseOf(w).String(),
		Turn:      w.CurrentTurn(),
		Tick:      w.Ticks(),
		Tanks:     make([]TankSummary, 0, len(w.Tanks())),
		UpdatedAt: time.Now().UnixMilli(),
	}
	for _, t := range w.Tanks() {
		snap.Tanks = append(snap.Tanks, t.ToSummary(w.Planet(t.PlanetID)))
	}
	if winner := w.Winner(); winner != nil && w.IsGameOver() {
		snap.Winner = winner.ID
	}
	return snap
}

// Result builds the match log entry for a finished game
func (g *Game) Result(roomName string) MatchResult {
	g.mu.RLock()
	defer g.mu.RUnlock()
	started := g.startedAt
	if started.IsZero() {
		started = time.Now()
	}
	return BuildMatchResult(g.world, g.roomID, roomName, started, time.Now())
}
