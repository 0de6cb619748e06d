package main

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

const (
	maxRooms          = 100
	maxRoomNameLen    = 30
	lifecycleInterval = time.Second
	defaultRoomName   = "Artillery"
)

var (
	ErrRoomLimit    = errors.New("too many active rooms")
	ErrRoomNotFound = errors.New("room not found")
)

// Room is a game that players can join
type Room struct {
	ID        string
	Name      string
	Level     string
	Game      *Game
	CreatedAt time.Time
}

// Info returns the room list entry
func (r *Room) Info() RoomInfo {
	return RoomInfo{
		ID:      r.ID,
		Name:    r.Name,
		Level:   r.Level,
		Players: r.Game.PlayerCount(),
		Tanks:   r.Game.TankCount(),
		Started: r.Game.Phase() != PhaseLobby,
	}
}

// RoomOptions configures a RoomManager
type RoomOptions struct {
	LevelsDir string
	MaxRooms  int
	World     WorldConfig
	DB        *DB            // nil disables the match log
	Store     *SnapshotStore // nil disables the KV mirror
	Analytics *Analytics     // nil disables the event log
}

// RoomManager handles creation, lookup and shutdown of rooms
type RoomManager struct {
	mu      sync.RWMutex
	rooms   map[string]*Room
	opts    RoomOptions
	metrics *Metrics
}

// NewRoomManager creates a RoomManager
func NewRoomManager(opts RoomOptions) *RoomManager {
	if opts.MaxRooms <= 0 {
		opts.MaxRooms = maxRooms
	}
	rm := &RoomManager{
		rooms: make(map[string]*Room),
		opts:  opts,
	}
	m, err := NewMetrics(rm.Count)
	if err != nil {
		log.Warn("metrics disabled", "err", err)
	}
	rm.metrics = m
	return rm
}

// CreateRoom builds the named level (or the default one) and starts its game
func (rm *RoomManager) CreateRoom(name, level string) (*Room, error) {
	if name == "" {
		name = defaultRoomName
	}
	if len(name) > maxRoomNameLen {
		name = name[:maxRoomNameLen]
	}

	lvl, err := LoadLevel(rm.opts.LevelsDir, level)
	if err != nil {
		return nil, err
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()
	if len(rm.rooms) >= rm.opts.MaxRooms {
		return nil, ErrRoomLimit
	}

	id := GenerateUUID()
	w, seats, err := lvl.Build(rm.opts.World)
	if err != nil {
		return nil, err
	}
	room := &Room{
		ID:        id,
		Name:      name,
		Level:     lvl.Name,
		Game:      NewGame(id, w, seats, rm.metrics),
		CreatedAt: time.Now(),
	}
	room.Game.analytics = rm.opts.Analytics
	rm.rooms[id] = room
	go room.Game.Run()

	log.Info("room created", "id", id, "name", name, "level", lvl.Name)
	rm.opts.Analytics.Track(EvtRoomCreated, id, "", lvl.Name)
	return room, nil
}

// GetRoom returns a room by ID
func (rm *RoomManager) GetRoom(id string) *Room {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return rm.rooms[id]
}

// Count returns the number of rooms
func (rm *RoomManager) Count() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return len(rm.rooms)
}

// RemovePlayer removes a player's tank. Rooms nobody is connected to are closed.
func (rm *RoomManager) RemovePlayer(roomID, tankID string) {
	room := rm.GetRoom(roomID)
	if room == nil {
		return
	}
	room.Game.RemovePlayer(tankID)

	if room.Game.PlayerCount() == 0 {
		rm.deleteRoom(room)
		if err := rm.opts.Store.Remove(context.Background(), room.ID); err != nil {
			log.Warn("removing room snapshot", "room", room.ID, "err", err)
		}
		log.Info("room emptied", "id", room.ID)
	}
}

func (rm *RoomManager) deleteRoom(room *Room) {
	room.Game.Stop()
	rm.mu.Lock()
	delete(rm.rooms, room.ID)
	rm.mu.Unlock()
}

// ListRooms returns info about all active rooms, oldest first
func (rm *RoomManager) ListRooms() []RoomInfo {
	rooms := rm.snapshotRooms()
	list := make([]RoomInfo, 0, len(rooms))
	for _, room := range rooms {
		list = append(list, room.Info())
	}
	return list
}

func (rm *RoomManager) snapshotRooms() []*Room {
	rm.mu.RLock()
	rooms := make([]*Room, 0, len(rm.rooms))
	for _, room := range rm.rooms {
		rooms = append(rooms, room)
	}
	rm.mu.RUnlock()

	slices.SortFunc(rooms, func(a, b *Room) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		if a.ID < b.ID {
			return -1
		}
		return 1
	})
	return rooms
}

// Run checks room lifecycles once a second until ctx is cancelled, then
// stops every room.
func (rm *RoomManager) Run(ctx context.Context) error {
	ticker := time.NewTicker(lifecycleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rm.CheckRooms(ctx)
		case <-ctx.Done():
			rm.StopAll()
			return nil
		}
	}
}

// CheckRooms closes finished games and mirrors the running ones
func (rm *RoomManager) CheckRooms(ctx context.Context) {
	for _, room := range rm.snapshotRooms() {
		if room.Game.Phase() == PhaseOver {
			rm.closeRoom(ctx, room)
			continue
		}
		if err := rm.opts.Store.Publish(ctx, room.Game.Snapshot(room.Info())); err != nil {
			log.Warn("publishing room snapshot", "room", room.ID, "err", err)
		}
	}
}

// closeRoom records the match, publishes a final snapshot, tells the
// clients and deletes the room.
func (rm *RoomManager) closeRoom(ctx context.Context, room *Room) {
	res := room.Game.Result(room.Name)
	logger := log.With("room", room.ID)

	if rm.opts.DB != nil {
		id, err := rm.opts.DB.RecordMatch(res)
		if err != nil {
			logger.Error("recording match", "err", err)
		} else {
			logger.Info("match recorded", "match", id, "winner", res.WinnerName)
		}
	}
	if err := rm.opts.Store.Publish(ctx, room.Game.Snapshot(room.Info())); err != nil {
		logger.Warn("publishing final snapshot", "err", err)
	}

	room.Game.Broadcast(Envelope{T: MsgRoomClose, Data: RoomCloseMsg{
		Winner:     res.WinnerID,
		WinnerName: res.WinnerName,
	}})
	rm.deleteRoom(room)
	rm.opts.Analytics.Track(EvtRoomClosed, room.ID, res.WinnerID, res.WinnerName)
	logger.Info("room closed")
}

// StopAll stops every game loop
func (rm *RoomManager) StopAll() {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	for id, room := range rm.rooms {
		room.Game.Stop()
		delete(rm.rooms, id)
	}
}
