package main

import (
	"errors"
	"sync"
	"testing"

	"github.com/vmihailenco/msgpack/v5"
)

// mockBroadcaster captures sent messages for testing
type mockBroadcaster struct {
	mu       sync.Mutex
	messages []interface{}
	binary   [][]byte
}

func (m *mockBroadcaster) SendJSON(msg interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
}

func (m *mockBroadcaster) SendBinary(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.binary = append(m.binary, data)
}

// find returns the envelopes of one message type
func (m *mockBroadcaster) find(typ string) []Envelope {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Envelope
	for _, msg := range m.messages {
		if env, ok := msg.(Envelope); ok && env.T == typ {
			out = append(out, env)
		}
	}
	return out
}

func newDuelGame(t *testing.T) *Game {
	t.Helper()
	lvl, err := LoadLevel("levels", "duel")
	if err != nil {
		t.Fatal(err)
	}
	w, seats, err := lvl.Build(WorldConfig{Gravity: DefaultGravity, Substeps: DefaultSubsteps, TurnBased: true, Seed: 1})
	if err != nil {
		t.Fatal(err)
	}
	return NewGame("room-1", w, seats, nil)
}

func joinTwo(t *testing.T, g *Game) (*Tank, *Tank) {
	t.Helper()
	a, err := g.AddPlayer("Alice")
	if err != nil {
		t.Fatal(err)
	}
	b, err := g.AddPlayer("Bob")
	if err != nil {
		t.Fatal(err)
	}
	return a, b
}

func TestGameStartsOnSecondTank(t *testing.T) {
	g := newDuelGame(t)

	a, err := g.AddPlayer("Alice")
	if err != nil {
		t.Fatal(err)
	}
	if g.Phase() != PhaseLobby {
		t.Errorf("phase = %v with one tank, want lobby", g.Phase())
	}

	b, err := g.AddPlayer("Bob")
	if err != nil {
		t.Fatal(err)
	}
	if g.Phase() != PhasePlaying {
		t.Errorf("phase = %v with two tanks, want playing", g.Phase())
	}
	if g.World().CurrentTurn() != a.ID {
		t.Errorf("opening turn = %s, want %s", g.World().CurrentTurn(), a.ID)
	}
	if g.TankCount() != 2 {
		t.Errorf("tanks = %d, want 2", g.TankCount())
	}
	if a.Name != "Alice" || b.Name != "Bob" {
		t.Errorf("names = %s, %s", a.Name, b.Name)
	}
}

func TestGameSeatsInOrder(t *testing.T) {
	g := newDuelGame(t)
	a, b := joinTwo(t, g)

	if a.Color != "Red" || a.Longitude != 45 {
		t.Errorf("first seat = %s at %v", a.Color, a.Longitude)
	}
	if b.Color != "Blue" || b.Longitude != 135 {
		t.Errorf("second seat = %s at %v", b.Color, b.Longitude)
	}
	if !a.IsPlayer || !b.IsPlayer {
		t.Error("joined tanks should be players")
	}

	// seats used up: the next tank lands anywhere
	c, err := g.AddPlayer("Carol")
	if err != nil {
		t.Fatal(err)
	}
	if c.PlanetID != g.World().Planets()[0].ID {
		t.Errorf("third tank on %s", c.PlanetID)
	}
}

func TestGameRoomFull(t *testing.T) {
	g := newDuelGame(t)
	for i := 0; i < maxPlayersPerRoom; i++ {
		if _, err := g.AddPlayer("P"); err != nil {
			t.Fatalf("player %d: %v", i, err)
		}
	}
	if _, err := g.AddPlayer("late"); !errors.Is(err, ErrRoomFull) {
		t.Errorf("err = %v, want ErrRoomFull", err)
	}
}

func TestGameSetClientSendsTerrainAndTurn(t *testing.T) {
	g := newDuelGame(t)
	a, _ := joinTwo(t, g)

	mock := &mockBroadcaster{}
	g.SetClient(a.ID, mock)

	planets := mock.find(MsgPlanet)
	if len(planets) != 1 {
		t.Fatalf("planet messages = %d, want 1", len(planets))
	}
	if init, ok := planets[0].Data.(PlanetInit); !ok || len(init.Altitudes) != NumAltitudes {
		t.Errorf("planet payload = %T", planets[0].Data)
	}
	turns := mock.find(MsgNextTurn)
	if len(turns) != 1 || turns[0].Data.(NextTurnMsg).CurrentPlayer != a.ID {
		t.Errorf("next_turn = %+v", turns)
	}
	if g.PlayerCount() != 1 {
		t.Errorf("clients = %d, want 1", g.PlayerCount())
	}
}

func TestGameLobbyClientGetsNoTurn(t *testing.T) {
	g := newDuelGame(t)
	a, err := g.AddPlayer("Alice")
	if err != nil {
		t.Fatal(err)
	}
	mock := &mockBroadcaster{}
	g.SetClient(a.ID, mock)
	if len(mock.find(MsgNextTurn)) != 0 {
		t.Error("no turn should be announced before the game starts")
	}
}

func TestGameFireAndBroadcast(t *testing.T) {
	g := newDuelGame(t)
	a, b := joinTwo(t, g)
	mockA, mockB := &mockBroadcaster{}, &mockBroadcaster{}
	g.SetClient(a.ID, mockA)
	g.SetClient(b.ID, mockB)

	g.HandleInput(Command{TankID: a.ID, Kind: CmdFireGun})
	// out of turn, dropped by the world
	g.HandleInput(Command{TankID: b.ID, Kind: CmdFireGun})
	g.update()

	cams := mockB.find(MsgCamera)
	if len(cams) != 1 {
		t.Fatalf("camera messages = %d, want 1", len(cams))
	}
	if cam := cams[0].Data.(CameraMsg); cam.Tank != a.ID || cam.Bullet == "" {
		t.Errorf("camera = %+v", cam)
	}
	if a.Shots != 1 || b.Shots != 0 {
		t.Errorf("shots = %d, %d", a.Shots, b.Shots)
	}
	if len(mockA.binary) != 0 {
		t.Error("state is broadcast every other tick")
	}

	g.update()
	if len(mockA.binary) != 1 || len(mockB.binary) != 1 {
		t.Fatalf("binary frames = %d, %d", len(mockA.binary), len(mockB.binary))
	}
	var frame struct {
		T string   `msgpack:"t"`
		D StateMsg `msgpack:"d"`
	}
	if err := msgpack.Unmarshal(mockA.binary[0], &frame); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if frame.T != MsgState {
		t.Errorf("frame type = %q", frame.T)
	}
	if frame.D.Tick != 2 || frame.D.CurrentTurn != a.ID || len(frame.D.Tanks) != 2 {
		t.Errorf("state = tick %d turn %s tanks %d", frame.D.Tick, frame.D.CurrentTurn, len(frame.D.Tanks))
	}
}

func TestGameTrajectoryOnlyToOwner(t *testing.T) {
	g := newDuelGame(t)
	a, b := joinTwo(t, g)
	mockA, mockB := &mockBroadcaster{}, &mockBroadcaster{}
	g.SetClient(a.ID, mockA)
	g.SetClient(b.ID, mockB)

	g.HandleInput(Command{TankID: a.ID, Kind: CmdTarget, Target: a.Position.Add(Vector2{100, 100})})
	g.update()

	traj := mockA.find(MsgTrajectory)
	if len(traj) != 1 {
		t.Fatalf("trajectory messages = %d, want 1", len(traj))
	}
	if msg := traj[0].Data.(TrajectoryMsg); msg.Hue != "Red" || len(msg.Positions) == 0 {
		t.Errorf("trajectory = hue %s, %d points", msg.Hue, len(msg.Positions))
	}
	if len(mockB.find(MsgTrajectory)) != 0 {
		t.Error("other players should not see the preview")
	}
}

func TestGameRIPAndResult(t *testing.T) {
	g := newDuelGame(t)
	a, b := joinTwo(t, g)
	mock := &mockBroadcaster{}
	g.SetClient(a.ID, mock)

	b.TakeDamage(1000)
	g.update()

	rips := mock.find(MsgRIP)
	if len(rips) != 1 {
		t.Fatalf("rip messages = %d, want 1", len(rips))
	}
	if rip := rips[0].Data.(RIPMsg); rip.Tank != b.ID || rip.Name != "Bob" {
		t.Errorf("rip = %+v", rip)
	}
	if g.Phase() != PhaseOver {
		t.Fatalf("phase = %v, want over", g.Phase())
	}

	res := g.Result("Duel room")
	if res.WinnerID != a.ID || res.WinnerName != "Alice" {
		t.Errorf("winner = %s (%s)", res.WinnerID, res.WinnerName)
	}
	if res.RoomID != "room-1" || res.Level != "Duel" || res.RoomName != "Duel room" {
		t.Errorf("result header = %+v", res)
	}
	if len(res.Tanks) != 2 {
		t.Fatalf("ranked tanks = %d", len(res.Tanks))
	}
	if first := res.Tanks[0]; first.TankID != a.ID || first.Place != 1 || !first.Survived {
		t.Errorf("first = %+v", first)
	}
	if second := res.Tanks[1]; second.TankID != b.ID || second.Place != 2 || second.Survived || second.DamageTaken != 1000 {
		t.Errorf("second = %+v", second)
	}
}

func TestGameRemovePlayerPassesTurn(t *testing.T) {
	g := newDuelGame(t)
	a, b := joinTwo(t, g)
	g.SetClient(a.ID, &mockBroadcaster{})
	mockB := &mockBroadcaster{}
	g.SetClient(b.ID, mockB)

	g.RemovePlayer(a.ID)
	if g.World().CurrentTurn() != b.ID {
		t.Errorf("turn = %s, want %s", g.World().CurrentTurn(), b.ID)
	}
	if g.PlayerCount() != 1 || g.TankCount() != 1 {
		t.Errorf("clients %d tanks %d", g.PlayerCount(), g.TankCount())
	}

	g.update()
	turns := mockB.find(MsgNextTurn)
	if last := turns[len(turns)-1].Data.(NextTurnMsg); last.CurrentPlayer != b.ID {
		t.Errorf("announced turn = %s", last.CurrentPlayer)
	}
}

func TestGameSnapshot(t *testing.T) {
	g := newDuelGame(t)
	a, _ := joinTwo(t, g)

	snap := g.Snapshot(RoomInfo{ID: "room-1", Name: "x"})
	if snap.Phase != "playing" || snap.Turn != a.ID {
		t.Errorf("snapshot = %s / %s", snap.Phase, snap.Turn)
	}
	if len(snap.Tanks) != 2 || snap.Winner != "" {
		t.Errorf("tanks %d winner %q", len(snap.Tanks), snap.Winner)
	}
	p := g.World().Planets()[0]
	if s := snap.Tanks[0]; s.PlanetX != p.Position.X || s.PlanetY != p.Position.Y {
		t.Errorf("planet centre = (%v,%v)", s.PlanetX, s.PlanetY)
	}
	if snap.UpdatedAt == 0 {
		t.Error("missing timestamp")
	}
}

func TestGameInputQueueDropsWhenFull(t *testing.T) {
	g := newDuelGame(t)
	for i := 0; i < inputBufSize+10; i++ {
		g.HandleInput(Command{Kind: CmdPowerUp})
	}
	if len(g.inputs) != inputBufSize {
		t.Errorf("queued %d, want %d", len(g.inputs), inputBufSize)
	}
}
