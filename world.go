package main

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

const (
	DefaultGravity  = 500000.0
	DefaultDt       = 1.0 / TickRate
	DefaultSubsteps = 20
	worldEdgeMargin = 1000.0
)

var (
	ErrNoPlanets      = errors.New("level has no planets")
	ErrPlanetNotFound = errors.New("planet not found")
)

// WorldConfig holds the physics and turn settings of one world
type WorldConfig struct {
	Gravity    float64
	Softening  float64
	Dt         float64
	Substeps   int // bullet physics steps per tick; 0 means one
	TurnBased  bool
	AIAccuracy float64
	Width      float64 // 0 disables the world edge
	Height     float64
	Seed       int64 // 0 seeds from the clock
}

// DefaultWorldConfig returns the settings used when nothing is configured
func DefaultWorldConfig() WorldConfig {
	return WorldConfig{
		Gravity:    DefaultGravity,
		Dt:         DefaultDt,
		Substeps:   DefaultSubsteps,
		TurnBased:  true,
		AIAccuracy: DefaultAccuracy,
	}
}

// EventKind labels a discrete world event
type EventKind int

const (
	EventNextTurn EventKind = iota
	EventCameraFollow
	EventRemoved
)

// Event is something the transport layer must relay once
type Event struct {
	Kind     EventKind
	TankID   string
	BulletID string
}

// World owns every planet, tank, bullet and wormhole of one game and
// advances them in fixed steps. It is not safe for concurrent use; the
// owning Game serialises access.
type World struct {
	cfg  WorldConfig
	Name string

	planets     []*Planet
	planetIndex map[string]*Planet
	tanks       []*Tank
	tankIndex   map[string]*Tank
	bullets     []*Bullet
	wormholes   []*Wormhole
	explosions  []Explosion
	events      []Event
	fallen      []*Tank // removed dead tanks, in order of death

	clock       float64
	ticks       uint64
	started     bool
	currentTurn string

	rng   *rand.Rand
	idSeq int
	grid  *SpatialGrid
	cands []EntityRef

	bulletsFired int
	explodedCnt  int
}

// NewWorld creates an empty world
func NewWorld(cfg WorldConfig) *World {
	def := DefaultWorldConfig()
	if cfg.Dt <= 0 {
		cfg.Dt = def.Dt
	}
	if cfg.AIAccuracy <= 0 {
		cfg.AIAccuracy = def.AIAccuracy
	}
	if cfg.Substeps <= 0 {
		cfg.Substeps = 1
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &World{
		cfg:         cfg,
		planetIndex: make(map[string]*Planet),
		tankIndex:   make(map[string]*Tank),
		rng:         rand.New(rand.NewSource(seed)),
		grid:        NewSpatialGrid(),
	}
}

func (w *World) nextID(prefix string) string {
	w.idSeq++
	return fmt.Sprintf("%s%d", prefix, w.idSeq)
}

// Config returns the world settings
func (w *World) Config() WorldConfig { return w.cfg }

// stepDt is the length of one bullet physics step
func (w *World) stepDt() float64 { return w.cfg.Dt / float64(w.cfg.Substeps) }

// AddPlanet generates a planet and adds it to the world
func (w *World) AddPlanet(pos Vector2, radius, mass float64, algo TerrainAlgorithm) (*Planet, error) {
	p, err := NewPlanet(w.nextID("p"), pos, radius, mass, algo, w.rng)
	if err != nil {
		return nil, err
	}
	w.planets = append(w.planets, p)
	w.planetIndex[p.ID] = p
	return p, nil
}

// AddTank places a tank on a planet. An empty planetID picks a random planet.
func (w *World) AddTank(id, planetID string, longitude float64, color string, isPlayer bool) (*Tank, error) {
	if len(w.planets) == 0 {
		return nil, ErrNoPlanets
	}
	var p *Planet
	if planetID == "" {
		p = w.planets[w.rng.Intn(len(w.planets))]
	} else if p = w.planetIndex[planetID]; p == nil {
		return nil, fmt.Errorf("tank %s: %w: %s", id, ErrPlanetNotFound, planetID)
	}
	if color == "" {
		color = Colors[w.rng.Intn(len(Colors))]
	}
	t := NewTank(id, p, longitude, color, isPlayer, w.cfg.Gravity)
	t.Accuracy = w.cfg.AIAccuracy
	w.tanks = append(w.tanks, t)
	w.tankIndex[id] = t
	return t, nil
}

// RemoveTank drops a tank. Removing the tank whose turn it is passes the turn on.
func (w *World) RemoveTank(id string) {
	for i, t := range w.tanks {
		if t.ID == id {
			w.removeTankAt(i)
			return
		}
	}
}

func (w *World) removeTankAt(i int) {
	id := w.tanks[i].ID
	w.tanks = append(w.tanks[:i], w.tanks[i+1:]...)
	delete(w.tankIndex, id)
	if w.started && id == w.currentTurn {
		w.currentTurn = ""
		w.advanceTurn(i - 1)
	}
}

func (w *World) Tank(id string) *Tank     { return w.tankIndex[id] }
func (w *World) Planet(id string) *Planet { return w.planetIndex[id] }
func (w *World) Tanks() []*Tank           { return w.tanks }
func (w *World) Planets() []*Planet       { return w.planets }
func (w *World) Bullets() []*Bullet       { return w.bullets }
func (w *World) Wormholes() []*Wormhole   { return w.wormholes }
func (w *World) Explosions() []Explosion  { return w.explosions }
func (w *World) Started() bool            { return w.started }
func (w *World) CurrentTurn() string      { return w.currentTurn }
func (w *World) Ticks() uint64            { return w.ticks }

// Fallen lists destroyed tanks in the order they died
func (w *World) Fallen() []*Tank { return w.fallen }

func (w *World) wormhole(id string) *Wormhole {
	for _, wh := range w.wormholes {
		if wh.ID == id {
			return wh
		}
	}
	return nil
}

// Now is the simulated clock in seconds
func (w *World) Now() float64 { return w.clock }

func (w *World) TurnBased() bool { return w.cfg.TurnBased }

func (w *World) Rand() *rand.Rand { return w.rng }

func (w *World) IsCurrentTurn(tankID string) bool {
	return w.started && w.currentTurn == tankID
}

// Tick advances the world by one fixed step. Bullets move and collide in
// Substeps smaller steps; tanks move once, before the last collision pass.
func (w *World) Tick() {
	if !w.started {
		return
	}
	w.ticks++
	w.clock += w.cfg.Dt

	dt := w.stepDt()
	for i := 1; i < w.cfg.Substeps; i++ {
		w.moveBullets(dt)
		w.collisionPhase()
	}
	w.moveBullets(dt)

	if w.cfg.TurnBased {
		w.stepTurn()
	} else {
		for _, t := range w.tanks {
			t.Step(w)
		}
	}

	for _, t := range w.tanks {
		t.Move(w.planetIndex[t.PlanetID], w.cfg.Dt)
	}

	w.collisionPhase()
	w.cull()
}

// stepTurn runs the current tank's machine once nothing is in flight
func (w *World) stepTurn() {
	if len(w.bullets) > 0 {
		return
	}
	cur := w.tankIndex[w.currentTurn]
	if cur == nil || cur.Dead || cur.Fired {
		w.NextTurn()
		return
	}
	cur.Step(w)
}

// cull drops dead bullets, tanks and spent wormholes
func (w *World) cull() {
	live := w.bullets[:0]
	for _, b := range w.bullets {
		if !b.Dead {
			live = append(live, b)
		}
	}
	for i := len(live); i < len(w.bullets); i++ {
		w.bullets[i] = nil
	}
	w.bullets = live

	for i := 0; i < len(w.tanks); {
		t := w.tanks[i]
		if !t.Dead {
			i++
			continue
		}
		w.events = append(w.events, Event{Kind: EventRemoved, TankID: t.ID})
		w.fallen = append(w.fallen, t)
		w.removeTankAt(i)
	}

	holes := w.wormholes[:0]
	for _, wh := range w.wormholes {
		if !wh.Disabled {
			holes = append(holes, wh)
		}
	}
	w.wormholes = holes
}

// TakeEvents drains the pending events
func (w *World) TakeEvents() []Event {
	ev := w.events
	w.events = nil
	return ev
}

// TakeCounters returns shots fired and explosions since the last call
func (w *World) TakeCounters() (fired, exploded int) {
	fired, exploded = w.bulletsFired, w.explodedCnt
	w.bulletsFired, w.explodedCnt = 0, 0
	return fired, exploded
}

// Snapshot builds the broadcast state and drains terrain deltas, explosions
// and pending sounds.
func (w *World) Snapshot() StateMsg {
	s := StateMsg{
		Tick:        w.ticks,
		CurrentTurn: w.currentTurn,
		Planets:     make([]PlanetDelta, 0, len(w.planets)),
		Tanks:       make([]TankSummary, 0, len(w.tanks)),
		Bullets:     make([]BulletState, 0, len(w.bullets)),
		Wormholes:   make([]WormholeSummary, 0, len(w.wormholes)),
		Explosions:  w.explosions,
	}
	if s.Explosions == nil {
		s.Explosions = []Explosion{}
	}
	w.explosions = nil

	for _, p := range w.planets {
		if ch := p.TakeChanges(); len(ch) > 0 {
			s.Planets = append(s.Planets, PlanetDelta{ID: p.ID, Changes: ch})
		}
	}
	for _, t := range w.tanks {
		sum := t.ToSummary(w.planetIndex[t.PlanetID])
		sum.Sound = t.TakeSound()
		s.Tanks = append(s.Tanks, sum)
	}
	for _, b := range w.bullets {
		s.Bullets = append(s.Bullets, b.ToState())
	}
	for _, wh := range w.wormholes {
		s.Wormholes = append(s.Wormholes, wh.ToSummary())
	}
	return s
}
