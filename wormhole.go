package main

const (
	WormholeRadius   = 80.0
	wormholeAltitude = 350.0 // above sea level
	wormholeExitPad  = 1.2
)

// Wormhole is one end of a linked pair. PairID names the other end.
type Wormhole struct {
	Entity
	Life     int
	PairID   string
	Disabled bool
}

// NewWormhole creates an enabled wormhole with the given remaining life
func NewWormhole(id string, pos Vector2, life int) *Wormhole {
	return &Wormhole{
		Entity: Entity{
			ID:              id,
			Sprite:          SpriteWormhole,
			Position:        pos,
			PrevPosition:    pos,
			CollisionRadius: WormholeRadius,
		},
		Life: life,
	}
}

// Captures reports whether a bullet sphere has fallen inside the mouth
func (w *Wormhole) Captures(s Sphere) bool {
	return !w.Disabled && w.CollisionSphere().IntersectsCircleSolidFast(s)
}

// ExitPoint is where a bullet travelling along velocity comes out of w
func (w *Wormhole) ExitPoint(velocity Vector2, bulletRadius float64) Vector2 {
	return w.Position.Add(velocity.Unit().Scale(wormholeExitPad * (w.CollisionRadius + bulletRadius)))
}

// Wear takes one use off the wormhole and reports whether it is spent
func (w *Wormhole) Wear() bool {
	w.Life--
	return w.Life <= 0
}

// ToSummary returns the broadcast record
func (w *Wormhole) ToSummary() WormholeSummary {
	return WormholeSummary{
		ID:     w.ID,
		Sprite: w.Sprite,
		X:      w.Position.X,
		Y:      w.Position.Y,
		Radius: w.CollisionRadius,
		PairID: w.PairID,
		Life:   w.Life,
	}
}
