package main

import "math"

const (
	phantomSteps      = 1000
	previewSteps      = 200
	previewCheckEvery = 10
)

// SimOptions configures a forward simulation of a single shot. The world is
// not modified.
type SimOptions struct {
	Type        BulletType
	Position    Vector2
	Velocity    Vector2
	OwnerID     string
	MaxSteps    int
	Dt          float64 // 0 uses the world's bullet step
	CheckEvery  int     // test for impacts every n steps; 0 means every step
	StopAtEdge  bool
	Record      bool
	RecordEvery int // 0 means every step
}

// SimResult is where a simulated shot ended
type SimResult struct {
	Final     Vector2
	Steps     int
	HitPlanet bool
	HitEdge   bool
	Positions []Vector2
}

// Simulate steps a phantom bullet under gravity until it hits a planet,
// leaves the world or runs out of steps. Wormholes and tanks are ignored.
func (w *World) Simulate(o SimOptions) SimResult {
	dt := o.Dt
	if dt <= 0 {
		dt = w.stepDt()
	}
	checkEvery := max(o.CheckEvery, 1)
	recordEvery := max(o.RecordEvery, 1)
	stats := o.Type.Stats()

	pos, vel := o.Position, o.Velocity
	var res SimResult
	if o.Record {
		res.Positions = make([]Vector2, 0, o.MaxSteps/recordEvery+1)
	}

	for i := 0; i < o.MaxSteps; i++ {
		acc := w.Gravity(pos)
		if stats.Accelerator {
			acc = acc.Add(vel)
		}
		vel = vel.Add(acc.Scale(dt))
		pos = pos.Add(vel.Scale(dt))
		res.Steps = i + 1

		if o.Record && i%recordEvery == 0 {
			res.Positions = append(res.Positions, pos)
		}
		if i%checkEvery != 0 {
			continue
		}
		if o.StopAtEdge && w.atWorldEdge(pos) {
			res.HitEdge = true
			break
		}
		if w.hitsAnyPlanet(Sphere{Center: pos, Radius: stats.CollisionRadius}) {
			res.HitPlanet = true
			break
		}
	}
	res.Final = pos
	return res
}

func (w *World) hitsAnyPlanet(s Sphere) bool {
	for _, p := range w.planets {
		if p.Intersects(s) {
			return true
		}
	}
	return false
}

// nearestEnemyDistance is the distance from p to the closest living tank
// other than ownerID, or +Inf when there is none.
func (w *World) nearestEnemyDistance(p Vector2, ownerID string) float64 {
	best := math.Inf(1)
	for _, t := range w.tanks {
		if t.Dead || t.ID == ownerID {
			continue
		}
		best = math.Min(best, t.Position.Distance(p))
	}
	return best
}

// Trajectory previews the tank's current shot with its selected bullet,
// one point per tick.
func (w *World) Trajectory(t *Tank) []Vector2 {
	res := w.Simulate(SimOptions{
		Type:        t.SelectedType(),
		Position:    t.Position,
		Velocity:    t.FireDirection().Scale(t.Power),
		OwnerID:     t.ID,
		MaxSteps:    previewSteps * w.cfg.Substeps,
		CheckEvery:  previewCheckEvery,
		StopAtEdge:  true,
		Record:      true,
		RecordEvery: w.cfg.Substeps,
	})
	return res.Positions
}

// DirtyTrajectories recomputes previews for player tanks whose aim changed
func (w *World) DirtyTrajectories() map[string]TrajectoryMsg {
	out := make(map[string]TrajectoryMsg)
	for _, t := range w.tanks {
		if !t.TakeTrajectoryDirty() || !t.IsPlayer || t.Dead {
			continue
		}
		out[t.ID] = TrajectoryMsg{Hue: t.Color, Positions: w.Trajectory(t)}
	}
	return out
}
