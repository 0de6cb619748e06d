package main

import "math"

// Gravity returns the acceleration every planet exerts at p
func (w *World) Gravity(p Vector2) Vector2 {
	var acc Vector2
	eps2 := w.cfg.Softening * w.cfg.Softening
	for _, planet := range w.planets {
		diff := planet.Position.Sub(p)
		d2 := diff.Dot(diff) + eps2
		if d2 == 0 {
			continue
		}
		acc = acc.Add(diff.Unit().Scale(w.cfg.Gravity * planet.Mass / d2))
	}
	return acc
}

// atWorldEdge reports whether p has left the playable area
func (w *World) atWorldEdge(p Vector2) bool {
	if w.cfg.Width <= 0 || w.cfg.Height <= 0 {
		return false
	}
	return p.X < -worldEdgeMargin || p.Y < -worldEdgeMargin ||
		p.X > w.cfg.Width+worldEdgeMargin || p.Y > w.cfg.Height+worldEdgeMargin
}

// moveBullets advances the bullets that existed when the step began.
// Children spawned during the step start moving on the next one.
func (w *World) moveBullets(dt float64) {
	n := len(w.bullets)
	for i := 0; i < n; i++ {
		if b := w.bullets[i]; !b.Dead {
			w.moveBullet(b, dt)
		}
	}
}

func (w *World) moveBullet(b *Bullet, dt float64) {
	if w.atWorldEdge(b.Position) {
		b.Kill()
		return
	}

	b.Age += dt
	if b.Expired() {
		b.Kill()
		return
	}

	if b.ShouldSplit() {
		w.bullets = append(w.bullets, b.split(func() string { return w.nextID("b") })...)
		b.Kill()
		return
	}

	b.Acceleration = w.Gravity(b.Position)
	if b.stats.Accelerator {
		b.Acceleration = b.Acceleration.Add(b.Velocity)
	}
	b.Integrate(dt)
	b.Roll = math.Atan2(b.Velocity.Y, b.Velocity.X)
}

// Energy is the kinetic plus potential energy per unit mass of a body at p
// moving at v. Only meaningful with zero softening.
func (w *World) Energy(p, v Vector2) float64 {
	e := 0.5 * v.Dot(v)
	for _, planet := range w.planets {
		if d := planet.Position.Distance(p); d > 0 {
			e -= w.cfg.Gravity * planet.Mass / d
		}
	}
	return e
}
