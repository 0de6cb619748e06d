package main

import "math"

const bounceClearance = 10.0

// Explosion is one blast record sent to clients and then forgotten
type Explosion struct {
	X      float64 `json:"x" msgpack:"x"`
	Y      float64 `json:"y" msgpack:"y"`
	Sprite string  `json:"sprite" msgpack:"sprite"`
	Radius float64 `json:"radius" msgpack:"radius"`
	Sound  string  `json:"sound" msgpack:"sound"`
}

// explode applies a bullet's blast. planet is the body it struck, tank the
// tank it struck; either may be nil. Terrain effects fall back to the struck
// tank's home planet. The bullet is always killed.
func (w *World) explode(b *Bullet, planet *Planet, tank *Tank) {
	s := b.stats
	w.explosions = append(w.explosions, Explosion{
		X:      b.Position.X,
		Y:      b.Position.Y,
		Sprite: s.ExplosionSprite,
		Radius: s.ExplosionRadius,
		Sound:  s.ExplosionSound,
	})
	w.explodedCnt++

	blast := Sphere{Center: b.Position, Radius: s.ExplosionRadius}
	w.damageTanksInSphere(blast, s.Damage)

	if planet == nil && tank != nil {
		planet = w.planetIndex[tank.PlanetID]
	}
	if planet != nil {
		if s.DestroyTerrain {
			planet.DestroyTerrain(blast)
		}
		if s.GenerateTerrain {
			planet.GenerateTerrain(blast)
		}
		if s.BounceLimit > 0 && b.Bounces < s.BounceLimit {
			w.bounce(b, planet)
		}
		if s.Teleporter {
			if owner := w.tankIndex[b.OwnerID]; owner != nil && !owner.Dead {
				owner.Teleport(b.Position, planet)
			}
		}
		if s.CreateWormhole {
			w.spawnWormholes(b, planet)
		}
	}
	b.Kill()
}

// damageTanksInSphere hurts every tank whose outline crosses the blast
// outline. A tank wholly inside a larger blast is not touched.
func (w *World) damageTanksInSphere(blast Sphere, damage float64) {
	for _, t := range w.tanks {
		if t.Dead {
			continue
		}
		if blast.IntersectsCircleFast(t.CollisionSphere()) {
			t.TakeDamage(damage)
		}
	}
}

// bounce spawns the reflected continuation of b just above the surface
func (w *World) bounce(b *Bullet, planet *Planet) {
	n := planet.Position.Sub(b.Position).Unit()
	child := NewBullet(w.nextID("b"), b.Type, b.Position.Sub(n.Scale(bounceClearance)), b.Color)
	child.OwnerID = b.OwnerID
	child.Velocity = b.Velocity
	child.Reflect(n)
	child.Roll = math.Atan2(child.Velocity.Y, child.Velocity.X)
	child.Bounces = b.Bounces + 1
	child.PlaySound(SoundRicochet)
	w.bullets = append(w.bullets, child)
}

// spawnWormholes opens a linked pair high above the struck planet
func (w *World) spawnWormholes(b *Bullet, planet *Planet) {
	d := b.Position.Sub(planet.Position)
	angle := toDegrees(math.Atan2(d.X, -d.Y)) + 90
	dir1 := UnitVector(toRadians(angle))
	dir2 := dir1.Neg()
	dist := planet.SealevelRadius + wormholeAltitude
	life := 2 * len(w.tanks)

	w1 := NewWormhole(w.nextID("w"), planet.Position.Add(dir1.Scale(dist)), life)
	w2 := NewWormhole(w.nextID("w"), planet.Position.Add(dir2.Scale(dist)), life)
	w1.PairID = w2.ID
	w2.PairID = w1.ID
	w.wormholes = append(w.wormholes, w1, w2)
}

// closeWormhole disables w and its pair; cull removes both
func (w *World) closeWormhole(wh *Wormhole) {
	wh.Disabled = true
	if pair := w.wormhole(wh.PairID); pair != nil {
		pair.Disabled = true
	}
}

// Detonate explodes the tank's remote detonating bullets where they are
func (w *World) Detonate(tankID string) {
	n := len(w.bullets)
	for i := 0; i < n; i++ {
		b := w.bullets[i]
		if b.Dead || b.OwnerID != tankID || !b.stats.RemoteDetonate {
			continue
		}
		w.explode(b, w.nearestPlanet(b.Position), nil)
	}
}

func (w *World) nearestPlanet(p Vector2) *Planet {
	var best *Planet
	bestD := math.Inf(1)
	for _, planet := range w.planets {
		if d := planet.Position.Distance(p); d < bestD {
			best, bestD = planet, d
		}
	}
	return best
}
