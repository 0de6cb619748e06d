package main

import (
	"math"
	"slices"
)

// collisionPhase resolves wormhole traversal, then bullet against tank, then
// bullet against planet. Bullets spawned during the phase are not tested
// until the next step, and a bullet explodes at most once.
func (w *World) collisionPhase() {
	w.traverseWormholes()

	n := len(w.bullets)
	w.indexTanks()
	for i := 0; i < n; i++ {
		b := w.bullets[i]
		if b.Dead {
			continue
		}
		if t := w.bulletHitsTank(b); t != nil {
			w.explode(b, nil, t)
			t.TakeDamage(b.stats.Damage)
			if b.stats.Teleporter {
				w.indexTanks()
			}
		}
	}

	for i := 0; i < n; i++ {
		b := w.bullets[i]
		if b.Dead {
			continue
		}
		s := b.CollisionSphere()
		for _, p := range w.planets {
			if p.Intersects(s) {
				w.explode(b, p, nil)
				break
			}
		}
	}
}

// indexTanks rebuilds the broad-phase grid around the living tanks
func (w *World) indexTanks() {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, t := range w.tanks {
		r := t.CollisionRadius
		minX = math.Min(minX, t.Position.X-r)
		minY = math.Min(minY, t.Position.Y-r)
		maxX = math.Max(maxX, t.Position.X+r)
		maxY = math.Max(maxY, t.Position.Y+r)
	}
	if len(w.tanks) == 0 {
		w.grid.Reset(0, 0, 0, 0)
		return
	}
	w.grid.Reset(minX, minY, maxX, maxY)
	for i, t := range w.tanks {
		w.grid.InsertCircle(t.Position.X, t.Position.Y, t.CollisionRadius, EntityRef{Kind: 't', Idx: i})
	}
}

// bulletHitsTank returns the first tank in join order the bullet touches,
// ignoring its owner.
func (w *World) bulletHitsTank(b *Bullet) *Tank {
	w.cands = w.grid.QueryBuf(b.Position.X, b.Position.Y, b.CollisionRadius, w.cands[:0])
	if len(w.cands) == 0 {
		return nil
	}
	slices.SortFunc(w.cands, func(a, c EntityRef) int { return a.Idx - c.Idx })
	w.cands = slices.Compact(w.cands)

	s := b.CollisionSphere()
	for _, ref := range w.cands {
		t := w.tanks[ref.Idx]
		if t.Dead || t.ID == b.OwnerID {
			continue
		}
		if s.IntersectsCircleFast(t.CollisionSphere()) {
			return t
		}
	}
	return nil
}

// traverseWormholes moves bullets that fell into an open wormhole out of its
// pair. Each traversal wears the entry wormhole.
func (w *World) traverseWormholes() {
	if len(w.wormholes) == 0 {
		return
	}
	for _, b := range w.bullets {
		if b.Dead {
			continue
		}
		s := b.CollisionSphere()
		for _, wh := range w.wormholes {
			if !wh.Captures(s) {
				continue
			}
			pair := w.wormhole(wh.PairID)
			if pair == nil || pair.Disabled {
				continue
			}
			b.Position = pair.ExitPoint(b.Velocity, b.CollisionRadius)
			b.PrevPosition = b.Position
			if wh.Wear() {
				w.closeWormhole(wh)
			}
			break
		}
	}
}
