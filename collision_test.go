package main

import (
	"math"
	"testing"
)

// flatWorld is a free-running world around one circular planet of radius 500
// at the origin, with no gravity.
func flatWorld(t *testing.T) (*World, *Planet) {
	t.Helper()
	w := NewWorld(WorldConfig{Dt: DefaultDt, Seed: 1})
	p, err := w.AddPlanet(Vector2{}, 500, 0, TerrainCircular)
	if err != nil {
		t.Fatalf("AddPlanet: %v", err)
	}
	return w, p
}

func addTestTank(t *testing.T, w *World, id string, p *Planet, lon float64) *Tank {
	t.Helper()
	tank, err := w.AddTank(id, p.ID, lon, "Red", true)
	if err != nil {
		t.Fatalf("AddTank %s: %v", id, err)
	}
	return tank
}

func TestBulletHitsTankOutline(t *testing.T) {
	w, p := flatWorld(t)
	a := addTestTank(t, w, "a", p, 0) // at (510, 0)
	w.indexTanks()

	b := NewBullet("b1", BulletStandard, Vector2{510, 9.5}, "Blue")
	if got := w.bulletHitsTank(b); got != a {
		t.Errorf("bullet on the rim should hit a, got %v", got)
	}

	// the outline test misses a small bullet deep inside the hull
	b.Position = Vector2{510, 2}
	if got := w.bulletHitsTank(b); got != nil {
		t.Errorf("bullet inside the hull should not register, got %s", got.ID)
	}

	b.Position = Vector2{510, 30}
	if got := w.bulletHitsTank(b); got != nil {
		t.Errorf("distant bullet should miss, got %s", got.ID)
	}
}

func TestBulletIgnoresOwnerAndDead(t *testing.T) {
	w, p := flatWorld(t)
	a := addTestTank(t, w, "a", p, 0)
	w.indexTanks()

	b := NewBullet("b1", BulletStandard, Vector2{510, 9.5}, "Red")
	b.OwnerID = a.ID
	if got := w.bulletHitsTank(b); got != nil {
		t.Error("a bullet must not hit its owner")
	}

	b.OwnerID = ""
	a.Kill()
	if got := w.bulletHitsTank(b); got != nil {
		t.Error("a dead tank must not be hit")
	}
}

func TestBulletHitsFirstTankInJoinOrder(t *testing.T) {
	w, p := flatWorld(t)
	first := addTestTank(t, w, "first", p, 0)
	second := addTestTank(t, w, "second", p, 0)
	second.Position = Vector2{510, 19}
	w.indexTanks()

	// touches both outlines
	b := NewBullet("b1", BulletStandard, Vector2{510, 9.5}, "Blue")
	if got := w.bulletHitsTank(b); got != first {
		t.Errorf("expected the earlier tank, got %v", got)
	}
}

func TestCollisionPhaseDirectHit(t *testing.T) {
	w, p := flatWorld(t)
	a := addTestTank(t, w, "a", p, 0)

	b := NewBullet("b1", BulletStandard, Vector2{510, 9.5}, "Blue")
	w.bullets = append(w.bullets, b)
	w.collisionPhase()

	if !b.Dead {
		t.Error("bullet should die on impact")
	}
	// the blast ring misses a tank it contains; only the direct hit counts
	if a.Health != MaxHealth-10 {
		t.Errorf("health = %v, want %v", a.Health, MaxHealth-10)
	}
	if len(w.Explosions()) != 1 {
		t.Fatalf("expected 1 explosion, got %d", len(w.Explosions()))
	}
}

func TestCollisionPhaseTerrainHit(t *testing.T) {
	w, p := flatWorld(t)
	addTestTank(t, w, "a", p, 90)

	b := NewBullet("b1", BulletStandard, Vector2{-495, 0}, "Blue")
	w.bullets = append(w.bullets, b)
	w.collisionPhase()

	if !b.Dead {
		t.Fatal("bullet inside the terrain should explode")
	}
	if got := p.Altitudes[360]; got != 445 {
		t.Errorf("altitude under the blast = %v, want 445", got)
	}
	if len(p.TakeChanges()) == 0 {
		t.Error("terrain edit should be queued for clients")
	}
}

func TestBulletExplodesOnce(t *testing.T) {
	w, p := flatWorld(t)
	a := addTestTank(t, w, "a", p, 180) // at (-510, 0)

	// touches the tank and sits inside the terrain
	b := NewBullet("b1", BulletStandard, Vector2{-500.5, 0}, "Blue")
	w.bullets = append(w.bullets, b)
	w.collisionPhase()

	if n := len(w.Explosions()); n != 1 {
		t.Errorf("expected a single explosion, got %d", n)
	}
	if a.Health != MaxHealth-10 {
		t.Errorf("health = %v, want %v", a.Health, MaxHealth-10)
	}
}

func TestWormholeTraversal(t *testing.T) {
	w := NewWorld(WorldConfig{Seed: 1})
	in := NewWormhole("w1", Vector2{0, 0}, 3)
	out := NewWormhole("w2", Vector2{1000, 0}, 3)
	in.PairID, out.PairID = out.ID, in.ID
	w.wormholes = append(w.wormholes, in, out)

	b := NewBullet("b1", BulletStandard, Vector2{10, 0}, "Red")
	b.Velocity = Vector2{100, 0}
	w.bullets = append(w.bullets, b)

	w.traverseWormholes()

	want := 1000 + wormholeExitPad*(WormholeRadius+b.CollisionRadius)
	if math.Abs(b.Position.X-want) > 1e-9 || b.Position.Y != 0 {
		t.Errorf("exit at %+v, want (%v, 0)", b.Position, want)
	}
	if in.Life != 2 {
		t.Errorf("entry life = %d, want 2", in.Life)
	}
	if out.Life != 3 {
		t.Errorf("exit life = %d, want 3", out.Life)
	}
}

func TestWormholeClosesPair(t *testing.T) {
	w := NewWorld(WorldConfig{Seed: 1})
	in := NewWormhole("w1", Vector2{0, 0}, 1)
	out := NewWormhole("w2", Vector2{1000, 0}, 1)
	in.PairID, out.PairID = out.ID, in.ID
	w.wormholes = append(w.wormholes, in, out)

	b := NewBullet("b1", BulletStandard, Vector2{10, 0}, "Red")
	b.Velocity = Vector2{0, 50}
	w.bullets = append(w.bullets, b)

	w.traverseWormholes()
	if !in.Disabled || !out.Disabled {
		t.Error("spent wormhole should disable both ends")
	}
	w.cull()
	if len(w.Wormholes()) != 0 {
		t.Errorf("expected wormholes culled, got %d", len(w.Wormholes()))
	}
}
