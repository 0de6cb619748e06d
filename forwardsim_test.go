package main

import (
	"math"
	"testing"
)

func TestSimulateHitsPlanet(t *testing.T) {
	w, _ := flatWorld(t)
	res := w.Simulate(SimOptions{
		Type:     BulletStandard,
		Position: Vector2{1000, 0},
		Velocity: Vector2{-600, 0},
		MaxSteps: 1000,
	})
	if !res.HitPlanet {
		t.Fatal("shot straight at the planet should land")
	}
	if res.Final.X >= 500 || res.Final.X < 480 {
		t.Errorf("landed at %+v, want just under the surface", res.Final)
	}
	if len(w.Bullets()) != 0 || len(w.Explosions()) != 0 {
		t.Error("simulation must not touch the world")
	}
}

func TestSimulateStopsAtEdge(t *testing.T) {
	w := NewWorld(WorldConfig{Width: 1000, Height: 1000, Seed: 1})
	res := w.Simulate(SimOptions{
		Type:       BulletStandard,
		Position:   Vector2{500, 500},
		Velocity:   Vector2{6000, 0},
		MaxSteps:   1000,
		StopAtEdge: true,
	})
	if !res.HitEdge || res.HitPlanet {
		t.Errorf("result = %+v, want an edge stop", res)
	}
	if res.Steps >= 1000 {
		t.Errorf("steps = %d, should stop early", res.Steps)
	}
}

func TestSimulateRecordsPath(t *testing.T) {
	w := NewWorld(WorldConfig{Seed: 1})
	res := w.Simulate(SimOptions{
		Type:        BulletStandard,
		Velocity:    Vector2{60, 0},
		MaxSteps:    100,
		Record:      true,
		RecordEvery: 10,
	})
	if res.Steps != 100 {
		t.Errorf("steps = %d, want 100", res.Steps)
	}
	if len(res.Positions) != 10 {
		t.Fatalf("recorded %d points, want 10", len(res.Positions))
	}
	if !almostEqual(res.Positions[0].X, 1) {
		t.Errorf("first point = %+v, want one step along", res.Positions[0])
	}
}

func TestTrajectoryPreview(t *testing.T) {
	w, p := flatWorld(t)
	player := addTestTank(t, w, "a", p, 0)
	ai, err := w.AddTank("ai", p.ID, 180, "Blue", false)
	if err != nil {
		t.Fatal(err)
	}

	player.UpdateTarget(Vector2{1000, 0})
	ai.UpdateTarget(Vector2{-1000, 0})

	dirty := w.DirtyTrajectories()
	if len(dirty) != 1 {
		t.Fatalf("expected one preview, got %d", len(dirty))
	}
	traj, ok := dirty[player.ID]
	if !ok {
		t.Fatal("player preview missing")
	}
	if traj.Hue != player.Color {
		t.Errorf("hue = %s, want %s", traj.Hue, player.Color)
	}
	if len(traj.Positions) != previewSteps {
		t.Errorf("preview has %d points, want %d", len(traj.Positions), previewSteps)
	}
	if len(w.DirtyTrajectories()) != 0 {
		t.Error("previews should only be sent when the aim changes")
	}
}

func TestPhantomFitnessWithoutEnemies(t *testing.T) {
	w, p := flatWorld(t)
	a := addTestTank(t, w, "a", p, 0)
	if d := w.phantomFitness(a, 90, 0, 500); !math.IsInf(d, 1) {
		t.Errorf("fitness = %v, want +Inf with nobody to shoot", d)
	}
}

func TestAdjustAimStaysInRange(t *testing.T) {
	w := NewWorld(WorldConfig{Gravity: DefaultGravity, Seed: 7, Width: 4000, Height: 3000})
	home, err := w.AddPlanet(Vector2{1000, 1500}, 500, 0, TerrainCircular)
	if err != nil {
		t.Fatal(err)
	}
	away, err := w.AddPlanet(Vector2{3000, 1500}, 400, 0, TerrainCircular)
	if err != nil {
		t.Fatal(err)
	}
	ai, err := w.AddTank("ai", home.ID, 0, "Red", false)
	if err != nil {
		t.Fatal(err)
	}
	addTestTank(t, w, "target", away, 180)

	lon0, power0 := ai.DesiredLongitude, ai.DesiredPower
	w.AdjustAim(ai)

	if d := math.Abs(AngleDiffDegrees(lon0, ai.DesiredLongitude)); d > longitudeJitter {
		t.Errorf("longitude moved %v degrees, want at most %d", d, longitudeJitter)
	}
	lo, hi := ai.MaxPower()*trialPowerMin/trialPowerMax, ai.MaxPower()
	if ai.DesiredPower != power0 && (ai.DesiredPower < lo-1e-9 || ai.DesiredPower > hi+1e-9) {
		t.Errorf("power = %v outside the trial range", ai.DesiredPower)
	}
	if ai.DesiredAngle < 0 || ai.DesiredAngle >= 360 {
		t.Errorf("angle = %v not normalised", ai.DesiredAngle)
	}
}
