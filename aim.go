package main

import (
	"math"
	"math/rand"
)

const (
	aiTrials          = 1000
	phantomShots      = 3
	phantomPowerDecay = 1.01
	phantomLaunchLead = 0.5 // fraction of the collision radius
	longitudeJitter   = 10
	trialAngleMin     = -15
	trialAngleMax     = 195
	trialPowerMin     = 50 // thousandths of the tank's power cap
	trialPowerMax     = 1000
	aimDeflection     = 2.5
)

// randInt returns a uniform integer in [lo, hi]
func randInt(rng *rand.Rand, lo, hi int) int {
	return lo + rng.Intn(hi-lo+1)
}

// AdjustAim is the AI's random search for a firing solution. It scores the
// current desired aim, then tries 1000*accuracy random angle and power pairs
// and keeps every one that lands closer to an enemy.
func (w *World) AdjustAim(t *Tank) {
	rng := w.rng
	lon := NormalizeDegrees(t.DesiredLongitude + float64(randInt(rng, -longitudeJitter, longitudeJitter)))
	best := w.phantomFitness(t, t.DesiredAngle, lon, t.DesiredPower)

	trials := int(aiTrials * t.Accuracy)
	for i := 0; i < trials; i++ {
		angle := float64(floorMod(randInt(rng, trialAngleMin, trialAngleMax), 360))
		power := t.MaxPower() * float64(randInt(rng, trialPowerMin, trialPowerMax)) / trialPowerMax
		d := w.phantomFitness(t, angle, lon, power)
		if d < best {
			best = d
			t.DesiredAngle = NormalizeDegrees(angle + aimDeflection*(2*rng.Float64()-1))
			t.DesiredLongitude = lon
			t.DesiredPower = power
		}
	}
}

// phantomFitness fires three invisible standard shells, each 1% weaker than
// the last, and averages how close they land to the nearest enemy.
func (w *World) phantomFitness(t *Tank, angle, longitude, power float64) float64 {
	roll := math.Pi + toRadians(angle+longitude)
	orient := Vector2{X: -math.Sin(roll), Y: math.Cos(roll)}
	start := t.Position.Add(orient.Scale(phantomLaunchLead * t.CollisionRadius))

	sum := 0.0
	for i := 0; i < phantomShots; i++ {
		if i > 0 {
			power /= phantomPowerDecay
		}
		res := w.Simulate(SimOptions{
			Type:       BulletStandard,
			Position:   start,
			Velocity:   t.Velocity.Add(orient.Scale(power)),
			OwnerID:    t.ID,
			MaxSteps:   phantomSteps,
			CheckEvery: 1,
			StopAtEdge: true,
		})
		sum += w.nearestEnemyDistance(res.Final, t.ID)
	}
	return sum / phantomShots
}
