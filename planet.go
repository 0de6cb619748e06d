package main

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

// TerrainAlgorithm selects how a planet's initial surface is generated
type TerrainAlgorithm string

const (
	TerrainPlanetaryNoise TerrainAlgorithm = "PlanetaryNoise"
	TerrainCircular       TerrainAlgorithm = "Circular"
	TerrainSpiral         TerrainAlgorithm = "Spiral"
	TerrainFractalNoise   TerrainAlgorithm = "FractalNoise"
)

const (
	NumAltitudes      = 720 // one sample per half degree
	DegreesPerSample  = 360.0 / NumAltitudes
	CoreFraction      = 0.3
	CoreMargin        = 5.0
	TallestMountRatio = 0.12

	noiseIterations = 2000
	noiseHeightStep = 2
)

var ErrUnknownTerrainAlgorithm = errors.New("unknown terrain algorithm")

// AltitudeChange is one edited terrain sample queued for clients
type AltitudeChange struct {
	Index  int `json:"i" msgpack:"i"`
	Height int `json:"h" msgpack:"h"`
}

// Planet is a round, deformable body whose surface is a closed polygon of
// NumAltitudes radial samples. DestroyTerrain and GenerateTerrain are the
// only writers of the samples.
type Planet struct {
	Entity
	SealevelRadius float64
	CoreRadius     float64
	Altitudes      [NumAltitudes]float64
	MaxAltitude    float64
	MinAltitude    float64
	Algorithm      TerrainAlgorithm

	maxAltitudeSphere Sphere
	coreSphere        Sphere
	changes           []AltitudeChange
}

// NewPlanet generates a planet. mass <= 0 uses the sum of the altitude samples.
func NewPlanet(id string, position Vector2, radius, mass float64, algo TerrainAlgorithm, rng *rand.Rand) (*Planet, error) {
	if algo == "" {
		algo = TerrainPlanetaryNoise
	}
	p := &Planet{
		Entity: Entity{
			ID:           id,
			Sprite:       SpritePlanet,
			Position:     position,
			PrevPosition: position,
			Color:        Colors[rng.Intn(len(Colors))],
		},
		SealevelRadius: radius,
		CoreRadius:     float64(int(CoreFraction * radius)),
		Algorithm:      algo,
	}

	switch algo {
	case TerrainPlanetaryNoise:
		p.generatePlanetaryNoise(rng)
	case TerrainCircular:
		for i := range p.Altitudes {
			p.Altitudes[i] = radius
		}
	case TerrainSpiral:
		for i := range p.Altitudes {
			p.Altitudes[i] = radius / NumAltitudes * float64(i)
		}
	case TerrainFractalNoise:
		// not implemented; the surface stays flat at zero
	default:
		return nil, fmt.Errorf("planet %s: %w: %q", id, ErrUnknownTerrainAlgorithm, algo)
	}

	p.coreSphere = Sphere{Center: position, Radius: p.CoreRadius}
	p.refreshBounds()

	if mass > 0 {
		p.Mass = mass
	} else {
		for _, a := range p.Altitudes {
			p.Mass += a
		}
	}
	return p, nil
}

// generatePlanetaryNoise raises or lowers random half-circumference arcs,
// then rescales the relief to TallestMountRatio of the sea level radius.
func (p *Planet) generatePlanetaryNoise(rng *rand.Rand) {
	arc := NumAltitudes / 2
	for n := 0; n < noiseIterations; n++ {
		step := float64(noiseHeightStep)
		if rng.Intn(2) == 0 {
			step = -step
		}
		start := rng.Intn(NumAltitudes + 1)
		for k := 0; k < arc; k++ {
			p.Altitudes[(start+k)%NumAltitudes] += step
		}
	}

	lo, hi := p.Altitudes[0], p.Altitudes[0]
	for _, a := range p.Altitudes {
		lo = math.Min(lo, a)
		hi = math.Max(hi, a)
	}
	tallest := p.SealevelRadius * TallestMountRatio
	for i, a := range p.Altitudes {
		if hi == lo {
			p.Altitudes[i] = p.SealevelRadius
			continue
		}
		p.Altitudes[i] = math.Trunc(a*tallest/(hi-lo) + p.SealevelRadius)
	}
}

func (p *Planet) refreshBounds() {
	p.MaxAltitude, p.MinAltitude = p.Altitudes[0], p.Altitudes[0]
	for _, a := range p.Altitudes {
		p.MaxAltitude = math.Max(p.MaxAltitude, a)
		p.MinAltitude = math.Min(p.MinAltitude, a)
	}
	p.maxAltitudeSphere = Sphere{Center: p.Position, Radius: p.MaxAltitude}
}

// MaxAltitudeSphere bounds all terrain
func (p *Planet) MaxAltitudeSphere() Sphere { return p.maxAltitudeSphere }

// CoreSphere is the indestructible core
func (p *Planet) CoreSphere() Sphere { return p.coreSphere }

// DestroyTerrain carves the explosion sphere out of the surface. No sample
// ends below CoreRadius+CoreMargin.
func (p *Planet) DestroyTerrain(s Sphere) {
	for _, i := range p.exposedIndices(s) {
		old := p.Altitudes[i]
		length := old
		f1, f2, ok := p.rayChord(s, i)
		if ok && length >= f1 {
			p.Altitudes[i] = math.Trunc(math.Max(f1, length-f2))
		}
		p.Altitudes[i] = math.Max(p.Altitudes[i], p.CoreRadius+CoreMargin)
		if p.Altitudes[i] != old {
			p.changes = append(p.changes, AltitudeChange{Index: i, Height: int(p.Altitudes[i])})
		}
	}
	p.refreshBounds()
}

// GenerateTerrain piles dirt up by the chord each ray travels through the
// sphere: the part beyond the current surface if the ray enters the sphere
// below it, the whole chord otherwise. It is not the inverse of DestroyTerrain.
func (p *Planet) GenerateTerrain(s Sphere) {
	for _, i := range p.exposedIndices(s) {
		length := p.Altitudes[i]
		f1, f2, ok := p.rayChord(s, i)
		if !ok {
			continue
		}
		add := f2 - f1
		if length >= f1 {
			add = f2 - length
		}
		p.Altitudes[i] = math.Trunc(length + add)
		if p.Altitudes[i] != length {
			p.changes = append(p.changes, AltitudeChange{Index: i, Height: int(p.Altitudes[i])})
		}
	}
	p.refreshBounds()
}

// rayChord returns the distances from the centre to where the ray through
// sample i enters and leaves s.
func (p *Planet) rayChord(s Sphere, i int) (near, far float64, ok bool) {
	dir := UnitVector(2 * math.Pi * float64(i) / NumAltitudes)
	hit, a, b := s.IntersectsLine(p.Position, dir)
	if !hit {
		return 0, 0, false
	}
	return a.Distance(p.Position), b.Distance(p.Position), true
}

// exposedIndices lists the samples under the angular shadow of s
func (p *Planet) exposedIndices(s Sphere) []int {
	h := s.Center.Distance(p.Position)
	deltaAngle := math.Abs(math.Atan2(s.Radius, h))
	delta := int(math.Ceil(deltaAngle * NumAltitudes / (2 * math.Pi)))
	idx := p.AltitudeIndexUnderPoint(s.Center)

	out := make([]int, 0, 2*delta)
	for k := -delta; k < delta; k++ {
		out = append(out, floorMod(idx+k, NumAltitudes))
	}
	return out
}

// Intersects reports whether s touches solid ground
func (p *Planet) Intersects(s Sphere) bool {
	if p.coreSphere.IntersectsCircleSolidFast(s) {
		return true
	}
	if !p.maxAltitudeSphere.IntersectsCircleSolidFast(s) {
		return false
	}
	idx := p.AltitudeIndexUnderPoint(s.Center)
	for i := -2; i < 2; i++ {
		cur := floorMod(idx+i, NumAltitudes)
		v0 := p.SurfaceVectorAtIndex(cur)
		v1 := p.SurfaceVectorAtIndex(cur + 1)
		if s.IntersectsTriangle(p.Position, v1, v0) {
			return true
		}
	}
	return false
}

// AltitudeAtAngle returns the sample under a longitude in degrees
func (p *Planet) AltitudeAtAngle(deg float64) float64 {
	return p.Altitudes[floorMod(int(deg/DegreesPerSample), NumAltitudes)]
}

// AltitudeUnderPoint returns the sample under a world point
func (p *Planet) AltitudeUnderPoint(pt Vector2) float64 {
	return p.AltitudeAtAngle(toDegrees(pt.Sub(p.Position).Angle()))
}

// AltitudeIndexUnderPoint maps a world point to a sample index. The angle is
// truncated to whole degrees first, so only even indices come back.
func (p *Planet) AltitudeIndexUnderPoint(pt Vector2) int {
	angle := toDegrees(pt.Sub(p.Position).Angle())
	return floorMod(int(float64(int(angle))/DegreesPerSample), NumAltitudes)
}

// SurfaceVectorAtIndex returns the world position of sample i (any integer)
func (p *Planet) SurfaceVectorAtIndex(i int) Vector2 {
	angle := 2 * math.Pi * float64(i) / NumAltitudes
	return p.Position.Add(AngleVector(angle, p.Altitudes[floorMod(i, NumAltitudes)]))
}

// SlopeAtLongitude estimates the surface tangent angle in degrees
func (p *Planet) SlopeAtLongitude(deg float64) float64 {
	idx := floorMod(int(deg/DegreesPerSample), NumAltitudes)
	d := p.SurfaceVectorAtIndex(idx + 1).Sub(p.SurfaceVectorAtIndex(idx - 1))
	return toDegrees(math.Atan2(d.Y, d.X))
}

// TakeChanges drains the queued terrain deltas
func (p *Planet) TakeChanges() []AltitudeChange {
	c := p.changes
	p.changes = nil
	return c
}

// ToInit is the full payload sent once on join
func (p *Planet) ToInit() PlanetInit {
	alts := make([]int, NumAltitudes)
	for i, a := range p.Altitudes {
		alts[i] = int(a)
	}
	return PlanetInit{
		ID:                p.ID,
		Sprite:            p.Sprite,
		Color:             p.Color,
		X:                 p.Position.X,
		Y:                 p.Position.Y,
		CoreRadius:        int(p.CoreRadius),
		NumberOfAltitudes: NumAltitudes,
		SealevelRadius:    p.SealevelRadius,
		Altitudes:         alts,
	}
}
