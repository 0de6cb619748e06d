package main

import (
	"math"
)

const (
	TankRadius        = 10.0
	MaxHealth         = 100.0
	BasePower         = 900.0 // floor of the spawn power budget
	StartingFuel      = 100.0
	MinPower          = 1.0
	PowerStep         = 0.002 // fraction of the power cap per press
	StrafeSpeed       = 15.0  // degrees per second
	TurretSpeed       = 30.0  // degrees per second
	FallThreshold     = 10.0
	FallStep          = 2.0 // units per tick
	FireCooldown      = 3.0 // seconds of simulated time
	DefaultAccuracy   = 0.25
	targetPowerFactor = 1.5
	escapeFactor      = math.Sqrt2
)

// AmmoSlot is one entry of a tank's loadout
type AmmoSlot struct {
	Type  BulletType `json:"type" msgpack:"type"`
	Count int        `json:"count" msgpack:"count"`
}

// Tank stands on its home planet and fires bullets. Longitude and Angle are
// degrees; the turret roll is (Angle+Longitude) in radians and shots leave
// along -ViewVector, so Angle 90 points straight away from the surface.
type Tank struct {
	Entity
	Name     string
	PlanetID string
	IsPlayer bool

	Longitude float64
	Angle     float64
	Health    float64
	Power     float64
	Accuracy  float64

	// PowerBudget is fixed at spawn from the escape speed there. Fuel is a
	// flat bonus on top; nothing burns it, so the cap never shrinks.
	PowerBudget float64
	Fuel        float64

	PowerSpeed  float64 // applied once by the next Move
	StrafeLeft  bool
	StrafeRight bool
	Falling     bool

	DesiredAngle     float64
	DesiredLongitude float64
	DesiredPower     float64

	Ammo     []AmmoSlot
	Selected int

	State     TankState
	LastFired float64
	Fired     bool // set when a shot leaves during the current turn

	Shots       int
	DamageTaken float64

	trajectoryDirty bool
}

// NewTank places a tank on planet p at longitude degrees. Initial power is
// the circular orbit speed at the surface and the power budget is the escape
// speed, so a fresh tank can always put a shell into orbit.
func NewTank(id string, p *Planet, longitude float64, color string, isPlayer bool, g float64) *Tank {
	t := &Tank{
		Entity: Entity{
			ID:              id,
			Sprite:          SpriteTank,
			CollisionRadius: TankRadius,
			Color:           color,
		},
		PlanetID:  p.ID,
		IsPlayer:  isPlayer,
		Longitude: NormalizeDegrees(longitude),
		Angle:     90,
		Health:    MaxHealth,
		Fuel:      StartingFuel,
		Accuracy:  DefaultAccuracy,
		LastFired: math.Inf(-1),
	}
	for _, a := range startingAmmo {
		t.Ammo = append(t.Ammo, AmmoSlot{Type: a.Type, Count: a.Count})
	}

	alt := p.AltitudeAtAngle(t.Longitude)
	t.Position = t.surfacePosition(p)
	t.PrevPosition = t.Position
	t.Power = MinPower
	t.PowerBudget = BasePower
	if alt > 0 {
		orbit := math.Sqrt(g * p.Mass / alt)
		t.Power = math.Max(orbit, MinPower)
		t.PowerBudget = math.Max(escapeFactor*orbit, BasePower)
	}
	t.DesiredAngle = t.Angle
	t.DesiredLongitude = t.Longitude
	t.DesiredPower = t.Power
	t.Roll = t.turretRoll()

	if isPlayer {
		t.State = StateManual
	} else {
		t.State = StateWait
	}
	return t
}

// MaxPower is the current power cap
func (t *Tank) MaxPower() float64 {
	return t.PowerBudget + t.Fuel
}

func (t *Tank) turretRoll() float64 {
	return toRadians(t.Angle + t.Longitude)
}

// FireDirection is the unit vector a shot leaves along
func (t *Tank) FireDirection() Vector2 {
	return t.ViewVector().Neg()
}

func (t *Tank) surfacePosition(p *Planet) Vector2 {
	alt := p.AltitudeAtAngle(t.Longitude)
	return p.Position.Add(AngleVector(toRadians(t.Longitude), alt+t.CollisionRadius))
}

// Move advances the tank one tick on planet p
func (t *Tank) Move(p *Planet, dt float64) {
	if t.Dead {
		return
	}
	t.PrevPosition = t.Position

	if t.PowerSpeed != 0 {
		t.Power = Clamp(t.Power+t.PowerSpeed, MinPower, t.MaxPower())
		t.PowerSpeed = 0
		t.trajectoryDirty = true
	}

	if t.RotationSpeed != 0 {
		t.Angle = NormalizeDegrees(t.Angle + TurretSpeed*t.RotationSpeed*dt)
		t.trajectoryDirty = true
	}

	strafing := t.StrafeLeft != t.StrafeRight
	if strafing {
		if t.StrafeLeft {
			t.Longitude -= StrafeSpeed * dt
		} else {
			t.Longitude += StrafeSpeed * dt
		}
		t.Longitude = NormalizeDegrees(t.Longitude)
		t.trajectoryDirty = true
	}

	if p != nil {
		target := t.surfacePosition(p)
		targetAlt := target.Distance(p.Position)
		actualAlt := t.Position.Distance(p.Position)
		if actualAlt-targetAlt > FallThreshold && !strafing {
			t.Falling = true
			t.Position = p.Position.Add(AngleVector(toRadians(t.Longitude), actualAlt-FallStep))
			t.trajectoryDirty = true
		} else {
			t.Falling = false
			t.Position = target
		}
	}
	t.Roll = t.turretRoll()

	t.StrafeLeft = false
	t.StrafeRight = false
	t.RotationSpeed = 0
}

// TakeDamage subtracts health and returns what is left
func (t *Tank) TakeDamage(amount float64) float64 {
	if amount > 0 {
		t.DamageTaken += amount
	}
	t.Health = math.Min(t.Health-amount, MaxHealth)
	if t.Health <= 0 {
		t.State = StateDead
		t.Kill()
	}
	t.PlaySound(SoundOw)
	return t.Health
}

func (t *Tank) PowerUp() {
	t.Power = math.Min(t.Power+PowerStep*t.MaxPower(), t.MaxPower())
	t.trajectoryDirty = true
}

func (t *Tank) PowerDown() {
	t.Power = math.Max(t.Power-PowerStep*t.MaxPower(), MinPower)
	t.trajectoryDirty = true
}

// UpdateTarget aims the turret at a world point. Power grows with distance.
func (t *Tank) UpdateTarget(pt Vector2) {
	d := pt.Sub(t.Position)
	phi := toDegrees(math.Atan2(d.Y, d.X))
	t.Angle = NormalizeDegrees(phi + 90 - t.Longitude)
	t.Power = Clamp(targetPowerFactor*d.Len(), MinPower, t.MaxPower())
	t.Roll = t.turretRoll()
	t.trajectoryDirty = true
}

// NextBullet selects the next ammo slot that still has shells
func (t *Tank) NextBullet() {
	n := len(t.Ammo)
	for i := 1; i <= n; i++ {
		next := (t.Selected + i) % n
		if t.Ammo[next].Count > 0 {
			t.Selected = next
			break
		}
	}
	t.trajectoryDirty = true
}

// SelectedType returns the bullet type in the selected slot
func (t *Tank) SelectedType() BulletType {
	t.Selected = floorMod(t.Selected, len(t.Ammo))
	return t.Ammo[t.Selected].Type
}

// consumeAmmo spends one shell of the selected type and moves off empty slots
func (t *Tank) consumeAmmo() {
	if t.Selected >= infiniteAmmoSlots {
		t.Ammo[t.Selected].Count--
	}
	if t.Ammo[t.Selected].Count <= 0 {
		t.NextBullet()
	}
}

// Teleport moves the tank onto planet p at the point nearest pos
func (t *Tank) Teleport(pos Vector2, p *Planet) {
	d := pos.Sub(p.Position)
	t.PlanetID = p.ID
	t.Longitude = NormalizeDegrees(toDegrees(math.Atan2(d.Y, d.X)))
	t.Position = pos
	t.PrevPosition = pos
	t.DesiredLongitude = t.Longitude
	t.trajectoryDirty = true
}

// TakeTrajectoryDirty reports and clears the preview flag
func (t *Tank) TakeTrajectoryDirty() bool {
	d := t.trajectoryDirty
	t.trajectoryDirty = false
	return d
}

// ToSummary returns the per-tank broadcast record. home is the tank's planet
// and may be nil while it is being removed.
func (t *Tank) ToSummary(home *Planet) TankSummary {
	counts := make([]int, len(t.Ammo))
	for i, a := range t.Ammo {
		counts[i] = a.Count
	}
	sum := TankSummary{
		ID:        t.ID,
		Name:      t.Name,
		Sprite:    t.Sprite,
		Color:     t.Color,
		X:         t.Position.X,
		Y:         t.Position.Y,
		Angle:     t.Angle,
		Longitude: t.Longitude,
		Power:     t.Power,
		Health:    t.Health,
		Selected:  t.Selected,
		Ammo:      counts,
		Falling:   t.Falling,
	}
	if home != nil {
		sum.PlanetX, sum.PlanetY = home.Position.X, home.Position.Y
		sum.Slope = home.SlopeAtLongitude(t.Longitude)
	}
	return sum
}
