package main

import "math"

// Opaque sprite and sound tags passed through to clients
const (
	SpriteTank       = "GREYBODY1_SPRITE"
	SpritePlanet     = "PLANET_SPRITE"
	SpriteWormhole   = "WORMHOLE_SPRITE"
	SpriteExplosion1 = "EXPLOSION1_SPRITE"

	SoundGun        = "GUN_SOUND"
	SoundRicochet   = "RICOCHET_SOUND"
	SoundOw         = "OW_SOUND"
	SoundExplosion3 = "EXPLOSION3_SOUND"
	SoundExplosion7 = "EXPLOSION7_SOUND"
)

// Colors handed out to tanks and bullet trails
var Colors = []string{"Red", "Yellow", "Blue", "Orange", "DarkOrange", "Pink", "Salmon"}

// Entity is the movable body shared by planets, tanks, bullets and wormholes.
// Cross references between entities are ids, never pointers.
type Entity struct {
	ID              string
	Sprite          string
	Position        Vector2
	PrevPosition    Vector2
	Velocity        Vector2
	Acceleration    Vector2
	Mass            float64
	CollisionRadius float64
	Roll            float64 // radians
	RotationSpeed   float64
	Dead            bool
	Color           string
	sound           string
}

// CollisionSphere returns the current bounding circle
func (e *Entity) CollisionSphere() Sphere {
	return Sphere{Center: e.Position, Radius: e.CollisionRadius}
}

// Integrate advances one semi-implicit Euler step: velocity first, then
// position from the new velocity.
func (e *Entity) Integrate(dt float64) {
	e.PrevPosition = e.Position
	e.Velocity = e.Velocity.Add(e.Acceleration.Scale(dt))
	e.Position = e.Position.Add(e.Velocity.Scale(dt))
}

// ViewVector is the facing direction for the current roll
func (e *Entity) ViewVector() Vector2 {
	return Vector2{X: -math.Sin(e.Roll), Y: math.Cos(e.Roll)}
}

// Reflect mirrors the velocity about a unit surface normal
func (e *Entity) Reflect(normal Vector2) {
	e.Velocity = e.Velocity.Sub(normal.Scale(2 * e.Velocity.Dot(normal)))
}

func (e *Entity) Kill() {
	e.Dead = true
}

// PlaySound marks a sound to go out with the next summary
func (e *Entity) PlaySound(tag string) {
	e.sound = tag
}

// TakeSound returns the pending sound tag and clears it
func (e *Entity) TakeSound() string {
	s := e.sound
	e.sound = ""
	return s
}
