package main

import "math"

// Bullet is a projectile in flight. Owner is a tank id.
type Bullet struct {
	Entity
	Type    BulletType
	OwnerID string
	Age     float64
	Bounces int
	stats   BulletStats
}

// NewBullet creates a bullet of type t with its table parameters applied
func NewBullet(id string, t BulletType, pos Vector2, color string) *Bullet {
	stats := t.Stats()
	return &Bullet{
		Entity: Entity{
			ID:              id,
			Sprite:          t.Sprite(),
			Position:        pos,
			PrevPosition:    pos,
			CollisionRadius: stats.CollisionRadius,
			Color:           color,
		},
		Type:  t,
		stats: stats,
	}
}

// Stats returns the static parameters of the bullet's type
func (b *Bullet) Stats() BulletStats { return b.stats }

// Expired reports whether the bullet has reached its lifetime
func (b *Bullet) Expired() bool {
	return b.stats.TTL != InfiniteTTL && b.Age >= b.stats.TTL
}

// ShouldSplit reports whether a splitter is due to break apart
func (b *Bullet) ShouldSplit() bool {
	return b.stats.Splitter && b.Age >= b.stats.SplitDelay
}

// split builds the children of a splitter. Child 0 turns +20 degrees,
// child 1 turns -20 degrees, any others keep the heading; all fly 1.25x faster
// and never split again.
func (b *Bullet) split(nextID func() string) []*Bullet {
	children := make([]*Bullet, 0, b.stats.SplitCount)
	for i := 0; i < b.stats.SplitCount; i++ {
		v := b.Velocity
		switch i {
		case 0:
			v = v.Rotate(toRadians(splitAngleDegrees))
		case 1:
			v = v.Rotate(toRadians(-splitAngleDegrees))
		}
		child := NewBullet(nextID(), b.Type, b.Position, b.Color)
		child.OwnerID = b.OwnerID
		child.Velocity = v.Scale(splitSpeedFactor)
		child.Roll = math.Atan2(child.Velocity.Y, child.Velocity.X)
		child.stats.Splitter = false
		child.stats.TTL = splitChildTTL
		children = append(children, child)
	}
	return children
}

// ToState returns the per-bullet summary
func (b *Bullet) ToState() BulletState {
	return BulletState{
		ID:     b.ID,
		Sprite: b.Sprite,
		Roll:   b.Roll,
		X:      b.Position.X,
		Y:      b.Position.Y,
		Color:  b.Color,
		Sound:  b.TakeSound(),
	}
}
