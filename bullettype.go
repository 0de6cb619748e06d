package main

import "fmt"

// BulletType enumerates the ammunition kinds
type BulletType int

const (
	BulletStandard BulletType = iota
	BulletDirt
	BulletTeleporter
	BulletSplitter
	BulletBigShell
	BulletTimed
	BulletBouncer
	BulletRapid
	BulletAccelerator
	BulletRemote
	BulletFatman
	BulletWormhole
	BulletMine
)

// InfiniteTTL marks a bullet that never expires
const InfiniteTTL = -1

// BulletStats holds the static parameters of one bullet type
type BulletStats struct {
	Name            string
	Description     string
	Damage          float64
	ExplosionRadius float64
	CollisionRadius float64
	TTL             float64 // seconds; InfiniteTTL never expires
	DestroyTerrain  bool
	GenerateTerrain bool
	Teleporter      bool
	Splitter        bool
	SplitDelay      float64
	SplitCount      int
	BounceLimit     int
	Accelerator     bool
	RemoteDetonate  bool
	CreateWormhole  bool
	ExplosionSprite string
	ExplosionSound  string
}

const (
	splitAngleDegrees = 20
	splitSpeedFactor  = 1.25
	splitChildTTL     = 15
)

func defaultStats(name, desc string) BulletStats {
	return BulletStats{
		Name:            name,
		Description:     desc,
		Damage:          10,
		ExplosionRadius: 50,
		CollisionRadius: 1,
		TTL:             30,
		DestroyTerrain:  true,
		ExplosionSprite: SpriteExplosion1,
		ExplosionSound:  SoundExplosion7,
	}
}

// bulletTable is read-only after init
var bulletTable = func() map[BulletType]BulletStats {
	t := make(map[BulletType]BulletStats)

	t[BulletStandard] = defaultStats("Bullet", "Standard shell")

	s := defaultStats("Dirt", "Piles up terrain instead of digging")
	s.DestroyTerrain = false
	s.GenerateTerrain = true
	t[BulletDirt] = s

	s = defaultStats("Teleporter", "Moves the shooter to where it lands")
	s.Damage = 0
	s.ExplosionRadius = 0
	s.CollisionRadius = 0.75
	s.Teleporter = true
	t[BulletTeleporter] = s

	s = defaultStats("Splitter", "Splits into three shells after a second")
	s.Damage = 7.5
	s.CollisionRadius = 0.75
	s.TTL = 1.25
	s.Splitter = true
	s.SplitDelay = 1.0
	s.SplitCount = 3
	t[BulletSplitter] = s

	s = defaultStats("Big Shell", "Large blast radius")
	s.Damage = 12.5
	s.ExplosionRadius = 160
	s.CollisionRadius = 0.25
	t[BulletBigShell] = s

	s = defaultStats("Timed", "Short fuse")
	s.ExplosionRadius = 100
	s.TTL = 6
	t[BulletTimed] = s

	s = defaultStats("Bouncer", "Bounces off the ground twice")
	s.Damage = 7.5
	s.CollisionRadius = 0.75
	s.BounceLimit = 2
	t[BulletBouncer] = s

	s = defaultStats("Rapid", "Rapid fire")
	s.Damage = 7.5
	s.CollisionRadius = 0.75
	t[BulletRapid] = s

	s = defaultStats("Accelerator", "Speeds up along its path")
	s.Damage = 28
	s.ExplosionRadius = 25
	s.CollisionRadius = 0.1
	s.Accelerator = true
	t[BulletAccelerator] = s

	s = defaultStats("Remote", "Detonate in the air on command")
	s.Damage = 7.5
	s.ExplosionRadius = 100
	s.CollisionRadius = 0.1
	s.RemoteDetonate = true
	t[BulletRemote] = s

	s = defaultStats("Fatman", "Very large blast")
	s.Damage = 35
	s.ExplosionRadius = 225
	s.CollisionRadius = 0.1
	s.ExplosionSound = SoundExplosion3
	t[BulletFatman] = s

	s = defaultStats("Wormhole", "Opens a pair of linked wormholes")
	s.Damage = 2.5
	s.ExplosionRadius = 5
	s.CollisionRadius = 0.1
	s.CreateWormhole = true
	t[BulletWormhole] = s

	s = defaultStats("Mine", "Mine")
	s.Damage = 12.5
	s.ExplosionRadius = 120
	s.CollisionRadius = 0.75
	t[BulletMine] = s

	return t
}()

// Stats returns the static table entry for t
func (t BulletType) Stats() BulletStats {
	return bulletTable[t]
}

// Tag is the wire name of the type, e.g. "BULLET4" or "MINE"
func (t BulletType) Tag() string {
	switch {
	case t == BulletStandard:
		return "BULLET"
	case t == BulletMine:
		return "MINE"
	case t > BulletStandard && t < BulletMine:
		return fmt.Sprintf("BULLET%d", int(t)+1)
	}
	return "UNKNOWN"
}

// Sprite is the opaque sprite tag clients draw the bullet with
func (t BulletType) Sprite() string {
	return t.Tag() + "_SPRITE"
}

func (t BulletType) String() string {
	if s, ok := bulletTable[t]; ok {
		return s.Name
	}
	return "Unknown"
}

// startingAmmo is the loadout every tank begins with, in cycle order.
// The first two types are never used up.
var startingAmmo = []struct {
	Type  BulletType
	Count int
}{
	{BulletStandard, 99},
	{BulletBigShell, 99},
	{BulletDirt, 3},
	{BulletTeleporter, 2},
	{BulletSplitter, 3},
	{BulletTimed, 3},
	{BulletBouncer, 3},
	{BulletRapid, 3},
	{BulletAccelerator, 3},
	{BulletRemote, 3},
	{BulletFatman, 1},
	{BulletWormhole, 1},
}

const infiniteAmmoSlots = 2
