package main

// CommandKind names a player input
type CommandKind string

const (
	CmdStrafeLeft  CommandKind = "strafe_left"
	CmdStrafeRight CommandKind = "strafe_right"
	CmdAngleLeft   CommandKind = "angle_left"
	CmdAngleRight  CommandKind = "angle_right"
	CmdFireGun     CommandKind = "fire_gun"
	CmdPowerUp     CommandKind = "power_up"
	CmdPowerDown   CommandKind = "power_down"
	CmdNextBullet  CommandKind = "next_bullet"
	CmdTarget      CommandKind = "target"
	CmdDetonate    CommandKind = "detonate"
)

// Command is one input for one tank, applied at the start of a tick
type Command struct {
	TankID string
	Kind   CommandKind
	Target Vector2
}

// Apply executes a command. Commands for unknown or dead tanks are dropped.
func (w *World) Apply(cmd Command) {
	t := w.tankIndex[cmd.TankID]
	if t == nil || t.Dead {
		return
	}
	switch cmd.Kind {
	case CmdStrafeLeft:
		t.StrafeLeft = true
	case CmdStrafeRight:
		t.StrafeRight = true
	case CmdAngleLeft:
		t.RotationSpeed = -1
	case CmdAngleRight:
		t.RotationSpeed = 1
	case CmdPowerUp:
		t.PowerUp()
	case CmdPowerDown:
		t.PowerDown()
	case CmdNextBullet:
		t.NextBullet()
	case CmdTarget:
		t.UpdateTarget(cmd.Target)
	case CmdFireGun:
		if w.CanFire(t.ID) {
			w.FireGun(t.ID)
		}
	case CmdDetonate:
		w.Detonate(t.ID)
	}
}

// CanFire reports whether a player may shoot now. In turn-based games that
// is once per turn, on their own turn.
func (w *World) CanFire(tankID string) bool {
	t := w.tankIndex[tankID]
	if t == nil || t.Dead || !w.started {
		return false
	}
	if !w.cfg.TurnBased {
		return true
	}
	return w.currentTurn == tankID && !t.Fired
}

// FireGun launches the tank's selected bullet along its turret
func (w *World) FireGun(tankID string) {
	t := w.tankIndex[tankID]
	if t == nil || t.Dead || len(t.Ammo) == 0 {
		return
	}
	typ := t.SelectedType()
	if t.Ammo[t.Selected].Count <= 0 {
		return
	}

	b := NewBullet(w.nextID("b"), typ, t.Position, t.Color)
	b.OwnerID = t.ID
	b.Velocity = t.FireDirection().Scale(t.Power)
	b.Roll = t.Roll
	b.PlaySound(SoundGun)
	w.bullets = append(w.bullets, b)

	t.consumeAmmo()
	t.LastFired = w.clock
	t.Fired = true
	t.Shots++
	w.bulletsFired++
	w.events = append(w.events, Event{Kind: EventCameraFollow, TankID: t.ID, BulletID: b.ID})
}
