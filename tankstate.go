package main

import (
	"math"
	"math/rand"
)

// TankState is a node of the tank behaviour machine
type TankState int

const (
	StateWait TankState = iota
	StateThink
	StateMove
	StateAim
	StatePower
	StateFire
	StateFireWait
	StatePostFire
	StateManual
	StateDead
)

var tankStateNames = [...]string{
	"Wait", "Think", "Move", "Aim", "Power", "Fire", "FireWait", "PostFire", "Manual", "Dead",
}

func (s TankState) String() string {
	if s < 0 || int(s) >= len(tankStateNames) {
		return "Unknown"
	}
	return tankStateNames[s]
}

const (
	moveDeadBand     = 2.0 // degrees of longitude
	aimDeadBand      = 1.0 // degrees of turret angle
	powerRampPerTick = 50.0
	powerTolerance   = 0.5
)

// tankEnv is the part of the world a state function may use
type tankEnv interface {
	AdjustAim(t *Tank)
	FireGun(tankID string)
	Now() float64
	TurnBased() bool
	IsCurrentTurn(tankID string) bool
	Rand() *rand.Rand
}

type tankStateFunc func(t *Tank, env tankEnv) TankState

var tankStates = map[TankState]tankStateFunc{
	StateWait:     stateWait,
	StateThink:    stateThink,
	StateMove:     stateMove,
	StateAim:      stateAim,
	StatePower:    statePower,
	StateFire:     stateFire,
	StateFireWait: stateFireWait,
	StatePostFire: statePostFire,
	StateManual:   stateManual,
	StateDead:     stateDead,
}

// Step runs one transition of the behaviour machine
func (t *Tank) Step(env tankEnv) {
	if t.Dead {
		t.State = StateDead
		return
	}
	if f, ok := tankStates[t.State]; ok {
		t.State = f(t, env)
	}
}

func stateWait(t *Tank, env tankEnv) TankState {
	switch {
	case t.Dead:
		return StateDead
	case t.IsPlayer:
		return StateManual
	case !env.TurnBased() || env.IsCurrentTurn(t.ID):
		return StateThink
	}
	return StateWait
}

func stateThink(t *Tank, env tankEnv) TankState {
	env.AdjustAim(t)
	return StateMove
}

func stateMove(t *Tank, _ tankEnv) TankState {
	diff := AngleDiffDegrees(t.Longitude, t.DesiredLongitude)
	if math.Abs(diff) <= moveDeadBand {
		return StateAim
	}
	if diff < 0 {
		t.StrafeLeft = true
	} else {
		t.StrafeRight = true
	}
	return StateMove
}

func stateAim(t *Tank, _ tankEnv) TankState {
	diff := AngleDiffDegrees(t.Angle, t.DesiredAngle)
	if math.Abs(diff) <= aimDeadBand {
		return StatePower
	}
	if diff < 0 {
		t.RotationSpeed = -1
	} else {
		t.RotationSpeed = 1
	}
	return StateAim
}

func statePower(t *Tank, _ tankEnv) TankState {
	want := Clamp(t.DesiredPower, MinPower, t.MaxPower())
	diff := want - t.Power
	if math.Abs(diff) <= powerTolerance {
		return StateFire
	}
	t.PowerSpeed = Clamp(diff, -powerRampPerTick, powerRampPerTick)
	return StatePower
}

func stateFire(t *Tank, env tankEnv) TankState {
	if env.Now()-t.LastFired < FireCooldown {
		return StateFire
	}
	var available []int
	for i, a := range t.Ammo {
		if a.Count > 0 {
			available = append(available, i)
		}
	}
	if len(available) > 0 {
		t.Selected = available[env.Rand().Intn(len(available))]
	}
	return StateFireWait
}

func stateFireWait(t *Tank, env tankEnv) TankState {
	env.FireGun(t.ID)
	return StatePostFire
}

func statePostFire(t *Tank, _ tankEnv) TankState {
	if t.IsPlayer {
		return StateManual
	}
	return StateWait
}

func stateManual(t *Tank, _ tankEnv) TankState {
	if t.Dead {
		return StateDead
	}
	return StateManual
}

func stateDead(*Tank, tankEnv) TankState {
	return StateDead
}
