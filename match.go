package main

import (
	"slices"
	"time"
)

// MatchPhase represents the lifecycle of a room's game
type MatchPhase int

const (
	PhaseLobby   MatchPhase = 0 // waiting for a second tank
	PhasePlaying MatchPhase = 1
	PhaseOver    MatchPhase = 2
)

func (p MatchPhase) String() string {
	switch p {
	case PhaseLobby:
		return "lobby"
	case PhasePlaying:
		return "playing"
	case PhaseOver:
		return "over"
	}
	return "unknown"
}

// PhaseOf reports the phase a world is in
func PhaseOf(w *World) MatchPhase {
	switch {
	case !w.Started():
		return PhaseLobby
	case w.IsGameOver():
		return PhaseOver
	}
	return PhasePlaying
}

// MatchTank is one tank's line in a finished match
type MatchTank struct {
	TankID      string  `json:"tank_id"`
	Name        string  `json:"name"`
	Color       string  `json:"color"`
	IsPlayer    bool    `json:"is_player"`
	Place       int     `json:"place"`
	Shots       int     `json:"shots"`
	DamageTaken float64 `json:"damage_taken"`
	Survived    bool    `json:"survived"`
}

// MatchResult summarises a finished game for the match log
type MatchResult struct {
	RoomID     string      `json:"room_id"`
	RoomName   string      `json:"room_name"`
	Level      string      `json:"level"`
	StartedAt  time.Time   `json:"started_at"`
	Duration   float64     `json:"duration"` // wall seconds
	Ticks      uint64      `json:"ticks"`
	WinnerID   string      `json:"winner_id,omitempty"`
	WinnerName string      `json:"winner_name,omitempty"`
	Tanks      []MatchTank `json:"tanks"`
}

// BuildMatchResult ranks the tanks of w. Survivors share first place, the
// fallen follow with the last to die placed highest.
func BuildMatchResult(w *World, roomID, roomName string, startedAt, endedAt time.Time) MatchResult {
	res := MatchResult{
		RoomID:    roomID,
		RoomName:  roomName,
		Level:     w.Name,
		StartedAt: startedAt,
		Duration:  endedAt.Sub(startedAt).Seconds(),
		Ticks:     w.Ticks(),
	}
	if winner := w.Winner(); winner != nil {
		res.WinnerID = winner.ID
		res.WinnerName = winner.Name
	}

	place := 1
	for _, t := range w.Tanks() {
		if t.Dead {
			continue
		}
		res.Tanks = append(res.Tanks, matchTank(t, place, true))
	}
	if len(res.Tanks) > 0 {
		place = len(res.Tanks) + 1
	}

	fallen := slices.Clone(w.Fallen())
	slices.Reverse(fallen)
	for _, t := range fallen {
		res.Tanks = append(res.Tanks, matchTank(t, place, false))
		place++
	}
	return res
}

func matchTank(t *Tank, place int, survived bool) MatchTank {
	return MatchTank{
		TankID:      t.ID,
		Name:        t.Name,
		Color:       t.Color,
		IsPlayer:    t.IsPlayer,
		Place:       place,
		Shots:       t.Shots,
		DamageTaken: t.DamageTaken,
		Survived:    survived,
	}
}
