package main

import "encoding/json"

// Client -> Server message types
const (
	MsgList   = "list"   // list rooms
	MsgCreate = "create" // create room
	MsgJoin   = "join"
	MsgLeave  = "leave"
	MsgCheck  = "check" // check if room exists
	MsgPing   = "ping"
)

// Server -> Client message types
const (
	MsgRooms      = "rooms"
	MsgCreated    = "created" // room created, client should navigate
	MsgJoined     = "joined"
	MsgWelcome    = "welcome"
	MsgPlanet     = "planet" // full terrain, sent once on join
	MsgState      = "state"  // binary msgpack frame
	MsgNextTurn   = "next_turn"
	MsgTrajectory = "trajectory"
	MsgCamera     = "camera"
	MsgRIP        = "rip"
	MsgRoomClose  = "room_close"
	MsgChecked    = "checked"
	MsgPong       = "pong"
	MsgError      = "error"
)

// Envelope wraps all outgoing messages with a type field
type Envelope struct {
	T    string      `json:"t" msgpack:"t"`
	Data interface{} `json:"d,omitempty" msgpack:"d,omitempty"`
}

// InEnvelope is used for incoming messages; D is decoded per message type
type InEnvelope struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d,omitempty"`
}

// CreateMsg asks for a new room
type CreateMsg struct {
	Name  string `json:"name"`
	Level string `json:"level"`
}

// JoinMsg is sent when a player wants to join a room
type JoinMsg struct {
	Name   string `json:"name"`
	RoomID string `json:"sid"`
}

// TargetMsg aims the turret at a world point
type TargetMsg struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// CheckMsg is sent by client to check if a room exists
type CheckMsg struct {
	SID string `json:"sid"`
}

// CheckedMsg is the response to a room check
type CheckedMsg struct {
	SID     string `json:"sid"`
	Exists  bool   `json:"exists"`
	Name    string `json:"name,omitempty"`
	Players int    `json:"players,omitempty"`
}

// RoomInfo is used in the room list
type RoomInfo struct {
	ID      string `json:"id" msgpack:"id"`
	Name    string `json:"name" msgpack:"name"`
	Level   string `json:"level" msgpack:"level"`
	Players int    `json:"players" msgpack:"players"`
	Tanks   int    `json:"tanks" msgpack:"tanks"`
	Started bool   `json:"started" msgpack:"started"`
}

// WelcomeMsg is sent to a player when they join
type WelcomeMsg struct {
	ID        string  `json:"id"`
	Color     string  `json:"color"`
	TurnBased bool    `json:"turn_based"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
}

// PlanetInit is the full planet payload
type PlanetInit struct {
	ID                string  `json:"id"`
	Sprite            string  `json:"sprite"`
	Color             string  `json:"color"`
	X                 float64 `json:"x"`
	Y                 float64 `json:"y"`
	CoreRadius        int     `json:"core_radius"`
	NumberOfAltitudes int     `json:"number_of_altitudes"`
	SealevelRadius    float64 `json:"sealevel_radius"`
	Altitudes         []int   `json:"altitudes"`
}

// PlanetDelta carries the terrain samples edited since the last broadcast
type PlanetDelta struct {
	ID      string           `json:"id" msgpack:"id"`
	Changes []AltitudeChange `json:"changes" msgpack:"changes"`
}

// TankSummary is broadcast per tank
type TankSummary struct {
	ID        string  `json:"id" msgpack:"id"`
	Name      string  `json:"n" msgpack:"n"`
	Sprite    string  `json:"sprite" msgpack:"sprite"`
	Color     string  `json:"color" msgpack:"color"`
	X         float64 `json:"x" msgpack:"x"`
	Y         float64 `json:"y" msgpack:"y"`
	PlanetX   float64 `json:"px" msgpack:"px"`
	PlanetY   float64 `json:"py" msgpack:"py"`
	Angle     float64 `json:"angle" msgpack:"angle"`
	Slope     float64 `json:"slope" msgpack:"slope"`
	Longitude float64 `json:"lon" msgpack:"lon"`
	Power     float64 `json:"power" msgpack:"power"`
	Health    float64 `json:"hp" msgpack:"hp"`
	Selected  int     `json:"sel" msgpack:"sel"`
	Ammo      []int   `json:"ammo" msgpack:"ammo"`
	Falling   bool    `json:"falling,omitempty" msgpack:"falling,omitempty"`
	Sound     string  `json:"sound,omitempty" msgpack:"sound,omitempty"`
}

// BulletState is broadcast per bullet
type BulletState struct {
	ID     string  `json:"id" msgpack:"id"`
	Sprite string  `json:"sprite" msgpack:"sprite"`
	Roll   float64 `json:"r" msgpack:"r"`
	X      float64 `json:"x" msgpack:"x"`
	Y      float64 `json:"y" msgpack:"y"`
	Color  string  `json:"color" msgpack:"color"`
	Sound  string  `json:"sound,omitempty" msgpack:"sound,omitempty"`
}

// WormholeSummary is broadcast per open wormhole
type WormholeSummary struct {
	ID     string  `json:"id" msgpack:"id"`
	Sprite string  `json:"sprite" msgpack:"sprite"`
	X      float64 `json:"x" msgpack:"x"`
	Y      float64 `json:"y" msgpack:"y"`
	Radius float64 `json:"radius" msgpack:"radius"`
	PairID string  `json:"pair" msgpack:"pair"`
	Life   int     `json:"life" msgpack:"life"`
}

// StateMsg is the full state broadcast
type StateMsg struct {
	Tick        uint64            `json:"tick" msgpack:"tick"`
	CurrentTurn string            `json:"turn" msgpack:"turn"`
	Planets     []PlanetDelta     `json:"planets" msgpack:"planets"`
	Tanks       []TankSummary     `json:"tanks" msgpack:"tanks"`
	Bullets     []BulletState     `json:"bullets" msgpack:"bullets"`
	Explosions  []Explosion       `json:"explosions" msgpack:"explosions"`
	Wormholes   []WormholeSummary `json:"wormholes" msgpack:"wormholes"`
}

// NextTurnMsg announces whose turn it is
type NextTurnMsg struct {
	CurrentPlayer string `json:"current_player"`
}

// TrajectoryMsg is the aim preview for one tank
type TrajectoryMsg struct {
	Hue       string    `json:"hue"`
	Positions []Vector2 `json:"positions"`
}

// CameraMsg asks clients to follow a bullet
type CameraMsg struct {
	Tank   string `json:"tank"`
	Bullet string `json:"bullet"`
}

// RIPMsg announces a destroyed tank
type RIPMsg struct {
	Tank string `json:"tank"`
	Name string `json:"name"`
}

// RoomCloseMsg is sent when a finished room shuts down
type RoomCloseMsg struct {
	Winner     string `json:"winner,omitempty"`
	WinnerName string `json:"winner_name,omitempty"`
}

// ErrorMsg sends error to client
type ErrorMsg struct {
	Msg string `json:"msg"`
}
