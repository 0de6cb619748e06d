package main

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

const (
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	pingPeriod        = (pongWait * 9) / 10
	maxMessageSize    = 4096
	sendBufSize       = 256
	maxMessagesPerSec = 50
	maxNameLen        = 16
	defaultPlayerName = "Gunner"
)

// commandKinds are the inbound message types that become tank commands
var commandKinds = map[string]CommandKind{
	string(CmdStrafeLeft):  CmdStrafeLeft,
	string(CmdStrafeRight): CmdStrafeRight,
	string(CmdAngleLeft):   CmdAngleLeft,
	string(CmdAngleRight):  CmdAngleRight,
	string(CmdFireGun):     CmdFireGun,
	string(CmdPowerUp):     CmdPowerUp,
	string(CmdPowerDown):   CmdPowerDown,
	string(CmdNextBullet):  CmdNextBullet,
	string(CmdTarget):      CmdTarget,
	string(CmdDetonate):    CmdDetonate,
}

// Client represents a WebSocket connection
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	tankID     string
	roomID     string
	remoteAddr string
	msgCount   int
	msgResetAt time.Time
}

// NewClient creates a new Client
func NewClient(hub *Hub, conn *websocket.Conn, remoteAddr string) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, sendBufSize),
		remoteAddr: remoteAddr,
	}
}

// ReadPump reads messages from the WebSocket connection
func (c *Client) ReadPump() {
	defer func() {
		c.hub.TrackDisconnect(c.remoteAddr)
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("ws error", "addr", c.remoteAddr, "err", err)
			}
			break
		}

		// Rate limiting
		now := time.Now()
		if now.After(c.msgResetAt) {
			c.msgCount = 0
			c.msgResetAt = now.Add(time.Second)
		}
		c.msgCount++
		if c.msgCount > maxMessagesPerSec {
			log.Warn("rate limit exceeded, disconnecting", "addr", c.remoteAddr)
			break
		}

		c.handleMessage(message)
	}
}

// WritePump writes messages to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// Check for binary marker (0xFF prefix from SendBinary)
			var err error
			if len(message) > 0 && message[0] == 0xFF {
				err = c.conn.WriteMessage(websocket.BinaryMessage, message[1:])
			} else {
				err = c.conn.WriteMessage(websocket.TextMessage, message)
			}
			if err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendJSON sends a JSON message to the client
func (c *Client) SendJSON(msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error("marshal error", "err", err)
		return
	}
	c.SendRaw(data)
}

// SendRaw sends pre-marshaled bytes as a text message to the client
func (c *Client) SendRaw(data []byte) {
	defer func() { recover() }()
	select {
	case c.send <- data:
	default:
		// Client too slow, drop message
	}
}

// SendBinary sends pre-marshaled bytes as a binary WebSocket message
// Prefixes with 0xFF marker byte so WritePump can distinguish from text
func (c *Client) SendBinary(data []byte) {
	defer func() { recover() }()
	msg := make([]byte, len(data)+1)
	msg[0] = 0xFF // binary marker
	copy(msg[1:], data)
	select {
	case c.send <- msg:
	default:
	}
}

func (c *Client) sendError(msg string) {
	c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: msg}})
}

// handleMessage routes incoming messages (single-pass decode via InEnvelope)
func (c *Client) handleMessage(raw []byte) {
	var env InEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Debug("unmarshal error", "addr", c.remoteAddr, "err", err)
		return
	}

	switch env.T {
	case MsgList:
		c.handleList()
	case MsgCreate:
		c.handleCreate(env.D)
	case MsgJoin:
		c.handleJoin(env.D)
	case MsgLeave:
		c.handleLeave()
	case MsgCheck:
		c.handleCheck(env.D)
	case MsgPing:
		c.SendJSON(Envelope{T: MsgPong})
	default:
		if kind, ok := commandKinds[env.T]; ok {
			c.handleCommand(kind, env.D)
		}
	}
}

func (c *Client) handleList() {
	c.SendJSON(Envelope{T: MsgRooms, Data: c.hub.rooms.ListRooms()})
}

func (c *Client) handleCreate(data json.RawMessage) {
	var msg CreateMsg
	if len(data) > 0 {
		if err := json.Unmarshal(data, &msg); err != nil {
			return
		}
	}
	room, err := c.hub.rooms.CreateRoom(msg.Name, msg.Level)
	if err != nil {
		switch {
		case errors.Is(err, ErrRoomLimit), errors.Is(err, ErrLevelNotFound):
			c.sendError(err.Error())
		default:
			log.Error("create room", "level", msg.Level, "err", err)
			c.sendError("could not create room")
		}
		return
	}
	c.SendJSON(Envelope{T: MsgCreated, Data: map[string]string{"sid": room.ID}})
}

func (c *Client) handleJoin(data json.RawMessage) {
	var msg JoinMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	if c.roomID != "" {
		c.handleLeave()
	}
	name := msg.Name
	if name == "" {
		name = defaultPlayerName
	}
	if len(name) > maxNameLen {
		name = name[:maxNameLen]
	}

	room := c.hub.rooms.GetRoom(msg.RoomID)
	if room == nil {
		c.sendError(ErrRoomNotFound.Error())
		return
	}

	tank, err := room.Game.AddPlayer(name)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	c.tankID = tank.ID
	c.roomID = room.ID

	w := room.Game.World()
	cfg := w.Config()
	c.SendJSON(Envelope{T: MsgJoined, Data: map[string]string{"sid": room.ID}})
	c.SendJSON(Envelope{T: MsgWelcome, Data: WelcomeMsg{
		ID:        tank.ID,
		Color:     tank.Color,
		TurnBased: cfg.TurnBased,
		Width:     cfg.Width,
		Height:    cfg.Height,
	}})
	room.Game.SetClient(tank.ID, c)
}

func (c *Client) handleCommand(kind CommandKind, data json.RawMessage) {
	if c.roomID == "" || c.tankID == "" {
		return
	}
	cmd := Command{TankID: c.tankID, Kind: kind}
	if kind == CmdTarget {
		var msg TargetMsg
		if err := json.Unmarshal(data, &msg); err != nil {
			return
		}
		cmd.Target = Vector2{X: msg.X, Y: msg.Y}
	}
	room := c.hub.rooms.GetRoom(c.roomID)
	if room == nil {
		return
	}
	room.Game.HandleInput(cmd)
}

func (c *Client) handleCheck(data json.RawMessage) {
	var msg CheckMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	room := c.hub.rooms.GetRoom(msg.SID)
	if room == nil {
		c.SendJSON(Envelope{T: MsgChecked, Data: CheckedMsg{SID: msg.SID, Exists: false}})
		return
	}
	c.SendJSON(Envelope{T: MsgChecked, Data: CheckedMsg{
		SID:     msg.SID,
		Exists:  true,
		Name:    room.Name,
		Players: room.Game.PlayerCount(),
	}})
}

func (c *Client) handleLeave() {
	if c.roomID != "" {
		c.hub.rooms.RemovePlayer(c.roomID, c.tankID)
		c.roomID = ""
		c.tankID = ""
	}
}
