package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Position is a cell on the torus grid.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Direction is a facing on the grid. The zero value is Up; the default
// facing for a freshly spawned snake is decided by its spawn slot.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

var directionNames = map[Direction]string{
	Up:    "Up",
	Down:  "Down",
	Left:  "Left",
	Right: "Right",
}

func (d Direction) String() string {
	if name, ok := directionNames[d]; ok {
		return name
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// Opposite returns the reverse facing, used to reject instant 180° turns.
func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	default:
		return Left
	}
}

// Directions travel on the wire as "Up"/"Down"/"Left"/"Right".
func (d Direction) MarshalJSON() ([]byte, error) {
	name, ok := directionNames[d]
	if !ok {
		return nil, fmt.Errorf("unknown direction %d", int(d))
	}
	return json.Marshal(name)
}

func (d *Direction) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for dir, n := range directionNames {
		if n == name {
			*d = dir
			return nil
		}
	}
	return fmt.Errorf("unknown direction %q", name)
}

// JoinMsg sets the sender's display name.
type JoinMsg struct {
	Name string `json:"name"`
}

// InputMsg buffers a facing change, coalesced per tick on the server.
type InputMsg struct {
	Dir Direction `json:"dir"`
}

// ClientMsg is an inbound frame: exactly one of the variants is set.
// The wire form is externally tagged, e.g. {"Join":{"name":"alice"}}.
type ClientMsg struct {
	Join  *JoinMsg  `json:"Join,omitempty"`
	Input *InputMsg `json:"Input,omitempty"`
}

var errMalformedFrame = errors.New("malformed client frame")

// DecodeClientMsg parses one newline-delimited frame. Unknown tags and
// frames carrying zero or multiple variants are malformed, not fatal.
func DecodeClientMsg(frame []byte) (ClientMsg, error) {
	var msg ClientMsg
	dec := json.NewDecoder(bytes.NewReader(frame))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&msg); err != nil {
		return ClientMsg{}, err
	}
	if (msg.Join == nil) == (msg.Input == nil) {
		return ClientMsg{}, errMalformedFrame
	}
	return msg, nil
}

// PlayerView is the per-player part of a snapshot.
type PlayerView struct {
	Name        string     `json:"name"`
	Snake       []Position `json:"snake"`
	Dir         Direction  `json:"dir"`
	Score       int        `json:"score"`
	LatestInput *Direction `json:"latest_input"`
	Dead        bool       `json:"dead"`
}

// StateMsg is the full world snapshot broadcast after every tick.
// Clients own no authoritative data; they render the latest StateMsg.
type StateMsg struct {
	Tick     uint64       `json:"tick"`
	Players  []PlayerView `json:"players"`
	Food     Position     `json:"food"`
	GameOver bool         `json:"game_over"`
	Winner   *int         `json:"winner"` // 1-based slot; nil while running or on a draw
}
