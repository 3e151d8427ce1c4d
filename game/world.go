package game

import (
	"fmt"
	"math/rand"
	"time"

	"snake-arena/constants"
	"snake-arena/models"
)

// PlayerState is the authoritative per-slot state. Body is head first,
// tail last, and never empty once created. A dead snake is frozen in
// place and stays on the grid as an obstacle.
type PlayerState struct {
	Name        string
	Body        []models.Position
	Dir         models.Direction
	LatestInput *models.Direction
	Score       int
	Alive       bool
}

// Head returns the current head cell.
func (p *PlayerState) Head() models.Position {
	return p.Body[0]
}

// World is the authoritative game state. It is owned by the tick
// scheduler goroutine; nothing here is safe for concurrent use.
type World struct {
	Tick     uint64
	Players  []*PlayerState
	Food     models.Position
	GameOver bool
	Winner   *int // 1-based slot of the last snake standing

	rng *rand.Rand
}

// NewWorld creates a world with capacity player slots, each holding a
// single-segment snake at its spawn cell, and places the first food.
func NewWorld(capacity int) *World {
	w := &World{
		Players: make([]*PlayerState, capacity),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for slot := range w.Players {
		pos, dir := spawnForSlot(slot)
		w.Players[slot] = &PlayerState{
			Name:  fmt.Sprintf("Player %d", slot+1),
			Body:  []models.Position{pos},
			Dir:   dir,
			Alive: true,
		}
	}
	w.placeFood()
	return w
}

// spawnForSlot spaces slots along the middle row: even slots left of
// center facing Right, odd slots right of center facing Left. Slots 0
// and 1 land at the classic two-player spawns.
func spawnForSlot(slot int) (models.Position, models.Direction) {
	offset := 3 * (slot/2 + 1)
	y := constants.GRID_HEIGHT / 2
	if slot%2 == 0 {
		x := constants.GRID_WIDTH/2 - offset
		return models.Position{X: mod(x, constants.GRID_WIDTH), Y: y}, models.Right
	}
	x := constants.GRID_WIDTH/2 + offset
	return models.Position{X: mod(x, constants.GRID_WIDTH), Y: y}, models.Left
}

func mod(v, m int) int {
	return ((v % m) + m) % m
}

// SetName overwrites a player's display name (Join frame).
func (w *World) SetName(slot int, name string) {
	if slot < 0 || slot >= len(w.Players) || name == "" {
		return
	}
	w.Players[slot].Name = name
}

// BufferInput records a facing change for the next tick. Last input
// wins; older undrained inputs within the tick window are overwritten.
func (w *World) BufferInput(slot int, dir models.Direction) {
	if slot < 0 || slot >= len(w.Players) {
		return
	}
	d := dir
	w.Players[slot].LatestInput = &d
}

// occupiedByLiving reports whether any living snake covers pos.
func (w *World) occupiedByLiving(pos models.Position) bool {
	for _, p := range w.Players {
		if !p.Alive {
			continue
		}
		for _, cell := range p.Body {
			if cell == pos {
				return true
			}
		}
	}
	return false
}

// placeFood relocates food to a uniformly random cell not covered by a
// living snake. The grid is far from saturation, so the retry loop
// terminates quickly in practice.
func (w *World) placeFood() {
	for {
		pos := models.Position{
			X: w.rng.Intn(constants.GRID_WIDTH),
			Y: w.rng.Intn(constants.GRID_HEIGHT),
		}
		if !w.occupiedByLiving(pos) {
			w.Food = pos
			return
		}
	}
}

// Snapshot projects the world into the broadcast message. Bodies are
// copied so the caller can serialize without racing the next step.
func (w *World) Snapshot() models.StateMsg {
	players := make([]models.PlayerView, len(w.Players))
	for i, p := range w.Players {
		body := make([]models.Position, len(p.Body))
		copy(body, p.Body)
		var latest *models.Direction
		if p.LatestInput != nil {
			d := *p.LatestInput
			latest = &d
		}
		players[i] = models.PlayerView{
			Name:        p.Name,
			Snake:       body,
			Dir:         p.Dir,
			Score:       p.Score,
			LatestInput: latest,
			Dead:        !p.Alive,
		}
	}
	var winner *int
	if w.Winner != nil {
		v := *w.Winner
		winner = &v
	}
	return models.StateMsg{
		Tick:     w.Tick,
		Players:  players,
		Food:     w.Food,
		GameOver: w.GameOver,
		Winner:   winner,
	}
}
