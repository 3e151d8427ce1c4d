package game

import (
	"snake-arena/constants"
	"snake-arena/models"
)

// StepHead moves a position one cell in dir, wrapping each axis at the
// grid bounds.
func StepHead(pos models.Position, dir models.Direction) models.Position {
	switch dir {
	case models.Up:
		pos.Y--
	case models.Down:
		pos.Y++
	case models.Left:
		pos.X--
	case models.Right:
		pos.X++
	}
	pos.X = mod(pos.X, constants.GRID_WIDTH)
	pos.Y = mod(pos.Y, constants.GRID_HEIGHT)
	return pos
}

type candidate struct {
	slot int
	head models.Position
}

// Step runs one discrete simulation tick. Once the game is over the
// world is frozen and Step is a no-op.
func (w *World) Step() {
	if w.GameOver {
		return
	}

	// Apply buffered inputs, rejecting instant 180° reversals. The
	// buffer is consumed either way; a dead snake never turns.
	for _, p := range w.Players {
		if p.LatestInput == nil {
			continue
		}
		dir := *p.LatestInput
		p.LatestInput = nil
		if p.Alive && dir != p.Dir.Opposite() {
			p.Dir = dir
		}
	}

	// Project candidate heads for every living snake.
	cands := make([]candidate, 0, len(w.Players))
	for slot, p := range w.Players {
		if p.Alive {
			cands = append(cands, candidate{slot, StepHead(p.Head(), p.Dir)})
		}
	}

	// Collide candidates against pre-move occupancy. Dead snakes stay
	// on the grid, so their bodies count as obstacles too. A length-1
	// snake can legally step forward: its own head cell is pre-move
	// occupancy, and the candidate never equals it.
	dead := make(map[int]bool)
	for _, c := range cands {
		for _, p := range w.Players {
			if bodyContains(p.Body, c.head) {
				dead[c.slot] = true
				break
			}
		}
	}

	// Two snakes projecting onto the same empty cell meet head-on and
	// both die.
	for i := 0; i < len(cands); i++ {
		for j := i + 1; j < len(cands); j++ {
			if cands[i].head == cands[j].head {
				dead[cands[i].slot] = true
				dead[cands[j].slot] = true
			}
		}
	}

	for slot := range dead {
		w.Players[slot].Alive = false
	}

	// Win condition: last snake standing. A simultaneous wipeout is a
	// draw; a solo game only ends when its one snake dies.
	alive := 0
	lastSlot := -1
	for slot, p := range w.Players {
		if p.Alive {
			alive++
			lastSlot = slot
		}
	}
	if alive == 0 || (len(w.Players) >= 2 && alive == 1) {
		w.GameOver = true
		if alive == 1 {
			winner := lastSlot + 1
			w.Winner = &winner
		}
		w.Tick++
		return
	}

	// Food resolution and body update. Multiple snakes may eat the same
	// food in one tick: each grows and scores, food relocates once.
	ate := false
	for _, c := range cands {
		p := w.Players[c.slot]
		if !p.Alive {
			continue
		}
		grew := c.head == w.Food
		p.Body = append([]models.Position{c.head}, p.Body...)
		if grew {
			p.Score++
			ate = true
		} else {
			p.Body = p.Body[:len(p.Body)-1]
		}
	}
	if ate {
		w.placeFood()
	}

	w.Tick++
}

func bodyContains(body []models.Position, pos models.Position) bool {
	for _, cell := range body {
		if cell == pos {
			return true
		}
	}
	return false
}
