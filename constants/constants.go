package constants

import "time"

const (
	// Game constants, shared with any renderer
	GRID_WIDTH  = 60
	GRID_HEIGHT = 30

	// One simulation step every 150ms (~6.67 ticks/s)
	TICK_RATE = 150 * time.Millisecond

	// Legacy mode is exactly two players
	DEFAULT_PLAYERS = 2
)
