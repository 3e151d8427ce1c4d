package server

import (
	"encoding/json"
	"time"

	"snake-arena/constants"
	"snake-arena/logging"
)

// loop is the tick scheduler. It alone mutates the world: drain
// pending messages, step the simulation on each deadline, broadcast
// the snapshot, prune failed connections, exit when nobody is left.
func (s *Server) loop() {
	next := time.Now().Add(constants.TICK_RATE)
	for {
		s.drainInbound()
		s.processLeaves()

		select {
		case <-s.stop:
			s.closeAll()
			return
		default:
		}

		if !time.Now().Before(next) {
			start := time.Now()
			s.world.Step()
			snap := s.world.Snapshot()
			data, err := json.Marshal(snap)
			if err != nil {
				logging.Log.Errorf("marshal snapshot: %v", err)
			} else {
				s.lastState.Store(data)
				s.broadcast(data)
			}
			// Advance by exactly one interval so the cadence never
			// drifts; if we fell behind, the backlog runs back-to-back.
			next = next.Add(constants.TICK_RATE)
			s.metrics.AddTick(time.Since(start).Nanoseconds())
		} else {
			time.Sleep(time.Millisecond)
		}

		if s.clientCount() == 0 {
			logging.Log.Info("all clients disconnected")
			return
		}
	}
}

// drainInbound applies every queued message without blocking. Input
// frames overwrite the player's pending input, so only the last one
// before the tick boundary takes effect.
func (s *Server) drainInbound() {
	for {
		select {
		case in := <-s.inbound:
			switch {
			case in.msg.Join != nil:
				s.world.SetName(in.slot, in.msg.Join.Name)
				s.metrics.IncJoinsApplied()
				logging.Log.Infof("player %d joined as %q", in.slot+1, in.msg.Join.Name)
			case in.msg.Input != nil:
				s.world.BufferInput(in.slot, in.msg.Input.Dir)
				s.metrics.IncInputsApplied()
			}
		default:
			return
		}
	}
}

func (s *Server) processLeaves() {
	for {
		select {
		case slot := <-s.leave:
			s.removeClient(slot)
		default:
			return
		}
	}
}

// broadcast fans the serialized snapshot out to every connection. A
// client whose send queue is full is stalled beyond saving and gets
// pruned instead of stalling the tick loop.
func (s *Server) broadcast(data []byte) {
	s.mu.Lock()
	targets := make([]*client, 0, len(s.clients))
	for _, c := range s.clients {
		targets = append(targets, c)
	}
	s.mu.Unlock()

	for _, c := range targets {
		select {
		case c.send <- data:
			s.metrics.IncSnapshotsSent()
		default:
			s.metrics.IncWriteFailures()
			s.removeClient(c.slot)
		}
	}
}

func (s *Server) closeAll() {
	s.mu.Lock()
	slots := make([]int, 0, len(s.clients))
	for slot := range s.clients {
		slots = append(slots, slot)
	}
	s.mu.Unlock()
	for _, slot := range slots {
		s.removeClient(slot)
	}
}
