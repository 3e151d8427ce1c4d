package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"testing"
	"time"

	"snake-arena/logging"
	"snake-arena/models"
)

func TestMain(m *testing.M) {
	if err := logging.InitLogger(""); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func startServer(t *testing.T, players int) (*Server, chan error) {
	t.Helper()
	s := New(Config{Addr: "127.0.0.1:0", Players: players})
	done := make(chan error, 1)
	go func() { done <- s.Run() }()

	deadline := time.Now().Add(2 * time.Second)
	for s.Addr() == "" {
		if time.Now().After(deadline) {
			t.Fatalf("server did not bind")
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Cleanup(func() {
		s.Stop()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
		}
	})
	return s, done
}

// gameClient is a minimal line-protocol client for tests. One scanner
// per connection, so no buffered bytes are lost between reads.
type gameClient struct {
	conn net.Conn
	sc   *bufio.Scanner
}

func dialGame(t *testing.T, addr string) *gameClient {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial %s: %v", addr, err)
	}
	t.Cleanup(func() { conn.Close() })
	sc := bufio.NewScanner(conn)
	sc.Buffer(make([]byte, 64*1024), 64*1024)
	return &gameClient{conn: conn, sc: sc}
}

func (c *gameClient) send(t *testing.T, frame string) {
	t.Helper()
	if _, err := fmt.Fprintf(c.conn, "%s\n", frame); err != nil {
		t.Fatalf("send frame: %v", err)
	}
}

// waitState reads snapshots until accept returns true or the deadline
// passes.
func (c *gameClient) waitState(t *testing.T, wait time.Duration, accept func(models.StateMsg) bool) models.StateMsg {
	t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(wait))
	for c.sc.Scan() {
		var state models.StateMsg
		if err := json.Unmarshal(c.sc.Bytes(), &state); err != nil {
			t.Fatalf("bad snapshot frame: %v", err)
		}
		if accept(state) {
			return state
		}
	}
	t.Fatalf("no matching snapshot within %v: %v", wait, c.sc.Err())
	return models.StateMsg{}
}

func TestTwoPlayerSessionEndsInDraw(t *testing.T) {
	s, done := startServer(t, 2)
	c1 := dialGame(t, s.Addr())
	c2 := dialGame(t, s.Addr())

	c1.send(t, `{"Join":{"name":"alice"}}`)
	c2.send(t, `{"Join":{"name":"bob"}}`)

	state := c1.waitState(t, 5*time.Second, func(st models.StateMsg) bool {
		return st.Players[0].Name == "alice" && st.Players[1].Name == "bob"
	})
	if len(state.Players) != 2 {
		t.Fatalf("expected 2 players, got %d", len(state.Players))
	}
	if state.Tick == 0 {
		t.Fatalf("snapshots start after the first step")
	}

	// With no input the spawn layout puts both snakes on a closing
	// course; they meet head-on and the game ends in a draw.
	state = c1.waitState(t, 5*time.Second, func(st models.StateMsg) bool {
		return st.GameOver
	})
	if state.Winner != nil {
		t.Fatalf("expected draw, got winner %d", *state.Winner)
	}

	c1.conn.Close()
	c2.conn.Close()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("server did not exit after all clients disconnected")
	}
}

func TestInputSteersSnake(t *testing.T) {
	s, _ := startServer(t, 2)
	c1 := dialGame(t, s.Addr())
	dialGame(t, s.Addr())

	c1.send(t, `{"Input":{"dir":"Up"}}`)

	c1.waitState(t, 5*time.Second, func(st models.StateMsg) bool {
		return st.Players[0].Dir == models.Up
	})
}

func TestMalformedFramesAreDropped(t *testing.T) {
	s, _ := startServer(t, 2)
	c1 := dialGame(t, s.Addr())
	dialGame(t, s.Addr())

	c1.send(t, `this is not json`)
	c1.send(t, `{"Quit":{}}`)
	c1.send(t, `{"Join":{"name":"still here"}}`)

	// The session survives the garbage and the valid frame lands.
	c1.waitState(t, 5*time.Second, func(st models.StateMsg) bool {
		return st.Players[0].Name == "still here"
	})
}

func TestConnectionsBeyondCapacityRejected(t *testing.T) {
	s, _ := startServer(t, 1)
	dialGame(t, s.Addr())

	extra := dialGame(t, s.Addr())
	_ = extra.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	buf := make([]byte, 1)
	if _, err := extra.conn.Read(buf); err == nil {
		t.Fatalf("expected the extra connection to be closed")
	}
}
