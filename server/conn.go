package server

import (
	"bufio"
	"bytes"
	"net"

	"snake-arena/logging"
	"snake-arena/models"
)

// Conn is one client transport: a frame is one JSON document. The TCP
// transport delimits frames with newlines; the WebSocket gateway maps
// one frame to one text message.
type Conn interface {
	ReadFrame() ([]byte, error)
	WriteFrame([]byte) error
	Close() error
	RemoteAddr() string
}

type tcpConn struct {
	c  net.Conn
	br *bufio.Reader
}

// NewTCPConn wraps a raw TCP connection as a line-delimited transport.
func NewTCPConn(c net.Conn) Conn {
	if tc, ok := c.(*net.TCPConn); ok {
		_ = tc.SetNoDelay(true)
	}
	return &tcpConn{c: c, br: bufio.NewReader(c)}
}

func (t *tcpConn) ReadFrame() ([]byte, error) {
	line, err := t.br.ReadBytes('\n')
	if err != nil {
		return nil, err
	}
	return bytes.TrimRight(line, "\r\n"), nil
}

func (t *tcpConn) WriteFrame(frame []byte) error {
	if _, err := t.c.Write(frame); err != nil {
		return err
	}
	_, err := t.c.Write([]byte{'\n'})
	return err
}

func (t *tcpConn) Close() error { return t.c.Close() }

func (t *tcpConn) RemoteAddr() string { return t.c.RemoteAddr().String() }

// client is one occupied player slot and its transport.
type client struct {
	slot    int
	session string
	conn    Conn
	send    chan []byte
}

// writePump drains the send queue onto the transport. A write failure
// ends the pump; the scheduler prunes the slot via the leave channel.
func (s *Server) writePump(c *client) {
	defer c.conn.Close()
	for frame := range c.send {
		if err := c.conn.WriteFrame(frame); err != nil {
			s.metrics.IncWriteFailures()
			s.requestLeave(c.slot)
			return
		}
	}
}

// readPump decodes inbound frames and forwards them to the scheduler.
// Malformed frames are dropped silently; EOF or a read error ends only
// this reader.
func (s *Server) readPump(c *client) {
	defer s.requestLeave(c.slot)
	for {
		frame, err := c.conn.ReadFrame()
		if err != nil {
			return
		}
		if len(frame) == 0 {
			continue
		}
		msg, err := models.DecodeClientMsg(frame)
		if err != nil {
			s.metrics.IncMalformedFrames()
			continue
		}
		select {
		case s.inbound <- inboundMsg{slot: c.slot, msg: msg}:
		default:
			// Inputs are coalesced per tick anyway; dropping under
			// pressure keeps the reader from blocking the tick loop.
			s.metrics.IncInboundDropped()
			logging.Log.Debugf("inbound queue full, dropping frame from player %d", c.slot+1)
		}
	}
}
