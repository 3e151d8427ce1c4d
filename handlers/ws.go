package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"

	"snake-arena/logging"
	"snake-arena/server"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // allow all origins in development
	},
}

// WSHandler bridges browsers into the arena: one WebSocket text
// message is one protocol frame, and a WebSocket connection occupies a
// player slot exactly like a TCP one.
type WSHandler struct {
	srv *server.Server
}

func NewWSHandler(srv *server.Server) *WSHandler {
	return &WSHandler{srv: srv}
}

func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Log.Infof("websocket upgrade failed: %v", err)
		return
	}
	conn := &wsConn{ws: ws}
	if err := h.srv.Register(conn); err != nil {
		logging.Log.Infof("rejecting websocket %s: %v", conn.RemoteAddr(), err)
		_ = conn.Close()
	}
}

// wsConn adapts a gorilla connection to the server's frame transport.
type wsConn struct {
	ws *websocket.Conn
}

func (c *wsConn) ReadFrame() ([]byte, error) {
	for {
		mt, data, err := c.ws.ReadMessage()
		if err != nil {
			return nil, err
		}
		if mt != websocket.TextMessage {
			continue
		}
		return data, nil
	}
}

func (c *wsConn) WriteFrame(frame []byte) error {
	return c.ws.WriteMessage(websocket.TextMessage, frame)
}

func (c *wsConn) Close() error { return c.ws.Close() }

func (c *wsConn) RemoteAddr() string { return c.ws.RemoteAddr().String() }
