package main

import (
	"sync"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/TheCatArt/Real-time-Collaborative-Code-Editor/client"
)

// upstream maintains the bridge to a cloud sync server, reconnecting with
// exponential backoff. Envelopes read from the server feed the local engine
// and are relayed to LAN clients; locally generated envelopes are written up.
type upstream struct {
	url    string
	engine *client.Engine
	hub    *Hub
	log    *logrus.Entry

	mu   sync.Mutex
	conn *websocket.Conn
}

func newUpstream(url string, engine *client.Engine, hub *Hub, log *logrus.Logger) *upstream {
	return &upstream{
		url:    url,
		engine: engine,
		hub:    hub,
		log:    log.WithField("upstream", url),
	}
}

func (u *upstream) run() {
	for {
		bo := backoff.NewExponentialBackOff()
		bo.MaxElapsedTime = 0 // retry forever
		err := backoff.Retry(func() error {
			conn, _, err := websocket.DefaultDialer.Dial(u.url, nil)
			if err != nil {
				u.log.WithError(err).Warn("Upstream dial failed, retrying")
				return err
			}
			u.setConn(conn)
			return nil
		}, bo)
		if err != nil {
			// Unreachable with MaxElapsedTime 0, but don't spin if it changes.
			time.Sleep(time.Second)
			continue
		}
		u.log.Info("Connected to sync server")
		u.readLoop()
		u.setConn(nil)
		u.log.Warn("Upstream connection lost")
	}
}

func (u *upstream) readLoop() {
	conn := u.current()
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		msg, err := client.DecodeMessage(raw)
		if err != nil {
			u.log.WithError(err).Warn("Dropping malformed envelope")
			continue
		}
		u.engine.Receive(msg)
		// Acks are addressed to this agent's pending queue; everything
		// else is relayed to LAN clients.
		if msg.Type != client.MessageAck {
			u.hub.broadcast <- raw
		}
	}
}

// send writes an envelope to the server, dropping it when disconnected; the
// server's version-sync snapshot is the recovery path for anything missed.
func (u *upstream) send(data []byte) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.conn == nil {
		return
	}
	if err := u.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		u.log.WithError(err).Debug("Upstream write failed")
	}
}

func (u *upstream) setConn(conn *websocket.Conn) {
	u.mu.Lock()
	u.conn = conn
	u.mu.Unlock()
}

func (u *upstream) current() *websocket.Conn {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.conn
}
