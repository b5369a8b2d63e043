package httpapi

import (
	"log/slog"

	"github.com/gorilla/websocket"

	"github.com/kazip/minesweeper-server/internal/session"
	"github.com/kazip/minesweeper-server/internal/wire"
)

// runSessionLoop drives one websocket connection: a write-pump goroutine
// drains the subscriber's outbound channel to the socket, while the calling
// goroutine reads inbound frames and applies them to the Game. Either
// direction failing ends the session; detach is always called exactly
// once, from the read side, which owns cleanup.
func runSessionLoop(conn *websocket.Conn, g *session.Game, log *slog.Logger) {
	id, outbound := g.Attach()

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		// Closing the connection when the pump stops (write failure, or the
		// Game closed the channel on detach) makes the read side fail too.
		defer conn.Close()
		for frame := range outbound {
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}

		action, err := wire.DecodeClientAction(data)
		if err != nil {
			continue
		}

		a, ok := toSessionAction(action)
		if !ok {
			continue
		}
		g.Apply(a)
	}

	g.Detach(id)
	conn.Close()
	<-writerDone
	log.Debug("session loop exited", "subscriber", id.String())
}

func toSessionAction(msg wire.ClientAction) (session.Action, bool) {
	switch msg.Action {
	case wire.ActionReveal:
		if msg.Pos == nil {
			return session.Action{}, false
		}
		return session.Action{Kind: session.ActionReveal, Pos: msg.Pos.ToBoard()}, true
	case wire.ActionFlag:
		if msg.Pos == nil {
			return session.Action{}, false
		}
		return session.Action{Kind: session.ActionFlag, Pos: msg.Pos.ToBoard()}, true
	case wire.ActionRestart:
		return session.Action{Kind: session.ActionRestart}, true
	default:
		return session.Action{}, false
	}
}
