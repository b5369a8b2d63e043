// Package session implements the Game: a Board plus its attached
// subscriber sinks, serialized by a single mutex so every subscriber
// observes the same totally-ordered sequence of Init/Update frames.
package session

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/kazip/minesweeper-server/internal/board"
	"github.com/kazip/minesweeper-server/internal/wire"
)

// ActionKind discriminates an inbound client action.
type ActionKind int

const (
	ActionReveal ActionKind = iota
	ActionFlag
	ActionRestart
)

// Action is a decoded, validated client action ready to Apply.
type Action struct {
	Kind ActionKind
	Pos  board.Position
}

// Game owns a Board and its subscriber table. All three pieces of state —
// the board, the subscriber map, and last-activity — are read and mutated
// only while holding mu.
type Game struct {
	mu           sync.Mutex
	board        *board.Board
	subscribers  map[SubscriberID]*subscriber
	lastActivity time.Time
}

// New wraps a freshly constructed Board in a Game with no subscribers.
func New(b *board.Board) *Game {
	return &Game{
		board:        b,
		subscribers:  make(map[SubscriberID]*subscriber),
		lastActivity: time.Now(),
	}
}

// Attach registers a new sink, bumps last-activity, and synchronously
// enqueues an Init frame. The returned channel is owned by the Game; it is
// closed when the subscriber is detached, and the caller must stop reading
// from it at that point.
func (g *Game) Attach() (SubscriberID, <-chan []byte) {
	g.mu.Lock()
	defer g.mu.Unlock()

	sub := newSubscriber()
	g.subscribers[sub.id] = sub
	g.lastActivity = time.Now()

	frame := wire.NewInitFrame(g.board.Width(), g.board.Height(), g.board.BombCount(), g.board.Snapshot())
	g.enqueueLocked(sub, frame)
	return sub.id, sub.outbound
}

// Detach removes a sink. Idempotent: detaching an id that is already gone,
// or was never attached, is a no-op.
func (g *Game) Detach(id SubscriberID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.detachLocked(id)
}

func (g *Game) detachLocked(id SubscriberID) {
	sub, ok := g.subscribers[id]
	if !ok {
		return
	}
	delete(g.subscribers, id)
	close(sub.outbound)
}

// Apply dispatches to the Board and broadcasts the resulting frame to every
// attached sink, all under the Game's mutex so every subscriber observes
// the same frame order. Apply never blocks on a slow subscriber: enqueue is
// a non-blocking try-send, and overflow detaches that subscriber only.
func (g *Game) Apply(a Action) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.lastActivity = time.Now()

	switch a.Kind {
	case ActionReveal:
		changes := g.board.Reveal(a.Pos)
		if changes == nil {
			return
		}
		g.broadcastLocked(wire.NewUpdateFrame(changes, g.board.Won(), g.board.Lost()))
	case ActionFlag:
		change, ok := g.board.Flag(a.Pos)
		if !ok {
			return
		}
		g.broadcastLocked(wire.NewUpdateFrame([]board.Change{change}, g.board.Won(), g.board.Lost()))
	case ActionRestart:
		g.board.Restart()
		frame := wire.NewInitFrame(g.board.Width(), g.board.Height(), g.board.BombCount(), g.board.Snapshot())
		g.broadcastLocked(frame)
	}
}

// broadcastLocked marshals frame once and tries to enqueue it to every
// attached sink, detaching any whose queue is full. Must be called with mu
// held.
func (g *Game) broadcastLocked(frame any) {
	data, err := json.Marshal(frame)
	if err != nil {
		// Unreachable in practice: frame is always one of wire's own types.
		return
	}
	g.enqueueToAllLocked(data)
}

func (g *Game) enqueueLocked(sub *subscriber, frame any) {
	data, err := json.Marshal(frame)
	if err != nil {
		return
	}
	if !sub.tryEnqueue(data) {
		g.detachLocked(sub.id)
	}
}

func (g *Game) enqueueToAllLocked(data []byte) {
	for id, sub := range g.subscribers {
		if !sub.tryEnqueue(data) {
			g.detachLocked(id)
		}
	}
}

// SubscriberCount reports the number of currently attached sinks.
func (g *Game) SubscriberCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.subscribers)
}

// IsIdle reports whether the Game has exceeded its inactivity threshold:
// thresholdEmpty when no sinks are attached, otherwise thresholdConnected.
func (g *Game) IsIdle(now time.Time, thresholdConnected, thresholdEmpty time.Duration) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	idleFor := now.Sub(g.lastActivity)
	if len(g.subscribers) == 0 {
		return idleFor >= thresholdEmpty
	}
	return idleFor >= thresholdConnected
}

// CloseAll detaches every subscriber, e.g. when the Reaper evicts this Game.
func (g *Game) CloseAll() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for id := range g.subscribers {
		g.detachLocked(id)
	}
}
