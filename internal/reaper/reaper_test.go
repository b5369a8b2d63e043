package reaper

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/kazip/minesweeper-server/internal/board"
	"github.com/kazip/minesweeper-server/internal/registry"
	"github.com/kazip/minesweeper-server/internal/session"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestGame(t *testing.T) *session.Game {
	t.Helper()
	b, err := board.New(2, 2, 0, func(n int, swap func(i, j int)) {})
	if err != nil {
		t.Fatal(err)
	}
	return session.New(b)
}

func TestSweepEvictsIdleEmptyGame(t *testing.T) {
	reg := registry.New()
	g := newTestGame(t)
	id, err := reg.Create(g)
	if err != nil {
		t.Fatal(err)
	}

	r := New(reg, time.Hour, time.Hour, time.Millisecond, discardLogger())
	time.Sleep(2 * time.Millisecond)
	r.sweep()

	if _, ok := reg.Get(id); ok {
		t.Fatal("expected idle empty game to be evicted")
	}
}

func TestSweepSparesActiveGame(t *testing.T) {
	reg := registry.New()
	g := newTestGame(t)
	id, err := reg.Create(g)
	if err != nil {
		t.Fatal(err)
	}

	r := New(reg, time.Hour, time.Hour, time.Hour, discardLogger())
	r.sweep()

	if _, ok := reg.Get(id); !ok {
		t.Fatal("expected recently created game to survive the sweep")
	}
}

func TestSweepClosesSubscribersOfEvictedGame(t *testing.T) {
	reg := registry.New()
	g := newTestGame(t)
	id, err := reg.Create(g)
	if err != nil {
		t.Fatal(err)
	}
	_, ch := g.Attach()
	<-ch // drain the init frame

	r := New(reg, time.Hour, time.Millisecond, time.Millisecond, discardLogger())
	time.Sleep(2 * time.Millisecond)
	r.sweep()

	if _, ok := reg.Get(id); ok {
		t.Fatal("expected game to be evicted")
	}
	if _, stillOpen := <-ch; stillOpen {
		t.Fatal("expected subscriber channel closed after eviction")
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	reg := registry.New()
	r := New(reg, time.Millisecond, time.Hour, time.Hour, discardLogger())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected Run to return after context cancellation")
	}
}
