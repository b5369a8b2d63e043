// Package registry maps game ids to live Games and mints fresh ids on
// creation, mirroring the original server's add_game retry loop.
package registry

import (
	"github.com/kazip/minesweeper-server/internal/idgen"
	"github.com/kazip/minesweeper-server/internal/session"
	"github.com/kazip/minesweeper-server/internal/shardmap"
)

// Registry is the process-wide id -> *session.Game mapping.
type Registry struct {
	games *shardmap.Map[*session.Game]
}

// New constructs an empty Registry.
func New() *Registry {
	return &Registry{games: shardmap.New[*session.Game]()}
}

// Create mints a fresh id, stores g under it, and returns the id. The
// mint-then-insert is a single atomic step per candidate id so two
// concurrent Creates can never claim the same id.
func (r *Registry) Create(g *session.Game) (string, error) {
	id, err := idgen.Mint(func(candidate string) bool {
		return !r.games.SetIfAbsent(candidate, g)
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// Get looks up the Game for id.
func (r *Registry) Get(id string) (*session.Game, bool) {
	return r.games.Get(id)
}

// Remove deletes id from the registry. It does not close the Game's
// subscribers; callers (typically the Reaper) do that separately.
func (r *Registry) Remove(id string) {
	r.games.Delete(id)
}

// Ids returns a snapshot of every id currently registered.
func (r *Registry) Ids() []string {
	return r.games.Keys()
}

// Len reports the number of games currently registered.
func (r *Registry) Len() int {
	return r.games.Len()
}
