// Package board implements the pure Minesweeper field: layout generation,
// flood-fill reveal, flag toggling, and restart. It performs no I/O and
// holds no lock of its own — callers (the session package) serialize access.
package board

import (
	"errors"
	"fmt"
	mrand "math/rand/v2"
)

var (
	// ErrInvalidDimensions is returned by New when width or height is zero.
	ErrInvalidDimensions = errors.New("board: width and height must each be at least 1")
	// ErrTooManyBombs is returned by New when bombCount leaves no safe cell.
	ErrTooManyBombs = errors.New("board: bomb count must leave at least one safe cell")
)

// Phase is the derived state-machine value of a Board.
type Phase int

const (
	Playing Phase = iota
	Won
	Lost
)

// Shuffle performs an in-place Fisher-Yates shuffle of n elements, calling
// swap to exchange indices i and j. math/rand/v2's package-level Shuffle
// satisfies this signature directly; tests inject a deterministic
// implementation to pin bomb layouts.
type Shuffle func(n int, swap func(i, j int))

// Board is a single Minesweeper field plus its win/loss flags.
type Board struct {
	width, height uint16
	bombCount     uint16
	cells         []cell // row-major, index = y*width + x
	won           bool
	lost          bool
	shuffle       Shuffle
}

// New validates dimensions and bomb count, then lays out a fresh board.
func New(width, height, bombCount uint16, shuffle Shuffle) (*Board, error) {
	if width == 0 || height == 0 {
		return nil, ErrInvalidDimensions
	}
	area := uint32(width) * uint32(height)
	if uint32(bombCount) > area-1 {
		return nil, ErrTooManyBombs
	}
	if shuffle == nil {
		shuffle = mrand.Shuffle
	}
	b := &Board{
		width:     width,
		height:    height,
		bombCount: bombCount,
		shuffle:   shuffle,
	}
	b.layout()
	return b, nil
}

func (b *Board) index(p Position) int { return int(p.Y)*int(b.width) + int(p.X) }

// layout (re)populates cells with a fresh, uniformly-random bomb placement
// and recomputed adjacency counts. Win/loss flags are cleared.
func (b *Board) layout() {
	area := int(b.width) * int(b.height)
	b.cells = make([]cell, area)
	b.won = false
	b.lost = false

	indices := make([]int, area)
	for i := range indices {
		indices[i] = i
	}
	b.shuffle(len(indices), func(i, j int) { indices[i], indices[j] = indices[j], indices[i] })
	for _, idx := range indices[:int(b.bombCount)] {
		b.cells[idx].isBomb = true
	}

	for y := uint16(0); y < b.height; y++ {
		for x := uint16(0); x < b.width; x++ {
			idx := b.index(Position{X: x, Y: y})
			if b.cells[idx].isBomb {
				continue
			}
			b.cells[idx].adjacent = b.countAdjacentBombs(x, y)
		}
	}
}

func (b *Board) countAdjacentBombs(x, y uint16) uint8 {
	var count uint8
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx, ny := int(x)+dx, int(y)+dy
			if nx < 0 || ny < 0 || nx >= int(b.width) || ny >= int(b.height) {
				continue
			}
			if b.cells[ny*int(b.width)+nx].isBomb {
				count++
			}
		}
	}
	return count
}

// Width, Height, BombCount expose the board's fixed parameters.
func (b *Board) Width() uint16     { return b.width }
func (b *Board) Height() uint16    { return b.height }
func (b *Board) BombCount() uint16 { return b.bombCount }
func (b *Board) Won() bool         { return b.won }
func (b *Board) Lost() bool        { return b.lost }

// Phase reports the derived state-machine value.
func (b *Board) Phase() Phase {
	switch {
	case b.lost:
		return Lost
	case b.won:
		return Won
	default:
		return Playing
	}
}

func (b *Board) terminal() bool { return b.won || b.lost }

// Reveal performs a flood-fill reveal starting at pos. It is a no-op
// (returns nil) if the game is already over, pos is out of bounds, or the
// target cell is Revealed or Flagged.
func (b *Board) Reveal(pos Position) []Change {
	if b.terminal() || !pos.inBounds(b.width, b.height) {
		return nil
	}
	start := &b.cells[b.index(pos)]
	if start.visibility != hidden {
		return nil
	}

	var changes []Change
	if start.isBomb {
		start.visibility = revealed
		b.lost = true
		changes = append(changes, Change{Pos: pos, Projection: start.project()})
		return changes
	}

	visited := make(map[Position]bool)
	queue := []Position{pos}
	visited[pos] = true
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		c := &b.cells[b.index(cur)]
		if c.visibility == hidden {
			c.visibility = revealed
			changes = append(changes, Change{Pos: cur, Projection: c.project()})
		}
		if c.adjacent != 0 || c.isBomb {
			continue
		}
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				np := Position{X: uint16(int(cur.X) + dx), Y: uint16(int(cur.Y) + dy)}
				if int(cur.X)+dx < 0 || int(cur.Y)+dy < 0 {
					continue
				}
				if !np.inBounds(b.width, b.height) || visited[np] {
					continue
				}
				nc := &b.cells[b.index(np)]
				if nc.visibility != hidden || nc.isBomb {
					continue
				}
				visited[np] = true
				queue = append(queue, np)
			}
		}
	}

	if b.allSafeRevealed() {
		b.won = true
	}
	return changes
}

func (b *Board) allSafeRevealed() bool {
	for i := range b.cells {
		c := &b.cells[i]
		if c.isBomb && c.visibility == revealed {
			return false
		}
		if !c.isBomb && c.visibility != revealed {
			return false
		}
	}
	return true
}

// Flag toggles a cell between Hidden and Flagged. No-op if the game is
// over, pos is out of bounds, or the cell is already Revealed.
func (b *Board) Flag(pos Position) (Change, bool) {
	if b.terminal() || !pos.inBounds(b.width, b.height) {
		return Change{}, false
	}
	c := &b.cells[b.index(pos)]
	switch c.visibility {
	case hidden:
		c.visibility = flagged
	case flagged:
		c.visibility = hidden
	default:
		return Change{}, false
	}
	return Change{Pos: pos, Projection: c.project()}, true
}

// Restart reinitializes the board in place with the same dimensions and
// bomb count: a fresh layout, all cells Hidden, won/lost cleared.
func (b *Board) Restart() {
	b.layout()
}

// Snapshot returns the full field[y][x] projection grid, for an Init frame.
func (b *Board) Snapshot() [][]Projection {
	grid := make([][]Projection, b.height)
	for y := uint16(0); y < b.height; y++ {
		row := make([]Projection, b.width)
		for x := uint16(0); x < b.width; x++ {
			row[x] = b.cells[b.index(Position{X: x, Y: y})].project()
		}
		grid[y] = row
	}
	return grid
}

func (b *Board) String() string {
	return fmt.Sprintf("Board{%dx%d bombs=%d phase=%v}", b.width, b.height, b.bombCount, b.Phase())
}
