// Package wire defines the JSON-over-websocket message shapes exchanged
// with clients and the translation from board.Projection to the wire's
// CellView encoding.
package wire

import (
	"encoding/json"
	"fmt"

	"github.com/kazip/minesweeper-server/internal/board"
)

// Pos is the wire encoding of a board.Position.
type Pos struct {
	X uint16 `json:"x"`
	Y uint16 `json:"y"`
}

func PosFromBoard(p board.Position) Pos { return Pos{X: p.X, Y: p.Y} }
func (p Pos) ToBoard() board.Position   { return board.Position{X: p.X, Y: p.Y} }

// CellView is one of "hidden", "flagged", "bomb", or a 0-8 integer.
type CellView struct {
	proj board.Projection
}

func CellViewOf(p board.Projection) CellView { return CellView{proj: p} }

func (v CellView) MarshalJSON() ([]byte, error) {
	switch v.proj.Kind {
	case board.Hidden:
		return json.Marshal("hidden")
	case board.Flagged:
		return json.Marshal("flagged")
	case board.Bomb:
		return json.Marshal("bomb")
	case board.Revealed:
		return json.Marshal(v.proj.Adjacent)
	default:
		return nil, fmt.Errorf("wire: unknown projection kind %v", v.proj.Kind)
	}
}

// ClientAction is the discriminator of an inbound client message.
type ClientAction struct {
	Action string `json:"action"`
	Pos    *Pos   `json:"pos,omitempty"`
}

const (
	ActionReveal  = "reveal"
	ActionFlag    = "flag"
	ActionRestart = "restart"
)

// CellUpdate describes one changed cell within an Update frame.
type CellUpdate struct {
	Pos  Pos      `json:"pos"`
	Cell CellView `json:"cell"`
}

// InitFrame is the full board snapshot sent on attach and after restart.
type InitFrame struct {
	Type   string       `json:"type"`
	Width  uint16       `json:"width"`
	Height uint16       `json:"height"`
	Bombs  uint16       `json:"bombs"`
	Field  [][]CellView `json:"field"`
}

// UpdateFrame lists changed cells plus the current terminal flags.
type UpdateFrame struct {
	Type    string       `json:"type"`
	Updates []CellUpdate `json:"updates"`
	Won     bool         `json:"won"`
	Lost    bool         `json:"lost"`
}

func NewInitFrame(width, height, bombs uint16, grid [][]board.Projection) InitFrame {
	field := make([][]CellView, len(grid))
	for y, row := range grid {
		viewRow := make([]CellView, len(row))
		for x, proj := range row {
			viewRow[x] = CellViewOf(proj)
		}
		field[y] = viewRow
	}
	return InitFrame{Type: "init", Width: width, Height: height, Bombs: bombs, Field: field}
}

func NewUpdateFrame(changes []board.Change, won, lost bool) UpdateFrame {
	updates := make([]CellUpdate, len(changes))
	for i, c := range changes {
		updates[i] = CellUpdate{Pos: PosFromBoard(c.Pos), Cell: CellViewOf(c.Projection)}
	}
	return UpdateFrame{Type: "update", Updates: updates, Won: won, Lost: lost}
}

// DecodeClientAction parses one inbound frame. Malformed JSON is reported via
// the error return; a well-formed message with an unrecognized action decodes
// without error. The session loop ignores both, neither is fatal.
func DecodeClientAction(data []byte) (ClientAction, error) {
	var msg ClientAction
	if err := json.Unmarshal(data, &msg); err != nil {
		return ClientAction{}, err
	}
	return msg, nil
}
