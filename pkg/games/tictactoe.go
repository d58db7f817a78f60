package games

import (
	"errors"
	"strings"
)

// TicTacToe is a two-player board game. Players[0] plays "X" and moves on
// even turns, Players[1] plays "O" and moves on odd turns.
type TicTacToe struct {
	Active  bool      `json:"active"`
	Players [2]string `json:"players"`
	Board   [9]string `json:"board"`
	Turn    int       `json:"turn"`
}

type MoveOutcome int

const (
	MoveContinue MoveOutcome = iota
	MoveWon
	MoveDraw
)

var (
	ErrNotAPlayer  = errors.New("not a player in this game")
	ErrNotYourTurn = errors.New("not your turn")
	ErrBadCell     = errors.New("cell index out of range")
	ErrCellTaken   = errors.New("cell already occupied")
)

var winLines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

func NewTicTacToe(challenger, opponent string) *TicTacToe {
	return &TicTacToe{
		Active:  true,
		Players: [2]string{challenger, opponent},
	}
}

func (g *TicTacToe) IsPlayer(user string) bool {
	return g.Players[0] == user || g.Players[1] == user
}

// CurrentPlayer returns the id of the player whose turn it is.
func (g *TicTacToe) CurrentPlayer() string {
	return g.Players[g.Turn%2]
}

func (g *TicTacToe) CurrentSymbol() string {
	if g.Turn%2 == 0 {
		return "X"
	}
	return "O"
}

// Opponent returns the other player's id.
func (g *TicTacToe) Opponent(user string) string {
	if g.Players[0] == user {
		return g.Players[1]
	}
	return g.Players[0]
}

// Move places the current player's symbol at cell (0-8). The board and turn
// counter are left untouched when the move is rejected.
func (g *TicTacToe) Move(user string, cell int) (MoveOutcome, error) {
	if !g.IsPlayer(user) {
		return 0, ErrNotAPlayer
	}
	if g.CurrentPlayer() != user {
		return 0, ErrNotYourTurn
	}
	if cell < 0 || cell > 8 {
		return 0, ErrBadCell
	}
	if g.Board[cell] != "" {
		return 0, ErrCellTaken
	}

	g.Board[cell] = g.CurrentSymbol()
	g.Turn++

	if winner := g.Winner(); winner != "" {
		return MoveWon, nil
	}
	for _, c := range g.Board {
		if c == "" {
			return MoveContinue, nil
		}
	}
	return MoveDraw, nil
}

// Winner returns "X", "O" or "" by checking the 8 three-in-a-row lines.
func (g *TicTacToe) Winner() string {
	for _, line := range winLines {
		a, b, c := g.Board[line[0]], g.Board[line[1]], g.Board[line[2]]
		if a != "" && a == b && b == c {
			return a
		}
	}
	return ""
}

// PlayerFor maps a symbol back to the player id holding it.
func (g *TicTacToe) PlayerFor(symbol string) string {
	if symbol == "X" {
		return g.Players[0]
	}
	return g.Players[1]
}

// Render draws the board with emoji cells, three per row.
func (g *TicTacToe) Render() string {
	symbols := map[string]string{"": "⬜", "X": "❌", "O": "⭕"}
	var b strings.Builder
	for i, cell := range g.Board {
		b.WriteString(symbols[cell])
		if i%3 == 2 {
			b.WriteString("\n")
		} else {
			b.WriteString(" | ")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
