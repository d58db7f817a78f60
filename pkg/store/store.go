package store

import (
	"caprisun/pkg/games"
)

// Document is the single persisted state record for the whole bot. It is
// read into memory once at startup and written back after every mutation.
type Document struct {
	Groups   map[string]*GroupSettings `json:"groups"`
	Bans     map[string]bool           `json:"bans"`
	Warnings map[string]int            `json:"warnings"`
	Games    GameTable                 `json:"games"`
	Prefix   string                    `json:"prefix,omitempty"`
}

// GroupSettings holds the per-group switches. Welcome and Antilink use
// "on"/"off" strings to match the command surface.
type GroupSettings struct {
	Approved       bool   `json:"approved"`
	Blocked        bool   `json:"blocked"`
	Welcome        string `json:"welcome,omitempty"`
	WelcomeMessage string `json:"welcomeMessage,omitempty"`
	Antilink       string `json:"antilink,omitempty"`
}

// GameTable keys every game kind by group id. At most one active instance
// exists per (kind, group); terminal games are deleted from their map.
type GameTable struct {
	Hangman   map[string]*games.Hangman   `json:"hangman"`
	TicTacToe map[string]*games.TicTacToe `json:"tictactoe"`
	WordGame  map[string]*games.WordGame  `json:"wordgame"`
}

func NewDocument() *Document {
	return &Document{
		Groups:   map[string]*GroupSettings{},
		Bans:     map[string]bool{},
		Warnings: map[string]int{},
		Games: GameTable{
			Hangman:   map[string]*games.Hangman{},
			TicTacToe: map[string]*games.TicTacToe{},
			WordGame:  map[string]*games.WordGame{},
		},
	}
}

// normalize backfills nil maps after unmarshalling an older or partial
// document so callers never need nil checks.
func (d *Document) normalize() {
	if d.Groups == nil {
		d.Groups = map[string]*GroupSettings{}
	}
	if d.Bans == nil {
		d.Bans = map[string]bool{}
	}
	if d.Warnings == nil {
		d.Warnings = map[string]int{}
	}
	if d.Games.Hangman == nil {
		d.Games.Hangman = map[string]*games.Hangman{}
	}
	if d.Games.TicTacToe == nil {
		d.Games.TicTacToe = map[string]*games.TicTacToe{}
	}
	if d.Games.WordGame == nil {
		d.Games.WordGame = map[string]*games.WordGame{}
	}
}

// Group returns the settings entry for a group, creating it when absent.
func (d *Document) Group(groupID string) *GroupSettings {
	g, ok := d.Groups[groupID]
	if !ok {
		g = &GroupSettings{}
		d.Groups[groupID] = g
	}
	return g
}
