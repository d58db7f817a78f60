package games

import (
	"errors"
	"strings"
	"unicode"
)

// Hangman is a single-player letter guessing game. The state round-trips
// through JSON, so the guessed-letter set is stored as a sorted-insertion
// array rather than a map.
type Hangman struct {
	Active   bool     `json:"active"`
	Player   string   `json:"player"`
	Word     string   `json:"word"`
	Guessed  []string `json:"guessed"`
	Attempts int      `json:"attempts"`
}

type GuessOutcome int

const (
	GuessAlreadyTried GuessOutcome = iota
	GuessHit
	GuessMiss
	GuessWon
	GuessLost
)

var ErrNotALetter = errors.New("guess must be a single letter")

func NewHangman(player, word string, attempts int) *Hangman {
	return &Hangman{
		Active:   true,
		Player:   player,
		Word:     strings.ToLower(word),
		Guessed:  []string{},
		Attempts: attempts,
	}
}

func (g *Hangman) HasGuessed(letter string) bool {
	for _, l := range g.Guessed {
		if l == letter {
			return true
		}
	}
	return false
}

// Guess applies a single letter to the game. The state is left untouched on
// validation failure and on a repeated letter.
func (g *Hangman) Guess(raw string) (GuessOutcome, error) {
	runes := []rune(strings.ToLower(raw))
	if len(runes) != 1 || !unicode.IsLetter(runes[0]) {
		return 0, ErrNotALetter
	}
	letter := string(runes[0])

	if g.HasGuessed(letter) {
		return GuessAlreadyTried, nil
	}

	g.Guessed = append(g.Guessed, letter)
	outcome := GuessHit
	if !strings.Contains(g.Word, letter) {
		g.Attempts--
		outcome = GuessMiss
	}

	if g.Attempts <= 0 {
		return GuessLost, nil
	}
	if !strings.Contains(g.Masked(), "_") {
		return GuessWon, nil
	}
	return outcome, nil
}

// Masked renders the word with unguessed letters hidden, e.g. "c _ t".
func (g *Hangman) Masked() string {
	parts := make([]string, 0, len(g.Word))
	for _, r := range g.Word {
		letter := string(r)
		if g.HasGuessed(letter) {
			parts = append(parts, letter)
		} else {
			parts = append(parts, "_")
		}
	}
	return strings.Join(parts, " ")
}
