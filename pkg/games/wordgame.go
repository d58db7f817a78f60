package games

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// WordGame is a timed multiplayer word-submission game. A host opens a
// lobby, players join, and each round players race a deadline to submit
// valid words starting with the round's letter. Words may not repeat within
// a round or across the whole game; longer words score more.
//
// The used-word sets and the score map are plain slices/maps so the state
// survives a JSON round-trip intact.
type WordGame struct {
	Active     bool           `json:"active"`
	Phase      string         `json:"phase"`
	Host       string         `json:"host"`
	Players    []string       `json:"players"`
	Difficulty string         `json:"difficulty"`
	Round      int            `json:"round"`
	Rounds     int            `json:"rounds"`
	Letter     string         `json:"letter"`
	Deadline   time.Time      `json:"deadline"`
	Scores     map[string]int `json:"scores"`
	RoundWords []string       `json:"roundUsedWords"`
	GameWords  []string       `json:"gameUsedWords"`
}

const (
	PhaseLobby   = "lobby"
	PhasePlaying = "playing"
)

type SubmitOutcome int

const (
	SubmitAccepted SubmitOutcome = iota
	SubmitRoundOver
)

var (
	ErrNotInLobby     = errors.New("game has already started")
	ErrRoundNotActive = errors.New("no round in progress")
	ErrAlreadyJoined  = errors.New("already joined")
	ErrNotEnough      = errors.New("need at least two players")
	ErrWordUsed       = errors.New("word already used")
	ErrWrongLetter    = errors.New("word does not start with the round letter")
	ErrTooShort       = errors.New("word too short for this difficulty")
	ErrBadDifficulty  = errors.New("difficulty must be easy, medium or hard")
)

func NewWordGame(host string, rounds int) *WordGame {
	return &WordGame{
		Active:     true,
		Phase:      PhaseLobby,
		Host:       host,
		Players:    []string{host},
		Difficulty: "medium",
		Rounds:     rounds,
		Scores:     map[string]int{},
		RoundWords: []string{},
		GameWords:  []string{},
	}
}

func (g *WordGame) IsPlayer(user string) bool {
	for _, p := range g.Players {
		if p == user {
			return true
		}
	}
	return false
}

func (g *WordGame) Join(user string) error {
	if g.Phase != PhaseLobby {
		return ErrNotInLobby
	}
	if g.IsPlayer(user) {
		return ErrAlreadyJoined
	}
	g.Players = append(g.Players, user)
	return nil
}

func (g *WordGame) SetDifficulty(d string) error {
	if g.Phase != PhaseLobby {
		return ErrNotInLobby
	}
	switch d {
	case "easy", "medium", "hard":
		g.Difficulty = d
		return nil
	}
	return ErrBadDifficulty
}

// MinLength is the shortest acceptable word for the current difficulty.
func (g *WordGame) MinLength() int {
	switch g.Difficulty {
	case "easy":
		return 3
	case "hard":
		return 5
	}
	return 4
}

// Start leaves the lobby and opens round 1 with the given letter.
func (g *WordGame) Start(letter string, now time.Time, roundLen time.Duration) error {
	if g.Phase != PhaseLobby {
		return ErrNotInLobby
	}
	if len(g.Players) < 2 {
		return ErrNotEnough
	}
	g.Phase = PhasePlaying
	g.Round = 1
	g.openRound(letter, now, roundLen)
	return nil
}

func (g *WordGame) openRound(letter string, now time.Time, roundLen time.Duration) {
	g.Letter = strings.ToLower(letter)
	g.Deadline = now.Add(roundLen)
	g.RoundWords = []string{}
}

// RoundExpired reports whether the current round's deadline has passed.
func (g *WordGame) RoundExpired(now time.Time) bool {
	return g.Phase == PhasePlaying && now.After(g.Deadline)
}

// Submit scores a word for user. Nothing is mutated on a rejected word, and
// a submission after the deadline reports SubmitRoundOver without scoring.
func (g *WordGame) Submit(user, raw string, now time.Time) (SubmitOutcome, int, error) {
	if g.Phase != PhasePlaying {
		return 0, 0, ErrRoundNotActive
	}
	if !g.IsPlayer(user) {
		return 0, 0, ErrNotAPlayer
	}
	if now.After(g.Deadline) {
		return SubmitRoundOver, 0, nil
	}

	word := strings.ToLower(strings.TrimSpace(raw))
	if !strings.HasPrefix(word, g.Letter) {
		return 0, 0, ErrWrongLetter
	}
	if len(word) < g.MinLength() {
		return 0, 0, ErrTooShort
	}
	for _, used := range g.GameWords {
		if used == word {
			return 0, 0, ErrWordUsed
		}
	}

	g.RoundWords = append(g.RoundWords, word)
	g.GameWords = append(g.GameWords, word)
	points := len(word)
	g.Scores[user] += points
	return SubmitAccepted, points, nil
}

// NextRound advances past an expired round. It reports done=true when the
// configured round count is exhausted, otherwise it opens the next round
// with the given letter.
func (g *WordGame) NextRound(letter string, now time.Time, roundLen time.Duration) (done bool) {
	if g.Round >= g.Rounds {
		return true
	}
	g.Round++
	g.openRound(letter, now, roundLen)
	return false
}

// Forfeit removes a player. The game dissolves when the last player leaves,
// when the host abandons the lobby (nobody else may start it), or when fewer
// than two players remain mid-game.
func (g *WordGame) Forfeit(user string) (dissolved bool) {
	for i, p := range g.Players {
		if p == user {
			g.Players = append(g.Players[:i], g.Players[i+1:]...)
			delete(g.Scores, user)
			break
		}
	}
	if len(g.Players) == 0 {
		return true
	}
	if g.Phase == PhaseLobby {
		return user == g.Host
	}
	return len(g.Players) < 2
}

// Standings renders the scoreboard ordered by score, ties broken by join
// order.
func (g *WordGame) Standings() string {
	players := make([]string, len(g.Players))
	copy(players, g.Players)
	sort.SliceStable(players, func(i, j int) bool {
		return g.Scores[players[i]] > g.Scores[players[j]]
	})
	var b strings.Builder
	for i, p := range players {
		fmt.Fprintf(&b, "%d. <@%s>: %d\n", i+1, p, g.Scores[p])
	}
	return strings.TrimRight(b.String(), "\n")
}

// Leader returns the current top scorer.
func (g *WordGame) Leader() string {
	best := ""
	bestScore := -1
	for _, p := range g.Players {
		if g.Scores[p] > bestScore {
			best = p
			bestScore = g.Scores[p]
		}
	}
	return best
}
