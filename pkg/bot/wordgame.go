package bot

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"

	"caprisun/pkg/games"
	"caprisun/pkg/store"
)

// DictionaryChecker validates submitted words against a dictionary.
type DictionaryChecker interface {
	Valid(ctx context.Context, word string) bool
}

// WordGameCommands runs the timed multiplayer word-submission game.
type WordGameCommands struct {
	repo      *store.Repository
	directory *Directory
	dict      DictionaryChecker
	rounds    int
	roundLen  map[string]time.Duration
	now       func() time.Time
}

func NewWordGameCommands(repo *store.Repository, directory *Directory, dict DictionaryChecker, rounds int, roundLen map[string]time.Duration) *WordGameCommands {
	return &WordGameCommands{
		repo:      repo,
		directory: directory,
		dict:      dict,
		rounds:    rounds,
		roundLen:  roundLen,
		now:       time.Now,
	}
}

func (w *WordGameCommands) Name() string { return "wordgame" }

func (w *WordGameCommands) Handle(c *Context) Outcome {
	switch c.Command {
	case "wordgame":
		return w.open(c)
	case "wjoin":
		return w.join(c)
	case "wg":
		if len(c.Args) == 0 {
			c.Fail(fmt.Sprintf("Usage: %swg easy/medium/hard or %swg forfeit", c.Prefix, c.Prefix))
			return Handled
		}
		if c.Args[0] == "forfeit" {
			return w.forfeit(c)
		}
		return w.difficulty(c)
	case "wstart":
		return w.start(c)
	case "w":
		return w.submit(c)
	}
	return NotMatched
}

func (w *WordGameCommands) roundDuration(difficulty string) time.Duration {
	if d, ok := w.roundLen[difficulty]; ok {
		return d
	}
	return time.Minute
}

func randomLetter() string {
	return string(rune('a' + rand.Intn(26)))
}

func (w *WordGameCommands) open(c *Context) Outcome {
	if !c.Event.IsGroup() {
		c.Fail("The word game can only be played in groups.")
		return Handled
	}
	chat := c.Event.ChatKey()

	active := false
	w.repo.View(func(doc *store.Document) {
		g, ok := doc.Games.WordGame[chat]
		active = ok && g.Active
	})
	if active {
		c.Fail("A word game is already active!")
		return Handled
	}

	game := games.NewWordGame(c.Event.Sender, w.rounds)
	err := w.repo.Update(func(doc *store.Document) error {
		doc.Games.WordGame[chat] = game
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("chat", chat).Msg("failed to persist word game")
		c.Fail("Error opening the word game. Please try again.")
		return Failed
	}

	name := w.directory.DisplayName(c.Ctx(), c.Event.GroupID, c.Event.Sender)
	c.React("🎮")
	c.Reply(fmt.Sprintf(
		"Word game lobby opened by @%s!\nJoin with %swjoin, pick %swg easy/medium/hard, then %swstart.",
		name, c.Prefix, c.Prefix, c.Prefix,
	))
	log.Info().Str("chat", chat).Str("host", c.Event.Sender).Msg("word game lobby opened")
	return Handled
}

func (w *WordGameCommands) join(c *Context) Outcome {
	chat := c.Event.ChatKey()

	var joinErr error
	found := false
	err := w.repo.Update(func(doc *store.Document) error {
		game, ok := doc.Games.WordGame[chat]
		if !ok || !game.Active {
			return nil
		}
		found = true
		joinErr = game.Join(c.Event.Sender)
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("chat", chat).Msg("failed to persist word game join")
		c.Fail("Error joining the word game. Please try again.")
		return Failed
	}

	if !found {
		c.Fail("No word game lobby is open.")
		return Handled
	}
	switch {
	case errors.Is(joinErr, games.ErrNotInLobby):
		c.Fail("The game has already started.")
	case errors.Is(joinErr, games.ErrAlreadyJoined):
		c.React("⚠️")
		c.Reply("You have already joined.")
	default:
		name := w.directory.DisplayName(c.Ctx(), c.Event.GroupID, c.Event.Sender)
		c.Done(fmt.Sprintf("@%s joined the word game!", name))
	}
	return Handled
}

func (w *WordGameCommands) difficulty(c *Context) Outcome {
	chat := c.Event.ChatKey()
	level := c.Args[0]

	var setErr error
	found, isHost := false, false
	err := w.repo.Update(func(doc *store.Document) error {
		game, ok := doc.Games.WordGame[chat]
		if !ok || !game.Active {
			return nil
		}
		found = true
		if game.Host != c.Event.Sender {
			return nil
		}
		isHost = true
		setErr = game.SetDifficulty(level)
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("chat", chat).Msg("failed to persist word game difficulty")
		c.Fail("Error setting the difficulty. Please try again.")
		return Failed
	}

	switch {
	case !found:
		c.Fail("No word game lobby is open.")
	case !isHost:
		c.Fail("Only the host can set the difficulty.")
	case errors.Is(setErr, games.ErrNotInLobby):
		c.Fail("The game has already started.")
	case errors.Is(setErr, games.ErrBadDifficulty):
		c.Fail("Difficulty must be easy, medium or hard.")
	default:
		c.Done(fmt.Sprintf("Difficulty set to %s.", level))
	}
	return Handled
}

func (w *WordGameCommands) start(c *Context) Outcome {
	chat := c.Event.ChatKey()
	letter := randomLetter()

	var startErr error
	var snapshot games.WordGame
	found, isHost := false, false
	err := w.repo.Update(func(doc *store.Document) error {
		game, ok := doc.Games.WordGame[chat]
		if !ok || !game.Active {
			return nil
		}
		found = true
		if game.Host != c.Event.Sender {
			return nil
		}
		isHost = true
		startErr = game.Start(letter, w.now(), w.roundDuration(game.Difficulty))
		snapshot = *game
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("chat", chat).Msg("failed to persist word game start")
		c.Fail("Error starting the word game. Please try again.")
		return Failed
	}

	switch {
	case !found:
		c.Fail("No word game lobby is open.")
	case !isHost:
		c.Fail("Only the host can start the game.")
	case errors.Is(startErr, games.ErrNotInLobby):
		c.Fail("The game has already started.")
	case errors.Is(startErr, games.ErrNotEnough):
		c.Fail("Need at least two players to start.")
	default:
		c.React("🎮")
		c.Reply(fmt.Sprintf(
			"Round %d/%d! Submit words starting with *%s* (min %d letters) using %sw <word>. %d seconds!",
			snapshot.Round, snapshot.Rounds, snapshot.Letter, snapshot.MinLength(),
			c.Prefix, int(w.roundDuration(snapshot.Difficulty).Seconds()),
		))
		log.Info().Str("chat", chat).Str("letter", snapshot.Letter).Msg("word game started")
	}
	return Handled
}

func (w *WordGameCommands) submit(c *Context) Outcome {
	chat := c.Event.ChatKey()
	if len(c.Args) == 0 {
		c.Fail("Please submit a word.")
		return Handled
	}
	word := c.Args[0]

	// Peek first: the dictionary lookup must happen outside the store lock,
	// and only for submissions that pass the cheap checks.
	var (
		peek  games.WordGame
		found bool
	)
	w.repo.View(func(doc *store.Document) {
		game, ok := doc.Games.WordGame[chat]
		if ok && game.Active {
			peek = *game
			found = true
		}
	})
	if !found || peek.Phase != games.PhasePlaying {
		c.Fail("No word game round in progress.")
		return Handled
	}
	if !peek.IsPlayer(c.Event.Sender) {
		c.Fail("You are not playing in this game.")
		return Handled
	}

	if peek.RoundExpired(w.now()) {
		return w.settleRound(c)
	}

	if !w.dict.Valid(c.Ctx(), word) {
		c.Fail(fmt.Sprintf("%q is not in the dictionary.", word))
		return Handled
	}

	var (
		outcome   games.SubmitOutcome
		points    int
		submitErr error
	)
	err := w.repo.Update(func(doc *store.Document) error {
		game, ok := doc.Games.WordGame[chat]
		if !ok || !game.Active {
			submitErr = games.ErrRoundNotActive
			return nil
		}
		outcome, points, submitErr = game.Submit(c.Event.Sender, word, w.now())
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("chat", chat).Msg("failed to persist word submission")
		c.Fail("Error submitting the word. Please try again.")
		return Failed
	}

	switch {
	case errors.Is(submitErr, games.ErrRoundNotActive):
		c.Fail("No word game round in progress.")
	case errors.Is(submitErr, games.ErrNotAPlayer):
		c.Fail("You are not playing in this game.")
	case errors.Is(submitErr, games.ErrWrongLetter):
		c.Fail(fmt.Sprintf("Words must start with *%s*.", peek.Letter))
	case errors.Is(submitErr, games.ErrTooShort):
		c.Fail(fmt.Sprintf("Words must be at least %d letters.", peek.MinLength()))
	case errors.Is(submitErr, games.ErrWordUsed):
		c.React("⚠️")
		c.Reply("That word has already been used!")
	case outcome == games.SubmitRoundOver:
		return w.settleRound(c)
	default:
		name := w.directory.DisplayName(c.Ctx(), c.Event.GroupID, c.Event.Sender)
		c.Done(fmt.Sprintf("@%s scored %d points with %q!", name, points, word))
	}
	return Handled
}

// settleRound closes an expired round: either opens the next one or ends
// the game and crowns the leader.
func (w *WordGameCommands) settleRound(c *Context) Outcome {
	chat := c.Event.ChatKey()
	letter := randomLetter()

	var (
		standings string
		winner    string
		gameOver  bool
		snapshot  games.WordGame
	)
	err := w.repo.Update(func(doc *store.Document) error {
		game, ok := doc.Games.WordGame[chat]
		if !ok || !game.Active {
			return nil
		}
		standings = game.Standings()
		if done := game.NextRound(letter, w.now(), w.roundDuration(game.Difficulty)); done {
			winner = game.Leader()
			gameOver = true
			delete(doc.Games.WordGame, chat)
			return nil
		}
		snapshot = *game
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("chat", chat).Msg("failed to settle word game round")
		c.Fail("Error settling the round. Please try again.")
		return Failed
	}

	if gameOver {
		name := w.directory.DisplayName(c.Ctx(), c.Event.GroupID, winner)
		c.React("🎉")
		c.Reply(fmt.Sprintf("Time's up! Final standings:\n%s\n@%s wins the word game!", standings, name))
		log.Info().Str("chat", chat).Str("winner", winner).Msg("word game finished")
		return Handled
	}

	c.React("⏰")
	c.Reply(fmt.Sprintf(
		"Time's up! Standings so far:\n%s\nRound %d/%d: words starting with *%s* (min %d letters). Go!",
		standings, snapshot.Round, snapshot.Rounds, snapshot.Letter, snapshot.MinLength(),
	))
	log.Info().Str("chat", chat).Int("round", snapshot.Round).Msg("word game round settled")
	return Handled
}

func (w *WordGameCommands) forfeit(c *Context) Outcome {
	chat := c.Event.ChatKey()

	var dissolved bool
	found := false
	err := w.repo.Update(func(doc *store.Document) error {
		game, ok := doc.Games.WordGame[chat]
		if !ok || !game.Active || !game.IsPlayer(c.Event.Sender) {
			return nil
		}
		found = true
		dissolved = game.Forfeit(c.Event.Sender)
		if dissolved {
			delete(doc.Games.WordGame, chat)
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("chat", chat).Msg("failed to persist word game forfeit")
		c.Fail("Error leaving the word game. Please try again.")
		return Failed
	}
	if !found {
		c.Fail("No active game or you are not a player.")
		return Handled
	}

	name := w.directory.DisplayName(c.Ctx(), c.Event.GroupID, c.Event.Sender)
	if dissolved {
		c.Fail(fmt.Sprintf("@%s left. The word game is over.", name))
		log.Info().Str("chat", chat).Msg("word game dissolved")
	} else {
		c.Fail(fmt.Sprintf("@%s left the word game.", name))
	}
	return Handled
}
