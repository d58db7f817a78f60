package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"caprisun/pkg/games"
	"caprisun/pkg/store"
)

// WordSource supplies validated words for the hangman game.
type WordSource interface {
	Candidate(ctx context.Context) (string, error)
}

// HangmanCommands runs the single-player guessing game, one instance per
// group.
type HangmanCommands struct {
	repo     *store.Repository
	director *Directory
	words    WordSource
	attempts int
}

func NewHangmanCommands(repo *store.Repository, directory *Directory, words WordSource, attempts int) *HangmanCommands {
	return &HangmanCommands{
		repo:     repo,
		director: directory,
		words:    words,
		attempts: attempts,
	}
}

func (h *HangmanCommands) Name() string { return "hangman" }

func (h *HangmanCommands) Handle(c *Context) Outcome {
	switch {
	case c.Command == "hangman" || (c.Command == "hg" && len(c.Args) == 0):
		return h.start(c)
	case c.Command == "guess":
		return h.guess(c)
	case c.Command == "hg" && len(c.Args) > 0 && c.Args[0] == "forfeit":
		return h.forfeit(c)
	}
	return NotMatched
}

func (h *HangmanCommands) start(c *Context) Outcome {
	chat := c.Event.ChatKey()

	active := false
	h.repo.View(func(doc *store.Document) {
		g, ok := doc.Games.Hangman[chat]
		active = ok && g.Active
	})
	if active {
		c.Fail("A hangman game is already active!")
		return Handled
	}

	word, err := h.words.Candidate(c.Ctx())
	if err != nil {
		log.Error().Err(err).Str("chat", chat).Msg("failed to obtain hangman word")
		c.Fail("Failed to fetch a valid word. Try again.")
		return Handled
	}

	game := games.NewHangman(c.Event.Sender, word, h.attempts)
	err = h.repo.Update(func(doc *store.Document) error {
		doc.Games.Hangman[chat] = game
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("chat", chat).Msg("failed to persist hangman game")
		c.Fail("Error starting hangman game. Please try again.")
		return Failed
	}

	name := h.director.DisplayName(c.Ctx(), c.Event.GroupID, c.Event.Sender)
	c.React("🎮")
	c.Reply(fmt.Sprintf("Hangman started by @%s!\nWord: %s\nAttempts left: %d", name, game.Masked(), game.Attempts))
	log.Info().Str("chat", chat).Str("player", c.Event.Sender).Msg("hangman started")
	return Handled
}

func (h *HangmanCommands) guess(c *Context) Outcome {
	chat := c.Event.ChatKey()
	if len(c.Args) == 0 {
		c.Fail("Please guess a single letter.")
		return Handled
	}

	var (
		outcome  games.GuessOutcome
		guessErr error
		word     string
		masked   string
		attempts int
		found    bool
	)
	err := h.repo.Update(func(doc *store.Document) error {
		game, ok := doc.Games.Hangman[chat]
		if !ok || !game.Active || game.Player != c.Event.Sender {
			return nil
		}
		found = true
		outcome, guessErr = game.Guess(c.Args[0])
		word = game.Word
		masked = game.Masked()
		attempts = game.Attempts
		if guessErr == nil && (outcome == games.GuessWon || outcome == games.GuessLost) {
			delete(doc.Games.Hangman, chat)
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("chat", chat).Msg("failed to persist hangman guess")
		c.Fail("An error occurred in the hangman game. Please try again.")
		return Failed
	}

	if !found {
		c.Fail("No active game or you are not the player.")
		return Handled
	}
	if errors.Is(guessErr, games.ErrNotALetter) {
		c.Fail("Please guess a single letter.")
		return Handled
	}

	switch outcome {
	case games.GuessAlreadyTried:
		c.React("⚠️")
		c.Reply("Letter already guessed!")
	case games.GuessLost:
		c.Fail(fmt.Sprintf("Game over! The word was %s.", word))
		log.Info().Str("chat", chat).Str("word", word).Msg("hangman lost")
	case games.GuessWon:
		name := h.director.DisplayName(c.Ctx(), c.Event.GroupID, c.Event.Sender)
		c.React("🎉")
		c.Reply(fmt.Sprintf("Congratulations @%s! You guessed %s!", name, word))
		log.Info().Str("chat", chat).Str("word", word).Msg("hangman won")
	case games.GuessHit:
		c.React("✅")
		c.Reply(fmt.Sprintf("Word: %s\nAttempts left: %d", masked, attempts))
	case games.GuessMiss:
		c.React("❌")
		c.Reply(fmt.Sprintf("Word: %s\nAttempts left: %d", masked, attempts))
	}
	return Handled
}

func (h *HangmanCommands) forfeit(c *Context) Outcome {
	chat := c.Event.ChatKey()

	var word string
	found := false
	err := h.repo.Update(func(doc *store.Document) error {
		game, ok := doc.Games.Hangman[chat]
		if !ok || !game.Active || game.Player != c.Event.Sender {
			return nil
		}
		found = true
		word = game.Word
		delete(doc.Games.Hangman, chat)
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("chat", chat).Msg("failed to persist hangman forfeit")
		c.Fail("An error occurred in the hangman game. Please try again.")
		return Failed
	}
	if !found {
		c.Fail("No active game or you are not the player.")
		return Handled
	}

	name := h.director.DisplayName(c.Ctx(), c.Event.GroupID, c.Event.Sender)
	c.Fail(fmt.Sprintf("Game forfeited by @%s. The word was %s.", name, word))
	log.Info().Str("chat", chat).Str("player", c.Event.Sender).Str("word", word).Msg("hangman forfeited")
	return Handled
}
