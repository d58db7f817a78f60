package bot

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"

	"caprisun/pkg/games"
	"caprisun/pkg/store"
)

// TicTacToeCommands runs the two-player board game, one instance per group.
type TicTacToeCommands struct {
	repo      *store.Repository
	directory *Directory
}

func NewTicTacToeCommands(repo *store.Repository, directory *Directory) *TicTacToeCommands {
	return &TicTacToeCommands{repo: repo, directory: directory}
}

func (t *TicTacToeCommands) Name() string { return "tictactoe" }

func (t *TicTacToeCommands) Handle(c *Context) Outcome {
	switch {
	case c.Command == "tictactoe" || c.Command == "ttt":
		if len(c.Args) > 0 && c.Args[0] == "forfeit" {
			return t.forfeit(c)
		}
		return t.start(c)
	case c.Command == "m":
		return t.move(c)
	}
	return NotMatched
}

func (t *TicTacToeCommands) start(c *Context) Outcome {
	if !c.Event.IsGroup() {
		c.Fail("Tic Tac Toe can only be played in groups.")
		return Handled
	}
	chat := c.Event.ChatKey()

	active := false
	t.repo.View(func(doc *store.Document) {
		g, ok := doc.Games.TicTacToe[chat]
		active = ok && g.Active
	})
	if active {
		c.Fail("A Tic Tac Toe game is already active!")
		return Handled
	}

	if len(c.Event.Mentions) == 0 {
		c.Fail("Please tag a user to play with.")
		return Handled
	}
	opponent := c.Event.Mentions[0]
	if opponent == c.Event.Sender {
		c.Fail("You cannot play against yourself.")
		return Handled
	}

	meta, err := t.directory.Group(c.Ctx(), c.Event.GroupID)
	if err != nil {
		log.Error().Err(err).Str("group", c.Event.GroupID).Msg("failed to verify opponent membership")
		c.Fail("An error occurred in the Tic Tac Toe game. Please try again.")
		return Failed
	}
	member := false
	for _, p := range meta.Participants {
		if p.ID == opponent {
			member = true
			break
		}
	}
	if !member {
		c.Fail("Tagged user is not a participant in this group.")
		return Handled
	}

	game := games.NewTicTacToe(c.Event.Sender, opponent)
	err = t.repo.Update(func(doc *store.Document) error {
		doc.Games.TicTacToe[chat] = game
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("chat", chat).Msg("failed to persist tictactoe game")
		c.Fail("An error occurred in the Tic Tac Toe game. Please try again.")
		return Failed
	}

	challenger := t.directory.DisplayName(c.Ctx(), c.Event.GroupID, c.Event.Sender)
	opposing := t.directory.DisplayName(c.Ctx(), c.Event.GroupID, opponent)
	c.React("🎮")
	c.Reply(fmt.Sprintf(
		"Tic Tac Toe: @%s (❌) vs @%s (⭕)\n%s\n@%s's turn (❌). Use %sm <1-9>",
		challenger, opposing, game.Render(), challenger, c.Prefix,
	))
	log.Info().Str("chat", chat).Str("x", c.Event.Sender).Str("o", opponent).Msg("tictactoe started")
	return Handled
}

func (t *TicTacToeCommands) move(c *Context) Outcome {
	chat := c.Event.ChatKey()

	cell := -1
	if len(c.Args) > 0 {
		if n, err := strconv.Atoi(c.Args[0]); err == nil {
			cell = n - 1
		}
	}

	var (
		outcome games.MoveOutcome
		moveErr error
		found   bool
		board   string
		winner  string
		next    string
		symbol  string
	)
	err := t.repo.Update(func(doc *store.Document) error {
		game, ok := doc.Games.TicTacToe[chat]
		if !ok || !game.Active || !game.IsPlayer(c.Event.Sender) {
			return nil
		}
		found = true
		outcome, moveErr = game.Move(c.Event.Sender, cell)
		board = game.Render()
		if moveErr == nil {
			switch outcome {
			case games.MoveWon:
				winner = game.PlayerFor(game.Winner())
				delete(doc.Games.TicTacToe, chat)
			case games.MoveDraw:
				delete(doc.Games.TicTacToe, chat)
			default:
				next = game.CurrentPlayer()
				symbol = game.CurrentSymbol()
			}
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("chat", chat).Msg("failed to persist tictactoe move")
		c.Fail("An error occurred in the Tic Tac Toe game. Please try again.")
		return Failed
	}

	if !found {
		c.Fail("No active game or you are not a player.")
		return Handled
	}
	switch {
	case errors.Is(moveErr, games.ErrNotYourTurn):
		c.Fail("Not your turn!")
		return Handled
	case errors.Is(moveErr, games.ErrBadCell), errors.Is(moveErr, games.ErrCellTaken):
		c.Fail(fmt.Sprintf("Invalid move. Use %sm <1-9> for an empty cell.", c.Prefix))
		return Handled
	case moveErr != nil:
		c.Fail("An error occurred in the Tic Tac Toe game. Please try again.")
		return Handled
	}

	switch outcome {
	case games.MoveWon:
		name := t.directory.DisplayName(c.Ctx(), c.Event.GroupID, winner)
		c.React("🎉")
		c.Reply(fmt.Sprintf("@%s wins!\n%s", name, board))
		log.Info().Str("chat", chat).Str("winner", winner).Msg("tictactoe won")
	case games.MoveDraw:
		c.Fail("Draw!\n" + board)
		log.Info().Str("chat", chat).Msg("tictactoe draw")
	default:
		name := t.directory.DisplayName(c.Ctx(), c.Event.GroupID, next)
		emoji := "❌"
		if symbol == "O" {
			emoji = "⭕"
		}
		c.React("✅")
		c.Reply(fmt.Sprintf("%s\n@%s's turn (%s). Use %sm <1-9>", board, name, emoji, c.Prefix))
	}
	return Handled
}

func (t *TicTacToeCommands) forfeit(c *Context) Outcome {
	chat := c.Event.ChatKey()

	var winner string
	found := false
	err := t.repo.Update(func(doc *store.Document) error {
		game, ok := doc.Games.TicTacToe[chat]
		if !ok || !game.Active || !game.IsPlayer(c.Event.Sender) {
			return nil
		}
		found = true
		winner = game.Opponent(c.Event.Sender)
		delete(doc.Games.TicTacToe, chat)
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("chat", chat).Msg("failed to persist tictactoe forfeit")
		c.Fail("An error occurred in the Tic Tac Toe game. Please try again.")
		return Failed
	}
	if !found {
		c.Fail("No active game or you are not a player.")
		return Handled
	}

	quitter := t.directory.DisplayName(c.Ctx(), c.Event.GroupID, c.Event.Sender)
	champ := t.directory.DisplayName(c.Ctx(), c.Event.GroupID, winner)
	c.Fail(fmt.Sprintf("@%s forfeited. @%s wins!", quitter, champ))
	log.Info().Str("chat", chat).Str("winner", winner).Msg("tictactoe forfeited")
	return Handled
}
