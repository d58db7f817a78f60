package bot

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"caprisun/pkg/store"
)

// SystemCommands answers the info and bot-maintenance commands.
type SystemCommands struct {
	repo      *store.Repository
	directory *Directory
	owners    []string
	startedAt time.Time
}

func NewSystemCommands(repo *store.Repository, directory *Directory, owners []string) *SystemCommands {
	return &SystemCommands{
		repo:      repo,
		directory: directory,
		owners:    owners,
		startedAt: time.Now(),
	}
}

func (s *SystemCommands) Name() string { return "system" }

func (s *SystemCommands) Handle(c *Context) Outcome {
	switch c.Command {
	case "alive":
		c.Done("caprisun is alive!")
		return Handled

	case "ping":
		start := time.Now()
		c.React("✅")
		c.Reply(fmt.Sprintf("Pong %dms", time.Since(start).Milliseconds()))
		return Handled

	case "uptime":
		c.Done("Uptime: " + formatUptime(time.Since(s.startedAt)))
		return Handled

	case "status":
		var mem runtime.MemStats
		runtime.ReadMemStats(&mem)
		c.Done(fmt.Sprintf(
			"Bot Status:\nGoroutines: %d\nMemory: %.2f MB\nUptime: %s",
			runtime.NumGoroutine(),
			float64(mem.HeapAlloc)/1024/1024,
			formatUptime(time.Since(s.startedAt)),
		))
		return Handled

	case "owner":
		names := make([]string, 0, len(s.owners))
		for _, id := range s.owners {
			names = append(names, "@"+s.directory.DisplayName(c.Ctx(), c.Event.GroupID, id))
		}
		c.Done("Bot owners:\n" + strings.Join(names, "\n"))
		return Handled

	case "setprefix":
		if len(c.Args) == 0 {
			c.Fail("Please provide a new prefix.")
			return Handled
		}
		prefix := c.Args[0]
		err := s.repo.Update(func(doc *store.Document) error {
			doc.Prefix = prefix
			return nil
		})
		if err != nil {
			log.Error().Err(err).Msg("failed to persist prefix")
			c.Fail("Error updating prefix. Please try again.")
			return Failed
		}
		c.Done("Prefix updated to " + prefix)
		return Handled

	case "help":
		c.Done(s.helpText(c))
		return Handled
	}

	return NotMatched
}

func (s *SystemCommands) helpText(c *Context) string {
	p := c.Prefix
	lines := []string{
		"*System Commands*",
		p + "alive - Check if bot is active",
		p + "ping - Check response time",
		p + "uptime - Show bot uptime",
		p + "status - Show system info (Owner only)",
		p + "owner - Show owner contact",
		p + "help - Show this menu",
	}
	if c.Role == RoleAdmin || c.Role == RoleOwner {
		lines = append(lines,
			"*Admin Commands*",
			p+"admin - List group admins",
			p+"groupinfo - Show group details",
			p+"grouplink - Get group invite link",
			p+"kick @user - Kick a user",
			p+"promote @user - Promote a user to admin",
			p+"demote @user - Demote a user from admin",
			p+"add <id> - Add a user",
			p+"close - Restrict group to admins",
			p+"open - Open group to all members",
			p+"welcome on/off - Toggle welcome message",
			p+"setwelcome <text> - Set welcome message",
			p+"warn @user - Warn a user",
			p+"warnings @user - Show user warnings",
			p+"clearwarn @user - Clear user warnings",
			p+"delete - Delete replied message",
			p+"antilink on/off - Toggle anti-link",
			p+"tag <message> - Tag all members",
		)
	}
	if c.Role == RoleOwner {
		lines = append(lines,
			"*Owner Commands*",
			p+"ban @user - Ban a user from the bot",
			p+"unban @user - Unban a user",
			p+"accept <groupId> - Approve a group",
			p+"reject <groupId> - Reject a group",
			p+"setprefix <prefix> - Change bot prefix",
		)
	}
	lines = append(lines,
		"*Media Commands*",
		p+"sticker - Convert image to sticker",
		p+"toimg - Convert sticker to image",
		"*Game Commands*",
		p+"hangman - Start hangman",
		p+"guess <letter> - Guess a letter",
		p+"hg forfeit - Forfeit hangman",
		p+"tictactoe @user - Start Tic Tac Toe",
		p+"m <1-9> - Make a Tic Tac Toe move",
		p+"ttt forfeit - Forfeit Tic Tac Toe",
		p+"wordgame - Open a word game lobby",
		p+"wjoin - Join the word game",
		p+"wg easy/medium/hard - Set difficulty",
		p+"wstart - Start the word game",
		p+"w <word> - Submit a word",
		p+"wg forfeit - Leave the word game",
	)
	return strings.Join(lines, "\n")
}

func formatUptime(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	sec := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh %dm %ds", h, m, sec)
}
