package bot

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// Outcome is a handler group's verdict on a command.
type Outcome int

const (
	// NotMatched lets the chain continue to the next group.
	NotMatched Outcome = iota
	// Handled means the group claimed and fully processed the command.
	Handled
	// Failed means the group claimed the command but hit an internal
	// error; the user has already been notified.
	Failed
)

// HandlerGroup is one link in the command chain. Implementations must catch
// their own errors and always return a definite outcome so the chain walk
// is never interrupted.
type HandlerGroup interface {
	Name() string
	Handle(c *Context) Outcome
}

// Router parses prefixed commands, enforces the static permission tiers and
// walks the handler chain until a group claims the command.
type Router struct {
	groups []HandlerGroup

	adminCommands map[string]bool
	ownerCommands map[string]bool
}

func NewRouter(groups ...HandlerGroup) *Router {
	return &Router{
		groups: groups,
		adminCommands: commandSet(
			"admin", "groupinfo", "grouplink", "kick", "promote", "demote",
			"add", "close", "open", "welcome", "setwelcome", "warn",
			"warnings", "clearwarn", "delete", "antilink", "tag",
		),
		ownerCommands: commandSet(
			"ban", "unban", "accept", "reject", "status", "setprefix",
		),
	}
}

func commandSet(names ...string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

// Dispatch runs one parsed command to completion. Permission denials are
// answered before any handler group sees the command; the owner tier is
// checked first.
func (r *Router) Dispatch(c *Context) {
	if r.ownerCommands[c.Command] && c.Role != RoleOwner {
		c.Fail("👑 This command is for the bot owner only.")
		log.Info().
			Str("command", c.Command).
			Str("user", c.Event.Sender).
			Str("chat", c.Event.ChatKey()).
			Msg("owner command denied")
		return
	}
	if r.adminCommands[c.Command] && c.Role != RoleAdmin && c.Role != RoleOwner {
		c.Fail("⛔ This command is for group admins only.")
		log.Info().
			Str("command", c.Command).
			Str("user", c.Event.Sender).
			Str("chat", c.Event.ChatKey()).
			Msg("admin command denied")
		return
	}

	for _, g := range r.groups {
		switch r.safeHandle(g, c) {
		case Handled, Failed:
			return
		}
	}

	c.Fail(fmt.Sprintf("Unknown command: %s. Type %shelp for available commands.", c.Command, c.Prefix))
}

// safeHandle shields the chain from a panicking handler group.
func (r *Router) safeHandle(g HandlerGroup, c *Context) (outcome Outcome) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().
				Interface("panic", rec).
				Str("group", g.Name()).
				Str("command", c.Command).
				Msg("handler group panicked")
			c.Fail("An error occurred. Please try again.")
			outcome = Failed
		}
	}()
	return g.Handle(c)
}
