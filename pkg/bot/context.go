package bot

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Context carries one parsed command through the handler chain.
type Context struct {
	ctx       context.Context
	transport Transport

	Event   Event
	Command string
	Args    []string
	Role    Role
	Prefix  string
}

func (c *Context) Ctx() context.Context {
	return c.ctx
}

// Reply sends text to the chat the command came from.
func (c *Context) Reply(text string) {
	if err := c.transport.SendMessage(c.ctx, c.Event.ChannelID, text); err != nil {
		log.Error().Err(err).Str("channel", c.Event.ChannelID).Msg("failed to send reply")
	}
}

// React attaches an emoji to the triggering message; failures are logged
// and swallowed, reactions are decoration.
func (c *Context) React(emoji string) {
	if err := c.transport.React(c.ctx, c.Event.ChannelID, c.Event.MessageID, emoji); err != nil {
		log.Debug().Err(err).Str("channel", c.Event.ChannelID).Msg("failed to send reaction")
	}
}

// Done acknowledges success with a reaction and a message.
func (c *Context) Done(text string) {
	c.React("✅")
	c.Reply(text)
}

// Fail reports a validation or execution failure to the user.
func (c *Context) Fail(text string) {
	c.React("❌")
	c.Reply(text)
}
