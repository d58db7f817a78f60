package bot

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"caprisun/pkg/store"
)

// AdminCommands is the moderation and group-management handler group.
type AdminCommands struct {
	repo      *store.Repository
	transport Transport
	directory *Directory
	moderator *Moderator
}

func NewAdminCommands(repo *store.Repository, transport Transport, directory *Directory, moderator *Moderator) *AdminCommands {
	return &AdminCommands{
		repo:      repo,
		transport: transport,
		directory: directory,
		moderator: moderator,
	}
}

func (a *AdminCommands) Name() string { return "admin" }

var adminGroupOnly = commandSet(
	"admin", "groupinfo", "grouplink", "kick", "promote", "demote", "add",
	"close", "open", "welcome", "setwelcome", "warn", "warnings",
	"clearwarn", "delete", "antilink", "tag",
)

func (a *AdminCommands) Handle(c *Context) Outcome {
	if adminGroupOnly[c.Command] && !c.Event.IsGroup() {
		c.Fail("Admin commands can only be used in groups.")
		return Handled
	}

	switch c.Command {
	case "admin":
		return a.listAdmins(c)
	case "groupinfo":
		return a.groupInfo(c)
	case "grouplink":
		return a.groupLink(c)
	case "kick":
		return a.participantAction(c, ActionRemove, "kicked")
	case "promote":
		return a.participantAction(c, ActionPromote, "promoted to admin")
	case "demote":
		return a.participantAction(c, ActionDemote, "demoted from admin")
	case "add":
		return a.add(c)
	case "close":
		return a.setGroupMode(c, GroupAnnouncement, "Group is now restricted to admins.")
	case "open":
		return a.setGroupMode(c, GroupNotAnnouncement, "Group is now open to all members.")
	case "welcome":
		return a.toggleSetting(c, "welcome")
	case "setwelcome":
		return a.setWelcome(c)
	case "warn":
		return a.warn(c)
	case "warnings":
		return a.warnings(c)
	case "clearwarn":
		return a.clearWarn(c)
	case "delete":
		return a.deleteReplied(c)
	case "antilink":
		return a.toggleSetting(c, "antilink")
	case "tag":
		return a.tag(c)
	case "ban":
		return a.ban(c)
	case "unban":
		return a.unban(c)
	case "accept":
		return a.approval(c, true)
	case "reject":
		return a.approval(c, false)
	}
	return NotMatched
}

func (a *AdminCommands) listAdmins(c *Context) Outcome {
	meta, err := a.directory.Group(c.Ctx(), c.Event.GroupID)
	if err != nil {
		log.Error().Err(err).Str("group", c.Event.GroupID).Msg("failed to list admins")
		c.Fail("Error listing admins. Please try again.")
		return Failed
	}
	var names []string
	for _, p := range meta.Participants {
		if p.Admin {
			names = append(names, "@"+a.directory.DisplayName(c.Ctx(), c.Event.GroupID, p.ID))
		}
	}
	c.Done("Admins:\n" + strings.Join(names, "\n"))
	return Handled
}

func (a *AdminCommands) groupInfo(c *Context) Outcome {
	meta, err := a.directory.Group(c.Ctx(), c.Event.GroupID)
	if err != nil {
		log.Error().Err(err).Str("group", c.Event.GroupID).Msg("failed to fetch group info")
		c.Fail("Error retrieving group info. Please try again.")
		return Failed
	}
	c.Done(fmt.Sprintf(
		"Group: %s\nID: %s\nMembers: %d\nCreated: %s",
		meta.Subject, c.Event.GroupID, len(meta.Participants),
		meta.Created.Format(time.RFC1123),
	))
	return Handled
}

func (a *AdminCommands) groupLink(c *Context) Outcome {
	link, err := a.transport.InviteLink(c.Ctx(), c.Event.GroupID)
	if err != nil {
		log.Error().Err(err).Str("group", c.Event.GroupID).Msg("failed to create invite link")
		c.Fail("Error generating group link. Please try again.")
		return Failed
	}
	c.Done("Group Link:\n" + link)
	return Handled
}

func (a *AdminCommands) participantAction(c *Context, action ParticipantAction, past string) Outcome {
	target, ok := c.Event.TargetUser()
	if !ok {
		c.Fail(fmt.Sprintf("Please tag a user or reply to their message to %s.", c.Command))
		return Handled
	}
	if err := a.transport.UpdateParticipants(c.Ctx(), c.Event.GroupID, []string{target}, action); err != nil {
		log.Error().Err(err).Str("user", target).Str("group", c.Event.GroupID).Str("action", string(action)).Msg("participant update failed")
		c.Fail(fmt.Sprintf("Error running %s. Please try again.", c.Command))
		return Failed
	}
	a.directory.Invalidate(c.Ctx(), c.Event.GroupID)
	name := a.directory.DisplayName(c.Ctx(), c.Event.GroupID, target)
	c.Done(fmt.Sprintf("@%s has been %s.", name, past))
	log.Info().Str("user", target).Str("group", c.Event.GroupID).Str("action", string(action)).Str("actor", c.Event.Sender).Msg("participant updated")
	return Handled
}

func (a *AdminCommands) add(c *Context) Outcome {
	if len(c.Args) == 0 {
		c.Fail("Please provide a user id to add.")
		return Handled
	}
	target := NormalizeUserID(c.Args[0])
	err := a.transport.UpdateParticipants(c.Ctx(), c.Event.GroupID, []string{target}, ActionAdd)
	if errors.Is(err, ErrUnsupported) {
		link, linkErr := a.transport.InviteLink(c.Ctx(), c.Event.GroupID)
		if linkErr != nil {
			c.Fail("This platform cannot add users directly and no invite link is available.")
			return Handled
		}
		c.Done("This platform cannot add users directly. Share the invite link instead:\n" + link)
		return Handled
	}
	if err != nil {
		log.Error().Err(err).Str("user", target).Msg("failed to add user")
		c.Fail("Error adding user. Please try again.")
		return Failed
	}
	a.directory.Invalidate(c.Ctx(), c.Event.GroupID)
	c.Done(fmt.Sprintf("@%s has been added.", target))
	return Handled
}

func (a *AdminCommands) setGroupMode(c *Context, mode GroupMode, notice string) Outcome {
	if err := a.transport.SetGroupSetting(c.Ctx(), c.Event.GroupID, mode); err != nil {
		log.Error().Err(err).Str("group", c.Event.GroupID).Msg("failed to change group setting")
		c.Fail("Error updating group settings. Please try again.")
		return Failed
	}
	c.Done(notice)
	return Handled
}

func (a *AdminCommands) toggleSetting(c *Context, setting string) Outcome {
	if len(c.Args) == 0 || (c.Args[0] != "on" && c.Args[0] != "off") {
		c.Fail(fmt.Sprintf("Usage: %s on/off", c.Command))
		return Handled
	}
	value := c.Args[0]
	err := a.repo.Update(func(doc *store.Document) error {
		g := doc.Group(c.Event.GroupID)
		if setting == "welcome" {
			g.Welcome = value
		} else {
			g.Antilink = value
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("setting", setting).Msg("failed to persist group setting")
		c.Fail("Error saving the setting. Please try again.")
		return Failed
	}
	c.Done(fmt.Sprintf("%s turned %s.", capitalize(setting), value))
	return Handled
}

func (a *AdminCommands) setWelcome(c *Context) Outcome {
	if len(c.Args) == 0 {
		c.Fail("Please provide a welcome message.")
		return Handled
	}
	message := strings.Join(c.Args, " ")
	err := a.repo.Update(func(doc *store.Document) error {
		doc.Group(c.Event.GroupID).WelcomeMessage = message
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to persist welcome message")
		c.Fail("Error saving the welcome message. Please try again.")
		return Failed
	}
	c.Done("Welcome message set to: " + message)
	return Handled
}

func (a *AdminCommands) warn(c *Context) Outcome {
	target, ok := c.Event.TargetUser()
	if !ok {
		c.Fail("Please tag a user or reply to their message to warn.")
		return Handled
	}
	count, err := a.moderator.Warn(c.Ctx(), c.Event.ChannelID, c.Event.GroupID, target)
	if err != nil {
		log.Error().Err(err).Str("user", target).Msg("warn failed")
		c.Fail("Error warning user. Please try again.")
		return Failed
	}
	name := a.directory.DisplayName(c.Ctx(), c.Event.GroupID, target)
	c.Done(fmt.Sprintf("@%s has been warned. Total warnings: %d/%d.", name, count, a.moderator.Threshold()))
	log.Info().Str("user", target).Str("actor", c.Event.Sender).Int("count", count).Msg("user warned")
	return Handled
}

func (a *AdminCommands) warnings(c *Context) Outcome {
	target, ok := c.Event.TargetUser()
	if !ok {
		c.Fail("Please tag a user or reply to their message to check warnings.")
		return Handled
	}
	var count int
	a.repo.View(func(doc *store.Document) {
		count = doc.Warnings[target]
	})
	name := a.directory.DisplayName(c.Ctx(), c.Event.GroupID, target)
	c.Done(fmt.Sprintf("@%s has %d warnings.", name, count))
	return Handled
}

func (a *AdminCommands) clearWarn(c *Context) Outcome {
	target, ok := c.Event.TargetUser()
	if !ok {
		c.Fail("Please tag a user or reply to their message to clear warnings.")
		return Handled
	}
	err := a.repo.Update(func(doc *store.Document) error {
		delete(doc.Warnings, target)
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("user", target).Msg("failed to clear warnings")
		c.Fail("Error clearing warnings. Please try again.")
		return Failed
	}
	name := a.directory.DisplayName(c.Ctx(), c.Event.GroupID, target)
	c.Done(fmt.Sprintf("@%s warnings cleared.", name))
	return Handled
}

func (a *AdminCommands) deleteReplied(c *Context) Outcome {
	if c.Event.RepliedMsgID == "" {
		c.Fail("Please reply to a message to delete.")
		return Handled
	}
	if err := a.transport.DeleteMessage(c.Ctx(), c.Event.ChannelID, c.Event.RepliedMsgID); err != nil {
		log.Error().Err(err).Str("channel", c.Event.ChannelID).Msg("failed to delete message")
		c.Fail("Error deleting message. Please try again.")
		return Failed
	}
	c.React("✅")
	return Handled
}

func (a *AdminCommands) tag(c *Context) Outcome {
	if len(c.Args) == 0 {
		c.Fail("Please provide a message to tag all members.")
		return Handled
	}
	meta, err := a.directory.Group(c.Ctx(), c.Event.GroupID)
	if err != nil {
		log.Error().Err(err).Str("group", c.Event.GroupID).Msg("failed to fetch members for tag")
		c.Fail("Error tagging members. Please try again.")
		return Failed
	}
	mentions := make([]string, 0, len(meta.Participants))
	for _, p := range meta.Participants {
		mentions = append(mentions, "<@"+p.ID+">")
	}
	c.Done(strings.Join(c.Args, " ") + "\n" + strings.Join(mentions, " "))
	return Handled
}

func (a *AdminCommands) ban(c *Context) Outcome {
	target, ok := c.Event.TargetUser()
	if !ok {
		c.Fail("Please tag a user or reply to their message to ban.")
		return Handled
	}
	err := a.repo.Update(func(doc *store.Document) error {
		doc.Bans[target] = true
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("user", target).Msg("failed to persist ban")
		c.Fail("Error banning user. Please try again.")
		return Failed
	}
	name := a.directory.DisplayName(c.Ctx(), c.Event.GroupID, target)
	c.Done(fmt.Sprintf("@%s has been banned from using the bot.", name))
	log.Info().Str("user", target).Str("actor", c.Event.Sender).Msg("user banned")
	return Handled
}

func (a *AdminCommands) unban(c *Context) Outcome {
	target, ok := c.Event.TargetUser()
	if !ok && len(c.Args) > 0 {
		target, ok = NormalizeUserID(c.Args[0]), true
	}
	if !ok {
		c.Fail("Please tag a user or provide an id to unban.")
		return Handled
	}
	banned := false
	a.repo.View(func(doc *store.Document) {
		banned = doc.Bans[target]
	})
	name := a.directory.DisplayName(c.Ctx(), c.Event.GroupID, target)
	if !banned {
		// Not an error: report and move on.
		c.Fail(fmt.Sprintf("@%s is not banned.", name))
		return Handled
	}
	err := a.repo.Update(func(doc *store.Document) error {
		delete(doc.Bans, target)
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("user", target).Msg("failed to persist unban")
		c.Fail("Error unbanning user. Please try again.")
		return Failed
	}
	c.Done(fmt.Sprintf("@%s has been unbanned.", name))
	log.Info().Str("user", target).Str("actor", c.Event.Sender).Msg("user unbanned")
	return Handled
}

func (a *AdminCommands) approval(c *Context, approve bool) Outcome {
	if len(c.Args) == 0 {
		c.Fail(fmt.Sprintf("Please provide a group ID to %s.", c.Command))
		return Handled
	}
	groupID := c.Args[0]
	err := a.repo.Update(func(doc *store.Document) error {
		g := doc.Group(groupID)
		if approve {
			g.Approved = true
			g.Blocked = false
		} else {
			g.Blocked = true
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("group", groupID).Msg("failed to persist group approval")
		c.Fail("Error updating group approval. Please try again.")
		return Failed
	}
	if approve {
		c.Done(fmt.Sprintf("Group %s has been approved.", groupID))
	} else {
		c.Done(fmt.Sprintf("Group %s has been rejected.", groupID))
	}
	log.Info().Str("group", groupID).Bool("approved", approve).Str("actor", c.Event.Sender).Msg("group approval updated")
	return Handled
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
