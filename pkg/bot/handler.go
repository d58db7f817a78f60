package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"caprisun/pkg/config"
	"caprisun/pkg/store"
)

// Bot wires the event stream into the command router. One inbound event is
// processed to completion per chat at a time; the chat locker guarantees
// the load-route-mutate-persist cycle never interleaves within a group.
type Bot struct {
	cfg       *config.Config
	repo      *store.Repository
	transport Transport
	directory *Directory
	resolver  *RoleResolver
	moderator *Moderator
	router    *Router
	locker    *store.ChatLocker
	botID     string
}

func New(cfg *config.Config, repo *store.Repository, transport Transport, directory *Directory, resolver *RoleResolver, moderator *Moderator, router *Router) *Bot {
	return &Bot{
		cfg:       cfg,
		repo:      repo,
		transport: transport,
		directory: directory,
		resolver:  resolver,
		moderator: moderator,
		router:    router,
		locker:    store.NewChatLocker(),
	}
}

func (b *Bot) SetBotID(id string) {
	b.botID = id
}

// MessageCreate is the discordgo entry point for inbound messages.
func (b *Bot) MessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.ID == b.botID || m.Author.Bot {
		return
	}
	b.HandleEvent(eventFromMessage(m, b.botID))
}

// HandleEvent runs one event through approval, role resolution and the
// command chain. It never lets a failure escape: a broken event must not
// take the session down.
func (b *Bot) HandleEvent(ev Event) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Str("chat", ev.ChatKey()).Msg("event handling panicked")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	unlock := b.locker.Lock(ev.ChatKey())
	defer unlock()

	var (
		prefix   string
		approved bool
		banned   bool
		antilink bool
	)
	b.repo.View(func(doc *store.Document) {
		prefix = doc.Prefix
		if prefix == "" {
			prefix = b.cfg.Bot.Prefix
		}
		approved = IsGroupApproved(doc, b.cfg.Bot.ControlGroupID, ev.GroupID)
		banned = doc.Bans[ev.Sender]
		if g, ok := doc.Groups[ev.GroupID]; ok {
			antilink = g.Antilink == "on"
		}
	})

	if ev.IsGroup() && !approved {
		// Unvetted groups stay silent except for the liveness command.
		if strings.HasPrefix(ev.Text, prefix+"alive") {
			b.handleUnapprovedGroup(ctx, ev, prefix)
			return
		}
		log.Debug().Str("group", ev.GroupID).Msg("ignoring message in unapproved group")
		return
	}

	role := b.resolver.Resolve(ctx, ev.Sender, ev.GroupID, banned)
	if role == RoleBanned && !ev.FromMe {
		log.Info().Str("user", ev.Sender).Str("chat", ev.ChatKey()).Msg("ignored message from banned user")
		return
	}

	if !strings.HasPrefix(ev.Text, prefix) {
		if ev.IsGroup() && antilink && ContainsLink(ev.Text) {
			b.moderator.HandleAntilink(ctx, ev)
		}
		return
	}

	fields := strings.Fields(strings.TrimPrefix(ev.Text, prefix))
	if len(fields) == 0 {
		return
	}

	c := &Context{
		ctx:       ctx,
		transport: b.transport,
		Event:     ev,
		Command:   strings.ToLower(fields[0]),
		Args:      fields[1:],
		Role:      role,
		Prefix:    prefix,
	}
	log.Debug().Str("command", c.Command).Str("user", ev.Sender).Str("role", string(role)).Msg("dispatching command")
	b.router.Dispatch(c)
}

// handleUnapprovedGroup answers the liveness probe in an unapproved group
// by asking the control group for a verdict.
func (b *Bot) handleUnapprovedGroup(ctx context.Context, ev Event, prefix string) {
	subject := ev.GroupID
	if meta, err := b.directory.Group(ctx, ev.GroupID); err == nil {
		subject = meta.Subject
	} else {
		log.Error().Err(err).Str("group", ev.GroupID).Msg("failed to fetch metadata for approval request")
	}

	if err := b.transport.SendMessage(ctx, ev.ChannelID, "This group is not approved. Request sent to the control group."); err != nil {
		log.Error().Err(err).Str("channel", ev.ChannelID).Msg("failed to answer unapproved group")
	}

	if b.cfg.Bot.ControlGroupID == "" {
		log.Error().Str("group", ev.GroupID).Msg("no control group configured for approval requests")
		return
	}
	notice := fmt.Sprintf(
		"New group request:\nName: %s\nID: %s\nUse %saccept %s or %sreject %s",
		subject, ev.GroupID, prefix, ev.GroupID, prefix, ev.GroupID,
	)
	if err := b.transport.SendMessage(ctx, b.cfg.Bot.ControlGroupID, notice); err != nil {
		log.Error().Err(err).Str("group", b.cfg.Bot.ControlGroupID).Msg("failed to notify control group")
	}
	log.Info().Str("group", ev.GroupID).Msg("approval requested for unapproved group")
}

// GuildMemberAdd greets newcomers in groups that switched welcomes on.
func (b *Bot) GuildMemberAdd(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var (
		enabled bool
		message string
	)
	b.repo.View(func(doc *store.Document) {
		g, ok := doc.Groups[m.GuildID]
		if !ok {
			return
		}
		enabled = g.Welcome == "on"
		message = g.WelcomeMessage
	})
	if !enabled {
		return
	}
	if message == "" {
		message = "Welcome to the group!"
	}

	meta, err := b.directory.Group(ctx, m.GuildID)
	if err != nil || meta.HomeChannel == "" {
		log.Error().Err(err).Str("group", m.GuildID).Msg("no channel to deliver welcome message")
		return
	}
	if err := b.transport.SendMessage(ctx, meta.HomeChannel, fmt.Sprintf("%s <@%s>", message, m.User.ID)); err != nil {
		log.Error().Err(err).Str("group", m.GuildID).Msg("failed to send welcome message")
	}
}
