package bot

import "github.com/bwmarrin/discordgo"

// Event is the transport-neutral view of one inbound message.
type Event struct {
	ChannelID string
	GroupID   string
	MessageID string
	Sender    string
	Text      string
	Mentions  []string
	// RepliedTo is the author of the message this one replies to, if any.
	RepliedTo    string
	RepliedMsgID string
	Attachments  []Attachment
	FromMe       bool
}

type Attachment struct {
	URL      string
	Filename string
}

func (e *Event) IsGroup() bool {
	return e.GroupID != ""
}

// ChatKey identifies the serialization scope for an event: the group for
// group traffic, the channel for direct messages.
func (e *Event) ChatKey() string {
	if e.GroupID != "" {
		return e.GroupID
	}
	return e.ChannelID
}

// TargetUser picks the user a moderation command acts on: an explicit
// mention first, then the author of the replied-to message.
func (e *Event) TargetUser() (string, bool) {
	if len(e.Mentions) > 0 {
		return e.Mentions[0], true
	}
	if e.RepliedTo != "" {
		return e.RepliedTo, true
	}
	return "", false
}

func eventFromMessage(m *discordgo.MessageCreate, botID string) Event {
	ev := Event{
		ChannelID: m.ChannelID,
		GroupID:   m.GuildID,
		MessageID: m.ID,
		Sender:    m.Author.ID,
		Text:      m.Content,
		FromMe:    m.Author.ID == botID,
	}
	for _, u := range m.Mentions {
		if u.ID == botID {
			continue
		}
		ev.Mentions = append(ev.Mentions, u.ID)
	}
	if m.ReferencedMessage != nil {
		ev.RepliedMsgID = m.ReferencedMessage.ID
		if m.ReferencedMessage.Author != nil {
			ev.RepliedTo = m.ReferencedMessage.Author.ID
		}
	}
	for _, a := range m.Attachments {
		ev.Attachments = append(ev.Attachments, Attachment{URL: a.URL, Filename: a.Filename})
	}
	if m.ReferencedMessage != nil {
		for _, a := range m.ReferencedMessage.Attachments {
			ev.Attachments = append(ev.Attachments, Attachment{URL: a.URL, Filename: a.Filename})
		}
	}
	return ev
}
