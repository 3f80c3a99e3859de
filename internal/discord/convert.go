package discord

import (
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/zoomer-grok/internal/mind"
)

// toInbound converts a discordgo message into the mind's view of it.
func toInbound(m *discordgo.Message) mind.InboundMessage {
	in := mind.InboundMessage{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		GuildID:   m.GuildID,
		Text:      m.Content,
		Timestamp: m.Timestamp,
		ImageURL:  imageURL(m),
	}
	if in.Timestamp.IsZero() {
		in.Timestamp = time.Now()
	}
	if m.Author != nil {
		in.AuthorID = m.Author.ID
		in.AuthorIsBot = m.Author.Bot
		in.AuthorName = displayName(m.Member, m.Author)
	}
	if ref := m.ReferencedMessage; ref != nil && ref.Author != nil {
		in.ReplyToAuthorID = ref.Author.ID
	}
	for _, u := range m.Mentions {
		if u != nil {
			in.MentionIDs = append(in.MentionIDs, u.ID)
		}
	}
	return in
}

// displayName prefers the guild nickname, then the global name, then the username.
func displayName(member *discordgo.Member, u *discordgo.User) string {
	if member != nil && member.Nick != "" {
		return member.Nick
	}
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}

// imageURL returns the first image attachment or image embed.
func imageURL(m *discordgo.Message) string {
	for _, a := range m.Attachments {
		if a == nil {
			continue
		}
		if strings.HasPrefix(a.ContentType, "image/") || hasImageExt(a.Filename) {
			return a.URL
		}
	}
	for _, e := range m.Embeds {
		if e == nil {
			continue
		}
		if e.Image != nil && e.Image.URL != "" {
			return e.Image.URL
		}
		if e.Type == discordgo.EmbedTypeImage && e.Thumbnail != nil {
			return e.Thumbnail.URL
		}
	}
	return ""
}

func hasImageExt(name string) bool {
	name = strings.ToLower(name)
	for _, ext := range []string{".png", ".jpg", ".jpeg", ".gif", ".webp"} {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// reverse turns Discord's newest-first history into chronological order.
func reverse(msgs []mind.InboundMessage) {
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
}
