package mind

import (
	"context"
	"time"
)

// InboundMessage is one message observed in a channel. Immutable once received.
type InboundMessage struct {
	ID              string    `json:"id"`
	ChannelID       string    `json:"channel_id"`
	GuildID         string    `json:"guild_id,omitempty"`
	AuthorID        string    `json:"author_id"`
	AuthorName      string    `json:"author_name"`
	AuthorIsBot     bool      `json:"author_is_bot,omitempty"`
	Text            string    `json:"text"`
	Timestamp       time.Time `json:"timestamp"`
	ReplyToAuthorID string    `json:"reply_to_author_id,omitempty"` // author of the referenced message
	ImageURL        string    `json:"image_url,omitempty"`
	MentionIDs      []string  `json:"mention_ids,omitempty"`
}

// Mentions reports whether userID is among the message mentions.
func (m InboundMessage) Mentions(userID string) bool {
	if userID == "" {
		return false
	}
	for _, id := range m.MentionIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Agent identifies the bot account the mind speaks through.
type Agent struct {
	ID   string
	Name string
}

// Platform is everything the mind needs from the chat platform.
type Platform interface {
	Send(ctx context.Context, channelID, text string) error
	Reply(ctx context.Context, to InboundMessage, text string) error
	React(ctx context.Context, to InboundMessage, emoji string) error
	Typing(ctx context.Context, channelID string) error
	// ResolveRole looks up a role by name in the guild owning channelID.
	ResolveRole(ctx context.Context, channelID, name string) (roleID string, ok bool)
	// History returns up to limit messages before beforeID, oldest first.
	History(ctx context.Context, channelID, beforeID string, limit int) ([]InboundMessage, error)
}

// Emoji used as passive feedback.
const (
	EmojiCap    = "🧢"
	EmojiSkull  = "💀"
	EmojiCrown  = "👑"
	EmojiTrash  = "🗑️"
	EmojiUnplug = "🔌"
)
