package mind

import (
	"strings"
	"unicode"
)

// Signals are derived per message and never persisted.
type Signals struct {
	DirectlyAddressed      bool   // mention or reply to the agent
	ReplyChainContinuation bool   // previous message in the channel was the agent's
	KeywordHit             bool
	Keyword                string // which keyword hit, when KeywordHit
	HasImage               bool
}

// SignalExtractor turns an inbound message into Signals.
type SignalExtractor struct {
	AgentID  string
	keywords map[string]struct{}
}

// DefaultKeywords are the words that may draw the agent into a conversation uninvited.
var DefaultKeywords = []string{"bruh", "cringe", "wild", "real", "fr", "bet", "mod", "admin", "chat"}

// NewSignalExtractor creates an extractor for agentID. Keywords match whole words, case-insensitive.
func NewSignalExtractor(agentID string, keywords []string) *SignalExtractor {
	set := make(map[string]struct{}, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			set[k] = struct{}{}
		}
	}
	return &SignalExtractor{AgentID: agentID, keywords: set}
}

// Extract computes the signals of msg. previousAuthorID is the author of the message
// that came right before msg in the same channel ("" if unknown).
func (e *SignalExtractor) Extract(msg InboundMessage, previousAuthorID string) Signals {
	s := Signals{
		HasImage: msg.ImageURL != "",
	}
	if e.AgentID != "" {
		s.DirectlyAddressed = msg.Mentions(e.AgentID) || msg.ReplyToAuthorID == e.AgentID
		s.ReplyChainContinuation = previousAuthorID == e.AgentID
	}
	for _, w := range Words(msg.Text) {
		if _, ok := e.keywords[w]; ok {
			s.KeywordHit = true
			s.Keyword = w
			break
		}
	}
	return s
}

// Words splits text into lowercase words with surrounding punctuation removed.
func Words(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	out := fields[:0]
	for _, f := range fields {
		f = strings.TrimFunc(f, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '\''
		})
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
