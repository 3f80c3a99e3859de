package mind

import (
	"fmt"
	"slices"
	"strings"
)

// ResetSentinel replaces everything up to and including a memory-reset request.
const ResetSentinel = "[memory reset: everything said before this was forgotten]"

// DefaultResetKeyword and its negations. "don't forget" must never wipe memory.
var (
	DefaultResetKeyword   = "forget"
	DefaultResetNegations = []string{"don't forget", "dont forget", "don’t forget", "do not forget", "never forget", "won't forget", "wont forget"}
)

// Transcript is the sanitized context handed to the generation backend.
type Transcript struct {
	Lines   []string // labelled history, oldest first
	Current string   // labelled current message, always present
	Reset   bool     // a reset directive truncated the history
}

// String renders the history lines followed by the current message.
func (t Transcript) String() string {
	var b strings.Builder
	for _, l := range t.Lines {
		b.WriteString(l)
		b.WriteString("\n")
	}
	b.WriteString(t.Current)
	return b.String()
}

// ContextBuilder assembles a bounded transcript from channel history.
type ContextBuilder struct {
	Agent          Agent
	CommandPrefix  string
	ResetKeyword   string
	ResetNegations []string
	Fatigue        FatigueConfig
}

// NewContextBuilder creates a builder with the default reset keyword.
func NewContextBuilder(agent Agent, commandPrefix string, fatigue FatigueConfig) *ContextBuilder {
	return &ContextBuilder{
		Agent:          agent,
		CommandPrefix:  commandPrefix,
		ResetKeyword:   DefaultResetKeyword,
		ResetNegations: DefaultResetNegations,
		Fatigue:        fatigue,
	}
}

// Build sanitizes history (chronological) and appends current last, outside the bound.
func (b *ContextBuilder) Build(history []InboundMessage, current InboundMessage, fatigueLevel int) Transcript {
	var kept []InboundMessage
	reset := false
	for _, m := range history {
		if b.isCommand(m.Text) {
			continue
		}
		if b.isReset(m) {
			kept = kept[:0]
			reset = true
			continue
		}
		kept = append(kept, m)
	}
	if b.isReset(current) {
		kept = kept[:0]
		reset = true
	}

	if n := b.Fatigue.ContextWindow(fatigueLevel); n >= 0 && len(kept) > n {
		kept = kept[len(kept)-n:]
	}

	t := Transcript{Reset: reset, Current: b.label(current)}
	if reset {
		t.Lines = append(t.Lines, ResetSentinel)
	}
	for _, m := range kept {
		t.Lines = append(t.Lines, b.label(m))
	}
	return t
}

func (b *ContextBuilder) isCommand(text string) bool {
	return b.CommandPrefix != "" && strings.HasPrefix(strings.TrimSpace(text), b.CommandPrefix)
}

// isReset reports a reset keyword from someone other than the agent that is not
// directly preceded by one of the negations.
func (b *ContextBuilder) isReset(m InboundMessage) bool {
	if b.ResetKeyword == "" || m.AuthorID == b.Agent.ID {
		return false
	}
	words := Words(m.Text)
	for i, w := range words {
		if w == b.ResetKeyword && !b.negated(words[:i]) {
			return true
		}
	}
	return false
}

// negated reports whether before ends with the lead-in of a negation, e.g. "don't".
func (b *ContextBuilder) negated(before []string) bool {
	for _, neg := range b.ResetNegations {
		lead := Words(strings.TrimSuffix(strings.ToLower(strings.TrimSpace(neg)), b.ResetKeyword))
		if len(lead) == 0 || len(lead) > len(before) {
			continue
		}
		if slices.Equal(lead, before[len(before)-len(lead):]) {
			return true
		}
	}
	return false
}

func (b *ContextBuilder) label(m InboundMessage) string {
	text := strings.TrimSpace(m.Text)
	if m.ImageURL != "" {
		if text == "" {
			text = "[image]"
		} else {
			text += " [image]"
		}
	}
	name := m.AuthorName
	if name == "" {
		name = "unknown"
	}
	if b.Agent.ID != "" && m.AuthorID == b.Agent.ID {
		return fmt.Sprintf("[YOU] %s (id:%s): %s", name, m.AuthorID, text)
	}
	return fmt.Sprintf("%s (id:%s): %s", name, m.AuthorID, text)
}
