package mind

// reactionRule reacts with emoji when any of its words appears.
type reactionRule struct {
	words []string
	emoji string
}

// ReactionTable is an ordered list of word triggers; the first matching rule wins.
type ReactionTable struct {
	rules []reactionRule
}

// DefaultReactionTable returns the passive reactions.
func DefaultReactionTable() *ReactionTable {
	return &ReactionTable{rules: []reactionRule{
		{words: []string{"cap", "fake", "lie"}, emoji: EmojiCap},
		{words: []string{"skull", "dead", "lmao"}, emoji: EmojiSkull},
		{words: []string{"w"}, emoji: EmojiCrown},
		{words: []string{"l"}, emoji: EmojiTrash},
	}}
}

// Match returns the emoji of the first rule with a word in text.
func (t *ReactionTable) Match(text string) (string, bool) {
	if t == nil {
		return "", false
	}
	words := make(map[string]struct{})
	for _, w := range Words(text) {
		words[w] = struct{}{}
	}
	for _, r := range t.rules {
		for _, w := range r.words {
			if _, ok := words[w]; ok {
				return r.emoji, true
			}
		}
	}
	return "", false
}
