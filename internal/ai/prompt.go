package ai

import "strings"

// RenderPrompt lays out the transcript, current message and hints as one user turn.
func RenderPrompt(req Request) string {
	var b strings.Builder
	b.WriteString("HISTORY (the chat so far):\n")
	if len(req.History) == 0 {
		b.WriteString("(nothing yet)\n")
	}
	for _, line := range req.History {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\nCURRENT MESSAGE:\n")
	b.WriteString(req.Current)
	b.WriteString("\n")
	if len(req.Hints) > 0 {
		b.WriteString("\nNOTES:\n")
		for _, h := range req.Hints {
			if h = strings.TrimSpace(h); h != "" {
				b.WriteString("- ")
				b.WriteString(h)
				b.WriteString("\n")
			}
		}
	}
	b.WriteString("\nTASK: Reply naturally, in character, to the current message.")
	return b.String()
}
