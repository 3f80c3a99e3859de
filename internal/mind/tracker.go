package mind

import "sync"

// ChannelTracker remembers who wrote the latest message in each channel.
type ChannelTracker struct {
	mu   sync.Mutex
	last map[string]string
}

// NewChannelTracker creates an empty tracker.
func NewChannelTracker() *ChannelTracker {
	return &ChannelTracker{last: make(map[string]string)}
}

// Swap records authorID as the latest author of channelID and returns the previous one.
func (t *ChannelTracker) Swap(channelID, authorID string) (previous string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	previous = t.last[channelID]
	t.last[channelID] = authorID
	return previous
}

// Record sets the latest author without reading it.
func (t *ChannelTracker) Record(channelID, authorID string) {
	t.mu.Lock()
	t.last[channelID] = authorID
	t.mu.Unlock()
}

// Last returns the latest author of channelID.
func (t *ChannelTracker) Last(channelID string) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last[channelID]
}
