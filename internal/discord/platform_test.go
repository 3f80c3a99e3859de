package discord

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"

	"github.com/keshon/zoomer-grok/pkg/retrylimit"
)

func TestRestStatus(t *testing.T) {
	throttled := fmt.Errorf("send: %w", &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusTooManyRequests}})
	assert.Equal(t, 429, restStatus(throttled))
	assert.True(t, retrylimit.Transient(restStatus(throttled)))

	forbidden := &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusForbidden}}
	assert.False(t, retrylimit.Transient(restStatus(forbidden)))

	assert.Zero(t, restStatus(fmt.Errorf("websocket closed")))
	assert.Zero(t, restStatus(&discordgo.RESTError{}))
}
