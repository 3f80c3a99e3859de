package command

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/keshon/zoomer-grok/internal/mind"
	"github.com/keshon/zoomer-grok/pkg/cmd"
)

// Categorized commands are grouped in help output.
type Categorized interface {
	Category() string
}

// MessageContext is the Invocation.Data of a prefix command typed in chat.
type MessageContext struct {
	Message  mind.InboundMessage
	Runner   *mind.Runner
	Registry *cmd.Registry
	Prefix   string
	Latency  func() time.Duration
	Reply    func(ctx context.Context, text string) error
}

func messageContext(inv *cmd.Invocation) (*MessageContext, error) {
	mc, ok := inv.Data.(*MessageContext)
	if !ok || mc == nil {
		return nil, fmt.Errorf("wrong context type %T", inv.Data)
	}
	return mc, nil
}

// Parse splits "!name arg1 arg2" into the command name and its args.
func Parse(prefix, text string) (name string, args []string, ok bool) {
	text = strings.TrimSpace(text)
	if prefix == "" || !strings.HasPrefix(text, prefix) {
		return "", nil, false
	}
	fields := strings.Fields(strings.TrimPrefix(text, prefix))
	if len(fields) == 0 {
		return "", nil, false
	}
	return strings.ToLower(fields[0]), fields[1:], true
}

// Dispatch runs the command named in mc.Message, if any. handled is false for
// text that is not a known command.
func Dispatch(ctx context.Context, mc *MessageContext) (handled bool, err error) {
	name, args, ok := Parse(mc.Prefix, mc.Message.Text)
	if !ok {
		return false, nil
	}
	c := mc.Registry.Get(name)
	if c == nil {
		return false, nil
	}
	return true, c.Run(ctx, &cmd.Invocation{Args: args, Data: mc})
}
