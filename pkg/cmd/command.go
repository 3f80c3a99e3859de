// Package cmd holds the transport-neutral command contract shared by the chat
// prefix handler and any other front end.
package cmd

import "context"

// Invocation is what a front end hands to a command.
type Invocation struct {
	Args []string
	// Data is the caller's context; the chat handler passes *command.MessageContext.
	Data any
}

type Command interface {
	Name() string
	Description() string
	Run(ctx context.Context, inv *Invocation) error
}

// Middleware decorates a command. The result keeps the inner command's name.
type Middleware func(Command) Command

// Apply wraps c with mws in order, so the last one runs first.
func Apply(c Command, mws ...Middleware) Command {
	for _, mw := range mws {
		c = mw(c)
	}
	return c
}

type decorated struct {
	inner Command
	run   func(ctx context.Context, inv *Invocation) error
}

func (d *decorated) Name() string        { return d.inner.Name() }
func (d *decorated) Description() string { return d.inner.Description() }
func (d *decorated) Unwrap() Command     { return d.inner }

func (d *decorated) Run(ctx context.Context, inv *Invocation) error {
	return d.run(ctx, inv)
}

// Wrap replaces the Run of c while keeping its identity reachable through Root.
func Wrap(c Command, run func(ctx context.Context, inv *Invocation) error) Command {
	if run == nil {
		return c
	}
	return &decorated{inner: c, run: run}
}

// Root peels middleware layers off c.
func Root(c Command) Command {
	for {
		u, ok := c.(interface{ Unwrap() Command })
		if !ok {
			return c
		}
		c = u.Unwrap()
	}
}
