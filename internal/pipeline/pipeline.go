// Package pipeline wraps every command and query with an ordered chain of
// cross-cutting behaviors. The chain is generic over any request/response
// pair: new request types need no pipeline changes, only a RequestName and
// optionally a Validate method.
package pipeline

import (
	"context"
	"fmt"
)

// Request is the capability every command and query implements so
// behaviors can identify it in logs and records
type Request interface {
	RequestName() string
}

// Validatable is implemented by requests with structural field checks.
// Validate returns nil or a validation error carrying field messages.
type Validatable interface {
	Validate() error
}

// Next invokes the rest of the chain, ending at the handler
type Next func(ctx context.Context) (any, error)

// Behavior is a single cross-cutting step. It may short-circuit by not
// calling next, but must never alter a successful result.
type Behavior interface {
	Handle(ctx context.Context, req Request, next Next) (any, error)
}

// Chain is an ordered list of behaviors applied around every handler.
// The first behavior is outermost.
type Chain struct {
	behaviors []Behavior
}

// NewChain creates a chain with the given behaviors in execution order
func NewChain(behaviors ...Behavior) *Chain {
	return &Chain{behaviors: behaviors}
}

// Use appends a behavior to the chain
func (c *Chain) Use(b Behavior) {
	c.behaviors = append(c.behaviors, b)
}

// Execute runs req through the chain and into fn, asserting the untyped
// chain result back to the handler's response type. A nil chain runs the
// handler directly.
func Execute[Req Request, Res any](ctx context.Context, c *Chain, req Req, fn func(ctx context.Context, req Req) (Res, error)) (Res, error) {
	var zero Res

	if c == nil || len(c.behaviors) == 0 {
		return fn(ctx, req)
	}

	invoke := Next(func(ctx context.Context) (any, error) {
		return fn(ctx, req)
	})

	// Wrap in reverse so the first behavior in the chain is outermost
	for i := len(c.behaviors) - 1; i >= 0; i-- {
		b := c.behaviors[i]
		next := invoke
		invoke = func(ctx context.Context) (any, error) {
			return b.Handle(ctx, req, next)
		}
	}

	out, err := invoke(ctx)
	if err != nil {
		return zero, err
	}
	if out == nil {
		return zero, nil
	}
	res, ok := out.(Res)
	if !ok {
		return zero, fmt.Errorf("pipeline: unexpected response type %T for %s", out, req.RequestName())
	}
	return res, nil
}
