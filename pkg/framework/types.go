// Package framework runs the host-side pieces: long running
// Runnables under one Runner, and a Loop that feeds received
// messages to Controllers.
package framework

import (
	"context"
	"time"
)

// Named is an abstraction for things with a name.
type Named interface {
	Name() string
}

// Runnable defines a generic interface for background runners.
type Runnable interface {
	Run(context.Context) error
}

// RunFunc is the func form of Runnable.
type RunFunc func(context.Context) error

// Run implements Runnable.
func (f RunFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// Message is anything posted to a Loop.
type Message interface{}

// Controller consumes the messages of one loop iteration.
type Controller interface {
	Control(ControlContext) error
}

// ControlFunc defines the func form of Controller.
type ControlFunc func(ControlContext) error

// Control implements Controller.
func (f ControlFunc) Control(ctx ControlContext) error {
	return f(ctx)
}

// TimeSource provides the time for controlling logic.
type TimeSource interface {
	Time() time.Time
}

// ControlContext provides the context of current control
// iteration.
type ControlContext interface {
	TimeSource
	// Context retrieves context.Context.
	Context() context.Context
	// Messages retrieves the messages posted since the previous
	// iteration, in posting order.
	Messages() []Message

	LoopControl
}

// LoopControl exposes access to the controlling loop.
type LoopControl interface {
	// PostMessage enqueues the message for the next iteration.
	PostMessage(Message)
	// TriggerNext schedules the next iteration to be executed
	// immediately after the current iteration.
	TriggerNext()
}
