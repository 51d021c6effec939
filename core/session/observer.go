package session

import (
	"context"
	"time"
)

// Operation names a session engine call.
type Operation string

const (
	OpOpen       Operation = "open"
	OpStart      Operation = "start"
	OpSave       Operation = "save"
	OpTouch      Operation = "touch"
	OpRegenerate Operation = "regenerate"
	OpDestroy    Operation = "destroy"
	OpClose      Operation = "close"
)

// Event describes a finished operation.
// For OpOpen, Err carries the reason a cookie was rejected even though Open itself succeeded.
type Event struct {
	Operation Operation
	Strategy  string
	Present   bool
	Err       error
	Duration  time.Duration
}

// Observer receives an Event after every public session operation.
type Observer interface {
	Observe(ctx context.Context, ev Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, ev Event)

func (f ObserverFunc) Observe(ctx context.Context, ev Event) { f(ctx, ev) }

type nopObserver struct{}

func (nopObserver) Observe(context.Context, Event) {}

// Observers fans every event out to each observer in order.
func Observers(observers ...Observer) Observer {
	list := make(multiObserver, 0, len(observers))
	for _, o := range observers {
		if o != nil {
			list = append(list, o)
		}
	}
	return list
}

type multiObserver []Observer

func (m multiObserver) Observe(ctx context.Context, ev Event) {
	for _, o := range m {
		o.Observe(ctx, ev)
	}
}
