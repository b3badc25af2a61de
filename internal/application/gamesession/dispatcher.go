package gamesession

import (
	"context"

	domainSession "github.com/trivia-hub/trivia-hub/internal/domain/gamesession"
)

// Handler is a pure side effect reacting to one event: send a
// notification, arm or cancel a timer. Handlers must not call back into
// the state machine synchronously; timer callbacks re-enter through the
// service's timeout operations.
type Handler func(ctx context.Context, ev domainSession.Event)

// Dispatcher maps each event kind to an ordered list of handlers. The
// table is built once at service construction; dispatch is a map lookup,
// no runtime type inspection.
type Dispatcher struct {
	handlers map[domainSession.EventKind][]Handler
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[domainSession.EventKind][]Handler)}
}

// Register appends handlers for a kind; they run in registration order.
func (d *Dispatcher) Register(kind domainSession.EventKind, handlers ...Handler) {
	d.handlers[kind] = append(d.handlers[kind], handlers...)
}

// Dispatch invokes the registered handlers for each event in order.
// Callers must dispatch only after the mutation is durably recorded,
// since handlers can arm timers that trigger further mutations.
func (d *Dispatcher) Dispatch(ctx context.Context, events []domainSession.Event) {
	for _, ev := range events {
		for _, h := range d.handlers[ev.Kind] {
			h(ctx, ev)
		}
	}
}
