// Package notify delivers roster change events to downstream sinks.
package notify

import (
	"context"
	"errors"
	"fmt"

	"example.com/mergington/internal/events"
	"example.com/mergington/internal/observability"
)

// Notifier defines a roster change delivery contract.
type Notifier interface {
	Notify(ctx context.Context, evt events.RosterChanged) error
}

// NoopNotifier is a no-op implementation.
type NoopNotifier struct{}

// Notify performs no action.
func (NoopNotifier) Notify(context.Context, events.RosterChanged) error { return nil }

// Sink pairs a notifier with the name used in metrics and errors.
type Sink struct {
	Name     string
	Notifier Notifier
}

// Fanout delivers each event to every sink, continuing past failures.
type Fanout struct {
	sinks []Sink
}

// NewFanout builds a Fanout. Sinks with a nil notifier are skipped.
func NewFanout(sinks ...Sink) *Fanout {
	kept := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s.Notifier != nil {
			kept = append(kept, s)
		}
	}
	return &Fanout{sinks: kept}
}

// Len returns the number of configured sinks.
func (f *Fanout) Len() int { return len(f.sinks) }

// Notify implements Notifier.
func (f *Fanout) Notify(ctx context.Context, evt events.RosterChanged) error {
	var errs []error
	for _, s := range f.sinks {
		if err := s.Notifier.Notify(ctx, evt); err != nil {
			observability.RecordNotifyFailure(s.Name)
			errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
		}
	}
	return errors.Join(errs...)
}
