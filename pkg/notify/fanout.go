package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Adda-Baaj/contacts-client/pkg/contacts"
)

// Fanout dispatches events to all configured publishers.
type Fanout struct {
	publishers []Publisher
}

// NewFanout builds a dispatcher that fans out events across publishers.
func NewFanout(pubs []Publisher) *Fanout {
	cp := make([]Publisher, 0, len(pubs))
	for _, p := range pubs {
		if p == nil {
			continue
		}
		cp = append(cp, p)
	}
	return &Fanout{publishers: cp}
}

// Publish forwards the event to every registered publisher.
// It returns the number of publishers that successfully handled the event.
func (f *Fanout) Publish(ctx context.Context, evt Event) (int, error) {
	if f == nil || len(f.publishers) == 0 {
		return 0, nil
	}

	var errs []error
	successful := 0
	for _, p := range f.publishers {
		if err := p.Publish(ctx, evt); err != nil {
			errs = append(errs, fmt.Errorf("%s publisher[%s]: %w", p.Type(), p.ID(), err))
		} else {
			successful++
		}
	}
	return successful, errors.Join(errs...)
}

// Size returns the number of active publishers.
func (f *Fanout) Size() int {
	if f == nil {
		return 0
	}
	return len(f.publishers)
}

// Close releases publishers that hold connections.
func (f *Fanout) Close() error {
	if f == nil {
		return nil
	}
	var errs []error
	for _, p := range f.publishers {
		if c, ok := p.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s publisher[%s]: %w", p.Type(), p.ID(), err))
			}
		}
	}
	return errors.Join(errs...)
}

// Dispatcher adapts a Fanout to contacts.Notifier.
type Dispatcher struct {
	fanout *Fanout
	source string
	now    func() time.Time
	log    Logger
}

// NewDispatcher wraps fanout; source names this client in every event.
func NewDispatcher(fanout *Fanout, source string, log Logger) *Dispatcher {
	return &Dispatcher{
		fanout: fanout,
		source: source,
		now:    time.Now,
		log:    ensureLogger(log),
	}
}

// Notify publishes the change to every sink.
func (d *Dispatcher) Notify(ctx context.Context, change contacts.Change) error {
	if d == nil || d.fanout.Size() == 0 {
		return nil
	}
	evt := NewEvent(d.source, change, d.now())
	delivered, err := d.fanout.Publish(ctx, evt)
	d.log.DebugObj("contact change published", "notify_result", map[string]any{
		"action":     evt.Action,
		"contact_id": evt.ContactID,
		"delivered":  delivered,
		"sinks":      d.fanout.Size(),
	})
	return err
}

// Close closes the underlying fanout.
func (d *Dispatcher) Close() error {
	if d == nil {
		return nil
	}
	return d.fanout.Close()
}
