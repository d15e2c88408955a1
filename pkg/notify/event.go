package notify

import (
	"time"

	"github.com/Adda-Baaj/contacts-client/pkg/contacts"
)

// Event represents the payload published downstream after a contact mutation.
type Event struct {
	Source     string            `json:"source"`
	Action     string            `json:"action"`
	ContactID  string            `json:"contact_id"`
	Contact    *contacts.Contact `json:"contact,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// NewEvent constructs an Event for the given change.
func NewEvent(source string, change contacts.Change, now time.Time) Event {
	return Event{
		Source:     source,
		Action:     change.Action,
		ContactID:  change.ContactID,
		Contact:    change.Contact,
		OccurredAt: now.UTC(),
	}
}

// attributes are the routing keys every sink attaches next to the payload.
func (e Event) attributes() map[string]string {
	return map[string]string{
		"action":     e.Action,
		"contact_id": e.ContactID,
	}
}
