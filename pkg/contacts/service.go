package contacts

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/Adda-Baaj/contacts-client/pkg/httpclient"
)

const basePath = "/api/contacts"

// Change actions reported to a Notifier.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// ErrInvalidInput is returned before any request is sent.
var ErrInvalidInput = errors.New("invalid contact input")

// TokenSource yields the bearer token attached to every call.
type TokenSource interface {
	Token() (string, error)
}

// Change describes a successful mutation.
type Change struct {
	Action    string
	ContactID string
	// Contact is nil for deletions.
	Contact *Contact
}

// Notifier receives successful mutations. Failures are logged, never returned.
type Notifier interface {
	Notify(ctx context.Context, change Change) error
}

// Logger defines the logging surface the service relies on.
type Logger interface {
	InfoObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
}

type noopLogger struct{}

func (noopLogger) InfoObj(string, string, interface{}) {}
func (noopLogger) WarnObj(string, string, interface{}) {}

// Service exposes typed contact operations over the JSON client.
type Service struct {
	client   httpclient.JSONClient
	tokens   TokenSource
	notifier Notifier
	log      Logger
}

// NewService wires a contact service. notifier and log may be nil.
func NewService(client httpclient.JSONClient, tokens TokenSource, notifier Notifier, log Logger) *Service {
	if log == nil {
		log = noopLogger{}
	}
	return &Service{client: client, tokens: tokens, notifier: notifier, log: log}
}

// List returns every contact owned by the signed-in user.
func (s *Service) List(ctx context.Context) ([]Contact, error) {
	token, err := s.token()
	if err != nil {
		return nil, err
	}
	var out []Contact
	if err := s.client.Get(ctx, basePath, token, &out); err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	if out == nil {
		out = []Contact{}
	}
	return out, nil
}

// Create adds a contact and returns the server's record.
func (s *Service) Create(ctx context.Context, in NewContact) (*Contact, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	token, err := s.token()
	if err != nil {
		return nil, err
	}

	var created Contact
	if err := s.client.Post(ctx, basePath, in, token, &created); err != nil {
		return nil, fmt.Errorf("create contact: %w", err)
	}
	s.notify(ctx, Change{Action: ActionCreated, ContactID: created.ID, Contact: &created})
	return &created, nil
}

// Update applies a partial update to contact id.
func (s *Service) Update(ctx context.Context, id string, patch Patch) (*Contact, error) {
	path, err := contactPath(id)
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}
	token, err := s.token()
	if err != nil {
		return nil, err
	}

	var updated Contact
	if err := s.client.Put(ctx, path, patch, token, &updated); err != nil {
		return nil, fmt.Errorf("update contact %s: %w", id, err)
	}
	s.notify(ctx, Change{Action: ActionUpdated, ContactID: strings.TrimSpace(id), Contact: &updated})
	return &updated, nil
}

// Delete removes contact id. Any response body is ignored.
func (s *Service) Delete(ctx context.Context, id string) error {
	path, err := contactPath(id)
	if err != nil {
		return err
	}
	token, err := s.token()
	if err != nil {
		return err
	}

	if err := s.client.Delete(ctx, path, token, nil); err != nil {
		return fmt.Errorf("delete contact %s: %w", id, err)
	}
	s.notify(ctx, Change{Action: ActionDeleted, ContactID: strings.TrimSpace(id)})
	return nil
}

func (s *Service) token() (string, error) {
	if s.tokens == nil {
		return "", nil
	}
	token, err := s.tokens.Token()
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	return token, nil
}

func (s *Service) notify(ctx context.Context, change Change) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, change); err != nil {
		s.log.WarnObj("contact change notification failed", "notify_error", map[string]any{
			"action":     change.Action,
			"contact_id": change.ContactID,
			"error":      err.Error(),
		})
	}
}

func contactPath(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("%w: id is required", ErrInvalidInput)
	}
	return basePath + "/" + url.PathEscape(id), nil
}
