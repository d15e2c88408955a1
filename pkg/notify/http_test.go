package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Adda-Baaj/contacts-client/pkg/contacts"
)

func TestHTTPPublisherSuccess(t *testing.T) {
	var received Event
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if got := r.Header.Get("X-Test"); got != "1" {
			t.Errorf("missing header, got %s", got)
		}
		if got := r.Header.Get("X-Contact-Action"); got != contacts.ActionDeleted {
			t.Errorf("X-Contact-Action = %s", got)
		}
		if got := r.Header.Get("X-Contact-Id"); got != "c9" {
			t.Errorf("X-Contact-Id = %s", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %s", got)
		}
		_ = json.NewDecoder(r.Body).Decode(&received)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	pub, err := newHTTPPublisher(context.Background(), SinkConfig{
		ID:   "hook",
		Type: TypeHTTP,
		HTTP: &HTTPSinkConfig{
			URL:            srv.URL,
			Method:         http.MethodPost,
			Headers:        map[string]string{"X-Test": "1"},
			TimeoutSeconds: 2,
		},
	}, nil)
	if err != nil {
		t.Fatalf("newHTTPPublisher: %v", err)
	}

	if err := pub.Publish(context.Background(), Event{Action: contacts.ActionDeleted, ContactID: "c9"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if received.ContactID != "c9" {
		t.Fatalf("server did not receive event, got %+v", received)
	}
}

func TestHTTPPublisherErrorOnNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusBadRequest)
	}))
	defer srv.Close()

	pub, err := newHTTPPublisher(context.Background(), SinkConfig{
		ID:   "hook",
		Type: TypeHTTP,
		HTTP: &HTTPSinkConfig{
			URL:            srv.URL,
			Method:         http.MethodPost,
			TimeoutSeconds: 1,
		},
	}, nil)
	if err != nil {
		t.Fatalf("newHTTPPublisher: %v", err)
	}

	if err := pub.Publish(context.Background(), Event{}); err == nil {
		t.Fatalf("expected error on non-2xx response")
	}
}

func TestWebhookHeadersFollowEventAttributes(t *testing.T) {
	pub := &webhookPublisher{headers: map[string]string{"X-Contact-Action": "spoofed", "X-Env": "dev"}}

	h := pub.requestHeaders(Event{Action: contacts.ActionCreated})
	if h["X-Contact-Action"] != contacts.ActionCreated {
		t.Fatalf("attribute header should win, got %q", h["X-Contact-Action"])
	}
	if h["X-Env"] != "dev" {
		t.Fatalf("configured header dropped: %v", h)
	}
	if _, ok := h["X-Contact-Id"]; ok {
		t.Fatalf("empty attributes must not become headers: %v", h)
	}
}
