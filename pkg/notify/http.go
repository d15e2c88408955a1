package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Adda-Baaj/contacts-client/pkg/httpclient"
	"github.com/go-resty/resty/v2"
)

// webhookPublisher delivers events as JSON to an HTTP endpoint. Event
// attributes travel as X-Contact-* headers so receivers can route without
// decoding the body.
type webhookPublisher struct {
	id      string
	method  string
	url     string
	headers map[string]string
	client  *resty.Client
	log     Logger
}

func newHTTPPublisher(_ context.Context, cfg SinkConfig, log Logger) (Publisher, error) {
	if cfg.HTTP == nil {
		return nil, fmt.Errorf("notifier %q missing http configuration", cfg.ID)
	}

	return &webhookPublisher{
		id:      cfg.ID,
		method:  cfg.HTTP.Method,
		url:     cfg.HTTP.URL,
		headers: cfg.HTTP.Headers,
		client:  httpclient.NewRestyHTTPClient(time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second),
		log:     ensureLogger(log),
	}, nil
}

func (w *webhookPublisher) ID() string   { return w.id }
func (w *webhookPublisher) Type() string { return TypeHTTP }

// Publish posts evt and treats any non-2xx status as a failed delivery.
func (w *webhookPublisher) Publish(ctx context.Context, evt Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	resp, err := w.client.R().
		SetContext(ctx).
		SetHeaders(w.requestHeaders(evt)).
		SetBody(payload).
		Execute(w.method, w.url)
	if err != nil {
		return fmt.Errorf("webhook request: %w", err)
	}

	status := resp.StatusCode()
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		w.log.ErrorObj("webhook notifier rejected event", "notify_http_error", map[string]any{
			"notifier_id": w.id,
			"status":      status,
			"contact_id":  evt.ContactID,
		})
		return fmt.Errorf("webhook responded %d: %s", status, readBodySnippet(resp.Body()))
	}
	w.log.DebugObj("webhook notifier delivered event", "notify_http_delivery", map[string]any{
		"notifier_id": w.id,
		"status":      status,
	})
	return nil
}

// requestHeaders merges configured headers with the event attributes.
// Attribute headers win on conflict.
func (w *webhookPublisher) requestHeaders(evt Event) map[string]string {
	h := make(map[string]string, len(w.headers)+3)
	for k, v := range w.headers {
		h[k] = v
	}
	for k, v := range stringAttributes(evt) {
		h[attributeHeader(k)] = v
	}
	h["Content-Type"] = "application/json"
	return h
}

// attributeHeader maps "contact_id" to "X-Contact-Id" and "action" to "X-Contact-Action".
func attributeHeader(attr string) string {
	name := strings.TrimPrefix(attr, "contact_")
	parts := strings.Split(name, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return "X-Contact-" + strings.Join(parts, "-")
}

func readBodySnippet(body []byte) string {
	const maxLen = 512
	if len(body) > maxLen {
		body = body[:maxLen]
	}
	return strings.TrimSpace(string(body))
}
