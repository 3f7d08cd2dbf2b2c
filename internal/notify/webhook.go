package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"example.com/mergington/internal/events"
)

// WebhookNotifier posts roster changes to an HTTP endpoint as JSON.
type WebhookNotifier struct {
	client *http.Client
	url    string
	token  string
}

// NewWebhookNotifier constructs a WebhookNotifier.
func NewWebhookNotifier(endpoint, token string, timeout time.Duration) *WebhookNotifier {
	return &WebhookNotifier{
		client: &http.Client{Timeout: timeout},
		url:    strings.TrimRight(endpoint, "/"),
		token:  token,
	}
}

// Notify sends the event in a single POST.
func (w *WebhookNotifier) Notify(ctx context.Context, evt events.RosterChanged) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if w.token != "" {
		req.Header.Set("Authorization", "Bearer "+w.token)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return &DeliveryError{Status: resp.StatusCode}
	}
	return nil
}

// DeliveryError represents a non-successful webhook response.
type DeliveryError struct {
	Status int
}

func (e *DeliveryError) Error() string {
	return "roster webhook failed with status " + http.StatusText(e.Status)
}
