package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Email is the payload posted to the mail gateway.
type Email struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Mailer delivers email through an HTTP mail gateway. Transport
// mechanics (SMTP, queueing) live behind the gateway; opsdesk only
// posts JSON to it.
type Mailer struct {
	url    string
	from   string
	client *http.Client
}

// NewMailer constructs a Mailer for the gateway at url. A nil client
// gets a default with the supplied timeout.
func NewMailer(url, from string, timeout time.Duration, client *http.Client) *Mailer {
	if client == nil {
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Mailer{url: url, from: from, client: client}
}

// Send posts one email to the gateway.
func (m *Mailer) Send(ctx context.Context, email Email) error {
	if strings.TrimSpace(m.url) == "" {
		return errors.New("mail gateway url is not configured")
	}

	if email.From == "" {
		email.From = m.from
	}

	body, err := json.Marshal(email)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("mail gateway responded %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return nil
}
