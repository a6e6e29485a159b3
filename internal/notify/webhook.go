// Package notify posts staff digests to a Mattermost or Slack compatible incoming webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aimd54/rocase/internal/config"
	"github.com/aimd54/rocase/pkg/logger"
)

// Client handles webhook notifications.
type Client struct {
	webhookURL string
	channel    string
	enabled    bool
	http       *http.Client
	log        *logger.Logger
}

// NewClient creates a new webhook client.
func NewClient(cfg *config.NotificationsConfig, log *logger.Logger) *Client {
	return &Client{
		webhookURL: cfg.WebhookURL,
		channel:    cfg.Channel,
		enabled:    cfg.Enabled,
		http:       &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}
}

// Message represents a webhook message payload.
type Message struct {
	Channel     string       `json:"channel,omitempty"`
	Username    string       `json:"username,omitempty"`
	Text        string       `json:"text,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Attachment represents a message attachment.
type Attachment struct {
	Fallback string  `json:"fallback,omitempty"`
	Color    string  `json:"color,omitempty"`
	Title    string  `json:"title,omitempty"`
	Text     string  `json:"text,omitempty"`
	Fields   []Field `json:"fields,omitempty"`
	Footer   string  `json:"footer,omitempty"`
}

// Field represents a message field.
type Field struct {
	Short bool   `json:"short"`
	Title string `json:"title"`
	Value string `json:"value"`
}

// SendMessage posts msg to the webhook.
func (c *Client) SendMessage(ctx context.Context, msg *Message) error {
	if !c.enabled {
		c.log.Debug().Msg("Notifications are disabled, skipping message")
		return nil
	}

	if msg.Channel == "" {
		msg.Channel = c.channel
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send message to webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	c.log.Debug().Str("channel", msg.Channel).Msg("Sent webhook message")
	return nil
}

// PendingRequest summarizes a case request waiting for review.
type PendingRequest struct {
	ID              uint
	SuspectUsername string
	CrimeType       string
	RequesterName   string
	CreatedAt       time.Time
}

// SendBacklogDigest lists case requests that have waited too long for review.
func (c *Client) SendBacklogDigest(ctx context.Context, pending []PendingRequest, now time.Time) error {
	if len(pending) == 0 {
		c.log.Debug().Msg("No overdue case requests, skipping digest")
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "### Case request backlog\n\n**%d** case requests are waiting for review:\n\n", len(pending))

	for _, p := range pending {
		age := now.Sub(p.CreatedAt)
		ageStr := fmt.Sprintf("%.1f hours", age.Hours())
		if age.Hours() > 24 {
			ageStr = fmt.Sprintf("%.1f days", age.Hours()/24)
		}

		marker := "-"
		if age.Hours() > 72 {
			marker = "- **[overdue]**"
		}

		fmt.Fprintf(&b, "%s #%d %s against %s, submitted by %s (%s old)\n",
			marker, p.ID, p.CrimeType, p.SuspectUsername, p.RequesterName, ageStr)
	}

	b.WriteString("\n_Reviewers: approve or reject these requests from the review queue._")

	return c.SendMessage(ctx, &Message{
		Username: "Case Tracker",
		Text:     b.String(),
	})
}
