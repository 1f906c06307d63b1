package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// DiscordSender posts to a Discord channel webhook. It is separate from the
// bot session so alerts still go out when the gateway is down.
type DiscordSender struct {
	webhookURL string
	client     *http.Client
}

// NewDiscordSender creates a DiscordSender for webhookURL.
func NewDiscordSender(webhookURL string, timeout time.Duration) *DiscordSender {
	return &DiscordSender{webhookURL: webhookURL, client: newHTTPClient(timeout)}
}

type webhookPayload struct {
	Content string `json:"content"`
}

// Send posts the message with the title in bold.
func (d *DiscordSender) Send(ctx context.Context, title, message string) error {
	content := fmt.Sprintf("**%s**\n%s", title, message)
	if err := postJSON(ctx, d.client, d.webhookURL, webhookPayload{Content: content}); err != nil {
		return fmt.Errorf("discord webhook: %w", err)
	}
	return nil
}

// Name implements Sender.
func (d *DiscordSender) Name() string { return "discord" }
