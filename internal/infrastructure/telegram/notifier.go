package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"SavePublish/internal/domain"
	"SavePublish/internal/ports"
)

const apiBaseURL = "https://api.telegram.org"

// Notifier posts publish audit records to a Telegram chat via bot API.
type Notifier struct {
	baseURL  string
	botToken string
	chatID   string
	client   *http.Client
}

var _ ports.AuditLog = (*Notifier)(nil)

// NewNotifier registers bot token and chat identifier.
func NewNotifier(botToken, chatID string) *Notifier {
	return &Notifier{
		baseURL:  apiBaseURL,
		botToken: botToken,
		chatID:   chatID,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// Record sends one audit line to the chat.
func (n *Notifier) Record(ctx context.Context, entry domain.AuditEntry) error {
	if n.botToken == "" || n.chatID == "" || n.client == nil {
		return fmt.Errorf("telegram notifier misconfigured")
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.botToken)
	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", formatEntry(entry))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram error: %s", resp.Status)
	}

	return nil
}

func formatEntry(entry domain.AuditEntry) string {
	actor := entry.Actor
	if actor == "" {
		actor = "unknown user"
	}
	return fmt.Sprintf("%s\nby %s at %s", entry.Message, actor, entry.CreatedAt.UTC().Format(time.RFC3339))
}
