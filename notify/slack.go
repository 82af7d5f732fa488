package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/slack-go/slack"

	"github.com/example/sheetlease/logger"
	"github.com/example/sheetlease/types"
)

// SlackNotifier delivers notifications through an incoming-webhook URL,
// addressed to the user's direct-message channel.
type SlackNotifier struct {
	webhookURL string
	client     *http.Client
	logger     logger.Logger
}

// NewSlackNotifier returns a SlackNotifier posting to the given webhook.
// A nil httpClient falls back to http.DefaultClient.
func NewSlackNotifier(webhookURL string, httpClient *http.Client, log logger.Logger) (*SlackNotifier, error) {
	if webhookURL == "" {
		return nil, errors.New("notify: webhook URL cannot be empty")
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &SlackNotifier{
		webhookURL: webhookURL,
		client:     httpClient,
		logger:     log.WithComponent("notify"),
	}, nil
}

// Notify implements Notifier.
func (n *SlackNotifier) Notify(ctx context.Context, user types.UserID, text string) error {
	if user == "" {
		return errors.New("notify: user cannot be empty")
	}

	msg := &slack.WebhookMessage{
		Channel: "@" + string(user),
		Text:    text,
	}
	if err := slack.PostWebhookCustomHTTPContext(ctx, n.webhookURL, n.client, msg); err != nil {
		return fmt.Errorf("notify: posting webhook: %w", err)
	}

	n.logger.Debugw("Notification delivered", "user", user)
	return nil
}
