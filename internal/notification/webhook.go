package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Sink delivers a human-readable notification somewhere people will see it.
//
//go:generate mockgen -source=webhook.go -destination=mock/webhook_mock.go -package=mock
type Sink interface {
	Send(ctx context.Context, text string) error
}

// TeamsWebhookSink posts plain-text cards to a Microsoft Teams incoming
// webhook. Delivery is best effort; the caller decides whether to retry.
type TeamsWebhookSink struct {
	webhookURL string
	client     *http.Client
	logger     *zap.Logger
}

func NewTeamsWebhookSink(webhookURL string, logger ...*zap.Logger) *TeamsWebhookSink {
	l := zap.L().Named("notification.teams")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.teams")
	}
	return &TeamsWebhookSink{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
		logger:     l,
	}
}

func (s *TeamsWebhookSink) Send(ctx context.Context, text string) error {
	if s.webhookURL == "" {
		s.logger.Debug("teams webhook not configured, dropping notification")
		return nil
	}

	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("teams webhook returned status %d", resp.StatusCode)
	}

	return nil
}
