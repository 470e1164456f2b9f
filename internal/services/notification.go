// internal/services/notification.go
package services

import (
	"time"

	"relief-hub/internal/models"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

const (
	AlertEventCreated     = "alert.created"
	AlertEventDeactivated = "alert.deactivated"
)

// AlertWebhookPayload is the body posted to the configured endpoint on
// alert lifecycle events.
type AlertWebhookPayload struct {
	Event     string        `json:"event"`
	Alert     *models.Alert `json:"alert"`
	Timestamp time.Time     `json:"timestamp"`
}

// NotificationService pushes alert lifecycle events to an external
// endpoint (civil-defense integration). Delivery is fire-and-forget:
// failures are logged, never retried, and never block the request path.
type NotificationService struct {
	client     *resty.Client
	webhookURL string
}

func NewNotificationService(webhookURL string) *NotificationService {
	client := resty.New().
		SetTimeout(10 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "relief-hub")

	return &NotificationService{
		client:     client,
		webhookURL: webhookURL,
	}
}

// NotifyAlert posts the event asynchronously. A no-op when no webhook
// is configured.
func (s *NotificationService) NotifyAlert(event string, alert *models.Alert) {
	if s.webhookURL == "" {
		return
	}

	payload := AlertWebhookPayload{
		Event:     event,
		Alert:     alert,
		Timestamp: time.Now(),
	}

	go func() {
		resp, err := s.client.R().
			SetBody(payload).
			Post(s.webhookURL)
		if err != nil {
			logrus.WithError(err).WithField("event", event).Warn("alert webhook delivery failed")
			return
		}
		if resp.IsError() {
			logrus.WithFields(logrus.Fields{
				"event":  event,
				"status": resp.StatusCode(),
			}).Warn("alert webhook rejected")
		}
	}()
}
