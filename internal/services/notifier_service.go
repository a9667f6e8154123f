package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/botivate/sheetsync/config"
	"github.com/botivate/sheetsync/internal/models"
	"github.com/botivate/sheetsync/pkg/httpclient"
	"github.com/botivate/sheetsync/pkg/logger"
	"github.com/botivate/sheetsync/pkg/metrics"
	"github.com/botivate/sheetsync/pkg/tracing"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	// WebhookSecretHeader carries the shared secret on both inbound and outbound webhooks
	WebhookSecretHeader = "X-Webhook-Secret"
	// NotificationIDHeader lets the consumer correlate its logs with ours
	NotificationIDHeader = "X-Notification-ID"
)

// NotifierService posts an empty "data changed" webhook to the downstream consumer.
// It makes exactly one attempt per call.
type NotifierService struct {
	httpClient httpclient.Doer
	url        string
	secret     string
}

// NewNotifierService creates a notifier from the sync configuration
func NewNotifierService(cfg config.SyncConfig) *NotifierService {
	timeout := time.Duration(cfg.WebhookTimeoutSeconds) * time.Second
	return NewNotifierServiceWithClient(cfg.WebhookURL, cfg.WebhookSecret, httpclient.NewWebhookClient(timeout))
}

// NewNotifierServiceWithClient creates a notifier with a caller-supplied HTTP client
func NewNotifierServiceWithClient(url, secret string, client httpclient.Doer) *NotifierService {
	return &NotifierService{
		httpClient: client,
		url:        url,
		secret:     secret,
	}
}

// NotifyChange sends one notification and reports how it went
func (s *NotifierService) NotifyChange(ctx context.Context) (result models.NotificationResult) {
	if s.url == "" {
		metrics.NotificationsTotal.WithLabelValues("skipped").Inc()
		logger.Debug("Webhook URL not configured, skipping change notification")
		return models.NotificationResult{Skipped: true}
	}

	result.ID = uuid.NewString()

	ctx, span := tracing.StartSpan(ctx, "webhook.notify",
		attribute.String("notification.id", result.ID))
	defer span.End()

	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			result.Delivered = false
			result.Err = fmt.Errorf("notification panicked: %v", r)
		}

		duration := metrics.MeasureDuration(start)
		status := result.Status()
		metrics.NotificationsTotal.WithLabelValues(status).Inc()
		metrics.NotificationDuration.Observe(duration)
		span.SetAttributes(attribute.String("notification.status", status))

		fields := []zap.Field{
			zap.String("notification_id", result.ID),
			zap.Int("status_code", result.StatusCode),
		}
		if result.Err != nil {
			fields = append(fields, zap.Error(result.Err))
		}
		logger.LogAPICall(ctx, "webhook", "notifyChange", status, duration, fields...)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, http.NoBody)
	if err != nil {
		result.Err = fmt.Errorf("failed to create webhook request: %w", err)
		return result
	}
	req.Header.Set(WebhookSecretHeader, s.secret)
	req.Header.Set(NotificationIDHeader, result.ID)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		result.Err = fmt.Errorf("failed to call webhook: %w", err)
		return result
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	result.StatusCode = resp.StatusCode
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		result.Err = fmt.Errorf("webhook returned status %d", resp.StatusCode)
		return result
	}

	result.Delivered = true
	return result
}
