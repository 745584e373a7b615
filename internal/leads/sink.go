// Package leads delivers captured lead submissions to a downstream CRM sink
package leads

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"github.com/yourorg/brand-estimator/internal/model"
)

// Sink accepts a batch of validated leads
type Sink interface {
	Deliver(ctx context.Context, leads []model.Lead) error
	Name() string
}

// LogSink writes each lead to the structured log
type LogSink struct{}

// Name implements Sink
func (LogSink) Name() string { return "log" }

// Deliver implements Sink
func (LogSink) Deliver(_ context.Context, leads []model.Lead) error {
	for _, l := range leads {
		logrus.WithFields(logrus.Fields{
			"lead_id": l.ID,
			"kind":    l.Kind,
			"email":   l.Email,
			"company": l.Company,
			"source":  l.Source,
		}).Info("Lead captured")
	}
	return nil
}

// WebhookOptions configures the webhook sink
type WebhookOptions struct {
	URL      string
	APIKey   string
	Timeout  time.Duration
	RetryMax int
}

// DefaultWebhookOptions returns retry and timeout settings for a CRM webhook
func DefaultWebhookOptions(url string) WebhookOptions {
	return WebhookOptions{
		URL:      url,
		Timeout:  10 * time.Second,
		RetryMax: 3,
	}
}

// WebhookSink posts batches as JSON to an HTTP endpoint
type WebhookSink struct {
	opts   WebhookOptions
	client *retryablehttp.Client
}

// NewWebhookSink creates a webhook sink
func NewWebhookSink(opts WebhookOptions) (*WebhookSink, error) {
	if opts.URL == "" {
		return nil, fmt.Errorf("webhook URL not configured")
	}
	return &WebhookSink{opts: opts, client: newRetryClient(opts)}, nil
}

// newRetryClient creates an HTTP client with retry capabilities
func newRetryClient(opts WebhookOptions) *retryablehttp.Client {
	c := retryablehttp.NewClient()
	c.RetryMax = opts.RetryMax
	c.RetryWaitMin = 500 * time.Millisecond
	c.RetryWaitMax = 3 * time.Second
	c.HTTPClient.Timeout = opts.Timeout
	c.Logger = nil
	return c
}

// Name implements Sink
func (w *WebhookSink) Name() string { return "webhook" }

type webhookPayload struct {
	Leads      []model.Lead `json:"leads"`
	ExportTime string       `json:"export_time"`
	Count      int          `json:"count"`
}

// Deliver implements Sink
func (w *WebhookSink) Deliver(ctx context.Context, leads []model.Lead) error {
	body, err := json.Marshal(webhookPayload{
		Leads:      leads,
		ExportTime: time.Now().UTC().Format(time.RFC3339),
		Count:      len(leads),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal leads: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, w.opts.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if w.opts.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+w.opts.APIKey)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned error status: %d", resp.StatusCode)
	}
	return nil
}

// messageWriter is the subset of kafka.Writer used by KafkaSink
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink publishes one message per lead, keyed by lead id
type KafkaSink struct {
	topic  string
	writer messageWriter
}

// NewKafkaSink creates a Kafka sink for the given brokers and topic
func NewKafkaSink(brokers []string, topic string) (*KafkaSink, error) {
	if len(brokers) == 0 || topic == "" {
		return nil, fmt.Errorf("kafka brokers and topic must be configured")
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
	logrus.WithFields(logrus.Fields{
		"brokers": brokers,
		"topic":   topic,
	}).Info("Kafka lead sink initialized")
	return &KafkaSink{topic: topic, writer: w}, nil
}

// Name implements Sink
func (k *KafkaSink) Name() string { return "kafka" }

// Deliver implements Sink
func (k *KafkaSink) Deliver(ctx context.Context, leads []model.Lead) error {
	msgs := make([]kafka.Message, 0, len(leads))
	for _, l := range leads {
		value, err := json.Marshal(l)
		if err != nil {
			return fmt.Errorf("failed to marshal lead %s: %w", l.ID, err)
		}
		msgs = append(msgs, kafka.Message{
			Key:     []byte(l.ID),
			Value:   value,
			Headers: []kafka.Header{{Key: "kind", Value: []byte(l.Kind)}},
		})
	}
	if err := k.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("failed to publish to topic %s: %w", k.topic, err)
	}
	return nil
}

// Close flushes and closes the underlying writer
func (k *KafkaSink) Close() error {
	return k.writer.Close()
}
