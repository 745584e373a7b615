package main

import (
	"fmt"

	"github.com/yourorg/brand-estimator/internal/config"
	"github.com/yourorg/brand-estimator/internal/leads"
)

// newLeadSink builds the configured lead sink
func newLeadSink(cfg config.Config) (leads.Sink, error) {
	switch cfg.LeadSink {
	case config.SinkLog, "":
		return leads.LogSink{}, nil
	case config.SinkWebhook:
		opts := leads.DefaultWebhookOptions(cfg.LeadWebhookURL)
		opts.APIKey = cfg.LeadWebhookAPIKey
		opts.Timeout = cfg.RequestTimeout
		return leads.NewWebhookSink(opts)
	case config.SinkKafka:
		return leads.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic)
	default:
		return nil, fmt.Errorf("unknown lead sink %q", cfg.LeadSink)
	}
}
