// Package publisher emits shipping events to NATS JetStream.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/akara/rajaongkir-adapter/internal/metrics"
	"github.com/akara/rajaongkir-adapter/pkg/model"
)

const eventTypeQuoteComputed = "shipping.quote_computed"

// MsgPublisher is the part of nats.JetStreamContext the publisher uses.
type MsgPublisher interface {
	PublishMsg(m *nats.Msg, opts ...nats.PubOpt) (*nats.PubAck, error)
}

// Publisher wraps a NATS connection and publishes quote events.
type Publisher struct {
	nc      *nats.Conn
	js      MsgPublisher
	subject string
	service string
	logger  *zap.Logger
}

// New creates a Publisher on the JetStream context of nc.
func New(nc *nats.Conn, subject, service string, logger *zap.Logger) (*Publisher, error) {
	js, err := nc.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	p := NewWithJetStream(js, subject, service, logger)
	p.nc = nc
	return p, nil
}

// NewWithJetStream builds a Publisher over an existing JetStream handle.
func NewWithJetStream(js MsgPublisher, subject, service string, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{js: js, subject: subject, service: service, logger: logger}
}

// PublishQuote publishes evt on the configured subject. The event id doubles
// as the JetStream message id so redeliveries are deduplicated by the stream.
func (p *Publisher) PublishQuote(ctx context.Context, evt model.QuoteEvent) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal quote event: %w", err)
	}

	msg := &nats.Msg{
		Subject: p.subject,
		Data:    data,
		Header: nats.Header{
			"event_type":   []string{eventTypeQuoteComputed},
			"service":      []string{p.service},
			"content_type": []string{"application/json"},
			"cart_id":      []string{evt.CartID},
		},
	}

	if _, err := p.js.PublishMsg(msg, nats.MsgId(evt.ID.String()), nats.Context(ctx)); err != nil {
		metrics.IncNATSPublishError(p.subject)
		p.logger.Error("publisher.publish_failed",
			zap.String("subject", p.subject),
			zap.String("cart_id", evt.CartID),
			zap.Error(err))
		return err
	}

	p.logger.Debug("publisher.publish_success",
		zap.String("subject", p.subject),
		zap.String("cart_id", evt.CartID))
	return nil
}

func (p *Publisher) Close() {
	if p.nc != nil && p.nc.IsConnected() {
		p.nc.Close()
	}
}
