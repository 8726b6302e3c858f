package electrician

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrMissingTopic = errors.New("relay: missing topic")

// RelayRequest is the byte-level publish envelope.
type RelayRequest struct {
	Topic   string
	Body    []byte
	Headers map[string]string
	Timeout time.Duration
}

// RelayClient is the transport a relay destination publishes through.
type RelayClient interface {
	Publish(ctx context.Context, rr RelayRequest) error
}

// noopRelay accepts publishes and discards them.
type noopRelay struct{}

func (noopRelay) Publish(_ context.Context, rr RelayRequest) error {
	if rr.Topic == "" {
		return ErrMissingTopic
	}
	return nil
}

// Publisher adapts a RelayClient to the device.Publisher shape.
type Publisher struct {
	c       RelayClient
	timeout time.Duration
}

// NewPublisher bounds each publish by timeout when it is > 0.
func NewPublisher(c RelayClient, timeout time.Duration) *Publisher {
	if c == nil {
		c = noopRelay{}
	}
	return &Publisher{c: c, timeout: timeout}
}

func (p *Publisher) Publish(ctx context.Context, topic string, body []byte, headers map[string]string) error {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	if err := p.c.Publish(ctx, RelayRequest{Topic: topic, Body: body, Headers: headers, Timeout: p.timeout}); err != nil {
		return fmt.Errorf("electrician: %w", err)
	}
	return nil
}
