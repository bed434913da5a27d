package natsbroker

import (
	"context"
	"fmt"

	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Client owns the NATS connection and JetStream context shared by the
// publisher, worker consumers and DLQ consumer.
type Client struct {
	nc     *natsgo.Conn
	js     jetstream.JetStream
	stream string
}

// Config configures the stream and consumer limits.
type Config struct {
	URL           string
	Stream        string
	MaxAckPending int
	MaxDeliver    int
}

// New connects to NATS, opens a JetStream context and ensures the stream
// and its durable consumers exist.
func New(ctx context.Context, cfg Config) (*Client, error) {
	nc, err := natsgo.Connect(cfg.URL, natsgo.Name("sms-gateway"))
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("open jetstream: %w", err)
	}

	if err := ensureStream(ctx, js, cfg.Stream, cfg.MaxAckPending, cfg.MaxDeliver); err != nil {
		nc.Close()
		return nil, err
	}

	return &Client{nc: nc, js: js, stream: cfg.Stream}, nil
}

// Ping reports whether the connection is healthy.
func (c *Client) Ping() error {
	if !c.nc.IsConnected() {
		return fmt.Errorf("nats: not connected")
	}
	return nil
}

// Close drains and closes the underlying NATS connection.
func (c *Client) Close() {
	_ = c.nc.Drain()
}
