package natsbroker

import (
	"context"
	"encoding/json"
	"fmt"

	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/oggyb/sms-gateway/internal/broker"
)

// Publish admits env onto the subject matching queue, deduplicated by
// message id within JetStream's dedup window so a publisher retry after a
// crash before the ack never admits the same message twice.
func (c *Client) Publish(ctx context.Context, queue broker.Queue, env broker.Envelope) error {
	return c.publish(ctx, subjectFor(string(queue)), env.MessageID, env)
}

// PublishDLQ forwards a terminally-failed message to the dlq subject.
func (c *Client) PublishDLQ(ctx context.Context, entry broker.DLQEntry) error {
	return c.publish(ctx, subjectDLQ, "dlq-"+entry.Envelope.MessageID, entry)
}

func (c *Client) publish(ctx context.Context, subject, dedupID string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	msg := &natsgo.Msg{Subject: subject, Data: data}
	_, err = c.js.PublishMsg(ctx, msg, jetstream.WithMsgID(dedupID))
	if err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

var _ broker.Publisher = (*Client)(nil)
var _ broker.DLQPublisher = (*Client)(nil)
