package natsbroker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/oggyb/sms-gateway/internal/broker"
)

func durableFor(queue broker.Queue) string {
	switch queue {
	case broker.QueueExpress:
		return "express-worker"
	case broker.QueueRegular:
		return "regular-worker"
	default:
		return "dlq-consumer"
	}
}

// Consume pulls from the durable consumer backing queue and invokes h for
// every delivered message, translating its Outcome into the matching
// Ack/Nak/Term call. It blocks until ctx is cancelled.
func (c *Client) Consume(ctx context.Context, queue broker.Queue, h broker.Handler) error {
	cons, err := c.js.Consumer(ctx, c.stream, durableFor(queue))
	if err != nil {
		return fmt.Errorf("load consumer %s: %w", durableFor(queue), err)
	}

	consCtx, err := cons.Consume(func(msg jetstream.Msg) {
		var env broker.Envelope
		if queue == broker.QueueDLQ {
			// The dlq subject carries DLQEntry payloads; hand the handler
			// the envelope they wrap.
			var entry broker.DLQEntry
			if err := json.Unmarshal(msg.Data(), &entry); err != nil {
				_ = msg.Term()
				return
			}
			env = entry.Envelope
		} else if err := json.Unmarshal(msg.Data(), &env); err != nil {
			_ = msg.Term()
			return
		}

		meta, _ := msg.Metadata()
		deliveryCount := 1
		if meta != nil {
			deliveryCount = int(meta.NumDelivered)
		}

		switch h(ctx, env, deliveryCount) {
		case broker.OutcomeAck:
			_ = msg.Ack()
		case broker.OutcomeDeadLetter:
			_ = msg.Term()
		default:
			_ = msg.Nak()
		}
	})
	if err != nil {
		return fmt.Errorf("start consume %s: %w", durableFor(queue), err)
	}

	<-ctx.Done()
	consCtx.Stop()
	return nil
}

var _ broker.Consumer = (*Client)(nil)
