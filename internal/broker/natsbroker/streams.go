// Package natsbroker implements broker.Publisher/broker.Consumer on top of
// NATS JetStream: a single work-queue stream carrying the express, regular
// and dlq subjects, with one durable pull consumer per subject.
package natsbroker

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

const (
	subjectExpress = "sms.express"
	subjectRegular = "sms.regular"
	subjectDLQ     = "sms.dlq"
)

// streamConfig returns the JetStream config for the single SMS_GATEWAY
// stream. Retention is work-queue: once every consumer acks a message it is
// removed, since nothing downstream needs message history past delivery.
func streamConfig(name string) jetstream.StreamConfig {
	return jetstream.StreamConfig{
		Name:       name,
		Subjects:   []string{"sms.>"},
		Retention:  jetstream.WorkQueuePolicy,
		MaxAge:     24 * time.Hour,
		Storage:    jetstream.FileStorage,
		Discard:    jetstream.DiscardOld,
		Duplicates: 2 * time.Minute,
	}
}

// consumerConfig returns a durable pull-consumer config scoped to one
// subject. MaxAckPending bounds how many in-flight messages a single
// consumer will hold unacked, which in turn bounds memory use by the
// worker pool draining it.
func consumerConfig(name, subject string, maxAckPending, maxDeliver int) jetstream.ConsumerConfig {
	return jetstream.ConsumerConfig{
		Durable:       name,
		FilterSubject: subject,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       30 * time.Second,
		MaxDeliver:    maxDeliver,
		MaxAckPending: maxAckPending,
		BackOff: []time.Duration{
			1 * time.Second,
			5 * time.Second,
			15 * time.Second,
		},
		DeliverPolicy: jetstream.DeliverAllPolicy,
	}
}

func subjectFor(queue string) string {
	switch queue {
	case "express":
		return subjectExpress
	case "regular":
		return subjectRegular
	default:
		return subjectDLQ
	}
}

// ensureStream creates or updates the SMS_GATEWAY stream and its three
// durable consumers.
func ensureStream(ctx context.Context, js jetstream.JetStream, streamName string, maxAckPending, maxDeliver int) error {
	stream, err := js.CreateOrUpdateStream(ctx, streamConfig(streamName))
	if err != nil {
		return fmt.Errorf("ensure stream %s: %w", streamName, err)
	}

	consumers := []jetstream.ConsumerConfig{
		consumerConfig("express-worker", subjectExpress, maxAckPending, maxDeliver),
		consumerConfig("regular-worker", subjectRegular, maxAckPending, maxDeliver),
		consumerConfig("dlq-consumer", subjectDLQ, maxAckPending, 1),
	}

	for _, cc := range consumers {
		if _, err := stream.CreateOrUpdateConsumer(ctx, cc); err != nil {
			return fmt.Errorf("ensure consumer %s: %w", cc.Durable, err)
		}
	}

	return nil
}
