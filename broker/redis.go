// Package broker fans envelopes out between server nodes through a Redis
// pub/sub channel per document, so clients connected to different nodes see
// each other's operations.
package broker

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Broker publishes and subscribes raw message envelopes on per-document
// channels.
type Broker struct {
	rdb *redis.Client
}

// New connects to Redis at addr and verifies the connection.
func New(ctx context.Context, addr string) (*Broker, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return &Broker{rdb: rdb}, nil
}

// Publish sends an envelope to every subscriber of the document's channel.
func (b *Broker) Publish(ctx context.Context, docID string, payload []byte) error {
	if err := b.rdb.Publish(ctx, channel(docID), payload).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", channel(docID), err)
	}
	return nil
}

// Subscribe returns a channel of raw envelopes for the document plus a close
// function that tears the subscription down.
func (b *Broker) Subscribe(ctx context.Context, docID string) (<-chan []byte, func() error) {
	pubsub := b.rdb.Subscribe(ctx, channel(docID))
	out := make(chan []byte, 64)
	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			out <- []byte(msg.Payload)
		}
	}()
	return out, pubsub.Close
}

// Close closes the underlying Redis client.
func (b *Broker) Close() error {
	return b.rdb.Close()
}

func channel(docID string) string {
	return "doc:" + docID
}
