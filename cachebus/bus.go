// Package cachebus broadcasts cache-invalidation events over Redis pub/sub
// between processes sharing one database. store.DB publishes InvalidateAll
// whenever it clears its query caches; it does not subscribe, and nothing in
// this module clears local caches when an event arrives on Subscribe.
package cachebus

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/luxfi/vaultdb/vaulterr"
)

// InvalidateAll is the sole event payload published today: every
// subscriber should clear its local query caches in full.
const InvalidateAll = "invalidate_all"

const defaultChannel = "vaultdb:cache-invalidate"

// Bus wraps a Redis client bound to one pub/sub channel.
type Bus struct {
	client  *redis.Client
	channel string
	log     *logrus.Logger
}

// Option configures a Bus at construction.
type Option func(*Bus)

// WithChannel overrides the default pub/sub channel name.
func WithChannel(channel string) Option {
	return func(b *Bus) { b.channel = channel }
}

// WithLogger overrides the default logrus.Logger.
func WithLogger(log *logrus.Logger) Option {
	return func(b *Bus) { b.log = log }
}

// New connects to a Redis instance at addr and returns a Bus ready to
// Publish/Subscribe on its channel.
func New(addr string, opts ...Option) (*Bus, error) {
	b := &Bus{
		client:  redis.NewClient(&redis.Options{Addr: addr}),
		channel: defaultChannel,
		log:     logrus.New(),
	}
	for _, opt := range opts {
		opt(b)
	}

	if err := b.client.Ping(context.Background()).Err(); err != nil {
		return nil, vaulterr.Wrap(vaulterr.IOFail, "cachebus.New", err)
	}
	return b, nil
}

// Publish broadcasts event to every subscriber of the bus's channel.
func (b *Bus) Publish(ctx context.Context, event string) error {
	if err := b.client.Publish(ctx, b.channel, event).Err(); err != nil {
		return vaulterr.Wrap(vaulterr.IOFail, "cachebus.Publish", err)
	}
	return nil
}

// Subscribe returns a channel of incoming events and a close function the
// caller must invoke once done consuming.
func (b *Bus) Subscribe(ctx context.Context) (<-chan string, func() error) {
	sub := b.client.Subscribe(ctx, b.channel)

	out := make(chan string)
	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			out <- msg.Payload
		}
	}()

	return out, sub.Close
}

// Close releases the underlying Redis client.
func (b *Bus) Close() error {
	return b.client.Close()
}
