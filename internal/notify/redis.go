package notify

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const channelPrefix = "notify:"

// RedisBroker publishes events over Redis pub/sub so every API instance can push
// them to its own WebSocket clients.
type RedisBroker struct {
	client *redis.Client
	log    logrus.FieldLogger
}

// NewRedisBroker wraps client.
func NewRedisBroker(client *redis.Client, log logrus.FieldLogger) *RedisBroker {
	return &RedisBroker{client: client, log: log}
}

// Publish encodes ev as JSON and publishes it on the topic channel.
func (b *RedisBroker) Publish(ctx context.Context, topic string, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, channelPrefix+topic, payload).Err()
}

// Subscribe listens on the topic channels until cancel is called or ctx is done.
func (b *RedisBroker) Subscribe(ctx context.Context, topics ...string) (<-chan Event, func()) {
	channels := make([]string, 0, len(topics))
	for _, t := range topics {
		channels = append(channels, channelPrefix+t)
	}

	ctx, stop := context.WithCancel(ctx)
	pubsub := b.client.Subscribe(ctx, channels...)
	out := make(chan Event, subscriberBuffer)

	go func() {
		defer close(out)
		defer pubsub.Close()

		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var ev Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					b.log.WithError(err).WithField("channel", msg.Channel).Warn("dropping malformed notification")
					continue
				}
				select {
				case out <- ev:
				default:
				}
			}
		}
	}()

	var once sync.Once
	return out, func() { once.Do(stop) }
}
