package redisclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/hackgods/telehealth-scheduling/internal/booking"
)

var ErrSubscriptionClosed = errors.New("notification subscription closed")

const DefaultChannel = "telehealth:notifications"

// Notifier publishes booking notifications on a channel and keeps the most
// recent ones in a capped list under "<channel>:history".
type Notifier struct {
	client  *redis.Client
	channel string
	history int64
}

func NewNotifier(client *redis.Client, channel string, history int) *Notifier {
	if channel == "" {
		channel = DefaultChannel
	}
	if history <= 0 {
		history = 100
	}
	return &Notifier{
		client:  client,
		channel: channel,
		history: int64(history),
	}
}

func (n *Notifier) historyKey() string {
	return n.channel + ":history"
}

func (n *Notifier) Notify(ctx context.Context, note booking.Notification) error {
	data, err := json.Marshal(note)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	_, err = n.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Publish(ctx, n.channel, data)
		pipe.LPush(ctx, n.historyKey(), data)
		pipe.LTrim(ctx, n.historyKey(), 0, n.history-1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

// Recent returns up to limit notifications, newest first.
func (n *Notifier) Recent(ctx context.Context, limit int) ([]booking.Notification, error) {
	if limit <= 0 || int64(limit) > n.history {
		limit = int(n.history)
	}

	raw, err := n.client.LRange(ctx, n.historyKey(), 0, int64(limit)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("read notification history: %w", err)
	}

	out := make([]booking.Notification, 0, len(raw))
	for _, r := range raw {
		var note booking.Notification
		if err := json.Unmarshal([]byte(r), &note); err != nil {
			return nil, fmt.Errorf("decode notification: %w", err)
		}
		out = append(out, note)
	}
	return out, nil
}

// Subscribe calls fn for every notification published until ctx is done.
// Messages that fail to decode are passed to onErr and skipped.
func (n *Notifier) Subscribe(ctx context.Context, fn func(booking.Notification), onErr func(error)) error {
	sub := n.client.Subscribe(ctx, n.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", n.channel, err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return ErrSubscriptionClosed
			}
			var note booking.Notification
			if err := json.Unmarshal([]byte(msg.Payload), &note); err != nil {
				if onErr != nil {
					onErr(fmt.Errorf("decode notification: %w", err))
				}
				continue
			}
			fn(note)
		}
	}
}
