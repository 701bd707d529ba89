package booking

import (
	"context"

	"github.com/rs/zerolog"
)

// Notifier delivers the user-facing message that follows a booking. A
// delivery failure never undoes the booking.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// LogNotifier writes notifications to the service log. It is used when no
// Redis is configured.
type LogNotifier struct {
	Logger zerolog.Logger
}

func (l LogNotifier) Notify(_ context.Context, n Notification) error {
	l.Logger.Info().
		Str("title", n.Title).
		Str("kind", n.Type).
		Msg(n.Message)
	return nil
}
