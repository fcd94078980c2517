package notify

import "context"

// Notifier delivers one message to a preconfigured chat destination.
// Implementations log failures; callers treat a failed send as a no-op.
type Notifier interface {
	Send(ctx context.Context, text string) error
}
