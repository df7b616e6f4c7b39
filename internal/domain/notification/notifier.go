package notification

import "context"

// Notifier delivers a plain-text message to an email address.
type Notifier interface {
	Notify(ctx context.Context, to, subject, body string) error
}
