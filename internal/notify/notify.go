// Package notify delivers confirmed stock-change messages. Delivery
// failures are reported to the caller, who logs and moves on; a lost
// message never disturbs debounce state.
package notify

import "context"

// Notifier is the one capability the scheduler needs: push a text message
// to the configured channel.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// Nop discards every message. Used when the messaging channel is disabled
// and by scheduler tests.
type Nop struct{}

func (Nop) Send(ctx context.Context, text string) error { return nil }
