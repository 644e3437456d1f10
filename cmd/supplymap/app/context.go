package app

import (
	"context"
	"os/signal"
	"syscall"
)

// ContextWithSignals returns a context canceled on SIGINT or SIGTERM. A sync
// interrupted this way rolls back its transaction.
func ContextWithSignals(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
