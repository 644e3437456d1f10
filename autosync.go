package supplymap

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/agentstation/supplymap/pkg/errors"
	"github.com/agentstation/supplymap/pkg/logging"
	pkgsync "github.com/agentstation/supplymap/pkg/sync"
)

// Compile-time interface check to ensure proper implementation.
var _ AutoSyncer = (*client)(nil)

// AutoSyncer runs full syncs on a fixed interval. Runs started by one
// AutoSyncer never overlap.
type AutoSyncer interface {
	// AutoSyncOn starts periodic syncs, replacing any running schedule.
	AutoSyncOn(interval time.Duration, opts ...pkgsync.Option) error

	// AutoSyncOff stops periodic syncs and waits for a run in progress.
	AutoSyncOff() error
}

type autoSync struct {
	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// AutoSyncOn starts periodic syncs.
func (c *client) AutoSyncOn(interval time.Duration, opts ...pkgsync.Option) error {
	if interval <= 0 {
		return &errors.ValidationError{
			Field:   "interval",
			Value:   interval,
			Message: "sync interval must be positive",
		}
	}

	if err := c.AutoSyncOff(); err != nil {
		return err
	}

	c.auto.mu.Lock()
	defer c.auto.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	c.auto.cancel = cancel
	c.auto.done = done

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				_, err := c.Sync(ctx, opts...)
				if err != nil {
					if stderrors.Is(err, context.Canceled) {
						return
					}
					logging.Error().Err(err).Msg("Scheduled sync failed")
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// AutoSyncOff stops periodic syncs.
func (c *client) AutoSyncOff() error {
	c.auto.mu.Lock()
	cancel, done := c.auto.cancel, c.auto.done
	c.auto.cancel, c.auto.done = nil, nil
	c.auto.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	return nil
}
