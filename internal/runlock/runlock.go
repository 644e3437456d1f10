// Package runlock provides run locks that keep sync and import runs from
// overlapping. Redis backs locks shared between processes; Local serves a
// single process.
package runlock

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/agentstation/supplymap"
	"github.com/agentstation/supplymap/pkg/constants"
	"github.com/agentstation/supplymap/pkg/errors"
	"github.com/agentstation/supplymap/pkg/logging"
)

// ErrNotHeld is returned by unlock when the lock expired or was taken over.
var ErrNotHeld = errors.New("run lock no longer held")

// Compile-time interface checks.
var (
	_ supplymap.Locker = (*Redis)(nil)
	_ supplymap.Locker = (*Local)(nil)
)

// release deletes the key only while it still carries our token.
var release = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// renew extends the key's TTL only while it still carries our token.
var renew = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("pexpire", KEYS[1], ARGV[2])
end
return 0
`)

// Redis is a lock held as a Redis key with a TTL. The holder renews the TTL
// every third of it until unlock, so a run may outlive the TTL; the TTL only
// bounds how long a crashed holder blocks others.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	retry  time.Duration
}

// Option configures a Redis lock.
type Option func(*Redis)

// WithTTL sets how long a lock lives if its holder never releases it.
func WithTTL(ttl time.Duration) Option {
	return func(r *Redis) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// WithRetry sets how often a waiting Lock polls.
func WithRetry(d time.Duration) Option {
	return func(r *Redis) {
		if d > 0 {
			r.retry = d
		}
	}
}

// NewRedis creates a lock on client.
func NewRedis(client *redis.Client, opts ...Option) *Redis {
	r := &Redis{client: client, ttl: constants.LockTTL, retry: 250 * time.Millisecond}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Dial connects to Redis. url is either a redis:// URL or a host:port.
func Dial(ctx context.Context, url string, opts ...Option) (*Redis, error) {
	var ropts *redis.Options
	if strings.Contains(url, "://") {
		parsed, err := redis.ParseURL(url)
		if err != nil {
			return nil, errors.NewConfigError("runlock", "invalid redis url", err)
		}
		ropts = parsed
	} else {
		ropts = &redis.Options{Addr: url}
	}

	client := redis.NewClient(ropts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.WrapIO("connect", ropts.Addr, err)
	}
	return NewRedis(client, opts...), nil
}

// Close closes the Redis connection.
func (r *Redis) Close() error {
	return r.client.Close()
}

// Lock blocks until name is held or ctx is done.
func (r *Redis) Lock(ctx context.Context, name string) (func(context.Context) error, error) {
	token := uuid.NewString()
	ticker := time.NewTicker(r.retry)
	defer ticker.Stop()

	for {
		ok, err := r.client.SetNX(ctx, name, token, r.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, locked(name, ctx.Err())
			}
			return nil, errors.WrapIO("lock", name, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, locked(name, ctx.Err())
		case <-ticker.C:
		}
	}

	renewCtx, stop := context.WithCancel(context.WithoutCancel(ctx))
	renewed := make(chan struct{})
	go func() {
		defer close(renewed)
		r.keepAlive(renewCtx, name, token)
	}()

	var once sync.Once
	return func(ctx context.Context) error {
		once.Do(func() {
			stop()
			<-renewed
		})
		n, err := release.Run(ctx, r.client, []string{name}, token).Int()
		if err != nil {
			return errors.WrapIO("unlock", name, err)
		}
		if n == 0 {
			return ErrNotHeld
		}
		return nil
	}, nil
}

// keepAlive renews the TTL of a held key until ctx is done or the key is
// lost.
func (r *Redis) keepAlive(ctx context.Context, name, token string) {
	ticker := time.NewTicker(max(r.ttl/3, time.Millisecond))
	defer ticker.Stop()

	logger := logging.FromContext(ctx).With().Str("lock", name).Logger()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		n, err := renew.Run(ctx, r.client, []string{name}, token, r.ttl.Milliseconds()).Int()
		switch {
		case ctx.Err() != nil:
			return
		case err != nil:
			logger.Warn().Err(err).Msg("Failed to renew run lock")
		case n == 0:
			logger.Error().Msg("Run lock lost before unlock")
			return
		}
	}
}

// Local is an in-process lock.
type Local struct {
	mu   sync.Mutex
	held map[string]chan struct{}
}

// NewLocal creates an in-process lock.
func NewLocal() *Local {
	return &Local{held: make(map[string]chan struct{})}
}

// Lock blocks until name is held or ctx is done.
func (l *Local) Lock(ctx context.Context, name string) (func(context.Context) error, error) {
	for {
		l.mu.Lock()
		wait, busy := l.held[name]
		if !busy {
			done := make(chan struct{})
			l.held[name] = done
			l.mu.Unlock()

			var once sync.Once
			return func(context.Context) error {
				err := ErrNotHeld
				once.Do(func() {
					l.mu.Lock()
					delete(l.held, name)
					l.mu.Unlock()
					close(done)
					err = nil
				})
				return err
			}, nil
		}
		l.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, locked(name, ctx.Err())
		case <-wait:
		}
	}
}

// locked reports a lock that could not be taken before ctx ended.
func locked(name string, err error) error {
	return fmt.Errorf("%w: %s: %w", errors.ErrLocked, name, err)
}
