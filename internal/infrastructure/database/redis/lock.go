package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/minhaarvore/arvore/internal/infrastructure/monitoring/logging"
	"github.com/minhaarvore/arvore/pkg/errors"
)

// ErrLockNotHeld is returned by Unlock when the lock expired or belongs to
// another owner.
var ErrLockNotHeld = errors.New(errors.ErrCodeValidation, "lock not held by this owner")

// unlockScript deletes the key only when this owner still holds it, so an
// expired lock re-acquired elsewhere is never released by the old owner.
var unlockScript = goredis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	else
		return 0
	end
`)

// PassLock is the distributed single-flight token serializing reconciliation
// and merge passes.  It satisfies the PassGuard contract of both services.
// The TTL bounds how long a crashed holder can block the next pass.
type PassLock struct {
	client *Client
	key    string
	value  string
	ttl    time.Duration
	log    logging.Logger
}

// PassLockOption customises a PassLock.
type PassLockOption func(*PassLock)

// WithLockTTL overrides the lock TTL.
func WithLockTTL(ttl time.Duration) PassLockOption {
	return func(l *PassLock) {
		if ttl > 0 {
			l.ttl = ttl
		}
	}
}

// NewPassLock constructs a lock named after the protected resource.  Each
// PassLock instance is one owner; construct one per process.
func NewPassLock(client *Client, name string, log logging.Logger, opts ...PassLockOption) *PassLock {
	l := &PassLock{
		client: client,
		key:    "arvore:lock:" + name,
		value:  uuid.NewString(),
		ttl:    5 * time.Minute,
		log:    log.Named("pass-lock"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// TryLock attempts a non-blocking acquire.
func (l *PassLock) TryLock(ctx context.Context) (bool, error) {
	ok, err := l.client.Underlying().SetNX(ctx, l.key, l.value, l.ttl).Result()
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeCacheError, "failed to acquire lock")
	}
	if ok {
		l.log.Debug("lock acquired", logging.String("key", l.key))
	}
	return ok, nil
}

// Unlock releases the lock if this owner still holds it.
func (l *PassLock) Unlock(ctx context.Context) error {
	res, err := unlockScript.Run(ctx, l.client.Underlying(), []string{l.key}, l.value).Result()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to release lock")
	}
	if n, ok := res.(int64); !ok || n == 0 {
		return ErrLockNotHeld
	}
	l.log.Debug("lock released", logging.String("key", l.key))
	return nil
}
