package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/turtacn/urban-dds/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/urban-dds/pkg/errors"
)

var ErrLockNotHeld = errors.New(errors.ErrCodeConflict, "lock not held by this owner")

var unlockScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	else
		return 0
	end
`)

// Mutex is a single-owner lock on one key.  The worker uses it to keep two
// consumers from archiving the same report concurrently.
type Mutex struct {
	client *Client
	key    string
	value  string
	ttl    time.Duration
	logger logging.Logger
}

// NewMutex creates an unlocked Mutex on "lock:<name>".
func NewMutex(client *Client, name string, ttl time.Duration, log logging.Logger) *Mutex {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Mutex{
		client: client,
		key:    "lock:" + name,
		value:  uuid.NewString(),
		ttl:    ttl,
		logger: log,
	}
}

// TryLock acquires the lock without waiting.
func (m *Mutex) TryLock(ctx context.Context) (bool, error) {
	if m.client.isClosed() {
		return false, ErrClientClosed
	}
	ok, err := m.client.rdb.SetNX(ctx, m.key, m.value, m.ttl).Result()
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeCacheError, "failed to acquire lock")
	}
	return ok, nil
}

// Unlock releases the lock if this Mutex still owns it.
func (m *Mutex) Unlock(ctx context.Context) error {
	if m.client.isClosed() {
		return ErrClientClosed
	}
	n, err := unlockScript.Run(ctx, m.client.rdb, []string{m.key}, m.value).Int64()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to release lock")
	}
	if n == 0 {
		m.logger.Warn("lock expired before release", logging.String("key", m.key))
		return ErrLockNotHeld
	}
	return nil
}

//Personal.AI order the ending
